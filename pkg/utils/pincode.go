package utils

import "regexp"

var trailingPincode = regexp.MustCompile(`\d{5}$`)

// ExtractPincode returns the five digits ending an address, or "" when the
// address does not end in one.
func ExtractPincode(address string) string {
	return trailingPincode.FindString(address)
}
