package utils

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// StandardizePhone formats a number with exactly ten digits as
// (XXX) XXX-XXXX. Any other input is rejected.
func StandardizePhone(phone string) (string, bool) {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) != 10 {
		return "", false
	}
	return fmt.Sprintf("(%s) %s-%s", d[:3], d[3:6], d[6:]), true
}

// RandomPhone generates a plausible US number in the standard format.
// Area codes start at 201 to avoid 0XX and 1XX.
func RandomPhone(rng *rand.Rand) string {
	area := 201 + rng.IntN(799)
	office := 100 + rng.IntN(900)
	line := 1000 + rng.IntN(9000)
	return fmt.Sprintf("(%d) %03d-%04d", area, office, line)
}
