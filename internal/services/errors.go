package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ValidationError means a precondition failed before anything was written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError means the referenced entity does not exist or is not in the
// state the operation requires (for example a claim that is no longer Pending).
type NotFoundError struct {
	Entity string
	ID     uint
	Key    string
	Reason string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s %d not found", e.Entity, e.ID)
	if e.Key != "" {
		msg = fmt.Sprintf("%s %q not found", e.Entity, e.Key)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// StorageError wraps a failure reported by the database. Constraint is set
// when the store rejected the write on a check or foreign key, which callers
// should treat like a ValidationError.
type StorageError struct {
	Op         string
	Err        error
	Constraint bool
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var v *ValidationError
	if errors.As(err, &v) {
		return true
	}
	var s *StorageError
	return errors.As(err, &s) && s.Constraint
}

func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

func IsStorage(err error) bool {
	var s *StorageError
	return errors.As(err, &s)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

func notFound(entity string, id uint) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// storageErr wraps err unless it already carries one of our kinds.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		v *ValidationError
		n *NotFoundError
		s *StorageError
	)
	if errors.As(err, &v) || errors.As(err, &n) || errors.As(err, &s) {
		return err
	}
	return &StorageError{Op: op, Err: err, Constraint: isConstraintViolation(err)}
}

func isConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) || errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"constraint failed", "violates check constraint", "violates foreign key constraint"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
