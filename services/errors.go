package services

import (
	"errors"
	"fmt"
)

var (
	ErrNoMatch          = errors.New("no catalog product matches")
	ErrNotFound         = errors.New("not found")
	ErrProductNameTaken = errors.New("product with this name already exists")

	ErrAuthentication       = errors.New("could not validate credentials")
	ErrUserTaken            = errors.New("username or email already registered")
	ErrAlreadyVerified      = errors.New("user is already verified")
	ErrWrongCode            = errors.New("verification code is wrong or expired")
	ErrUnsupportedImageType = errors.New("unsupported image type")
)

// ValidationError reports malformed input at the operation boundary.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Reason)
}

// OracleSchemaViolation means the language model answered with something
// that does not conform to the requested schema.
type OracleSchemaViolation struct {
	Operation string
	Err       error
}

func (e *OracleSchemaViolation) Error() string {
	return fmt.Sprintf("%s: oracle output violates schema: %v", e.Operation, e.Err)
}

func (e *OracleSchemaViolation) Unwrap() error { return e.Err }
