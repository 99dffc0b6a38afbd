package salesstats

import (
	"errors"
	"fmt"
	"strings"

	validator "github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidInput is returned when the dataset is missing or malformed.
	ErrInvalidInput = errors.New("invalid sales data")
	// ErrEmptyCollection is returned in strict mode when a collection is empty.
	ErrEmptyCollection = fmt.Errorf("%w: empty collection", ErrInvalidInput)
	// ErrInvalidConfig is returned when the options cannot drive a run.
	ErrInvalidConfig = errors.New("invalid analysis options")
)

var defaultValidator = NewValidator()

// NewValidator returns a validator able to check Options and Input. Callers
// that share one instance across a process pass it through Analyzer.Validator.
func NewValidator() *validator.Validate {
	return validator.New()
}

func validateOptions(validate *validator.Validate, opts Options) error {
	if err := validate.Struct(opts); err != nil {
		return describe(ErrInvalidConfig, err)
	}
	return nil
}

func validateInput(validate *validator.Validate, in *Input, strict bool) error {
	if in == nil {
		return fmt.Errorf("%w: input is missing", ErrInvalidInput)
	}
	if err := validate.Struct(in); err != nil {
		return describe(ErrInvalidInput, err)
	}
	if !strict {
		return nil
	}
	switch {
	case len(in.Sellers) == 0:
		return fmt.Errorf("%w: sellers", ErrEmptyCollection)
	case len(in.Products) == 0:
		return fmt.Errorf("%w: products", ErrEmptyCollection)
	case len(in.PurchaseRecords) == 0:
		return fmt.Errorf("%w: purchase_records", ErrEmptyCollection)
	}
	return nil
}

// describe reports the first failing field under the given sentinel.
func describe(sentinel error, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", sentinel, err)
	}
	fe := verrs[0]
	field := fe.Namespace()
	if idx := strings.Index(field, "."); idx >= 0 {
		field = field[idx+1:]
	}
	if fe.Param() != "" {
		return fmt.Errorf("%w: %s failed %s=%s", sentinel, field, fe.Tag(), fe.Param())
	}
	return fmt.Errorf("%w: %s failed %s", sentinel, field, fe.Tag())
}
