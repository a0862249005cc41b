package pricing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidOptions  = errors.New("invalid product options")
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// InvalidOptionsError lists the requested codes that are not active options of the product.
type InvalidOptionsError struct {
	Codes []string
}

func (e *InvalidOptionsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidOptions, strings.Join(e.Codes, ", "))
}

func (e *InvalidOptionsError) Is(target error) bool {
	return target == ErrInvalidOptions
}
