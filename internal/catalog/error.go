package catalog

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrOptionNotFound  = errors.New("product option not found")
	ErrOptionInUse     = errors.New("product option is used by a product")
)
