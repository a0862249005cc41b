package pricing

import "moduscap-be/internal/catalog"

// ValidateOptions splits codes into active options available on the product
// and rejected codes. Each code is matched on its own, so duplicates are kept,
// and an inactive option is rejected like an unknown code.
func ValidateOptions(p *catalog.Product, codes []string) ValidationResult {
	res := ValidationResult{
		Valid:   make([]*catalog.ProductOption, 0, len(codes)),
		Invalid: make([]string, 0),
	}

	for _, code := range codes {
		if o := p.AvailableOption(code); o != nil && o.IsActive {
			res.Valid = append(res.Valid, o)
			continue
		}
		res.Invalid = append(res.Invalid, code)
	}

	res.IsValid = len(res.Invalid) == 0
	return res
}
