package catalog

const (
	fallbackGroupCode = "default"
	fallbackGroupName = "Options"
)

type OptionView struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	IsActive    bool   `json:"is_active"`
}

type OptionGroupView struct {
	Code          string       `json:"code"`
	Name          string       `json:"name"`
	InputType     InputType    `json:"input_type,omitempty"`
	IsMultiSelect bool         `json:"is_multi_select"`
	IsRequired    bool         `json:"is_required"`
	MinSelect     int          `json:"min_select"`
	MaxSelect     int          `json:"max_select"`
	Options       []OptionView `json:"options"`
}

// GroupOptions buckets options by their group code, keeping the order in
// which groups are first seen. Options without a group land in a
// "default" bucket named "Options".
func GroupOptions(options []*ProductOption, locale string) []OptionGroupView {
	index := make(map[string]int)
	var groups []OptionGroupView

	for _, o := range options {
		code, name := fallbackGroupCode, fallbackGroupName
		if o.Group != nil {
			code = o.Group.Code
			name = o.Group.Name(locale)
		}

		i, ok := index[code]
		if !ok {
			g := OptionGroupView{Code: code, Name: name}
			if o.Group != nil {
				g.InputType = o.Group.InputType
				g.IsMultiSelect = o.Group.InputType.AllowsMultiple()
				g.IsRequired = o.Group.IsRequired
				g.MinSelect = o.Group.MinSelect
				g.MaxSelect = o.Group.MaxSelect
			}
			groups = append(groups, g)
			i = len(groups) - 1
			index[code] = i
		}

		groups[i].Options = append(groups[i].Options, OptionView{
			ID:          o.ID,
			Code:        o.Code,
			Name:        o.Name(locale),
			Description: o.Description(locale),
			Price:       o.Price,
			IsActive:    o.IsActive,
		})
	}

	return groups
}

type ProductView struct {
	ID             int64   `json:"id"`
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	BasePrice      *string `json:"base_price"`
	IsFeatured     bool    `json:"is_featured"`
	IsCustomizable bool    `json:"is_customizable"`
}

func ToProductView(p *Product, locale string) ProductView {
	return ProductView{
		ID:             p.ID,
		Code:           p.Code,
		Name:           p.Name(locale),
		Description:    p.Description(locale),
		BasePrice:      p.BasePrice,
		IsFeatured:     p.IsFeatured,
		IsCustomizable: p.IsCustomizable,
	}
}
