package catalog

import "time"

type InputType string

const (
	InputSingleSelect InputType = "single-select"
	InputMultiSelect  InputType = "multi-select"
	InputCheckbox     InputType = "checkbox"
)

// AllowsMultiple reports whether more than one option of the group may be picked.
func (t InputType) AllowsMultiple() bool {
	return t == InputMultiSelect || t == InputCheckbox
}

type Translation struct {
	Locale      string `json:"locale"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Concept     string `json:"concept,omitempty"`
}

type Translations []Translation

// For returns the translation for locale, falling back to the default locale.
func (ts Translations) For(locale string) *Translation {
	var fallback *Translation
	for i := range ts {
		switch ts[i].Locale {
		case locale:
			return &ts[i]
		case defaultLocale:
			fallback = &ts[i]
		}
	}
	return fallback
}

func (ts Translations) Name(locale string) string {
	if t := ts.For(locale); t != nil {
		return t.Name
	}
	return ""
}

func (ts Translations) Description(locale string) string {
	if t := ts.For(locale); t != nil {
		return t.Description
	}
	return ""
}

type Product struct {
	ID             int64        `json:"id"`
	Code           string       `json:"code"`
	BasePrice      *string      `json:"base_price"`
	IsActive       bool         `json:"is_active"`
	IsFeatured     bool         `json:"is_featured"`
	IsCustomizable bool         `json:"is_customizable"`
	SortOrder      int          `json:"sort_order"`
	Translations   Translations `json:"translations"`

	AvailableOptions []*ProductOption `json:"available_options,omitempty"`
	DefaultOptions   []*ProductOption `json:"default_options,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Product) Name(locale string) string {
	return p.Translations.Name(locale)
}

func (p *Product) Description(locale string) string {
	return p.Translations.Description(locale)
}

// AvailableOption returns the first available option with the given code.
func (p *Product) AvailableOption(code string) *ProductOption {
	for _, o := range p.AvailableOptions {
		if o.Code == code {
			return o
		}
	}
	return nil
}

// DefaultOptionCodes lists the codes of the options preselected for the product.
func (p *Product) DefaultOptionCodes() []string {
	codes := make([]string, 0, len(p.DefaultOptions))
	for _, o := range p.DefaultOptions {
		codes = append(codes, o.Code)
	}
	return codes
}

type ProductOption struct {
	ID           int64               `json:"id"`
	Code         string              `json:"code"`
	Price        string              `json:"price"`
	IsActive     bool                `json:"is_active"`
	SortOrder    int                 `json:"sort_order"`
	Group        *ProductOptionGroup `json:"group,omitempty"`
	Translations Translations        `json:"translations"`
}

func (o *ProductOption) Name(locale string) string {
	return o.Translations.Name(locale)
}

func (o *ProductOption) Description(locale string) string {
	return o.Translations.Description(locale)
}

// GroupName is the localized name of the owning group, or "" without a group.
func (o *ProductOption) GroupName(locale string) string {
	if o.Group == nil {
		return ""
	}
	return o.Group.Name(locale)
}

// ProductOptionGroup groups options for presentation. MinSelect and MaxSelect
// are stored but no selection count is enforced.
type ProductOptionGroup struct {
	ID           int64        `json:"id"`
	Code         string       `json:"code"`
	InputType    InputType    `json:"input_type"`
	MinSelect    int          `json:"min_select"`
	MaxSelect    int          `json:"max_select"`
	IsRequired   bool         `json:"is_required"`
	IsActive     bool         `json:"is_active"`
	SortOrder    int          `json:"sort_order"`
	Translations Translations `json:"translations"`
}

func (g *ProductOptionGroup) Name(locale string) string {
	return g.Translations.Name(locale)
}

type ProductFilter struct {
	OnlyActive   bool
	OnlyFeatured bool
}
