package catalog

import "context"

var defaultLocale = "fr"

// SetDefaultLocale changes the locale used when a translation or a request
// context has none.
func SetDefaultLocale(locale string) {
	if locale != "" {
		defaultLocale = locale
	}
}

func DefaultLocale() string { return defaultLocale }

type localeKey struct{}

func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey{}, locale)
}

// LocaleFrom returns the request locale, or the default locale.
func LocaleFrom(ctx context.Context) string {
	if l, ok := ctx.Value(localeKey{}).(string); ok && l != "" {
		return l
	}
	return defaultLocale
}
