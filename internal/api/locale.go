package api

import (
	"fmt"
	"net/http"

	"moduscap-be/internal/catalog"
	"moduscap-be/internal/config"

	"github.com/go-chi/chi/v5"
)

// LocaleMiddleware answers 404 for unsupported {locale} segments and puts the
// locale in the request context otherwise.
func LocaleMiddleware(locales config.LocaleConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := chi.URLParam(r, "locale")
			if !locales.IsSupported(locale) {
				WriteError(w, r, fmt.Errorf("%w: %q", ErrUnsupportedLocale, locale))
				return
			}

			next.ServeHTTP(w, r.WithContext(catalog.WithLocale(r.Context(), locale)))
		})
	}
}
