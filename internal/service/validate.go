package service

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/erazemk/sangam/internal/apperr"
)

// slugPattern matches page and section keys: lowercase words joined by dashes.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

const maxSlugLength = 64

func normalizeSlug(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func validateSlug(field, s string) error {
	if s == "" {
		return apperr.Validation("%s is required", field)
	}
	if len(s) > maxSlugLength || !slugPattern.MatchString(s) {
		return apperr.Validation("%s %q must be lowercase letters, digits and dashes", field, s)
	}
	return nil
}

// validateLink accepts an empty value, a site-relative path or an absolute
// http(s) URL.
func validateLink(field, raw string) error {
	if raw == "" || (strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//")) {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperr.Validation("%s must be a site path or an http(s) URL", field)
	}
	return nil
}
