package follow

import (
	"fmt"
	"net/url"
	"strings"
)

// EnsureScheme prefixes raw with "http://" when it lacks an explicit
// scheme, so that bare hosts pasted from emails or tweets still resolve.
func EnsureScheme(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if strings.Contains(raw, "://") {
		return raw
	}
	return "http://" + raw
}

// StripTrackingParams removes query parameters whose names carry the
// "utm_" analytics prefix. Other analytics parameters are deliberately
// left alone. The operation is idempotent.
func StripTrackingParams(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.RawQuery == "" {
		return raw, nil
	}
	q := u.Query()
	changed := false
	for name := range q {
		if strings.HasPrefix(strings.ToLower(name), "utm_") {
			q.Del(name)
			changed = true
		}
	}
	if !changed {
		return raw, nil
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// resolveRedirectTarget interprets target against base, so relative
// Location headers and meta-refresh URLs produce absolute next hops.
func resolveRedirectTarget(base, target string) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", fmt.Errorf("empty redirect target")
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	targetURL, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parse redirect target: %w", err)
	}
	return baseURL.ResolveReference(targetURL).String(), nil
}
