// Package origin matches browser Origin headers against the configured
// allow list shared by CORS and the realtime WebSocket.
package origin

import "strings"

// Allowlist normalised set of allowed origins.
type Allowlist struct {
	any     bool
	origins map[string]bool
}

// New builds an Allowlist from config entries. "*" allows every origin;
// surrounding spaces, trailing slashes and letter case are ignored.
func New(entries []string) Allowlist {
	l := Allowlist{origins: make(map[string]bool, len(entries))}
	for _, e := range entries {
		e = normalize(e)
		switch e {
		case "":
		case "*":
			l.any = true
		default:
			l.origins[e] = true
		}
	}
	return l
}

// Allows reports whether origin may call the API. An empty origin is never
// allowed here; callers decide what a missing header means.
func (l Allowlist) Allows(origin string) bool {
	origin = normalize(origin)
	if origin == "" {
		return false
	}
	return l.any || l.origins[origin]
}

// Empty no entry was configured.
func (l Allowlist) Empty() bool {
	return !l.any && len(l.origins) == 0
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(s), "/"))
}
