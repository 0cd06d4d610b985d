package wayback

import (
	"net/url"
	"strings"
)

// NormalizeTarget converts a user-supplied URL or domain into the host+path
// form the capture index expects.
//
// Rules, applied in order:
//   - surrounding whitespace is trimmed
//   - an absolute http/https URL is reduced to host + path, discarding
//     scheme, query, and fragment
//   - if URL parsing fails but an http(s):// prefix is present, the prefix
//     is stripped textually
//   - exactly one trailing "/" is removed
//
// The function is pure and never fails; normalizing an already-normalized
// target returns it unchanged.
func NormalizeTarget(target string) string {
	t := strings.TrimSpace(target)

	if u, err := url.Parse(t); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		t = u.Host + u.Path
	} else if err != nil {
		t = strings.TrimPrefix(t, "https://")
		t = strings.TrimPrefix(t, "http://")
	}

	return strings.TrimSuffix(t, "/")
}

// CaptureURL returns the form of target suitable for embedding in a replay
// URL. Replay paths address captures by the full original URL including its
// scheme, so a bare domain gets an http:// prefix (the archive canonicalizes
// from there).
func CaptureURL(target string) string {
	t := strings.TrimSpace(target)
	if strings.HasPrefix(t, "http://") || strings.HasPrefix(t, "https://") {
		return t
	}
	return "http://" + t
}
