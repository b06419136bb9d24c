package cms

import "strings"

// ResolveAssetURL turns a media reference into a browser-usable URL.
// Absolute references (CDN uploads) pass through; relative ones, as served by
// a local CMS, are prefixed with base. Empty input yields "".
func ResolveAssetURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	base = strings.TrimRight(base, "/")
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return base + ref
}
