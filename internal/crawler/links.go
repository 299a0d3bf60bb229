package crawler

import (
	"net/url"
	"strings"
)

// NormalizeReference turns a raw @odata.id value into a crawlable
// service-relative path. Returns "" for references that should not be
// followed (empty values, external URLs off the service, opaque strings).
func NormalizeReference(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	// Absolute URLs point back into the same service; keep only the path
	if strings.Contains(ref, "://") {
		parsed, err := url.Parse(ref)
		if err != nil || parsed.Path == "" {
			return ""
		}
		ref = parsed.Path
	}

	// JSON pointer fragments address a part of a resource, not a resource
	if idx := strings.Index(ref, "#"); idx >= 0 {
		ref = ref[:idx]
	}
	if idx := strings.Index(ref, "?"); idx >= 0 {
		ref = ref[:idx]
	}

	if !strings.HasPrefix(ref, "/") {
		return ""
	}

	// Services link the same resource with and without a trailing slash;
	// fold them together so the visited set sees one path.
	if len(ref) > 1 {
		ref = strings.TrimRight(ref, "/")
	}

	return ref
}
