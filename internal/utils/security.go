package contextutils

import (
	"net/url"
	"strings"
)

// MaskStorageURL hides the credentials of a storage connection URL for logging,
// e.g. "postgres://user:secret@db:5432/app" becomes "postgres://***:***@db:5432/app".
// Values that are not URLs with user info (sqlite paths, memory) are returned unchanged.
func MaskStorageURL(raw string) string {
	if raw == "" {
		return "[EMPTY]"
	}

	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		if i := strings.LastIndex(raw, "@"); i >= 0 && strings.Contains(raw, "://") {
			scheme := raw[:strings.Index(raw, "://")+3]
			return scheme + "***:***" + raw[i:]
		}
		return raw
	}

	return u.Scheme + "://***:***@" + u.Host + u.Path + queryPart(u)
}

func queryPart(u *url.URL) string {
	if u.RawQuery == "" {
		return ""
	}
	return "?" + u.RawQuery
}
