package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultTitleLength caps stored titles. The fingerprint input is never
// capped, see Fingerprint.
const DefaultTitleLength = 500

// Tracking query parameters that must not participate in URL identity.
// utm_ matches as a key prefix; the rest match whole keys only, so
// look-alikes such as refresh or referrer survive.
var trackingKeys = []string{"ref", "fbclid", "gclid"}

// URL canonicalizes a URL for duplicate detection: tracking parameters are
// dropped, remaining query parameters are sorted, the fragment is removed,
// a single trailing slash is stripped unless the path is root, and the
// result is lowercased. Normalization is total: anything that does not
// parse falls back to lowercase(trim(raw)).
func URL(raw string) string {
	if raw == "" {
		return ""
	}

	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.ToLower(strings.TrimSpace(raw))
	}

	u.RawQuery = cleanQuery(u.RawQuery)
	u.Fragment = ""
	u.RawFragment = ""

	normalized := u.String()

	root := u.Scheme + "://" + u.Host + "/"
	if strings.HasSuffix(normalized, "/") && normalized != root {
		normalized = strings.TrimSuffix(normalized, "/")
	}

	return strings.ToLower(normalized)
}

// cleanQuery drops tracking parameters and sorts the remaining key=value
// pairs lexicographically so parameter order never affects identity.
func cleanQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	var kept []string
	for _, param := range strings.Split(rawQuery, "&") {
		if param == "" {
			continue
		}
		key := param
		if idx := strings.Index(param, "="); idx >= 0 {
			key = param[:idx]
		}
		if isTrackingKey(key) {
			continue
		}
		kept = append(kept, param)
	}

	sort.Strings(kept)
	return strings.Join(kept, "&")
}

func isTrackingKey(key string) bool {
	key = strings.ToLower(key)
	if strings.HasPrefix(key, "utm_") {
		return true
	}
	for _, tracking := range trackingKeys {
		if key == tracking {
			return true
		}
	}
	return false
}

// Title sanitizes a title: NUL bytes are removed, the text is normalized to
// NFC, capped at maxLen runes and trimmed. maxLen <= 0 disables the cap.
func Title(title string, maxLen int) string {
	if title == "" {
		return ""
	}

	title = strings.ReplaceAll(title, "\x00", "")
	title = norm.NFC.String(title)

	if maxLen > 0 {
		runes := []rune(title)
		if len(runes) > maxLen {
			title = string(runes[:maxLen])
		}
	}

	return strings.TrimSpace(title)
}

// Fingerprint derives the deduplication key for an article from its
// normalized URL and title. The algorithm (SHA-256 over the lowercased
// concatenation, title uncapped and byte-exact apart from NUL strip and
// trim) is a frozen contract: stored fingerprints become unreachable if it
// changes. The title must NOT go through Title here: NFC folding would
// merge byte-distinct titles that hash to different fingerprints.
func Fingerprint(rawURL, title string) string {
	title = strings.TrimSpace(strings.ReplaceAll(title, "\x00", ""))
	content := strings.TrimSpace(strings.ToLower(URL(rawURL) + title))
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
