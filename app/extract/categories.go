package extract

import "strings"

// categoryKeywords maps the fixed category vocabulary to the keywords that
// trigger it. Table order is emission order.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"ransomware", []string{"ransomware", "lockbit", "conti"}},
	{"apt", []string{"apt", "nation-state", "state-sponsored"}},
	{"zero-day", []string{"zero-day", "zeroday", "0-day"}},
	{"vulnerability", []string{"cve-", "vulnerability", "vulnerabilities"}},
	{"exploit", []string{"exploit", "exploitation", "poc"}},
	{"breach", []string{"breach", "data breach", "leak"}},
	{"malware", []string{"malware", "trojan", "virus"}},
	{"iot", []string{"iot", "industrial", "scada"}},
}

// Categories assigns articles to the fixed category vocabulary by
// case-insensitive keyword match against the given text.
func Categories(text string) []string {
	if text == "" {
		return []string{}
	}

	lower := strings.ToLower(text)

	categories := make([]string, 0, 4)
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				categories = append(categories, entry.category)
				break
			}
		}
	}

	return categories
}
