package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// IDs holds security identifiers found in a piece of text. Both slices are
// deduplicated, uppercased and sorted so callers get deterministic output.
type IDs struct {
	CVEs  []string
	Mitre []string
}

var (
	// CVE-YYYY-NNNNN with a 4-7 digit sequence number. The trailing word
	// boundary rejects 8+ digit numbers outright.
	cvePattern = regexp.MustCompile(`(?i)CVE-(\d{4})-(\d{4,7})\b`)

	// MITRE ATT&CK technique IDs: T#### with an optional .### sub-technique.
	mitrePattern = regexp.MustCompile(`(?i)\bT\d{4}(?:\.\d{3})?\b`)
)

// AllIDs scans text for CVE numbers and MITRE ATT&CK technique IDs. It is
// total: any input, including empty, yields a valid (possibly empty) result.
func AllIDs(text string) IDs {
	return IDs{
		CVEs:  CVEs(text),
		Mitre: MitreIDs(text),
	}
}

// CVEs extracts validated CVE identifiers from text.
func CVEs(text string) []string {
	if text == "" {
		return []string{}
	}

	seen := make(map[string]struct{})
	for _, match := range cvePattern.FindAllStringSubmatch(text, -1) {
		cve := strings.ToUpper(match[0])
		if !IsValidCVE(cve) {
			continue
		}
		seen[cve] = struct{}{}
	}

	return sortedKeys(seen)
}

// IsValidCVE reports whether s is a well-formed CVE identifier: year in
// [1999, 2099], 4-7 digit number, and no zero-padding anomalies (the ID
// reconstructed from its parsed parts must equal the input).
func IsValidCVE(s string) bool {
	s = strings.ToUpper(strings.TrimSpace(s))

	match := cvePattern.FindStringSubmatch(s)
	if match == nil || match[0] != s {
		return false
	}

	year, err := strconv.Atoi(match[1])
	if err != nil || year < 1999 || year > 2099 {
		return false
	}

	number := match[2]
	if len(number) < 4 || len(number) > 7 {
		return false
	}

	return s == fmt.Sprintf("CVE-%04d-%s", year, number)
}

// MitreIDs extracts MITRE ATT&CK technique IDs from text.
func MitreIDs(text string) []string {
	if text == "" {
		return []string{}
	}

	seen := make(map[string]struct{})
	for _, match := range mitrePattern.FindAllString(text, -1) {
		seen[strings.ToUpper(match)] = struct{}{}
	}

	return sortedKeys(seen)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge combines two identifier sets, deduplicating and re-sorting.
func Merge(a, b IDs) IDs {
	return IDs{
		CVEs:  mergeSorted(a.CVEs, b.CVEs),
		Mitre: mergeSorted(a.Mitre, b.Mitre),
	}
}

func mergeSorted(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, v := range a {
		seen[v] = struct{}{}
	}
	for _, v := range b {
		seen[v] = struct{}{}
	}
	return sortedKeys(seen)
}
