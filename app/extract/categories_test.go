package extract

import (
	"reflect"
	"testing"
)

func TestCategories(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "ransomware by actor name",
			text:     "Ransomware group LockBit hits hospital",
			expected: []string{"ransomware"},
		},
		{
			name:     "vulnerability via CVE reference",
			text:     "Cisco fixes CVE-2024-12345 in IOS XE",
			expected: []string{"vulnerability"},
		},
		{
			name:     "multiple categories in table order",
			text:     "Zero-day exploit leads to data breach at vendor",
			expected: []string{"zero-day", "exploit", "breach"},
		},
		{
			name:     "iot and malware",
			text:     "New malware targets SCADA systems",
			expected: []string{"malware", "iot"},
		},
		{
			name:     "no match",
			text:     "Quarterly earnings report released",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Categories(tt.text)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Categories(%q) = %v, want %v", tt.text, got, tt.expected)
			}
		})
	}
}

func TestCategories_CaseInsensitive(t *testing.T) {
	got := Categories("RANSOMWARE EVERYWHERE")
	if !reflect.DeepEqual(got, []string{"ransomware"}) {
		t.Errorf("Categories should match case-insensitively, got %v", got)
	}
}

func TestCategories_Empty(t *testing.T) {
	got := Categories("")
	if got == nil || len(got) != 0 {
		t.Errorf("Categories(\"\") should be an empty set, got %v", got)
	}
}
