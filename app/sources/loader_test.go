package sources

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	srcs, err := Load("")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(srcs) != 16 {
		t.Errorf("Expected 16 builtin sources, got %d", len(srcs))
	}

	if srcs[0].Name != "BleepingComputer" {
		t.Errorf("Expected BleepingComputer first, got %s", srcs[0].Name)
	}

	vendors := 0
	for _, s := range srcs {
		if s.Vendor() {
			vendors++
		}
	}
	if vendors != 8 {
		t.Errorf("Expected 8 vendor-tier sources, got %d", vendors)
	}
}

func TestLoad_YAMLOverride(t *testing.T) {
	content := `sources:
  - name: Test Feed
    url: https://example.com/feed.xml
    tier: news
  - name: Vendor Feed
    url: https://vendor.example.com/advisories.xml
    tier: vendor
`
	path := filepath.Join(t.TempDir(), "sources.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	srcs, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(srcs) != 2 {
		t.Fatalf("Expected 2 sources, got %d", len(srcs))
	}
	if srcs[0].Name != "Test Feed" || srcs[0].Tier != TierNews {
		t.Errorf("Unexpected first source: %+v", srcs[0])
	}
	if !srcs[1].Vendor() {
		t.Error("Second source should be vendor tier")
	}
}

func TestLoad_InvalidTier(t *testing.T) {
	content := `sources:
  - name: Bad Feed
    url: https://example.com/feed.xml
    tier: blog
`
	path := filepath.Join(t.TempDir(), "sources.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for unknown tier")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/sources.yml"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoad_EmptySources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yml")
	if err := os.WriteFile(path, []byte("sources: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for empty source list")
	}
}
