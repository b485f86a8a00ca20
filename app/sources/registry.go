package sources

// Tier groups sources by how their content is vetted. Vendor advisories are
// security-relevant by construction and bypass the keyword relevance filter.
type Tier string

const (
	TierNews     Tier = "news"
	TierVendor   Tier = "vendor"
	TierResearch Tier = "research"
)

// Source is one configured feed: a display name, its RSS/Atom URL and the
// tier it belongs to.
type Source struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	Tier Tier   `yaml:"tier"`
}

// Vendor reports whether a source skips the cybersecurity keyword filter.
func (s Source) Vendor() bool {
	return s.Tier == TierVendor
}

// Defaults is the builtin source registry. Order matters: the deduplicator's
// first-seen tie-break follows registration order, so news outlets come
// before vendor advisories and research feeds.
func Defaults() []Source {
	return []Source{
		{Name: "BleepingComputer", URL: "https://www.bleepingcomputer.com/feed/", Tier: TierNews},
		{Name: "ThreatPost", URL: "https://threatpost.com/feed/", Tier: TierNews},
		{Name: "The Hacker News", URL: "https://feeds.feedburner.com/TheHackersNews", Tier: TierNews},
		{Name: "The Cyber Express", URL: "https://thecyberexpress.com/feed/", Tier: TierNews},

		{Name: "Cisco PSIRT", URL: "https://sec.cloudapps.cisco.com/security/center/psirtrss20/CiscoSecurityAdvisory.xml", Tier: TierVendor},
		{Name: "Cisco CSAF", URL: "https://sec.cloudapps.cisco.com/security/center/csaf_20.xml", Tier: TierVendor},
		{Name: "Cisco Event Responses", URL: "https://sec.cloudapps.cisco.com/security/center/eventResponses_20.xml", Tier: TierVendor},
		{Name: "Palo Alto Networks", URL: "https://security.paloaltonetworks.com/rss.xml", Tier: TierVendor},
		{Name: "AWS Security", URL: "https://aws.amazon.com/security/security-bulletins/feed/", Tier: TierVendor},
		{Name: "Google Security", URL: "https://security.googleblog.com/feeds/posts/default?alt=rss", Tier: TierVendor},
		{Name: "Chrome Releases", URL: "https://chromereleases.googleblog.com/feeds/posts/default?alt=rss", Tier: TierVendor},
		{Name: "Cloudflare", URL: "https://developers.cloudflare.com/changelog/rss/index.xml", Tier: TierVendor},

		{Name: "SANS ISC", URL: "https://isc.sans.edu/rssfeed_full.xml", Tier: TierResearch},
		{Name: "Krebs on Security", URL: "https://krebsonsecurity.com/feed/", Tier: TierResearch},
		{Name: "Schneier on Security", URL: "https://www.schneier.com/feed/atom/", Tier: TierResearch},
		{Name: "Kaspersky Securelist", URL: "https://securelist.com/feed/", Tier: TierResearch},
	}
}
