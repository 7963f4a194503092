package pipeline

import "regexp"

// ServiceRule describes how one known billing service shows up in email.
// Sender and subject patterns are plain lowercase substrings; amount
// patterns are ordered regexps whose first capture group is the numeral.
type ServiceRule struct {
	Name            string
	SenderPatterns  []string
	SubjectPatterns []string
	AmountPatterns  []*regexp.Regexp
	CategoryID      int64
}

// Catalog is an immutable, ordered rule list. Order matters: the first rule
// matching a message wins, so more specific services come before the
// catch-all provider groups.
type Catalog struct {
	rules []ServiceRule
}

func NewCatalog(rules []ServiceRule) Catalog {
	return Catalog{rules: rules}
}

func (c Catalog) Rules() []ServiceRule {
	return c.rules
}

const (
	categoryEntertainment = 1
	categorySoftware      = 2
	categoryInternetPhone = 3
	categoryHosting       = 4
)

var (
	rpAmountPatterns = compileAll(
		`(?i)(?:idr|rp)\.?\s*([0-9,.]+)`,
		`(?i)(?:idr|rp)\s*([0-9,.]+)`,
		`(?i)sejumlah\s*(?:idr|rp)\.?\s*([0-9,.]+)`,
	)
	usdAmountPatterns = compileAll(
		`(?i)(?:idr|rp)\.?\s*([0-9,.]+)`,
		`(?i)\$\s*([0-9,.]+)`,
		`(?i)US\$\s*([0-9,.]+)`,
	)
	totalAmountPatterns = compileAll(
		`(?i)(?:idr|rp)\.?\s*([0-9,.]+)`,
		`(?i)(?:idr|rp)\s*([0-9,.]+)`,
		`(?i)total\s*(?:idr|rp)\.?\s*([0-9,.]+)`,
	)
)

// DefaultCatalog returns the built-in catalog of known billing senders.
// Callers inject it into the scan service; alternate catalogs can be passed
// in tests.
func DefaultCatalog() Catalog {
	return NewCatalog([]ServiceRule{
		{
			Name:            "netflix",
			SenderPatterns:  []string{"@netflix.com"},
			SubjectPatterns: []string{"pembayaran netflix", "netflix billing", "netflix payment", "tagihan netflix"},
			AmountPatterns:  rpAmountPatterns,
			CategoryID:      categoryEntertainment,
		},
		{
			Name:            "spotify",
			SenderPatterns:  []string{"@spotify.com"},
			SubjectPatterns: []string{"pembayaran spotify", "spotify premium", "tagihan spotify"},
			AmountPatterns:  rpAmountPatterns,
			CategoryID:      categoryEntertainment,
		},
		{
			Name:            "adobe",
			SenderPatterns:  []string{"@adobe.com"},
			SubjectPatterns: []string{"adobe creative cloud", "adobe payment", "adobe billing", "tagihan adobe"},
			AmountPatterns:  rpAmountPatterns,
			CategoryID:      categorySoftware,
		},
		{
			Name:            "github",
			SenderPatterns:  []string{"@github.com"},
			SubjectPatterns: []string{"github billing", "github payment", "tagihan github"},
			AmountPatterns:  usdAmountPatterns,
			CategoryID:      categorySoftware,
		},
		{
			Name:            "domain",
			SenderPatterns:  []string{"@namecheap.com", "@godaddy.com", "@name.com", "@domains.com"},
			SubjectPatterns: []string{"domain renewal", "domain expiration", "domain registration", "perpanjangan domain"},
			AmountPatterns:  usdAmountPatterns,
			CategoryID:      categoryHosting,
		},
		{
			Name:            "hosting",
			SenderPatterns:  []string{"@digitalocean.com", "@hostinger.com", "@cpanel.net", "@hostgator.com", "@namecheap.com"},
			SubjectPatterns: []string{"hosting renewal", "vps renewal", "cloud server", "hosting invoice"},
			AmountPatterns:  usdAmountPatterns,
			CategoryID:      categoryHosting,
		},
		{
			Name:            "mobile",
			SenderPatterns:  []string{"@telkomsel.com", "@xl.co.id", "@indosat.com", "@tri.co.id"},
			SubjectPatterns: []string{"tagihan bulanan", "monthly bill", "tagihan selular", "mobile bill"},
			AmountPatterns:  totalAmountPatterns,
			CategoryID:      categoryInternetPhone,
		},
		{
			Name:            "internet",
			SenderPatterns:  []string{"@indihome.co.id", "@biznet.co.id", "@firstmedia.com", "@mncplay.id"},
			SubjectPatterns: []string{"tagihan internet", "internet bill", "broadband bill", "fiber bill"},
			AmountPatterns:  totalAmountPatterns,
			CategoryID:      categoryInternetPhone,
		},
	})
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}
