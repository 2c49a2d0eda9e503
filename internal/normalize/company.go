package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	parenthetical = regexp.MustCompile(`\([^)]*\)`)
	trademarks    = strings.NewReplacer("®", "", "™", "", "©", "")
	multiSpace    = regexp.MustCompile(`\s{2,}`)

	// A suffix must stand alone after a comma or whitespace (or be the
	// whole name) so company names ending in these letters survive intact
	// ("Cisco", "Zinc", "Sunoco").
	legalSuffix = regexp.MustCompile(`(?i)(\s*,\s*|\s+|^)(ltd|llc|l\.l\.c|inc|incorporated|gmbh|pvt|private|limited|co)\.?\s*$`)

	titleCaser = cases.Title(language.English)
)

// CompanyName cleans a raw company string for display and comparison:
// lowercased, taglines after "|" or ":" dropped, parentheticals and legal
// entity suffixes stripped, trademark glyphs and non-printables removed,
// whitespace collapsed, then each word title-cased. Best-effort display
// cleanup, not a legal-entity resolver; empty input yields "".
func CompanyName(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return ""
	}

	// Taglines: "Acme | cloud tools", "Acme: we build stuff".
	if idx := strings.IndexAny(name, "|:"); idx >= 0 {
		name = name[:idx]
	}

	name = parenthetical.ReplaceAllString(name, " ")
	name = trademarks.Replace(name)
	name = stripNonPrintable(name)

	// Legal suffixes may stack ("acme holdings ltd llc"); strip repeatedly.
	for {
		stripped := legalSuffix.ReplaceAllString(name, "")
		if stripped == name {
			break
		}
		name = stripped
	}

	name = strings.TrimRight(strings.TrimSpace(name), ".,;&- ")
	name = multiSpace.ReplaceAllString(strings.TrimSpace(name), " ")
	if name == "" {
		return ""
	}
	return titleCaser.String(name)
}

func stripNonPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || unicode.IsGraphic(r) {
			return r
		}
		return -1
	}, s)
}
