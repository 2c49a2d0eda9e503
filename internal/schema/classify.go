// Package schema inspects header rows to pick a processing mode and holds
// the logical-role-to-header column mapping supplied before a run.
package schema

import (
	"regexp"
	"strings"
)

// Mode is the schema shape of an uploaded file, derived once from the
// header row and fixed for the run.
type Mode string

const (
	ModeDomainOnly  Mode = "domain-only"
	ModeSingleEmail Mode = "single-email"
	ModeMultiEmail  Mode = "multi-email"
	ModeUnknown     Mode = "unknown"
)

// EmailSlotRe matches multi-email sub-columns like "email_1" or
// "work email_2". The trailing-digit form distinguishes multi-email files
// from files that merely contain "email" somewhere in a header.
var EmailSlotRe = regexp.MustCompile(`(?i)email_(\d+)$`)

var domainHeaderRe = regexp.MustCompile(`(?i)\b(website|domain|url|site)\b`)

// Classify picks the processing mode from header names. Precedence is
// fixed: multi-email is checked before single-email because a multi-email
// file necessarily also contains the "email" substring.
func Classify(headers []string) Mode {
	slots := 0
	hasEmail := false
	hasDomain := false
	for _, h := range headers {
		if EmailSlotRe.MatchString(strings.TrimSpace(h)) {
			slots++
		}
		if strings.Contains(strings.ToLower(h), "email") {
			hasEmail = true
		}
		if domainHeaderRe.MatchString(headerWords(h)) {
			hasDomain = true
		}
	}

	switch {
	case slots >= 2:
		return ModeMultiEmail
	case hasEmail:
		return ModeSingleEmail
	case hasDomain:
		return ModeDomainOnly
	default:
		return ModeUnknown
	}
}

// headerWords exposes word boundaries in underscore- or dash-joined
// headers ("company_website") so \b matching sees the joined words.
func headerWords(h string) string {
	return strings.NewReplacer("_", " ", "-", " ").Replace(h)
}

// EmailSlots returns the multi-email sub-columns among headers, with their
// slot numbers, in header order.
func EmailSlots(headers []string) []Slot {
	var slots []Slot
	for _, h := range headers {
		m := EmailSlotRe.FindStringSubmatch(strings.TrimSpace(h))
		if m == nil {
			continue
		}
		slots = append(slots, Slot{Header: h, Number: m[1]})
	}
	return slots
}

// Slot is one email_<n> column in a multi-email file.
type Slot struct {
	Header string // actual header, e.g. "email_1"
	Number string // slot digits, e.g. "1"
}
