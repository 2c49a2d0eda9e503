// Package resolve classifies domains into mail-provider categories by
// inspecting their MX records, with batched concurrent lookups and a
// write-once provider cache.
package resolve

import "strings"

// Provider is the coarse mail-provider category of a domain.
type Provider string

const (
	ProviderGoogle    Provider = "google"
	ProviderMicrosoft Provider = "microsoft"
	ProviderOther     Provider = "other"
)

// Classify maps MX record strings to a provider category by substring
// signature. Anything unrecognized, including an empty record set, is
// ProviderOther.
func Classify(mxRecords []string) Provider {
	for _, rec := range mxRecords {
		rec = strings.ToLower(rec)
		switch {
		case strings.Contains(rec, "google") || strings.Contains(rec, "gmail"):
			return ProviderGoogle
		case strings.Contains(rec, "outlook") || strings.Contains(rec, "microsoft") || strings.Contains(rec, "hotmail"):
			return ProviderMicrosoft
		}
	}
	return ProviderOther
}
