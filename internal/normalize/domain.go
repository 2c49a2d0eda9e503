// Package normalize holds the pure field normalizers used across the
// pipeline: domain canonicalization, company-name cleanup, and the
// generic-mailbox roster. All functions are total — bad input degrades to
// a best-effort result, never an error.
package normalize

import "strings"

// Domain canonicalizes a website or URL into a bare lowercase hostname:
// scheme and leading "www." stripped, everything from the first "/" or
// "?" dropped. Idempotent.
func Domain(raw string) string {
	d := strings.ToLower(strings.TrimSpace(raw))
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "www.")
	if idx := strings.IndexAny(d, "/?"); idx >= 0 {
		d = d[:idx]
	}
	return d
}

// EmailDomain returns the canonical domain of the part after "@", or ""
// when the input has no "@".
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return Domain(email[at+1:])
}
