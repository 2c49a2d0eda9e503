package normalize

import "strings"

// genericLocalParts are organizational mailbox prefixes. An email whose
// local part matches is not a person and is excluded from peer matching.
var genericLocalParts = map[string]struct{}{
	"info":      {},
	"contact":   {},
	"hello":     {},
	"support":   {},
	"admin":     {},
	"sales":     {},
	"marketing": {},
	"help":      {},
	"service":   {},
	"team":      {},
	"office":    {},
	"enquiries": {},
	"inquiries": {},
	"billing":   {},
	"careers":   {},
	"hr":        {},
	"jobs":      {},
	"press":     {},
	"noreply":   {},
	"no-reply":  {},
	"webmaster": {},
}

// IsGenericMailbox reports whether the email's local part (before "@",
// case-insensitive) is a known organizational alias like info@ or sales@.
func IsGenericMailbox(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at <= 0 {
		return false
	}
	local := strings.ToLower(email[:at])
	_, ok := genericLocalParts[local]
	return ok
}
