package pipeline

import (
	"strings"

	"github.com/sells-group/leadclean/internal/normalize"
	"github.com/sells-group/leadclean/internal/progress"
	"github.com/sells-group/leadclean/internal/record"
	"github.com/sells-group/leadclean/internal/schema"
)

// assignPeers gives every eligible contact an alternative contact from the
// same canonical domain: within each domain group the peer of contact i is
// contact (i+1) mod N, so a group of two swaps and a group of one gets
// nothing. Flagged rows neither receive nor serve as peers. Returns how
// many rows received a peer.
func assignPeers(rows record.Table, mapping schema.Mapping, tr *progress.Tracker) int {
	emailCol := mapping.Header(schema.RoleEmail)
	companyCol := mapping.Header(schema.RoleCompany)

	// Group index positions by domain, preserving row order within a group.
	groups := make(map[string][]int)
	order := make([]string, 0)
	for i, row := range rows {
		if row.Get(ColFlagged) == "true" {
			continue
		}
		domain := row.Get(ColDomain)
		if domain == "" {
			continue
		}
		if _, seen := groups[domain]; !seen {
			order = append(order, domain)
		}
		groups[domain] = append(groups[domain], i)
	}

	paired := 0
	done := 0
	for _, domain := range order {
		// Peer candidates: named, non-generic mailboxes whose name is not
		// just the company name again.
		candidates := groups[domain][:0]
		for _, idx := range groups[domain] {
			row := rows[idx]
			name := row.PersonName()
			if name == "" {
				continue
			}
			if normalize.IsGenericMailbox(row.Get(emailCol)) {
				continue
			}
			if companyCol != "" && strings.EqualFold(name, row.Get(companyCol)) {
				continue
			}
			candidates = append(candidates, idx)
		}

		n := len(candidates)
		for i, idx := range candidates {
			peer := rows[candidates[(i+1)%n]]
			row := rows[idx]

			name := peer.PersonName()
			if peer == row || name == "" {
				continue
			}
			if companyCol != "" && strings.EqualFold(name, row.Get(companyCol)) {
				continue
			}

			row.Set(ColAltName, name)
			row.Set(ColAltEmail, peer.Get(emailCol))
			row.Set(ColAltTitle, peer.Title())
			paired++
		}

		done += len(groups[domain])
		tr.Report(done)
	}
	return paired
}
