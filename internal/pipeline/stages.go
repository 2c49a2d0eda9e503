package pipeline

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/leadclean/internal/normalize"
	"github.com/sells-group/leadclean/internal/progress"
	"github.com/sells-group/leadclean/internal/record"
	"github.com/sells-group/leadclean/internal/schema"
)

// chunkSize is how many rows CPU-bound stages process between progress
// events.
const chunkSize = 250

// filterInvalidEmails drops rows whose mapped email is blank or has no "@".
func filterInvalidEmails(rows record.Table, emailCol string, tr *progress.Tracker) record.Table {
	out := rows[:0]
	for i, row := range rows {
		email := strings.TrimSpace(row.Get(emailCol))
		if email != "" && strings.Contains(email, "@") {
			out = append(out, row)
		}
		if (i+1)%chunkSize == 0 {
			tr.Report(i + 1)
		}
	}
	return out
}

// dedupeByEmail collapses rows sharing a case-insensitive trimmed email.
// On collision the row with strictly more non-empty fields wins (richer
// record); ties keep the earliest-seen row. The winner occupies the
// earliest row's position, so input order is preserved.
func dedupeByEmail(rows record.Table, emailCol string, tr *progress.Tracker) record.Table {
	out := make(record.Table, 0, len(rows))
	position := make(map[string]int, len(rows))

	for i, row := range rows {
		key := strings.ToLower(strings.TrimSpace(row.Get(emailCol)))
		pos, seen := position[key]
		if !seen {
			position[key] = len(out)
			out = append(out, row)
		} else if row.NonEmptyCount() > out[pos].NonEmptyCount() {
			out[pos] = row
		}
		if (i+1)%chunkSize == 0 {
			tr.Report(i + 1)
		}
	}
	return out
}

// resolveProviders classifies each row's email domain and writes the
// mx_provider column. It owns its own stage lifecycle because its progress
// total is unique domains, not rows.
func (p *Pipeline) resolveProviders(ctx context.Context, rows record.Table, emailCol string, res *Result, tr *progress.Tracker) {
	start := time.Now()

	domains := make([]string, 0, len(rows))
	for _, row := range rows {
		domains = append(domains, normalize.EmailDomain(row.Get(emailCol)))
	}

	tr.Begin("resolve", uniqueNonEmpty(domains))
	providers := p.resolver.ResolveAll(ctx, domains, func(done, _ int) {
		tr.Report(done)
	})
	tr.Finish()

	for i, row := range rows {
		provider, ok := providers[domains[i]]
		if !ok {
			// Blank domain: leave the provider column empty rather than
			// inventing a category for a row with no resolvable domain.
			row.Set(ColMXProvider, "")
			continue
		}
		row.Set(ColMXProvider, string(provider))
		res.Providers[provider]++
	}

	res.StageDurations["resolve"] = time.Since(start)
	zap.L().Info("pipeline: stage complete",
		zap.String("run_id", res.RunID),
		zap.String("stage", "resolve"),
		zap.Duration("took", res.StageDurations["resolve"]),
	)
}

func uniqueNonEmpty(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		seen[v] = struct{}{}
	}
	return len(seen)
}

// normalizeFields cleans the mapped company and website columns in place
// and writes the canonical domain column every later stage groups on. When
// no website column is mapped (or its cell is blank) the domain derives
// from the email itself.
func normalizeFields(rows record.Table, mapping schema.Mapping, tr *progress.Tracker) {
	companyCol := mapping.Header(schema.RoleCompany)
	websiteCol := mapping.Header(schema.RoleWebsite)
	emailCol := mapping.Header(schema.RoleEmail)

	for i, row := range rows {
		if companyCol != "" {
			row.Set(companyCol, normalize.CompanyName(row.Get(companyCol)))
		}

		domain := ""
		if websiteCol != "" {
			domain = normalize.Domain(row.Get(websiteCol))
			row.Set(websiteCol, domain)
		}
		if domain == "" && emailCol != "" {
			domain = normalize.EmailDomain(row.Get(emailCol))
		}
		row.Set(ColDomain, domain)

		if (i+1)%chunkSize == 0 {
			tr.Report(i + 1)
		}
	}
}

// normalizeWebsiteOnly is the domain-only variant: canonicalize the mapped
// website column and record the canonical domain. No email exists, so no
// dedup, provider resolution, suppression, or peer assignment applies.
func normalizeWebsiteOnly(rows record.Table, mapping schema.Mapping, tr *progress.Tracker) record.Table {
	websiteCol := mapping.Header(schema.RoleWebsite)
	for i, row := range rows {
		domain := ""
		if websiteCol != "" {
			domain = normalize.Domain(row.Get(websiteCol))
			row.Set(websiteCol, domain)
		}
		row.Set(ColDomain, domain)
		if (i+1)%chunkSize == 0 {
			tr.Report(i + 1)
		}
	}
	return rows
}

// suppressFrequentDomains counts canonical domains across surviving rows
// and suppresses every row of any domain whose count exceeds threshold.
// Blank domains are always exempt. In flag mode rows stay in the output
// with to_be_deleted=true (the more informative policy); remove mode drops
// them. Returns the table and the number of rows flagged.
func suppressFrequentDomains(rows record.Table, threshold int, mode string, tr *progress.Tracker) (record.Table, int) {
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		if d := row.Get(ColDomain); d != "" {
			counts[d]++
		}
	}

	flagged := 0
	out := rows[:0]
	for i, row := range rows {
		domain := row.Get(ColDomain)
		over := domain != "" && counts[domain] > threshold

		switch {
		case over && mode == SuppressRemove:
			// dropped
		case over:
			row.Set(ColFlagged, "true")
			flagged++
			out = append(out, row)
		default:
			if mode == SuppressFlag {
				row.Set(ColFlagged, "false")
			}
			out = append(out, row)
		}

		if (i+1)%chunkSize == 0 {
			tr.Report(i + 1)
		}
	}
	return out, flagged
}

// finalizeShape forces the full enrichment column set onto every row so
// the output table is uniform regardless of which path a row took.
func finalizeShape(rows record.Table, suppressMode string, tr *progress.Tracker) {
	for i, row := range rows {
		row.SetDefault(ColDomain, "")
		row.SetDefault(ColMXProvider, "")
		row.SetDefault(ColAltName, "")
		row.SetDefault(ColAltEmail, "")
		row.SetDefault(ColAltTitle, "")
		if suppressMode == SuppressFlag {
			row.SetDefault(ColFlagged, "false")
		}
		if (i+1)%chunkSize == 0 {
			tr.Report(i + 1)
		}
	}
}
