package tabular

import (
	"strings"

	"github.com/sells-group/leadclean/internal/record"
)

// Write renders the record table back to comma-delimited text. The header
// row is the union of all keys observed across rows: priority columns
// first (in the given order, only those actually present), then the
// remainder in discovery order. Every row is padded to the full column
// set so the output table has a uniform shape.
func Write(rows record.Table, priority []string) string {
	headers := collectHeaders(rows, priority)
	if len(headers) == 0 {
		return ""
	}

	var b strings.Builder
	writeLine(&b, headers)
	for _, row := range rows {
		fields := make([]string, len(headers))
		for i, h := range headers {
			fields[i] = row.Get(h)
		}
		writeLine(&b, fields)
	}
	return b.String()
}

// collectHeaders builds the output column list: priority columns that
// exist somewhere, then every other key in first-seen order.
func collectHeaders(rows record.Table, priority []string) []string {
	seen := make(map[string]struct{})
	var discovered []string
	for _, row := range rows {
		for _, k := range row.Keys() {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			discovered = append(discovered, k)
		}
	}

	var headers []string
	inPriority := make(map[string]struct{}, len(priority))
	for _, p := range priority {
		if _, ok := seen[p]; !ok {
			continue
		}
		if _, dup := inPriority[p]; dup {
			continue
		}
		inPriority[p] = struct{}{}
		headers = append(headers, p)
	}
	for _, k := range discovered {
		if _, ok := inPriority[k]; ok {
			continue
		}
		headers = append(headers, k)
	}
	return headers
}

func writeLine(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeField(f))
	}
	b.WriteByte('\n')
}

// escapeField wraps values containing a comma, quote, or line break in
// double quotes, doubling any inner quotes.
func escapeField(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
