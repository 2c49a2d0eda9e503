// Package tabular turns raw delimited text into ordered records and renders
// enriched records back out. The parser is deliberately tolerant: uploaded
// contact lists are frequently malformed, and a bad line must never abort
// the run.
package tabular

import (
	"strings"

	"github.com/sells-group/leadclean/internal/progress"
	"github.com/sells-group/leadclean/internal/record"
)

// parseChunkSize is how many lines are consumed between progress events.
const parseChunkSize = 500

// Parse converts delimited text into a header list and a record table.
// The first non-blank line is the header row (trimmed, comma-split). Data
// lines are split quote-aware (doubled quotes escape a literal quote); if
// that yields a field count that does not match the header count, the line
// falls back to a naive comma split. This fallback is a known heuristic
// for unescaped embedded commas, not a strict CSV grammar — keep it.
//
// Missing trailing fields become empty strings; extra fields are dropped.
// Parse never fails: empty or header-only input yields (nil, nil).
func Parse(text string, onProgress progress.Func) ([]string, record.Table) {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil, nil
	}

	headers := splitNaive(lines[0])
	if len(headers) == 0 {
		return nil, nil
	}

	dataLines := lines[1:]
	tr := progress.NewTracker(onProgress)
	tr.Begin("parse", len(dataLines))

	rows := make(record.Table, 0, len(dataLines))
	for i, line := range dataLines {
		fields, ok := splitQuoted(line)
		if !ok || len(fields) != len(headers) {
			fields = splitNaive(line)
		}

		row := record.New()
		for j, h := range headers {
			v := ""
			if j < len(fields) {
				v = fields[j]
			}
			row.Set(h, v)
		}
		rows = append(rows, row)

		if (i+1)%parseChunkSize == 0 {
			tr.Report(i + 1)
		}
	}
	tr.Finish()

	return headers, rows
}

// splitLines breaks input on line endings, dropping blank lines.
func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

// splitNaive splits on every comma and trims each field.
func splitNaive(line string) []string {
	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// splitQuoted splits a line on commas outside double quotes. A doubled
// quote inside a quoted field is an escaped literal quote. Returns false
// when the line is malformed (unterminated quote), signaling the caller to
// fall back to the naive split.
func splitQuoted(line string) ([]string, bool) {
	var fields []string
	var cur strings.Builder
	inQuotes := false
	quoted := false

	i := 0
	for i < len(line) {
		ch := line[i]
		switch {
		case inQuotes:
			if ch == '"' {
				if i+1 < len(line) && line[i+1] == '"' {
					cur.WriteByte('"')
					i += 2
					continue
				}
				inQuotes = false
				i++
				continue
			}
			cur.WriteByte(ch)
			i++
		case ch == '"' && strings.TrimSpace(cur.String()) == "":
			inQuotes = true
			quoted = true
			cur.Reset()
			i++
		case ch == ',':
			fields = append(fields, finishField(cur.String(), quoted))
			cur.Reset()
			quoted = false
			i++
		default:
			cur.WriteByte(ch)
			i++
		}
	}
	fields = append(fields, finishField(cur.String(), quoted))

	if inQuotes {
		return fields, false
	}
	return fields, true
}

// finishField trims unquoted fields; quoted content is preserved verbatim.
func finishField(s string, quoted bool) string {
	if quoted {
		return s
	}
	return strings.TrimSpace(s)
}
