// Package record provides the dynamic row representation shared by all
// pipeline stages: an insertion-ordered string-keyed map whose keys come
// from whatever header row the uploaded file happens to have.
package record

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Record is one row of a contact table. Keys are dynamic and preserve
// insertion order so serialization can reproduce column order.
type Record struct {
	m *orderedmap.OrderedMap[string, string]
}

// Table is an ordered sequence of records sharing a nominal header list.
type Table []*Record

// New returns an empty record.
func New() *Record {
	return &Record{m: orderedmap.New[string, string]()}
}

// FromPairs builds a record from alternating key/value pairs. Odd trailing
// keys get an empty value. Intended for tests and row synthesis.
func FromPairs(pairs ...string) *Record {
	r := New()
	for i := 0; i < len(pairs); i += 2 {
		v := ""
		if i+1 < len(pairs) {
			v = pairs[i+1]
		}
		r.Set(pairs[i], v)
	}
	return r
}

// Get returns the value for an exact key, or "" when absent.
func (r *Record) Get(key string) string {
	v, _ := r.m.Get(key)
	return v
}

// Has reports whether the exact key is present.
func (r *Record) Has(key string) bool {
	_, ok := r.m.Get(key)
	return ok
}

// Set stores a value, appending the key if it is new.
func (r *Record) Set(key, value string) {
	r.m.Set(key, value)
}

// SetDefault stores a value only when the key is absent. Used by the
// finalize stage to force placeholder columns without clobbering data.
func (r *Record) SetDefault(key, value string) {
	if !r.Has(key) {
		r.Set(key, value)
	}
}

// Delete removes a key.
func (r *Record) Delete(key string) {
	r.m.Delete(key)
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string {
	keys := make([]string, 0, r.m.Len())
	for pair := r.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Len returns the number of keys.
func (r *Record) Len() int {
	return r.m.Len()
}

// Clone returns a deep copy preserving key order.
func (r *Record) Clone() *Record {
	out := New()
	for pair := r.m.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, pair.Value)
	}
	return out
}

// NonEmptyCount returns how many fields hold a non-blank value. The dedup
// stage uses this as the richness proxy when two rows share an email.
func (r *Record) NonEmptyCount() int {
	n := 0
	for pair := r.m.Oldest(); pair != nil; pair = pair.Next() {
		if strings.TrimSpace(pair.Value) != "" {
			n++
		}
	}
	return n
}

// foldKey normalizes a header name for variant-tolerant lookup:
// "Full Name", "full_name" and "fullName" all fold to "fullname".
func foldKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, ch := range key {
		switch ch {
		case ' ', '_', '-':
			continue
		}
		b.WriteRune(unicodeLower(ch))
	}
	return b.String()
}

func unicodeLower(ch rune) rune {
	if ch >= 'A' && ch <= 'Z' {
		return ch + ('a' - 'A')
	}
	return ch
}

// Lookup returns the first non-blank value among keys whose folded form
// matches any of the given logical names (themselves folded). Uploaded
// files spell the same column many ways; this is the single place that
// tolerates those spellings.
func (r *Record) Lookup(logical ...string) string {
	want := make(map[string]struct{}, len(logical))
	for _, name := range logical {
		want[foldKey(name)] = struct{}{}
	}
	for pair := r.m.Oldest(); pair != nil; pair = pair.Next() {
		if _, ok := want[foldKey(pair.Key)]; !ok {
			continue
		}
		if v := strings.TrimSpace(pair.Value); v != "" {
			return v
		}
	}
	return ""
}

// PersonName resolves a person name for peer-assignment eligibility:
// a full-name column under any spelling, else first+last combined.
func (r *Record) PersonName() string {
	if v := r.Lookup("full_name", "name", "contact_name"); v != "" {
		return v
	}
	first := r.Lookup("first_name")
	last := r.Lookup("last_name")
	full := strings.TrimSpace(first + " " + last)
	return full
}

// Title returns the contact's job title under any common spelling.
func (r *Record) Title() string {
	return r.Lookup("title", "job_title", "position", "role")
}
