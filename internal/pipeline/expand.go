package pipeline

import (
	"regexp"
	"strings"

	"github.com/sells-group/leadclean/internal/progress"
	"github.com/sells-group/leadclean/internal/record"
	"github.com/sells-group/leadclean/internal/schema"
)

// Common field names that expanded rows carry, so downstream stages see
// multi-email rows exactly like organically single-email rows.
const (
	expandedEmailCol     = "email"
	expandedFullNameCol  = "full_name"
	expandedFirstNameCol = "first_name"
	expandedLastNameCol  = "last_name"
	expandedTitleCol     = "title"
	expandedPhoneCol     = "phone"
)

var slotSiblingRe = regexp.MustCompile(`(?i)^email_(\d+)_(.+)$`)

// expandEmailSlots fans a multi-email row out into one row per populated
// email_<n> slot: shared (non-slot) fields are copied, the slot email and
// its same-index sibling metadata (email_<n>_full_name, ...) are remapped
// to common field names. A source row with three populated slots yields
// three independent rows.
//
// Returns the expanded table and a mapping rebased onto the common names.
func expandEmailSlots(headers []string, rows record.Table, mapping schema.Mapping, tr *progress.Tracker) (record.Table, schema.Mapping) {
	slots := schema.EmailSlots(headers)

	out := make(record.Table, 0, len(rows))
	for i, row := range rows {
		for _, slot := range slots {
			email := strings.TrimSpace(row.Get(slot.Header))
			if email == "" || !strings.Contains(email, "@") {
				continue
			}
			out = append(out, expandSlot(row, slot, email))
		}
		if (i+1)%chunkSize == 0 {
			tr.Report(i + 1)
		}
	}

	expanded := schema.Mapping{
		schema.RoleEmail:     expandedEmailCol,
		schema.RoleFullName:  expandedFullNameCol,
		schema.RoleFirstName: expandedFirstNameCol,
		schema.RoleLastName:  expandedLastNameCol,
		schema.RoleTitle:     expandedTitleCol,
		schema.RolePhone:     expandedPhoneCol,
	}
	// Shared identity columns (company, website) keep their original headers.
	for _, role := range []string{schema.RoleCompany, schema.RoleWebsite} {
		if h := mapping.Header(role); h != "" {
			expanded[role] = h
		}
	}
	return out, expanded
}

// expandSlot builds one synthesized row for a populated email slot.
func expandSlot(src *record.Record, slot schema.Slot, email string) *record.Record {
	row := record.New()

	// Shared fields: everything that is not a slot column or slot sibling.
	for _, k := range src.Keys() {
		if schema.EmailSlotRe.MatchString(strings.TrimSpace(k)) {
			continue
		}
		if slotSiblingRe.MatchString(strings.TrimSpace(k)) {
			continue
		}
		row.Set(k, src.Get(k))
	}

	row.Set(expandedEmailCol, email)

	// Same-index sibling metadata, remapped to common names.
	for _, k := range src.Keys() {
		m := slotSiblingRe.FindStringSubmatch(strings.TrimSpace(k))
		if m == nil || m[1] != slot.Number {
			continue
		}
		common := commonSiblingName(m[2])
		if common == "" {
			continue
		}
		row.Set(common, src.Get(k))
	}

	return row
}

// commonSiblingName maps a slot sibling suffix ("full_name", "fullName",
// "Job Title") to the common column it feeds, or "" when unrecognized.
func commonSiblingName(suffix string) string {
	folded := strings.ToLower(suffix)
	folded = strings.NewReplacer("_", "", "-", "", " ", "").Replace(folded)
	switch folded {
	case "fullname", "name":
		return expandedFullNameCol
	case "firstname":
		return expandedFirstNameCol
	case "lastname":
		return expandedLastNameCol
	case "title", "jobtitle", "position":
		return expandedTitleCol
	case "phone", "phonenumber":
		return expandedPhoneCol
	default:
		return ""
	}
}
