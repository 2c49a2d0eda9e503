package schema

import (
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Logical column roles the pipeline understands.
const (
	RoleEmail     = "email"
	RoleCompany   = "company"
	RoleWebsite   = "website"
	RoleFullName  = "full_name"
	RoleFirstName = "first_name"
	RoleLastName  = "last_name"
	RoleTitle     = "title"
	RolePhone     = "phone"
)

// Mapping maps logical roles to actual header names. It is built once per
// upload, before the pipeline runs, and is immutable during processing.
type Mapping map[string]string

// Header returns the mapped header for a role, or "".
func (m Mapping) Header(role string) string {
	return m[role]
}

// Has reports whether a role is mapped to a non-empty header.
func (m Mapping) Has(role string) bool {
	return strings.TrimSpace(m[role]) != ""
}

// Validate checks that every role the mode requires is mapped. This is
// caller-side validation: the pipeline itself trusts the mapping.
func (m Mapping) Validate(mode Mode) error {
	switch mode {
	case ModeSingleEmail:
		if !m.Has(RoleEmail) {
			return eris.New("schema: single-email mode requires an email column mapping")
		}
	case ModeMultiEmail:
		// Slot columns (email_1, email_2, ...) are discovered from the
		// header row itself; no mapping is required.
	case ModeDomainOnly:
		if !m.Has(RoleWebsite) {
			return eris.New("schema: domain-only mode requires a website column mapping")
		}
	case ModeUnknown:
		// Nothing to require; the pipeline passes rows through untouched.
	}
	return nil
}

// LoadMapping reads a role→header mapping from a YAML file:
//
//	mapping:
//	  email: "Work Email"
//	  company: "Company Name"
func LoadMapping(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "schema: read mapping %s", path)
	}

	var wrapper struct {
		Mapping map[string]string `yaml:"mapping"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "schema: parse mapping")
	}
	if len(wrapper.Mapping) == 0 {
		return nil, eris.Errorf("schema: mapping file %s has no mapping block", path)
	}
	return Mapping(wrapper.Mapping), nil
}

// autoPatterns pair each role with header regexes tried in order.
var autoPatterns = []struct {
	role     string
	patterns []*regexp.Regexp
}{
	{RoleEmail, []*regexp.Regexp{
		regexp.MustCompile(`(?i)^e-?mail$`),
		regexp.MustCompile(`(?i)e-?mail`),
	}},
	{RoleWebsite, []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(website|domain|url|site)$`),
		regexp.MustCompile(`(?i)(website|domain|url|site)`),
	}},
	{RoleCompany, []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(company|organi[sz]ation|account)`),
		regexp.MustCompile(`(?i)(company|organi[sz]ation)`),
	}},
	{RoleFullName, []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(full[ _-]?name|name|contact[ _-]?name)$`),
	}},
	{RoleFirstName, []*regexp.Regexp{regexp.MustCompile(`(?i)first[ _-]?name`)}},
	{RoleLastName, []*regexp.Regexp{regexp.MustCompile(`(?i)last[ _-]?name`)}},
	{RoleTitle, []*regexp.Regexp{regexp.MustCompile(`(?i)^(job[ _-]?title|title|position|role)$`)}},
	{RolePhone, []*regexp.Regexp{regexp.MustCompile(`(?i)phone`)}},
}

// AutoMap infers a role→header mapping from header names. Multi-email slot
// columns never map to the single email role. Headers already claimed by a
// role are not reused.
func AutoMap(headers []string) Mapping {
	m := make(Mapping)
	claimed := make(map[string]struct{})

	for _, rp := range autoPatterns {
		for _, re := range rp.patterns {
			for _, h := range headers {
				if _, taken := claimed[h]; taken {
					continue
				}
				if rp.role == RoleEmail && EmailSlotRe.MatchString(strings.TrimSpace(h)) {
					continue
				}
				if re.MatchString(h) {
					m[rp.role] = h
					claimed[h] = struct{}{}
					break
				}
			}
			if m.Has(rp.role) {
				break
			}
		}
	}
	return m
}
