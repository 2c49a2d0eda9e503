package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomain(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare domain", "acme.com", "acme.com"},
		{"https with www", "https://www.acme.com", "acme.com"},
		{"http", "http://acme.com", "acme.com"},
		{"path stripped", "https://acme.com/about/team", "acme.com"},
		{"query stripped", "acme.com?utm=x", "acme.com"},
		{"uppercase", "HTTPS://WWW.ACME.COM/About", "acme.com"},
		{"www without scheme", "www.acme.co.uk", "acme.co.uk"},
		{"whitespace", "  acme.com  ", "acme.com"},
		{"empty", "", ""},
		{"garbage passes through", "not a url", "not a url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Domain(tt.in))
		})
	}
}

func TestDomain_Idempotent(t *testing.T) {
	for _, in := range []string{"https://www.acme.com/x", "acme.com", "", "WWW.ACME.IO?q=1"} {
		once := Domain(in)
		assert.Equal(t, once, Domain(once), "input %q", in)
	}
}

func TestEmailDomain(t *testing.T) {
	assert.Equal(t, "acme.com", EmailDomain("jane@ACME.com"))
	assert.Equal(t, "acme.com", EmailDomain("jane@www.acme.com"))
	assert.Equal(t, "", EmailDomain("no-at-sign"))
	assert.Equal(t, "", EmailDomain("trailing@"))
}

func TestCompanyName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"legal suffix inc", "Acme Inc.", "Acme"},
		{"legal suffix llc", "acme LLC", "Acme"},
		{"legal suffix ltd comma", "Acme, Ltd", "Acme"},
		{"gmbh", "Acme GmbH", "Acme"},
		{"pvt limited stacked", "Acme Pvt Limited", "Acme"},
		{"trailing co", "Acme Co", "Acme"},
		{"parenthetical", "Acme (formerly Boxco)", "Acme"},
		{"pipe tagline", "Acme | Cloud Tools For Teams", "Acme"},
		{"colon tagline", "Acme: We Build Stuff", "Acme"},
		{"trademark glyphs", "Acme® Widgets™", "Acme Widgets"},
		{"trailing ampersand", "Acme & ", "Acme"},
		{"whitespace collapse", "acme    widget   works", "Acme Widget Works"},
		{"title cased", "acme widget works", "Acme Widget Works"},
		{"empty", "", ""},
		{"only suffix", "LLC", ""},
		{"suffix-like word ending co", "Cisco", "Cisco"},
		{"suffix-like word ending co 2", "Sunoco", "Sunoco"},
		{"suffix-like word ending inc", "Zinc", "Zinc"},
		{"suffix-like word ending ltd", "Smaltd", "Smaltd"},
		{"real suffix after suffix-like word", "Cisco Inc", "Cisco"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompanyName(tt.in))
		})
	}
}

func TestCompanyName_Idempotent(t *testing.T) {
	for _, in := range []string{"Acme Inc.", "acme | tools", "ACME WIDGET WORKS LLC", ""} {
		once := CompanyName(in)
		assert.Equal(t, once, CompanyName(once), "input %q", in)
	}
}

func TestIsGenericMailbox(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"info@acme.com", true},
		{"INFO@Acme.com", true},
		{"Sales@acme.com", true},
		{"no-reply@acme.com", true},
		{"jane.doe@acme.com", false},
		{"information@acme.com", false}, // prefix roster is exact-match
		{"@acme.com", false},
		{"not-an-email", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, IsGenericMailbox(tt.email))
		})
	}
}
