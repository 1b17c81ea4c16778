package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/crewsheet/internal/entity"
)

func TestCleanName(t *testing.T) {
	tests := map[string]string{
		"  john   doe ":     "John Doe",
		"JANE ROE":          "Jane Roe",
		"José Núñez":        "Jose Nunez",
		"Person 42":         "Person",
		"- Ann Lee -":       "Ann Lee",
		"**Sam** (Stylist)": "Sam Stylist",
		"1234":              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, CleanName(in), in)
	}
}

func TestCleanRole(t *testing.T) {
	assert.Equal(t, "MUA", CleanRole("Makeup Artist"))
	assert.Equal(t, "MUA", CleanRole("MAKE-UP ARTIST"))
	assert.Equal(t, "MUA", CleanRole("make up artist:"))
	assert.Equal(t, "PHOTOGRAPHER", CleanRole("PHOTO GRAPHER"))
	assert.Equal(t, "CATERING", CleanRole(" catering "))
	assert.Equal(t, "", CleanRole("12345"))
	assert.Equal(t, "", CleanRole("  "))
}

func TestCleanEmail(t *testing.T) {
	assert.Equal(t, "john@example.com", CleanEmail(" John@Example.COM "))
	assert.Equal(t, "john@example.com", CleanEmail("mailto:john@example.com"))
	assert.Equal(t, "a.b+c@studio.co.uk", CleanEmail("<a.b+c@studio.co.uk>"))
	assert.Equal(t, "", CleanEmail("john@example"))
	assert.Equal(t, "", CleanEmail("@example.com"))
	assert.Equal(t, "", CleanEmail("not an email"))
	long := make([]byte, 95)
	for i := range long {
		long[i] = 'a'
	}
	assert.Equal(t, "", CleanEmail(string(long)+"@x.com"))
}

func TestCleanPhone(t *testing.T) {
	assert.Equal(t, "(917) 555-1234", CleanPhone("917-555-1234"))
	assert.Equal(t, "(917) 555-1234", CleanPhone("917.555.1234 x22"))
	assert.Equal(t, "+1 (917) 555-1234", CleanPhone("1 917 555 1234"))
	assert.Equal(t, "+44 20 7946 0958", CleanPhone("+44 20 7946 0958"))
	assert.Equal(t, "", CleanPhone("555-12"))
}

func TestFormatE164(t *testing.T) {
	assert.Equal(t, "+19175551234", FormatE164("917-555-1234"))
	assert.Equal(t, "+19175551234", FormatE164("(917) 555-1234"))
	assert.Equal(t, "+19175551234", FormatE164("+1 917 555 1234"))
	assert.Equal(t, "+442079460958", FormatE164("+44 20 7946 0958"))
	assert.Equal(t, "5551234", FormatE164("555-1234"))
	assert.Equal(t, "", FormatE164("12"))
}

func TestCleanCompany(t *testing.T) {
	assert.Equal(t, "Smith & Sons Co", CleanCompany("  Smith & Sons Co.!!"))
	assert.Equal(t, "Acme Studio", CleanCompany("Acme   Studio,"))
}

func TestCleanerClean(t *testing.T) {
	c := entity.Contact{Name: "john doe", Role: "", Phone: "917 555 1234", Email: "BAD@", Confidence: 1.4}
	NewCleaner(PhoneE164).Clean(&c)
	assert.Equal(t, "John Doe", c.Name)
	assert.Equal(t, "CONTACT", c.Role)
	assert.Equal(t, "+19175551234", c.Phone)
	assert.Equal(t, "", c.Email)
	assert.Equal(t, 1.0, c.Confidence)

	n := entity.Contact{Phone: "917 555 1234"}
	NewCleaner(ParsePhoneStyle("national")).Clean(&n)
	assert.Equal(t, "(917) 555-1234", n.Phone)
}
