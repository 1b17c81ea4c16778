package entity

import (
	"strings"

	"github.com/joseph-ayodele/crewsheet/constants"
)

// Contact is one extracted person. Extractors create candidates, cleaners
// mutate them in place, and the scorer emits the final copies.
type Contact struct {
	Name       string           `json:"name"`
	Role       string           `json:"role"`
	Email      string           `json:"email,omitempty"`
	Phone      string           `json:"phone,omitempty"`
	Company    string           `json:"company,omitempty"`
	Section    string           `json:"section,omitempty"`
	Confidence float64          `json:"confidence"`
	Source     constants.Source `json:"source"`
	LineNumber int              `json:"line_number,omitempty"`
}

// DedupKey is lower(name)_digits(phone)_lower(email).
func (c Contact) DedupKey() string {
	return strings.ToLower(strings.TrimSpace(c.Name)) + "_" +
		DigitsOnly(c.Phone) + "_" +
		strings.ToLower(strings.TrimSpace(c.Email))
}

// HasContactMethod reports whether a phone or an email is present.
func (c Contact) HasContactMethod() bool {
	return c.Phone != "" || c.Email != ""
}

// MergeFrom fills empty fields from other and keeps the higher confidence.
func (c *Contact) MergeFrom(other Contact) {
	if c.Name == "" {
		c.Name = other.Name
	}
	if c.Role == "" || c.Role == string(constants.RoleContact) {
		if other.Role != "" {
			c.Role = other.Role
		}
	}
	if c.Email == "" {
		c.Email = other.Email
	}
	if c.Phone == "" {
		c.Phone = other.Phone
	}
	if c.Company == "" {
		c.Company = other.Company
	}
	if c.Section == "" {
		c.Section = other.Section
	}
	if c.LineNumber == 0 {
		c.LineNumber = other.LineNumber
	}
	if other.Confidence > c.Confidence {
		c.Confidence = other.Confidence
	}
}

// DigitsOnly strips everything but 0-9.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
