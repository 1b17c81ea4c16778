package llm

import (
	"context"

	"github.com/joseph-ayodele/crewsheet/constants"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
)

// ContactFields is one contact in the JSON contract exchanged with the model.
type ContactFields struct {
	Name       string  `json:"name"`
	Role       string  `json:"role,omitempty"`
	Email      string  `json:"email,omitempty"`
	Phone      string  `json:"phone,omitempty"`
	Company    string  `json:"company,omitempty"`
	Confidence float64 `json:"confidence,omitempty"` // optional (0..1)
	Source     string  `json:"source,omitempty"`
}

// EnhanceResponse is the validated model output: {"contacts":[...]}.
type EnhanceResponse struct {
	Contacts []ContactFields `json:"contacts"`
}

type EnhanceRequest struct {
	Text         string
	FileName     string
	DocumentType constants.DocumentType
	Mode         constants.Mode

	// Candidates are the pattern-derived contacts the model reviews or extends.
	Candidates []entity.Contact
}

// Enhancer is the AI collaborator the extraction pipeline depends on.
// Implementations return the validated response plus the raw JSON they accepted.
type Enhancer interface {
	Enhance(ctx context.Context, req EnhanceRequest) (EnhanceResponse, []byte, error)
	Available() bool
}

// ToContacts converts model output to contacts tagged with src. Missing
// confidences default to 0.7.
func (r EnhanceResponse) ToContacts(src constants.Source) []entity.Contact {
	out := make([]entity.Contact, 0, len(r.Contacts))
	for _, f := range r.Contacts {
		conf := f.Confidence
		if conf <= 0 {
			conf = defaultAIConfidence
		}
		out = append(out, entity.Contact{
			Name:       f.Name,
			Role:       f.Role,
			Email:      f.Email,
			Phone:      f.Phone,
			Company:    f.Company,
			Confidence: conf,
			Source:     src,
		})
	}
	return out
}

const defaultAIConfidence = 0.7

// FromContacts builds the candidate list sent to the model.
func FromContacts(contacts []entity.Contact) []ContactFields {
	out := make([]ContactFields, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, ContactFields{
			Name:       c.Name,
			Role:       c.Role,
			Email:      c.Email,
			Phone:      c.Phone,
			Company:    c.Company,
			Confidence: c.Confidence,
			Source:     string(c.Source),
		})
	}
	return out
}
