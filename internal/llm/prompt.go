package llm

import (
	"encoding/json"
	"strings"

	"github.com/joseph-ayodele/crewsheet/constants"
)

const DefaultExcerptChars = 6000

// BuildSystemPrompt composes the system message: the contract, the role
// vocabulary and the mode-specific instruction.
func BuildSystemPrompt(req EnhanceRequest) string {
	roles := constants.KnownRoles()
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}

	var task string
	switch req.Mode {
	case constants.ModeAIValidation:
		task = "Review the candidate contacts against the document. Correct wrong names, roles, phones or emails and add any person the candidates missed."
	case constants.ModeAIEnhancement:
		task = "The candidate contacts are incomplete. Fill missing roles, emails, phones and companies from the document and add every missed person."
	default:
		task = "Extract every person listed with a phone number or an email address."
	}

	parts := []string{
		"You extract crew and talent contacts from production documents (call sheets, crew lists, talent sheets).",
		"Return ONLY JSON of the form {\"contacts\":[{\"name\",\"role\",\"email\",\"phone\",\"company\",\"confidence\"}]}.",
		task,
		"Use upper-case roles; prefer one of: " + strings.Join(names, ", ") + ". Use CONTACT when no role is given.",
		"Only include a contact that has a name and at least one of phone or email.",
		"Never invent data. Never output null. If a field is not present, omit it.",
		"confidence is a number between 0 and 1.",
	}
	if req.DocumentType != "" && req.DocumentType != constants.DocUnknown {
		parts = append(parts, "The document looks like a "+strings.ReplaceAll(string(req.DocumentType), "_", " ")+".")
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the file hint, the candidates and a capped excerpt.
func BuildUserPrompt(req EnhanceRequest, excerptChars int) string {
	if excerptChars <= 0 {
		excerptChars = DefaultExcerptChars
	}

	var b strings.Builder
	if name := strings.TrimSpace(req.FileName); name != "" {
		b.WriteString("Filename: ")
		b.WriteString(name)
		b.WriteString("\n")
	}
	if len(req.Candidates) > 0 {
		cand, _ := json.Marshal(EnhanceResponse{Contacts: FromContacts(req.Candidates)})
		b.WriteString("\nCandidate contacts:\n")
		b.Write(cand)
		b.WriteString("\n")
	}

	text := strings.TrimSpace(req.Text)
	b.WriteString("\nDocument text:\n")
	if len(text) > excerptChars {
		b.WriteString(strings.ToValidUTF8(text[:excerptChars], ""))
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	return b.String()
}
