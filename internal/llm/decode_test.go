package llm

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/crewsheet/constants"
	"github.com/joseph-ayodele/crewsheet/internal/common"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
)

func TestDecodeContacts_Strict(t *testing.T) {
	raw := `{"contacts":[{"name":"John Doe","role":"PHOTOGRAPHER","phone":"917-555-1234","confidence":0.9}]}`
	out, content, err := DecodeContacts([]byte(raw), nil)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(content))
	require.Len(t, out.Contacts, 1)
	assert.Equal(t, "John Doe", out.Contacts[0].Name)
	assert.Equal(t, 0.9, out.Contacts[0].Confidence)
}

func TestDecodeContacts_LenientRepair(t *testing.T) {
	raw := "```json\n" +
		`{"people":[{"full_name":"Jane Smith","mobile":9175552222,"email":"bad@","notes":"x"},{"name":"","email":"a@b.co"}]}` +
		"\n```"
	out, _, err := DecodeContacts([]byte(raw), nil)
	require.NoError(t, err)
	require.Len(t, out.Contacts, 1)

	c := out.Contacts[0]
	assert.Equal(t, "Jane Smith", c.Name)
	assert.Equal(t, "9175552222", c.Phone)
	assert.Empty(t, c.Email)
}

func TestDecodeContacts_BareArrayAndPercentConfidence(t *testing.T) {
	raw := `[{"name":"Amy Lee","email":"amy@lee.com","confidence":"85"}]`
	out, _, err := DecodeContacts([]byte(raw), nil)
	require.NoError(t, err)
	require.Len(t, out.Contacts, 1)
	assert.InDelta(t, 0.85, out.Contacts[0].Confidence, 1e-9)
}

func TestDecodeContacts_Violations(t *testing.T) {
	for _, raw := range []string{
		"not json at all",
		`{"contacts":"nope"}`,
		`{"answer":42}`,
		`"just a string"`,
	} {
		_, _, err := DecodeContacts([]byte(raw), nil)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, common.ErrSchemaViolation), raw)
	}
}

func TestToContacts(t *testing.T) {
	resp := EnhanceResponse{Contacts: []ContactFields{
		{Name: "John Doe", Phone: "9175551234"},
		{Name: "Jane Smith", Email: "jane@x.com", Confidence: 0.95},
	}}
	got := resp.ToContacts(constants.SourceAI)
	require.Len(t, got, 2)
	assert.Equal(t, 0.7, got[0].Confidence)
	assert.Equal(t, 0.95, got[1].Confidence)
	assert.Equal(t, constants.SourceAI, got[1].Source)
}

func TestBuildUserPrompt(t *testing.T) {
	req := EnhanceRequest{
		Text:       strings.Repeat("x", 50),
		FileName:   "callsheet.pdf",
		Candidates: []entity.Contact{{Name: "John Doe", Role: "PHOTOGRAPHER", Phone: "+19175551234"}},
	}
	p := BuildUserPrompt(req, 10)
	assert.Contains(t, p, "Filename: callsheet.pdf")
	assert.Contains(t, p, `"name":"John Doe"`)
	assert.Contains(t, p, "…(truncated)")
	assert.NotContains(t, p, strings.Repeat("x", 11))
}

func TestBuildSystemPrompt_Modes(t *testing.T) {
	assert.Contains(t, BuildSystemPrompt(EnhanceRequest{Mode: constants.ModeAIValidation}), "Review the candidate contacts")
	assert.Contains(t, BuildSystemPrompt(EnhanceRequest{Mode: constants.ModeAIOnly}), "Extract every person")
	assert.Contains(t, BuildSystemPrompt(EnhanceRequest{DocumentType: constants.DocCallSheet}), "call sheet")
}
