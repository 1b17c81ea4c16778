package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/crewsheet/constants"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
)

func TestDedup(t *testing.T) {
	in := []entity.Contact{
		{Name: "John Doe", Phone: "+19175551234", Role: "CONTACT", Confidence: 0.5, Source: constants.SourceComponent},
		{Name: "Jane Smith", Email: "jane@x.com", Confidence: 0.6, Source: constants.SourcePattern},
		{Name: "john doe", Phone: "+1 (917) 555-1234", Role: "PHOTOGRAPHER", Company: "Doe Co", Confidence: 0.8, Source: constants.SourcePattern},
		{Name: "Jane Smith", Email: "JANE@x.com", Confidence: 0.4, Source: constants.SourcePattern},
	}
	out := Dedup(in)
	require.Len(t, out, 2)

	assert.Equal(t, "John Doe", out[0].Name)
	assert.Equal(t, "PHOTOGRAPHER", out[0].Role)
	assert.Equal(t, "Doe Co", out[0].Company)
	assert.Equal(t, 0.8, out[0].Confidence)
	assert.Equal(t, constants.SourceMerged, out[0].Source)

	assert.Equal(t, constants.SourcePattern, out[1].Source)
	assert.Equal(t, 0.6, out[1].Confidence)
}

func TestBlend(t *testing.T) {
	s := NewScorer(Weights{})
	c := entity.Contact{Name: "John Doe", Role: "PHOTOGRAPHER", Phone: "+19175551234", Confidence: 0.8, Source: constants.SourcePattern}
	// 0.4*0.8 + 0.3*1 + 0.2*0.6
	assert.InDelta(t, 0.74, s.Blend(c), 1e-9)

	c.Source = constants.SourceAIEnhanced
	assert.InDelta(t, 0.84, s.Blend(c), 1e-9)

	full := entity.Contact{Name: "Jane Smith", Role: "STYLIST", Phone: "+19175552222", Email: "j@x.com", Company: "Acme", Confidence: 1, Source: constants.SourceMerged}
	assert.Equal(t, 1.0, s.Blend(full))
}

func TestCompleteness(t *testing.T) {
	assert.Equal(t, 0.4, Completeness(entity.Contact{Name: "A B", Role: "CONTACT", Phone: "1"}))
	assert.Equal(t, 1.0, Completeness(entity.Contact{Name: "A B", Role: "MUA", Phone: "1", Email: "e", Company: "c"}))
}

func TestSort(t *testing.T) {
	contacts := []entity.Contact{
		{Name: "Zed", Role: "CONTACT", Confidence: 0.9},
		{Name: "Amy", Role: "ASSISTANT", Confidence: 0.5},
		{Name: "Bob", Role: "PRODUCER", Confidence: 0.6},
		{Name: "Cat", Role: "PHOTOGRAPHER", Confidence: 0.7},
		{Name: "Dan", Role: "PHOTOGRAPHER", Confidence: 0.9},
		{Name: "Eve", Role: "GAFFER", Confidence: 0.9},
		{Name: "Abe", Role: "PHOTOGRAPHER", Confidence: 0.7},
	}
	Sort(contacts, nil)

	var names []string
	for _, c := range contacts {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Bob", "Dan", "Abe", "Cat", "Amy", "Eve", "Zed"}, names)
}

func TestSort_RolePreferences(t *testing.T) {
	contacts := []entity.Contact{
		{Name: "Bob", Role: "PRODUCER", Confidence: 0.6},
		{Name: "Kim", Role: "MUA", Confidence: 0.6},
		{Name: "Jan", Role: "STYLIST", Confidence: 0.6},
	}
	Sort(contacts, []string{"makeup artist", "stylist"})
	assert.Equal(t, "Kim", contacts[0].Name)
	assert.Equal(t, "Jan", contacts[1].Name)
	assert.Equal(t, "Bob", contacts[2].Name)
}

func TestFinalize_Truncates(t *testing.T) {
	s := NewScorer(DefaultWeights())
	in := []entity.Contact{
		{Name: "John Doe", Role: "PHOTOGRAPHER", Phone: "+19175551234", Confidence: 0.8},
		{Name: "Amy Lee", Role: "PRODUCER", Email: "amy@lee.com", Confidence: 0.8},
		{Name: "Jane Smith", Role: "STYLIST", Email: "jane@x.com", Confidence: 0.8},
	}
	out, total := s.Finalize(in, nil, 2)
	assert.Equal(t, 3, total)
	require.Len(t, out, 2)
	assert.Equal(t, "Amy Lee", out[0].Name)
	assert.Equal(t, "John Doe", out[1].Name)
	for _, c := range out {
		assert.GreaterOrEqual(t, c.Confidence, 0.0)
		assert.LessOrEqual(t, c.Confidence, 1.0)
	}
}
