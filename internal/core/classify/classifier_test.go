package classify

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/crewsheet/constants"
)

const callSheet = `CALL SHEET
Shoot Date: 10/17
Crew Call: 7:00 AM
Location: 72 Greene Ave
Weather: Sunny, sunrise 6:45am
Nearest Hospital: NYU Langone

CREW
PHOTOGRAPHER: John Doe / 917-555-1234
STYLIST: Jane Smith / jane@smith.com`

func TestAnalyze_Empty(t *testing.T) {
	a := New(nil).Analyze("", "")
	assert.Equal(t, constants.DocUnknown, a.Type)
	assert.Equal(t, 0.5, a.Confidence)
	assert.Equal(t, constants.ComplexityMedium, a.Complexity)
	assert.Equal(t, constants.StructureUnstructured, a.Structure)
	assert.Zero(t, a.EstimatedContactCount)
}

func TestAnalyze_CallSheet(t *testing.T) {
	a := New(nil).Analyze(callSheet, "")
	assert.Equal(t, constants.DocCallSheet, a.Type)
	assert.Equal(t, constants.StructureStructured, a.Structure)
	assert.Equal(t, constants.ComplexityLow, a.Complexity)
	assert.InDelta(t, a.Scores[string(constants.DocCallSheet)], a.Confidence, 1e-9)
	assert.Equal(t, []string{"CALL SHEET", "CREW"}, a.Sections)
	assert.Greater(t, a.Scores[string(constants.DocCallSheet)], a.Scores[string(constants.DocCrewList)])
}

func TestAnalyze_ConfidenceIsScoreTimesMultiplier(t *testing.T) {
	text := "Name\tRole\tPhone\nJohn Doe\tPHOTOGRAPHER\t917-555-1234\nJane Smith\tSTYLIST\t646-555-0000"
	a := New(nil).Analyze(text, "")
	assert.Equal(t, constants.StructureTabular, a.Structure)
	assert.Equal(t, constants.DocCrewList, a.Type)
	assert.InDelta(t, a.Scores[string(constants.DocCrewList)]*0.95, a.Confidence, 1e-9)
	assert.Less(t, a.Confidence, 0.4)
}

func TestAnalyze_FileNameHint(t *testing.T) {
	text := "Jane Smith 917-555-1234"
	assert.Equal(t, constants.DocTalentSheet, New(nil).Analyze(text, "/tmp/talent_casting.pdf").Type)
	assert.Equal(t, constants.DocContactDirectory, New(nil).Analyze(text, "").Type)
}

func TestDetectStructure(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  constants.Structure
	}{
		{"tabs", []string{"John Doe\tStylist\tj@x.com", "Jane Roe\tMUA\tr@x.com", "notes"}, constants.StructureTabular},
		{"pipes", []string{"| a | b | c |", "| d | e | f |"}, constants.StructureTabular},
		{"csv", []string{"John Doe, Stylist, j@x.com", "Jane Roe, MUA, r@x.com"}, constants.StructureCSVLike},
		{"colons", []string{"PRODUCER: Amy Lee", "free text", "more text", "other"}, constants.StructureStructured},
		{"prose", []string{"hello there", "nothing here"}, constants.StructureUnstructured},
		{"none", nil, constants.StructureUnstructured},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectStructure(tt.lines))
		})
	}
}

func TestComplexity(t *testing.T) {
	assert.Equal(t, constants.ComplexityLow, complexity(500, 10, 3))
	assert.Equal(t, constants.ComplexityMedium, complexity(5000, 50, 20))
	assert.Equal(t, constants.ComplexityHigh, complexity(20000, 10, 3))
	assert.Equal(t, constants.ComplexityHigh, complexity(500, 150, 3))
	assert.Equal(t, constants.ComplexityHigh, complexity(500, 10, 60))
}

func TestEstimateContactsCapped(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 150; i++ {
		fmt.Fprintf(&b, "p%d@example.com\n", i)
	}
	assert.Equal(t, 100, estimateContacts(b.String()))
	assert.Equal(t, 2, estimateContacts("John Doe and Jane Smith"))
}
