package patterns

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/crewsheet/constants"
)

var crewNames = []string{"Amy Lee", "Ben Cho", "Cara Diaz", "Dan Evans", "Eve Ford"}

func TestDefaultBank(t *testing.T) {
	bank := DefaultBank()
	require.Len(t, bank, len(templates))
	assert.Equal(t, "table_pipe", bank[0].Name)
	assert.Equal(t, "loose", bank[len(bank)-1].Name)

	for i, p := range bank {
		assert.Contains(t, p.groups, "name", p.Name)
		assert.GreaterOrEqual(t, p.Confidence, 0.3, p.Name)
		assert.LessOrEqual(t, p.Confidence, 0.95, p.Name)
		if i > 0 {
			assert.LessOrEqual(t, p.Confidence, bank[i-1].Confidence, "priority order at %s", p.Name)
		}
	}
}

func TestExtract_RoleNamePhone(t *testing.T) {
	res := NewExtractor(nil, nil, Config{}).Extract(context.Background(), "PHOTOGRAPHER: John Doe / 917-555-1234")
	require.Len(t, res.Contacts, 1)

	c := res.Contacts[0]
	assert.Equal(t, "John Doe", c.Name)
	assert.Equal(t, "PHOTOGRAPHER", c.Role)
	assert.Equal(t, "+19175551234", c.Phone)
	assert.Equal(t, constants.SourcePattern, c.Source)
	assert.InDelta(t, 0.8, c.Confidence, 1e-9)
	assert.Equal(t, []string{"role_name_phone"}, res.PatternsUsed)
	assert.True(t, res.IsClaimed(1))
	assert.False(t, res.Truncated)
}

func TestExtract_Layouts(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		pattern string
		role    string
		email   string
	}{
		{"pipe table", "| PRODUCER | Amy Lee | amy@lee.com | 917-555-3333 |", "table_pipe", "PRODUCER", "amy@lee.com"},
		{"tab name first", "John Doe\tPhotographer\tjohn@doe.com\t917-555-1234", "tab_name_role_email_phone", "PHOTOGRAPHER", "john@doe.com"},
		{"csv", "Jane Smith, Stylist, jane@x.com, 917-555-2222", "csv", "STYLIST", "jane@x.com"},
		{"company", "STYLIST: Jane Smith / Acme Studio / 917-555-2222", "role_name_company_phone", "STYLIST", ""},
		{"email then phone", "MUA: Kim Park / kim@park.com / 917-555-4444", "role_name_email_phone", "MUA", "kim@park.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewExtractor(nil, nil, Config{}).Extract(context.Background(), tt.text)
			require.Len(t, res.Contacts, 1)
			assert.Equal(t, []string{tt.pattern}, res.PatternsUsed)
			assert.Equal(t, tt.role, res.Contacts[0].Role)
			assert.Equal(t, tt.email, res.Contacts[0].Email)
		})
	}
}

func TestExtract_HeaderRowIgnored(t *testing.T) {
	text := "| Role | Name | Email | Phone |\n| PRODUCER | Amy Lee | amy@lee.com | 917-555-3333 |"
	res := NewExtractor(nil, nil, Config{}).Extract(context.Background(), text)
	require.Len(t, res.Contacts, 1)
	assert.Equal(t, 2, res.Contacts[0].LineNumber)
	assert.False(t, res.IsClaimed(1))
}

func TestExtract_DuplicatesCollapse(t *testing.T) {
	line := "PHOTOGRAPHER: John Doe / 917-555-1234"
	res := NewExtractor(nil, nil, Config{}).Extract(context.Background(), line+"\n"+line)
	require.Len(t, res.Contacts, 1)
	assert.Equal(t, 1, res.Contacts[0].LineNumber)
	assert.True(t, res.IsClaimed(2))
}

func TestExtract_MaxResultsIsSoftCutoff(t *testing.T) {
	var lines []string
	for i, name := range crewNames {
		lines = append(lines, fmt.Sprintf("PRODUCER: %s / 917-555-%04d", name, i))
	}
	res := NewExtractor(nil, nil, Config{MaxResults: 2}).Extract(context.Background(), strings.Join(lines, "\n"))
	assert.Len(t, res.Contacts, 2)
	assert.True(t, res.Truncated)
}

func TestExtract_MatchCapTruncates(t *testing.T) {
	var lines []string
	for i, name := range crewNames {
		lines = append(lines, fmt.Sprintf("PRODUCER: %s / 917-555-%04d", name, i))
	}
	res := NewExtractor(nil, nil, Config{MatchCap: 3}).Extract(context.Background(), strings.Join(lines, "\n"))
	assert.True(t, res.Truncated)
	assert.NotEmpty(t, res.Contacts)
}

func TestExtract_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := NewExtractor(nil, nil, Config{}).Extract(ctx, "PHOTOGRAPHER: John Doe / 917-555-1234")
	assert.Empty(t, res.Contacts)
	assert.True(t, res.Truncated)
}

func TestExtract_Empty(t *testing.T) {
	res := NewExtractor(nil, nil, Config{}).Extract(context.Background(), "")
	assert.Empty(t, res.Contacts)
	assert.False(t, res.Truncated)
}

func TestLineOf(t *testing.T) {
	starts := lineStarts("ab\ncd\n\nef")
	assert.Equal(t, 1, lineOf(starts, 0))
	assert.Equal(t, 2, lineOf(starts, 3))
	assert.Equal(t, 4, lineOf(starts, 7))
}
