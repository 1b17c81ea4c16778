package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"crlf", "a\r\nb\rc", "a\nb\nc"},
		{"smart quotes and dashes", "“Jo’s” — set", `"Jo's" - set`},
		{"spaces and tabs", "John   Doe\t\t917", "John Doe 917"},
		{"blank lines", "a\n\n\n\n\nb", "a\n\nb"},
		{"trailing spaces", "a   \n  b", "a\nb"},
		{"letter spaced role", "p h o t o g r a p h e r: John", "photographer: John"},
		{"letter spaced upper", "S T Y L I S T : Jane", "STYLIST : Jane"},
		{"letter double spaced", "p  h  o  t  o  g  r  a  p  h  e  r", "photographer"},
		{"letter tab spaced", "P\tH\tO\tT\tO\tG\tR\tA\tP\tH\tE\tR", "PHOTOGRAPHER"},
		{"normal words untouched", "photographer and stylist", "photographer and stylist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizePreserveTabs(t *testing.T) {
	in := "Name \t\t Role\tEmail\n  John  Doe\tPHOTOGRAPHER\tj@x.com"
	got := NormalizeWith(in, Options{PreserveTabs: true})
	assert.Equal(t, "Name\tRole\tEmail\nJohn Doe\tPHOTOGRAPHER\tj@x.com", got)
}

func TestNormalizeIdempotent(t *testing.T) {
	in := "P R O D U C E R:  Ann  Lee – 917.555.1234\r\n\r\n\r\n\r\nend"
	once := Normalize(in)
	assert.Equal(t, once, Normalize(once))
	assert.Contains(t, once, "PRODUCER: Ann Lee - 917.555.1234")
}
