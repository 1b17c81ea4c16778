package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeRole(t *testing.T) {
	tests := []struct {
		in    string
		want  Role
		known bool
	}{
		{"MAKEUP ARTIST", RoleMUA, true},
		{"make-up artist", RoleMUA, true},
		{"Make Up Artist", RoleMUA, true},
		{"photo grapher", RolePhotographer, true},
		{"Hair & Makeup", RoleHMUA, true},
		{"  producer: ", RoleProducer, true},
		{"PHOTOGRAPHR", RolePhotographer, true},
		{"Caterer", Role("CATERER"), false},
		{"", RoleContact, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, known := CanonicalizeRole(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.known, known)
		})
	}
}

func TestContainsKnownRole(t *testing.T) {
	assert.Equal(t, RoleCreativeDirector, ContainsKnownRole("Jane Roe, Creative Director at Acme"))
	assert.Equal(t, RoleAssistant, ContainsKnownRole("photo assistant"))
	assert.Equal(t, RoleMUA, ContainsKnownRole("john - makeup artist"))
	assert.Equal(t, Role(""), ContainsKnownRole("72 Greene Ave"))
	assert.Equal(t, Role(""), ContainsKnownRole("PRODUCTION OFFICE"))
}

func TestRolePriority(t *testing.T) {
	ordered := []string{"PRODUCER", "DIRECTOR", "PHOTOGRAPHER", "CREATIVE DIRECTOR", "STYLIST", "MUA", "MODEL", "TALENT", "ASSISTANT", "CONTACT"}
	for i := 1; i < len(ordered); i++ {
		assert.Less(t, RolePriority(ordered[i-1]), RolePriority(ordered[i]), "%s before %s", ordered[i-1], ordered[i])
	}
	assert.Equal(t, RolePriority("PRODUCER"), RolePriority("EXECUTIVE PRODUCER"))
	assert.Equal(t, RolePriority("ASSISTANT"), RolePriority("PHOTO ASSISTANT"))
	assert.Equal(t, RolePriority("MUA"), RolePriority("HMUA"))
	assert.Less(t, RolePriority("GAFFER"), RolePriority("CONTACT"))
}

func TestRoleKeywords(t *testing.T) {
	kw := RoleKeywords()
	assert.Contains(t, kw, "photographer")
	assert.Contains(t, kw, "makeup")
	for _, w := range kw {
		assert.GreaterOrEqual(t, len(w), 5)
	}
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy(" Hybrid ")
	assert.NoError(t, err)
	assert.Equal(t, StrategyHybrid, s)

	s, err = ParseStrategy("ai")
	assert.NoError(t, err)
	assert.Equal(t, StrategyAIOnly, s)

	_, err = ParseStrategy("magic")
	assert.Error(t, err)
}
