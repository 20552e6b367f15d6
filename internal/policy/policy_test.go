package policy_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstrates/internal/domain"
	"gstrates/internal/policy"
)

func TestDefault_IsValid(t *testing.T) {
	p := policy.Default()
	require.NotEmpty(t, p.Rules)
	require.NoError(t, p.Validate())
	assert.Equal(t, "biscuit", p.Rules[0].Phrase)
}

func TestMatchDescription_CaseInsensitiveInOrder(t *testing.T) {
	p := &policy.Policy{Rules: []policy.Rule{
		{Phrase: "biscuit", Code: "1905", Rate: 9},
		{Phrase: "chocolate", Code: "1806", Rate: 9},
	}}

	got := p.MatchDescription("Chocolate BISCUITS, cream filled")
	require.Len(t, got, 2)
	assert.Equal(t, "1905", got[0].Code)
	assert.Equal(t, "1806", got[1].Code)

	assert.Empty(t, p.MatchDescription("Fresh milk"))
}

func TestMatchDescription_NilPolicy(t *testing.T) {
	var p *policy.Policy
	assert.Nil(t, p.MatchDescription("biscuit"))
}

func TestParse_LowercasesPhrases(t *testing.T) {
	p, err := policy.Parse([]byte("rules:\n  - phrase: \" Ice Cream \"\n    code: \"2105\"\n    rate: 9\n"))
	require.NoError(t, err)
	assert.Equal(t, "ice cream", p.Rules[0].Phrase)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty phrase", "rules:\n  - phrase: \"\"\n    code: \"1905\"\n    rate: 9\n"},
		{"bad code", "rules:\n  - phrase: tea\n    code: \"9\"\n    rate: 5\n"},
		{"rate out of range", "rules:\n  - phrase: tea\n    code: \"0902\"\n    rate: 150\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := policy.Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, domain.ErrInvalidPolicy)
		})
	}

	_, err := policy.Parse([]byte("rules: ["))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	p, err := policy.Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, p.Rules)

	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  - phrase: tea\n    code: \"0902\"\n    rate: 2.5\n"), 0o600))
	p, err = policy.Load(path)
	require.NoError(t, err)
	require.Len(t, p.Rules, 1)
	assert.Equal(t, 2.5, p.Rules[0].Rate)

	_, err = policy.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
