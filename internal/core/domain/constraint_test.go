package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/parcel/internal/core/domain"
)

var versionSample = []string{
	"0.0.1", "0.9", "1.0-alpha", "1.0", "1.0.1", "1.1-beta", "1.1", "1.2", "1.2.3",
	"1.2.9", "1.3", "1.9", "2.0-rc.1", "2.0", "2.1", "10.0",
}

func TestParseConstraint_Matches(t *testing.T) {
	tests := []struct {
		constraint string
		version    string
		pre        bool
		want       bool
	}{
		{"", "1.0", false, true},
		{"", "1.0-beta", false, false},
		{"", "1.0-beta", true, true},
		{"*", "0.0.1", false, true},
		{">= 1.2", "1.2", false, true},
		{">= 1.2", "1.1", false, false},
		{"> 1.2", "1.2", false, false},
		{"< 2", "1.9", false, true},
		{"<= 2", "2.0", false, true},
		{"1.2.3", "1.2.3", false, true},
		{"= 1.2", "1.2.0", false, true},
		{"== 1.2", "1.2.1", false, false},
		{"!= 1.2", "1.2", false, false},
		{"!= 1.2", "1.3", false, true},
		{"~> 1.2", "1.9", false, true},
		{"~> 1.2", "2.0", false, false},
		{"~> 1.2.3", "1.2.9", false, true},
		{"~> 1.2.3", "1.3", false, false},
		{"~> 1.2.3", "1.2.2", false, false},
		{">= 1.0, < 2.0", "1.5", false, true},
		{">= 1.0, < 2.0", "2.0", false, false},
		{">= 1.0-alpha", "1.0-beta", false, true},
		{">= 1.0", "1.1-beta", false, false},
		{">= 1.0", "1.1-beta", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.constraint+"/"+tt.version, func(t *testing.T) {
			c, err := domain.ParseConstraint(tt.constraint)
			require.NoError(t, err)
			got := c.Matches(domain.MustParseVersion(tt.version), tt.pre)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseConstraint_Invalid(t *testing.T) {
	for _, in := range []string{">=", "1.2,", ">> 1.0", "~> 1", "abc", "<= 1.2.3.4"} {
		t.Run(in, func(t *testing.T) {
			_, err := domain.ParseConstraint(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidConstraint), "got %v", err)
		})
	}
}

func TestConstraint_RoundTrip(t *testing.T) {
	inputs := []string{
		"", "*", "1.2", "= 1.2.3", "== 1", "!= 1.0", "> 0.9", ">= 1.0", "< 2", "<= 1.2.3",
		"~> 1.2", "~> 1.2.3", ">= 1.0, < 2.0", ">= 1.0-alpha", "~> 2.0-rc.1", ">=1.0,!=1.1,<1.3",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			original, err := domain.ParseConstraint(in)
			require.NoError(t, err)

			reparsed, err := domain.ParseConstraint(original.String())
			require.NoError(t, err, "serialised form %q", original.String())

			for _, raw := range versionSample {
				v := domain.MustParseVersion(raw)
				for _, pre := range []bool{false, true} {
					assert.Equal(t, original.Matches(v, pre), reparsed.Matches(v, pre),
						"%q vs %q disagree on %s (pre=%v)", in, original.String(), raw, pre)
				}
			}
		})
	}
}

func TestConstraint_Default(t *testing.T) {
	c := domain.AnyVersion()
	assert.True(t, c.IsDefault())
	assert.Equal(t, ">= 0", c.String())
	assert.False(t, c.IncludesPrerelease())
}

func TestConstraint_And(t *testing.T) {
	c := domain.MustParseConstraint(">= 1.0").And(domain.MustParseConstraint("< 1.2"))

	assert.True(t, c.Matches(domain.MustParseVersion("1.1"), false))
	assert.False(t, c.Matches(domain.MustParseVersion("1.2"), false))
	assert.Equal(t, ">= 1.0, < 1.2", c.String())
	assert.Len(t, c.Clauses(), 2)
}

func TestConstraint_PrereleaseFlag(t *testing.T) {
	assert.True(t, domain.MustParseConstraint("~> 2.0-rc.1").IncludesPrerelease())
	assert.False(t, domain.MustParseConstraint(">= 2.0").IncludesPrerelease())
}
