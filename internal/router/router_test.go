package router

import (
	"testing"

	"github.com/jmylchreest/jav-meta/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRoute_OrderedCascade(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected []SourceID
	}{
		{"fc2 prefix wins first", "FC2-1234567", fc2Sources},
		{"kin8 prefix", "KIN8-1234", []SourceID{SourceKin8}},
		{"dlid prefix", "DLID-001", []SourceID{SourceGetchu}},
		{"getchu contains", "ABC-GETCHU-1", []SourceID{SourceGetchuDMM}},
		{"mywife prefix", "Mywife No.1234", []SourceID{SourceMywife}},
		{"western date", "SOMESITE.24.01.02", euSources},
		{"uncensored heyzo", "HEYZO-1234", uncensoredSources},
		{"siro prefix falls before dmm/censored", "SIRO-1234", amateurSources},
		{"dmm without separators", "ABC001234", dmmSources},
		{"censored default", "SNIS-829", censoredSources},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Route(models.Code(tt.code)))
		})
	}
}

func TestRoute_DMMRuleSkippedWhenSeparatorsPresent(t *testing.T) {
	// ABC-001234 matches dmmRE but contains a dash, so it must fall through
	// to the censored default rather than routing to DMM.
	assert.Equal(t, censoredSources, Route(models.Code("ABC-001234")))
}

func TestRoute_FC2BeatsLaterRulesEvenIfTheyWouldMatch(t *testing.T) {
	// An FC2 code that also looks like a Western-date code must still route
	// as FC2, since FC2 is checked first in the cascade.
	assert.Equal(t, fc2Sources, Route(models.Code("FC2.24.01.02")))
}

func TestOfficials(t *testing.T) {
	assert.Equal(t, []SourceID{SourceOfficials, SourcePrestige}, Officials())
}

func TestAllowsField_NoPolicyAllowsEverySource(t *testing.T) {
	assert.True(t, AllowsField(SourceJavBus, "unlisted-field"))
}

func TestAllowsField_ExcludeListBlocksListedSource(t *testing.T) {
	assert.False(t, AllowsField(SourceJavBus, "outline"))
	assert.True(t, AllowsField(SourceAvWiki, "outline"))
}

func TestAllowsField_IncludeListOnlyAllowsListedSources(t *testing.T) {
	assert.True(t, AllowsField(SourceJavBus, "actress"))
	assert.True(t, AllowsField(SourceAvWiki, "actress"))
	assert.False(t, AllowsField(SourceFC2PPVDB, "actress"))
}
