// Package router implements the Category Router (CR): code to ordered
// source list, plus the per-source, per-field routing table that the merge
// accumulator consults before accepting a value from an adapter's result.
package router

import (
	"regexp"
	"strings"

	"github.com/jmylchreest/jav-meta/internal/codenorm"
	"github.com/jmylchreest/jav-meta/internal/models"
)

// SourceID names a source adapter. Most match a registered adapter.Adapter.ID();
// a few (kin8, getchu, getchu_dmm, mywife, dmm) name sources the routing
// table ground truth dispatches to that this reimplementation has not yet
// registered an adapter for — Route still lists them in their correct
// position, and the crawl loop simply skips a source its registry lookup
// fails for.
type SourceID string

const (
	SourceOfficials SourceID = "officials"
	SourcePrestige  SourceID = "prestige"
	SourceFC2PPVDB  SourceID = "fc2ppvdb"
	SourceAiravIO   SourceID = "airavio"
	SourceIQQTV     SourceID = "iqqtv"
	SourceJavBus    SourceID = "javbus"
	SourceAvWiki    SourceID = "avwiki"

	// Not yet backed by a registered adapter; see the SourceID doc comment.
	SourceKin8      SourceID = "kin8"
	SourceGetchu    SourceID = "getchu"
	SourceGetchuDMM SourceID = "getchu_dmm"
	SourceMywife    SourceID = "mywife"
	SourceDMM       SourceID = "dmm"
)

var (
	euDateRE = regexp.MustCompile(`[^.]+\.\d{2}\.\d{2}\.\d{2}`)
	dmmRE    = regexp.MustCompile(`\D{2,}00\d{3,}`)
)

var (
	fc2Sources        = []SourceID{SourceFC2PPVDB, SourceIQQTV}
	euSources         = []SourceID{SourceJavBus, SourceIQQTV}
	amateurSources    = []SourceID{SourceJavBus}
	uncensoredSources = []SourceID{SourceIQQTV, SourceJavBus}
	censoredSources   = []SourceID{SourceIQQTV, SourceJavBus}
	dmmSources        = []SourceID{SourceDMM}
)

// Route returns the ordered list of sources the crawl loop should query for
// code, following the ground-truth cascade in crawl() verbatim: FC2 →
// KIN8 → DLID → GETCHU → Mywife → Western-date → isUncensored → SIRO →
// DMM-without-separators → censored default. Each branch is checked in this
// exact order and the first match wins, even when a later rule would also
// match.
func Route(code models.Code) []SourceID {
	s := string(code)

	switch {
	case strings.HasPrefix(s, "FC2"):
		return fc2Sources
	case strings.HasPrefix(s, "KIN8"):
		return []SourceID{SourceKin8}
	case strings.HasPrefix(s, "DLID"):
		return []SourceID{SourceGetchu}
	case strings.Contains(s, "GETCHU"):
		return []SourceID{SourceGetchuDMM}
	case strings.HasPrefix(s, "Mywife"):
		return []SourceID{SourceMywife}
	case euDateRE.MatchString(s):
		return euSources
	case codenorm.IsUncensored(code):
		return uncensoredSources
	case strings.HasPrefix(s, "SIRO"):
		return amateurSources
	case dmmRE.MatchString(s) && !strings.Contains(s, "-") && !strings.Contains(s, "_"):
		return dmmSources
	default:
		return censoredSources
	}
}

// Officials always runs first, feeding the accumulator's initial value
// before the routed source list is consulted, matching crawl_officials'
// officials-then-prestige fallback.
func Officials() []SourceID {
	return []SourceID{SourceOfficials, SourcePrestige}
}

// field is a per-field inclusion policy: if Include is non-empty, only
// sources in Include may set the field; sources in Exclude never may,
// regardless of Include.
type field struct {
	Include []SourceID
	Exclude []SourceID
}

var fieldPolicy = map[string]field{
	"title":       {},
	"outline":     {Exclude: []SourceID{SourceJavBus}},
	"actress":     {Include: []SourceID{SourceJavBus, SourceAvWiki}},
	"thumb":       {},
	"poster":      {Exclude: []SourceID{SourceIQQTV}},
	"extrafanart": {Include: []SourceID{SourceJavBus}},
	"tag":         {Include: []SourceID{SourceJavBus}},
	"release":     {Include: []SourceID{SourceJavBus}, Exclude: []SourceID{SourceFC2PPVDB}},
	"duration":    {Include: []SourceID{SourceJavBus}, Exclude: []SourceID{SourceIQQTV}},
	"director":    {Include: []SourceID{SourceJavBus}},
	"series":      {Include: []SourceID{SourceJavBus}},
	"studio":      {Include: []SourceID{SourceJavBus}},
	"publisher":   {Include: []SourceID{SourceJavBus}},
}

// AllowsField reports whether source is permitted to set field on the
// accumulator, per the static routing table above.
func AllowsField(source SourceID, fieldName string) bool {
	policy, ok := fieldPolicy[fieldName]
	if !ok {
		return true
	}
	for _, excluded := range policy.Exclude {
		if excluded == source {
			return false
		}
	}
	if len(policy.Include) == 0 {
		return true
	}
	for _, included := range policy.Include {
		if included == source {
			return true
		}
	}
	return false
}
