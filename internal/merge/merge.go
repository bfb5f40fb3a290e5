// Package merge implements the Merger (MG): the accumulator that folds
// successive adapter results into a single VideoInfo, with per-field
// ownership decided by the router's routing table.
package merge

import (
	"github.com/jmylchreest/jav-meta/internal/models"
	"github.com/jmylchreest/jav-meta/internal/router"
)

// Accumulator holds the in-flight VideoInfo for one query, owned for the
// duration of a single crawl.
type Accumulator struct {
	info models.VideoInfo
}

// NewAccumulator seeds the accumulator with an initial VideoInfo, typically
// the official-site (or Prestige fallback) result. An empty VideoInfo is a
// valid seed.
func NewAccumulator(seed models.VideoInfo) *Accumulator {
	return &Accumulator{info: seed}
}

// Apply merges result, produced by source, into the accumulator following
// the spec's whole-field-overwrite rule: code mismatch discards the whole
// result; title/outline text and translated move independently; every other
// optional field is copied whenever result sets it (matching VideoInfo.Apply
// in the original source, since every field the router names is already in
// the "whole-field-overwrite" set for this reimplementation's field list).
// Before merging, any field source is not allowed to set per router's
// routing table is stripped from result, so a source excluded from (or not
// included in) a field's policy can never overwrite the accumulator's value
// for that field.
func (a *Accumulator) Apply(source router.SourceID, result models.VideoInfo) {
	a.info.Apply(gateFields(source, result))
}

// gateFields zeroes every field of result that router.AllowsField forbids
// source from setting, leaving Code untouched (code matching/adoption is
// handled by VideoInfo.Apply itself).
func gateFields(source router.SourceID, result models.VideoInfo) models.VideoInfo {
	if !router.AllowsField(source, "title") {
		result.Title = models.TranslatedText{}
	}
	if !router.AllowsField(source, "outline") {
		result.Outline = nil
	}
	if !router.AllowsField(source, "actress") {
		result.Actresses = nil
	}
	if !router.AllowsField(source, "thumb") {
		result.Cover = nil
	}
	if !router.AllowsField(source, "poster") {
		result.Poster = nil
	}
	if !router.AllowsField(source, "extrafanart") {
		result.ExtraFanart = nil
	}
	if !router.AllowsField(source, "tag") {
		result.Tags = nil
	}
	if !router.AllowsField(source, "release") {
		result.ReleaseDate = nil
	}
	if !router.AllowsField(source, "duration") {
		result.DurationSec = nil
	}
	if !router.AllowsField(source, "director") {
		result.Director = nil
	}
	if !router.AllowsField(source, "series") {
		result.Series = nil
	}
	if !router.AllowsField(source, "studio") {
		result.Studio = nil
	}
	if !router.AllowsField(source, "publisher") {
		result.Publisher = nil
	}
	return result
}

// Result returns the accumulated VideoInfo.
func (a *Accumulator) Result() models.VideoInfo {
	return a.info
}

// IsGoodEnough reports whether the accumulator has enough fields to stop
// querying further sources.
func (a *Accumulator) IsGoodEnough() bool {
	return a.info.IsGoodEnough()
}

// ApplyActressesFallback sets actresses from a late-stage enrichment source
// (AvWiki) only when the accumulator still has none, per the spec's
// post-main-loop actress fallback.
func (a *Accumulator) ApplyActressesFallback(actresses []models.Actress) {
	if len(a.info.Actresses) == 0 && len(actresses) > 0 {
		a.info.Actresses = actresses
	}
}
