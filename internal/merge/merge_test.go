package merge

import (
	"testing"

	"github.com/jmylchreest/jav-meta/internal/models"
	"github.com/jmylchreest/jav-meta/internal/router"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestAccumulator_ApplyDiscardsMismatchedCode(t *testing.T) {
	acc := NewAccumulator(models.VideoInfo{Code: "SNIS-829", Title: models.TranslatedText{Text: "first"}})
	acc.Apply(router.SourceJavBus, models.VideoInfo{Code: "OTHER-1", Title: models.TranslatedText{Text: "second"}})

	assert.Equal(t, "first", acc.Result().Title.Text)
}

func TestAccumulator_ApplyAdoptsEmptyCode(t *testing.T) {
	acc := NewAccumulator(models.VideoInfo{})
	acc.Apply(router.SourceOfficials, models.VideoInfo{Code: "SNIS-829", Title: models.TranslatedText{Text: "hello"}})

	assert.Equal(t, models.Code("SNIS-829"), acc.Result().Code)
	assert.Equal(t, "hello", acc.Result().Title.Text)
}

func TestAccumulator_IsGoodEnough(t *testing.T) {
	acc := NewAccumulator(models.VideoInfo{Code: "SNIS-829", Title: models.TranslatedText{Text: "hello"}})
	assert.False(t, acc.IsGoodEnough())

	acc.Apply(router.SourceAvWiki, models.VideoInfo{
		Code:      "SNIS-829",
		Outline:   &models.TranslatedText{Text: "outline"},
		Actresses: []models.Actress{{Name: "Someone"}},
		Poster:    strPtr("https://example.com/p.jpg"),
	})
	assert.True(t, acc.IsGoodEnough())
}

func TestAccumulator_ApplyGatesFieldsExcludedForSource(t *testing.T) {
	// outline's policy excludes SourceJavBus, so a JavBus result's outline
	// must never reach the accumulator, even though the field is otherwise
	// unset and would pass VideoInfo.Apply's own "absent" check.
	acc := NewAccumulator(models.VideoInfo{Code: "SNIS-829"})
	acc.Apply(router.SourceJavBus, models.VideoInfo{
		Code:    "SNIS-829",
		Outline: &models.TranslatedText{Text: "from javbus"},
	})
	assert.Nil(t, acc.Result().Outline)

	acc.Apply(router.SourceAvWiki, models.VideoInfo{
		Code:    "SNIS-829",
		Outline: &models.TranslatedText{Text: "from avwiki"},
	})
	assert.Equal(t, "from avwiki", acc.Result().Outline.Text)
}

func TestAccumulator_ApplyGatesFieldsNotInIncludeList(t *testing.T) {
	// actress's policy only includes SourceJavBus and SourceAvWiki, so a
	// result from any other source must not set actresses.
	acc := NewAccumulator(models.VideoInfo{Code: "SNIS-829"})
	acc.Apply(router.SourceFC2PPVDB, models.VideoInfo{
		Code:      "SNIS-829",
		Actresses: []models.Actress{{Name: "Should Not Apply"}},
	})
	assert.Empty(t, acc.Result().Actresses)

	acc.Apply(router.SourceJavBus, models.VideoInfo{
		Code:      "SNIS-829",
		Actresses: []models.Actress{{Name: "Allowed Actress"}},
	})
	assert.Equal(t, "Allowed Actress", acc.Result().Actresses[0].Name)
}

func TestAccumulator_ActressesFallback(t *testing.T) {
	acc := NewAccumulator(models.VideoInfo{Code: "SNIS-829"})
	acc.ApplyActressesFallback([]models.Actress{{Name: "Wiki Actress"}})
	assert.Len(t, acc.Result().Actresses, 1)

	acc.ApplyActressesFallback([]models.Actress{{Name: "Should Not Apply"}})
	assert.Equal(t, "Wiki Actress", acc.Result().Actresses[0].Name)
}
