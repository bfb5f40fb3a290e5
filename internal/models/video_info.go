package models

// Code is a canonical product code as produced by the code normalizer:
// uppercase (except literal FC2/Mywife casing in known special outputs),
// no leading/trailing `-_.`, no internal spaces.
type Code string

// String returns the code as a plain string.
func (c Code) String() string { return string(c) }

// Empty reports whether the code carries no value.
func (c Code) Empty() bool { return c == "" }

// TranslatedText pairs original text with an optional machine translation.
type TranslatedText struct {
	Text       string  `json:"text"`
	Translated *string `json:"translated,omitempty"`
}

// Actress is a cast member with an optional photo URL.
type Actress struct {
	Name  string  `json:"name"`
	Photo *string `json:"photo,omitempty"`
}

// VideoInfo is the normalized metadata record assembled by the crawler
// pipeline for a single code. All fields beyond Code and Title are optional
// because no single source populates every field.
type VideoInfo struct {
	Code        Code            `json:"code"`
	Title       TranslatedText  `json:"title"`
	Poster      *string         `json:"poster,omitempty"`
	Cover       *string         `json:"cover,omitempty"`
	Outline     *TranslatedText `json:"outline,omitempty"`
	Actresses   []Actress       `json:"actresses,omitempty"`
	ExtraFanart []string        `json:"extra_fanart,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	Series      *string         `json:"series,omitempty"`
	Studio      *string         `json:"studio,omitempty"`
	Publisher   *string         `json:"publisher,omitempty"`
	Director    *string         `json:"director,omitempty"`
	DurationSec *int64          `json:"duration_seconds,omitempty"`
	ReleaseDate *int64          `json:"release_date,omitempty"` // Unix epoch seconds
}

// Apply merges other into the receiver in place, following the whole-field
// overwrite rule: any field other sets replaces the receiver's value, any
// field other leaves unset is left alone. A code mismatch discards other
// entirely; an empty receiver code adopts other's code.
func (v *VideoInfo) Apply(other VideoInfo) {
	if v.Code.Empty() {
		v.Code = other.Code
	} else if v.Code != other.Code {
		return
	}

	if other.Title.Text != "" {
		v.Title.Text = other.Title.Text
	}
	if other.Title.Translated != nil {
		v.Title.Translated = other.Title.Translated
	}

	if other.Poster != nil {
		v.Poster = other.Poster
	}
	if other.Cover != nil {
		v.Cover = other.Cover
	}

	if other.Outline != nil {
		if v.Outline == nil {
			v.Outline = other.Outline
		} else {
			if other.Outline.Text != "" {
				v.Outline.Text = other.Outline.Text
			}
			if other.Outline.Translated != nil {
				v.Outline.Translated = other.Outline.Translated
			}
		}
	}

	if other.Actresses != nil {
		v.Actresses = other.Actresses
	}
	if other.ExtraFanart != nil {
		v.ExtraFanart = other.ExtraFanart
	}
	if other.Tags != nil {
		v.Tags = other.Tags
	}
	if other.Series != nil {
		v.Series = other.Series
	}
	if other.Studio != nil {
		v.Studio = other.Studio
	}
	if other.Publisher != nil {
		v.Publisher = other.Publisher
	}
	if other.Director != nil {
		v.Director = other.Director
	}
	if other.DurationSec != nil {
		v.DurationSec = other.DurationSec
	}
	if other.ReleaseDate != nil {
		v.ReleaseDate = other.ReleaseDate
	}
}

// IsGoodEnough reports whether v carries enough fields that the crawl loop
// can stop querying further sources: outline set, actresses set, and at
// least one of poster or cover set.
func (v *VideoInfo) IsGoodEnough() bool {
	if v.Outline == nil || len(v.Actresses) == 0 {
		return false
	}
	return v.Poster != nil || v.Cover != nil
}

// VideoRecord is the persisted unit: a code, its optionally-populated info,
// and an optional download timestamp. At least one of Info or DownloadedAt
// must be set at all times.
type VideoRecord struct {
	Code         Code
	Info         *VideoInfo
	DownloadedAt *int64 // Unix epoch seconds
}
