package sites

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/jav-meta/internal/adapter"
	"github.com/jmylchreest/jav-meta/internal/models"
	"github.com/jmylchreest/jav-meta/internal/router"
	"github.com/jmylchreest/jav-meta/internal/transport"
)

var iqqtvMeaninglessWords = []string{"克破", "无码破解", "無碼破解", "无码流出", "無碼流出"}

func iqqtvIsMeaningful(text string) bool {
	for _, word := range iqqtvMeaninglessWords {
		if strings.Contains(text, word) {
			return false
		}
	}
	return true
}

// Iqqtv is the SA for iqq5.xyz (aka iqqtv), grounded on iqqtv.rs. It
// captures a duration hint from the search-result row and carries it to the
// detail-page parse via the per-call Hints struct, replacing the original
// source's process-wide LAST_DURATION memo.
type Iqqtv struct {
	fetcher adapter.HTTPFetcher
}

// NewIqqtv builds the adapter bound to httpT.
func NewIqqtv(httpT *transport.HTTP) *Iqqtv {
	return &Iqqtv{fetcher: adapter.HTTPFetcher{HTTP: httpT}}
}

func (a *Iqqtv) ID() router.SourceID { return router.SourceIQQTV }
func (a *Iqqtv) Language() string    { return "zh-CN" }

func (a *Iqqtv) BuildURL(code models.Code) (*url.URL, error) {
	return url.Parse("https://iqq5.xyz/cn/search.php?kw_type=key&kw=" + url.QueryEscape(code.String()))
}

func (a *Iqqtv) Fetch(ctx context.Context, target *url.URL) (*adapter.Document, *url.URL, error) {
	return a.fetcher.Fetch(ctx, target)
}

func (a *Iqqtv) FollowNext(_ context.Context, code models.Code, currentURL *url.URL, doc *adapter.Document, hints *adapter.Hints) (*url.URL, error) {
	if !strings.Contains(currentURL.Path, "search.php") {
		return nil, nil
	}

	parsed, err := parseHTML(doc.HTML)
	if err != nil {
		return nil, err
	}

	var next *url.URL
	parsed.Find("span.title").EachWithBreak(func(_ int, span *goquery.Selection) bool {
		spanText := span.Text()
		if !strings.Contains(spanText, code.String()) || !iqqtvIsMeaningful(spanText) {
			return true
		}
		href, ok := span.Find("a").First().Attr("href")
		if !ok {
			return true
		}

		if row := span.Parent().Parent(); row.Length() > 0 {
			if videoTime := text(row.Find("span.video-time").First()); videoTime != "" {
				hints.DurationHint = videoTime
			}
		}

		if parsedHref, err := currentURL.Parse(href); err == nil {
			next = parsedHref
		}
		return false
	})
	if next == nil {
		return nil, fmt.Errorf("no matching search result for %s", code)
	}
	return next, nil
}

func (a *Iqqtv) ParseTitle(doc *adapter.Document) (string, error) {
	parsed, err := parseHTML(doc.HTML)
	if err != nil {
		return "", err
	}
	title := text(parsed.Find("h1.h4.b").First())
	if title == "" {
		return "", fmt.Errorf("title not found")
	}
	return title, nil
}

func (a *Iqqtv) ParseInfo(_ context.Context, doc *adapter.Document, hints *adapter.Hints) (models.VideoInfo, error) {
	parsed, err := parseHTML(doc.HTML)
	if err != nil {
		return models.VideoInfo{}, err
	}

	info := models.VideoInfo{}

	if cover, ok := parsed.Find(`meta[property="og:image"]`).First().Attr("content"); ok {
		info.Cover = optionalString(cover)
	}

	if outline := text(parsed.Find("div.intro").First()); outline != "" {
		outline = strings.ReplaceAll(outline, "简介：", "")
		outline = strings.ReplaceAll(outline, "簡介：", "")
		info.Outline = &models.TranslatedText{Text: strings.TrimSpace(outline)}
	}

	var actresses []models.Actress
	parsed.Find(`div.tag-info > a[href*=actor]`).Each(func(_ int, s *goquery.Selection) {
		if v := text(s); v != "" {
			actresses = append(actresses, models.Actress{Name: v})
		}
	})
	if len(actresses) > 0 {
		info.Actresses = actresses
	}

	var tags []string
	parsed.Find(`div.tag-info > a[href*=tag]`).Each(func(_ int, s *goquery.Selection) {
		if v := text(s); v != "" {
			tags = append(tags, v)
		}
	})
	if len(tags) > 0 {
		info.Tags = tags
	}

	if series := text(parsed.Find(`a[href*=series]`).First()); series != "" {
		info.Series = &series
	}

	if studio := text(parsed.Find("div.company").First()); studio != "" {
		info.Studio = &studio
	}

	if hints.DurationHint != "" {
		if epoch, ok := adapter.ParseDurationString(hints.DurationHint); ok {
			info.DurationSec = &epoch
		}
		hints.DurationHint = ""
	}

	if release := text(parsed.Find("div.date").First()); release != "" {
		if epoch, ok := adapter.ParseReleaseDate(release); ok {
			info.ReleaseDate = &epoch
		}
	}

	var fanart []string
	parsed.Find("div.cover img").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("data-src"); ok {
			fanart = append(fanart, src)
		}
	})
	if len(fanart) > 0 {
		info.ExtraFanart = fanart
	}

	return info, nil
}

func (a *Iqqtv) HeadlessVariant() adapter.Adapter { return nil }
