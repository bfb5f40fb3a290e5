package sites

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/jav-meta/internal/adapter"
	"github.com/jmylchreest/jav-meta/internal/models"
	"github.com/jmylchreest/jav-meta/internal/router"
	"github.com/jmylchreest/jav-meta/internal/transport"
)

// airavSkipWords are h5 labels that mark a search result as a worthless
// "uncensored-leak" reupload, ported from airav.rs's skip check.
var airavSkipWords = []string{"克破", "无码破解", "無碼破解"}

func airavIsMeaningful(text string) bool {
	for _, word := range airavSkipWords {
		if strings.Contains(text, word) {
			return false
		}
	}
	return true
}

type airavVideoObject struct {
	ThumbnailURL []string `json:"thumbnailUrl"`
}

// AiravIO is the SA for airav.io, grounded on airav.rs. It publishes a
// headless variant (AiravIOHeadless) for Cloudflare-protected responses.
type AiravIO struct {
	fetcher  adapter.HTTPFetcher
	headless *AiravIOHeadless
}

// NewAiravIO builds the adapter bound to httpT, with headlessT (optional)
// wired as its Cloudflare-bypass fallback.
func NewAiravIO(httpT *transport.HTTP, headlessT *transport.Headless) *AiravIO {
	a := &AiravIO{fetcher: adapter.HTTPFetcher{HTTP: httpT}}
	if headlessT != nil {
		a.headless = &AiravIOHeadless{fetcher: adapter.HeadlessFetcher{Headless: headlessT}}
	}
	return a
}

func (a *AiravIO) ID() router.SourceID { return router.SourceAiravIO }
func (a *AiravIO) Language() string    { return "zh-TW" }

func (a *AiravIO) BuildURL(code models.Code) (*url.URL, error) {
	return url.Parse("https://airav.io/search_result?kw=" + url.QueryEscape(code.String()))
}

func (a *AiravIO) Fetch(ctx context.Context, target *url.URL) (*adapter.Document, *url.URL, error) {
	return a.fetcher.Fetch(ctx, target)
}

func (a *AiravIO) FollowNext(_ context.Context, _ models.Code, currentURL *url.URL, doc *adapter.Document, _ *adapter.Hints) (*url.URL, error) {
	if !strings.Contains(currentURL.Path, "search_result") {
		return nil, nil
	}

	parsed, err := parseHTML(doc.HTML)
	if err != nil {
		return nil, err
	}

	var next *url.URL
	parsed.Find("div.col.oneVideo").EachWithBreak(func(_ int, video *goquery.Selection) bool {
		h5 := video.Find("h5").First()
		if h5.Length() == 0 || !airavIsMeaningful(h5.Text()) {
			return true
		}
		href, ok := video.Find("a").First().Attr("href")
		if !ok {
			return true
		}
		if parsedHref, err := currentURL.Parse(href); err == nil {
			next = parsedHref
		}
		return false
	})
	if next == nil {
		return nil, fmt.Errorf("no meaningful search result")
	}
	return next, nil
}

func (a *AiravIO) ParseTitle(doc *adapter.Document) (string, error) {
	parsed, err := parseHTML(doc.HTML)
	if err != nil {
		return "", err
	}
	title := text(parsed.Find("h1").First())
	if title == "" {
		return "", fmt.Errorf("title not found")
	}
	return title, nil
}

func (a *AiravIO) ParseInfo(_ context.Context, doc *adapter.Document, _ *adapter.Hints) (models.VideoInfo, error) {
	parsed, err := parseHTML(doc.HTML)
	if err != nil {
		return models.VideoInfo{}, err
	}

	info := models.VideoInfo{}

	if script := parsed.Find(`script[type="application/ld+json"]`).First(); script.Length() > 0 {
		var obj airavVideoObject
		if err := json.Unmarshal([]byte(script.Text()), &obj); err == nil && len(obj.ThumbnailURL) > 0 {
			info.Cover = optionalString(obj.ThumbnailURL[len(obj.ThumbnailURL)-1])
		}
	}

	if outline := text(parsed.Find("div.video-info > p").First()); outline != "" {
		info.Outline = &models.TranslatedText{Text: outline}
	}

	if actresses := airavInfoListItems(parsed, "女優"); len(actresses) > 0 {
		list := make([]models.Actress, 0, len(actresses))
		for _, name := range actresses {
			list = append(list, models.Actress{Name: name})
		}
		info.Actresses = list
	}
	if tags := airavInfoListItems(parsed, "標籤"); len(tags) > 0 {
		info.Tags = tags
	}
	if series := airavInfoListItems(parsed, "系列"); len(series) > 0 {
		v := series[len(series)-1]
		info.Series = &v
	}
	if studios := airavInfoListItems(parsed, "廠商"); len(studios) > 0 {
		v := studios[len(studios)-1]
		info.Studio = &v
	}

	if clock := parsed.Find("i.fa.fa-clock").First(); clock.Length() > 0 {
		parentText := text(clock.Parent())
		if epoch, ok := adapter.ParseReleaseDate(parentText); ok {
			info.ReleaseDate = &epoch
		}
	}

	return info, nil
}

func airavInfoListItems(parsed *goquery.Document, label string) []string {
	var items []string
	parsed.Find("li").Each(func(_ int, li *goquery.Selection) {
		if !strings.HasPrefix(strings.TrimSpace(li.Text()), label) {
			return
		}
		li.Find("a").Each(func(_ int, a *goquery.Selection) {
			if v := text(a); v != "" {
				items = append(items, v)
			}
		})
	})
	return items
}

func (a *AiravIO) HeadlessVariant() adapter.Adapter {
	if a.headless == nil {
		return nil
	}
	return a.headless
}

// AiravIOHeadless duplicates AiravIO's search-skip and parse logic over the
// headless transport, for requests Cloudflare blocks over plain HTTP.
type AiravIOHeadless struct {
	fetcher adapter.HeadlessFetcher
}

func (a *AiravIOHeadless) ID() router.SourceID { return router.SourceAiravIO }
func (a *AiravIOHeadless) Language() string    { return "zh-TW" }

func (a *AiravIOHeadless) BuildURL(code models.Code) (*url.URL, error) {
	return url.Parse("https://airav.io/search_result?kw=" + url.QueryEscape(code.String()))
}

func (a *AiravIOHeadless) Fetch(ctx context.Context, target *url.URL) (*adapter.Document, *url.URL, error) {
	return a.fetcher.Fetch(ctx, target)
}

func (a *AiravIOHeadless) FollowNext(ctx context.Context, code models.Code, currentURL *url.URL, doc *adapter.Document, hints *adapter.Hints) (*url.URL, error) {
	return (&AiravIO{}).FollowNext(ctx, code, currentURL, doc, hints)
}

func (a *AiravIOHeadless) ParseTitle(doc *adapter.Document) (string, error) {
	return (&AiravIO{}).ParseTitle(doc)
}

func (a *AiravIOHeadless) ParseInfo(ctx context.Context, doc *adapter.Document, hints *adapter.Hints) (models.VideoInfo, error) {
	return (&AiravIO{}).ParseInfo(ctx, doc, hints)
}

func (a *AiravIOHeadless) HeadlessVariant() adapter.Adapter { return nil }
