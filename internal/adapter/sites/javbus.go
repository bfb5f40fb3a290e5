package sites

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/jav-meta/internal/adapter"
	"github.com/jmylchreest/jav-meta/internal/models"
	"github.com/jmylchreest/jav-meta/internal/router"
	"github.com/jmylchreest/jav-meta/internal/transport"
)

// javbusRegionGateSentinel is the text JavBus's age/region confirmation
// interstitial carries, distinguishing it from the real detail page.
const javbusRegionGateSentinel = "此內容需要驗證"

// JavBus is the SA for javbus.com, grounded on javbus.rs. Region-gated
// responses are confirmed with a POST before the detail page is re-parsed.
type JavBus struct {
	http *transport.HTTP
}

// NewJavBus builds the adapter bound to httpT.
func NewJavBus(httpT *transport.HTTP) *JavBus {
	return &JavBus{http: httpT}
}

func (a *JavBus) ID() router.SourceID { return router.SourceJavBus }
func (a *JavBus) Language() string    { return "zh-TW" }

func (a *JavBus) BuildURL(code models.Code) (*url.URL, error) {
	return url.Parse("https://www.javbus.com/" + code.String())
}

func (a *JavBus) Fetch(ctx context.Context, target *url.URL) (*adapter.Document, *url.URL, error) {
	result, err := a.http.Get(ctx, target)
	if err != nil {
		return nil, nil, err
	}

	if strings.Contains(string(result.Body), javbusRegionGateSentinel) {
		confirmed, err := a.http.PostForm(ctx, result.FinalURL, url.Values{"submit": {"確認"}})
		if err != nil {
			return nil, nil, err
		}
		return &adapter.Document{HTML: confirmed.Body, URL: confirmed.FinalURL}, confirmed.FinalURL, nil
	}

	return &adapter.Document{HTML: result.Body, URL: result.FinalURL}, result.FinalURL, nil
}

func (a *JavBus) FollowNext(_ context.Context, _ models.Code, _ *url.URL, _ *adapter.Document, _ *adapter.Hints) (*url.URL, error) {
	return nil, nil
}

func (a *JavBus) ParseTitle(doc *adapter.Document) (string, error) {
	parsed, err := parseHTML(doc.HTML)
	if err != nil {
		return "", err
	}
	title := text(parsed.Find("h3").First())
	if title == "" {
		return "", fmt.Errorf("title not found")
	}
	return title, nil
}

func (a *JavBus) ParseInfo(_ context.Context, doc *adapter.Document, _ *adapter.Hints) (models.VideoInfo, error) {
	parsed, err := parseHTML(doc.HTML)
	if err != nil {
		return models.VideoInfo{}, err
	}

	info := models.VideoInfo{}

	if cover, ok := parsed.Find("a.bigImage").First().Attr("href"); ok {
		info.Cover = optionalString(cover)
	}

	var actresses []models.Actress
	parsed.Find("div.star-name").Each(func(_ int, star *goquery.Selection) {
		name := text(star)
		if name == "" {
			return
		}
		img := star.Parent().Find("img").First()
		actress := models.Actress{Name: name}
		if src, ok := img.Attr("src"); ok && src != "" {
			actress.Photo = &src
		}
		actresses = append(actresses, actress)
	})
	if len(actresses) > 0 {
		info.Actresses = actresses
	}

	var tags []string
	parsed.Find(`a[href*="/genre/"]`).Each(func(_ int, s *goquery.Selection) {
		if v := text(s); v != "" {
			tags = append(tags, v)
		}
	})
	if len(tags) > 0 {
		info.Tags = tags
	}

	if series := text(parsed.Find(`a[href*="/series/"]`).First()); series != "" {
		info.Series = &series
	}
	if studio := text(parsed.Find(`a[href*="/studio/"]`).First()); studio != "" {
		info.Studio = &studio
	}
	if publisher := text(parsed.Find(`a[href*="/label/"]`).First()); publisher != "" {
		info.Publisher = &publisher
	}
	if director := text(parsed.Find(`a[href*="/director/"]`).First()); director != "" {
		info.Director = &director
	}

	parsed.Find("span.header").EachWithBreak(func(_ int, header *goquery.Selection) bool {
		headerText := header.Text()
		switch {
		case strings.Contains(headerText, "長度:"):
			rowText := text(header.Parent())
			rowText = strings.ReplaceAll(rowText, "長度:", "")
			rowText = strings.ReplaceAll(rowText, "分鐘", "")
			if minutes, err := strconv.ParseInt(strings.TrimSpace(rowText), 10, 64); err == nil {
				seconds := minutes * 60
				info.DurationSec = &seconds
			}
		case strings.Contains(headerText, "發行日期:"):
			rowText := text(header.Parent())
			rowText = strings.ReplaceAll(rowText, "發行日期:", "")
			if epoch, ok := adapter.ParseReleaseDate(strings.TrimSpace(rowText)); ok {
				info.ReleaseDate = &epoch
			}
		default:
			return true
		}
		return true
	})

	return info, nil
}

func (a *JavBus) HeadlessVariant() adapter.Adapter { return nil }
