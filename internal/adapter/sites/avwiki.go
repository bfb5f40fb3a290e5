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

// AvWiki is a late-stage enrichment source used only for actresses when the
// primary merge leaves the field empty, grounded on avwiki.rs.
type AvWiki struct {
	fetcher adapter.HTTPFetcher
}

// NewAvWiki builds the adapter bound to httpT.
func NewAvWiki(httpT *transport.HTTP) *AvWiki {
	return &AvWiki{fetcher: adapter.HTTPFetcher{HTTP: httpT}}
}

func (a *AvWiki) ID() router.SourceID { return router.SourceAvWiki }
func (a *AvWiki) Language() string    { return "ja" }

func (a *AvWiki) BuildURL(code models.Code) (*url.URL, error) {
	return url.Parse("https://av-wiki.net/?s=" + url.QueryEscape(code.String()) + "&post_type=product")
}

func (a *AvWiki) Fetch(ctx context.Context, target *url.URL) (*adapter.Document, *url.URL, error) {
	return a.fetcher.Fetch(ctx, target)
}

func (a *AvWiki) FollowNext(_ context.Context, _ models.Code, currentURL *url.URL, doc *adapter.Document, _ *adapter.Hints) (*url.URL, error) {
	if currentURL.Path != "/" {
		return nil, nil
	}

	parsed, err := parseHTML(doc.HTML)
	if err != nil {
		return nil, err
	}

	article := parsed.Find("article").First()
	if article.Length() == 0 {
		return nil, fmt.Errorf("no search results")
	}

	href, ok := article.Find("div.read-more > a").First().Attr("href")
	if !ok {
		return nil, fmt.Errorf("no read-more link")
	}
	return currentURL.Parse(href)
}

func (a *AvWiki) ParseTitle(doc *adapter.Document) (string, error) {
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

func (a *AvWiki) ParseInfo(_ context.Context, doc *adapter.Document, _ *adapter.Hints) (models.VideoInfo, error) {
	parsed, err := parseHTML(doc.HTML)
	if err != nil {
		return models.VideoInfo{}, err
	}

	var actresses []models.Actress
	parsed.Find("dl > dd > a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || !strings.Contains(href, "/av-actress/") || strings.Contains(href, "/unknown/") {
			return
		}
		if name := text(s); name != "" {
			actresses = append(actresses, models.Actress{Name: name})
		}
	})

	return models.VideoInfo{Actresses: actresses}, nil
}

func (a *AvWiki) HeadlessVariant() adapter.Adapter { return nil }
