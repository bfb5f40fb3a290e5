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

// FC2PPVDB is the SA for fc2ppvdb.com, grounded on fc2ppvdb.rs.
type FC2PPVDB struct {
	fetcher adapter.HTTPFetcher
}

// NewFC2PPVDB builds the adapter bound to httpT.
func NewFC2PPVDB(httpT *transport.HTTP) *FC2PPVDB {
	return &FC2PPVDB{fetcher: adapter.HTTPFetcher{HTTP: httpT}}
}

func (a *FC2PPVDB) ID() router.SourceID { return router.SourceFC2PPVDB }
func (a *FC2PPVDB) Language() string    { return "ja" }

func (a *FC2PPVDB) BuildURL(code models.Code) (*url.URL, error) {
	number := code.String()
	number = strings.ReplaceAll(number, "FC2-PPV-", "")
	number = strings.ReplaceAll(number, "FC2-", "")
	number = strings.ReplaceAll(number, "FC2PPV", "")
	number = strings.ReplaceAll(number, "-", "")
	return url.Parse("https://fc2ppvdb.com/articles/" + number)
}

func (a *FC2PPVDB) Fetch(ctx context.Context, target *url.URL) (*adapter.Document, *url.URL, error) {
	return a.fetcher.Fetch(ctx, target)
}

func (a *FC2PPVDB) FollowNext(_ context.Context, _ models.Code, _ *url.URL, _ *adapter.Document, _ *adapter.Hints) (*url.URL, error) {
	return nil, nil
}

func (a *FC2PPVDB) ParseTitle(doc *adapter.Document) (string, error) {
	parsed, err := parseHTML(doc.HTML)
	if err != nil {
		return "", err
	}
	title := text(parsed.Find("h2 > a"))
	if title == "" {
		return "", fmt.Errorf("title not found")
	}
	return title, nil
}

func (a *FC2PPVDB) ParseInfo(_ context.Context, doc *adapter.Document, _ *adapter.Hints) (models.VideoInfo, error) {
	parsed, err := parseHTML(doc.HTML)
	if err != nil {
		return models.VideoInfo{}, err
	}

	info := models.VideoInfo{}
	if poster, ok := parsed.Find("main img").First().Attr("src"); ok {
		info.Poster = optionalString(poster)
	}

	if h2 := parsed.Find("h2").First(); h2.Length() > 0 {
		h2.Parent().Find("div").Each(func(_ int, div *goquery.Selection) {
			line := strings.TrimSpace(div.Text())
			switch {
			case strings.HasPrefix(line, "販売者："):
				v := strings.TrimSpace(strings.TrimPrefix(line, "販売者："))
				info.Publisher = &v
			case strings.HasPrefix(line, "販売日："):
				v := strings.TrimSpace(strings.TrimPrefix(line, "販売日："))
				if epoch, ok := adapter.ParseReleaseDate(v); ok {
					info.ReleaseDate = &epoch
				}
			case strings.HasPrefix(line, "収録時間："):
				v := strings.TrimSpace(strings.TrimPrefix(line, "収録時間："))
				if epoch, ok := adapter.ParseDurationString(v); ok {
					info.DurationSec = &epoch
				}
			case strings.HasPrefix(line, "タグ："):
				var tags []string
				div.Find(`a[href^='/tags/']`).Each(func(_ int, t *goquery.Selection) {
					if v := text(t); v != "" {
						tags = append(tags, v)
					}
				})
				if len(tags) > 0 {
					info.Tags = tags
				}
			}
		})
	}

	var actresses []models.Actress
	parsed.Find(`a[href^='/actresses/']`).Each(func(_ int, s *goquery.Selection) {
		img := s.Find("img").First()
		if img.Length() == 0 {
			return
		}
		name, _ := s.Attr("title")
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		photo, _ := img.Attr("src")
		photo = strings.TrimSpace(photo)
		actress := models.Actress{Name: name}
		if photo != "" {
			actress.Photo = &photo
		}
		actresses = append(actresses, actress)
	})
	if len(actresses) > 0 {
		info.Actresses = actresses
	}

	return info, nil
}

func (a *FC2PPVDB) HeadlessVariant() adapter.Adapter { return nil }
