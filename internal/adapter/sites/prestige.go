package sites

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/jmylchreest/jav-meta/internal/adapter"
	"github.com/jmylchreest/jav-meta/internal/codenorm"
	"github.com/jmylchreest/jav-meta/internal/models"
	"github.com/jmylchreest/jav-meta/internal/router"
	"github.com/jmylchreest/jav-meta/internal/transport"
)

// prestigePrefixes is the sorted set of code prefixes prestige-av.com
// carries, ported from the original source's PREFIXES binary-search table.
var prestigePrefixes = sortedSet([]string{
	"ABC", "ABF", "ABP", "ABS", "ABW", "AFS", "AKA", "AMA", "ATD", "BCV", "BGN", "BLO", "BSD",
	"CDC", "CHN", "CHS", "CMI", "CPDE", "CTD", "DAY", "DCX", "DIC", "DLD", "DMS", "DNW", "DOCP",
	"DOCVR", "DTT", "EDD", "ESK", "EVO", "EZD", "FCP", "FIV", "FND", "FSB", "FST", "FTN", "GETS",
	"GIRO", "GNAB", "GOAL", "GSX", "GYAN", "GZAP", "HAR", "HSP", "HYK", "INU", "JAN", "JBS",
	"JCN", "JOB", "KBH", "KBI", "KFNE", "KIL", "KUM", "KZD", "LXV", "MAN", "MAS", "MBD", "MBM",
	"MBMS", "MCT", "MEI", "MGT", "MMY", "MZQ", "NDX", "NMP", "NNN", "NRS", "ONEZ", "PPT", "PPX",
	"PRDVR", "PVRBST", "PXH", "RAW", "RDD", "RDT", "RIX", "RTP", "SDVR", "SGA", "SHL", "SHS",
	"SIM", "SOR", "SOUD", "SRS", "TBL", "TDT", "TEM", "TGAV", "TOK", "TRD", "TRE", "TUS", "ULT",
	"XND", "YOK", "YRH", "YRZ", "ZZR",
})

func sortedSet(items []string) []string {
	out := append([]string(nil), items...)
	sort.Strings(out)
	return out
}

func containsPrefix(set []string, prefix string) bool {
	i := sort.SearchStrings(set, prefix)
	return i < len(set) && set[i] == prefix
}

type prestigeSearchResult struct {
	Hits struct {
		Hits []struct {
			Source struct {
				ProductUUID    string `json:"productUuid"`
				DeliveryItemID string `json:"deliveryItemId"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type prestigeName struct {
	Name string `json:"name"`
}

type prestigePath struct {
	Path string `json:"path"`
}

type prestigeSku struct {
	SalesStartAt string `json:"salesStartAt"`
}

type prestigeProduct struct {
	Title          string          `json:"title"`
	Body           string          `json:"body"`
	PlayTime       int64           `json:"playTime"`
	Maker          *prestigeName   `json:"maker"`
	Label          *prestigeName   `json:"label"`
	Series         *prestigeName   `json:"series"`
	Genre          []prestigeName  `json:"genre"`
	Directors      []prestigeName  `json:"directors"`
	Thumbnail      prestigePath    `json:"thumbnail"`
	Sku            []prestigeSku   `json:"sku"`
	PackageImage   prestigePath    `json:"packageImage"`
	Actress        []prestigeName  `json:"actress"`
	Media          []prestigePath  `json:"media"`
}

// Prestige is the JSON-API SA for prestige-av.com, grounded on prestige.rs.
type Prestige struct {
	fetcher adapter.HTTPFetcher
}

// NewPrestige builds the adapter bound to httpT.
func NewPrestige(httpT *transport.HTTP) *Prestige {
	return &Prestige{fetcher: adapter.HTTPFetcher{HTTP: httpT}}
}

func (a *Prestige) ID() router.SourceID { return router.SourcePrestige }
func (a *Prestige) Language() string    { return "ja" }

func (a *Prestige) BuildURL(code models.Code) (*url.URL, error) {
	prefix, _ := codenorm.CodePrefix(code)
	if !containsPrefix(prestigePrefixes, prefix) {
		return nil, fmt.Errorf("code %s is not a prestige code", code)
	}
	q := url.Values{
		"isEnabledQuery":      {"true"},
		"searchText":          {code.String()},
		"isEnableAggregation": {"false"},
		"release":             {"false"},
		"reservation":         {"false"},
		"soldOut":             {"false"},
		"from":                {"0"},
		"aggregationTermsSize": {"0"},
		"size":                {"20"},
	}
	return url.Parse("https://www.prestige-av.com/api/search?" + q.Encode())
}

func (a *Prestige) Fetch(ctx context.Context, target *url.URL) (*adapter.Document, *url.URL, error) {
	return a.fetcher.Fetch(ctx, target)
}

func (a *Prestige) FollowNext(_ context.Context, code models.Code, currentURL *url.URL, doc *adapter.Document, _ *adapter.Hints) (*url.URL, error) {
	if !strings.Contains(currentURL.Path, "/api/search") {
		return nil, nil
	}

	var result prestigeSearchResult
	if err := json.Unmarshal(doc.HTML, &result); err != nil {
		return nil, nil //nolint:nilerr // a malformed search response just yields no match
	}

	for _, hit := range result.Hits.Hits {
		if strings.HasSuffix(hit.Source.DeliveryItemID, code.String()) {
			return url.Parse("https://www.prestige-av.com/api/product/" + hit.Source.ProductUUID)
		}
	}
	return nil, fmt.Errorf("no matching product for %s", code)
}

func (a *Prestige) ParseTitle(doc *adapter.Document) (string, error) {
	var product prestigeProduct
	if err := json.Unmarshal(doc.HTML, &product); err != nil {
		return "", err
	}
	title := strings.ReplaceAll(product.Title, "【配信専用】", "")
	if title == "" {
		return "", fmt.Errorf("no title")
	}
	return title, nil
}

func (a *Prestige) ParseInfo(_ context.Context, doc *adapter.Document, _ *adapter.Hints) (models.VideoInfo, error) {
	var product prestigeProduct
	if err := json.Unmarshal(doc.HTML, &product); err != nil {
		return models.VideoInfo{}, err
	}

	poster := product.Thumbnail.Path
	cover := product.PackageImage.Path
	duration := product.PlayTime * 60
	info := models.VideoInfo{
		Poster:      optionalString(poster),
		Cover:       optionalString(cover),
		Outline:     &models.TranslatedText{Text: product.Body},
		DurationSec: &duration,
	}
	if product.Series != nil {
		info.Series = &product.Series.Name
	}
	if product.Maker != nil {
		info.Studio = &product.Maker.Name
	}
	if product.Label != nil {
		info.Publisher = &product.Label.Name
	}
	if len(product.Directors) > 0 {
		info.Director = &product.Directors[0].Name
	}

	if len(product.Sku) > 0 {
		if t, err := time.Parse(time.RFC3339, product.Sku[0].SalesStartAt); err == nil {
			epoch := t.Unix()
			info.ReleaseDate = &epoch
		}
	}

	if len(product.Actress) > 0 {
		actresses := make([]models.Actress, 0, len(product.Actress))
		for _, name := range product.Actress {
			actresses = append(actresses, models.Actress{Name: name.Name})
		}
		info.Actresses = actresses
	}

	if len(product.Genre) > 0 {
		tags := make([]string, 0, len(product.Genre))
		for _, g := range product.Genre {
			tags = append(tags, g.Name)
		}
		info.Tags = tags
	}

	if len(product.Media) > 0 {
		fanart := make([]string, 0, len(product.Media))
		for _, m := range product.Media {
			fanart = append(fanart, "https://www.prestige-av.com/api/media/"+m.Path)
		}
		info.ExtraFanart = fanart
	}

	return info, nil
}

func (a *Prestige) HeadlessVariant() adapter.Adapter { return nil }
