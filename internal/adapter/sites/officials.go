package sites

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/jav-meta/internal/adapter"
	"github.com/jmylchreest/jav-meta/internal/codenorm"
	"github.com/jmylchreest/jav-meta/internal/models"
	"github.com/jmylchreest/jav-meta/internal/router"
	"github.com/jmylchreest/jav-meta/internal/transport"
)

// officialWebsites maps a code prefix to its studio's own site, ported
// verbatim from the original source's OFFICIAL_WEBSITES table.
var officialWebsites = buildOfficialWebsites([]officialEntry{
	{"https://s1s1s1.com", "SIVR|SSIS|SSNI|SNIS|SOE|ONED|ONE|ONSD|OFJE|SPS|TKSOE|SONE"},
	{"https://moodyz.com", "MIDA|MDVR|MIDV|MIDE|MIDD|MIBD|MIMK|MIID|MIGD|MIFD|MIAE|MIAD|MIAA|MDL|MDJ|MDI|MDG|MDF|MDE|MDLD|MDED|MIZD|MIRD|MDJD|RMID|MDID|MDMD|MIMU|MDPD|MIVD|MDUD|MDGD|MDVD|MIAS|MIQD|MINT|RMPD|MDRD|TKMIDE|TKMIDD|KMIDE|TKMIGD|MDFD|RMWD|MIAB"},
	{"https://madonna-av.com", "JUVR|JUSD|JUQ|JUY|JUX|JUL|JUK|JUC|JUKD|JUSD|OBA|JUFD|ROEB|ROE|URE|MDON|JFB|OBE|JUMS"},
	{"https://www.wanz-factory.com", "WAVR|WAAA|BMW|WANZ"},
	{"https://ideapocket.com", "IPVR|IPX|IPZ|IPTD|IPSD|IDBD|SUPD|IPIT|AND|HPD|TKIPZ|IPZZ|COSD|ANPD|DAN|ALAD|KIPX"},
	{"https://kirakira-av.com", "KIVR|BLK|KIBD|KIFD|KIRD|KISD|SET"},
	{"https://www.av-e-body.com", "EBVR|EBOD|MKCK|EYAN"},
	{"https://bi-av.com", "CJVR|CJOD|BBI|BIB|CJOB|BEB|BID|BIST|BWB"},
	{"https://premium-beauty.com", "PRVR|PGD|PRED|PBD|PJD|PRTD|PXD|PID|PTV"},
	{"https://miman.jp", "MMVR|MMND|MMXD|AOM"},
	{"https://tameikegoro.jp", "MEVR|MEYD|MBYD|MDYD|MNYD"},
	{"https://fitch-av.com", "FCVR|JUFE|JUFD|JFB|JUNY|NYB|FINH|GCF|NIMA"},
	{"https://kawaiikawaii.jp", "KAVR|CAWD|KWBD|KAWD|KWSR|KWSD|KANE"},
	{"https://befreebe.com", "BF"},
	{"https://muku.tv", "MUCD|MUDR|MUKD|SMCD|MUKC"},
	{"https://attackers.net", "ATVR|RBK|RBD|SAME|SHKD|ATID|ADN|ATKD|JBD|SSPD|ATAD|AZSD"},
	{"https://mko-labo.net", "MVR|MISM|EMLB"},
	{"https://dasdas.jp", "DSVR|DASS|DAZD|DASD|PLA"},
	{"https://mvg.jp", "MVSD|MVBD"},
	{"https://av-opera.jp", "OPVR|OPBD|OPUD"},
	{"https://oppai-av.com", "PPVR|PPPE|PPBD|PPPD|PPSD|PPFD"},
	{"https://v-av.com", "VVVD|VICD|VIZD|VSPD"},
	{"https://to-satsu.com", "CLVR|STOL|CLUB"},
	{"https://bibian-av.com", "BBVR|BBAN"},
	{"https://honnaka.jp", "HNVR|HMN|HNDB|HND|KRND|HNKY|HNJC|HNSE"},
	{"https://rookie-av.jp", "RVR|RBB|RKI"},
	{"https://nanpa-japan.jp", "NJVR|NNPJ|NPJB"},
	{"https://hajimekikaku.com", "HJBB|HJMO|AVGL"},
	{"https://hhh-av.com", "HUNTB|HUNTA|HUNT|HUNBL|ROYD|TYSF"},
})

type officialEntry struct {
	site  string
	codes string
}

func buildOfficialWebsites(entries []officialEntry) map[string]string {
	m := make(map[string]string)
	for _, e := range entries {
		for _, code := range strings.Split(e.codes, "|") {
			m[code] = e.site
		}
	}
	return m
}

var (
	officialsDescRE  = regexp.MustCompile(`【公式】([^(]+)\(([^)]+)`)
	officialsLabels  = map[string]string{
		"ジャンル": "tag",
		"シリーズ": "series",
		"レーベル": "publisher",
		"監督":   "director",
		"発売日":  "release",
		"収録時間": "duration",
	}
)

// Officials is the SA for a video's own studio site, looked up by code
// prefix, grounded on officials.rs.
type Officials struct {
	fetcher adapter.HTTPFetcher
}

// NewOfficials builds the adapter bound to httpT.
func NewOfficials(httpT *transport.HTTP) *Officials {
	return &Officials{fetcher: adapter.HTTPFetcher{HTTP: httpT}}
}

func (a *Officials) ID() router.SourceID { return router.SourceOfficials }
func (a *Officials) Language() string    { return "ja" }

func (a *Officials) BuildURL(code models.Code) (*url.URL, error) {
	prefix, ok := codenorm.CodePrefix(code)
	if !ok {
		return nil, fmt.Errorf("no code prefix for %s", code)
	}
	site, ok := officialWebsites[prefix]
	if !ok {
		return nil, fmt.Errorf("no official website for prefix %s", prefix)
	}
	keyword := strings.ReplaceAll(code.String(), "-", "")
	return url.Parse(site + "/search/list?keyword=" + url.QueryEscape(keyword))
}

func (a *Officials) Fetch(ctx context.Context, target *url.URL) (*adapter.Document, *url.URL, error) {
	return a.fetcher.Fetch(ctx, target)
}

func (a *Officials) FollowNext(_ context.Context, _ models.Code, currentURL *url.URL, doc *adapter.Document, hints *adapter.Hints) (*url.URL, error) {
	if !strings.Contains(currentURL.Path, "search") {
		return nil, nil
	}

	parsed, err := parseHTML(doc.HTML)
	if err != nil {
		return nil, err
	}

	card := parsed.Find("a.img.hover").First()
	if card.Length() == 0 {
		return nil, fmt.Errorf("no result card found")
	}

	if src, ok := card.Find("img").First().Attr("data-src"); ok {
		hints.PosterHint = src
	}

	href, ok := card.Attr("href")
	if !ok {
		return nil, fmt.Errorf("result card has no href")
	}
	return currentURL.Parse(href)
}

func (a *Officials) ParseTitle(doc *adapter.Document) (string, error) {
	parsed, err := parseHTML(doc.HTML)
	if err != nil {
		return "", err
	}
	title := text(parsed.Find("h2.p-workPage__title"))
	if title == "" {
		return "", fmt.Errorf("title not found")
	}
	return title, nil
}

func (a *Officials) ParseInfo(_ context.Context, doc *adapter.Document, hints *adapter.Hints) (models.VideoInfo, error) {
	parsed, err := parseHTML(doc.HTML)
	if err != nil {
		return models.VideoInfo{}, err
	}

	info := models.VideoInfo{}
	if hints.PosterHint != "" {
		info.Poster = optionalString(hints.PosterHint)
	}
	if cover, ok := parsed.Find("img.swiper-lazy").First().Attr("data-src"); ok {
		info.Cover = optionalString(cover)
	}
	if outline := text(parsed.Find("p.p-workPage__text")); outline != "" {
		info.Outline = &models.TranslatedText{Text: outline}
	}

	var actresses []models.Actress
	parsed.Find(`a.c-tag.c-main-bg-hover.c-main-font.c-main-bd[href*="/actress/"]`).Each(func(_ int, s *goquery.Selection) {
		if name := text(s); name != "" {
			actresses = append(actresses, models.Actress{Name: name})
		}
	})
	if len(actresses) > 0 {
		info.Actresses = actresses
	}

	var fanart []string
	parsed.Find("img.swiper-lazy").Each(func(i int, s *goquery.Selection) {
		if i == 0 {
			return
		}
		if src, ok := s.Attr("data-src"); ok {
			fanart = append(fanart, src)
		}
	})
	if len(fanart) > 0 {
		info.ExtraFanart = fanart
	}

	parsed.Find("div.th").Each(func(_ int, th *goquery.Selection) {
		label := text(th)
		field, ok := officialsLabels[label]
		if !ok {
			return
		}
		td := nextSiblingElement(th)
		if td == nil || td.Length() == 0 {
			return
		}

		switch field {
		case "tag":
			var tags []string
			td.Find("a").Each(func(_ int, a *goquery.Selection) {
				if t := text(a); t != "" {
					tags = append(tags, t)
				}
			})
			if len(tags) > 0 {
				info.Tags = tags
			}
		case "series":
			if v := text(td.Find("a").First()); v != "" {
				info.Series = &v
			}
		case "publisher":
			if v := text(td.Find("a").First()); v != "" {
				info.Publisher = &v
			}
		case "director":
			if v := text(td); v != "" {
				info.Director = &v
			}
		case "release":
			if v := text(td.Find("a").First()); v != "" {
				if epoch, ok := adapter.ParseReleaseDate(v); ok {
					info.ReleaseDate = &epoch
				}
			}
		case "duration":
			if epoch, ok := adapter.ParseMinutesSuffix(text(td)); ok {
				info.DurationSec = &epoch
			}
		}
	})

	if meta := parsed.Find(`meta[name="description"]`).First(); meta.Length() > 0 {
		content, _ := meta.Attr("content")
		if m := officialsDescRE.FindStringSubmatch(content); len(m) == 3 {
			studio := strings.TrimSpace(m[2])
			info.Studio = &studio
		}
	}

	return info, nil
}

func (a *Officials) HeadlessVariant() adapter.Adapter { return nil }
