// Package facade implements the Command Facade (CF): the small set of
// entry points the outer application calls, orchestrating CN, PS, CR, TR,
// SA, TL, and MG into the single query pipeline the spec describes in
// §3's data-flow line.
package facade

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/jmylchreest/jav-meta/internal/adapter"
	"github.com/jmylchreest/jav-meta/internal/codenorm"
	"github.com/jmylchreest/jav-meta/internal/imagecache"
	"github.com/jmylchreest/jav-meta/internal/merge"
	"github.com/jmylchreest/jav-meta/internal/models"
	"github.com/jmylchreest/jav-meta/internal/router"
	"github.com/jmylchreest/jav-meta/internal/store"
	"github.com/jmylchreest/jav-meta/internal/translate"
)

// TorrentClient is the subset of qbittorrent.Client the facade forwards
// UI-originated torrent actions to (§4.12). A nil TorrentClient makes
// TorrentAction return a *models.ConfigError rather than panicking, since
// the passthrough is an optional collaborator.
type TorrentClient interface {
	AddMagnet(ctx context.Context, magnetURI, savePath, category string) error
}

// Facade is CF.
type Facade struct {
	store      *store.Store
	registry   *adapter.Registry
	translator *translate.Translator
	images     *imagecache.Cache
	torrents   TorrentClient
	logger     *slog.Logger
}

// New builds the facade from its wired dependencies. Each registered adapter
// carries its own transport binding (HTTP or headless), so the facade itself
// never fetches directly. torrents may be nil if the qBittorrent passthrough
// is not configured.
func New(
	st *store.Store,
	registry *adapter.Registry,
	translator *translate.Translator,
	images *imagecache.Cache,
	torrents TorrentClient,
	logger *slog.Logger,
) *Facade {
	if logger == nil {
		logger = slog.Default()
	}
	return &Facade{
		store: st, registry: registry,
		translator: translator, images: images, torrents: torrents, logger: logger,
	}
}

// resolveCode runs CN against name, falling back to hashFallback as a
// caller-supplied code when name yields nothing, matching the facade's
// shared code-resolution rule for hasBeenDownloaded/markAsDownloaded.
func resolveCode(name string, hashFallback string) (models.Code, bool) {
	if code, ok := codenorm.GetMovieCode(name); ok {
		return code, true
	}
	if hashFallback != "" {
		return models.Code(hashFallback), true
	}
	return "", false
}

// GetVideoInfo runs CN against name; on no code, returns nothing. On a
// cache hit with non-null info, returns it. On a miss, runs the crawler
// pipeline and upserts a non-empty-title result.
func (f *Facade) GetVideoInfo(ctx context.Context, name string) (*models.VideoInfo, error) {
	code, ok := codenorm.GetMovieCode(name)
	if !ok {
		return nil, nil
	}

	record, err := f.store.FindByCode(ctx, code)
	if err != nil && err != models.ErrNotFound {
		return nil, err
	}
	if record != nil && record.Info != nil {
		return record.Info, nil
	}

	info, err := f.crawl(ctx, code)
	if err != nil {
		return nil, err
	}
	if info == nil || info.Title.Text == "" {
		return nil, nil
	}

	if err := f.store.Upsert(ctx, *info); err != nil {
		return nil, err
	}
	return info, nil
}

// HasBeenDownloaded resolves a code from name or hashFallback and returns
// the stored download timestamp, or nil if no record exists.
func (f *Facade) HasBeenDownloaded(ctx context.Context, name, hashFallback string) (*int64, error) {
	code, ok := resolveCode(name, hashFallback)
	if !ok {
		return nil, nil
	}
	record, err := f.store.FindByCode(ctx, code)
	if err == models.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record.DownloadedAt, nil
}

// MarkAsDownloaded resolves a code from name or hashFallback and records
// whenEpoch as its download time, silently doing nothing if no code
// resolves.
func (f *Facade) MarkAsDownloaded(ctx context.Context, name, hashFallback string, whenEpoch int64) error {
	code, ok := resolveCode(name, hashFallback)
	if !ok {
		return nil
	}
	return f.store.MarkDownloaded(ctx, code, whenEpoch)
}

// Rescrape skips the read-cache and always runs the crawler pipeline,
// upserting a non-empty-title result.
func (f *Facade) Rescrape(ctx context.Context, name string) (*models.VideoInfo, error) {
	code, ok := codenorm.GetMovieCode(name)
	if !ok {
		return nil, nil
	}
	return f.RescrapeCode(ctx, code)
}

// RescrapeCode runs the same skip-the-cache crawl pipeline as Rescrape, but
// for a code already resolved by the caller — used by the supplemented
// background sweep (internal/scheduler), which discovers codes directly
// from stored records rather than from a filename.
func (f *Facade) RescrapeCode(ctx context.Context, code models.Code) (*models.VideoInfo, error) {
	info, err := f.crawl(ctx, code)
	if err != nil {
		return nil, err
	}
	if info == nil || info.Title.Text == "" {
		return nil, nil
	}
	if err := f.store.Upsert(ctx, *info); err != nil {
		return nil, err
	}
	return info, nil
}

// DownloadImage consults IC for url's data URL.
func (f *Facade) DownloadImage(ctx context.Context, imageURL string) (string, error) {
	return f.images.Get(ctx, imageURL)
}

// TorrentAction forwards a magnet-add request to the configured qBittorrent
// passthrough client (§4.12). It never inspects torrent metadata itself —
// this is a pure forwarding call, matching the spec's Non-goal.
func (f *Facade) TorrentAction(ctx context.Context, magnetURI, savePath, category string) error {
	if f.torrents == nil {
		return &models.ConfigError{Field: "qbittorrent", Message: "torrent passthrough not configured"}
	}
	return f.torrents.AddMagnet(ctx, magnetURI, savePath, category)
}

// crawl runs CR → (TR/SA/TL) → MG for code, stopping early once the
// accumulator is good enough, per §3's data flow and §4.5's merge loop.
func (f *Facade) crawl(ctx context.Context, code models.Code) (*models.VideoInfo, error) {
	acc := merge.NewAccumulator(f.seedFromOfficials(ctx, code))

	for _, sourceID := range router.Route(code) {
		result, err := f.crawlOne(ctx, sourceID, code)
		if err != nil {
			f.logger.DebugContext(ctx, "adapter failed",
				slog.String("source", string(sourceID)), slog.String("code", code.String()), slog.String("error", err.Error()))
			continue
		}
		acc.Apply(sourceID, result)
		if acc.IsGoodEnough() {
			break
		}
	}

	if len(acc.Result().Actresses) == 0 {
		if wiki, err := f.crawlOne(ctx, router.SourceAvWiki, code); err == nil {
			acc.ApplyActressesFallback(wiki.Actresses)
		}
	}

	info := acc.Result()
	return &info, nil
}

// seedFromOfficials tries the official-site adapter, falling back to
// Prestige, per crawl_officials in the original source. A failure of both
// seeds with an empty VideoInfo rather than aborting the whole query.
func (f *Facade) seedFromOfficials(ctx context.Context, code models.Code) models.VideoInfo {
	for _, id := range router.Officials() {
		if info, err := f.crawlOne(ctx, id, code); err == nil {
			return info
		}
	}
	return models.VideoInfo{Code: code}
}

// crawlOne runs one adapter's full contract: buildUrl, bounded followNext
// hops, parseTitle, parseInfo, URL resolution, and (if the adapter's
// language is not zh*) translation. If the HTTP variant fails and a
// headless variant is declared, it retries via headless before giving up.
func (f *Facade) crawlOne(ctx context.Context, id router.SourceID, code models.Code) (models.VideoInfo, error) {
	a, err := f.registry.Get(id)
	if err != nil {
		return models.VideoInfo{}, err
	}

	info, err := f.runAdapter(ctx, a, code)
	if err == nil {
		return info, nil
	}

	if headless := a.HeadlessVariant(); headless != nil {
		return f.runAdapter(ctx, headless, code)
	}
	return models.VideoInfo{}, err
}

func (f *Facade) runAdapter(ctx context.Context, a adapter.Adapter, code models.Code) (models.VideoInfo, error) {
	target, err := a.BuildURL(code)
	if err != nil {
		return models.VideoInfo{}, &models.ParseError{Adapter: string(a.ID()), Field: "url", Err: err}
	}

	hints := &adapter.Hints{}
	doc, finalURL, err := f.fetchDocument(ctx, a, code, target, hints)
	if err != nil {
		return models.VideoInfo{}, err
	}

	title, err := a.ParseTitle(doc)
	if err != nil || title == "" {
		return models.VideoInfo{}, &models.ParseError{Adapter: string(a.ID()), Field: "title", Err: err}
	}

	info, err := a.ParseInfo(ctx, doc, hints)
	if err != nil {
		return models.VideoInfo{}, err
	}
	info.Code = code
	info.Title.Text = title

	adapter.ResolveURLs(&info, finalURL)

	if f.translator != nil {
		f.translator.TranslateInfo(ctx, &info, a.Language())
	}

	return info, nil
}

// fetchDocument fetches target via a's own bound transport, following up to
// adapter.MaxFollowHops search-to-detail hops.
func (f *Facade) fetchDocument(ctx context.Context, a adapter.Adapter, code models.Code, target *url.URL, hints *adapter.Hints) (*adapter.Document, *url.URL, error) {
	current := target
	var doc *adapter.Document

	for hop := 0; hop < adapter.MaxFollowHops; hop++ {
		fetched, finalURL, err := a.Fetch(ctx, current)
		if err != nil {
			return nil, nil, err
		}
		doc = fetched

		next, err := a.FollowNext(ctx, code, finalURL, doc, hints)
		if err != nil {
			return nil, nil, &models.ParseError{Adapter: string(a.ID()), Field: "followNext", Err: err}
		}
		if next == nil {
			return doc, finalURL, nil
		}
		current = next
	}

	return doc, current, nil
}

// Now exposes the current time as Unix epoch seconds, the facade's single
// clock reference for markAsDownloaded callers that want "right now".
func Now() int64 {
	return time.Now().Unix()
}
