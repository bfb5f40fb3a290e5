package facade

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	"github.com/jmylchreest/jav-meta/internal/adapter"
	"github.com/jmylchreest/jav-meta/internal/config"
	"github.com/jmylchreest/jav-meta/internal/models"
	"github.com/jmylchreest/jav-meta/internal/router"
	"github.com/jmylchreest/jav-meta/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAdapter is a minimal adapter.Adapter stub: BuildURL and Fetch return a
// placeholder URL and an empty document (or fetchErr), ParseTitle returns the
// canned title, and ParseInfo returns a pre-baked VideoInfo.
type fakeAdapter struct {
	id       router.SourceID
	lang     string
	title    string
	info     models.VideoInfo
	fetchErr error
	headless adapter.Adapter
}

func (f *fakeAdapter) ID() router.SourceID { return f.id }
func (f *fakeAdapter) Language() string    { return f.lang }

func (f *fakeAdapter) BuildURL(code models.Code) (*url.URL, error) {
	return url.Parse("https://example.invalid/" + code.String())
}

func (f *fakeAdapter) Fetch(_ context.Context, target *url.URL) (*adapter.Document, *url.URL, error) {
	if f.fetchErr != nil {
		return nil, nil, f.fetchErr
	}
	return &adapter.Document{HTML: []byte("<html></html>"), URL: target}, target, nil
}

func (f *fakeAdapter) FollowNext(_ context.Context, _ models.Code, _ *url.URL, _ *adapter.Document, _ *adapter.Hints) (*url.URL, error) {
	return nil, nil
}

func (f *fakeAdapter) ParseTitle(_ *adapter.Document) (string, error) {
	return f.title, nil
}

func (f *fakeAdapter) ParseInfo(_ context.Context, _ *adapter.Document, _ *adapter.Hints) (models.VideoInfo, error) {
	return f.info, nil
}

func (f *fakeAdapter) HeadlessVariant() adapter.Adapter { return f.headless }

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := store.New(config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      dsn,
		LogLevel: "silent",
	}, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	st, err := store.NewStore(db)
	require.NoError(t, err)
	return st
}

func newRegistryWith(adapters ...adapter.Adapter) *adapter.Registry {
	reg := adapter.NewRegistry()
	for _, a := range adapters {
		reg.Register(a)
	}
	return reg
}

func TestFacade_GetVideoInfo_UnresolvableCodeReturnsNil(t *testing.T) {
	f := New(newTestStore(t), adapter.NewRegistry(), nil, nil, nil, nil)

	info, err := f.GetVideoInfo(context.Background(), "not a code at all !!!")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestFacade_GetVideoInfo_CacheHitSkipsCrawl(t *testing.T) {
	st := newTestStore(t)
	seeded := models.VideoInfo{Code: "SSIS-001", Title: models.TranslatedText{Text: "Cached Title"}}
	require.NoError(t, st.Upsert(context.Background(), seeded))

	officials := &fakeAdapter{id: router.SourceOfficials, title: "should-not-be-used"}
	f := New(st, newRegistryWith(officials), nil, nil, nil, nil)

	info, err := f.GetVideoInfo(context.Background(), "SSIS-001.mp4")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "Cached Title", info.Title.Text)
}

func TestFacade_GetVideoInfo_MissCrawlsAndUpserts(t *testing.T) {
	st := newTestStore(t)
	officials := &fakeAdapter{
		id:    router.SourceOfficials,
		title: "Fresh Title",
		info:  models.VideoInfo{Title: models.TranslatedText{Text: "Fresh Title"}},
	}
	f := New(st, newRegistryWith(officials), nil, nil, nil, nil)

	info, err := f.GetVideoInfo(context.Background(), "SSIS-002.mp4")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "Fresh Title", info.Title.Text)

	record, err := st.FindByCode(context.Background(), "SSIS-002")
	require.NoError(t, err)
	require.NotNil(t, record.Info)
	assert.Equal(t, "Fresh Title", record.Info.Title.Text)
}

func TestFacade_GetVideoInfo_EmptyTitleIsNotPersisted(t *testing.T) {
	st := newTestStore(t)
	officials := &fakeAdapter{id: router.SourceOfficials, title: ""}
	f := New(st, newRegistryWith(officials), nil, nil, nil, nil)

	info, err := f.GetVideoInfo(context.Background(), "SSIS-003.mp4")
	require.NoError(t, err)
	assert.Nil(t, info)

	_, err = st.FindByCode(context.Background(), "SSIS-003")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFacade_HasBeenDownloaded_NoRecordReturnsNil(t *testing.T) {
	f := New(newTestStore(t), adapter.NewRegistry(), nil, nil, nil, nil)

	at, err := f.HasBeenDownloaded(context.Background(), "SSIS-004.mp4", "")
	require.NoError(t, err)
	assert.Nil(t, at)
}

func TestFacade_MarkAsDownloaded_ThenHasBeenDownloaded(t *testing.T) {
	st := newTestStore(t)
	f := New(st, adapter.NewRegistry(), nil, nil, nil, nil)

	require.NoError(t, f.MarkAsDownloaded(context.Background(), "SSIS-005.mp4", "", 1700000000))

	at, err := f.HasBeenDownloaded(context.Background(), "SSIS-005.mp4", "")
	require.NoError(t, err)
	require.NotNil(t, at)
	assert.Equal(t, int64(1700000000), *at)
}

func TestFacade_MarkAsDownloaded_FallsBackToHash(t *testing.T) {
	st := newTestStore(t)
	f := New(st, adapter.NewRegistry(), nil, nil, nil, nil)

	require.NoError(t, f.MarkAsDownloaded(context.Background(), "not a code at all !!!", "deadbeef", 1700000001))

	at, err := f.HasBeenDownloaded(context.Background(), "not a code at all !!!", "deadbeef")
	require.NoError(t, err)
	require.NotNil(t, at)
	assert.Equal(t, int64(1700000001), *at)
}

func TestFacade_Rescrape_AlwaysCrawlsEvenWithCachedRecord(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.Upsert(context.Background(), models.VideoInfo{Code: "SSIS-006", Title: models.TranslatedText{Text: "Stale Title"}}))

	officials := &fakeAdapter{
		id:    router.SourceOfficials,
		title: "Rescraped Title",
		info:  models.VideoInfo{Title: models.TranslatedText{Text: "Rescraped Title"}},
	}
	f := New(st, newRegistryWith(officials), nil, nil, nil, nil)

	info, err := f.Rescrape(context.Background(), "SSIS-006.mp4")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "Rescraped Title", info.Title.Text)
}

func TestFacade_TorrentAction_NoClientConfiguredReturnsConfigError(t *testing.T) {
	f := New(newTestStore(t), adapter.NewRegistry(), nil, nil, nil, nil)

	err := f.TorrentAction(context.Background(), "magnet:?xt=urn:btih:abc", "", "")
	require.Error(t, err)
	var cfgErr *models.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

type fakeTorrentClient struct {
	lastMagnetURI, lastSavePath, lastCategory string
	err                                       error
}

func (c *fakeTorrentClient) AddMagnet(_ context.Context, magnetURI, savePath, category string) error {
	c.lastMagnetURI, c.lastSavePath, c.lastCategory = magnetURI, savePath, category
	return c.err
}

func TestFacade_TorrentAction_ForwardsToClient(t *testing.T) {
	client := &fakeTorrentClient{}
	f := New(newTestStore(t), adapter.NewRegistry(), nil, nil, client, nil)

	err := f.TorrentAction(context.Background(), "magnet:?xt=urn:btih:abc", "/downloads", "jav")
	require.NoError(t, err)
	assert.Equal(t, "magnet:?xt=urn:btih:abc", client.lastMagnetURI)
	assert.Equal(t, "/downloads", client.lastSavePath)
	assert.Equal(t, "jav", client.lastCategory)
}

func TestFacade_CrawlOne_FallsBackToHeadlessOnHTTPFailure(t *testing.T) {
	st := newTestStore(t)
	headless := &fakeAdapter{
		id:    router.SourceOfficials,
		title: "Headless Title",
		info:  models.VideoInfo{Title: models.TranslatedText{Text: "Headless Title"}},
	}
	officials := &fakeAdapter{id: router.SourceOfficials, fetchErr: assertErr, headless: headless}
	f := New(st, newRegistryWith(officials), nil, nil, nil, nil)

	info, err := f.GetVideoInfo(context.Background(), "SSIS-007.mp4")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "Headless Title", info.Title.Text)
}

var assertErr = &models.TransportError{Kind: "http", URL: "https://example.invalid"}
