package sites

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/jmylchreest/jav-meta/internal/adapter"
	"github.com/jmylchreest/jav-meta/internal/cookiejar"
	"github.com/jmylchreest/jav-meta/internal/models"
	"github.com/jmylchreest/jav-meta/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHTTP(t *testing.T) *transport.HTTP {
	t.Helper()
	jar, err := cookiejar.New(filepath.Join(t.TempDir(), "cookies.json"), "")
	require.NoError(t, err)
	ht, err := transport.NewHTTP(transport.HTTPOptions{}, jar)
	require.NoError(t, err)
	return ht
}

func newDoc(html string) *adapter.Document {
	return &adapter.Document{HTML: []byte(html)}
}

func TestOfficials_BuildURL(t *testing.T) {
	a := NewOfficials(newHTTP(t))

	target, err := a.BuildURL(models.Code("SSIS-001"))
	require.NoError(t, err)
	assert.Equal(t, "https://s1s1s1.com/search/list?keyword=SSIS001", target.String())

	_, err = a.BuildURL(models.Code("ZZZZ-001"))
	assert.Error(t, err)
}

func TestOfficials_ParseInfo(t *testing.T) {
	a := NewOfficials(newHTTP(t))
	html := `
	<html><body>
	<h2 class="p-workPage__title">  A Great Title  </h2>
	<p class="p-workPage__text">an outline</p>
	<img class="swiper-lazy" data-src="/cover1.jpg">
	<img class="swiper-lazy" data-src="/cover2.jpg">
	<a class="c-tag c-main-bg-hover c-main-font c-main-bd" href="/actress/1">Someone</a>
	<div class="th">ジャンル</div><div><a>tag1</a><a>tag2</a></div>
	<div class="th">収録時間</div><div>120分</div>
	<meta name="description" content="【公式】Some Title(Some Studio)">
	</body></html>`

	doc := newDoc(html)

	title, err := a.ParseTitle(doc)
	require.NoError(t, err)
	assert.Equal(t, "A Great Title", title)

	info, err := a.ParseInfo(context.Background(), doc, &adapter.Hints{})
	require.NoError(t, err)
	require.NotNil(t, info.Outline)
	assert.Equal(t, "an outline", info.Outline.Text)
	require.Len(t, info.ExtraFanart, 1)
	assert.Equal(t, "/cover2.jpg", info.ExtraFanart[0])
	assert.Equal(t, []string{"tag1", "tag2"}, info.Tags)
	require.NotNil(t, info.DurationSec)
	assert.Equal(t, int64(7200), *info.DurationSec)
	require.NotNil(t, info.Studio)
	assert.Equal(t, "Some Studio", *info.Studio)
}

func TestFC2PPVDB_BuildURL(t *testing.T) {
	a := NewFC2PPVDB(newHTTP(t))

	cases := []struct {
		code string
		want string
	}{
		{"FC2-1234567", "https://fc2ppvdb.com/articles/1234567"},
		{"FC2PPV-1234567", "https://fc2ppvdb.com/articles/1234567"},
	}
	for _, c := range cases {
		target, err := a.BuildURL(models.Code(c.code))
		require.NoError(t, err)
		assert.Equal(t, c.want, target.String())
	}
}

func TestJavBus_Fetch_FollowsRegionGate(t *testing.T) {
	var posts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			posts++
			_, _ = w.Write([]byte(`<html><body><h3>Confirmed Title</h3></body></html>`))
			return
		}
		_, _ = w.Write([]byte(`<html><body>此內容需要驗證</body></html>`))
	}))
	defer srv.Close()

	a := NewJavBus(newHTTP(t))
	target, err := a.BuildURL(models.Code("XYZ-001"))
	require.NoError(t, err)
	target2, _ := target.Parse(srv.URL)

	doc, _, err := a.Fetch(context.Background(), target2)
	require.NoError(t, err)
	assert.Equal(t, 1, posts)

	title, err := a.ParseTitle(doc)
	require.NoError(t, err)
	assert.Equal(t, "Confirmed Title", title)
}

func TestAvWiki_ParseInfo_SkipsUnknownActresses(t *testing.T) {
	a := NewAvWiki(newHTTP(t))
	html := `
	<html><body>
	<dl><dd><a href="/av-actress/someone/">Someone</a></dd></dl>
	<dl><dd><a href="/av-actress/unknown/">Unknown</a></dd></dl>
	</body></html>`
	doc := newDoc(html)

	info, err := a.ParseInfo(context.Background(), doc, &adapter.Hints{})
	require.NoError(t, err)
	require.Len(t, info.Actresses, 1)
	assert.Equal(t, "Someone", info.Actresses[0].Name)
}
