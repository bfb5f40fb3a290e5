// Package translate implements the Translator (TL): a non-fatal
// best-effort call to an external Google-Translate-like endpoint for
// adapters whose native language is not Chinese.
//
// No example repo ships a translation client, so this package is built on
// the standard library's net/http, grounded directly on the spec's §4.6
// contract and the teacher's proxy-selection idiom (pkg/httpclient) rather
// than on a teacher file.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/jmylchreest/jav-meta/internal/models"
)

// Translator calls an external translation endpoint. Failures are logged
// and swallowed by Translate/TranslateInfo: the spec requires TL failures to
// be non-fatal, leaving the translated field null.
type Translator struct {
	client   *http.Client
	endpoint string
	target   string
	logger   *slog.Logger
	enabled  bool
}

// Options configures the translator.
type Options struct {
	Endpoint string
	Target   string // e.g. "zh-CN"
	Enabled  bool
}

// New builds a Translator using client for transport (the same resilient
// client TR uses, so proxy rules match).
func New(client *http.Client, opts Options, logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Target == "" {
		opts.Target = "zh-CN"
	}
	return &Translator{client: client, endpoint: opts.Endpoint, target: opts.Target, logger: logger, enabled: opts.Enabled}
}

// TranslateInfo fills title.translated and outline.translated (if null) for
// an adapter result whose language is not zh*, per §4.6. It never returns an
// error; failures are logged and the field is left as-is.
func (t *Translator) TranslateInfo(ctx context.Context, info *models.VideoInfo, language string) {
	if !t.enabled || strings.HasPrefix(language, "zh") {
		return
	}

	if info.Title.Translated == nil && info.Title.Text != "" {
		if translated, err := t.translate(ctx, info.Title.Text); err == nil {
			info.Title.Translated = &translated
		} else {
			t.logger.Debug("title translation failed", slog.String("error", err.Error()))
		}
	}

	if info.Outline != nil && info.Outline.Translated == nil && info.Outline.Text != "" {
		if translated, err := t.translate(ctx, info.Outline.Text); err == nil {
			info.Outline.Translated = &translated
		} else {
			t.logger.Debug("outline translation failed", slog.String("error", err.Error()))
		}
	}
}

// googleTranslateResponse models the nested-array shape the
// translate_a/single endpoint returns.
type googleTranslateResponse [][]any

func (t *Translator) translate(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", nil
	}

	q := url.Values{
		"client": {"gtx"},
		"sl":     {"auto"},
		"tl":     {t.target},
		"dt":     {"t"},
		"q":      {text},
	}
	reqURL := t.endpoint + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", &models.TransportError{Kind: "http", URL: t.endpoint, Err: err}
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", &models.TransportError{Kind: "http", URL: t.endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &models.TransportError{Kind: "http", Status: resp.StatusCode, URL: t.endpoint}
	}

	var parsed googleTranslateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding translation response: %w", err)
	}

	var sb strings.Builder
	if len(parsed) > 0 {
		for _, segment := range parsed[0] {
			pieces, ok := segment.([]any)
			if !ok || len(pieces) == 0 {
				continue
			}
			if chunk, ok := pieces[0].(string); ok {
				sb.WriteString(chunk)
			}
		}
	}

	return sb.String(), nil
}
