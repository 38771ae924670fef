// Package fetcher downloads the upstream source datasets the pipeline
// enriches. Downloads are rate limited, retried on transient failures,
// and skipped when the server reports an unchanged ETag.
package fetcher

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lexikit/wordforge/internal/resilience"
)

// Dataset is one upstream source file.
type Dataset struct {
	// Name identifies the dataset in logs and CLI output.
	Name string
	// URL is the upstream location.
	URL string
	// Path is the destination relative to the source data directory;
	// it matches what source.Dir expects.
	Path string
}

// Datasets lists the upstream files the source loaders read.
func Datasets() []Dataset {
	return []Dataset{
		{
			Name: "cefr-j",
			URL:  "https://raw.githubusercontent.com/openlanguageprofiles/olp-en-cefrj/master/cefrj-vocabulary-profile-1.5.csv",
			Path: filepath.Join("cefr", "cefr-j.csv"),
		},
		{
			Name: "octanove",
			URL:  "https://raw.githubusercontent.com/openlanguageprofiles/olp-en-cefrj/master/octanove-vocabulary-profile-c1c2-1.0.csv",
			Path: filepath.Join("cefr", "octanove.csv"),
		},
		{
			Name: "jlpt-vocabulary",
			URL:  "https://raw.githubusercontent.com/jamsinclair/open-anki-jlpt-decks/main/src/all.csv",
			Path: filepath.Join("jlpt", "all.csv"),
		},
		{
			Name: "jlpt-kanji",
			URL:  "https://raw.githubusercontent.com/davidluzgouveia/kanji-data/master/kanji.json",
			Path: filepath.Join("kanji", "jlpt-kanji.json"),
		},
		{
			Name: "cet4",
			URL:  "https://raw.githubusercontent.com/KyleBing/english-vocabulary/master/json/CET4.json",
			Path: filepath.Join("cet", "cet4.json"),
		},
	}
}

// Options configures the fetcher.
type Options struct {
	UserAgent         string
	Timeout           time.Duration
	RequestsPerMinute int
	MaxAttempts       int
}

// Fetcher downloads datasets over HTTP.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	opts    Options
}

// New creates a Fetcher with the given options.
func New(opts Options) *Fetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "wordforge/1.0"
	}
	limit := rate.Inf
	if opts.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(opts.RequestsPerMinute))
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(limit, 1),
		opts:    opts,
	}
}

// Download fetches the URL and returns the response body. Transient
// failures (429, 5xx, network errors) are retried with backoff.
func (f *Fetcher) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	cfg := resilience.RetryConfig{
		MaxAttempts: f.opts.MaxAttempts,
		OnRetry:     resilience.RetryLogger("fetcher", "download"),
	}
	return resilience.Do(ctx, cfg, func(ctx context.Context) (io.ReadCloser, error) {
		return f.get(ctx, url, "")
	})
}

// DownloadToFile fetches the URL into path, creating parent
// directories. The write goes through a temp file so a failed download
// never truncates an existing dataset.
func (f *Fetcher) DownloadToFile(ctx context.Context, url, path string) (int64, error) {
	body, err := f.Download(ctx, url)
	if err != nil {
		return 0, err
	}
	defer body.Close() //nolint:errcheck

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, eris.Wrap(err, "fetcher: create dataset dir")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".download-*")
	if err != nil {
		return 0, eris.Wrap(err, "fetcher: create temp file")
	}
	n, err := io.Copy(tmp, body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return n, eris.Wrap(err, "fetcher: write dataset")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return n, eris.Wrap(err, "fetcher: move dataset into place")
	}
	return n, nil
}

// DownloadIfChanged fetches the URL only if the ETag differs. It
// returns (body, newETag, changed, error); body is nil when unchanged.
func (f *Fetcher) DownloadIfChanged(ctx context.Context, url, etag string) (io.ReadCloser, string, bool, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, "", false, eris.Wrap(err, "fetcher: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", false, eris.Wrap(err, "fetcher: create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", false, eris.Wrap(err, "fetcher: download if changed")
	}
	if resp.StatusCode == http.StatusNotModified {
		_ = resp.Body.Close()
		zap.L().Info("dataset unchanged", zap.String("url", url))
		return nil, etag, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, "", false, eris.Errorf("fetcher: unexpected status %d from %s", resp.StatusCode, url)
	}
	return resp.Body, resp.Header.Get("ETag"), true, nil
}

func (f *Fetcher) get(ctx context.Context, url, etag string) (io.ReadCloser, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fetcher: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: send request")
	}
	if resilience.IsTransientHTTPStatus(resp.StatusCode) {
		_ = resp.Body.Close()
		return nil, resilience.NewTransientError(
			eris.Errorf("fetcher: http %d from %s", resp.StatusCode, url), resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, eris.Errorf("fetcher: unexpected status %d from %s", resp.StatusCode, url)
	}
	return resp.Body, nil
}
