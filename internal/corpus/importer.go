package corpus

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/labeleval/internal/cache"
	"github.com/ppiankov/labeleval/internal/model"
	"github.com/ppiankov/labeleval/internal/util"
	"github.com/ppiankov/labeleval/internal/worker"
)

// maxPayloadBytes caps a single downloaded corpus payload
const maxPayloadBytes = 256 << 20

// Importer obtains the raw corpus table from some source
type Importer interface {
	Obtain(ctx context.Context) (*RawTable, error)
}

// Deps are the shared collaborators of remote importers
type Deps struct {
	HTTPClient *http.Client
	Cache      cache.Cache
	Limiter    *worker.Limiter
	Robots     *util.RobotsChecker
	Logger     *zap.Logger
}

// DepsFromConfig wires the default collaborators from configuration
func DepsFromConfig(cfg *model.Config, logger *zap.Logger) Deps {
	client := util.NewHTTPClient(cfg.HTTP)
	return Deps{
		HTTPClient: client,
		Cache:      cache.New(cfg.Cache),
		Limiter:    worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
		Robots:     util.NewRobotsChecker(client, cfg.HTTP.UserAgent),
		Logger:     logger,
	}
}

// NewImporter selects the importer for corpus.source
func NewImporter(cfg *model.Config, deps Deps) (Importer, error) {
	deps = deps.withDefaults(cfg)
	fetch := &fetcher{deps: deps, userAgent: cfg.HTTP.UserAgent}

	switch cfg.Corpus.Source {
	case "file":
		return &FileImporter{Path: cfg.Parameters.Dataset}, nil
	case "hub", "":
		return &HubImporter{
			BaseURL: strings.TrimRight(cfg.Corpus.HubURL, "/"),
			Dataset: cfg.Parameters.Dataset,
			Config:  cfg.Corpus.ConfigName,
			Split:   cfg.Corpus.Split,
			Limit:   cfg.Corpus.MaxRows,
			Workers: cfg.Concurrency.Workers,
			fetch:   fetch,
		}, nil
	case "url":
		return &URLImporter{URL: cfg.Parameters.Dataset, fetch: fetch}, nil
	default:
		return nil, fmt.Errorf("unknown corpus source: %s", cfg.Corpus.Source)
	}
}

func (d Deps) withDefaults(cfg *model.Config) Deps {
	if d.HTTPClient == nil {
		d.HTTPClient = util.NewHTTPClient(cfg.HTTP)
	}
	if d.Cache == nil {
		d.Cache = cache.Nop{}
	}
	if d.Limiter == nil {
		d.Limiter = worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return d
}

// Load obtains the raw table and keeps at most maxRows rows (0 = all)
func Load(ctx context.Context, imp Importer, maxRows int) (*RawTable, error) {
	raw, err := imp.Obtain(ctx)
	if err != nil {
		return nil, err
	}
	return raw.Head(maxRows), nil
}

// Limit keeps the first n normalized samples; n <= 0 keeps everything
func Limit(table model.CorpusTable, n int) model.CorpusTable {
	if n <= 0 || n >= len(table) {
		return table
	}
	return table[:n]
}

// fileFormat picks a decoder from the file extension
func fileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson", ".json":
		return "jsonl"
	default:
		return "csv"
	}
}

// fetcher performs cached, paced GET requests
type fetcher struct {
	deps      Deps
	userAgent string
}

func (f *fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	key := cache.Key("corpus", rawURL)
	if body, ok := f.deps.Cache.Get(key); ok {
		f.deps.Logger.Debug("corpus cache hit", zap.String("url", rawURL))
		return body, nil
	}

	if err := f.deps.Limiter.Wait(ctx, rawURL); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.deps.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if err := f.deps.Cache.Set(key, body, 0); err != nil {
		f.deps.Logger.Warn("corpus cache write failed", zap.String("url", rawURL), zap.Error(err))
	}
	return body, nil
}
