package corpus

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"
)

// URLImporter downloads a CSV or JSON Lines corpus over HTTP
type URLImporter struct {
	URL string

	fetch *fetcher
}

// Obtain checks robots.txt, then downloads and parses the corpus
func (u *URLImporter) Obtain(ctx context.Context) (*RawTable, error) {
	parsed, err := url.Parse(u.URL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid corpus URL: %s", u.URL)
	}

	if robots := u.fetch.deps.Robots; robots != nil {
		allowed, delay, err := robots.Allowed(ctx, u.URL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("robots.txt disallows %s", u.URL)
		}
		if delay > 0 {
			limiter := u.fetch.deps.Limiter
			limiter.SetHostDelay(parsed.Host, delay)
			u.fetch.deps.Logger.Debug("applying crawl delay",
				zap.String("host", parsed.Host),
				zap.Duration("robots_delay", delay),
				zap.Duration("effective_delay", limiter.HostDelay(parsed.Host)))
		}
	}

	body, err := u.fetch.get(ctx, u.URL)
	if err != nil {
		return nil, err
	}

	if fileFormat(parsed.Path) == "jsonl" {
		return ParseJSONLines(bytes.NewReader(body))
	}
	return ParseCSV(bytes.NewReader(body))
}
