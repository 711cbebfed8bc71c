package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/ppiankov/labeleval/internal/model"
	"github.com/ppiankov/labeleval/internal/worker"
)

// hubPageSize is the largest page the datasets-server rows endpoint returns
const hubPageSize = 100

// HubImporter pages through the Hugging Face datasets-server rows API
type HubImporter struct {
	BaseURL string
	Dataset string
	Config  string
	Split   string
	Limit   int // Stop after this many rows (0 = all)
	Workers int

	fetch *fetcher
}

type hubPage struct {
	Features []struct {
		Name string `json:"name"`
	} `json:"features"`
	Rows []struct {
		RowIdx int            `json:"row_idx"`
		Row    map[string]any `json:"row"`
	} `json:"rows"`
	NumRowsTotal int `json:"num_rows_total"`
}

// Obtain fetches the first page, then the remaining pages concurrently, and
// reassembles rows in offset order.
func (h *HubImporter) Obtain(ctx context.Context) (*RawTable, error) {
	first, err := h.page(ctx, 0)
	if err != nil {
		return nil, err
	}

	total := first.NumRowsTotal
	if h.Limit > 0 && h.Limit < total {
		total = h.Limit
	}

	pages := (total + hubPageSize - 1) / hubPageSize
	h.fetch.deps.Logger.Info("fetching hub corpus",
		zap.String("dataset", h.Dataset),
		zap.String("split", h.Split),
		zap.Int("rows", total),
		zap.Int("pages", pages),
	)

	rest, err := worker.RunOrdered(ctx, h.Workers, max(pages-1, 0), func(ctx context.Context, i int) (*hubPage, error) {
		return h.page(ctx, (i+1)*hubPageSize)
	})
	if err != nil {
		return nil, err
	}

	columns := make([]string, 0, len(first.Features))
	for _, f := range first.Features {
		columns = append(columns, f.Name)
	}

	objects := make([]map[string]any, 0, total)
	for _, p := range append([]*hubPage{first}, rest...) {
		for _, r := range p.Rows {
			if len(objects) == total {
				break
			}
			objects = append(objects, r.Row)
		}
	}
	return fromObjects(objects, columns), nil
}

func (h *HubImporter) page(ctx context.Context, offset int) (*hubPage, error) {
	q := url.Values{}
	q.Set("dataset", h.Dataset)
	q.Set("config", h.Config)
	q.Set("split", h.Split)
	q.Set("offset", strconv.Itoa(offset))
	q.Set("length", strconv.Itoa(hubPageSize))
	rawURL := h.BaseURL + "/rows?" + q.Encode()

	body, err := h.fetch.get(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("hub rows offset %d: %w", offset, err)
	}

	var page hubPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("%w: decode hub rows: %v", model.ErrTypeMismatch, err)
	}
	if page.Rows == nil || page.Features == nil {
		return nil, fmt.Errorf("%w: hub rows payload without rows or features", model.ErrTypeMismatch)
	}
	return &page, nil
}
