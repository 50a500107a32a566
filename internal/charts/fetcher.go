package charts

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/shared"
	"github.com/go-resty/resty/v2"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/88.0.4324.146 Safari/537.36"

// FetcherOpts configures a [Fetcher].
type FetcherOpts struct {
	URLTemplate string        // $1 = country, $2 = YYYY-MM-DD
	UserAgent   string        // defaults to a desktop browser string
	WorkingDir  string        // when set, payloads are staged here and removed after parsing
	Timeout     time.Duration // per request, default 30s
	HTTPClient  *http.Client  // optional transport override
}

// Fetcher downloads and parses chart snapshots.
type Fetcher struct {
	client     *resty.Client
	template   string
	workingDir string
}

// NewFetcher creates a [Fetcher] from opts.
func NewFetcher(opts FetcherOpts) *Fetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	// resty writes its timeout and transport into the client it wraps, so it gets a copy.
	var client *resty.Client
	if opts.HTTPClient != nil {
		hc := *opts.HTTPClient
		client = resty.NewWithClient(&hc)
	} else {
		client = resty.New()
	}
	client.SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept", "text/csv, text/plain, */*")

	return &Fetcher{client: client, template: opts.URLTemplate, workingDir: opts.WorkingDir}
}

// URL returns the snapshot address for task.
func (f *Fetcher) URL(task models.FetchTask) string {
	return strings.NewReplacer(shared.CountryMarker, task.Country, shared.DateMarker, task.Day()).Replace(f.template)
}

// Fetch retrieves and parses the snapshot for task. Errors wrap [shared.ErrTaskFetch].
func (f *Fetcher) Fetch(ctx context.Context, task models.FetchTask) ([]models.ChartRow, error) {
	url := f.URL(task)

	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", shared.ErrTaskFetch, task, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %s: status %d from %s", shared.ErrTaskFetch, task, resp.StatusCode(), url)
	}

	var rows []models.ChartRow
	if f.workingDir == "" {
		rows, err = Parse(bytes.NewReader(resp.Body()), task)
	} else {
		rows, err = f.stage(task, resp.Body())
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", shared.ErrTaskFetch, task, err)
	}
	return rows, nil
}

// stage writes the payload to <workingDir>/<country>_<date>.csv, parses it from disk and removes it.
func (f *Fetcher) stage(task models.FetchTask, body []byte) ([]models.ChartRow, error) {
	if err := os.MkdirAll(f.workingDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create working directory: %w", err)
	}

	path := filepath.Join(f.workingDir, fmt.Sprintf("%s_%s.csv", task.Country, task.Day()))
	if err := os.WriteFile(path, body, 0644); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to stage snapshot: %w", err)
	}
	defer os.Remove(path)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open staged snapshot: %w", err)
	}
	defer file.Close()

	return Parse(file, task)
}
