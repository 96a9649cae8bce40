package corpus

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	userAgent       = "job-matcher (+https://github.com/spigell/job-matcher)"
	// upper bound on requests made by a single Fetch.
	maxPages = 1000
)

// ErrPagination is returned when a remote listing does not page forward.
var ErrPagination = errors.New("corpus pagination")

// ItemResponse is one page of a remote posting listing.
type ItemResponse struct {
	Items   []Record `json:"items"`
	Found   int      `json:"found"`
	Pages   int      `json:"pages"`
	Page    int      `json:"page"`
	PerPage int      `json:"per_page"`
}

// Client downloads postings from a paginated JSON endpoint.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	Token      string
	logger     *zap.Logger
}

func NewClient(token string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		UserAgent:  userAgent,
		Token:      token,
		logger:     logger,
	}
}

// Fetch requests rawURL and follows the "page"/"pages" counters until every
// page has been read.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Corpus, error) {
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse corpus url: %w", err)
	}

	var records []Record

	page := 0
	for requests := 1; ; requests++ {
		response, err := c.getPage(ctx, base, page)
		if err != nil {
			return nil, err
		}
		records = append(records, response.Items...)

		c.logger.Debug("got corpus page",
			zap.Int("page", response.Page),
			zap.Int("pages", response.Pages),
			zap.Int("items", len(response.Items)),
		)

		if response.Page >= response.Pages-1 {
			break
		}
		if requests >= maxPages {
			return nil, fmt.Errorf("%w: more than %d pages", ErrPagination, maxPages)
		}
		if page > 0 && response.Page < page {
			return nil, fmt.Errorf("%w: requested page %d, got %d", ErrPagination, page, response.Page)
		}
		page = response.Page + 1
	}

	return FromRecords(rawURL, records), nil
}

func (c *Client) getPage(ctx context.Context, base *url.URL, page int) (*ItemResponse, error) {
	u := *base
	q := u.Query()
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set("User-Agent", c.UserAgent)
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return parseItemResponse(resp)
}

func parseItemResponse(resp *http.Response) (*ItemResponse, error) {
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var body io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		body = gz
	}

	var response ItemResponse
	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode corpus page: %w", err)
	}
	return &response, nil
}
