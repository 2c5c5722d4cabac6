package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/collabmatch/backend/internal/domain"
)

// Client is a read-only client for one Notion workspace database.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	databaseID  string
	apiVersion  string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// NewClient creates a Notion API client for the given database.
func NewClient(baseURL, databaseID, apiVersion string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Notion allows an average of 3 requests per second per integration
	limiter := rate.NewLimiter(rate.Limit(3), 3)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     baseURL,
		databaseID:  databaseID,
		apiVersion:  apiVersion,
		rateLimiter: limiter,
		logger:      logger,
	}
}

// doRequest executes one API request with the required headers.
func (c *Client) doRequest(ctx context.Context, method, url, token string, body []byte) (*http.Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Notion-Version", c.apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotionAPIFailure, err)
	}
	return resp, nil
}

// TestConnection validates a token by fetching the database metadata.
func (c *Client) TestConnection(ctx context.Context, token string) error {
	url := fmt.Sprintf("%s/databases/%s", c.baseURL, c.databaseID)
	resp, err := c.doRequest(ctx, http.MethodGet, url, token, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: token invalid", domain.ErrNotionAPIFailure)
	case http.StatusNotFound:
		return fmt.Errorf("%w: database not found, was the integration shared with it?", domain.ErrNotionAPIFailure)
	default:
		return fmt.Errorf("%w: status %d", domain.ErrNotionAPIFailure, resp.StatusCode)
	}
}

// queryRequest is the body of a database query call.
type queryRequest struct {
	PageSize    int    `json:"page_size"`
	StartCursor string `json:"start_cursor,omitempty"`
}

// FetchAllEntries queries the full database, following pagination (Notion
// caps pages at 100 results), and flattens each page's properties.
func (c *Client) FetchAllEntries(ctx context.Context, token string) ([]domain.NotionEntry, error) {
	url := fmt.Sprintf("%s/databases/%s/query", c.baseURL, c.databaseID)

	var entries []domain.NotionEntry
	cursor := ""
	for {
		body, err := json.Marshal(queryRequest{PageSize: 100, StartCursor: cursor})
		if err != nil {
			return nil, fmt.Errorf("encode query: %w", err)
		}

		resp, err := c.doRequest(ctx, http.MethodPost, url, token, body)
		if err != nil {
			return nil, err
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			c.logger.Warn("notion query failed",
				zap.Int("status", resp.StatusCode),
				zap.ByteString("body", data))
			return nil, fmt.Errorf("%w: status %d", domain.ErrNotionAPIFailure, resp.StatusCode)
		}

		var page queryResponse
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}

		for _, result := range page.Results {
			entry := flattenPage(result)
			if entry.Name != "" {
				entries = append(entries, entry)
			}
		}

		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	c.logger.Info("fetched notion entries", zap.Int("count", len(entries)))
	return entries, nil
}
