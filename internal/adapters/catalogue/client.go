// Package catalogue reads package metadata and files from the package catalogue.
package catalogue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/mo"

	"github.com/StefanUPB/tng-gtk-common/internal/core"
	apperrors "github.com/StefanUPB/tng-gtk-common/internal/errors"
)

const maxDocumentBytes = 16 << 20

var _ core.Catalogue = (*Client)(nil)

// Options configures a Client.
type Options struct {
	// BaseURL is CATALOGUE_URL, e.g. http://tng-cat:4011/api/catalogues/v2.
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client implements core.Catalogue over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient builds a Client. An empty BaseURL is allowed; every call then fails
// with ErrCatalogueNotConfigured.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		http:    httpClient,
		logger:  logger.With("component", "catalogue_client"),
	}
}

// ResolveURL joins path onto CATALOGUE_URL.
func (c *Client) ResolveURL(path string) (string, error) {
	if c.baseURL == "" {
		return "", apperrors.UpstreamUnavailable(apperrors.ErrCatalogueNotConfigured, "catalogue is not configured")
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/"), nil
}

// Get fetches a JSON document from the catalogue.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (mo.Option[json.RawMessage], error) {
	none := mo.None[json.RawMessage]()

	target, err := c.ResolveURL(path)
	if err != nil {
		return none, err
	}
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return none, apperrors.UpstreamUnavailable(err, "build catalogue request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return none, apperrors.Wrap(err, apperrors.ErrCodeCanceled, "catalogue request canceled")
		}
		return none, apperrors.UpstreamUnavailable(err, "catalogue request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return none, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return none, apperrors.UpstreamUnavailable(&apperrors.UpstreamStatusError{
			Service: "catalogue", StatusCode: resp.StatusCode,
		}, "catalogue request failed")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return none, apperrors.UpstreamUnavailable(err, "read catalogue response")
	}
	if IsEmptyDocument(body) {
		return none, nil
	}
	if !json.Valid(body) {
		return none, apperrors.UpstreamUnavailable(errors.New("invalid json"), "decode catalogue response")
	}
	return mo.Some(json.RawMessage(bytes.TrimSpace(body))), nil
}

// IsEmptyDocument reports whether body is blank, null, an empty object or an empty array.
func IsEmptyDocument(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return true
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return false
	}
	switch doc := v.(type) {
	case nil:
		return true
	case map[string]any:
		return len(doc) == 0
	case []any:
		return len(doc) == 0
	default:
		return false
	}
}
