// Package unpackager talks to the asynchronous package unpack/validate worker.
package unpackager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strings"
	"time"

	"github.com/samber/mo"

	"github.com/StefanUPB/tng-gtk-common/internal/core"
	"github.com/StefanUPB/tng-gtk-common/internal/domain/model"
	apperrors "github.com/StefanUPB/tng-gtk-common/internal/errors"
)

const (
	// FileField is the multipart field carrying the package archive.
	FileField = "package"
	// CallbackField tells the worker where to post its completion event.
	CallbackField = "callback_url"

	maxResponseBytes = 1 << 20
)

var _ core.Unpackager = (*Client)(nil)

// Options configures a Client.
type Options struct {
	// BaseURL is UNPACKAGER_URL; empty leaves the client unconfigured.
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client implements core.Unpackager over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient builds a Client. An empty BaseURL is allowed; every call then fails
// with ErrUnpackagerNotConfigured.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
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
		logger:  logger.With("component", "unpackager_client"),
	}
}

// Configured reports whether UNPACKAGER_URL was set.
func (c *Client) Configured() bool { return c.baseURL != "" }

// Submit streams the package to the worker as multipart/form-data.
func (c *Client) Submit(ctx context.Context, req core.SubmitRequest) (model.SubmissionResult, error) {
	if !c.Configured() {
		return model.SubmissionResult{}, apperrors.UpstreamUnavailable(
			apperrors.ErrUnpackagerNotConfigured, "unpackager is not configured")
	}
	if req.File == nil {
		return model.SubmissionResult{}, apperrors.ValidationField(FileField, "package file is required", nil)
	}

	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeForm(mw, req))
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, pr)
	if err != nil {
		_ = pr.CloseWithError(err)
		return model.SubmissionResult{}, apperrors.UpstreamUnavailable(err, "build unpackager request")
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		_ = pr.CloseWithError(err)
		return model.SubmissionResult{}, classifyTransport(err, "send package to unpackager")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return model.SubmissionResult{}, classifyTransport(err, "read unpackager response")
	}

	result := model.SubmissionResult{StatusCode: resp.StatusCode}
	if len(strings.TrimSpace(string(body))) > 0 {
		if decodeErr := json.Unmarshal(body, &result); decodeErr != nil {
			c.logger.WarnContext(ctx, "unpackager response is not json",
				"status", resp.StatusCode, "error", decodeErr)
		}
		result.StatusCode = resp.StatusCode
	}
	if !result.Accepted() {
		c.logger.WarnContext(ctx, "unpackager rejected package",
			"status", resp.StatusCode, "file_name", req.FileName, "detail", truncate(string(body), 512))
	}
	return result, nil
}

// workerStatus is the worker's view of a process, as served on /status/{id}.
type workerStatus struct {
	EventName            string `json:"event_name"`
	PackageID            string `json:"package_id"`
	PackageLocation      string `json:"package_location"`
	PackageProcessStatus string `json:"package_process_status"`
	PackageProcessUUID   string `json:"package_process_uuid"`
	ErrorMsg             string `json:"error_msg"`
}

// Status asks the worker about processID. Unknown ids and unreadable answers are None.
func (c *Client) Status(ctx context.Context, processID string) (mo.Option[model.ProcessRecord], error) {
	none := mo.None[model.ProcessRecord]()
	if !c.Configured() {
		return none, apperrors.UpstreamUnavailable(apperrors.ErrUnpackagerNotConfigured, "unpackager is not configured")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status/"+processID, nil)
	if err != nil {
		return none, apperrors.UpstreamUnavailable(err, "build unpackager status request")
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return none, classifyTransport(err, "query unpackager status")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return none, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return none, apperrors.UpstreamUnavailable(&apperrors.UpstreamStatusError{
			Service: "unpackager", StatusCode: resp.StatusCode,
		}, "unpackager status query failed")
	}

	var ws workerStatus
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&ws); err != nil {
		if errors.Is(err, io.EOF) {
			return none, nil
		}
		return none, apperrors.UpstreamUnavailable(err, "decode unpackager status")
	}

	var status model.ProcessStatus
	if err := status.UnmarshalText([]byte(ws.PackageProcessStatus)); err != nil {
		c.logger.WarnContext(ctx, "unpackager reported unknown status",
			"process_id", processID, "status", ws.PackageProcessStatus)
		return none, nil
	}
	rec := model.ProcessRecord{ProcessID: processID, Status: status, UpdatedAt: time.Now().UTC()}
	if status == model.ProcessStatusFailed && ws.ErrorMsg != "" {
		msg := ws.ErrorMsg
		rec.ErrorMessage = &msg
	}
	return mo.Some(rec), nil
}

func writeForm(mw *multipart.Writer, req core.SubmitRequest) error {
	// Sorted for deterministic bodies.
	names := make([]string, 0, len(req.Fields))
	for name := range req.Fields {
		if name == FileField || name == CallbackField {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, v := range req.Fields[name] {
			if err := mw.WriteField(name, v); err != nil {
				return fmt.Errorf("write field %s: %w", name, err)
			}
		}
	}
	if req.CallbackURL != "" {
		if err := mw.WriteField(CallbackField, req.CallbackURL); err != nil {
			return fmt.Errorf("write callback url: %w", err)
		}
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = model.DefaultFileContentType
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FileField, req.FileName))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, req.File); err != nil {
		return fmt.Errorf("copy package: %w", err)
	}
	return mw.Close()
}

func classifyTransport(err error, message string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(err, apperrors.ErrCodeTimeout, message)
	}
	if errors.Is(err, context.Canceled) {
		return apperrors.Wrap(err, apperrors.ErrCodeCanceled, message)
	}
	return apperrors.UpstreamUnavailable(err, message)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
