// Package repository provides a client for the remote workload API.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/zorak1103/conman/internal/errors"
	"github.com/zorak1103/conman/internal/version"
	"github.com/zorak1103/conman/internal/workload"
)

// maxBodyBytes bounds how much of a response body is read (log downloads included).
const maxBodyBytes = 16 << 20

// Repository defines the read and action operations of the workload API.
// Failures are *apperrors.RequestError values classified as ErrNetworkUnavailable or
// ErrServerRejected; a missing or incomplete link yields ErrActionUnavailable without
// any network call.
type Repository interface {
	// ListContainers fetches the full container list.
	ListContainers(ctx context.Context) ([]workload.Workload, error)
	// ListServices fetches the full swarm service list.
	ListServices(ctx context.Context) ([]workload.Workload, error)
	// PerformAction issues the request described by a server-supplied link.
	PerformAction(ctx context.Context, link *workload.Link) (ActionResult, error)
}

// ActionResult is the outcome of a successful action.
type ActionResult struct {
	StatusCode  int
	ContentType string
	Body        string
}

// HasText reports whether the result carries a textual body, e.g. a captured log.
func (r ActionResult) HasText() bool {
	if r.Body == "" {
		return false
	}
	if r.ContentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "text/")
}

// Options configures the HTTP repository.
type Options struct {
	BaseURL        string
	ContainersPath string
	ServicesPath   string
	HTTPClient     *http.Client
}

// httpRepository talks to the workload API over HTTP
type httpRepository struct {
	baseURL        *url.URL
	containersPath string
	servicesPath   string
	httpClient     *http.Client
}

// Compile-time verification that httpRepository implements Repository
var _ Repository = (*httpRepository)(nil)

// New creates a Repository for the API rooted at opts.BaseURL.
func New(opts Options) (Repository, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", opts.BaseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		// Per-request deadlines come from the caller's context.
		httpClient = &http.Client{}
	}

	return &httpRepository{
		baseURL:        base,
		containersPath: opts.ContainersPath,
		servicesPath:   opts.ServicesPath,
		httpClient:     httpClient,
	}, nil
}

func (r *httpRepository) ListContainers(ctx context.Context) ([]workload.Workload, error) {
	return r.list(ctx, r.containersPath)
}

func (r *httpRepository) ListServices(ctx context.Context) ([]workload.Workload, error) {
	return r.list(ctx, r.servicesPath)
}

func (r *httpRepository) PerformAction(ctx context.Context, link *workload.Link) (ActionResult, error) {
	if !link.Valid() {
		return ActionResult{}, fmt.Errorf("cannot perform action: %w", apperrors.ErrActionUnavailable)
	}

	result, err := r.do(ctx, link.Method, link.Href)
	if err != nil {
		return ActionResult{}, err
	}
	return ActionResult{
		StatusCode:  result.statusCode,
		ContentType: result.contentType,
		Body:        string(result.body),
	}, nil
}

func (r *httpRepository) list(ctx context.Context, path string) ([]workload.Workload, error) {
	result, err := r.do(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	var records []workload.Workload
	if err := json.Unmarshal(result.body, &records); err != nil {
		return nil, apperrors.NewRejectedError(http.MethodGet, result.url,
			result.statusCode, fmt.Sprintf("invalid workload list: %v", err))
	}
	if records == nil {
		records = []workload.Workload{}
	}
	return records, nil
}

// response holds the parts of a successful HTTP exchange the callers need.
type response struct {
	url         string
	statusCode  int
	contentType string
	body        []byte
}

// do performs a single request; non-2xx statuses and transport failures are classified errors.
func (r *httpRepository) do(ctx context.Context, method, ref string) (response, error) {
	target, err := r.resolve(ref)
	if err != nil {
		return response{}, err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return response{}, fmt.Errorf("failed to create %s request to %s: %w", method, target, err)
	}
	req.Header.Set("Accept", "application/json, text/plain;q=0.9")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return response{}, apperrors.NewNetworkError(method, target, err)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	_ = resp.Body.Close() // Body is fully read; close error not actionable
	if err != nil {
		return response{}, apperrors.NewNetworkError(method, target, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return response{}, apperrors.NewRejectedError(method, target, resp.StatusCode, string(body))
	}

	return response{
		url:         target,
		statusCode:  resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        body,
	}, nil
}

// resolve turns a server-supplied reference (usually an absolute path) into a full URL.
func (r *httpRepository) resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid link %q: %w", ref, err)
	}
	return r.baseURL.ResolveReference(u).String(), nil
}
