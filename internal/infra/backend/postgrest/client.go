// Package postgrest is a backend driver for PostgREST-compatible HTTP APIs
// (including Supabase's /rest/v1).
package postgrest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/vietddude/localguide/internal/infra/backend"
)

// Config holds connection settings.
type Config struct {
	// URL is the REST root, e.g. https://project.supabase.co/rest/v1.
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Driver issues PostgREST GET requests.
type Driver struct {
	base       *url.URL
	apiKey     string
	httpClient *http.Client
}

var _ backend.Driver = (*Driver)(nil)

// New creates a driver.
func New(cfg Config) (*Driver, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("postgrest url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid postgrest url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Driver{
		base:   base,
		apiKey: cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// Close implements backend.Driver.
func (d *Driver) Close() error {
	d.httpClient.CloseIdleConnections()
	return nil
}

// Encode renders req as the URL query PostgREST expects.
func Encode(req *backend.Request) url.Values {
	q := url.Values{}
	q.Set("select", req.Select.String())
	for _, f := range req.Filters {
		if f.Any {
			q.Add("or", "("+f.Expr()+")")
			continue
		}
		for _, c := range f.Conditions {
			k, v := c.Param()
			q.Add(k, v)
		}
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	return q
}

// Run implements backend.Driver.
func (d *Driver) Run(ctx context.Context, req *backend.Request) backend.Response {
	u := *d.base
	u.Path = u.Path + "/" + url.PathEscape(req.Table)
	u.RawQuery = Encode(req).Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return backend.Response{Err: backend.ParseError(err)}
	}
	httpReq.Header.Set("Accept", "application/json")
	if d.apiKey != "" {
		httpReq.Header.Set("apikey", d.apiKey)
		httpReq.Header.Set("Authorization", "Bearer "+d.apiKey)
	}

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return backend.Response{Err: backend.TransportError(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return backend.Response{Err: backend.TransportError(fmt.Errorf("read response: %w", err))}
	}

	if resp.StatusCode >= 400 {
		return backend.Response{Err: decodeError(resp.StatusCode, body)}
	}
	rows, rerr := decodeRows(resp.StatusCode, body)
	if rerr != nil {
		return backend.Response{Err: rerr}
	}
	return backend.Response{Data: rows}
}

func decodeError(status int, body []byte) *backend.RemoteError {
	rerr := &backend.RemoteError{Status: status}
	if gjson.ValidBytes(body) {
		res := gjson.ParseBytes(body)
		rerr.Message = res.Get("message").String()
		rerr.Code = res.Get("code").String()
		rerr.Details = res.Get("details").String()
	}
	if rerr.Message == "" {
		rerr.Message = strings.TrimSpace(string(body))
	}
	if rerr.Message == "" {
		rerr.Message = http.StatusText(status)
	}
	return rerr
}

func decodeRows(status int, body []byte) ([]backend.Row, *backend.RemoteError) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return []backend.Row{}, nil
	}
	if !gjson.ValidBytes(body) {
		return nil, &backend.RemoteError{Message: "invalid JSON in response", Status: status}
	}

	res := gjson.ParseBytes(body)
	if !res.IsArray() {
		return nil, &backend.RemoteError{Message: "expected a JSON array", Status: status}
	}

	items := res.Array()
	rows := make([]backend.Row, 0, len(items))
	for _, item := range items {
		m, ok := item.Value().(map[string]any)
		if !ok {
			return nil, &backend.RemoteError{Message: "expected an array of objects", Status: status}
		}
		rows = append(rows, backend.Row(m))
	}
	return rows, nil
}
