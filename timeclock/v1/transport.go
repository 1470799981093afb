package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

type Response struct {
	StatusCode int
	Data       []byte
}

// TokenSource supplies the bearer token for each request.
type TokenSource interface {
	Token() string
}

type StaticToken string

func (s StaticToken) Token() string {
	return string(s)
}

// Transport handles low-level HTTP and authentication
type Transport struct {
	BaseURL    string
	Tokens     TokenSource
	HTTPClient *http.Client
	Logger     hclog.Logger
}

func NewTransport(baseURL string, tokens TokenSource) *Transport {
	if tokens == nil {
		tokens = StaticToken("")
	}
	return &Transport{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Tokens:     tokens,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Logger:     hclog.NewNullLogger(),
	}
}

func (t *Transport) buildURL(path string, query map[string]string) (string, error) {
	u, err := url.Parse(t.BaseURL + path)
	if err != nil {
		return "", fmt.Errorf("invalid url %s: %w", path, err)
	}
	q := u.Query()
	for k, v := range query {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (t *Transport) do(ctx context.Context, method, path string, query map[string]string, body io.Reader, contentType string) (*Response, error) {
	fullURL, err := t.buildURL(path, query)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := t.Tokens.Token(); token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	started := time.Now()
	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return nil, &APIError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Err: err}
	}

	t.Logger.Debug("api request", "method", method, "path", path,
		"status", resp.StatusCode, "duration", time.Since(started))

	if resp.StatusCode >= 300 {
		return nil, newAPIError(method, path, resp.StatusCode, data)
	}

	return &Response{StatusCode: resp.StatusCode, Data: data}, nil
}

func (t *Transport) sendJSON(ctx context.Context, method, path string, data any, query map[string]string) (*Response, error) {
	var body io.Reader
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	return t.do(ctx, method, path, query, body, "application/json")
}

func (t *Transport) Get(ctx context.Context, path string, query map[string]string) (*Response, error) {
	return t.do(ctx, http.MethodGet, path, query, nil, "")
}

// Post sends a POST request with JSON body
func (t *Transport) Post(ctx context.Context, path string, data any, query map[string]string) (*Response, error) {
	return t.sendJSON(ctx, http.MethodPost, path, data, query)
}

func (t *Transport) Put(ctx context.Context, path string, data any) (*Response, error) {
	return t.sendJSON(ctx, http.MethodPut, path, data, nil)
}

func (t *Transport) Patch(ctx context.Context, path string, data any) (*Response, error) {
	return t.sendJSON(ctx, http.MethodPatch, path, data, nil)
}

func (t *Transport) Delete(ctx context.Context, path string) (*Response, error) {
	return t.do(ctx, http.MethodDelete, path, nil, nil, "")
}

// Form is a multipart/form-data body. Fields keep their insertion order.
type Form struct {
	fields [][2]string
	files  []formFile
}

type formFile struct {
	field   string
	name    string
	content []byte
}

func (f *Form) Set(name, value string) *Form {
	f.fields = append(f.fields, [2]string{name, value})
	return f
}

// SetOptional skips empty values.
func (f *Form) SetOptional(name, value string) *Form {
	if value == "" {
		return f
	}
	return f.Set(name, value)
}

func (f *Form) File(field, filename string, content []byte) *Form {
	f.files = append(f.files, formFile{field: field, name: filename, content: content})
	return f
}

// Value returns the first value stored for name.
func (f *Form) Value(name string) (string, bool) {
	for _, kv := range f.fields {
		if kv[0] == name {
			return kv[1], true
		}
	}
	return "", false
}

func (f *Form) encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, kv := range f.fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", err
		}
	}
	for _, file := range f.files {
		part, err := w.CreateFormFile(file.field, file.name)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(file.content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

// SendForm sends a multipart form with the given method.
func (t *Transport) SendForm(ctx context.Context, method, path string, form *Form) (*Response, error) {
	body, contentType, err := form.encode()
	if err != nil {
		return nil, fmt.Errorf("encode form %s %s: %w", method, path, err)
	}
	return t.do(ctx, method, path, nil, body, contentType)
}
