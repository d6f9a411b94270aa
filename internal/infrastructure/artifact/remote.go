package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"strings"
	"time"

	"browser-mcp/internal/application/port/output"
	"browser-mcp/internal/domain/entity"
	"browser-mcp/internal/infrastructure/metrics"
)

var _ output.ArtifactStore = (*RemoteStore)(nil)

// RemoteStore talks to an upload server (see the image-server command).
// With an empty base URL every call fails with entity.ErrStoreUnconfigured
// before touching the network.
type RemoteStore struct {
	baseURL string
	token   string
	client  *http.Client
}

type RemoteOption func(*RemoteStore)

func WithHTTPClient(c *http.Client) RemoteOption {
	return func(s *RemoteStore) { s.client = c }
}

func NewRemoteStore(baseURL, token string, opts ...RemoteOption) *RemoteStore {
	s := &RemoteStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RemoteStore) Configured() bool { return s.baseURL != "" }

type uploadResponse struct {
	URL string `json:"url"`
}

func (s *RemoteStore) Store(ctx context.Context, data []byte, suggestedName string) (*entity.Artifact, error) {
	a, err := s.upload(ctx, data, suggestedName)
	metrics.ObserveArtifact("remote", "store", err)
	return a, err
}

func (s *RemoteStore) upload(ctx context.Context, data []byte, suggestedName string) (*entity.Artifact, error) {
	if !s.Configured() {
		return nil, entity.ErrStoreUnconfigured
	}

	filename := SanitizeName(suggestedName)
	if filename == "" {
		filename = "screenshot"
	}
	filename += ".png"

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename))
	h.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, &entity.StoreError{Op: "upload", Err: err}
	}
	if _, err := part.Write(data); err != nil {
		return nil, &entity.StoreError{Op: "upload", Err: err}
	}
	if err := mw.Close(); err != nil {
		return nil, &entity.StoreError{Op: "upload", Err: err}
	}

	req, err := s.newRequest(ctx, http.MethodPost, "/upload", &body)
	if err != nil {
		return nil, &entity.StoreError{Op: "upload", Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &entity.StoreError{Op: "upload", Err: fmt.Errorf("%w: %v", entity.ErrStoreUnavailable, err)}
	}
	defer resp.Body.Close()

	if err := statusError("upload", resp, false); err != nil {
		return nil, err
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &entity.StoreError{Op: "upload", Err: fmt.Errorf("decode response: %w", err)}
	}
	if out.URL == "" {
		return nil, &entity.StoreError{Op: "upload", Err: fmt.Errorf("%w: response has no url", entity.ErrStoreUnavailable)}
	}

	return &entity.Artifact{Name: nameFromURL(out.URL), URL: out.URL, MIMEType: "image/png"}, nil
}

func (s *RemoteStore) Delete(ctx context.Context, name string) error {
	err := s.do(ctx, "delete", "/uploads/"+url.PathEscape(name))
	metrics.ObserveArtifact("remote", "delete", err)
	return err
}

func (s *RemoteStore) Clear(ctx context.Context) error {
	err := s.do(ctx, "clear", "/uploads")
	metrics.ObserveArtifact("remote", "clear", err)
	return err
}

func (s *RemoteStore) do(ctx context.Context, op, p string) error {
	if !s.Configured() {
		return entity.ErrStoreUnconfigured
	}
	req, err := s.newRequest(ctx, http.MethodDelete, p, nil)
	if err != nil {
		return &entity.StoreError{Op: op, Err: err}
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return &entity.StoreError{Op: op, Err: fmt.Errorf("%w: %v", entity.ErrStoreUnavailable, err)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return statusError(op, resp, op == "delete")
}

func (s *RemoteStore) newRequest(ctx context.Context, method, p string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+p, body)
	if err != nil {
		return nil, err
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	return req, nil
}

// statusError maps non-2xx responses to a StoreError carrying the status
// text. A 404 maps to entity.ErrNotFound when notFound is set.
func statusError(op string, resp *http.Response, notFound bool) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	cause := entity.ErrStoreUnavailable
	if notFound && resp.StatusCode == http.StatusNotFound {
		cause = entity.ErrNotFound
	}
	return &entity.StoreError{Op: op, Status: http.StatusText(resp.StatusCode), Err: cause}
}

func nameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return path.Base(raw)
	}
	return path.Base(u.Path)
}
