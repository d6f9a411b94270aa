package artifact

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"browser-mcp/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteStore_UnconfiguredFailsWithoutNetwork(t *testing.T) {
	s := NewRemoteStore("", "tok")
	ctx := context.Background()

	_, err := s.Store(ctx, []byte("x"), "a")
	assert.ErrorIs(t, err, entity.ErrStoreUnconfigured)
	assert.ErrorIs(t, s.Delete(ctx, "a.png"), entity.ErrStoreUnconfigured)
	assert.ErrorIs(t, s.Clear(ctx), entity.ErrStoreUnconfigured)
	assert.Equal(t, "IMAGE_SERVER environment variable not set", s.Clear(ctx).Error())
}

func TestRemoteStore_UploadSendsMultipartWithBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upload", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		f, hdr, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, []byte("pngdata"), data)
		assert.Equal(t, "image/png", hdr.Header.Get("Content-Type"))

		_ = json.NewEncoder(w).Encode(map[string]string{"url": "http://img.example/uploads/1700000000000-123456789.png"})
	}))
	defer srv.Close()

	s := NewRemoteStore(srv.URL+"/", "secret")
	a, err := s.Store(context.Background(), []byte("pngdata"), "shot")
	require.NoError(t, err)

	assert.Equal(t, "http://img.example/uploads/1700000000000-123456789.png", a.URL)
	assert.Equal(t, "1700000000000-123456789.png", a.Name)
}

func TestRemoteStore_NoTokenNoHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	assert.NoError(t, NewRemoteStore(srv.URL, "").Clear(context.Background()))
}

func TestRemoteStore_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		call    func(s *RemoteStore) error
		want    error
		message string
	}{
		{
			name:    "delete 404 is not found",
			status:  http.StatusNotFound,
			call:    func(s *RemoteStore) error { return s.Delete(context.Background(), "gone.png") },
			want:    entity.ErrNotFound,
			message: "failed to delete image: Not Found",
		},
		{
			name:    "delete 403 is unavailable",
			status:  http.StatusForbidden,
			call:    func(s *RemoteStore) error { return s.Delete(context.Background(), "x.png") },
			want:    entity.ErrStoreUnavailable,
			message: "failed to delete image: Forbidden",
		},
		{
			name:    "clear 500",
			status:  http.StatusInternalServerError,
			call:    func(s *RemoteStore) error { return s.Clear(context.Background()) },
			want:    entity.ErrStoreUnavailable,
			message: "failed to clear image: Internal Server Error",
		},
		{
			name:   "upload 401",
			status: http.StatusUnauthorized,
			call: func(s *RemoteStore) error {
				_, err := s.Store(context.Background(), []byte("x"), "a")
				return err
			},
			want:    entity.ErrStoreUnavailable,
			message: "failed to upload image: Unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			err := tt.call(NewRemoteStore(srv.URL, ""))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestRemoteStore_DeleteEscapesName(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/uploads/a%20b.png", r.URL.EscapedPath())
	}))
	defer srv.Close()

	require.NoError(t, NewRemoteStore(srv.URL, "").Delete(context.Background(), "a b.png"))
	assert.EqualValues(t, 1, hits.Load())
}
