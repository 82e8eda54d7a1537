package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stuproj/projectshelf/internal/infra/blob"
	"github.com/stuproj/projectshelf/internal/web"
	"go.uber.org/zap"
)

func setupAssetRouter(t *testing.T) (*gin.Engine, blob.Store) {
	t.Helper()

	store, err := blob.NewLocal(afero.NewMemMapFs(), "/uploads")
	require.NoError(t, err)
	h := NewAssetHandler(web.Static(), store, zap.NewNop())

	r := newTestEngine()
	r.GET("/style.css", h.Stylesheet)
	r.GET("/script.js", h.Script)
	r.GET("/uploads/:filename", h.Upload)
	return r, store
}

func TestAssetHandler_Static(t *testing.T) {
	router, _ := setupAssetRouter(t)

	tests := []struct {
		path        string
		contentType string
		snippet     string
	}{
		{"/style.css", "text/css", ".flash-success"},
		{"/script.js", "javascript", "year_select"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := serve(router, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), tt.contentType)
			assert.Contains(t, w.Body.String(), tt.snippet)
		})
	}
}

func TestAssetHandler_Upload(t *testing.T) {
	router, store := setupAssetRouter(t)
	require.NoError(t, store.Create(context.Background(), "20240309140507_report.pdf", strings.NewReader("%PDF-1.7"), 8, ""))

	tests := []struct {
		name         string
		path         string
		expectedCode int
	}{
		{"stored file", "/uploads/20240309140507_report.pdf", http.StatusOK},
		{"missing file", "/uploads/nothing.pdf", http.StatusNotFound},
		{"dot name", "/uploads/..", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				assert.Equal(t, "%PDF-1.7", w.Body.String())
				assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
			}
		})
	}
}
