// handlers_files_test.go - Tests for stored record handlers
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/models"
	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func seedStore(t *testing.T, n int) *testutil.MockStore {
	t.Helper()
	store := testutil.NewMockStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		require.NoError(t, store.Save(context.Background(), &models.FileRecord{
			ID: fmt.Sprintf("id-%03d", i),
			Metadata: models.FileMetadata{
				Name:      fmt.Sprintf("file%d.csv", i),
				Format:    models.FormatCSV,
				SizeBytes: int64(10 + i),
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			},
			Sample:  "[]",
			Summary: json.RawMessage(`{"linhas":0}`),
		}))
	}
	return store
}

func newFileContext(method, target string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(params) == 2 {
		c.SetParamNames(params[0])
		c.SetParamValues(params[1])
	}
	return c, rec
}

func TestFileHandler_HandleGetRecentFiles(t *testing.T) {
	tests := []struct {
		name      string
		seeded    int
		query     string
		wantCount int
		wantFirst string
		wantErr   string
	}{
		{name: "empty storage", seeded: 0, wantCount: 0},
		{name: "default limit", seeded: 30, wantCount: 20, wantFirst: "id-029"},
		{name: "explicit limit", seeded: 5, query: "?limit=2", wantCount: 2, wantFirst: "id-004"},
		{name: "limit capped", seeded: 120, query: "?limit=500", wantCount: 100, wantFirst: "id-119"},
		{name: "invalid limit", seeded: 1, query: "?limit=abc", wantErr: "VALIDATION_ERROR"},
		{name: "zero limit", seeded: 1, query: "?limit=0", wantErr: "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewFileHandler(seedStore(t, tt.seeded), true)
			c, rec := newFileContext(http.MethodGet, "/api/files/recent"+tt.query)

			err := h.HandleGetRecentFiles(c)
			if tt.wantErr != "" {
				requireAPIError(t, err, http.StatusBadRequest, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, rec.Code)

			var records []models.FileRecord
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
			assert.Len(t, records, tt.wantCount)
			if tt.wantFirst != "" {
				assert.Equal(t, tt.wantFirst, records[0].ID)
			}
		})
	}
}

func TestFileHandler_HandleGetFile(t *testing.T) {
	h := NewFileHandler(seedStore(t, 1), true)

	c, rec := newFileContext(http.MethodGet, "/api/files/id-000", "id", "id-000")
	require.NoError(t, h.HandleGetFile(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"id": "id-000",
		"metadados": {
			"nomeDoArquivo": "file0.csv",
			"formatoDoArquivo": "csv",
			"tamanhoDoArquivo": 10,
			"dataDeCriacao": "2024-01-01T00:00:00Z"
		},
		"resumoGemini": {"linhas": 0}
	}`, rec.Body.String())

	c, _ = newFileContext(http.MethodGet, "/api/files/nope", "id", "nope")
	requireAPIError(t, h.HandleGetFile(c), http.StatusNotFound, "NOT_FOUND")
}

func TestFileHandler_HandleGetFileMsgpack(t *testing.T) {
	h := NewFileHandler(seedStore(t, 1), true)

	c, rec := newFileContext(http.MethodGet, "/api/files/id-000", "id", "id-000")
	c.Request().Header.Set(echo.HeaderAccept, "application/msgpack")
	require.NoError(t, h.HandleGetFile(c))
	assert.Equal(t, "application/msgpack", rec.Header().Get(echo.HeaderContentType))

	var decoded map[string]interface{}
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, "id-000", decoded["id"])

	meta, ok := decoded["metadados"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "file0.csv", meta["nomeDoArquivo"])
	assert.Equal(t, "2024-01-01T00:00:00Z", meta["dataDeCriacao"])

	summary, ok := decoded["resumoGemini"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, summary, "linhas")
}

func TestFileHandler_HandleDeleteFile(t *testing.T) {
	store := seedStore(t, 2)
	h := NewFileHandler(store, true)

	c, rec := newFileContext(http.MethodDelete, "/api/files/id-000", "id", "id-000")
	require.NoError(t, h.HandleDeleteFile(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, store.Len())

	c, _ = newFileContext(http.MethodDelete, "/api/files/id-000", "id", "id-000")
	requireAPIError(t, h.HandleDeleteFile(c), http.StatusNotFound, "NOT_FOUND")
}

func TestFileHandler_DeletionDisabled(t *testing.T) {
	store := seedStore(t, 1)
	h := NewFileHandler(store, false)

	c, _ := newFileContext(http.MethodDelete, "/api/files/id-000", "id", "id-000")
	requireAPIError(t, h.HandleDeleteFile(c), http.StatusForbidden, "FORBIDDEN")
	assert.Equal(t, 1, store.Len())
}

func TestHealthHandler(t *testing.T) {
	c, rec := newFileContext(http.MethodGet, "/api/health")
	h := NewHealthHandler("test", newTestPipeline().Formats(), []string{"text/csv"})
	require.NoError(t, h.HandleHealth(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"status": "ok",
		"version": "test",
		"formats": ["csv", "json", "txt", "xml"],
		"contentTypes": ["text/csv"]
	}`, rec.Body.String())
}
