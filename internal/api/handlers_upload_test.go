// handlers_upload_test.go - Tests for the upload handler
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/ingest"
	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/models"
	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSummarizer struct {
	mock.Mock
}

func (m *mockSummarizer) Summarize(ctx context.Context, meta models.FileMetadata, sample models.ContentSample) (json.RawMessage, error) {
	args := m.Called(ctx, meta, sample)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

var fixedNow = time.Date(2024, 5, 17, 17, 3, 9, 0, time.UTC)

func newTestPipeline() *ingest.Pipeline {
	return ingest.New(ingest.Config{
		MaxFileSize: 1 << 20,
		Now:         func() time.Time { return fixedNow },
	})
}

func newUploadRequest(t *testing.T, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload-file/", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

func requireAPIError(t *testing.T, err error, status int, code string) *APIError {
	t.Helper()
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, status, apiErr.Status)
	assert.Equal(t, code, apiErr.Code)
	return apiErr
}

func TestUploadHandler_Success(t *testing.T) {
	store := testutil.NewMockStore()
	summ := new(mockSummarizer)
	summ.On("Summarize", mock.Anything,
		mock.MatchedBy(func(m models.FileMetadata) bool {
			return m.Name == "dados.csv" && m.Format == models.FormatCSV && m.SizeBytes == 8
		}),
		models.ContentSample(`[{"a":1,"b":"x"}]`),
	).Return(json.RawMessage(`{"resumo":"ok"}`), nil).Once()

	h := NewUploadHandler(newTestPipeline(), summ, store, nil).(*UploadHandlerImpl)
	h.newID = func() string { return "fixed-id" }

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(newUploadRequest(t, "dados.csv", "text/csv", []byte("a,b\n1,x\n")), rec)

	require.NoError(t, h.HandleUploadFile(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{
		"id": "fixed-id",
		"metadados": {
			"nomeDoArquivo": "dados.csv",
			"formatoDoArquivo": "csv",
			"tamanhoDoArquivo": 8,
			"dataDeCriacao": "2024-05-17T17:03:09Z"
		},
		"resumoGemini": {"resumo": "ok"}
	}`, rec.Body.String())

	saved, err := store.Get(context.Background(), "fixed-id")
	require.NoError(t, err)
	assert.Equal(t, models.ContentSample(`[{"a":1,"b":"x"}]`), saved.Sample)
	summ.AssertExpectations(t)
}

func TestUploadHandler_CharsetParameterAccepted(t *testing.T) {
	store := testutil.NewMockStore()
	summ := new(mockSummarizer)
	summ.On("Summarize", mock.Anything, mock.Anything, models.ContentSample("hello")).
		Return(json.RawMessage(`{}`), nil)

	h := NewUploadHandler(newTestPipeline(), summ, store, nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(newUploadRequest(t, "notes.txt", "text/plain; charset=utf-8", []byte("hello")), rec)

	require.NoError(t, h.HandleUploadFile(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, store.Len())
}

func TestUploadHandler_IngestFailures(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		data        []byte
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "unsupported content type",
			filename:    "photo.png",
			contentType: "image/png",
			data:        []byte{0x89, 'P', 'N', 'G'},
			wantStatus:  http.StatusUnsupportedMediaType,
			wantCode:    "UNSUPPORTED_FORMAT",
			wantMessage: "Error classifying file:",
		},
		{
			name:        "allowed type with unknown extension",
			filename:    "report.pdf",
			contentType: "text/plain",
			data:        []byte("text"),
			wantStatus:  http.StatusUnsupportedMediaType,
			wantCode:    "UNSUPPORTED_FORMAT",
			wantMessage: "Error sampling content:",
		},
		{
			name:        "malformed json",
			filename:    "bad.json",
			contentType: "application/json",
			data:        []byte(`{"a":`),
			wantStatus:  http.StatusUnprocessableEntity,
			wantCode:    "MALFORMED_INPUT",
			wantMessage: "Error sampling content:",
		},
		{
			name:        "invalid utf-8 text",
			filename:    "bin.txt",
			contentType: "text/plain",
			data:        []byte{0xff, 0xfe, 0xfd},
			wantStatus:  http.StatusUnprocessableEntity,
			wantCode:    "DECODE_ERROR",
			wantMessage: "Error sampling content:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewMockStore()
			summ := new(mockSummarizer)
			h := NewUploadHandler(newTestPipeline(), summ, store, nil)

			rec := httptest.NewRecorder()
			c := echo.New().NewContext(newUploadRequest(t, tt.filename, tt.contentType, tt.data), rec)

			apiErr := requireAPIError(t, h.HandleUploadFile(c), tt.wantStatus, tt.wantCode)
			assert.Contains(t, apiErr.Message, tt.wantMessage)
			summ.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything, mock.Anything)
			assert.Zero(t, store.Len())
		})
	}
}

func TestUploadHandler_FileTooLarge(t *testing.T) {
	store := testutil.NewMockStore()
	summ := new(mockSummarizer)
	pipeline := ingest.New(ingest.Config{MaxFileSize: 16})
	h := NewUploadHandler(pipeline, summ, store, nil)

	c := echo.New().NewContext(newUploadRequest(t, "big.txt", "text/plain", bytes.Repeat([]byte("a"), 17)), httptest.NewRecorder())

	apiErr := requireAPIError(t, h.HandleUploadFile(c), http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE")
	assert.Contains(t, apiErr.Message, "Error reading file:")
	summ.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything, mock.Anything)
	assert.Zero(t, store.Len())
}

func TestRoutes_BodyLimitMatchesConfigUnits(t *testing.T) {
	e := echo.New()
	SetupMiddleware(e, MiddlewareOptions{BodyLimitBytes: 1000})
	e.POST("/echo", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader(make([]byte, 1000))))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader(make([]byte, 1001))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"FILE_TOO_LARGE"`)
}

func TestUploadHandler_NoFile(t *testing.T) {
	h := NewUploadHandler(newTestPipeline(), new(mockSummarizer), testutil.NewMockStore(), nil)

	req := httptest.NewRequest(http.MethodPost, "/upload-file/", bytes.NewBufferString("{}"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := echo.New().NewContext(req, httptest.NewRecorder())

	requireAPIError(t, h.HandleUploadFile(c), http.StatusBadRequest, "BAD_REQUEST")
}

func TestUploadHandler_SummarizerFailure(t *testing.T) {
	store := testutil.NewMockStore()
	summ := new(mockSummarizer)
	summ.On("Summarize", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("quota exceeded"))

	h := NewUploadHandler(newTestPipeline(), summ, store, nil)
	c := echo.New().NewContext(newUploadRequest(t, "a.json", "application/json", []byte(`[1,2]`)), httptest.NewRecorder())

	apiErr := requireAPIError(t, h.HandleUploadFile(c), http.StatusBadGateway, "SUMMARIZER_ERROR")
	assert.Contains(t, apiErr.Details, "quota exceeded")
	assert.Zero(t, store.Len())
}

func TestUploadHandler_StoreFailure(t *testing.T) {
	store := testutil.NewMockStore()
	store.SaveErr = errors.New("disk full")
	summ := new(mockSummarizer)
	summ.On("Summarize", mock.Anything, mock.Anything, mock.Anything).
		Return(json.RawMessage(`{"ok":true}`), nil)

	h := NewUploadHandler(newTestPipeline(), summ, store, nil)
	c := echo.New().NewContext(newUploadRequest(t, "a.xml", "text/xml", []byte(`<a/>`)), httptest.NewRecorder())

	requireAPIError(t, h.HandleUploadFile(c), http.StatusInternalServerError, "INTERNAL_ERROR")
}

func TestRoutes_UploadErrorRendering(t *testing.T) {
	summ := new(mockSummarizer)
	e := echo.New()
	SetupMiddleware(e, MiddlewareOptions{BodyLimitBytes: 1 << 20})
	RegisterRoutes(e, NewHandlers(&Dependencies{
		Pipeline:   newTestPipeline(),
		Summarizer: summ,
		Store:      testutil.NewMockStore(),
	}))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, newUploadRequest(t, "photo.png", "image/png", []byte("x")))

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "UNSUPPORTED_FORMAT", body["code"])
	assert.Contains(t, body["message"], "Error classifying file:")
}
