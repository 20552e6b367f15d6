package handler_test

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gstrates/internal/domain"
	"gstrates/internal/handler"
	"gstrates/internal/middleware"
	"gstrates/internal/service"
	"gstrates/mocks"
)

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/admin/documents", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestDocumentHandler_Upload(t *testing.T) {
	ingestSvc := new(mocks.MockIngestService)
	h := handler.NewDocumentHandler(ingestSvc, 1)

	content := []byte("HSN Code,Description,Rate\n1905,Biscuits,9\n")
	ingestSvc.On("Ingest", mock.Anything, service.IngestInput{FileName: "schedule.csv", Data: content}).
		Return(&domain.IngestReport{FileName: "schedule.csv", Pages: 1, ParsedRows: 1, ValidRows: 1, Inserted: 1}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "file", "schedule.csv", content)

	h.Upload(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var report domain.IngestReport
	resp := decodeData(t, w.Body.Bytes(), &report)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, report.Inserted)
	ingestSvc.AssertExpectations(t)
}

func TestDocumentHandler_Upload_RecordsSubject(t *testing.T) {
	ingestSvc := new(mocks.MockIngestService)
	h := handler.NewDocumentHandler(ingestSvc, 1)

	content := []byte("HSN Code,Description,Rate\n1905,Biscuits,9\n")
	ingestSvc.On("Ingest", mock.Anything, service.IngestInput{FileName: "schedule.csv", Data: content, UploadedBy: "ops"}).
		Return(&domain.IngestReport{FileName: "schedule.csv", UploadedBy: "ops", Inserted: 1}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "file", "schedule.csv", content)
	c.Set(middleware.ContextKeySubject, "ops")

	h.Upload(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var report domain.IngestReport
	decodeData(t, w.Body.Bytes(), &report)
	assert.Equal(t, "ops", report.UploadedBy)
	ingestSvc.AssertExpectations(t)
}

func TestDocumentHandler_Upload_MissingFile(t *testing.T) {
	ingestSvc := new(mocks.MockIngestService)
	h := handler.NewDocumentHandler(ingestSvc, 1)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "", "", nil)

	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_FILE")
	ingestSvc.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything)
}

func TestDocumentHandler_Upload_ServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unsupported", domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{"invalid document", domain.ErrInvalidDocument, http.StatusUnprocessableEntity, "INVALID_DOCUMENT"},
		{"upload failed", domain.ErrUploadFailed, http.StatusInternalServerError, "UPLOAD_FAILED"},
		{"conflict", domain.ErrConcurrentUpdate, http.StatusConflict, "CONFLICT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ingestSvc := new(mocks.MockIngestService)
			h := handler.NewDocumentHandler(ingestSvc, 1)
			ingestSvc.On("Ingest", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = multipartRequest(t, "file", "rates.txt", []byte("x"))

			h.Upload(c)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeData(t, w.Body.Bytes(), nil)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"ready", nil, http.StatusOK},
		{"database down", errors.New("connection refused"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewHealthHandler(fakePinger{err: tt.err})

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request, _ = http.NewRequest(http.MethodGet, "/readyz", http.NoBody)

			h.Readiness(c)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}
