package http

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "assetcli/internal/errors"
	"assetcli/internal/pipeline"
)

// xlsxContentType is the media type of the cleaned workbook response.
const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportCleaner is the pipeline surface the handler depends on.
type ReportCleaner interface {
	Process(ctx context.Context, content []byte, asOf time.Time) (*pipeline.Result, error)
}

// CleanHandler handles report upload and cleanup requests
type CleanHandler struct {
	cleaner        ReportCleaner
	logger         *slog.Logger
	maxUploadBytes int64
	clock          func() time.Time
}

// NewCleanHandler creates a new clean handler. clock supplies the "current
// date" for derived fields; pass nil for time.Now.
func NewCleanHandler(cleaner ReportCleaner, logger *slog.Logger, maxUploadBytes int64, clock func() time.Time) *CleanHandler {
	if clock == nil {
		clock = time.Now
	}
	return &CleanHandler{
		cleaner:        cleaner,
		logger:         logger.With(slog.String("component", "clean_handler")),
		maxUploadBytes: maxUploadBytes,
		clock:          clock,
	}
}

// Routes returns the cleanup routes
func (h *CleanHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/clean", h.Clean)
	return r
}

// Clean accepts a multipart .xlsx upload under the "file" field and responds
// with the cleaned workbook as an attachment. Schema and empty-result
// failures map to 422, unreadable uploads to 400. Warnings never block a
// successful download; their count travels in X-Cleanup-Warnings.
func (h *CleanHandler) Clean(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		h.renderError(w, r, apierrors.ErrInvalidUpload)
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		h.renderError(w, r, apierrors.New(http.StatusBadRequest, "INVALID_UPLOAD", "Please upload a .xlsx file."))
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		h.renderError(w, r, apierrors.New(http.StatusBadRequest, "INVALID_UPLOAD", "The upload could not be read."))
		return
	}
	if len(content) == 0 {
		h.renderError(w, r, apierrors.New(http.StatusBadRequest, "INVALID_UPLOAD", "Uploaded file is empty."))
		return
	}

	start := time.Now()
	result, err := h.cleaner.Process(ctx, content, h.clock())
	observeCleanup(time.Since(start), err)
	if err != nil {
		h.logger.WarnContext(ctx, "cleanup failed",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()))
		h.renderError(w, r, apierrors.FromError(err))
		return
	}

	for _, warning := range result.Warnings {
		h.logger.InfoContext(ctx, "cleanup warning",
			slog.String("filename", header.Filename),
			slog.Int("row", warning.Row),
			slog.String("field", warning.Field),
			slog.String("message", warning.Message))
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=cleaned_%s", filepath.Base(header.Filename)))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Output)))
	w.Header().Set("X-Cleanup-Warnings", strconv.Itoa(len(result.Warnings)))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Output)
}

func (h *CleanHandler) renderError(w http.ResponseWriter, r *http.Request, apiErr *apierrors.APIError) {
	render.Render(w, r, apierrors.NewErrorResponse(apiErr))
}
