// Package handler exposes report analysis and export downloads over HTTP.
package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/FACorreiaa/mtr03-counter/internal/domain/production"
	"github.com/FACorreiaa/mtr03-counter/internal/domain/production/export"
	"github.com/FACorreiaa/mtr03-counter/internal/domain/production/service"
	"github.com/FACorreiaa/mtr03-counter/pkg/metrics"
	"github.com/FACorreiaa/mtr03-counter/pkg/middleware"
	"github.com/FACorreiaa/mtr03-counter/pkg/quantity"
	"github.com/FACorreiaa/mtr03-counter/pkg/storage"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	csvContentType  = "text/csv; charset=utf-8"

	defaultMaxUpload = 32 << 20
)

// Analyzer runs an analysis over an uploaded report
type Analyzer interface {
	Analyze(ctx context.Context, pdfData []byte, in service.AnalyzeInput, cb service.Callbacks) (*service.Report, error)
}

// ReportHandler handles the report HTTP endpoints
type ReportHandler struct {
	analyzer    Analyzer
	store       storage.Storage // Optional: nil disables exports
	metrics     *metrics.Metrics
	maxUpload   int64
	defaultYear int
	logger      *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(analyzer Analyzer, store storage.Storage, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		analyzer:  analyzer,
		store:     store,
		maxUpload: defaultMaxUpload,
		logger:    logger,
	}
}

// WithMetrics counts stored exports
func (h *ReportHandler) WithMetrics(m *metrics.Metrics) *ReportHandler {
	h.metrics = m
	return h
}

// WithMaxUploadBytes limits the multipart request size
func (h *ReportHandler) WithMaxUploadBytes(n int64) *ReportHandler {
	if n > 0 {
		h.maxUpload = n
	}
	return h
}

// WithDefaultYear sets the year used when the form omits it
func (h *ReportHandler) WithDefaultYear(year int) *ReportHandler {
	h.defaultYear = year
	return h
}

// RegisterRoutes mounts the handler on r
func (h *ReportHandler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/reports/analyze", h.Analyze).Methods(http.MethodPost)
	api.HandleFunc("/exports/{id}", h.DownloadExport).Methods(http.MethodGet)
}

// ResultResponse is one interval in the analysis response. Counts are shown
// rounded with dot thousands separators; the raw fields keep full precision.
type ResultResponse struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	Total    string `json:"total"`
	Good     string `json:"good"`
	TotalRaw string `json:"total_raw"`
	GoodRaw  string `json:"good_raw"`
}

// ExportLink points at a stored export file
type ExportLink struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// AnalyzeResponse is the body of a successful analysis
type AnalyzeResponse struct {
	Pages        int                   `json:"pages"`
	SkippedPages int                   `json:"skipped_pages"`
	Lines        int                   `json:"lines"`
	Records      int                   `json:"records"`
	Intervals    int                   `json:"intervals"`
	Total        string                `json:"total"`
	Good         string                `json:"good"`
	Results      []ResultResponse      `json:"results"`
	Exports      map[string]ExportLink `json:"exports,omitempty"`
}

// Analyze handles POST /api/v1/reports/analyze
func (h *ReportHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	pdfData, err := readUpload(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	in, err := h.parseInput(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.analyzer.Analyze(r.Context(), pdfData, in, service.Callbacks{})
	switch {
	case errors.Is(err, service.ErrNoData):
		middleware.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":   "no data",
			"message": service.NoDataMessage,
		})
		return
	case errors.Is(err, service.ErrInvalidInput):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("failed to analyze report", slog.Any("error", err))
		middleware.WriteError(w, http.StatusInternalServerError, "failed to analyze report")
		return
	}

	resp := newAnalyzeResponse(report)
	if h.store != nil {
		exports, err := h.storeExports(r.Context(), report.Results)
		if err != nil {
			h.logger.Error("failed to store exports", slog.Any("error", err))
			middleware.WriteError(w, http.StatusInternalServerError, "failed to store exports")
			return
		}
		resp.Exports = exports
	}

	middleware.WriteJSON(w, http.StatusOK, resp)
}

// DownloadExport handles GET /api/v1/exports/{id}
func (h *ReportHandler) DownloadExport(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		middleware.WriteError(w, http.StatusNotFound, "exports are disabled")
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid export id")
		return
	}

	rc, info, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "export not found")
			return
		}
		h.logger.Error("failed to read export", slog.String("export_id", id.String()), slog.Any("error", err))
		middleware.WriteError(w, http.StatusInternalServerError, "failed to read export")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", info.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": info.Name}))
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("export download interrupted", slog.String("export_id", id.String()), slog.Any("error", err))
	}
}

func readUpload(r *http.Request) ([]byte, error) {
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, errors.New("missing file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("empty file")
	}
	return data, nil
}

// parseInput reads the form fields. Range checks are left to the service.
func (h *ReportHandler) parseInput(r *http.Request) (service.AnalyzeInput, error) {
	in := service.AnalyzeInput{
		Mode: service.Mode(strings.ToLower(strings.TrimSpace(r.FormValue("mode")))),
		Year: h.defaultYear,
	}

	var err error
	if v := r.FormValue("year"); v != "" {
		if in.Year, err = strconv.Atoi(strings.TrimSpace(v)); err != nil {
			return in, fmt.Errorf("invalid year %q", v)
		}
	}
	if in.Start, err = production.ParseDate(r.FormValue("start")); err != nil {
		return in, fmt.Errorf("invalid start date %q", r.FormValue("start"))
	}

	switch in.Mode {
	case service.ModeManual:
		if in.End, err = production.ParseDate(r.FormValue("end")); err != nil {
			return in, fmt.Errorf("invalid end date %q", r.FormValue("end"))
		}
	case service.ModeAutomatic:
		if in.Count, err = strconv.Atoi(strings.TrimSpace(r.FormValue("count"))); err != nil {
			return in, fmt.Errorf("invalid count %q", r.FormValue("count"))
		}
		if in.Days, err = strconv.Atoi(strings.TrimSpace(r.FormValue("days"))); err != nil {
			return in, fmt.Errorf("invalid days %q", r.FormValue("days"))
		}
	}
	return in, nil
}

func newAnalyzeResponse(report *service.Report) *AnalyzeResponse {
	results := make([]ResultResponse, len(report.Results))
	for i, res := range report.Results {
		results[i] = ResultResponse{
			Start:    production.FormatDate(res.Start),
			End:      production.FormatDate(res.End),
			Total:    quantity.Format(res.Total),
			Good:     quantity.Format(res.Good),
			TotalRaw: res.Total.String(),
			GoodRaw:  res.Good.String(),
		}
	}

	return &AnalyzeResponse{
		Pages:        report.Pages,
		SkippedPages: report.SkippedPages,
		Lines:        report.Lines,
		Records:      report.Records,
		Intervals:    len(report.Results),
		Total:        quantity.Format(report.Total),
		Good:         quantity.Format(report.Good),
		Results:      results,
	}
}

func (h *ReportHandler) storeExports(ctx context.Context, results []production.Result) (map[string]ExportLink, error) {
	xlsx, err := export.WriteExcel(results)
	if err != nil {
		return nil, err
	}
	var csvBuf bytes.Buffer
	if err := export.WriteCSV(&csvBuf, results); err != nil {
		return nil, err
	}

	files := []struct {
		format, name, contentType string
		data                      []byte
	}{
		{"xlsx", export.DefaultFileName, xlsxContentType, xlsx},
		{"csv", export.DefaultCSVFileName, csvContentType, csvBuf.Bytes()},
	}

	links := make(map[string]ExportLink, len(files))
	for _, f := range files {
		info, err := h.store.Put(ctx, f.name, f.contentType, bytes.NewReader(f.data))
		if err != nil {
			return nil, fmt.Errorf("failed to store %s export: %w", f.format, err)
		}
		h.metrics.ExportStored()
		links[f.format] = ExportLink{
			ID:  info.ID.String(),
			URL: "/api/v1/exports/" + info.ID.String(),
		}
	}
	return links, nil
}
