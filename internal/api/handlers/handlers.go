package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/aggregate"
	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/api/middleware"
	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/archive"
	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/domain"
	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/normalize"
	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/query"
	"github.com/Medini-eng/AICW-01-Financial-Analysis-LLM/internal/store"
)

// DatasetStore is the slice of the store the handlers need.
type DatasetStore interface {
	Save(ds *domain.Dataset) error
	Load() (*domain.Dataset, error)
}

// Asker answers a question against a dataset.
type Asker interface {
	Ask(ctx context.Context, question string, ds *domain.Dataset) (*query.Answer, error)
}

// UploadHandler handles POST /api/upload.
type UploadHandler struct {
	store       DatasetStore
	archiver    archive.Archiver
	maxBytes    int64
	rejectRatio *float64
	log         zerolog.Logger
}

func NewUploadHandler(store DatasetStore, archiver archive.Archiver, maxBytes int64, rejectRatio *float64, log zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		store:       store,
		archiver:    archiver,
		maxBytes:    maxBytes,
		rejectRatio: rejectRatio,
		log:         log,
	}
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "PayloadTooLarge", "uploaded file exceeds the size limit")
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, "BadRequest", "expected multipart form with a 'file' field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "PayloadTooLarge", "uploaded file exceeds the size limit")
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, "BadRequest", "failed to read uploaded file")
		return
	}

	// Audit copy of the raw bytes, kept even when normalization later
	// rejects the file. Archive failure must not lose the upload.
	if path, aerr := h.archiver.Archive(header.Filename, data); aerr != nil {
		h.log.Error().Err(aerr).Str("filename", header.Filename).Msg("Failed to archive upload")
	} else {
		h.log.Info().Str("filename", header.Filename).Str("archived_as", path).Msg("Upload archived")
	}

	ds, err := normalize.Normalize(data, header.Filename, normalize.Options{MaxRejectRatio: h.rejectRatio})
	if err != nil {
		status, code := mapNormalizeError(err)
		h.log.Warn().Err(err).Str("filename", header.Filename).Msg("Upload rejected")
		middleware.WriteError(w, status, code, err.Error())
		return
	}

	if err := h.store.Save(ds); err != nil {
		h.log.Error().Err(err).Msg("Failed to persist dataset")
		middleware.WriteError(w, http.StatusInternalServerError, "Internal", "failed to persist dataset")
		return
	}

	h.log.Info().
		Str("dataset_id", ds.Provenance.DatasetID).
		Str("filename", header.Filename).
		Int("rows_accepted", ds.Provenance.RowsAccepted).
		Int("rows_rejected", ds.Provenance.RowsRejected).
		Msg("Dataset replaced")

	res := aggregate.Aggregate(ds, aggregate.Spec{})
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "File uploaded & processed successfully!",
		"dataset_id":    ds.Provenance.DatasetID,
		"filename":      ds.Provenance.SourceFilename,
		"rows_parsed":   ds.Provenance.RowsParsed,
		"rows_accepted": ds.Provenance.RowsAccepted,
		"rows_rejected": ds.Provenance.RowsRejected,
		"summary":       presentResult(ds, res),
	})
}

func mapNormalizeError(err error) (int, string) {
	switch {
	case errors.Is(err, normalize.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, "UnsupportedFormat"
	case errors.Is(err, normalize.ErrParse):
		return http.StatusBadRequest, "ParseError"
	case errors.Is(err, normalize.ErrSchema):
		return http.StatusUnprocessableEntity, "SchemaError"
	case errors.Is(err, normalize.ErrTooManyInvalidRows):
		return http.StatusUnprocessableEntity, "TooManyInvalidRows"
	default:
		return http.StatusInternalServerError, "Internal"
	}
}

// QueryHandler handles GET and POST /api/query.
type QueryHandler struct {
	store DatasetStore
	asker Asker
	log   zerolog.Logger
}

func NewQueryHandler(store DatasetStore, asker Asker, log zerolog.Logger) *QueryHandler {
	return &QueryHandler{store: store, asker: asker, log: log}
}

func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	question := h.question(r)
	if strings.TrimSpace(question) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "EmptyQuestion", "question must not be empty")
		return
	}

	ds, err := h.store.Load()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "NoDataUploaded", "no transactions uploaded yet, upload a file first")
			return
		}
		h.log.Error().Err(err).Msg("Failed to load dataset")
		middleware.WriteError(w, http.StatusInternalServerError, "Internal", "failed to load stored transactions")
		return
	}

	answer, err := h.asker.Ask(r.Context(), question, ds)
	if err != nil {
		if errors.Is(err, query.ErrNoData) {
			middleware.WriteError(w, http.StatusNotFound, "NoDataUploaded", "no transactions uploaded yet, upload a file first")
			return
		}
		if ue, ok := query.AsUpstream(err); ok {
			h.log.Error().Err(err).Str("kind", string(ue.Kind)).Msg("Completion service failed")
			middleware.WriteError(w, http.StatusBadGateway, "UpstreamError", err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Query failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Internal", "query failed")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, answer)
}

// question accepts the POST body field or the query parameter, so both
// the dashboard and curl one-liners work.
func (h *QueryHandler) question(r *http.Request) string {
	if r.Method == http.MethodPost {
		var req struct {
			Question string `json:"question"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.Question != "" {
			return req.Question
		}
		return ""
	}
	return r.URL.Query().Get("question")
}

// SummaryHandler handles GET /api/summary with optional date and
// category filters.
type SummaryHandler struct {
	store DatasetStore
	log   zerolog.Logger
}

func NewSummaryHandler(store DatasetStore, log zerolog.Logger) *SummaryHandler {
	return &SummaryHandler{store: store, log: log}
}

func (h *SummaryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var spec aggregate.Spec
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		d, err := civil.ParseDate(v)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "BadRequest", "invalid 'from' date, want YYYY-MM-DD")
			return
		}
		spec.From = d
	}
	if v := q.Get("to"); v != "" {
		d, err := civil.ParseDate(v)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "BadRequest", "invalid 'to' date, want YYYY-MM-DD")
			return
		}
		spec.To = d
	}
	spec.Category = q.Get("category")

	ds, err := h.store.Load()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "NoDataUploaded", "no transactions uploaded yet, upload a file first")
			return
		}
		h.log.Error().Err(err).Msg("Failed to load dataset")
		middleware.WriteError(w, http.StatusInternalServerError, "Internal", "failed to load stored transactions")
		return
	}

	res := aggregate.Aggregate(ds, spec)
	middleware.WriteJSON(w, http.StatusOK, presentResult(ds, res))
}

// DiagnosticsHandler handles GET /api/diagnostics. It reports whether a
// key is configured but never the key itself.
type DiagnosticsHandler struct {
	model         string
	apiKeyPresent bool
}

func NewDiagnosticsHandler(model string, apiKeyPresent bool) *DiagnosticsHandler {
	return &DiagnosticsHandler{model: model, apiKeyPresent: apiKeyPresent}
}

func (h *DiagnosticsHandler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"model":           h.model,
		"api_key_present": h.apiKeyPresent,
	})
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func presentResult(ds *domain.Dataset, res aggregate.Result) map[string]interface{} {
	byCategory := make(map[string]string, len(res.ByCategory))
	for _, cat := range res.SortedCategories() {
		byCategory[cat] = aggregate.Present(res.ByCategory[cat])
	}
	byMonth := make(map[string]string, len(res.ByMonth))
	for _, m := range res.SortedMonths() {
		byMonth[m] = aggregate.Present(res.ByMonth[m])
	}
	out := map[string]interface{}{
		"count":       res.Count,
		"net_total":   aggregate.Present(res.NetTotal),
		"income":      aggregate.Present(res.Income),
		"expense":     aggregate.Present(res.Expense),
		"by_category": byCategory,
		"by_month":    byMonth,
	}
	if from, to, ok := ds.DateRange(); ok {
		out["date_from"] = from.String()
		out["date_to"] = to.String()
	}
	return out
}
