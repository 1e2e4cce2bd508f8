package handlers

import (
	"context"
	"net/http"

	"github.com/turtacn/simpol/internal/application/estimation"
	"github.com/turtacn/simpol/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simpol/pkg/errors"
	stypes "github.com/turtacn/simpol/pkg/types/simpol"
)

// DefaultMaxBodyBytes bounds request bodies when no limit is configured.
const DefaultMaxBodyBytes = 4 << 20

// ReportPublisher uploads a batch report.  reporting.Publisher satisfies it.
type ReportPublisher interface {
	Publish(ctx context.Context, runID string, format stypes.ReportFormat, results []stypes.CompoundResult) (string, error)
}

// EstimationHandler serves the estimation endpoints.
type EstimationHandler struct {
	svc       estimation.Service
	publisher ReportPublisher
	logger    logging.Logger
	maxBody   int64
}

// EstimationHandlerOption configures an EstimationHandler.
type EstimationHandlerOption func(*EstimationHandler)

// WithReportPublisher enables ?report=<format> on the batch endpoint.
func WithReportPublisher(p ReportPublisher) EstimationHandlerOption {
	return func(h *EstimationHandler) { h.publisher = p }
}

// WithMaxBodyBytes sets the request body limit.
func WithMaxBodyBytes(n int64) EstimationHandlerOption {
	return func(h *EstimationHandler) {
		if n > 0 {
			h.maxBody = n
		}
	}
}

func NewEstimationHandler(svc estimation.Service, logger logging.Logger, opts ...EstimationHandlerOption) *EstimationHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	h := &EstimationHandler{svc: svc, logger: logger.Named("http.estimation"), maxBody: DefaultMaxBodyBytes}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Estimate handles POST /api/v1/estimate.
func (h *EstimationHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req stypes.EstimateRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	res, err := h.svc.Estimate(r.Context(), &req)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeData(w, r, http.StatusOK, res)
}

// EstimateBatch handles POST /api/v1/estimate/batch.  With ?report=csv|text|json
// and a configured publisher the report is uploaded and its URI returned in
// the summary.  An aborted run answers with the error and the partial results.
func (h *EstimationHandler) EstimateBatch(w http.ResponseWriter, r *http.Request) {
	var format stypes.ReportFormat
	if q := r.URL.Query().Get("report"); q != "" {
		format = stypes.ReportFormat(q)
		if !format.IsValid() {
			writeAppError(w, r, h.logger, errors.InvalidParam("unknown report format").WithDetail(q))
			return
		}
		if h.publisher == nil {
			writeAppError(w, r, h.logger, errors.New(errors.ErrCodeFeatureDisabled, "report upload is not configured"))
			return
		}
	}

	var req stypes.BatchEstimateRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	resp, err := h.svc.EstimateBatch(r.Context(), &req)
	if err != nil {
		if resp == nil {
			writeAppError(w, r, h.logger, err)
			return
		}
		writeAppErrorWithData(w, r, h.logger, err, resp)
		return
	}

	if format != "" {
		uri, err := h.publisher.Publish(r.Context(), resp.Summary.RunID, format, resp.Results)
		if err != nil {
			writeAppErrorWithData(w, r, h.logger, err, resp)
			return
		}
		resp.Summary.ReportURI = uri
	}
	writeData(w, r, http.StatusOK, resp)
}

// Evaluate handles POST /api/v1/evaluate.
func (h *EstimationHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req stypes.EvaluateRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	res, err := h.svc.Evaluate(r.Context(), &req)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeData(w, r, http.StatusOK, res)
}

// Groups handles GET /api/v1/groups.
func (h *EstimationHandler) Groups(w http.ResponseWriter, r *http.Request) {
	writeData(w, r, http.StatusOK, h.svc.Groups())
}

//Personal.AI order the ending
