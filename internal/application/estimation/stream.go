package estimation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/turtacn/simpol/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simpol/pkg/errors"
	"github.com/turtacn/simpol/pkg/types/common"
	stypes "github.com/turtacn/simpol/pkg/types/simpol"
)

// ResultPublisher sends a JSON value to a topic.  kafka.Producer satisfies it.
type ResultPublisher interface {
	PublishJSON(ctx context.Context, topic, key string, v interface{}, headers map[string]string) error
}

// StreamMetrics receives per-message outcomes.
type StreamMetrics interface {
	RecordStreamMessage(topic string, ok bool)
}

// StreamProcessor answers estimation request messages with result messages.
// Every request gets exactly one result; failures are published with the
// error set and are never retried.
type StreamProcessor struct {
	service     Service
	publisher   ResultPublisher
	resultTopic string
	metrics     StreamMetrics
	logger      logging.Logger
	now         func() time.Time
}

// NewStreamProcessor returns a StreamProcessor publishing to resultTopic.
func NewStreamProcessor(svc Service, pub ResultPublisher, resultTopic string, metrics StreamMetrics, logger logging.Logger) *StreamProcessor {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &StreamProcessor{
		service:     svc,
		publisher:   pub,
		resultTopic: resultTopic,
		metrics:     metrics,
		logger:      logger.Named("stream"),
		now:         time.Now,
	}
}

// Process handles one request payload.  key is the message key, used as the
// request id when the payload carries none.  The returned error is non-nil
// only when the result could not be published.
func (p *StreamProcessor) Process(ctx context.Context, key string, payload []byte) error {
	var req stypes.StreamRequest
	result := stypes.StreamResult{}

	if err := json.Unmarshal(payload, &req); err != nil {
		result.RequestID = key
		result.Result = stypes.CompoundResult{
			Error: ErrorDetail(errors.Wrap(err, errors.ErrCodeSerialization, "malformed request payload")),
		}
	} else {
		if req.RequestID == "" {
			req.RequestID = key
		}
		result.RequestID = req.RequestID
		res, err := p.service.Estimate(ctx, &stypes.EstimateRequest{
			SMILES:       req.SMILES,
			Name:         req.Name,
			Temperatures: req.Temperatures,
		})
		if err != nil {
			result.Result = stypes.CompoundResult{SMILES: req.SMILES, Name: req.Name, Error: ErrorDetail(err)}
		} else {
			result.Result = *res
		}
	}
	result.ProcessedAt = common.Timestamp(p.now())

	ok := !result.Result.Failed()
	if p.metrics != nil {
		p.metrics.RecordStreamMessage(p.resultTopic, ok)
	}
	log := p.logger.WithContext(ctx).With(logging.String(logging.FieldRequestID, result.RequestID))
	if !ok {
		log.Warn("estimation request failed",
			logging.String(logging.FieldSMILES, req.SMILES),
			logging.String(logging.FieldErrorCode, result.Result.Error.Code))
	}

	headers := map[string]string{"request-id": result.RequestID, "source": "simpol-worker"}
	if err := p.publisher.PublishJSON(ctx, p.resultTopic, result.RequestID, result, headers); err != nil {
		log.WithError(err).Error("publishing result failed")
		return err
	}
	return nil
}

//Personal.AI order the ending
