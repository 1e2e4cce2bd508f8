// Package estimation is the application service around the SIMPOL.1 core: it
// turns request DTOs into estimator calls, runs batches in parallel, and
// threads the result cache and metrics through every call.
package estimation

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	stderrors "errors"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/simpol/internal/domain/group"
	"github.com/turtacn/simpol/internal/domain/simpol"
	"github.com/turtacn/simpol/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simpol/pkg/errors"
	"github.com/turtacn/simpol/pkg/types/common"
	stypes "github.com/turtacn/simpol/pkg/types/simpol"
)

// Service defines the estimation operations shared by the CLI, the HTTP API
// and the stream worker.
type Service interface {
	// Estimate returns the properties of one compound.  Core failures
	// (malformed SMILES, invalid temperature) are returned as errors.
	Estimate(ctx context.Context, req *stypes.EstimateRequest) (*stypes.CompoundResult, error)
	// EstimateBatch estimates every compound, in parallel, returning results
	// in input order.  Under the skip policy per-compound failures are
	// recorded in the results; under abort the first failure stops the run
	// and is returned alongside the partial response.
	EstimateBatch(ctx context.Context, req *stypes.BatchEstimateRequest) (*stypes.BatchEstimateResponse, error)
	// Evaluate applies the property model to an explicit count vector.
	Evaluate(ctx context.Context, req *stypes.EvaluateRequest) (*stypes.EvaluateResponse, error)
	// Groups lists the catalogue with its coefficients.
	Groups() []stypes.GroupInfo
}

// ResultCache is the subset of the redis cache used here.
type ResultCache interface {
	GetOrLoad(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) (hit bool, err error)
}

// Metrics receives estimation measurements.
type Metrics interface {
	RecordEstimate(source string, ok bool, d time.Duration)
	RecordGroups(counts map[string]int)
	RecordBatch(status string, compounds int, d time.Duration)
	RecordCacheAccess(hit bool)
}

// Options configures the service.
type Options struct {
	// Temperatures used when a request names none.  Defaults to 298.15 K.
	Temperatures []float64
	// Concurrency bounds parallel compounds in a batch.  Defaults to 4.
	Concurrency int
	// OnError is the batch policy when a request names none.
	OnError stypes.OnErrorPolicy
	// CacheTTL is passed to the cache; zero uses the cache default.
	CacheTTL time.Duration
	// Source labels metrics: cli, http or stream.
	Source string
}

type serviceImpl struct {
	estimator *simpol.Estimator
	opts      Options
	cache     ResultCache
	metrics   Metrics
	logger    logging.Logger
}

// ServiceOption customises NewService.
type ServiceOption func(*serviceImpl)

// WithCache enables result caching.
func WithCache(c ResultCache) ServiceOption {
	return func(s *serviceImpl) { s.cache = c }
}

// WithMetrics enables metric recording.
func WithMetrics(m Metrics) ServiceOption {
	return func(s *serviceImpl) { s.metrics = m }
}

// NewService returns a Service.
func NewService(opts Options, logger logging.Logger, options ...ServiceOption) Service {
	if len(opts.Temperatures) == 0 {
		opts.Temperatures = []float64{stypes.DefaultTemperature}
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if !opts.OnError.IsValid() {
		opts.OnError = stypes.OnErrorSkip
	}
	if opts.Source == "" {
		opts.Source = "cli"
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &serviceImpl{
		estimator: simpol.NewEstimator(),
		opts:      opts,
		logger:    logger.Named("estimation"),
	}
	for _, o := range options {
		o(s)
	}
	return s
}

func (s *serviceImpl) temperatures(req []float64) []float64 {
	if len(req) == 0 {
		return s.opts.Temperatures
	}
	return req
}

// ─────────────────────────────────────────────────────────────────────────────
// Single compound
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) Estimate(ctx context.Context, req *stypes.EstimateRequest) (*stypes.CompoundResult, error) {
	start := time.Now()
	res, err := s.estimate(ctx, req.SMILES, s.temperatures(req.Temperatures))
	s.recordEstimate(err == nil, time.Since(start))
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Debug("estimate failed", logging.String(logging.FieldSMILES, req.SMILES))
		return nil, err
	}
	res.Name = req.Name
	return res, nil
}

// estimate runs the estimator, through the cache when one is configured.  The
// cached value never carries the compound name or batch index.
func (s *serviceImpl) estimate(ctx context.Context, smiles string, temps []float64) (*stypes.CompoundResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTimeout, "estimation cancelled")
	}
	compute := func(context.Context) (interface{}, error) {
		results, err := s.estimator.Estimate(smiles, temps...)
		if err != nil {
			return nil, err
		}
		return ToCompoundResult(smiles, results), nil
	}

	if s.cache == nil {
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		r := v.(*stypes.CompoundResult)
		s.recordGroups(r.Groups)
		return r, nil
	}

	loaded := false
	var out stypes.CompoundResult
	hit, err := s.cache.GetOrLoad(ctx, CacheKey(smiles, temps), &out, s.opts.CacheTTL, func(ctx context.Context) (interface{}, error) {
		loaded = true
		return compute(ctx)
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordCacheAccess(hit)
	}
	if loaded {
		s.recordGroups(out.Groups)
	}
	return &out, nil
}

func (s *serviceImpl) recordEstimate(ok bool, d time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordEstimate(s.opts.Source, ok, d)
	}
}

func (s *serviceImpl) recordGroups(counts map[string]int) {
	if s.metrics != nil {
		s.metrics.RecordGroups(counts)
	}
}

// CacheKey derives the cache key of an estimate from the input SMILES and the
// exact temperature bits.
func CacheKey(smiles string, temps []float64) string {
	h := sha256.New()
	h.Write([]byte(smiles))
	var buf [8]byte
	for _, t := range temps {
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(t))
		h.Write(buf[:])
	}
	return "est:" + hex.EncodeToString(h.Sum(nil))[:32]
}

// ─────────────────────────────────────────────────────────────────────────────
// Batch
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) EstimateBatch(ctx context.Context, req *stypes.BatchEstimateRequest) (*stypes.BatchEstimateResponse, error) {
	start := time.Now()
	runID := uuid.NewString()
	policy := req.OnError
	if !policy.IsValid() {
		policy = s.opts.OnError
	}
	temps := s.temperatures(req.Temperatures)
	log := s.logger.WithContext(ctx).With(logging.String(logging.FieldRunID, runID))

	// a bad temperature fails every compound the same way
	for _, t := range temps {
		if err := simpol.ValidateTemperature(t); err != nil {
			return nil, err
		}
	}

	results := make([]stypes.CompoundResult, len(req.Compounds))
	attempted := make([]bool, len(req.Compounds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, c := range req.Compounds {
		if gctx.Err() != nil {
			break
		}
		i, c := i, c
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			t0 := time.Now()
			res, err := s.estimate(gctx, c.SMILES, temps)
			if err != nil && gctx.Err() != nil && errors.IsCode(err, errors.ErrCodeTimeout) {
				// cancelled by an abort elsewhere or by the caller
				return nil
			}
			attempted[i] = true
			s.recordEstimate(err == nil, time.Since(t0))
			if err != nil {
				results[i] = stypes.CompoundResult{Index: i, SMILES: c.SMILES, Name: c.Name, Error: ErrorDetail(err)}
				if policy == stypes.OnErrorAbort {
					return errors.Wrap(err, errors.CodeUnknown, "compound "+c.SMILES)
				}
				log.WithError(err).Warn("compound skipped",
					logging.Int("index", i),
					logging.String(logging.FieldSMILES, c.SMILES))
				return nil
			}
			res.Index = i
			res.Name = c.Name
			results[i] = *res
			return nil
		})
	}
	runErr := g.Wait()
	if runErr == nil && ctx.Err() != nil {
		runErr = errors.Wrap(ctx.Err(), errors.ErrCodeTimeout, "batch cancelled")
	}

	resp := &stypes.BatchEstimateResponse{
		Summary: stypes.BatchSummary{
			RunID:     runID,
			Total:     len(req.Compounds),
			StartedAt: common.Timestamp(start),
			Aborted:   runErr != nil,
		},
		Results: make([]stypes.CompoundResult, 0, len(req.Compounds)),
	}
	for i, r := range results {
		if !attempted[i] {
			continue
		}
		if r.Failed() {
			resp.Summary.Failed++
		} else {
			resp.Summary.Succeeded++
		}
		resp.Results = append(resp.Results, r)
	}
	elapsed := time.Since(start)
	resp.Summary.ElapsedMS = elapsed.Milliseconds()

	status := "completed"
	if runErr != nil {
		status = "aborted"
	}
	if s.metrics != nil {
		s.metrics.RecordBatch(status, len(resp.Results), elapsed)
	}
	log.Info("batch finished",
		logging.String("status", status),
		logging.Int("total", resp.Summary.Total),
		logging.Int("succeeded", resp.Summary.Succeeded),
		logging.Int("failed", resp.Summary.Failed),
		logging.Duration("elapsed", elapsed))

	if runErr != nil {
		return resp, runErr
	}
	return resp, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Evaluate and catalogue
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) Evaluate(ctx context.Context, req *stypes.EvaluateRequest) (*stypes.EvaluateResponse, error) {
	T := stypes.DefaultTemperature
	if req.Temperature != nil {
		T = *req.Temperature
	}
	sparse := make(map[group.ID]int, len(req.Counts))
	for key, n := range req.Counts {
		def, ok := group.ByKey(key)
		if !ok {
			return nil, errors.New(errors.CodeUnknownGroup, "unknown group key").WithDetail(key)
		}
		sparse[def.ID] = n
	}
	logP, dH, err := simpol.EvaluateSparse(sparse, T)
	if err != nil {
		return nil, err
	}
	p := simpol.PressureAtm(logP)
	return &stypes.EvaluateResponse{
		Counts: req.Counts,
		PropertyPoint: stypes.PropertyPoint{
			Temperature: T,
			Log10P:      logP,
			PressureAtm: p,
			PressurePa:  p * simpol.PascalPerAtm,
			DHvap:       dH,
		},
	}, nil
}

func (s *serviceImpl) Groups() []stypes.GroupInfo {
	defs := group.Catalogue()
	out := make([]stypes.GroupInfo, 0, len(defs))
	for _, d := range defs {
		c, _ := simpol.CoefficientsFor(d.ID)
		b298, _, _ := simpol.EvaluateSparse(map[group.ID]int{d.ID: 1}, simpol.ReferenceTemperature)
		out = append(out, stypes.GroupInfo{
			ID:           int(d.ID),
			Key:          d.Key,
			Name:         d.Name,
			Kind:         d.Kind.String(),
			Priority:     d.Priority,
			Coefficients: stypes.Coefficients{B0: c.B0, B1: c.B1, B2: c.B2, B3: c.B3},
			B298:         b298,
		})
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Conversion
// ─────────────────────────────────────────────────────────────────────────────

// ToCompoundResult converts estimator output for one compound into its DTO.
// results must be non-empty and share one SMILES.
func ToCompoundResult(smiles string, results []simpol.Result) *stypes.CompoundResult {
	first := results[0]
	out := &stypes.CompoundResult{
		SMILES:    smiles,
		Formula:   first.Formula,
		MolarMass: first.MolarMass,
		Groups:    first.Counts.Map(),
		Points:    make([]stypes.PropertyPoint, len(results)),
	}
	for i, r := range results {
		out.Points[i] = stypes.PropertyPoint{
			Temperature: r.Temperature,
			Log10P:      r.Log10P,
			PressureAtm: r.PressureAtm,
			PressurePa:  r.PressurePa,
			DHvap:       r.DHvap,
			CStar:       r.CStar,
		}
	}
	return out
}

// ErrorDetail converts err into its wire form.
func ErrorDetail(err error) *common.ErrorDetail {
	var ae *errors.AppError
	if stderrors.As(err, &ae) {
		return &common.ErrorDetail{Code: string(ae.Code), Message: ae.Message, Detail: ae.Detail}
	}
	code := errors.GetCode(err)
	return &common.ErrorDetail{Code: string(code), Message: err.Error()}
}

//Personal.AI order the ending
