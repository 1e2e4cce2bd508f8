package estimation

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/simpol/internal/domain/group"
	"github.com/turtacn/simpol/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simpol/pkg/errors"
	stypes "github.com/turtacn/simpol/pkg/types/simpol"
)

// fakeCache is an in-memory ResultCache with JSON round-tripping.  Values in
// inflight stand for a load another caller is running; they are returned as
// misses without calling the loader.
type fakeCache struct {
	mu       sync.Mutex
	data     map[string][]byte
	inflight map[string][]byte
	loads    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}, inflight: map[string][]byte{}}
}

func (c *fakeCache) GetOrLoad(ctx context.Context, key string, dest interface{}, _ time.Duration, loader func(ctx context.Context) (interface{}, error)) (bool, error) {
	c.mu.Lock()
	raw, ok := c.data[key]
	shared, sharing := c.inflight[key]
	c.mu.Unlock()
	if ok {
		return true, json.Unmarshal(raw, dest)
	}
	if sharing {
		return false, json.Unmarshal(shared, dest)
	}
	v, err := loader(ctx)
	if err != nil {
		return false, err
	}
	raw, err = json.Marshal(v)
	if err != nil {
		return false, err
	}
	c.mu.Lock()
	c.data[key] = raw
	c.loads++
	c.mu.Unlock()
	return false, json.Unmarshal(raw, dest)
}

type mockMetrics struct {
	mock.Mock
}

func (m *mockMetrics) RecordEstimate(source string, ok bool, d time.Duration) {
	m.Called(source, ok, d)
}
func (m *mockMetrics) RecordGroups(counts map[string]int) { m.Called(counts) }
func (m *mockMetrics) RecordBatch(status string, compounds int, d time.Duration) {
	m.Called(status, compounds, d)
}
func (m *mockMetrics) RecordCacheAccess(hit bool) { m.Called(hit) }

func newTestService(opts Options, options ...ServiceOption) Service {
	return NewService(opts, logging.NewNopLogger(), options...)
}

func TestEstimate_Ethanol(t *testing.T) {
	svc := newTestService(Options{})

	res, err := svc.Estimate(context.Background(), &stypes.EstimateRequest{SMILES: "CCO", Name: "ethanol"})
	require.NoError(t, err)
	assert.Equal(t, "ethanol", res.Name)
	assert.Equal(t, "C2H6O", res.Formula)
	assert.Equal(t, map[string]int{"carbon_number": 2, "zeroeth": 1, "hydroxyl": 1}, res.Groups)
	require.Len(t, res.Points, 1)
	assert.Equal(t, 298.15, res.Points[0].Temperature)
	assert.InDelta(t, -1.187, res.Points[0].Log10P, 0.005)
	assert.InDelta(t, 43.09, res.Points[0].DHvap, 0.05)
	assert.InDelta(t, math.Pow(10, res.Points[0].Log10P)*101325, res.Points[0].PressurePa, 1e-6)
	assert.Nil(t, res.Error)
}

func TestEstimate_DefaultTemperaturesFromOptions(t *testing.T) {
	svc := newTestService(Options{Temperatures: []float64{280, 300}})

	res, err := svc.Estimate(context.Background(), &stypes.EstimateRequest{SMILES: "CCO"})
	require.NoError(t, err)
	require.Len(t, res.Points, 2)
	assert.Equal(t, 280.0, res.Points[0].Temperature)
	assert.Equal(t, 300.0, res.Points[1].Temperature)
	assert.Less(t, res.Points[0].Log10P, res.Points[1].Log10P)

	res, err = svc.Estimate(context.Background(), &stypes.EstimateRequest{SMILES: "CCO", Temperatures: []float64{310}})
	require.NoError(t, err)
	require.Len(t, res.Points, 1)
	assert.Equal(t, 310.0, res.Points[0].Temperature)
}

func TestEstimate_Failures(t *testing.T) {
	svc := newTestService(Options{})
	ctx := context.Background()

	_, err := svc.Estimate(ctx, &stypes.EstimateRequest{SMILES: "C("})
	assert.True(t, errors.IsMalformedSMILES(err))

	_, err = svc.Estimate(ctx, &stypes.EstimateRequest{SMILES: "CCO", Temperatures: []float64{-5}})
	assert.True(t, errors.IsInvalidTemperature(err))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = svc.Estimate(cancelled, &stypes.EstimateRequest{SMILES: "CCO"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeTimeout))
}

func TestEstimate_CacheHitSkipsEstimator(t *testing.T) {
	cache := newFakeCache()
	metrics := new(mockMetrics)
	metrics.On("RecordEstimate", "http", true, mock.Anything).Twice()
	metrics.On("RecordGroups", map[string]int{"carbon_number": 2, "zeroeth": 1, "hydroxyl": 1}).Once()
	metrics.On("RecordCacheAccess", false).Once()
	metrics.On("RecordCacheAccess", true).Once()

	svc := newTestService(Options{Source: "http"}, WithCache(cache), WithMetrics(metrics))
	ctx := context.Background()

	first, err := svc.Estimate(ctx, &stypes.EstimateRequest{SMILES: "CCO", Name: "a"})
	require.NoError(t, err)
	second, err := svc.Estimate(ctx, &stypes.EstimateRequest{SMILES: "CCO", Name: "b"})
	require.NoError(t, err)

	assert.Equal(t, 1, cache.loads)
	assert.Equal(t, first.Points, second.Points)
	assert.Equal(t, "b", second.Name)
	metrics.AssertExpectations(t)
}

func TestEstimate_SharedLoadCountsAsCacheMiss(t *testing.T) {
	warm := newFakeCache()
	_, err := newTestService(Options{}, WithCache(warm)).Estimate(context.Background(), &stypes.EstimateRequest{SMILES: "CCO"})
	require.NoError(t, err)

	cache := newFakeCache()
	for k, v := range warm.data {
		cache.inflight[k] = v
	}
	metrics := new(mockMetrics)
	metrics.On("RecordEstimate", "cli", true, mock.Anything).Once()
	metrics.On("RecordCacheAccess", false).Once()

	svc := newTestService(Options{}, WithCache(cache), WithMetrics(metrics))
	res, err := svc.Estimate(context.Background(), &stypes.EstimateRequest{SMILES: "CCO"})
	require.NoError(t, err)

	assert.Equal(t, 0, cache.loads)
	assert.Equal(t, 1, res.Groups["hydroxyl"])
	metrics.AssertExpectations(t)
	metrics.AssertNotCalled(t, "RecordCacheAccess", true)
	metrics.AssertNotCalled(t, "RecordGroups", mock.Anything)
}

func TestEstimate_CacheDoesNotStoreFailures(t *testing.T) {
	cache := newFakeCache()
	svc := newTestService(Options{}, WithCache(cache))

	_, err := svc.Estimate(context.Background(), &stypes.EstimateRequest{SMILES: "C1CC"})
	assert.True(t, errors.IsMalformedSMILES(err))
	assert.Empty(t, cache.data)
}

func TestEstimateBatch_SkipPolicy(t *testing.T) {
	svc := newTestService(Options{Concurrency: 2})
	req := &stypes.BatchEstimateRequest{
		Compounds: []stypes.CompoundInput{
			{SMILES: "CCO", Name: "ethanol"},
			{SMILES: "C(", Name: "broken"},
			{SMILES: "CC(=O)O", Name: "acetic acid"},
		},
	}

	resp, err := svc.EstimateBatch(context.Background(), req)
	require.NoError(t, err)
	_, uerr := uuid.Parse(resp.Summary.RunID)
	assert.NoError(t, uerr)
	assert.Equal(t, 3, resp.Summary.Total)
	assert.Equal(t, 2, resp.Summary.Succeeded)
	assert.Equal(t, 1, resp.Summary.Failed)
	assert.False(t, resp.Summary.Aborted)

	require.Len(t, resp.Results, 3)
	for i, r := range resp.Results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, req.Compounds[i].SMILES, r.SMILES)
		assert.Equal(t, req.Compounds[i].Name, r.Name)
	}
	require.NotNil(t, resp.Results[1].Error)
	assert.Equal(t, string(errors.CodeMalformedSMILES), resp.Results[1].Error.Code)
	assert.Empty(t, resp.Results[1].Points)
	assert.Equal(t, 1, resp.Results[2].Groups["carboxylic_acid"])
}

func TestEstimateBatch_AbortPolicy(t *testing.T) {
	svc := newTestService(Options{Concurrency: 1})
	req := &stypes.BatchEstimateRequest{
		Compounds: []stypes.CompoundInput{{SMILES: "CCO"}, {SMILES: "C("}, {SMILES: "CCC"}},
		OnError:   stypes.OnErrorAbort,
	}

	resp, err := svc.EstimateBatch(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.IsMalformedSMILES(err))
	require.NotNil(t, resp)
	assert.True(t, resp.Summary.Aborted)
	assert.Equal(t, 1, resp.Summary.Succeeded)
	assert.Equal(t, 1, resp.Summary.Failed)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "CCO", resp.Results[0].SMILES)
	assert.Equal(t, "C(", resp.Results[1].SMILES)
}

func TestEstimateBatch_DefaultPolicyFromOptions(t *testing.T) {
	svc := newTestService(Options{OnError: stypes.OnErrorAbort, Concurrency: 1})
	_, err := svc.EstimateBatch(context.Background(), &stypes.BatchEstimateRequest{
		Compounds: []stypes.CompoundInput{{SMILES: "C("}},
	})
	assert.Error(t, err)
}

func TestEstimateBatch_InvalidTemperature(t *testing.T) {
	svc := newTestService(Options{})
	resp, err := svc.EstimateBatch(context.Background(), &stypes.BatchEstimateRequest{
		Compounds:    []stypes.CompoundInput{{SMILES: "CCO"}},
		Temperatures: []float64{298.15, 0},
	})
	assert.Nil(t, resp)
	assert.True(t, errors.IsInvalidTemperature(err))
}

func TestEstimateBatch_PreservesOrderUnderConcurrency(t *testing.T) {
	svc := newTestService(Options{Concurrency: 8})
	var compounds []stypes.CompoundInput
	for n := 1; n <= 40; n++ {
		smiles := ""
		for i := 0; i < n%12+1; i++ {
			smiles += "C"
		}
		compounds = append(compounds, stypes.CompoundInput{SMILES: smiles + "O", Name: fmt.Sprintf("c%d", n)})
	}

	resp, err := svc.EstimateBatch(context.Background(), &stypes.BatchEstimateRequest{Compounds: compounds})
	require.NoError(t, err)
	require.Len(t, resp.Results, len(compounds))
	for i, r := range resp.Results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, compounds[i].Name, r.Name)
		assert.Equal(t, len(compounds[i].SMILES)-1, r.Groups["carbon_number"])
	}
}

func TestEstimateBatch_RecordsMetrics(t *testing.T) {
	metrics := new(mockMetrics)
	metrics.On("RecordEstimate", "cli", true, mock.Anything).Once()
	metrics.On("RecordEstimate", "cli", false, mock.Anything).Once()
	metrics.On("RecordGroups", mock.Anything).Once()
	metrics.On("RecordBatch", "completed", 2, mock.Anything).Once()

	svc := newTestService(Options{Concurrency: 1}, WithMetrics(metrics))
	_, err := svc.EstimateBatch(context.Background(), &stypes.BatchEstimateRequest{
		Compounds: []stypes.CompoundInput{{SMILES: "CCO"}, {SMILES: "C("}},
	})
	require.NoError(t, err)
	metrics.AssertExpectations(t)
}

func TestEvaluate(t *testing.T) {
	svc := newTestService(Options{})
	ctx := context.Background()

	est, err := svc.Estimate(ctx, &stypes.EstimateRequest{SMILES: "CCO"})
	require.NoError(t, err)

	res, err := svc.Evaluate(ctx, &stypes.EvaluateRequest{Counts: map[string]int{"carbon_number": 2, "zeroeth": 1, "hydroxyl": 1}})
	require.NoError(t, err)
	assert.Equal(t, stypes.DefaultTemperature, res.Temperature)
	assert.Equal(t, est.Points[0].Log10P, res.Log10P)
	assert.Equal(t, est.Points[0].DHvap, res.DHvap)
	assert.Zero(t, res.CStar)

	T := 310.0
	res, err = svc.Evaluate(ctx, &stypes.EvaluateRequest{Counts: map[string]int{"zeroeth": 1}, Temperature: &T})
	require.NoError(t, err)
	assert.Equal(t, 310.0, res.Temperature)
}

func TestEvaluate_Failures(t *testing.T) {
	svc := newTestService(Options{})
	ctx := context.Background()

	_, err := svc.Evaluate(ctx, &stypes.EvaluateRequest{Counts: map[string]int{"sulfonate": 1}})
	assert.True(t, errors.IsUnknownGroup(err))

	_, err = svc.Evaluate(ctx, &stypes.EvaluateRequest{Counts: map[string]int{"hydroxyl": -1}})
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))

	zero := 0.0
	_, err = svc.Evaluate(ctx, &stypes.EvaluateRequest{Counts: map[string]int{"hydroxyl": 1}, Temperature: &zero})
	assert.True(t, errors.IsInvalidTemperature(err))
}

func TestGroups(t *testing.T) {
	groups := newTestService(Options{}).Groups()
	require.Len(t, groups, 31)
	assert.Equal(t, 7, groups[7].ID)
	assert.Equal(t, "hydroxyl", groups[7].Key)
	assert.Equal(t, "functional", groups[7].Kind)

	c := groups[7].Coefficients
	T := 298.15
	assert.InDelta(t, c.B0+c.B1/T+c.B2*T+c.B3*math.Log(T), groups[7].B298, 1e-12)

	assert.Equal(t, group.Keys()[30], groups[30].Key)
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("CCO", []float64{298.15})
	assert.Equal(t, a, CacheKey("CCO", []float64{298.15}))
	assert.NotEqual(t, a, CacheKey("CCO", []float64{298.16}))
	assert.NotEqual(t, a, CacheKey("OCC", []float64{298.15}))
	assert.NotEqual(t, CacheKey("CCO", []float64{280, 300}), CacheKey("CCO", []float64{300, 280}))
	assert.Len(t, a, len("est:")+32)
}

func TestErrorDetail(t *testing.T) {
	d := ErrorDetail(errors.MalformedSMILES("C(", 1, "unbalanced parentheses"))
	assert.Equal(t, string(errors.CodeMalformedSMILES), d.Code)
	assert.Equal(t, "unbalanced parentheses", d.Message)
	assert.Contains(t, d.Detail, "pos=1")

	d = ErrorDetail(stderrors.New("plain"))
	assert.Equal(t, string(errors.CodeUnknown), d.Code)
	assert.Equal(t, "plain", d.Message)
}

//Personal.AI order the ending
