package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petzzshop/ops-backend/internal/config"
	"github.com/petzzshop/ops-backend/internal/domain"
	"github.com/petzzshop/ops-backend/internal/engine"
	"github.com/petzzshop/ops-backend/internal/service"
)

type fakeSignalRepo struct {
	signals []domain.ProductSignal
	err     error
}

func (f *fakeSignalRepo) GetSignals(ctx context.Context, filter domain.SignalFilter) ([]domain.ProductSignal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.signals, nil
}

func (f *fakeSignalRepo) GetFilterOptions(ctx context.Context) (*domain.FilterOptions, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.FilterOptions{}, nil
}

func testRouter(repo *fakeSignalRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)

	eng := engine.New(config.EngineConfig{
		DefaultLeadTimeDays:  7,
		SafetyFactor:         0.2,
		TargetCoverDays:      30,
		MaxLimit:             1000,
		WeightStockUrgency:   0.40,
		WeightVelocity:       0.25,
		WeightMargin:         0.20,
		WeightCompetition:    0.15,
		VelocityCeiling:      10,
		PriceGapCeilingPct:   30,
		HealthyMarginPct:     20,
		SevereMarginPct:      -5,
		HighScoreThreshold:   70,
		MediumScoreThreshold: 25,
	})

	return NewRouter(&Services{
		DecisionService:       service.NewDecisionService(repo, eng, nil),
		RecommendationService: service.NewRecommendationService(repo, eng),
	}, nil)
}

func doRequest(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	rec := doRequest(t, testRouter(&fakeSignalRepo{}), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDecisionEngineEndpoint(t *testing.T) {
	supplier := "Acme Pet"
	router := testRouter(&fakeSignalRepo{signals: []domain.ProductSignal{
		{
			ProductID: 1, Code: "SKU-001", Name: "Kibble", Brand: "Acme",
			Supplier: &supplier, CurrentStock: 0,
			Sales15: 10, Sales30: 20, Sales90: 60,
			BuyingPrice: 40, SellingPrice: 80, LeadTimeDays: 7,
		},
	}})

	rec := doRequest(t, router, "/api/v1/purchasing/decision-engine")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.DecisionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, domain.ActionOrder, resp.Items[0].Decision.Action)
	assert.Equal(t, 1, resp.KPIs.TotalItems)
}

func TestDecisionEngineBadQuery(t *testing.T) {
	router := testRouter(&fakeSignalRepo{})

	cases := []struct {
		name string
		path string
	}{
		{name: "min_score not a number", path: "/api/v1/purchasing/decision-engine?min_score=abc"},
		{name: "min_score out of range", path: "/api/v1/purchasing/decision-engine?min_score=250"},
		{name: "limit not an integer", path: "/api/v1/purchasing/decision-engine?limit=ten"},
		{name: "unknown action", path: "/api/v1/purchasing/decision-engine?action=SELL"},
		{name: "unknown stock status", path: "/api/v1/purchasing/decision-engine?stock_status=backorder"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, router, tc.path)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestDecisionEngineSignalOutage(t *testing.T) {
	router := testRouter(&fakeSignalRepo{
		err: &domain.SignalUnavailableError{Op: "query", Err: errors.New("connection refused")},
	})

	rec := doRequest(t, router, "/api/v1/purchasing/decision-engine")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStrategyGenerateUnknownTemplate(t *testing.T) {
	router := testRouter(&fakeSignalRepo{})

	rec := doRequest(t, router, "/api/v1/purchasing/strategy/generate?template=quarterly")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStrategyTemplatesEndpoint(t *testing.T) {
	rec := doRequest(t, testRouter(&fakeSignalRepo{}), "/api/v1/purchasing/strategy/templates")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Templates []engine.Template `json:"templates"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Len(t, payload.Templates, 4)
}

func TestOrderRecommendationsEndpoint(t *testing.T) {
	supplier := "Acme Pet"
	router := testRouter(&fakeSignalRepo{signals: []domain.ProductSignal{
		{
			ProductID: 1, Code: "SKU-001", Name: "Kibble", Brand: "Acme",
			Supplier: &supplier, CurrentStock: 2,
			Sales15: 10, Sales30: 26, Sales90: 60,
			BuyingPrice: 40, SellingPrice: 80, LeadTimeDays: 7,
		},
	}})

	rec := doRequest(t, router, "/api/v1/purchasing/order-recommendations")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.RecommendationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, 11, resp.Recommendations[0].OrderQty)
}
