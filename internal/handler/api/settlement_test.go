//go:build unit

package api_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"scanledger/internal/domain/commission"
	"scanledger/internal/handler/api"
	reqdto "scanledger/internal/handler/dto/request"
	resdto "scanledger/internal/handler/dto/response"
	"scanledger/internal/pkg/errs"
	"scanledger/internal/usecase/commands"
	"scanledger/internal/usecase/queries"
	"scanledger/internal/usecase/shared"
	"scanledger/tests/common/httptest"
	"scanledger/tests/common/testutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type stubSettlementCommands struct {
	result *commands.SettleResult
	err    error
}

func (s *stubSettlementCommands) SettleTransaction(_ context.Context, _ commands.SettleParams) (*commands.SettleResult, error) {
	return s.result, s.err
}

type stubSettlementQueries struct {
	record  *shared.BreakdownRecord
	summary *queries.CommissionSummaryView
	err     error
}

func (s *stubSettlementQueries) GetByTransactionID(_ context.Context, _ uuid.UUID) (*shared.BreakdownRecord, error) {
	return s.record, s.err
}

func (s *stubSettlementQueries) PlatformSummary(_ context.Context, _, _ time.Time) (*queries.CommissionSummaryView, error) {
	return s.summary, s.err
}

type SettlementHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	settlements *stubSettlementCommands
	reads       *stubSettlementQueries
}

func (s *SettlementHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.settlements = &stubSettlementCommands{}
	s.reads = &stubSettlementQueries{}
	handler := api.NewSettlementHandler(s.settlements, s.reads)

	s.router.POST("/settlements", handler.Settle)
	s.router.GET("/settlements/summary", handler.Summary)
	s.router.GET("/settlements/:transaction_id", handler.Get)
}

func TestSettlementHandlerSuite(t *testing.T) {
	suite.Run(t, new(SettlementHandlerTestSuite))
}

func settleRequestBody(t *testing.T, muts ...func(map[string]any)) map[string]any {
	return testutil.DtoMap(t, reqdto.SettleTransactionRequest{
		TransactionID:   uuid.New(),
		GrossAmount:     "100.00",
		TransactionType: "purchase",
		BusinessID:      uuid.New(),
	}, muts...)
}

func (s *SettlementHandlerTestSuite) TestSettle() {
	s.Run("fresh settlement returns 201", func() {
		s.settlements.result = &commands.SettleResult{
			Breakdown: commission.Breakdown{
				Gross:              decimal.RequireFromString("100.00"),
				PlatformCommission: decimal.RequireFromString("7.50"),
				BusinessPayout:     decimal.RequireFromString("92.50"),
			},
		}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/settlements", settleRequestBody(s.T()), "")
		s.Equal(http.StatusCreated, rec.Code)

		var body resdto.BreakdownResponse
		httptest.DecodeResponseBody(s.T(), rec.Body, &body)
		s.Equal("7.50", body.PlatformCommission)
		s.Equal("92.50", body.BusinessPayout)
		s.False(body.IsReplayed)
	})

	s.Run("replayed settlement returns 200", func() {
		s.settlements.result = &commands.SettleResult{
			Breakdown: commission.Breakdown{
				Gross:              decimal.RequireFromString("100.00"),
				PlatformCommission: decimal.RequireFromString("7.50"),
				BusinessPayout:     decimal.RequireFromString("92.50"),
			},
			IsReplayed: true,
		}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/settlements", settleRequestBody(s.T()), "")
		s.Equal(http.StatusOK, rec.Code)

		var body resdto.BreakdownResponse
		httptest.DecodeResponseBody(s.T(), rec.Body, &body)
		s.True(body.IsReplayed)
	})

	s.Run("validation failures", func() {
		cases := []struct {
			name       string
			mutate     func(map[string]any)
			expectCode int
		}{
			{name: "missing transaction_id", mutate: testutil.Field("transaction_id", nil), expectCode: http.StatusBadRequest},
			{name: "missing gross_amount", mutate: testutil.Field("gross_amount", nil), expectCode: http.StatusBadRequest},
			{name: "unknown transaction_type", mutate: testutil.Field("transaction_type", "donation"), expectCode: http.StatusBadRequest},
			{name: "malformed gross_amount", mutate: testutil.Field("gross_amount", "a lot"), expectCode: http.StatusBadRequest},
		}
		for _, c := range cases {
			s.Run(c.name, func() {
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/settlements", settleRequestBody(s.T(), c.mutate), "")
				s.Equal(c.expectCode, rec.Code)
			})
		}
	})

	s.Run("command errors map to status codes", func() {
		cases := []struct {
			name       string
			err        error
			expectCode int
		}{
			{name: "non-positive amount", err: commands.ErrInvalidAmount, expectCode: http.StatusUnprocessableEntity},
			{name: "marked engine error", err: errs.Mark(errs.New("gross amount must be positive"), commands.ErrInvalidAmount), expectCode: http.StatusUnprocessableEntity},
			{name: "unknown agent", err: commands.ErrAgentNotFound, expectCode: http.StatusNotFound},
			{name: "settlement in progress", err: commands.ErrSettlementRace, expectCode: http.StatusConflict},
		}
		for _, c := range cases {
			s.Run(c.name, func() {
				s.settlements.result = nil
				s.settlements.err = c.err
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/settlements", settleRequestBody(s.T()), "")
				s.Equal(c.expectCode, rec.Code)
				s.settlements.err = nil
			})
		}
	})
}

func (s *SettlementHandlerTestSuite) TestGet() {
	s.Run("returns the stored breakdown", func() {
		transactionID := uuid.New()
		s.reads.record = &shared.BreakdownRecord{
			TransactionID:      transactionID,
			PlatformCommission: decimal.RequireFromString("7.50"),
			BusinessPayout:     decimal.RequireFromString("92.50"),
		}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/settlements/"+transactionID.String(), nil, "")
		s.Equal(http.StatusOK, rec.Code)

		var body resdto.BreakdownResponse
		httptest.DecodeResponseBody(s.T(), rec.Body, &body)
		s.Equal(transactionID, body.TransactionID)
	})

	s.Run("unknown transaction returns 404", func() {
		s.reads.record = nil
		s.reads.err = queries.ErrSettlementNotFound
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/settlements/"+uuid.NewString(), nil, "")
		s.Equal(http.StatusNotFound, rec.Code)
		s.reads.err = nil
	})

	s.Run("malformed id returns 400", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/settlements/not-a-uuid", nil, "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *SettlementHandlerTestSuite) TestSummary() {
	s.Run("aggregates the period", func() {
		s.reads.summary = &queries.CommissionSummaryView{
			From:             time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			To:               time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
			TransactionCount: 3,
			GrossTotal:       decimal.RequireFromString("300.00"),
			PlatformTotal:    decimal.RequireFromString("22.50"),
		}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet,
			"/settlements/summary?from=2026-03-01T00:00:00Z&to=2026-04-01T00:00:00Z", nil, "")
		s.Equal(http.StatusOK, rec.Code)

		var body resdto.CommissionSummaryResponse
		httptest.DecodeResponseBody(s.T(), rec.Body, &body)
		s.Equal(int64(3), body.TransactionCount)
		s.Equal("22.50", body.PlatformTotal)
	})

	s.Run("missing period returns 400", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/settlements/summary", nil, "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}
