//go:build unit

package api_test

import (
	"context"
	"net/http"
	"testing"

	"scanledger/internal/domain/user"
	"scanledger/internal/handler/api"
	reqdto "scanledger/internal/handler/dto/request"
	resdto "scanledger/internal/handler/dto/response"
	"scanledger/internal/pkg/errs"
	"scanledger/internal/usecase/commands"
	"scanledger/tests/common/httptest"
	"scanledger/tests/common/testutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type stubScanCommands struct {
	result *commands.ScanResult
	err    error
	got    *commands.ScanParams
}

func (s *stubScanCommands) ProcessScan(_ context.Context, params commands.ScanParams) (*commands.ScanResult, error) {
	s.got = &params
	return s.result, s.err
}

type stubReferralCommands struct {
	id  uuid.UUID
	err error
}

func (s *stubReferralCommands) RecordScan(_ context.Context, _ commands.RecordReferralScanParams) (uuid.UUID, error) {
	return s.id, s.err
}

type ScanHandlerTestSuite struct {
	suite.Suite
	router    *gin.Engine
	scans     *stubScanCommands
	referrals *stubReferralCommands
}

func (s *ScanHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.scans = &stubScanCommands{}
	s.referrals = &stubReferralCommands{id: uuid.New()}
	handler := api.NewScanHandler(s.scans, s.referrals)

	// Optional authentication: a bearer token identifies the customer,
	// anonymous requests pass through.
	optionalAuth := func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			c.Set("user_id", uuid.New())
			c.Set("user_role", user.RoleCustomer)
		}
		c.Next()
	}

	s.router.POST("/scans", optionalAuth, handler.ProcessScan)
	s.router.POST("/referral-scans", handler.RecordReferralScan)
}

func TestScanHandlerSuite(t *testing.T) {
	suite.Run(t, new(ScanHandlerTestSuite))
}

func (s *ScanHandlerTestSuite) scanRequestBody() map[string]any {
	return testutil.DtoMap(s.T(), reqdto.ProcessScanRequest{QRCodeID: uuid.New()})
}

func (s *ScanHandlerTestSuite) TestProcessScan() {
	scanID := uuid.New()

	s.Run("admissible scan returns 200 with the reward", func() {
		s.scans.result = &commands.ScanResult{
			Admissible:      true,
			ScanID:          &scanID,
			PointsAwarded:   25,
			DiscountApplied: decimal.Zero,
		}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/scans", s.scanRequestBody(), "")
		s.Equal(http.StatusOK, rec.Code)

		var body resdto.ScanResponse
		httptest.DecodeResponseBody(s.T(), rec.Body, &body)
		s.True(body.Admissible)
		s.Equal(int32(25), body.PointsAwarded)
		s.Nil(s.scans.got.CustomerID)
	})

	s.Run("authenticated scan carries the customer id", func() {
		s.scans.result = &commands.ScanResult{Admissible: true, ScanID: &scanID, DiscountApplied: decimal.Zero}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/scans", s.scanRequestBody(), "token")
		s.Equal(http.StatusOK, rec.Code)
		s.NotNil(s.scans.got.CustomerID)
	})

	s.Run("denied scan is still 200", func() {
		s.scans.result = &commands.ScanResult{Admissible: false, Reason: "EXPIRED", DiscountApplied: decimal.Zero}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/scans", s.scanRequestBody(), "")
		s.Equal(http.StatusOK, rec.Code)

		var body resdto.ScanResponse
		httptest.DecodeResponseBody(s.T(), rec.Body, &body)
		s.False(body.Admissible)
		s.Equal("EXPIRED", body.Reason)
	})

	s.Run("unknown qr code returns 404", func() {
		s.scans.result = nil
		s.scans.err = commands.ErrQRCodeNotFound
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/scans", s.scanRequestBody(), "")
		s.Equal(http.StatusNotFound, rec.Code)
		s.scans.err = nil
	})

	s.Run("missing qr_code_id returns 400", func() {
		body := testutil.DtoMap(s.T(), reqdto.ProcessScanRequest{QRCodeID: uuid.New()}, testutil.Field("qr_code_id", nil))
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/scans", body, "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("malformed order total returns 400", func() {
		body := s.scanRequestBody()
		body["order_total"] = "ten dollars"
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/scans", body, "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *ScanHandlerTestSuite) TestRecordReferralScan() {
	s.Run("success returns 201 with the scan id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/referral-scans",
			map[string]any{"referral_code": "AGENT-7"}, "")
		s.Equal(http.StatusCreated, rec.Code)

		var body resdto.ReferralScanResponse
		httptest.DecodeResponseBody(s.T(), rec.Body, &body)
		s.Equal(s.referrals.id, body.ID)
	})

	s.Run("missing referral_code returns 400", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/referral-scans", map[string]any{}, "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("rejected code returns 400", func() {
		// The command layer attaches the sentinel as a mark over the
		// domain error; the handler must still map it.
		s.referrals.err = errs.Mark(errs.New("referral code must not be empty"), commands.ErrDomainValidation)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/referral-scans",
			map[string]any{"referral_code": "AGENT-7"}, "")
		s.Equal(http.StatusBadRequest, rec.Code)
		s.referrals.err = nil
	})
}
