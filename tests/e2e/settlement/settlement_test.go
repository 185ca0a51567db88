//go:build e2e

package settlement_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"scanledger/internal/domain/user"
	"scanledger/internal/handler/dto/request"
	"scanledger/internal/handler/dto/response"
	"scanledger/tests/common/authtest"
	"scanledger/tests/common/dbtest"
	"scanledger/tests/common/httptest"
	"scanledger/tests/e2e"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	settlementsURL = "/api/settlements"
	prorationURL   = "/api/billing/prorate-refund"
)

type SettlementSuite struct {
	e2e.SharedSuite
}

func (s *SettlementSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()
}

func TestSettlementSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(SettlementSuite))
}

func (s *SettlementSuite) createBusinessAndLogin(email string) (uuid.UUID, string) {
	t := s.T()
	ownerID := dbtest.CreateTestUser(t, s.DB, email, string(user.RoleBusiness))
	businessID := dbtest.CreateTestBusiness(t, s.DB, ownerID, "Settlement Test Business")
	token := authtest.LoginUser(t, s.Router, email, "password123")
	return businessID, token
}

func (s *SettlementSuite) TestSettleTransaction() {
	s.Run("Normal case: settles and stores the breakdown", func() {
		t := s.T()
		businessID, token := s.createBusinessAndLogin("owner-settle1@example.com")

		req := request.SettleTransactionRequest{
			TransactionID:   uuid.New(),
			GrossAmount:     "2500.00",
			TransactionType: "purchase",
			BusinessID:      businessID,
		}
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, settlementsURL, req, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var body response.BreakdownResponse
		httptest.DecodeResponseBody(t, w.Body, &body)

		expected := &response.BreakdownResponse{
			TransactionID:      req.TransactionID,
			Gross:              "2500.00",
			PlatformCommission: "187.50",
			BusinessPayout:     "2312.50",
			AgentCommission:    "0.00",
			OverrideCommission: "0.00",
		}
		if diff := cmp.Diff(expected, &body); diff != "" {
			t.Errorf("Breakdown mismatch (-want +got):\n%s", diff)
		}

		gw := httptest.PerformRequest(t, s.Router, http.MethodGet,
			settlementsURL+"/"+req.TransactionID.String(), nil, token)
		require.Equal(t, http.StatusOK, gw.Code, gw.Body.String())

		var stored response.BreakdownResponse
		httptest.DecodeResponseBody(t, gw.Body, &stored)
		require.Equal(t, "187.50", stored.PlatformCommission)
		require.Equal(t, "2312.50", stored.BusinessPayout)
	})

	s.Run("Normal case: replay returns the stored breakdown with 200", func() {
		t := s.T()
		businessID, token := s.createBusinessAndLogin("owner-settle2@example.com")

		req := request.SettleTransactionRequest{
			TransactionID:   uuid.New(),
			GrossAmount:     "100.00",
			TransactionType: "purchase",
			BusinessID:      businessID,
		}
		first := httptest.PerformRequest(t, s.Router, http.MethodPost, settlementsURL, req, token)
		require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

		second := httptest.PerformRequest(t, s.Router, http.MethodPost, settlementsURL, req, token)
		require.Equal(t, http.StatusOK, second.Code, second.Body.String())

		var body response.BreakdownResponse
		httptest.DecodeResponseBody(t, second.Body, &body)
		require.True(t, body.IsReplayed)
		require.Equal(t, "7.50", body.PlatformCommission)

		var txnCount int
		err := s.DB.QueryRow(context.Background(),
			"SELECT count(*) FROM transactions WHERE id = $1", req.TransactionID).Scan(&txnCount)
		require.NoError(t, err)
		require.Equal(t, 1, txnCount)

		// A replay with a different amount still reports the gross that
		// settled, so the breakdown stays internally consistent.
		req.GrossAmount = "250.00"
		third := httptest.PerformRequest(t, s.Router, http.MethodPost, settlementsURL, req, token)
		require.Equal(t, http.StatusOK, third.Code, third.Body.String())

		var mismatched response.BreakdownResponse
		httptest.DecodeResponseBody(t, third.Body, &mismatched)
		require.True(t, mismatched.IsReplayed)
		require.Equal(t, "100.00", mismatched.Gross)
		require.Equal(t, "7.50", mismatched.PlatformCommission)
		require.Equal(t, "92.50", mismatched.BusinessPayout)
	})

	s.Run("Normal case: agent commission lands in pending earnings", func() {
		t := s.T()
		businessID, token := s.createBusinessAndLogin("owner-settle3@example.com")

		agentUserID := dbtest.CreateTestUser(t, s.DB, "agent-settle@example.com", string(user.RoleAgent))
		recruiterUserID := dbtest.CreateTestUser(t, s.DB, "recruiter-settle@example.com", string(user.RoleAgent))
		recruiterID := dbtest.CreateTestAgent(t, s.DB, recruiterUserID, "REC-E2E", nil, nil)
		agentID := dbtest.CreateTestAgent(t, s.DB, agentUserID, "AGT-E2E", nil, &recruiterID)

		req := request.SettleTransactionRequest{
			TransactionID:   uuid.New(),
			GrossAmount:     "2500.00",
			TransactionType: "purchase",
			BusinessID:      businessID,
			AgentID:         &agentID,
		}
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, settlementsURL, req, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var body response.BreakdownResponse
		httptest.DecodeResponseBody(t, w.Body, &body)
		require.Equal(t, "18.75", body.AgentCommission)
		require.Equal(t, "0.94", body.OverrideCommission)

		var agentPending, recruiterPending string
		err := s.DB.QueryRow(context.Background(),
			"SELECT pending_earnings::text FROM sales_agents WHERE id = $1", agentID).Scan(&agentPending)
		require.NoError(t, err)
		require.Equal(t, "18.75", agentPending)

		err = s.DB.QueryRow(context.Background(),
			"SELECT pending_earnings::text FROM sales_agents WHERE id = $1", recruiterID).Scan(&recruiterPending)
		require.NoError(t, err)
		require.Equal(t, "0.94", recruiterPending)
	})

	s.Run("Error case: unknown agent returns 404", func() {
		t := s.T()
		businessID, token := s.createBusinessAndLogin("owner-settle4@example.com")

		agentID := uuid.New()
		req := request.SettleTransactionRequest{
			TransactionID:   uuid.New(),
			GrossAmount:     "100.00",
			TransactionType: "purchase",
			BusinessID:      businessID,
			AgentID:         &agentID,
		}
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, settlementsURL, req, token)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	s.Run("Error case: non-positive gross returns 422", func() {
		t := s.T()
		businessID, token := s.createBusinessAndLogin("owner-settle5@example.com")

		req := request.SettleTransactionRequest{
			TransactionID:   uuid.New(),
			GrossAmount:     "-5.00",
			TransactionType: "refund",
			BusinessID:      businessID,
		}
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, settlementsURL, req, token)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	s.Run("Error case: customers may not settle", func() {
		t := s.T()
		dbtest.CreateTestUser(t, s.DB, "customer-settle@example.com", string(user.RoleCustomer))
		token := authtest.LoginUser(t, s.Router, "customer-settle@example.com", "password123")

		req := request.SettleTransactionRequest{
			TransactionID:   uuid.New(),
			GrossAmount:     "100.00",
			TransactionType: "purchase",
			BusinessID:      uuid.New(),
		}
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, settlementsURL, req, token)
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	s.Run("Concurrency: concurrent replays settle exactly once", func() {
		t := s.T()
		businessID, token := s.createBusinessAndLogin("owner-settle6@example.com")

		req := request.SettleTransactionRequest{
			TransactionID:   uuid.New(),
			GrossAmount:     "100.00",
			TransactionType: "purchase",
			BusinessID:      businessID,
		}

		const attempts = 8
		var wg sync.WaitGroup
		codes := make(chan int, attempts)
		for range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				w := httptest.PerformRequest(t, s.Router, http.MethodPost, settlementsURL, req, token)
				codes <- w.Code
			}()
		}
		wg.Wait()
		close(codes)

		created := 0
		for code := range codes {
			switch code {
			case http.StatusCreated:
				created++
			case http.StatusOK, http.StatusConflict:
				// replayed or lost the insert race mid-flight
			default:
				t.Fatalf("unexpected status %d", code)
			}
		}
		require.Equal(t, 1, created, "exactly one request may create the settlement")

		var txnCount, breakdownCount int
		err := s.DB.QueryRow(context.Background(),
			"SELECT count(*) FROM transactions WHERE id = $1", req.TransactionID).Scan(&txnCount)
		require.NoError(t, err)
		require.Equal(t, 1, txnCount)

		err = s.DB.QueryRow(context.Background(),
			"SELECT count(*) FROM commission_breakdowns WHERE transaction_id = $1", req.TransactionID).Scan(&breakdownCount)
		require.NoError(t, err)
		require.Equal(t, 1, breakdownCount)
	})
}

func (s *SettlementSuite) TestSummary() {
	s.Run("Normal case: aggregates settlements over the period", func() {
		t := s.T()
		businessID, token := s.createBusinessAndLogin("owner-summary@example.com")

		for _, gross := range []string{"100.00", "200.00"} {
			req := request.SettleTransactionRequest{
				TransactionID:   uuid.New(),
				GrossAmount:     gross,
				TransactionType: "purchase",
				BusinessID:      businessID,
			}
			w := httptest.PerformRequest(t, s.Router, http.MethodPost, settlementsURL, req, token)
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		}

		adminToken := authtest.CreateAndLogin(t, s.DB, s.Router, "admin-summary@example.com", string(user.RoleAdmin))

		from := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
		to := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
		w := httptest.PerformRequest(t, s.Router, http.MethodGet,
			settlementsURL+"/summary?from="+from+"&to="+to, nil, adminToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body response.CommissionSummaryResponse
		httptest.DecodeResponseBody(t, w.Body, &body)
		require.Equal(t, int64(2), body.TransactionCount)
		require.Equal(t, "300.00", body.GrossTotal)
		require.Equal(t, "22.50", body.PlatformTotal)

		bw := httptest.PerformRequest(t, s.Router, http.MethodGet,
			settlementsURL+"/summary?from="+from+"&to="+to, nil, token)
		require.Equal(t, http.StatusForbidden, bw.Code, "summary is admin only")
	})
}

func (s *SettlementSuite) TestProrateRefund() {
	s.Run("Normal case: splits a period by days used", func() {
		t := s.T()
		_, token := s.createBusinessAndLogin("owner-prorate@example.com")

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, prorationURL,
			request.ProrateRefundRequest{OriginalAmount: "29.99", DaysUsed: 7, TotalDays: 30}, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body response.ProrateRefundResponse
		httptest.DecodeResponseBody(t, w.Body, &body)
		require.Equal(t, "7.00", body.UsedAmount)
		require.Equal(t, "22.99", body.RefundAmount)
	})

	s.Run("Error case: days used beyond the period returns 422", func() {
		t := s.T()
		_, token := s.createBusinessAndLogin("owner-prorate2@example.com")

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, prorationURL,
			request.ProrateRefundRequest{OriginalAmount: "29.99", DaysUsed: 31, TotalDays: 30}, token)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
