//go:build e2e

package scan_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"scanledger/internal/domain/user"
	"scanledger/internal/handler/dto/request"
	"scanledger/internal/handler/dto/response"
	"scanledger/tests/common/authtest"
	"scanledger/tests/common/dbtest"
	"scanledger/tests/common/httptest"
	"scanledger/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	scansURL         = "/api/scans"
	referralScansURL = "/api/referral-scans"
	qrCodesURL       = "/api/qr-codes"
)

type ScanSuite struct {
	e2e.SharedSuite
}

func (s *ScanSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()
}

func TestScanSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(ScanSuite))
}

func (s *ScanSuite) createBusiness(email string) (uuid.UUID, string) {
	t := s.T()
	ownerID := dbtest.CreateTestUser(t, s.DB, email, string(user.RoleBusiness))
	businessID := dbtest.CreateTestBusiness(t, s.DB, ownerID, "Scan Test Business")
	token := authtest.LoginUser(t, s.Router, email, "password123")
	return businessID, token
}

func (s *ScanSuite) TestProcessScan() {
	s.Run("Normal case: anonymous discount scan applies the percentage", func() {
		t := s.T()
		businessID, _ := s.createBusiness("owner-scan1@example.com")
		codeID := dbtest.CreateTestQRCode(t, s.DB, businessID, "discount", 0)

		orderTotal := "120.00"
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, scansURL,
			request.ProcessScanRequest{QRCodeID: codeID, OrderTotal: &orderTotal}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body response.ScanResponse
		httptest.DecodeResponseBody(t, w.Body, &body)
		require.True(t, body.Admissible)
		require.Equal(t, "12.00", body.DiscountApplied)
		require.NotNil(t, body.ScanID)
	})

	s.Run("Normal case: authenticated loyalty scan records the customer", func() {
		t := s.T()
		businessID, _ := s.createBusiness("owner-scan2@example.com")
		codeID := dbtest.CreateTestQRCode(t, s.DB, businessID, "loyalty", 0)

		customerID := dbtest.CreateTestUser(t, s.DB, "customer-scan@example.com", string(user.RoleCustomer))
		token := authtest.LoginUser(t, s.Router, "customer-scan@example.com", "password123")

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, scansURL,
			request.ProcessScanRequest{QRCodeID: codeID}, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body response.ScanResponse
		httptest.DecodeResponseBody(t, w.Body, &body)
		require.True(t, body.Admissible)
		require.Equal(t, int32(25), body.PointsAwarded)

		var storedCustomer uuid.UUID
		err := s.DB.QueryRow(context.Background(),
			"SELECT customer_id FROM scans WHERE qr_code_id = $1", codeID).Scan(&storedCustomer)
		require.NoError(t, err)
		require.Equal(t, customerID, storedCustomer)
	})

	s.Run("Error case: inactive code is denied without a scan row", func() {
		t := s.T()
		businessID, token := s.createBusiness("owner-scan3@example.com")

		cw := httptest.PerformRequest(t, s.Router, http.MethodPost, qrCodesURL,
			request.CreateQRCodeRequest{BusinessID: businessID, CodeType: "info"}, token)
		require.Equal(t, http.StatusCreated, cw.Code, cw.Body.String())
		var created response.QRCodeResponse
		httptest.DecodeResponseBody(t, cw.Body, &created)

		dw := httptest.PerformRequest(t, s.Router, http.MethodPost,
			fmt.Sprintf("%s/%s/deactivate", qrCodesURL, created.ID), nil, token)
		require.Equal(t, http.StatusNoContent, dw.Code, dw.Body.String())

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, scansURL,
			request.ProcessScanRequest{QRCodeID: created.ID}, "")
		require.Equal(t, http.StatusOK, w.Code)

		var body response.ScanResponse
		httptest.DecodeResponseBody(t, w.Body, &body)
		require.False(t, body.Admissible)
		require.Equal(t, "INACTIVE", body.Reason)

		var scanCount int
		err := s.DB.QueryRow(context.Background(),
			"SELECT count(*) FROM scans WHERE qr_code_id = $1", created.ID).Scan(&scanCount)
		require.NoError(t, err)
		require.Zero(t, scanCount)
	})

	s.Run("Error case: unknown QR code returns 404", func() {
		t := s.T()
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, scansURL,
			request.ProcessScanRequest{QRCodeID: uuid.New()}, "")
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	s.Run("Concurrency: the scan limit never oversells", func() {
		t := s.T()
		businessID, _ := s.createBusiness("owner-race@example.com")

		const limit = 3
		const attempts = 12
		codeID := dbtest.CreateTestQRCode(t, s.DB, businessID, "info", limit)

		var wg sync.WaitGroup
		results := make(chan response.ScanResponse, attempts)
		for range attempts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				w := httptest.PerformRequest(t, s.Router, http.MethodPost, scansURL,
					request.ProcessScanRequest{QRCodeID: codeID}, "")
				if w.Code != http.StatusOK {
					return
				}
				var body response.ScanResponse
				httptest.DecodeResponseBody(t, w.Body, &body)
				results <- body
			}()
		}
		wg.Wait()
		close(results)

		admitted := 0
		denied := 0
		for body := range results {
			if body.Admissible {
				admitted++
			} else {
				denied++
				require.Equal(t, "LIMIT_REACHED", body.Reason)
			}
		}
		require.Equal(t, limit, admitted, "exactly scan_limit scans may be admitted")
		require.Equal(t, attempts-limit, denied)

		var scanCount, currentScans int
		err := s.DB.QueryRow(context.Background(),
			"SELECT count(*) FROM scans WHERE qr_code_id = $1", codeID).Scan(&scanCount)
		require.NoError(t, err)
		require.Equal(t, limit, scanCount, "rolled back scans must not leave rows behind")

		err = s.DB.QueryRow(context.Background(),
			"SELECT current_scans FROM qr_codes WHERE id = $1", codeID).Scan(&currentScans)
		require.NoError(t, err)
		require.Equal(t, limit, currentScans)
	})
}

func (s *ScanSuite) TestReferralConversion() {
	s.Run("Normal case: first scan with a referral code converts it and pays the bonus", func() {
		t := s.T()
		businessID, _ := s.createBusiness("owner-ref@example.com")
		codeID := dbtest.CreateTestQRCode(t, s.DB, businessID, "info", 0)

		agentUserID := dbtest.CreateTestUser(t, s.DB, "agent-ref@example.com", string(user.RoleAgent))
		agentID := dbtest.CreateTestAgent(t, s.DB, agentUserID, "REF-E2E-1", nil, nil)

		rw := httptest.PerformRequest(t, s.Router, http.MethodPost, referralScansURL,
			request.RecordReferralScanRequest{ReferralCode: "REF-E2E-1"}, "")
		require.Equal(t, http.StatusCreated, rw.Code, rw.Body.String())

		referralCode := "REF-E2E-1"
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, scansURL,
			request.ProcessScanRequest{QRCodeID: codeID, ReferralCode: &referralCode}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body response.ScanResponse
		httptest.DecodeResponseBody(t, w.Body, &body)
		require.True(t, body.Admissible)
		require.True(t, body.ReferralConverted)

		// Signup bonus 10.00: platform 0.75, agent share floored to 0.50.
		var pending string
		err := s.DB.QueryRow(context.Background(),
			"SELECT pending_earnings::text FROM sales_agents WHERE id = $1", agentID).Scan(&pending)
		require.NoError(t, err)
		require.Equal(t, "0.50", pending)

		// A second scan with the same code finds nothing left to convert.
		w2 := httptest.PerformRequest(t, s.Router, http.MethodPost, scansURL,
			request.ProcessScanRequest{QRCodeID: codeID, ReferralCode: &referralCode}, "")
		require.Equal(t, http.StatusOK, w2.Code)

		var body2 response.ScanResponse
		httptest.DecodeResponseBody(t, w2.Body, &body2)
		require.True(t, body2.Admissible)
		require.False(t, body2.ReferralConverted)

		err = s.DB.QueryRow(context.Background(),
			"SELECT pending_earnings::text FROM sales_agents WHERE id = $1", agentID).Scan(&pending)
		require.NoError(t, err)
		require.Equal(t, "0.50", pending, "bonus must be paid exactly once")
	})

	s.Run("Normal case: scan without a pending referral still succeeds", func() {
		t := s.T()
		businessID, _ := s.createBusiness("owner-ref2@example.com")
		codeID := dbtest.CreateTestQRCode(t, s.DB, businessID, "info", 0)

		referralCode := "NEVER-SCANNED"
		w := httptest.PerformRequest(t, s.Router, http.MethodPost, scansURL,
			request.ProcessScanRequest{QRCodeID: codeID, ReferralCode: &referralCode}, "")
		require.Equal(t, http.StatusOK, w.Code)

		var body response.ScanResponse
		httptest.DecodeResponseBody(t, w.Body, &body)
		require.True(t, body.Admissible)
		require.False(t, body.ReferralConverted)
	})
}
