package integration_test

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/minhngvn/cinema-booking-api/api"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

type PaymentsSuite struct {
	BaseSuite
}

func TestPaymentsSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	suite.Run(t, new(PaymentsSuite))
}

func (s *PaymentsSuite) do(method, url string, body io.Reader, headers map[string]string, cookies []*http.Cookie) *http.Response {
	req, err := prepareRequest(method, url, body, headers, cookies)
	s.Require().NoError(err)

	w := httptest.NewRecorder()
	s.app.App.Routes().ServeHTTP(w, req)

	return w.Result()
}

// signedEventBody marshals a checkout.session event the way Stripe delivers
// it and returns the body along with a matching Stripe-Signature header.
func (s *PaymentsSuite) signedEventBody(eventType, checkoutSessionID string, metadata map[string]string) ([]byte, string) {
	payload, err := json.Marshal(map[string]any{
		"id":          "evt_integration_1",
		"api_version": stripe.APIVersion,
		"type":        eventType,
		"data": map[string]any{
			"object": map[string]any{
				"id":       checkoutSessionID,
				"object":   "checkout.session",
				"metadata": metadata,
			},
		},
	})
	s.Require().NoError(err)

	now := time.Now()
	sig := webhook.ComputeSignature(now, payload, "whsec_integration_test")

	return payload, fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig))
}

func (s *PaymentsSuite) sessionToken(cookies []*http.Cookie) string {
	for _, c := range cookies {
		if c.Name == "session_id" {
			return c.Value
		}
	}

	s.Require().FailNow("no session cookie in response")
	return ""
}

func (s *PaymentsSuite) paymentStatus(checkoutSessionID string) string {
	var status string
	err := s.app.DB.QueryRow(
		context.Background(),
		`SELECT status FROM payments WHERE checkout_session_id = $1`,
		checkoutSessionID,
	).Scan(&status)
	s.Require().NoError(err)

	return status
}

func (s *PaymentsSuite) TestCheckoutLifecycle() {
	cinema := seedCinema(s.T(), s.app, []string{"H1", "H2"}, time.Now().Add(24*time.Hour))
	userID, authHeader := seedUser(s.T(), s.app, "checkout@example.com")

	// The guest picks seats; the hold is bound to the session cookie.
	res := s.do(
		http.MethodPost,
		fmt.Sprintf("/showtimes/%d/hold", cinema.ShowtimeID),
		strings.NewReader(`{"seats": ["H1", "H2"]}`),
		nil,
		nil,
	)
	defer res.Body.Close()
	s.Require().Equal(http.StatusOK, res.StatusCode)

	cookies := res.Cookies()
	sessionToken := s.sessionToken(cookies)

	const checkoutSessionID = "cs_integration_1"

	s.app.PaymentProvider.
		On("CreateCheckoutSession", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&stripe.CheckoutSession{
			ID:  checkoutSessionID,
			URL: "https://checkout.stripe.test/" + checkoutSessionID,
		}, nil).
		Once()

	res = s.do(
		http.MethodPost,
		"/checkout/session",
		nil,
		map[string]string{"Authorization": authHeader},
		cookies,
	)
	defer res.Body.Close()
	s.Require().Equal(http.StatusOK, res.StatusCode)

	var checkoutResp api.CheckoutSessionResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&checkoutResp))
	s.Equal("https://checkout.stripe.test/"+checkoutSessionID, checkoutResp.RedirectUrl)

	// A pending payment carries the hold total until Stripe confirms it.
	s.Equal("pending", s.paymentStatus(checkoutSessionID))

	var amount string
	err := s.app.DB.QueryRow(
		context.Background(),
		`SELECT amount::text FROM payments WHERE checkout_session_id = $1`,
		checkoutSessionID,
	).Scan(&amount)
	s.Require().NoError(err)
	s.Equal("100.00", amount)

	// Stripe reports the completed session; the booking commits.
	body, signature := s.signedEventBody("checkout.session.completed", checkoutSessionID, map[string]string{
		"session_id":  sessionToken,
		"user_id":     strconv.Itoa(userID),
		"showtime_id": strconv.Itoa(cinema.ShowtimeID),
		"seats":       "H1,H2",
	})

	res = s.do(http.MethodPost, "/webhook", strings.NewReader(string(body)), map[string]string{
		"Stripe-Signature": signature,
	}, nil)
	defer res.Body.Close()
	s.Require().Equal(http.StatusOK, res.StatusCode)

	s.Equal("completed", s.paymentStatus(checkoutSessionID))

	var bookedCount int
	err = s.app.DB.QueryRow(
		context.Background(),
		`SELECT count(*) FROM showtime_seats WHERE showtime_id = $1 AND status = 'booked' AND booked_by = $2`,
		cinema.ShowtimeID, userID,
	).Scan(&bookedCount)
	s.Require().NoError(err)
	s.Equal(2, bookedCount)

	var ticketCode string
	err = s.app.DB.QueryRow(
		context.Background(),
		`SELECT t.code::text
		 FROM tickets t
		 JOIN payments p ON t.payment_id = p.id
		 WHERE p.checkout_session_id = $1 AND t.user_id = $2`,
		checkoutSessionID, userID,
	).Scan(&ticketCode)
	s.Require().NoError(err)
	s.NotEmpty(ticketCode)

	// Confirmation side effects run from a goroutine.
	s.Require().Eventually(func() bool {
		for _, event := range s.app.Events.GetPublishedEvents() {
			if event.Code == ticketCode {
				return event.TotalPrice == "100.00" && len(event.Seats) == 2
			}
		}
		return false
	}, 2*time.Second, 20*time.Millisecond)

	s.Require().Eventually(func() bool {
		for _, email := range s.app.Mailer.GetSentEmails() {
			if email.Recipient == "checkout@example.com" && email.TemplateFile == "booking_confirmation.tmpl" {
				return true
			}
		}
		return false
	}, 2*time.Second, 20*time.Millisecond)
}

func (s *PaymentsSuite) TestWebhookRejectsBadSignature() {
	res := s.do(http.MethodPost, "/webhook", strings.NewReader(`{}`), map[string]string{
		"Stripe-Signature": "t=0,v1=deadbeef",
	}, nil)
	defer res.Body.Close()

	s.Equal(http.StatusBadRequest, res.StatusCode)
}
