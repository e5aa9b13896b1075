package integration_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/minhngvn/cinema-booking-api/api"
	"github.com/stretchr/testify/suite"
)

type HoldsSuite struct {
	BaseSuite
}

func TestHoldsSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	suite.Run(t, new(HoldsSuite))
}

func (s *HoldsSuite) do(method, url string, body io.Reader, headers map[string]string, cookies []*http.Cookie) *http.Response {
	req, err := prepareRequest(method, url, body, headers, cookies)
	s.Require().NoError(err)

	w := httptest.NewRecorder()
	s.app.App.Routes().ServeHTTP(w, req)

	return w.Result()
}

func (s *HoldsSuite) seatAvailability(showtimeID int, cookies []*http.Cookie) map[string]bool {
	res := s.do(http.MethodGet, fmt.Sprintf("/showtimes/%d/seats", showtimeID), nil, nil, cookies)
	defer res.Body.Close()
	s.Require().Equal(http.StatusOK, res.StatusCode)

	var seatMap api.SeatMapResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&seatMap))

	availability := make(map[string]bool)
	for _, row := range seatMap.SeatRows {
		for _, seat := range row.Seats {
			availability[seat.Label] = seat.Available
		}
	}

	return availability
}

func (s *HoldsSuite) TestHoldLifecycle() {
	cinema := seedCinema(s.T(), s.app, []string{"F1", "F2", "F3"}, time.Now().Add(24*time.Hour))
	holdURL := fmt.Sprintf("/showtimes/%d/hold", cinema.ShowtimeID)

	// Everything starts available.
	availability := s.seatAvailability(cinema.ShowtimeID, nil)
	s.Equal(map[string]bool{"F1": true, "F2": true, "F3": true}, availability)

	// A guest holds two seats; the session cookie identifies the hold owner.
	res := s.do(http.MethodPost, holdURL, strings.NewReader(`{"seats": ["F1", "F2"]}`), nil, nil)
	defer res.Body.Close()
	s.Require().Equal(http.StatusOK, res.StatusCode)

	guestCookies := res.Cookies()
	s.Require().NotEmpty(guestCookies)

	var holdResp api.HoldResponse
	s.Require().NoError(json.NewDecoder(res.Body).Decode(&holdResp))
	s.Equal(cinema.ShowtimeID, holdResp.Hold.ShowtimeId)
	s.Len(holdResp.Hold.Seats, 2)
	s.Equal("100", holdResp.Hold.TotalPrice.String())

	// Other visitors see the held seats as taken.
	availability = s.seatAvailability(cinema.ShowtimeID, nil)
	s.Equal(map[string]bool{"F1": false, "F2": false, "F3": true}, availability)

	// A second hold on the same seats loses the race.
	res = s.do(http.MethodPost, holdURL, strings.NewReader(`{"seats": ["F2", "F3"]}`), nil, nil)
	defer res.Body.Close()
	s.Equal(http.StatusConflict, res.StatusCode)

	// A booking by someone else cannot take a held seat either.
	_, authHeader := seedUser(s.T(), s.app, "intruder@example.com")
	res = s.do(
		http.MethodPost,
		fmt.Sprintf("/showtimes/%d/bookings", cinema.ShowtimeID),
		bookingBody([]string{"F1"}, "50.00"),
		map[string]string{"Authorization": authHeader},
		nil,
	)
	defer res.Body.Close()
	s.Equal(http.StatusConflict, res.StatusCode)

	// Releasing the hold frees the seats for everyone.
	res = s.do(http.MethodDelete, holdURL, nil, nil, guestCookies)
	defer res.Body.Close()
	s.Require().Equal(http.StatusNoContent, res.StatusCode)

	availability = s.seatAvailability(cinema.ShowtimeID, nil)
	s.Equal(map[string]bool{"F1": true, "F2": true, "F3": true}, availability)
}

func (s *HoldsSuite) TestDeleteHoldWithoutHold() {
	cinema := seedCinema(s.T(), s.app, []string{"G1"}, time.Now().Add(24*time.Hour))

	res := s.do(http.MethodDelete, fmt.Sprintf("/showtimes/%d/hold", cinema.ShowtimeID), nil, nil, nil)
	defer res.Body.Close()

	s.Equal(http.StatusNotFound, res.StatusCode)
}
