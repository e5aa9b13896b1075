package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/minhngvn/cinema-booking-api/internal/domain"
	"github.com/stretchr/testify/require"
)

func prepareRequest(method, path string, body io.Reader, headers map[string]string, cookies []*http.Cookie) (*http.Request, error) {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	for _, c := range cookies {
		req.AddCookie(c)
	}

	return req, nil
}

func compareResponse(t *testing.T, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indeterministic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		return k == "timestamp" || k == "requestId" || k == "createdAt" || k == "code"
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

// seedUser inserts an activated user and returns its id together with a
// bearer token accepted by the authentication middleware.
func seedUser(t testing.TB, app *TestApp, email string) (int, string) {
	var user domain.User
	require.NoError(t, user.Password.Set("Pa55word!A"))

	var userID int
	err := app.DB.QueryRow(
		context.Background(),
		`INSERT INTO users (first_name, last_name, email, password_hash, activated)
		 VALUES ('Test', 'User', $1, $2, true)
		 RETURNING id`,
		email, user.Password.Hash,
	).Scan(&userID)
	require.NoError(t, err)

	token, _, err := app.Tokens.Issue(userID)
	require.NoError(t, err)

	return userID, "Bearer " + token
}

type testCinema struct {
	MovieID    int
	TheaterID  int
	HallID     int
	ShowtimeID int
	SeatIDs    map[string]int
}

// seedCinema creates a movie, a theater with one hall and the given seat
// labels, and a showtime with every seat available.
func seedCinema(t testing.TB, app *TestApp, seatLabels []string, startTime time.Time) testCinema {
	ctx := context.Background()
	cinema := testCinema{SeatIDs: make(map[string]int, len(seatLabels))}

	err := app.DB.QueryRow(ctx,
		`INSERT INTO movies (title, description, release_date, duration_min)
		 VALUES ('Interstellar', 'A space epic', '2014-11-07', 169)
		 RETURNING id`,
	).Scan(&cinema.MovieID)
	require.NoError(t, err)

	err = app.DB.QueryRow(ctx,
		`INSERT INTO theaters (name, city) VALUES ('Downtown Cinema', 'Hanoi') RETURNING id`,
	).Scan(&cinema.TheaterID)
	require.NoError(t, err)

	err = app.DB.QueryRow(ctx,
		`INSERT INTO halls (theater_id, name) VALUES ($1, 'Hall 1') RETURNING id`,
		cinema.TheaterID,
	).Scan(&cinema.HallID)
	require.NoError(t, err)

	for _, label := range seatLabels {
		seatID, err := domain.ParseSeatID(label)
		require.NoError(t, err)

		var id int
		err = app.DB.QueryRow(ctx,
			`INSERT INTO seats (hall_id, seat_row, seat_number) VALUES ($1, $2, $3) RETURNING id`,
			cinema.HallID, seatID.Row, seatID.Number,
		).Scan(&id)
		require.NoError(t, err)

		cinema.SeatIDs[label] = id
	}

	err = app.DB.QueryRow(ctx,
		`INSERT INTO showtimes (movie_id, hall_id, start_time, base_price)
		 VALUES ($1, $2, $3, 50.00)
		 RETURNING id`,
		cinema.MovieID, cinema.HallID, startTime,
	).Scan(&cinema.ShowtimeID)
	require.NoError(t, err)

	for _, id := range cinema.SeatIDs {
		_, err = app.DB.Exec(ctx,
			`INSERT INTO showtime_seats (showtime_id, seat_id) VALUES ($1, $2)`,
			cinema.ShowtimeID, id,
		)
		require.NoError(t, err)
	}

	return cinema
}

func bookingBody(seats []string, totalPrice string) io.Reader {
	payload := fmt.Sprintf(`{"seats": %s, "totalPrice": %s}`, mustJSON(seats), totalPrice)
	return strings.NewReader(payload)
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
