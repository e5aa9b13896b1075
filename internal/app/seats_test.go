package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/minhngvn/cinema-booking-api/api"
	"github.com/minhngvn/cinema-booking-api/internal/domain"
	"github.com/minhngvn/cinema-booking-api/internal/mocks"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type SeatMapTestSuite struct {
	suite.Suite
	app         *Application
	seatRepo    *mocks.MockSeatRepo
	redisClient *mocks.MockRedisClient
}

func (s *SeatMapTestSuite) SetupTest() {
	s.seatRepo = &mocks.MockSeatRepo{}
	s.redisClient = new(mocks.MockRedisClient)

	s.app = newTestApplication(func(a *Application) {
		a.seatRepo = s.seatRepo
		a.redis = s.redisClient
	})
}

func TestSeatMapSuite(t *testing.T) {
	suite.Run(t, new(SeatMapTestSuite))
}

func (s *SeatMapTestSuite) TestGetSeatMapByShowtime() {
	seatMap := func() *domain.ShowtimeSeats {
		return &domain.ShowtimeSeats{
			ShowtimeID:  testShowtimeID,
			TheaterID:   3,
			TheaterName: "Downtown Cinema",
			HallID:      4,
			HallName:    "Hall 1",
			BasePrice:   decimal.NewFromInt(50),
			Seats: []domain.Seat{
				{ID: 1, Row: "A", Number: 1, Type: "Standard", ExtraPrice: decimal.Zero, Available: true},
				{ID: 2, Row: "A", Number: 2, Type: "VIP", ExtraPrice: decimal.NewFromInt(15), Available: true},
				{ID: 3, Row: "B", Number: 1, Type: "Standard", ExtraPrice: decimal.Zero, Available: false},
			},
		}
	}

	tests := []struct {
		name           string
		showtimeID     string
		setupMocks     func()
		wantStatus     int
		wantErrMessage string
		wantResponse   *api.SeatMapResponse
	}{
		{
			name:           "should fail when showtime ID is invalid",
			showtimeID:     "abc",
			wantStatus:     http.StatusBadRequest,
			wantErrMessage: "invalid showtimeId parameter",
		},
		{
			name:       "should fail when database error occurs",
			showtimeID: "1",
			setupMocks: func() {
				s.seatRepo.GetSeatsByShowtimeFunc = func(ctx context.Context, showtimeID int) (*domain.ShowtimeSeats, error) {
					return nil, fmt.Errorf("database error")
				}
			},
			wantStatus:     http.StatusInternalServerError,
			wantErrMessage: ErrInternalServer,
		},
		{
			name:       "should return 404 when showtime does not exist",
			showtimeID: "1",
			setupMocks: func() {
				s.seatRepo.GetSeatsByShowtimeFunc = func(ctx context.Context, showtimeID int) (*domain.ShowtimeSeats, error) {
					return nil, domain.ErrRecordNotFound
				}
			},
			wantStatus:     http.StatusNotFound,
			wantErrMessage: ErrNotFound,
		},
		{
			name:       "should return 404 when showtime has no seats",
			showtimeID: "1",
			setupMocks: func() {
				s.seatRepo.GetSeatsByShowtimeFunc = func(ctx context.Context, showtimeID int) (*domain.ShowtimeSeats, error) {
					return &domain.ShowtimeSeats{}, nil
				}
			},
			wantStatus:     http.StatusNotFound,
			wantErrMessage: ErrNotFound,
		},
		{
			name:       "should fail when seat lock lookup fails",
			showtimeID: "1",
			setupMocks: func() {
				s.seatRepo.GetSeatsByShowtimeFunc = func(ctx context.Context, showtimeID int) (*domain.ShowtimeSeats, error) {
					return seatMap(), nil
				}
				s.redisClient.On("EvalSha", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(redis.NewCmdResult(nil, fmt.Errorf("redis error")))
			},
			wantStatus:     http.StatusInternalServerError,
			wantErrMessage: ErrInternalServer,
		},
		{
			name:       "should render held seats as unavailable",
			showtimeID: "1",
			setupMocks: func() {
				s.seatRepo.GetSeatsByShowtimeFunc = func(ctx context.Context, showtimeID int) (*domain.ShowtimeSeats, error) {
					return seatMap(), nil
				}
				s.redisClient.On("EvalSha", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(redis.NewCmdResult([]interface{}{int64(2)}, nil))
			},
			wantStatus: http.StatusOK,
			wantResponse: &api.SeatMapResponse{
				TheaterId:   3,
				TheaterName: "Downtown Cinema",
				HallId:      4,
				ShowtimeId:  testShowtimeID,
				BasePrice:   decimal.NewFromInt(50),
				SeatRows: []api.SeatRow{
					{
						Row: "A",
						Seats: []api.Seat{
							{Id: 1, Label: "A1", Number: 1, Type: "Standard", ExtraPrice: decimal.Zero, Available: true},
							{Id: 2, Label: "A2", Number: 2, Type: "VIP", ExtraPrice: decimal.NewFromInt(15), Available: false},
						},
					},
					{
						Row: "B",
						Seats: []api.Seat{
							{Id: 3, Label: "B1", Number: 1, Type: "Standard", ExtraPrice: decimal.Zero, Available: false},
						},
					},
				},
			},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			defer s.redisClient.AssertExpectations(s.T())

			if tt.setupMocks != nil {
				tt.setupMocks()
			}

			url := fmt.Sprintf("/showtimes/%s/seats", tt.showtimeID)
			w, r := executeRequest(s.T(), http.MethodGet, url, nil)
			r = setURLParam(r, "showtimeId", tt.showtimeID)

			s.app.GetSeatMapByShowtime(w, r)

			s.Equal(tt.wantStatus, w.Code)

			if tt.wantResponse != nil {
				var response api.SeatMapResponse
				err := json.NewDecoder(w.Body).Decode(&response)
				s.Require().NoError(err, "Failed to decode response")

				diff := cmp.Diff(tt.wantResponse, &response)
				s.Empty(diff, "Response mismatch (-want +got):\n%s", diff)
				return
			}

			checkErrorResponse(s.T(), w, tt.wantStatus, tt.wantErrMessage)
		})
	}
}
