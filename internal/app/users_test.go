package app

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/minhngvn/cinema-booking-api/api"
	"github.com/minhngvn/cinema-booking-api/internal/domain"
	"github.com/minhngvn/cinema-booking-api/internal/mocks"
	"github.com/stretchr/testify/suite"
)

type UserTestSuite struct {
	suite.Suite
	app      *Application
	userRepo *mocks.MockUserRepo
}

func (s *UserTestSuite) SetupTest() {
	s.userRepo = &mocks.MockUserRepo{}

	s.app = newTestApplication(func(a *Application) {
		a.userRepo = s.userRepo
	})
}

func TestUserSuite(t *testing.T) {
	suite.Run(t, new(UserTestSuite))
}

func (s *UserTestSuite) TestGetCurrentUser() {
	tests := []struct {
		name           string
		setupMocks     func()
		wantStatus     int
		wantErrMessage string
	}{
		{
			name: "should return 404 when user no longer exists",
			setupMocks: func() {
				s.userRepo.GetByIdFunc = func(ctx context.Context, id int) (*domain.User, error) {
					return nil, domain.ErrRecordNotFound
				}
			},
			wantStatus:     http.StatusNotFound,
			wantErrMessage: ErrNotFound,
		},
		{
			name: "should return the current user",
			setupMocks: func() {
				s.userRepo.GetByIdFunc = func(ctx context.Context, id int) (*domain.User, error) {
					return &domain.User{ID: id, FirstName: "Jo", Email: testEmail, Activated: true}, nil
				}
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			if tt.setupMocks != nil {
				tt.setupMocks()
			}

			w, r := executeRequest(s.T(), http.MethodGet, "/users/me", nil)
			r = withUser(r, 1)

			s.app.GetCurrentUser(w, r)

			s.Equal(tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusOK {
				var resp api.UserResponse
				s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
				s.Equal(1, resp.Id)
				s.Equal("Jo", resp.FirstName)
				return
			}

			checkErrorResponse(s.T(), w, tt.wantStatus, tt.wantErrMessage)
		})
	}
}

func (s *UserTestSuite) TestUpdateUser() {
	tests := []struct {
		name           string
		input          api.UpdateUserRequest
		setupMocks     func()
		wantStatus     int
		wantErrMessage string
	}{
		{
			name:           "should fail when first name contains non-letters",
			input:          api.UpdateUserRequest{FirstName: ptr("Jo123")},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "must contain only letters",
		},
		{
			name:  "should return conflict when user changed concurrently",
			input: api.UpdateUserRequest{FirstName: ptr("Joanna")},
			setupMocks: func() {
				s.userRepo.GetByIdFunc = func(ctx context.Context, id int) (*domain.User, error) {
					return &domain.User{ID: id, FirstName: "Jo", LastName: "Smith"}, nil
				}
				s.userRepo.UpdateFunc = func(ctx context.Context, user *domain.User) error {
					return domain.ErrEditConflict
				}
			},
			wantStatus:     http.StatusConflict,
			wantErrMessage: ErrEditConflict,
		},
		{
			name:  "should patch only the provided fields",
			input: api.UpdateUserRequest{FirstName: ptr("Joanna")},
			setupMocks: func() {
				s.userRepo.GetByIdFunc = func(ctx context.Context, id int) (*domain.User, error) {
					return &domain.User{ID: id, FirstName: "Jo", LastName: "Smith"}, nil
				}
				s.userRepo.UpdateFunc = func(ctx context.Context, user *domain.User) error {
					s.Equal("Joanna", user.FirstName)
					s.Equal("Smith", user.LastName)
					user.Version++
					return nil
				}
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			if tt.setupMocks != nil {
				tt.setupMocks()
			}

			w, r := executeRequest(s.T(), http.MethodPatch, "/users/me", tt.input)
			r = withUser(r, 1)

			s.app.UpdateUser(w, r)

			s.Equal(tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusOK {
				var resp api.UserResponse
				s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
				s.Equal("Joanna", resp.FirstName)
				s.Equal("Smith", resp.LastName)
				s.Equal(1, resp.Version)
				return
			}

			checkErrorResponse(s.T(), w, tt.wantStatus, tt.wantErrMessage)
		})
	}
}
