package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/minhngvn/cinema-booking-api/api"
	"github.com/minhngvn/cinema-booking-api/internal/auth"
	"github.com/minhngvn/cinema-booking-api/internal/mailer"
	"github.com/minhngvn/cinema-booking-api/internal/mocks"
	"github.com/minhngvn/cinema-booking-api/internal/validator"
)

func newTestApplication(opts ...func(*Application)) *Application {
	app := &Application{
		config:    Config{Env: "test"},
		validator: validator.NewValidator(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		tokens:    auth.NewTokenManager("test-secret", time.Hour),
		userRepo:  &mocks.MockUserRepo{},
		tokenRepo: &mocks.MockTokenRepo{},
		mailer:    mailer.NewMockMailer(),
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	var reader io.Reader

	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

// setURLParam injects a chi route parameter so handlers can be exercised
// without mounting the full router.
func setURLParam(r *http.Request, name, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}

	rctx.URLParams.Add(name, value)

	return r
}

func withUser(r *http.Request, userId int) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), SessionKeyUserId, userId))
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantErrMessage string) {
	if wantStatus >= 200 && wantStatus < 300 {
		return
	}

	switch wantStatus {
	case http.StatusUnprocessableEntity:
		var validationResp api.ValidationErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&validationResp); err != nil {
			// Not every 422 is a field validation failure.
			return
		}

		if len(validationResp.ValidationErrors) == 0 {
			if wantErrMessage != "" && validationResp.Message != wantErrMessage {
				t.Errorf("Error message = %v, want %v", validationResp.Message, wantErrMessage)
			}
			return
		}

		errorSet := make(map[string]bool)
		for _, vErr := range validationResp.ValidationErrors {
			errorSet[vErr.Issue] = true
		}

		if wantErrMessage != "" && !errorSet[wantErrMessage] {
			t.Errorf("Expected validation error message '%s' not found in response", wantErrMessage)
		}

	default:
		var errorResp api.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}

		if wantErrMessage != "" && errorResp.Message != wantErrMessage {
			t.Errorf("Error message = %v, want %v", errorResp.Message, wantErrMessage)
		}
	}
}

func ptr[T any](v T) *T {
	return &v
}
