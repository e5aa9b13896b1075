package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/minhngvn/cinema-booking-api/api"
	appvalidator "github.com/minhngvn/cinema-booking-api/internal/validator"
)

const (
	ErrInternalServer = "The server encountered a problem and could not process your request"
	ErrNotFound       = "The requested resource not found"
	ErrEditConflict   = "Unable to complete the request due to a conflict, please try again"
	ErrSeatConflict   = "Some of the selected seats have just been booked by another customer"
	ErrBadCredentials = "Invalid email or password"
	ErrUnauthorized   = "You must be authenticated to access this resource"
)

func (app *Application) logError(r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.Error(err.Error(), "method", method, "uri", uri)
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *Application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := api.ErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, ErrNotFound)
}

func (app *Application) notFoundResponseWithErr(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusNotFound, err.Error())
}

func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *Application) editConflictResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusConflict, ErrEditConflict)
}

func (app *Application) editConflictResponseWithErr(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusConflict, err.Error())
}

// seatConflictResponse reports which of the requested seats were booked by
// someone else, so the client can refresh its seat map and reselect.
func (app *Application) seatConflictResponse(w http.ResponseWriter, r *http.Request, seats []string) {
	resp := api.ErrorResponse{
		Message:   ErrSeatConflict,
		Seats:     seats,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	err := app.writeJSON(w, http.StatusConflict, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) invalidCredentialsResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusUnauthorized, ErrBadCredentials)
}

func (app *Application) unauthorizedAccessResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")

	app.errorResponse(w, r, http.StatusUnauthorized, ErrUnauthorized)
}

func (app *Application) inactiveAccountResponse(w http.ResponseWriter, r *http.Request) {
	message := "Your account must be activated to access this resource"
	app.errorResponse(w, r, http.StatusForbidden, message)
}

func (app *Application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	message := "Rate limit exceeded"
	app.errorResponse(w, r, http.StatusTooManyRequests, message)
}

func (app *Application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		app.serverErrorResponse(w, r, err)
		return
	}

	fieldErrors := make([]api.ValidationError, len(validationErrors))
	for i, fieldError := range validationErrors {
		fieldErrors[i] = api.ValidationError{
			Field: fieldError.Field(),
			Issue: appvalidator.ValidationMessage(fieldError),
		}
	}

	resp := api.ValidationErrorResponse{
		Message:          "Some fields failed validation",
		ValidationErrors: fieldErrors,
		RequestId:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
	}

	writeErr := app.writeJSON(w, http.StatusUnprocessableEntity, resp, nil)
	if writeErr != nil {
		app.logError(r, writeErr)
		w.WriteHeader(500)
	}
}
