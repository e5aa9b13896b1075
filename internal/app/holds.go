package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/minhngvn/cinema-booking-api/api"
	"github.com/minhngvn/cinema-booking-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	seatLockTTL = 10 * time.Minute
	holdTTL     = 10 * time.Minute
)

var lockSeatsScript = redis.NewScript(`
    -- KEYS = seat lock keys (e.g., seat_lock:123:1, seat_lock:123:2 etc.)
    -- ARGV = [sessionID, ttl]

    for i=1, #KEYS do
        if redis.call("EXISTS", KEYS[i]) == 1 then
            return {err = "seat already locked"} -- Return an error indicator
        end
    end

    for i=1, #KEYS do
        redis.call("SET", KEYS[i], ARGV[1], "EX", ARGV[2])
    end

    return "OK"
`)

func (app *Application) CreateHoldHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	showtimeID, err := app.readIDParam(r, "showtimeId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.CreateHoldRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	seatIDs := make([]domain.SeatID, len(input.Seats))
	for i, label := range input.Seats {
		seatIDs[i], err = domain.ParseSeatID(label)
		if err != nil {
			app.badRequestResponse(w, r, err)
			return
		}
	}

	sessionID := app.sessionManager.Token(r.Context())
	holdId, err := app.redis.Get(r.Context(), holdSessionKey(sessionID)).Result()
	if err != nil && err != redis.Nil {
		logger.Error("failed to check for existing hold in redis", "error", err)
		app.serverErrorResponse(w, r, err)
		return
	}

	if holdId != "" {
		logger.Warn("hold creation attempt rejected: a hold already exists for this session")
		app.badRequestResponse(w, r, fmt.Errorf("cannot create new hold if a hold already exists in session"))
		return
	}

	showtimeSeats, err := app.seatRepo.GetSeatsByShowtimeAndLabels(r.Context(), showtimeID, seatIDs)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if len(seatIDs) != len(showtimeSeats.Seats) {
		logger.Warn("hold creation failed: one or more requested seats do not exist for the showtime", "requested_seats", input.Seats)
		app.notFoundResponse(w, r)
		return
	}

	for _, seat := range showtimeSeats.Seats {
		if !seat.Available {
			logger.Warn("hold creation conflict: user selected an already booked seat", "seat_id", seat.ID)
			app.editConflictResponseWithErr(w, r, fmt.Errorf("some of the selected seats are already booked"))
			return
		}
	}

	dbSeatIds := make([]int, len(showtimeSeats.Seats))
	for i, seat := range showtimeSeats.Seats {
		dbSeatIds[i] = seat.ID
	}

	err = app.tryLockSeats(r.Context(), dbSeatIds, showtimeID, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSeatAlreadyReserved):
			logger.Warn("hold creation conflict due to race condition: user selected an already locked seat")
			app.editConflictResponseWithErr(w, r, fmt.Errorf("some of the selected seats are already reserved"))
		default:
			app.serverErrorResponse(w, r, fmt.Errorf("seats couldn't be acquired: %w", err))
		}

		return
	}

	hold, err := app.createHold(r.Context(), dbSeatIds, showtimeID, sessionID, showtimeSeats)
	if err != nil {
		logger.Error("hold creation process failed", "error", err)
		app.serverErrorResponse(w, r, fmt.Errorf("hold couldn't be created: %w", err))
		return
	}

	resp := api.HoldResponse{
		Hold: toApiHold(hold),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiHold(hold *domain.SeatHold) api.Hold {
	return api.Hold{
		ShowtimeId:   hold.ShowtimeID,
		MovieName:    hold.MovieTitle,
		TheaterName:  hold.TheaterName,
		HallName:     hold.HallName,
		ShowtimeDate: hold.Date.Format(time.RFC1123),
		Seats:        toApiHoldSeats(hold.Seats),
		HoldTime:     int(holdTTL.Seconds()),
		BasePrice:    hold.BasePrice,
		TotalPrice:   hold.TotalPrice,
	}
}

func toApiHoldSeats(holdSeats []domain.HoldSeat) []api.HoldSeat {
	apiHoldSeats := make([]api.HoldSeat, len(holdSeats))

	for i, v := range holdSeats {
		apiHoldSeats[i] = api.HoldSeat{
			Id:         v.Id,
			Label:      domain.SeatID{Row: v.Row, Number: v.Number}.String(),
			Type:       v.SeatType,
			ExtraPrice: v.ExtraPrice,
		}
	}

	return apiHoldSeats
}

func (app *Application) tryLockSeats(ctx context.Context, seatIDs []int, showtimeID int, sessionID string) error {
	keys := make([]string, len(seatIDs))
	for i, seatID := range seatIDs {
		keys[i] = seatLockKey(showtimeID, seatID)
	}

	err := lockSeatsScript.Run(ctx, app.redis, keys, sessionID, int(seatLockTTL.Seconds())).Err()
	if err != nil {
		if redis.HasErrorPrefix(err, "seat already locked") {
			return domain.ErrSeatAlreadyReserved
		}

		return err
	}

	return nil
}

func (app *Application) createHold(
	ctx context.Context,
	seatIDs []int,
	showtimeID int,
	sessionID string,
	showtimeSeats *domain.ShowtimeSeats) (*domain.SeatHold, error) {

	hold := domain.NewSeatHold(showtimeID, showtimeSeats)
	holdBytes, err := json.Marshal(hold)
	if err != nil {
		app.rollbackSeatLocks(ctx, showtimeID, seatIDs)
		return nil, err
	}

	holdPipe := app.redis.TxPipeline()

	seatIdInterfaces := make([]interface{}, len(seatIDs))
	for i, seatID := range seatIDs {
		seatIdInterfaces[i] = seatID
	}
	holdPipe.SAdd(ctx, seatSetKey(showtimeID), seatIdInterfaces...)

	holdPipe.Set(ctx, holdSessionKey(sessionID), hold.Id, holdTTL)
	holdPipe.Set(ctx, hold.Id, holdBytes, holdTTL)

	_, err = holdPipe.Exec(ctx)
	if err != nil {
		app.rollbackSeatLocks(ctx, showtimeID, seatIDs)
		return nil, err
	}

	return &hold, nil
}

func (app *Application) rollbackSeatLocks(ctx context.Context, showtimeID int, seatIDs []int) {
	lockKeys := make([]string, len(seatIDs))
	seatIDInterfaces := make([]interface{}, len(seatIDs))

	for i, seatID := range seatIDs {
		lockKeys[i] = seatLockKey(showtimeID, seatID)
		seatIDInterfaces[i] = seatID
	}

	pipe := app.redis.TxPipeline()
	pipe.Del(ctx, lockKeys...)
	pipe.SRem(ctx, seatSetKey(showtimeID), seatIDInterfaces...)

	_, err := pipe.Exec(ctx)
	if err != nil {
		app.logger.Error("failed to rollback seat locks", "error", err)
		return
	}
}

func holdSessionKey(sessionID string) string {
	return fmt.Sprintf("hold:%s", sessionID)
}

func seatLockKey(showtimeID, seatID int) string {
	return fmt.Sprintf("seat_lock:%d:%d", showtimeID, seatID)
}

func seatSetKey(showtimeID int) string {
	return fmt.Sprintf("seat_locks:%d", showtimeID)
}

func (app *Application) DeleteHoldHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	showtimeID, err := app.readIDParam(r, "showtimeId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	sessionID := app.sessionManager.Token(r.Context())

	holdId, err := app.redis.Get(r.Context(), holdSessionKey(sessionID)).Result()
	if err != nil && err != redis.Nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if holdId == "" {
		app.notFoundResponse(w, r)
		return
	}

	holdBytes, err := app.redis.Get(r.Context(), holdId).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// The session points to a hold that no longer exists, delete the session key
			logger.Warn("dangling hold session key found and cleaned up", "dangling_hold_id", holdId)
			app.redis.Del(r.Context(), holdSessionKey(sessionID))
			app.notFoundResponse(w, r)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	var hold domain.SeatHold

	err = json.Unmarshal(holdBytes, &hold)
	if err != nil {
		logger.Error("failed to unmarshal hold from redis", "hold_id", holdId, "error", err)
		app.serverErrorResponse(w, r, err)
		return
	}

	if hold.ShowtimeID != showtimeID {
		logger.Warn(
			"hold deletion attempt with mismatched showtime ID in URL",
			"hold_showtime_id", hold.ShowtimeID,
			"url_showtime_id", showtimeID,
		)
		app.notFoundResponse(w, r)
		return
	}

	pipe := app.redis.TxPipeline()

	for _, seat := range hold.Seats {
		pipe.Del(r.Context(), seatLockKey(showtimeID, seat.Id))
		pipe.SRem(r.Context(), seatSetKey(showtimeID), seat.Id)
	}

	pipe.Del(r.Context(), holdId)
	pipe.Del(r.Context(), holdSessionKey(sessionID))

	_, err = pipe.Exec(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// getSessionHold loads the hold bound to the given session, returning
// domain.ErrHoldNotFound when the session has none or it has expired.
func (app *Application) getSessionHold(ctx context.Context, sessionID string) (*domain.SeatHold, error) {
	holdId, err := app.redis.Get(ctx, holdSessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrHoldNotFound
		}
		return nil, err
	}

	holdBytes, err := app.redis.Get(ctx, holdId).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrHoldNotFound
		}
		return nil, err
	}

	var hold domain.SeatHold
	err = json.Unmarshal(holdBytes, &hold)
	if err != nil {
		return nil, err
	}

	hold.Id = holdId

	return &hold, nil
}

// releaseHold clears the hold and its seat locks after a successful booking.
func (app *Application) releaseHold(ctx context.Context, sessionID string, hold *domain.SeatHold) {
	pipe := app.redis.TxPipeline()

	for _, seat := range hold.Seats {
		pipe.Del(ctx, seatLockKey(hold.ShowtimeID, seat.Id))
		pipe.SRem(ctx, seatSetKey(hold.ShowtimeID), seat.Id)
	}

	pipe.Del(ctx, hold.Id)
	pipe.Del(ctx, holdSessionKey(sessionID))

	_, err := pipe.Exec(ctx)
	if err != nil {
		app.logger.Error("failed to release hold", "hold_id", hold.Id, "error", err)
	}
}

func (app *Application) migrateSessionData(ctx context.Context, oldSessionId, newSessionId string) error {
	holdId, err := app.redis.Get(ctx, holdSessionKey(oldSessionId)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to get hold ID for session %s: %w", oldSessionId, err)
	}

	if holdId == "" {
		return nil
	}

	var hold domain.SeatHold
	holdBytes, err := app.redis.Get(ctx, holdId).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("failed to get hold data for session %s: %w", oldSessionId, err)
	}

	err = json.Unmarshal(holdBytes, &hold)
	if err != nil {
		return fmt.Errorf("failed to unmarshal hold data for session %s: %w", oldSessionId, err)
	}

	ttl, err := app.redis.TTL(ctx, holdId).Result()
	if err != nil {
		return fmt.Errorf("failed to get TTL for hold ID %s: %w", holdId, err)
	}

	if ttl <= 0 {
		// Key either doesn't exist (-2) or is persistent (-1), put for safety
		return nil
	}

	newTTL := ttl + 3*time.Minute
	showtimeId := hold.ShowtimeID
	lockKeys := make([]string, len(hold.Seats))

	for i, seat := range hold.Seats {
		lockKeys[i] = seatLockKey(showtimeId, seat.Id)
	}

	err = app.redis.Watch(ctx, func(tx *redis.Tx) error {
		for _, lockKey := range lockKeys {
			sessionId, err := tx.Get(ctx, lockKey).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}

			if sessionId != oldSessionId {
				return fmt.Errorf("seat doesn't belong to current session")
			}
		}

		pipe := tx.TxPipeline()

		for _, lockKey := range lockKeys {
			pipe.Set(ctx, lockKey, newSessionId, newTTL)
		}

		_, err := pipe.Exec(ctx)

		return err
	}, lockKeys...)

	if err != nil {
		return fmt.Errorf(
			"failed to migrate seat locks from old session %s to new session %s: %w",
			oldSessionId,
			newSessionId,
			err)
	}

	pipe := app.redis.TxPipeline()

	pipe.Set(ctx, holdSessionKey(newSessionId), holdId, newTTL)
	pipe.Del(ctx, holdSessionKey(oldSessionId))
	pipe.Expire(ctx, holdId, newTTL)

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to rebind hold %s to new session: %w", holdId, err)
	}

	return nil
}
