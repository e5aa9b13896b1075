package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minhngvn/cinema-booking-api/internal/domain"
	"github.com/shopspring/decimal"
)

type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

// Reserve books the requested seats for exactly one purchaser or fails as a
// whole. The per-showtime seat-status rows are locked with FOR UPDATE before
// the conflict check, so two reservations contending for the same seat
// serialize on the row lock: the second transaction re-reads the committed
// status after the first commits and observes the conflict. The unique index
// on ticket_seats (showtime_id, seat_id) backstops the invariant at commit
// time.
func (p *PostgresBookingRepository) Reserve(ctx context.Context, booking *domain.Booking) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			SELECT s.hall_id, s.start_time, s.base_price, m.title, h.name, t.name
			FROM showtimes s
			JOIN movies m ON s.movie_id = m.id
			JOIN halls h ON s.hall_id = h.id
			JOIN theaters t ON h.theater_id = t.id
			WHERE s.id = $1
		`

		var (
			hallID    int
			basePrice decimal.Decimal
		)

		err := tx.QueryRow(ctx, query, booking.ShowtimeID).Scan(
			&hallID,
			&booking.ShowtimeDate,
			&basePrice,
			&booking.MovieTitle,
			&booking.HallName,
			&booking.TheaterName,
		)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}

			return err
		}

		seatIDs, extras, conflicts, unknown, err := lockRequestedSeats(ctx, tx, booking.ShowtimeID, booking.Seats)
		if err != nil {
			return err
		}

		if len(unknown) > 0 {
			return &domain.UnknownSeatsError{Seats: unknown}
		}

		if len(conflicts) > 0 {
			return &domain.SeatConflictError{Seats: conflicts}
		}

		// A checkout-driven booking fixed its amount on the pending payment
		// row when the session was created, so the computed total is taken
		// as-is; a direct booking carries a client-declared total that must
		// match.
		expected := basePrice.Mul(decimal.NewFromInt(int64(len(seatIDs)))).Add(extras)
		if booking.CheckoutSessionID != "" {
			booking.TotalPrice = expected
		} else if !booking.TotalPrice.Equal(expected) {
			return domain.ErrPriceMismatch
		}

		query = `
			UPDATE showtime_seats
			SET status = 'booked', booked_by = $1, updated_at = now()
			WHERE showtime_id = $2 AND seat_id = ANY($3)
		`

		tag, err := tx.Exec(ctx, query, booking.UserID, booking.ShowtimeID, seatIDs)
		if err != nil {
			return err
		}

		if int(tag.RowsAffected()) != len(seatIDs) {
			return domain.ErrEditConflict
		}

		booking.PaymentID, err = resolvePayment(ctx, tx, booking)
		if err != nil {
			return err
		}

		booking.Code = uuid.New().String()

		query = `
			INSERT INTO tickets (code, user_id, showtime_id, payment_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at
		`

		err = tx.QueryRow(
			ctx,
			query,
			booking.Code,
			booking.UserID,
			booking.ShowtimeID,
			booking.PaymentID).Scan(&booking.ID, &booking.CreatedAt)

		if err != nil {
			return err
		}

		rows := make([][]any, 0, len(seatIDs))
		for _, seatID := range seatIDs {
			rows = append(rows, []any{
				booking.ID,
				booking.ShowtimeID,
				seatID,
			})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"ticket_seats"},
			[]string{"ticket_id", "showtime_id", "seat_id"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return domain.ErrSeatAlreadyReserved
			}

			return err
		}

		return nil
	})
}

// lockRequestedSeats locks the seat-status rows of the requested seats in a
// deterministic order and partitions the request into resolved seat ids,
// already-booked seat labels and labels that do not exist in the hall layout.
// It also totals the per-seat price extras of the resolvable seats.
func lockRequestedSeats(
	ctx context.Context,
	tx pgx.Tx,
	showtimeID int,
	seats []domain.SeatID) (seatIDs []int, extras decimal.Decimal, conflicts, unknown []string, err error) {

	labels := make([]string, len(seats))
	for i, seat := range seats {
		labels[i] = seat.String()
	}

	query := `
		SELECT ss.seat_id, se.seat_row || se.seat_number::text, se.extra_price, ss.status
		FROM showtime_seats ss
		JOIN seats se ON ss.seat_id = se.id
		WHERE ss.showtime_id = $1
			AND se.seat_row || se.seat_number::text = ANY($2)
		ORDER BY ss.seat_id
		FOR UPDATE OF ss
	`

	rows, err := tx.Query(ctx, query, showtimeID, labels)
	if err != nil {
		return nil, decimal.Zero, nil, nil, err
	}
	defer rows.Close()

	found := make(map[string]bool, len(seats))

	for rows.Next() {
		var (
			seatID     int
			label      string
			extraPrice decimal.Decimal
			status     domain.SeatStatus
		)

		if err := rows.Scan(&seatID, &label, &extraPrice, &status); err != nil {
			return nil, decimal.Zero, nil, nil, err
		}

		found[label] = true

		if status == domain.SeatStatusBooked {
			conflicts = append(conflicts, label)
			continue
		}

		seatIDs = append(seatIDs, seatID)
		extras = extras.Add(extraPrice)
	}

	if err := rows.Err(); err != nil {
		return nil, decimal.Zero, nil, nil, err
	}

	for _, label := range labels {
		if !found[label] {
			unknown = append(unknown, label)
		}
	}

	return seatIDs, extras, conflicts, unknown, nil
}

// resolvePayment completes the pending payment of a checkout session, or
// records a new completed payment for a direct booking.
func resolvePayment(ctx context.Context, tx pgx.Tx, booking *domain.Booking) (int, error) {
	var paymentID int

	if booking.CheckoutSessionID != "" {
		query := `
			UPDATE payments
			SET status = 'completed', payment_date = now(), updated_at = now()
			WHERE checkout_session_id = $1
			RETURNING id
		`

		err := tx.QueryRow(ctx, query, booking.CheckoutSessionID).Scan(&paymentID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return 0, fmt.Errorf("no payment found for checkout session %s", booking.CheckoutSessionID)
			}

			return 0, err
		}

		return paymentID, nil
	}

	query := `
		INSERT INTO payments (user_id, amount, currency, status, payment_date)
		VALUES ($1, $2, 'USD', 'completed', now())
		RETURNING id
	`

	err := tx.QueryRow(ctx, query, booking.UserID, booking.TotalPrice).Scan(&paymentID)
	if err != nil {
		return 0, err
	}

	return paymentID, nil
}

func (p *PostgresBookingRepository) GetBookedSeatIDs(ctx context.Context, showtimeID int) ([]int, error) {
	query := `
		SELECT seat_id
		FROM showtime_seats
		WHERE showtime_id = $1 AND status = 'booked'
	`

	rows, err := p.db.Query(ctx, query, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seatIDs := make([]int, 0)

	for rows.Next() {
		var seatID int

		if err := rows.Scan(&seatID); err != nil {
			return nil, err
		}

		seatIDs = append(seatIDs, seatID)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return seatIDs, nil
}

func (p *PostgresBookingRepository) GetSummariesByUserId(
	ctx context.Context,
	userID int,
	pagination domain.Pagination) ([]domain.BookingSummary, *domain.Metadata, error) {

	query := `
		SELECT
			COUNT(*) OVER(),
			tk.id,
			tk.code,
			m.title,
			m.poster_url,
			s.start_time,
			t.name,
			h.name,
			tk.created_at
		FROM tickets tk
		JOIN showtimes s ON tk.showtime_id = s.id
		JOIN movies m ON s.movie_id = m.id
		JOIN halls h ON s.hall_id = h.id
		JOIN theaters t ON h.theater_id = t.id
		WHERE tk.user_id = $1
		ORDER BY tk.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := p.db.Query(ctx, query, userID, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	bookings := make([]domain.BookingSummary, 0)
	totalRecords := 0

	for rows.Next() {
		var booking domain.BookingSummary

		err := rows.Scan(
			&totalRecords,
			&booking.BookingID,
			&booking.Code,
			&booking.MovieTitle,
			&booking.PosterUrl,
			&booking.ShowtimeDate,
			&booking.TheaterName,
			&booking.HallName,
			&booking.CreatedAt,
		)
		if err != nil {
			return nil, nil, err
		}

		bookings = append(bookings, booking)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, pagination.Page, pagination.PageSize)

	return bookings, metadata, nil
}

func (p *PostgresBookingRepository) GetByIdAndUserId(
	ctx context.Context,
	bookingID,
	userID int) (*domain.BookingDetail, error) {

	query := `
		SELECT
			tk.id,
			tk.code,
			m.title,
			m.poster_url,
			s.start_time,
			t.name,
			h.name,
			p.amount,
			tk.created_at
		FROM tickets tk
		JOIN payments p ON tk.payment_id = p.id
		JOIN showtimes s ON tk.showtime_id = s.id
		JOIN movies m ON s.movie_id = m.id
		JOIN halls h ON s.hall_id = h.id
		JOIN theaters t ON h.theater_id = t.id
		WHERE tk.id = $1 AND tk.user_id = $2
	`

	var detail domain.BookingDetail

	err := p.db.QueryRow(ctx, query, bookingID, userID).Scan(
		&detail.BookingID,
		&detail.Code,
		&detail.MovieTitle,
		&detail.PosterUrl,
		&detail.ShowtimeDate,
		&detail.TheaterName,
		&detail.HallName,
		&detail.TotalPrice,
		&detail.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	detail.Seats, err = p.retrieveTicketSeats(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	return &detail, nil
}

func (p *PostgresBookingRepository) retrieveTicketSeats(ctx context.Context, bookingID int) ([]domain.SeatID, error) {
	query := `
		SELECT s.seat_row, s.seat_number
		FROM ticket_seats ts
		JOIN seats s ON ts.seat_id = s.id
		WHERE ts.ticket_id = $1
		ORDER BY s.seat_row, s.seat_number
	`

	rows, err := p.db.Query(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.SeatID, 0)

	for rows.Next() {
		var seat domain.SeatID

		if err := rows.Scan(&seat.Row, &seat.Number); err != nil {
			return nil, err
		}

		seats = append(seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}
