package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minhngvn/cinema-booking-api/internal/domain"
)

type PostgresSeatRepository struct {
	db *pgxpool.Pool
}

func NewPostgresSeatRepository(db *pgxpool.Pool) *PostgresSeatRepository {
	return &PostgresSeatRepository{
		db: db,
	}
}

func (p *PostgresSeatRepository) GetSeatsByShowtime(ctx context.Context, showtimeID int) (*domain.ShowtimeSeats, error) {
	query := `
		SELECT
			t.id,
			t.name,
			h.id,
			h.name,
			m.title,
			sh.start_time,
			sh.base_price,
			se.id,
			se.seat_row,
			se.seat_number,
			se.seat_type,
			se.extra_price,
			ss.status = 'available'
		FROM showtimes sh
		JOIN movies m ON sh.movie_id = m.id
		JOIN halls h ON sh.hall_id = h.id
		JOIN theaters t ON h.theater_id = t.id
		JOIN seats se ON se.hall_id = h.id
		JOIN showtime_seats ss ON ss.showtime_id = sh.id AND ss.seat_id = se.id
		WHERE sh.id = $1
		ORDER BY se.seat_row, se.seat_number
	`

	rows, err := p.db.Query(ctx, query, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	showtimeSeats := domain.ShowtimeSeats{ShowtimeID: showtimeID}

	for rows.Next() {
		var seat domain.Seat

		err = rows.Scan(
			&showtimeSeats.TheaterID,
			&showtimeSeats.TheaterName,
			&showtimeSeats.HallID,
			&showtimeSeats.HallName,
			&showtimeSeats.MovieTitle,
			&showtimeSeats.StartTime,
			&showtimeSeats.BasePrice,
			&seat.ID,
			&seat.Row,
			&seat.Number,
			&seat.Type,
			&seat.ExtraPrice,
			&seat.Available,
		)
		if err != nil {
			return nil, err
		}

		showtimeSeats.Seats = append(showtimeSeats.Seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(showtimeSeats.Seats) == 0 {
		return nil, domain.ErrRecordNotFound
	}

	return &showtimeSeats, nil
}

func (p *PostgresSeatRepository) GetSeatsByShowtimeAndLabels(
	ctx context.Context,
	showtimeID int,
	seatIDs []domain.SeatID) (*domain.ShowtimeSeats, error) {

	labels := make([]string, len(seatIDs))
	for i, seat := range seatIDs {
		labels[i] = seat.String()
	}

	query := `
		SELECT
			t.id,
			t.name,
			h.id,
			h.name,
			m.title,
			sh.start_time,
			sh.base_price,
			se.id,
			se.seat_row,
			se.seat_number,
			se.seat_type,
			se.extra_price,
			ss.status = 'available'
		FROM showtimes sh
		JOIN movies m ON sh.movie_id = m.id
		JOIN halls h ON sh.hall_id = h.id
		JOIN theaters t ON h.theater_id = t.id
		JOIN seats se ON se.hall_id = h.id
		JOIN showtime_seats ss ON ss.showtime_id = sh.id AND ss.seat_id = se.id
		WHERE sh.id = $1
			AND se.seat_row || se.seat_number::text = ANY($2)
		ORDER BY se.seat_row, se.seat_number
	`

	rows, err := p.db.Query(ctx, query, showtimeID, labels)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	showtimeSeats := domain.ShowtimeSeats{ShowtimeID: showtimeID}

	for rows.Next() {
		var seat domain.Seat

		err = rows.Scan(
			&showtimeSeats.TheaterID,
			&showtimeSeats.TheaterName,
			&showtimeSeats.HallID,
			&showtimeSeats.HallName,
			&showtimeSeats.MovieTitle,
			&showtimeSeats.StartTime,
			&showtimeSeats.BasePrice,
			&seat.ID,
			&seat.Row,
			&seat.Number,
			&seat.Type,
			&seat.ExtraPrice,
			&seat.Available,
		)
		if err != nil {
			return nil, err
		}

		showtimeSeats.Seats = append(showtimeSeats.Seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return &showtimeSeats, nil
}
