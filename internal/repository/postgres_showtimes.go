package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minhngvn/cinema-booking-api/internal/domain"
)

type PostgresShowtimeRepository struct {
	db *pgxpool.Pool
}

func NewPostgresShowtimeRepository(db *pgxpool.Pool) *PostgresShowtimeRepository {
	return &PostgresShowtimeRepository{
		db: db,
	}
}

func (p *PostgresShowtimeRepository) GetShowtimesByMovieAndDate(
	ctx context.Context,
	movieID int,
	date time.Time) ([]domain.TheaterShowtimes, error) {

	query := `
		SELECT
			t.id,
			t.name,
			t.city,
			h.id,
			h.name,
			s.id,
			s.start_time,
			s.base_price
		FROM showtimes s
		JOIN halls h ON s.hall_id = h.id
		JOIN theaters t ON h.theater_id = t.id
		WHERE s.movie_id = $1
			AND s.start_time >= $2
			AND s.start_time < $2 + interval '1 day'
		ORDER BY t.name, s.start_time
	`

	day := date.Truncate(24 * time.Hour)

	rows, err := p.db.Query(ctx, query, movieID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grouped := make([]domain.TheaterShowtimes, 0)

	for rows.Next() {
		var (
			theater  domain.Theater
			showtime domain.Showtime
		)

		err := rows.Scan(
			&theater.ID,
			&theater.Name,
			&theater.City,
			&showtime.HallID,
			&showtime.HallName,
			&showtime.ID,
			&showtime.StartTime,
			&showtime.BasePrice,
		)
		if err != nil {
			return nil, err
		}

		showtime.MovieID = movieID
		showtime.TheaterID = theater.ID
		showtime.TheaterName = theater.Name

		// Rows arrive ordered by theater, so a new theater starts a new group.
		if len(grouped) == 0 || grouped[len(grouped)-1].Theater.ID != theater.ID {
			grouped = append(grouped, domain.TheaterShowtimes{Theater: theater})
		}

		last := &grouped[len(grouped)-1]
		last.Showtimes = append(last.Showtimes, showtime)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return grouped, nil
}

func (p *PostgresShowtimeRepository) GetById(ctx context.Context, id int) (*domain.Showtime, error) {
	query := `
		SELECT
			s.id,
			s.movie_id,
			m.title,
			s.hall_id,
			h.name,
			t.id,
			t.name,
			s.start_time,
			s.base_price
		FROM showtimes s
		JOIN movies m ON s.movie_id = m.id
		JOIN halls h ON s.hall_id = h.id
		JOIN theaters t ON h.theater_id = t.id
		WHERE s.id = $1
	`

	var showtime domain.Showtime

	err := p.db.QueryRow(ctx, query, id).Scan(
		&showtime.ID,
		&showtime.MovieID,
		&showtime.MovieTitle,
		&showtime.HallID,
		&showtime.HallName,
		&showtime.TheaterID,
		&showtime.TheaterName,
		&showtime.StartTime,
		&showtime.BasePrice,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &showtime, nil
}
