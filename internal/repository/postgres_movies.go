package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minhngvn/cinema-booking-api/internal/domain"
)

type PostgresMovieRepository struct {
	db *pgxpool.Pool
}

func NewPostgresMovieRepository(db *pgxpool.Pool) *PostgresMovieRepository {
	return &PostgresMovieRepository{
		db: db,
	}
}

var movieSortColumns = map[string]string{
	"id":           "id",
	"title":        "title",
	"release_date": "release_date",
	"duration":     "duration_min",
}

func (p *PostgresMovieRepository) GetAll(
	ctx context.Context,
	filters domain.MovieFilters) ([]*domain.Movie, *domain.Metadata, error) {

	sortColumn, ok := movieSortColumns[filters.SortColumn()]
	if !ok {
		sortColumn = "id"
	}

	query := fmt.Sprintf(`
		SELECT
			COUNT(*) OVER(),
			id,
			title,
			description,
			genres,
			language,
			release_date,
			duration_min,
			poster_url,
			director,
			cast_members
		FROM movies
		WHERE ($1 = '' OR title ILIKE '%%' || $1 || '%%')
		ORDER BY %s %s, id ASC
		LIMIT $2 OFFSET $3`, sortColumn, filters.SortDirection())

	rows, err := p.db.Query(ctx, query, filters.Term, filters.Limit(), filters.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	movies := make([]*domain.Movie, 0)
	totalRecords := 0

	for rows.Next() {
		var movie domain.Movie

		err := rows.Scan(
			&totalRecords,
			&movie.ID,
			&movie.Title,
			&movie.Description,
			&movie.Genres,
			&movie.Language,
			&movie.ReleaseDate,
			&movie.Duration,
			&movie.PosterUrl,
			&movie.Director,
			&movie.CastMembers,
		)
		if err != nil {
			return nil, nil, err
		}

		movies = append(movies, &movie)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, filters.Page, filters.PageSize)

	return movies, metadata, nil
}

func (p *PostgresMovieRepository) GetById(ctx context.Context, id int) (*domain.Movie, error) {
	query := `
		SELECT
			id,
			title,
			description,
			genres,
			language,
			release_date,
			duration_min,
			poster_url,
			director,
			cast_members
		FROM movies
		WHERE id = $1
	`

	var movie domain.Movie

	err := p.db.QueryRow(ctx, query, id).Scan(
		&movie.ID,
		&movie.Title,
		&movie.Description,
		&movie.Genres,
		&movie.Language,
		&movie.ReleaseDate,
		&movie.Duration,
		&movie.PosterUrl,
		&movie.Director,
		&movie.CastMembers,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &movie, nil
}
