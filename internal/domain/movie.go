package domain

import (
	"context"
	"time"
)

type Movie struct {
	ID          int
	Title       string
	Description string
	Genres      []string
	Language    string
	ReleaseDate time.Time
	Duration    int
	PosterUrl   string
	Director    string
	CastMembers []string
}

type MovieFilters struct {
	Pagination
}

type MovieRepository interface {
	GetAll(ctx context.Context, filters MovieFilters) ([]*Movie, *Metadata, error)
	GetById(ctx context.Context, id int) (*Movie, error)
}
