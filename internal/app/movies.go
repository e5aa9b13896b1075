package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/minhngvn/cinema-booking-api/api"
	"github.com/minhngvn/cinema-booking-api/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	DefaultSort     = "id"
)

type movieListParams struct {
	Page     int    `validate:"min=1"`
	PageSize int    `validate:"min=1,max=50"`
	Sort     string `validate:"oneof=id title release_date -id -title -release_date"`
	Term     string `validate:"omitempty,max=100"`
}

func (app *Application) GetMovies(w http.ResponseWriter, r *http.Request) {
	params := movieListParams{
		Sort: app.readString(r, "sort", DefaultSort),
		Term: app.readString(r, "term", ""),
	}

	var err error

	params.Page, err = app.readInt(r, "page", DefaultPage)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	params.PageSize, err = app.readInt(r, "pageSize", DefaultPageSize)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	filters := domain.MovieFilters{
		Pagination: domain.Pagination{
			Page:     params.Page,
			PageSize: params.PageSize,
			Sort:     params.Sort,
			Term:     params.Term,
		},
	}

	movies, metadata, err := app.movieRepo.GetAll(r.Context(), filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.MovieListResponse{
		Movies:   toMovieSummaries(movies),
		Metadata: toApiMetadata(metadata),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetMovieById(w http.ResponseWriter, r *http.Request) {
	movieId, err := app.readIDParam(r, "movieId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	movie, err := app.movieRepo.GetById(r.Context(), movieId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	resp := api.MovieResponse{
		Id:          movie.ID,
		Name:        movie.Title,
		Description: movie.Description,
		Genres:      movie.Genres,
		Language:    movie.Language,
		Duration:    movie.Duration,
		Director:    movie.Director,
		CastMembers: movie.CastMembers,
		PosterUrl:   movie.PosterUrl,
		ReleaseDate: movie.ReleaseDate,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toMovieSummaries(movies []*domain.Movie) []api.MovieSummary {
	summaries := make([]api.MovieSummary, len(movies))
	today := time.Now().Truncate(24 * time.Hour)

	for i, movie := range movies {
		summary := api.MovieSummary{
			Id:          movie.ID,
			Name:        movie.Title,
			Description: movie.Description,
			PosterUrl:   movie.PosterUrl,
			ReleaseDate: movie.ReleaseDate,
		}

		if movie.ReleaseDate.After(today) {
			summary.Status = api.MovieStatusComingSoon
		} else {
			summary.Status = api.MovieStatusNowShowing
		}

		summaries[i] = summary
	}

	return summaries
}

func toApiMetadata(metadata *domain.Metadata) *api.Metadata {
	if metadata == nil {
		return nil
	}

	return &api.Metadata{
		CurrentPage:  metadata.CurrentPage,
		FirstPage:    metadata.FirstPage,
		LastPage:     metadata.LastPage,
		PageSize:     metadata.PageSize,
		TotalRecords: metadata.TotalRecords,
	}
}
