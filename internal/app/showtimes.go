package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/minhngvn/cinema-booking-api/api"
	"github.com/minhngvn/cinema-booking-api/internal/domain"
)

func (app *Application) GetShowtimesByMovieAndDate(w http.ResponseWriter, r *http.Request) {
	movieId, err := app.readIDParam(r, "movieId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	date := time.Now().Truncate(24 * time.Hour)

	if dateParam := app.readString(r, "date", ""); dateParam != "" {
		date, err = time.Parse("2006-01-02", dateParam)
		if err != nil {
			app.badRequestResponse(w, r, fmt.Errorf("date must be in YYYY-MM-DD format"))
			return
		}
	}

	theaterShowtimes, err := app.showtimeRepo.GetShowtimesByMovieAndDate(r.Context(), movieId, date)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ShowtimeListResponse{
		MovieId:  movieId,
		Date:     date.Format("2006-01-02"),
		Theaters: toApiTheaterShowtimes(theaterShowtimes),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiTheaterShowtimes(theaterShowtimes []domain.TheaterShowtimes) []api.TheaterShowtimes {
	result := make([]api.TheaterShowtimes, len(theaterShowtimes))

	for i, v := range theaterShowtimes {
		showtimes := make([]api.Showtime, len(v.Showtimes))

		for j, s := range v.Showtimes {
			showtimes[j] = api.Showtime{
				Id:        s.ID,
				HallName:  s.HallName,
				StartTime: s.StartTime,
				BasePrice: s.BasePrice,
			}
		}

		result[i] = api.TheaterShowtimes{
			TheaterId:   v.Theater.ID,
			TheaterName: v.Theater.Name,
			City:        v.Theater.City,
			Showtimes:   showtimes,
		}
	}

	return result
}
