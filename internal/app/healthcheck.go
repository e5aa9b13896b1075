package app

import (
	"net/http"

	"github.com/minhngvn/cinema-booking-api/api"
)

func (app *Application) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := "UP"
	systemInfo := api.SystemInfo{
		Version:     version,
		Environment: app.config.Env,
	}

	resp := api.HealthcheckResponse{
		Status:     status,
		SystemInfo: systemInfo,
	}

	app.writeJSON(w, http.StatusOK, resp, nil)
}
