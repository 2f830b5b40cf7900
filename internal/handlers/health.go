package handlers

import (
	"net/http"

	"portfolio-backend/internal/models"
)

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:  "ok",
		Message: "AI Portfolio Backend is running",
	})
}
