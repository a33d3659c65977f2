package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/John-Robertt/subweave/internal/model"
)

func WriteText(w http.ResponseWriter, status int, body string) {
	WriteBody(w, status, "text/plain; charset=utf-8", body)
}

func WriteBody(w http.ResponseWriter, status int, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func WriteError(w http.ResponseWriter, status int, e model.AppError) {
	metricsIncAppError(e.Stage, e.Code)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{Error: e})
}
