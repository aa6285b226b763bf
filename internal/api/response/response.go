package response

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// JSON writes v with status 200.
func JSON(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, v)
}

// Error writes {"ok":false,"error":message} with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{OK: false, Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
