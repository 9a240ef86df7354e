package response

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"

	"github.com/futig/ba-assistant/internal/entity"
)

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// headers are already sent
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// Error writes an error response. Details of err are exposed to the client
// only for 4xx statuses.
func Error(w http.ResponseWriter, status int, message string, err error) {
	resp := entity.ErrorResponse{Error: http.StatusText(status), Message: message}
	if err != nil && status < http.StatusInternalServerError {
		resp.Message = message + ": " + err.Error()
	}
	JSON(w, status, resp)
}

// Attachment writes a downloadable file. Non-ASCII names are encoded per RFC 2231.
func Attachment(w http.ResponseWriter, name, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Success writes a success response
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created writes a 201 Created response
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// NoContent writes a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
