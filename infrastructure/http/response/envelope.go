package response

import (
	"encoding/json"
	"errors"
	"net/http"

	domainerr "github.com/fabricflow/fabricflow/domain/error"
)

type Envelope struct {
	Status  bool                `json:"status"`
	Message string              `json:"message"`
	Code    domainerr.ErrorCode `json:"code,omitempty"`
	Data    interface{}         `json:"data"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, envelope Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(envelope)
}

func Success(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	WriteJSON(w, statusCode, Envelope{Status: true, Message: message, Data: data})
}

func Error(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, Envelope{Message: message})
}

// FromError writes an application error with the status its code maps to.
// Errors outside the catalog are reported as a generic 500 and
// FromError returns false so the caller can log them.
func FromError(w http.ResponseWriter, err error) bool {
	var appErr *domainerr.AppError
	status := domainerr.GetHTTPStatusCode(err)
	if !errors.As(err, &appErr) || status == http.StatusInternalServerError {
		Error(w, http.StatusInternalServerError, "Internal server error")
		return false
	}
	WriteJSON(w, status, Envelope{Message: appErr.Message, Code: appErr.Code})
	return true
}

func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

func UnprocessableEntity(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnprocessableEntity, message)
}
