package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fwojciec/locrag"
)

// codes maps application error codes to HTTP status codes.
var codes = map[string]int{
	locrag.EINVALID:  http.StatusBadRequest,
	locrag.ENOSTORE:  http.StatusBadRequest,
	locrag.EREMOTE:   http.StatusBadGateway,
	locrag.EIO:       http.StatusInternalServerError,
	locrag.ECONFIG:   http.StatusServiceUnavailable,
	locrag.EINTERNAL: http.StatusInternalServerError,
}

// ErrorStatusCode returns the HTTP status code for an application error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// ErrorResponse is the JSON body returned by the API on failure.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes a failed operation.
type ErrorBody struct {
	Code    string `json:"code"`
	Op      string `json:"op,omitempty"`
	Message string `json:"message"`
}

// Error writes err as a JSON error response and logs internal errors.
func (s *Server) Error(w http.ResponseWriter, r *http.Request, err error) {
	code := locrag.ErrorCode(err)
	if code == locrag.EINTERNAL {
		s.logger().Error("http error", slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Any("error", err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ErrorStatusCode(code))
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: ErrorBody{
		Code:    code,
		Op:      locrag.ErrorOp(err),
		Message: locrag.ErrorMessage(err),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
