package chi

import (
	"encoding/json"
	"net/http"

	"github.com/fwojciec/mangawatch"
)

// codes maps application error codes to HTTP status codes.
var codes = map[string]int{
	mangawatch.ECONFLICT:  http.StatusConflict,
	mangawatch.EINVALID:   http.StatusBadRequest,
	mangawatch.ENOTFOUND:  http.StatusNotFound,
	mangawatch.ERATELIMIT: http.StatusTooManyRequests,
	mangawatch.EBLOCKED:   http.StatusBadGateway,
	mangawatch.EFETCH:     http.StatusBadGateway,
	mangawatch.EPROVIDER:  http.StatusBadGateway,
	mangawatch.ESCRAPE:    http.StatusBadGateway,
	mangawatch.ECONFIG:    http.StatusServiceUnavailable,
}

// ErrorStatusCode returns the HTTP status code for an application error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// Error writes err as a JSON error response. Internal errors are logged
// and their details hidden from the client.
func (s *Server) Error(w http.ResponseWriter, r *http.Request, err error) {
	code, message := mangawatch.ErrorCode(err), mangawatch.ErrorMessage(err)
	if code == mangawatch.EINTERNAL {
		s.logger().Error("internal error", "method", r.Method, "path", r.URL.Path, "error", err)
		message = "internal error"
	}
	writeError(w, ErrorStatusCode(code), message)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
