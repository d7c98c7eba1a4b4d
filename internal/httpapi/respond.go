package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/3dgi/bag-features/internal/apierror"
)

type errorBody struct {
	Code        int    `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto status codes and the
// structured {code, name, description} body every non-2xx carries.
// Upstream failures get a generic description; the details go to the
// log, not to the client.
func writeError(w http.ResponseWriter, err error) {
	var body errorBody
	switch apierror.KindOf(err) {
	case apierror.KindBadRequest:
		body = errorBody{Code: http.StatusBadRequest, Name: "Bad Request", Description: err.Error()}
	case apierror.KindNotFound:
		body = errorBody{
			Code: http.StatusNotFound,
			Name: "Not Found",
			Description: "The requested resource (or feature) does not exist on the server. " +
				"For example, a path parameter had an incorrect value.",
		}
	default:
		body = errorBody{
			Code: http.StatusInternalServerError,
			Name: "Internal Server Error",
			Description: "The server encountered an internal error and was unable to " +
				"complete your request. Either the server is overloaded or " +
				"there is an error in the application.",
		}
	}
	writeJSON(w, body.Code, body)
}
