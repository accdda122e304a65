// Package httputil holds the shared HTTP error writer. All handlers funnel
// errors through WriteError so wire codes and statuses stay consistent.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "rollbook/pkg/domain-errors"
)

type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteError maps a coded error onto a JSON error response. Internal errors
// never leak their message to the caller.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := errorBody{Error: wireCode(code)}
	if code != dErrors.CodeInternal {
		var e *dErrors.Error
		if errors.As(err, &e) {
			body.Description = e.Message
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dErrors.HTTPStatus(code))
	_ = json.NewEncoder(w).Encode(body)
}

func wireCode(code dErrors.Code) string {
	if code == dErrors.CodeInternal {
		return "internal_error"
	}
	return string(code)
}
