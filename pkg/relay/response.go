package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/helmcode/neuropath/pkg/model"
)

// corsHeaders are sent on every response, preflight or not.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type, x-request-id",
	"Access-Control-Allow-Methods": "POST, OPTIONS",
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the {error, status} payload with a matching status code.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg, Status: status})
}

// writeFailure writes err to the client. Unclassified errors become a
// generic 500 and their detail is only logged.
func writeFailure(w http.ResponseWriter, logger *zap.Logger, err error) {
	var me *model.Error
	if errors.As(err, &me) {
		writeError(w, me.Kind.HTTPStatus(), me.Message)
		return
	}
	logger.Error("internal server error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, model.MsgInternal)
}

func writeTooManyRequests(w http.ResponseWriter, retryAfterSecs int) {
	w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfterSecs))
	writeError(w, http.StatusTooManyRequests, model.MsgRateLimited)
}
