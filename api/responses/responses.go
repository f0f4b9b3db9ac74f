// Package responses writes the JSON envelopes every handler answers with.
package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/campuseats/campuseats-backend/pkg/errors"
	"github.com/campuseats/campuseats-backend/pkg/logger"
	"github.com/campuseats/campuseats-backend/pkg/types"
)

func WriteSuccess(w http.ResponseWriter, fields map[string]any) {
	WriteSuccessStatus(w, http.StatusOK, fields)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, fields map[string]any) {
	writeJSON(w, status, types.NewSuccess(fields))
}

// WriteError renders err as an error envelope. Untyped errors become
// INTERNAL_ERROR. 5xx responses are logged at error level with the full
// diagnostic chain, everything else as a warning.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	envelope := types.ErrorEnvelope{Code: string(typed.Code()), Message: meta.PublicMessage}
	if meta.ExposeMessage && typed.Message() != "" {
		envelope.Message = typed.Message()
	}
	if meta.DetailsAllowed {
		envelope.Details = typed.Details()
	}

	fields := pkgerrors.Diagnose(err).LogFields()
	fields["http_status"] = meta.HTTPStatus
	ctx = logg.WithFields(ctx, fields)
	if meta.HTTPStatus >= http.StatusInternalServerError {
		logg.Error(ctx, "request.error", err)
	} else {
		logg.Warn(ctx, "request.rejected")
	}

	writeJSON(w, meta.HTTPStatus, envelope)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already out; an encode failure only truncates the body.
	_ = json.NewEncoder(w).Encode(payload)
}
