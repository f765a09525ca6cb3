package handler

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mcoot/passcode-go/internal/api/apierr"
)

// writeError writes the API error body for err. Server errors also fail the
// request's span, since their detail never reaches the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if apierr.Status(err) >= http.StatusInternalServerError {
		span := trace.SpanFromContext(r.Context())
		span.RecordError(err)
		span.SetStatus(codes.Error, "internal error")
	}
	apierr.WriteError(w, err)
}

func invalidRequest(format string, args ...any) error {
	return apierr.NewInvalidRequestError(fmt.Sprintf(format, args...))
}
