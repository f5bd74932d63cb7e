package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/formflow/formflow-api/internal/apperr"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid", apperr.Invalidf("format id is required"), http.StatusBadRequest},
		{"not found", apperr.NotFoundf("submission 7"), http.StatusNotFound},
		{"forbidden", apperr.Forbiddenf("not yours"), http.StatusForbidden},
		{"invalid transition", apperr.InvalidTransitionf("already approved"), http.StatusConflict},
		{"already decided", apperr.ErrAlreadyDecided, http.StatusConflict},
		{"timeout", apperr.FromContext(context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"render", apperr.Renderf(errors.New("binary missing"), "create document"), http.StatusBadGateway},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, c.err)

			if rec.Code != c.want {
				t.Errorf("status = %d, want %d", rec.Code, c.want)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("body is not JSON: %v", err)
			}
			if body["error"] == "" {
				t.Error("error body must carry a message")
			}
		})
	}
}
