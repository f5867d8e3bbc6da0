package proposals

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterHandlerRejectsUnknownReferences(t *testing.T) {
	f := newFixture()
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), f.service)

	tests := []struct {
		name string
		body string
	}{
		{
			"unknown service id",
			`{"title":"Proposta","client_id":10,"services":[{"service_id":999,"quantity":1}],"payment":{"type":"cash"}}`,
		},
		{
			"unknown client id",
			`{"title":"Proposta","client_id":404,"services":[{"service_id":1,"quantity":1}],"payment":{"type":"cash"}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/proposals", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			h.Register(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "does not exist")
		})
	}
}
