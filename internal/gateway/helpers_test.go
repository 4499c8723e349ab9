package gateway

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flemzord/teamgate/internal/provider"
	"github.com/flemzord/teamgate/pkg/extchannel"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestGateway wires a Gateway around a connected mock provider and
// returns both plus the built router.
func newTestGateway(t *testing.T, auth AuthConfig) (*Gateway, *provider.Mock, http.Handler) {
	t.Helper()

	mock := provider.NewMock(
		[]extchannel.Channel{{ID: "C1", DisplayName: "General"}},
		[]extchannel.ChannelUser{
			{ID: "U1", FullName: "Ada Lovelace"},
			{ID: "U2", FullName: "Grace Hopper"},
		},
	)
	if err := mock.Connect(context.Background()); err != nil {
		t.Fatalf("mock connect: %v", err)
	}
	mock.SetMessages("General", []extchannel.ChannelMessage{
		{Time: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), Text: "morning", ChannelID: "C1"},
		{Time: time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC), Text: "standup", ChannelID: "C1"},
	})

	g := &Gateway{
		config:    Config{Auth: auth},
		logger:    discardLogger(),
		metrics:   &Metrics{},
		prov:      mock,
		startedAt: time.Now(),
	}
	g.config.defaults()
	return g, mock, g.buildRouter()
}

// adminGet performs an authenticated GET and returns the recorder.
func adminGet(handler http.Handler, token, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// adminDo performs an authenticated request with an optional JSON body.
func adminDo(handler http.Handler, token, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}
