package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestShouldCreateHTTPAPISpan(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "handler span", in: "httpapi.Handler.SubmitCard", want: true},
		{name: "middleware span", in: "httpapi.RequestLogging", want: false},
		{name: "helper span", in: "httpapi.writeError", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shouldCreateHTTPAPISpan(tt.in)
			if got != tt.want {
				t.Fatalf("shouldCreateHTTPAPISpan(%q)=%v want=%v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRouteAttributes(t *testing.T) {
	mux := http.NewServeMux()
	var got []attribute.KeyValue
	mux.HandleFunc("GET /v1/leagues/{leagueID}/cards/{year}/{week}/me", func(_ http.ResponseWriter, r *http.Request) {
		got = routeAttributes(r)
	})
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/leagues/league-1/cards/2026/2/me", nil))

	want := []attribute.KeyValue{
		attribute.String("pick.league_id", "league-1"),
		attribute.String("pick.year", "2026"),
		attribute.String("pick.week", "2"),
	}
	if len(got) != len(want) {
		t.Fatalf("unexpected attributes: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("attribute %d: got=%v want=%v", i, got[i], want[i])
		}
	}
}
