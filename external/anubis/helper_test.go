package anubis

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestIntrospectionURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		base, path, want string
	}{
		{"https://anubis.example.com/", "/v1/introspect", "https://anubis.example.com/v1/introspect"},
		{"https://anubis.example.com/auth", "v1/introspect", "https://anubis.example.com/auth/v1/introspect"},
		{"https://anubis.example.com/", "", "https://anubis.example.com"},
		{"https://anubis.example.com", "https://other.example.com/introspect", "https://other.example.com/introspect"},
	}
	for _, tc := range cases {
		if got := introspectionURL(tc.base, tc.path); got != tc.want {
			t.Fatalf("introspectionURL(%q, %q) = %q, want %q", tc.base, tc.path, got, tc.want)
		}
	}
}

func TestPrincipalCacheKey_HidesToken(t *testing.T) {
	t.Parallel()

	key := principalCacheKey("secret-token")
	if strings.Contains(key, "secret-token") {
		t.Fatalf("cache key leaks token: %q", key)
	}
	if key != principalCacheKey("secret-token") {
		t.Fatalf("cache key must be stable")
	}
}

func TestIsCircuitFailure(t *testing.T) {
	t.Parallel()

	if !isCircuitFailure(fmt.Errorf("wrapped: %w", errAnubisTransient)) {
		t.Fatalf("transient error must count")
	}
	if !isCircuitFailure(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)) {
		t.Fatalf("timeout must count")
	}
	if isCircuitFailure(fmt.Errorf("inactive token")) {
		t.Fatalf("rejected token must not count")
	}
}
