package anubis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"net/url"
	"strings"
)

// isCircuitFailure counts transport errors, upstream 5xx/429 and timeouts.
// Rejected tokens never trip the breaker.
func isCircuitFailure(err error) bool {
	return stderrors.Is(err, errAnubisTransient) || stderrors.Is(err, context.DeadlineExceeded)
}

// principalCacheKey keeps raw bearer tokens out of memory-resident keys.
func principalCacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "principal:" + hex.EncodeToString(sum[:])
}

// introspectionURL joins the configured base and path. An absolute path wins.
func introspectionURL(baseURL, path string) string {
	baseURL = strings.TrimSpace(baseURL)
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if path == "" {
		return strings.TrimSuffix(baseURL, "/")
	}
	joined, err := url.JoinPath(baseURL, path)
	if err != nil {
		return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	}
	return joined
}
