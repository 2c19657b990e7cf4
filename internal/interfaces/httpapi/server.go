package httpapi

import (
	"net/http"

	"github.com/riskibarqy/pick-league/internal/platform/logging"
)

type RouterOptions struct {
	Logger             *logging.Logger
	SwaggerEnabled     bool
	CORSAllowedOrigins []string
	// InternalJobToken guards /v1/internal routes. Empty rejects every call.
	InternalJobToken string
}

// NewRouter wires routes under tracing, request logging, CORS and panic
// recovery, outermost first.
func NewRouter(handler *Handler, verifier TokenVerifier, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, opts.SwaggerEnabled)
	registerAuthorizedRoutes(mux, handler, verifier)
	registerInternalJobRoutes(mux, handler, opts.InternalJobToken)

	var h http.Handler = mux
	h = recoverPanic(logger, h)
	h = CORS(opts.CORSAllowedOrigins, h)
	h = RequestLogging(logger, h)
	return RequestTracing(h)
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.ErrorContext(r.Context(), "panic recovered", "panic", rec, "method", r.Method, "path", r.URL.Path)
				writeInternalError(r.Context(), w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
