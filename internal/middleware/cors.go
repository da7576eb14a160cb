package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows browser calls from the configured origins. A "*" entry allows any origin
// but disables credentials, as browsers require.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	credentials := true
	for _, o := range allowedOrigins {
		if o == "*" {
			credentials = false
			break
		}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With", "X-Session-Id"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Session-Id"},
		AllowCredentials: credentials,
		MaxAge:           300,
	})
}
