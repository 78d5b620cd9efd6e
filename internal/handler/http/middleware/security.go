package middleware

import (
	"net/http"
	"strings"
)

// CSP builds a Content-Security-Policy header value.
type CSP struct {
	directives [][2]string
}

// Directive appends a directive with its sources.
func (c *CSP) Directive(name string, sources ...string) *CSP {
	c.directives = append(c.directives, [2]string{name, strings.Join(sources, " ")})
	return c
}

func (c *CSP) String() string {
	parts := make([]string, 0, len(c.directives))
	for _, d := range c.directives {
		if d[1] == "" {
			parts = append(parts, d[0])
			continue
		}
		parts = append(parts, d[0]+" "+d[1])
	}
	return strings.Join(parts, "; ")
}

// AdminPagePolicy allows the server-rendered admin pages and nothing else.
func AdminPagePolicy() *CSP {
	return (&CSP{}).
		Directive("default-src", "'self'").
		Directive("style-src", "'self'", "'unsafe-inline'").
		Directive("img-src", "'self'", "data:").
		Directive("form-action", "'self'").
		Directive("frame-ancestors", "'none'").
		Directive("base-uri", "'self'").
		Directive("object-src", "'none'")
}

// SwaggerPolicy relaxes script and style sources for Swagger UI.
func SwaggerPolicy() *CSP {
	return (&CSP{}).
		Directive("default-src", "'self'").
		Directive("script-src", "'self'", "'unsafe-inline'").
		Directive("style-src", "'self'", "'unsafe-inline'").
		Directive("img-src", "'self'", "data:").
		Directive("frame-ancestors", "'none'")
}

// SecurityHeaders sets common hardening headers. The swagger policy applies
// below /swagger/, the admin policy everywhere else.
func SecurityHeaders(next http.Handler) http.Handler {
	admin := AdminPagePolicy().String()
	swagger := SwaggerPolicy().String()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if strings.HasPrefix(r.URL.Path, "/swagger/") {
			h.Set("Content-Security-Policy", swagger)
		} else {
			h.Set("Content-Security-Policy", admin)
		}
		next.ServeHTTP(w, r)
	})
}
