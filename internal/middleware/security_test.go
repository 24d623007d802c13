package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func doSecuredRequest(config SecurityHeadersConfig) *httptest.ResponseRecorder {
	r := gin.New()
	r.Use(SecurityHeadersMiddleware(config))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestSecurityHeaders_APIDefaults(t *testing.T) {
	w := doSecuredRequest(APISecurityHeadersConfig())

	checks := map[string]string{
		"X-Frame-Options":              "DENY",
		"X-Content-Type-Options":       "nosniff",
		"Content-Security-Policy":      "default-src 'none'; frame-ancestors 'none'",
		"Referrer-Policy":              "no-referrer",
		"Cross-Origin-Opener-Policy":   "same-origin",
		"Cross-Origin-Resource-Policy": "same-origin",
	}
	for header, want := range checks {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}

	hsts := w.Header().Get("Strict-Transport-Security")
	if !strings.HasPrefix(hsts, "max-age=31536000") {
		t.Errorf("Strict-Transport-Security = %q, want max-age=31536000 prefix", hsts)
	}
	if !strings.Contains(hsts, "includeSubDomains") {
		t.Errorf("Strict-Transport-Security = %q, want includeSubDomains", hsts)
	}
}

func TestSecurityHeaders_HSTSDisabled(t *testing.T) {
	cfg := APISecurityHeadersConfig()
	cfg.EnableHSTS = false
	w := doSecuredRequest(cfg)

	if hsts := w.Header().Get("Strict-Transport-Security"); hsts != "" {
		t.Errorf("Strict-Transport-Security = %q, want unset", hsts)
	}
}
