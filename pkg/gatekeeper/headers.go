package gatekeeper

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/leasekit/pkg/ratelimiter"
)

// Header names.
const (
	HeaderFrameOptions       = "X-Frame-Options"
	HeaderContentTypeOptions = "X-Content-Type-Options"
	HeaderXSSProtection      = "X-XSS-Protection"
	HeaderReferrerPolicy     = "Referrer-Policy"
	HeaderPermissionsPolicy  = "Permissions-Policy"
	HeaderHSTS               = "Strict-Transport-Security"
	HeaderRobotsTag          = "X-Robots-Tag"
	HeaderCacheControl       = "Cache-Control"
	HeaderRetryAfter         = "Retry-After"
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
)

// Robots directives.
const (
	RobotsIndex   = "index, follow"
	RobotsNoIndex = "noindex, nofollow, noarchive, nosnippet"
)

// DefaultCacheControl is sent on forwarded responses unless configured.
const DefaultCacheControl = "public, max-age=0, must-revalidate"

var securityHeaders = [][2]string{
	{HeaderFrameOptions, "DENY"},
	{HeaderContentTypeOptions, "nosniff"},
	{HeaderXSSProtection, "1; mode=block"},
	{HeaderReferrerPolicy, "strict-origin-when-cross-origin"},
	{HeaderPermissionsPolicy, "camera=(), microphone=(), geolocation=(), payment=()"},
	{HeaderHSTS, "max-age=31536000; includeSubDomains; preload"},
	{HeaderRobotsTag, RobotsIndex},
}

func decorate(h http.Header, cacheControl string) {
	for _, kv := range securityHeaders {
		h.Set(kv[0], kv[1])
	}
	h.Set(HeaderCacheControl, cacheControl)
}

func setRateLimitHeaders(h http.Header, res ratelimiter.Result, window time.Duration) {
	h.Set(HeaderRetryAfter, strconv.Itoa(int(window.Seconds())))
	h.Set(HeaderRateLimitLimit, strconv.Itoa(res.Limit))
	h.Set(HeaderRateLimitRemaining, strconv.Itoa(res.Remaining))
	h.Set(HeaderRateLimitReset, strconv.FormatInt(res.ResetAt.Unix(), 10))
}

// decoratingWriter applies the security headers right before the status line
// is written, overriding whatever the downstream handler set.
type decoratingWriter struct {
	http.ResponseWriter
	cacheControl string
	wroteHeader  bool
}

func (w *decoratingWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		decorate(w.ResponseWriter.Header(), w.cacheControl)
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *decoratingWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *decoratingWriter) Flush() {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *decoratingWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		conn, rw, err := h.Hijack()
		if err == nil {
			w.wroteHeader = true
		}
		return conn, rw, err
	}
	return nil, nil, errors.New("gatekeeper: response writer does not support hijacking")
}

func (w *decoratingWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// finish decorates responses whose handler never wrote anything.
func (w *decoratingWriter) finish() {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
}
