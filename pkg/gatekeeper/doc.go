// Package gatekeeper is HTTP middleware that screens every request before it
// reaches application code.
//
// For each request the gatekeeper:
//
//  1. Classifies the User-Agent. Blocked callers get 403 with a noindex robots
//     header.
//  2. Lets allow-listed crawlers through without further checks.
//  3. Counts the request against a fixed window keyed by client IP and answers
//     429 with Retry-After once the ceiling is met.
//  4. Requires a same-site Referer or Origin for protected path prefixes.
//  5. Forwards the request and sets the security header set on the response.
//
// A failing rate-limit store never rejects traffic: the error is logged and
// the request proceeds.
//
//	gk, err := gatekeeper.NewFromConfig(cfg, ratelimiter.NewMemoryStore())
//	if err != nil {
//		return err
//	}
//	r := chi.NewRouter()
//	r.Use(gk.Middleware)
package gatekeeper
