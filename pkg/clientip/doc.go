// Package clientip resolves the originating client address of an HTTP
// request behind reverse proxies and edge networks.
//
// A Resolver walks a list of trusted headers in order and returns the first
// valid address, falling back to the TCP peer in RemoteAddr. The default
// order matches a Vercel/Cloudflare style edge:
//
//  1. X-Forwarded-For  – comma-separated, first valid entry wins
//  2. X-Real-IP
//  3. CF-Connecting-IP
//  4. RemoteAddr
//
// Resolution is best effort. Headers are client controlled unless the edge
// overwrites them, so callers must not use the result for authentication.
// An empty string means no valid address was found.
//
//	ip := clientip.GetIP(r)
//
//	mux := clientip.Middleware(next) // stores the address in the request context
//	ip = clientip.FromContext(r.Context())
package clientip
