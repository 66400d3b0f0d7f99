// Package session provides the per-virtual-user HTTP capability used by every
// load scenario.
//
// A Session owns its own http.Client, cookie jar and credentials. It resolves
// relative URLs against the circulation manager host, reads response bodies
// with a size limit, and turns any 4xx/5xx status into an *HTTPStatusError.
//
// Design decision: Status checking lives in the session rather than in each
// caller because:
//  1. Every workflow step treats an error status as fatal
//  2. Callers only have to deal with one error type for HTTP failures
//  3. The status, URL and body are preserved for logs and reports
//
// Credentials are attached after login through SetAuthenticator. Until then
// AuthHeaders returns ErrNotAuthenticated, so steps that need an
// authenticated user fail loudly instead of sending anonymous requests.
package session
