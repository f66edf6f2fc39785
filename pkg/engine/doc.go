// Package engine implements the request-dispatch pipeline of the mock
// server: operation resolution, parameter-constraint enforcement,
// dispatch criteria computation, tiered response selection and response
// materialization, plus CORS preflight convenience for unmatched
// OPTIONS requests.
package engine
