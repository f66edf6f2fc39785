// Package dispatch computes dispatch criteria for incoming requests.
//
// A dispatch criteria is a pure string reduction of a request, derived
// according to the operation's dispatch style. Both the provisioning
// path and the live request path reduce with the same extraction
// functions, so response lookup is an exact-match key lookup instead of
// re-running extraction against every stored response.
//
// Six mutually exclusive strategies are supported:
//
//   - SEQUENCE and URI_PARTS extract named path segments by structurally
//     matching the resource path against the operation's URI pattern.
//   - URI_PARAMS extracts declared query parameters from the request URL.
//   - URI_ELEMENTS concatenates the two extractions above.
//   - JSON_BODY evaluates a JSON specification (JSONPath expression,
//     operator and labelled cases) against the request body.
//   - SCRIPT delegates to a pluggable script evaluator.
//
// Computation failures are recovered locally: the computer reports "no
// criteria" and logs the cause, never propagating a fault to the caller.
package dispatch
