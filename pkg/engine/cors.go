// CORS preflight convenience for unmatched OPTIONS requests.

package engine

import (
	"net/http"
)

// corsAllowMethods is the fixed method list advertised on preflight.
const corsAllowMethods = "POST, PUT, GET, OPTIONS, DELETE, PATCH"

// writeCORSPreflight answers an unmatched OPTIONS request with a
// permissive preflight response, echoing the requested headers into
// both the allow and expose lists.
func writeCORSPreflight(w http.ResponseWriter, r *http.Request) {
	header := w.Header()
	for _, requested := range r.Header.Values("Access-Control-Request-Headers") {
		header.Add("Access-Control-Allow-Headers", requested)
		header.Add("Access-Control-Expose-Headers", requested)
	}
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Allow-Methods", corsAllowMethods)
	header.Set("Access-Control-Allow-Credentials", "true")
	header.Set("Access-Control-Max-Age", "3600")
	header.Set("Vary", "Accept-Encoding, Origin")
	w.WriteHeader(http.StatusNoContent)
}
