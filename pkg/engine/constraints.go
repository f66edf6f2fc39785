package engine

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/virtmock/virtmock/pkg/virt"
)

// validateParameterConstraints checks the request against the
// operation's declared constraints in order and returns the first
// violation message, or "" when every constraint holds. Validation runs
// before any dispatch computation so malformed requests are rejected
// cheaply.
func validateParameterConstraints(op *virt.Operation, r *http.Request) string {
	for _, c := range op.ParameterConstraints {
		if msg := validateConstraint(r, c); msg != "" {
			return msg
		}
	}
	return ""
}

// validateConstraint validates one constraint. Path parameters are
// never violated: a resolved operation implies the path was present.
func validateConstraint(r *http.Request, c virt.ParameterConstraint) string {
	var value string
	var present bool

	switch c.In {
	case virt.LocationHeader:
		value = r.Header.Get(c.Name)
		present = len(r.Header.Values(c.Name)) > 0
	case virt.LocationQuery:
		values, ok := r.URL.Query()[c.Name]
		present = ok
		if ok && len(values) > 0 {
			value = values[0]
		}
	default:
		return ""
	}

	if c.Required && !present {
		return fmt.Sprintf("Parameter %s is required", c.Name)
	}
	if present && c.MustMatchRegexp != "" {
		re, err := regexp.Compile(c.MustMatchRegexp)
		if err != nil {
			// An unparseable constraint regexp is a provisioning bug,
			// not a client error.
			return ""
		}
		if !re.MatchString(value) {
			return fmt.Sprintf("Parameter %s should match %s", c.Name, c.MustMatchRegexp)
		}
	}
	return ""
}

// recopyHeadersFromConstraints echoes request header values into the
// response for every header constraint flagged recopy. Recopied values
// override stored response headers of the same name.
func recopyHeadersFromConstraints(op *virt.Operation, r *http.Request, header http.Header) {
	for _, c := range op.ParameterConstraints {
		if c.In != virt.LocationHeader || !c.Recopy {
			continue
		}
		if value := r.Header.Get(c.Name); value != "" {
			header.Set(c.Name, value)
		}
	}
}
