package engine

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/virtmock/virtmock/pkg/virt"
)

func TestValidateParameterConstraints(t *testing.T) {
	op := &virt.Operation{
		Name: "GET /pastry",
		ParameterConstraints: []virt.ParameterConstraint{
			{Name: "Authorization", In: virt.LocationHeader, Required: true},
			{Name: "page", In: virt.LocationQuery, Required: true, MustMatchRegexp: `^\d+$`},
		},
	}

	t.Run("all constraints hold", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/rest/P/1.0/pastry?page=2", nil)
		r.Header.Set("Authorization", "Bearer token")
		assert.Empty(t, validateParameterConstraints(op, r))
	})

	t.Run("missing required header", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/rest/P/1.0/pastry?page=2", nil)
		assert.Equal(t, "Parameter Authorization is required", validateParameterConstraints(op, r))
	})

	t.Run("missing required query param", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/rest/P/1.0/pastry", nil)
		r.Header.Set("Authorization", "Bearer token")
		assert.Equal(t, "Parameter page is required", validateParameterConstraints(op, r))
	})

	t.Run("regexp mismatch", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/rest/P/1.0/pastry?page=two", nil)
		r.Header.Set("Authorization", "Bearer token")
		assert.Equal(t, `Parameter page should match ^\d+$`, validateParameterConstraints(op, r))
	})

	t.Run("first violation wins", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/rest/P/1.0/pastry", nil)
		assert.Equal(t, "Parameter Authorization is required", validateParameterConstraints(op, r))
	})
}

func TestValidateConstraintOptionalParam(t *testing.T) {
	op := &virt.Operation{
		ParameterConstraints: []virt.ParameterConstraint{
			{Name: "trace", In: virt.LocationQuery, MustMatchRegexp: `^(on|off)$`},
		},
	}

	// Absent optional parameter is fine.
	r := httptest.NewRequest("GET", "/rest/P/1.0/x", nil)
	assert.Empty(t, validateParameterConstraints(op, r))

	// Present but invalid is a violation.
	r = httptest.NewRequest("GET", "/rest/P/1.0/x?trace=maybe", nil)
	assert.NotEmpty(t, validateParameterConstraints(op, r))
}

func TestValidateConstraintPathLocationNeverViolates(t *testing.T) {
	op := &virt.Operation{
		ParameterConstraints: []virt.ParameterConstraint{
			{Name: "id", In: virt.LocationPath, Required: true},
		},
	}
	r := httptest.NewRequest("GET", "/rest/P/1.0/x", nil)
	assert.Empty(t, validateParameterConstraints(op, r))
}

func TestValidateConstraintBadRegexpIsIgnored(t *testing.T) {
	op := &virt.Operation{
		ParameterConstraints: []virt.ParameterConstraint{
			{Name: "q", In: virt.LocationQuery, MustMatchRegexp: `([`},
		},
	}
	r := httptest.NewRequest("GET", "/rest/P/1.0/x?q=anything", nil)
	assert.Empty(t, validateParameterConstraints(op, r))
}

func TestRecopyHeadersFromConstraints(t *testing.T) {
	op := &virt.Operation{
		ParameterConstraints: []virt.ParameterConstraint{
			{Name: "X-Request-Id", In: virt.LocationHeader, Recopy: true},
			{Name: "X-Quiet", In: virt.LocationHeader},
			{Name: "page", In: virt.LocationQuery, Recopy: true},
		},
	}

	r := httptest.NewRequest("GET", "/rest/P/1.0/x?page=1", nil)
	r.Header.Set("X-Request-Id", "req-42")
	r.Header.Set("X-Quiet", "yes")

	header := make(http.Header)
	header.Set("X-Request-Id", "stored-value")
	recopyHeadersFromConstraints(op, r, header)

	// Recopy overrides a stored header of the same name.
	assert.Equal(t, "req-42", header.Get("X-Request-Id"))
	// Non-recopy and non-header constraints contribute nothing.
	assert.Empty(t, header.Get("X-Quiet"))
	assert.Empty(t, header.Get("page"))
}
