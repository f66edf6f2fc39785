package script

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtmock/virtmock/internal/dispatch"
)

func TestEvaluateHeaderBranch(t *testing.T) {
	e := New()
	input := dispatch.ScriptInput{
		Method:  "GET",
		Path:    "/pastry",
		Headers: map[string]string{"x-env": "staging"},
	}

	criteria, err := e.Evaluate(`request.headers["x-env"] == "staging" ? "staging_response" : "prod_response"`, input)
	require.NoError(t, err)
	assert.Equal(t, "staging_response", criteria)
}

func TestEvaluateQueryParam(t *testing.T) {
	e := New()
	input := dispatch.ScriptInput{
		Method: "GET",
		Params: map[string]string{"mode": "dev"},
	}

	criteria, err := e.Evaluate(`request.params["mode"]`, input)
	require.NoError(t, err)
	assert.Equal(t, "dev", criteria)
}

func TestEvaluateBodyJSON(t *testing.T) {
	e := New()
	input := dispatch.ScriptInput{
		Method: "POST",
		Body:   `{"customer": {"tier": "gold"}}`,
	}

	criteria, err := e.Evaluate(`bodyJSON.customer.tier`, input)
	require.NoError(t, err)
	assert.Equal(t, "gold", criteria)
}

func TestEvaluatePathParams(t *testing.T) {
	e := New()
	input := dispatch.ScriptInput{
		Method:     "GET",
		PathParams: map[string]string{"id": "42"},
	}

	criteria, err := e.Evaluate(`"order_" + request.pathParams["id"]`, input)
	require.NoError(t, err)
	assert.Equal(t, "order_42", criteria)
}

func TestEvaluateNonStringResult(t *testing.T) {
	e := New()
	_, err := e.Evaluate(`1 + 1`, dispatch.ScriptInput{})
	assert.Error(t, err)
}

func TestEvaluateCompileError(t *testing.T) {
	e := New()
	_, err := e.Evaluate(`request.`, dispatch.ScriptInput{})
	assert.Error(t, err)
}

func TestEvaluateConcurrentRequestsAreIndependent(t *testing.T) {
	e := New()
	script := `request.params["tenant"]`

	var wg sync.WaitGroup
	for _, tenant := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(tenant string) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				criteria, err := e.Evaluate(script, dispatch.ScriptInput{
					Params: map[string]string{"tenant": tenant},
				})
				assert.NoError(t, err)
				assert.Equal(t, tenant, criteria)
			}
		}(tenant)
	}
	wg.Wait()
}
