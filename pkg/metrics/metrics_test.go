package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtmock/virtmock/pkg/event"
	"github.com/virtmock/virtmock/pkg/virt"
)

func TestConsumeCountsInvocations(t *testing.T) {
	m := New()
	inv := event.Invocation{
		ServiceName:    "Pastry API",
		ServiceVersion: "1.0",
		StatusCode:     200,
		Duration:       25 * time.Millisecond,
	}
	m.Consume(inv)
	m.Consume(inv)

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	found := false
	for _, fam := range families {
		if fam.GetName() != "virtmock_invocations_total" {
			continue
		}
		found = true
		require.Len(t, fam.GetMetric(), 1)
		assert.Equal(t, float64(2), fam.GetMetric()[0].GetCounter().GetValue())
	}
	assert.True(t, found, "invocations counter not gathered")
}

func TestRecordDispatchFailure(t *testing.T) {
	m := New()
	m.RecordDispatchFailure(virt.DispatchJSONBody)
	m.RecordDispatchFailure(virt.DispatchJSONBody)
	m.RecordDispatchFailure(virt.DispatchScript)

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	for _, fam := range families {
		if fam.GetName() != "virtmock_dispatch_failures_total" {
			continue
		}
		assert.Len(t, fam.GetMetric(), 2)
	}
}

func TestHandlerServesExposition(t *testing.T) {
	m := New()
	m.Consume(event.Invocation{ServiceName: "S", ServiceVersion: "1.0", StatusCode: 200})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "virtmock_invocations_total")
}

func TestIndependentRegistries(t *testing.T) {
	// Two instances must not clash on registration.
	assert.NotPanics(t, func() {
		_ = New()
		_ = New()
	})
}
