// Package storage provides the read stores backing request dispatch.
package storage

import (
	"github.com/virtmock/virtmock/pkg/virt"
)

// ServiceStore is the read interface for registered services.
// Implementations own consistency of their read snapshot; the dispatch
// core performs no locking of its own.
type ServiceStore interface {
	// FindByNameAndVersion retrieves a service by its identity.
	// Returns nil (and no error) when the service is not registered.
	FindByNameAndVersion(name, version string) (*virt.Service, error)
}

// ResponseStore is the read interface for stored responses. The three
// finders back the selector's fallback tiers; all of them preserve the
// order responses were registered in.
type ResponseStore interface {
	// FindByOperationIDAndDispatchCriteria returns responses stored under
	// the exact dispatch criteria for an operation.
	FindByOperationIDAndDispatchCriteria(operationID, criteria string) ([]*virt.Response, error)

	// FindByOperationIDAndName returns responses whose name equals name.
	FindByOperationIDAndName(operationID, name string) ([]*virt.Response, error)

	// FindByOperationID returns all responses for an operation.
	FindByOperationID(operationID string) ([]*virt.Response, error)
}
