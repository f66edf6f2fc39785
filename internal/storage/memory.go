package storage

import (
	"sync"

	"github.com/virtmock/virtmock/pkg/virt"
)

// InMemoryServiceStore is a thread-safe in-memory implementation of
// ServiceStore.
type InMemoryServiceStore struct {
	mu       sync.RWMutex
	services map[string]*virt.Service
}

// NewInMemoryServiceStore creates a new InMemoryServiceStore.
func NewInMemoryServiceStore() *InMemoryServiceStore {
	return &InMemoryServiceStore{
		services: make(map[string]*virt.Service),
	}
}

// Register stores or replaces a service.
func (s *InMemoryServiceStore) Register(svc *virt.Service) {
	if svc == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[virt.BuildServiceID(svc.Name, svc.Version)] = svc
}

// FindByNameAndVersion retrieves a service by its identity.
// Returns nil when the service is not registered.
func (s *InMemoryServiceStore) FindByNameAndVersion(name, version string) (*virt.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.services[virt.BuildServiceID(name, version)], nil
}

// Count returns the number of registered services.
func (s *InMemoryServiceStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.services)
}

// InMemoryResponseStore is a thread-safe in-memory implementation of
// ResponseStore. Responses are kept in registration order per operation;
// selection falls back to "first in store order", so order is part of
// the contract.
type InMemoryResponseStore struct {
	mu        sync.RWMutex
	responses map[string][]*virt.Response
}

// NewInMemoryResponseStore creates a new InMemoryResponseStore.
func NewInMemoryResponseStore() *InMemoryResponseStore {
	return &InMemoryResponseStore{
		responses: make(map[string][]*virt.Response),
	}
}

// Register appends a response under its operation ID.
func (s *InMemoryResponseStore) Register(r *virt.Response) {
	if r == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[r.OperationID] = append(s.responses[r.OperationID], r)
}

// FindByOperationIDAndDispatchCriteria returns responses stored under the
// exact dispatch criteria for an operation.
func (s *InMemoryResponseStore) FindByOperationIDAndDispatchCriteria(operationID, criteria string) ([]*virt.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*virt.Response
	for _, r := range s.responses[operationID] {
		if r.DispatchCriteria == criteria {
			result = append(result, r)
		}
	}
	return result, nil
}

// FindByOperationIDAndName returns responses whose name equals name.
func (s *InMemoryResponseStore) FindByOperationIDAndName(operationID, name string) ([]*virt.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*virt.Response
	for _, r := range s.responses[operationID] {
		if r.Name == name {
			result = append(result, r)
		}
	}
	return result, nil
}

// FindByOperationID returns all responses for an operation in store order.
func (s *InMemoryResponseStore) FindByOperationID(operationID string) ([]*virt.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.responses[operationID]
	result := make([]*virt.Response, len(stored))
	copy(result, stored)
	return result, nil
}

// Count returns the total number of stored responses.
func (s *InMemoryResponseStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, rs := range s.responses {
		n += len(rs)
	}
	return n
}

// Ensure the in-memory stores satisfy the read interfaces.
var (
	_ ServiceStore  = (*InMemoryServiceStore)(nil)
	_ ResponseStore = (*InMemoryResponseStore)(nil)
)
