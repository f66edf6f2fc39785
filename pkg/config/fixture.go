package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/virtmock/virtmock/internal/storage"
	"github.com/virtmock/virtmock/pkg/virt"
)

// ErrInvalidFixture is returned for structurally invalid fixture files.
var ErrInvalidFixture = errors.New("invalid service fixture")

// ServiceFixture is the on-disk provisioning format: one virtualized
// service plus its canned responses. Fixtures are the out-of-band
// import path; at request time everything is read-only.
type ServiceFixture struct {
	Service   *virt.Service     `yaml:"service" json:"service"`
	Responses []ResponseFixture `yaml:"responses" json:"responses"`
}

// ResponseFixture ties a stored response to its operation by name.
type ResponseFixture struct {
	// Operation is the name of the owning operation within the service.
	Operation string `yaml:"operation" json:"operation"`

	Name             string        `yaml:"name" json:"name"`
	MediaType        string        `yaml:"mediaType" json:"mediaType"`
	Status           string        `yaml:"status" json:"status"`
	Headers          []virt.Header `yaml:"headers" json:"headers"`
	DispatchCriteria string        `yaml:"dispatchCriteria" json:"dispatchCriteria"`
	Content          string        `yaml:"content" json:"content"`
}

// LoadFixtureFile reads a ServiceFixture from a YAML or JSON file,
// detected by extension.
func LoadFixtureFile(path string) (*ServiceFixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	var fixture ServiceFixture
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		if err := json.Unmarshal(data, &fixture); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFixture, path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &fixture); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFixture, path, err)
		}
	}

	if err := fixture.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFixture, path, err)
	}
	return &fixture, nil
}

// LoadFixturesDir loads every .yaml/.yml/.json fixture in dir, sorted by
// file name so registration order is stable.
func LoadFixturesDir(dir string) ([]*ServiceFixture, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml", ".json":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	fixtures := make([]*ServiceFixture, 0, len(paths))
	for _, path := range paths {
		fixture, err := LoadFixtureFile(path)
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, fixture)
	}
	return fixtures, nil
}

// validate checks structural integrity: the service identity must be
// set, operation identities must be unique within the service, and every
// response must reference a declared operation.
func (f *ServiceFixture) validate() error {
	if f.Service == nil {
		return errors.New("fixture has no service")
	}
	if f.Service.Name == "" || f.Service.Version == "" {
		return errors.New("service requires both name and version")
	}

	seen := make(map[string]bool, len(f.Service.Operations))
	byName := make(map[string]*virt.Operation, len(f.Service.Operations))
	for _, op := range f.Service.Operations {
		if op.Name == "" {
			return errors.New("operation requires a name")
		}
		// Duplicate (method, resourcePath) pairs would make resolution
		// order-dependent, so uniqueness is enforced at registration.
		for _, path := range op.ResourcePaths {
			key := strings.ToUpper(op.Method) + " " + path
			if seen[key] {
				return fmt.Errorf("duplicate operation binding %q", key)
			}
			seen[key] = true
		}
		byName[op.Name] = op
	}

	for _, r := range f.Responses {
		if r.Name == "" {
			return errors.New("response requires a name")
		}
		if _, ok := byName[r.Operation]; !ok {
			return fmt.Errorf("response %q references unknown operation %q", r.Name, r.Operation)
		}
	}
	return nil
}

// RegisterInto provisions the fixture's service and responses into the
// given stores, deriving stable operation IDs with the shared builders.
func (f *ServiceFixture) RegisterInto(services *storage.InMemoryServiceStore, responses *storage.InMemoryResponseStore) {
	services.Register(f.Service)

	byName := make(map[string]*virt.Operation, len(f.Service.Operations))
	for _, op := range f.Service.Operations {
		byName[op.Name] = op
	}

	for _, r := range f.Responses {
		op := byName[r.Operation]
		responses.Register(&virt.Response{
			Name:             r.Name,
			OperationID:      virt.BuildOperationID(f.Service, op),
			MediaType:        r.MediaType,
			Status:           r.Status,
			Headers:          r.Headers,
			DispatchCriteria: r.DispatchCriteria,
			Content:          r.Content,
		})
	}
}
