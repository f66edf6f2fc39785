package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtmock/virtmock/internal/storage"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "virtmock.yaml", `
addr: ":9090"
mountPath: /mocks
enableCorsPolicy: true
log:
  level: debug
  format: json
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "/mocks", cfg.MountPath)
	assert.True(t, cfg.EnableCORSPolicy)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromFileDefaultsApply(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "virtmock.yaml", "enableCorsPolicy: true\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "/rest", cfg.MountPath)
}

func TestLoadFromFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFromFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, ErrFileNotFound)

	empty := writeFile(t, dir, "empty.yaml", "")
	_, err = LoadFromFile(empty)
	assert.ErrorIs(t, err, ErrEmptyFile)

	bad := writeFile(t, dir, "bad.yaml", "addr: [\n")
	_, err = LoadFromFile(bad)
	assert.ErrorIs(t, err, ErrInvalidYAML)
}

const pastryFixture = `
service:
  name: Pastry API
  version: "1.0"
  operations:
    - name: GET /pastry/{name}
      method: GET
      dispatcher: URI_PARTS
      resourcePaths:
        - /pastry/Eclair
        - /pastry/Millefeuille
responses:
  - operation: GET /pastry/{name}
    name: eclair
    mediaType: application/json
    status: "200"
    dispatchCriteria: /name=Eclair
    content: '{"name": "Eclair"}'
  - operation: GET /pastry/{name}
    name: millefeuille
    mediaType: application/json
    dispatchCriteria: /name=Millefeuille
    content: '{"name": "Millefeuille"}'
`

func TestLoadFixtureFileAndRegister(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pastry.yaml", pastryFixture)

	fixture, err := LoadFixtureFile(path)
	require.NoError(t, err)
	require.NotNil(t, fixture.Service)
	assert.Equal(t, "Pastry API", fixture.Service.Name)
	require.Len(t, fixture.Responses, 2)

	services := storage.NewInMemoryServiceStore()
	responses := storage.NewInMemoryResponseStore()
	fixture.RegisterInto(services, responses)

	svc, err := services.FindByNameAndVersion("Pastry API", "1.0")
	require.NoError(t, err)
	require.NotNil(t, svc)

	opID := "Pastry API:1.0-GET /pastry/{name}"
	found, err := responses.FindByOperationIDAndDispatchCriteria(opID, "/name=Eclair")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "eclair", found[0].Name)
}

func TestLoadFixtureFileRejectsUnknownOperation(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.yaml", `
service:
  name: S
  version: "1.0"
  operations:
    - name: GET /a
      method: GET
responses:
  - operation: GET /missing
    name: r
`)

	_, err := LoadFixtureFile(path)
	assert.ErrorIs(t, err, ErrInvalidFixture)
}

func TestLoadFixtureFileRejectsDuplicateBinding(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dup.yaml", `
service:
  name: S
  version: "1.0"
  operations:
    - name: GET /a
      method: GET
      resourcePaths: [/a]
    - name: GET /a again
      method: GET
      resourcePaths: [/a]
`)

	_, err := LoadFixtureFile(path)
	assert.ErrorIs(t, err, ErrInvalidFixture)
}

func TestLoadFixturesDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", pastryFixture)
	writeFile(t, dir, "a.yaml", `
service:
  name: Orders API
  version: "2.0"
  operations:
    - name: POST /orders
      method: POST
`)
	writeFile(t, dir, "notes.txt", "ignored")

	fixtures, err := LoadFixturesDir(dir)
	require.NoError(t, err)
	require.Len(t, fixtures, 2)
	// Sorted by file name.
	assert.Equal(t, "Orders API", fixtures[0].Service.Name)
	assert.Equal(t, "Pastry API", fixtures[1].Service.Name)
}
