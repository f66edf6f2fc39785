package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtmock/virtmock/pkg/virt"
)

func TestSplitMockPath(t *testing.T) {
	tests := []struct {
		name        string
		escapedPath string
		wantOK      bool
		wantService string
		wantVersion string
		wantPath    string
	}{
		{
			"simple path",
			"/rest/Pastry/1.0/pastry/Eclair",
			true, "Pastry", "1.0", "/pastry/Eclair",
		},
		{
			"encoded service name",
			"/rest/Pastry%20API/1.0/pastry/Eclair",
			true, "Pastry API", "1.0", "/pastry/Eclair",
		},
		{
			"plus-for-space quirk on service",
			"/rest/Pastry+API/1.0/pastry/Eclair",
			true, "Pastry API", "1.0", "/pastry/Eclair",
		},
		{
			"plus in resource path becomes %20",
			"/rest/Pastry/1.0/pastry/Mille+feuille",
			true, "Pastry", "1.0", "/pastry/Mille%20feuille",
		},
		{
			"no resource path",
			"/rest/Pastry/1.0",
			true, "Pastry", "1.0", "",
		},
		{
			"deep resource path",
			"/rest/Blog/0.9/blog/2026/08/posts",
			true, "Blog", "0.9", "/blog/2026/08/posts",
		},
		{"missing version", "/rest/Pastry", false, "", "", ""},
		{"wrong mount", "/api/Pastry/1.0/pastry", false, "", "", ""},
		{"empty service", "/rest//1.0/pastry", false, "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := splitMockPath("/rest", tt.escapedPath)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantService, p.serviceName)
			assert.Equal(t, tt.wantVersion, p.version)
			assert.Equal(t, tt.wantPath, p.resourcePath)
		})
	}
}

func TestSplitMockPathKeepsRawSegments(t *testing.T) {
	p, ok := splitMockPath("/rest", "/rest/Pastry%20API/1.0/pastry/Eclair")
	require.True(t, ok)
	assert.Equal(t, "Pastry%20API", p.rawService)
	assert.Equal(t, "/Pastry%20API/1.0", p.serviceAndVersion())
}

func TestResolveOperation(t *testing.T) {
	svc := &virt.Service{
		Name:    "Pastry API",
		Version: "1.0",
		Operations: []*virt.Operation{
			{Name: "GET /pastry", Method: "GET", ResourcePaths: []string{"/pastry"}},
			{Name: "GET /pastry/{name}", Method: "GET", ResourcePaths: []string{"/pastry/Eclair", "/pastry/Millefeuille"}},
			{Name: "POST /pastry", Method: "POST", ResourcePaths: []string{"/pastry"}},
		},
	}

	tests := []struct {
		name     string
		method   string
		path     string
		wantName string
	}{
		{"list", "GET", "/pastry", "GET /pastry"},
		{"item", "GET", "/pastry/Eclair", "GET /pastry/{name}"},
		{"method distinguishes", "POST", "/pastry", "POST /pastry"},
		{"method case-insensitive", "get", "/pastry", "GET /pastry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := resolveOperation(svc, tt.method, tt.path)
			require.NotNil(t, op)
			assert.Equal(t, tt.wantName, op.Name)
		})
	}

	assert.Nil(t, resolveOperation(svc, "DELETE", "/pastry"))
	assert.Nil(t, resolveOperation(svc, "GET", "/pastry/Tart"))
}

func TestResolveOperationMatchesEncodedPath(t *testing.T) {
	// Resource paths are stored encoded; matching happens before decode.
	svc := &virt.Service{
		Name:    "Pastry API",
		Version: "1.0",
		Operations: []*virt.Operation{
			{Name: "GET /pastry/{name}", Method: "GET", ResourcePaths: []string{"/pastry/Mille%20feuille"}},
		},
	}

	assert.NotNil(t, resolveOperation(svc, "GET", "/pastry/Mille%20feuille"))
	assert.Nil(t, resolveOperation(svc, "GET", "/pastry/Mille feuille"))
}
