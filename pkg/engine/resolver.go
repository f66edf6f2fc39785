package engine

import (
	"net/url"
	"strings"

	"github.com/virtmock/virtmock/pkg/virt"
)

// mockPath is a request path split into its mock addressing parts.
type mockPath struct {
	// rawService and rawVersion are the segments exactly as they
	// appeared on the URL, still percent-encoded. They are reused when
	// rebuilding absolute Location headers.
	rawService string
	rawVersion string

	// serviceName is the decoded service name, with the legacy
	// '+'-for-space encoding quirk undone.
	serviceName string

	// version is the decoded service version.
	version string

	// resourcePath is the still-encoded URI suffix after the
	// service/version segments, with '+' re-encoded as %20 to match
	// the stored resource paths.
	resourcePath string
}

// serviceAndVersion returns the encoded "/{service}/{version}" prefix.
func (p mockPath) serviceAndVersion() string {
	return "/" + p.rawService + "/" + p.rawVersion
}

// splitMockPath splits an escaped request path of shape
// "{mount}/{service}/{version}/{...resourcePath}" into its parts.
// Returns false when the path does not have that shape.
//
// Two legacy encoding quirks are preserved deliberately: a '+' in the
// service segment is read as a space, and a '+' in the resource path is
// normalized to "%20" before matching. Fixtures may depend on both.
func splitMockPath(mount, escapedPath string) (mockPath, bool) {
	prefix := strings.TrimSuffix(mount, "/") + "/"
	if !strings.HasPrefix(escapedPath, prefix) {
		return mockPath{}, false
	}
	rest := escapedPath[len(prefix):]

	slash := strings.Index(rest, "/")
	if slash <= 0 {
		return mockPath{}, false
	}
	rawService := rest[:slash]
	rest = rest[slash+1:]

	var rawVersion, resourcePath string
	if slash = strings.Index(rest, "/"); slash < 0 {
		rawVersion = rest
	} else {
		rawVersion = rest[:slash]
		resourcePath = rest[slash:]
	}
	if rawVersion == "" {
		return mockPath{}, false
	}

	serviceName, err := url.PathUnescape(rawService)
	if err != nil {
		serviceName = rawService
	}
	version, err := url.PathUnescape(rawVersion)
	if err != nil {
		version = rawVersion
	}

	if strings.Contains(serviceName, "+") {
		serviceName = strings.ReplaceAll(serviceName, "+", " ")
	}
	if strings.Contains(resourcePath, "+") {
		resourcePath = strings.ReplaceAll(resourcePath, "+", "%20")
	}

	return mockPath{
		rawService:   rawService,
		rawVersion:   rawVersion,
		serviceName:  serviceName,
		version:      version,
		resourcePath: resourcePath,
	}, true
}

// resolveOperation scans the service's operations for one matching the
// request method (case-insensitive) and the still-encoded resource
// path. Uniqueness of (method, resourcePath) bindings is enforced at
// provisioning time, so the linear scan has at most one match.
func resolveOperation(service *virt.Service, method, resourcePath string) *virt.Operation {
	for _, op := range service.Operations {
		if strings.EqualFold(op.Method, method) && op.HasResourcePath(resourcePath) {
			return op
		}
	}
	return nil
}
