// Package render materializes templated response content. Response
// bodies may embed {{expression}} tokens resolved against the live
// request plus a few generator builtins.
package render

import (
	"math/rand"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/virtmock/virtmock/pkg/virt"
)

// Renderer produces the final response body from a stored response
// template and the live request. Implementations must be pure with
// respect to stored data.
type Renderer interface {
	Render(requestBody, resourcePath string, r *http.Request, response *virt.Response) string
}

// Engine is the default Renderer. It is stateless and safe for
// concurrent use.
type Engine struct{}

// New creates a template rendering engine.
func New() *Engine {
	return &Engine{}
}

// templateRegex matches {{expression}} tokens with optional whitespace.
var templateRegex = regexp.MustCompile(`\{\{\s*([^}]+?)\s*\}\}`)

// randomIntPattern matches randomInt or randomInt(min, max).
var randomIntPattern = regexp.MustCompile(`^randomInt(?:\((\d+),\s*(\d+)\))?$`)

// Render substitutes every {{expression}} token in the stored content.
// Unknown expressions are left untouched so literal bodies that happen
// to contain braces survive rendering.
func (e *Engine) Render(requestBody, resourcePath string, r *http.Request, response *virt.Response) string {
	if response == nil {
		return ""
	}
	content := response.Content
	if !strings.Contains(content, "{{") {
		return content
	}

	return templateRegex.ReplaceAllStringFunc(content, func(match string) string {
		inner := templateRegex.FindStringSubmatch(match)
		if len(inner) < 2 {
			return match
		}
		if value, ok := evaluate(strings.TrimSpace(inner[1]), requestBody, resourcePath, r); ok {
			return value
		}
		return match
	})
}

// evaluate resolves a single template expression. The boolean is false
// for expressions the engine does not understand.
func evaluate(expr, requestBody, resourcePath string, r *http.Request) (string, bool) {
	switch expr {
	case "uuid", "guid":
		return uuid.New().String(), true
	case "now":
		return time.Now().Format(time.RFC3339), true
	case "timestamp":
		return strconv.FormatInt(time.Now().Unix(), 10), true
	case "request.body":
		return requestBody, true
	case "request.path":
		return resourcePath, true
	case "request.method":
		return r.Method, true
	}

	if m := randomIntPattern.FindStringSubmatch(expr); m != nil {
		lo, hi := 0, 100
		if m[1] != "" {
			lo, _ = strconv.Atoi(m[1])
			hi, _ = strconv.Atoi(m[2])
		}
		if hi <= lo {
			return strconv.Itoa(lo), true
		}
		return strconv.Itoa(lo + rand.Intn(hi-lo+1)), true
	}

	if name, ok := strings.CutPrefix(expr, "request.params."); ok {
		return r.URL.Query().Get(name), true
	}
	if name, ok := strings.CutPrefix(expr, "request.headers."); ok {
		return r.Header.Get(name), true
	}

	return "", false
}

// Ensure Engine satisfies Renderer.
var _ Renderer = (*Engine)(nil)
