package dispatch

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/virtmock/virtmock/pkg/virt"
)

// ScriptInput carries the request bindings handed to a script evaluation.
type ScriptInput struct {
	// Method is the HTTP verb of the request.
	Method string
	// Path is the decoded resource path.
	Path string
	// Body is the raw request body.
	Body string
	// Headers holds the first value of each request header, lower-cased names.
	Headers map[string]string
	// Params holds the first value of each query parameter.
	Params map[string]string
	// PathParams holds the values captured from the URI pattern.
	PathParams map[string]string
}

// ScriptEvaluator evaluates a SCRIPT dispatcher rule against request
// bindings and returns the criteria string the script produced.
// Implementations must not retain cross-request mutable bindings.
type ScriptEvaluator interface {
	Evaluate(script string, input ScriptInput) (string, error)
}

// Computer derives dispatch criteria strings from live requests.
// It is stateless apart from its collaborators and safe for concurrent use.
type Computer struct {
	scripts ScriptEvaluator
	log     *slog.Logger
}

// NewComputer creates a Computer. The script evaluator may be nil, in
// which case SCRIPT operations compute no criteria.
func NewComputer(scripts ScriptEvaluator, log *slog.Logger) *Computer {
	if log == nil {
		log = slog.Default()
	}
	return &Computer{scripts: scripts, log: log}
}

// Compute derives the dispatch criteria for a request according to the
// operation's dispatch style. The second return value is false when no
// criteria could be computed: for the NONE style, and for any
// computation failure. Failures are logged, never propagated.
func (c *Computer) Compute(op *virt.Operation, uriPattern, resourcePath string, r *http.Request, body string) (string, bool) {
	switch op.Dispatcher {
	case virt.DispatchSequence, virt.DispatchURIParts:
		return ExtractFromURIPattern(uriPattern, resourcePath), true

	case virt.DispatchURIParams:
		return ExtractFromURIParams(op.DispatcherRules, fullRequestURL(r)), true

	case virt.DispatchURIElements:
		criteria := ExtractFromURIPattern(uriPattern, resourcePath)
		criteria += ExtractFromURIParams(op.DispatcherRules, fullRequestURL(r))
		return criteria, true

	case virt.DispatchJSONBody:
		spec, err := BuildEvaluationSpecification(op.DispatcherRules)
		if err != nil {
			c.log.Error("dispatcher rules cannot be interpreted as a JSON evaluation specification",
				"operation", op.Name, "error", err)
			return "", false
		}
		criteria, err := EvaluateJSONBody(body, spec)
		if err != nil {
			c.log.Error("JSON body evaluation failed", "operation", op.Name, "error", err)
			return "", false
		}
		return criteria, criteria != ""

	case virt.DispatchScript:
		if c.scripts == nil {
			c.log.Error("no script evaluator configured", "operation", op.Name)
			return "", false
		}
		criteria, err := c.scripts.Evaluate(op.DispatcherRules, buildScriptInput(r, resourcePath, uriPattern, body))
		if err != nil {
			c.log.Error("script evaluation failed", "operation", op.Name, "error", err)
			return "", false
		}
		return criteria, true

	default:
		return "", false
	}
}

// buildScriptInput collects request bindings for script evaluation.
func buildScriptInput(r *http.Request, resourcePath, uriPattern, body string) ScriptInput {
	headers := make(map[string]string, len(r.Header))
	for name, values := range r.Header {
		if len(values) > 0 {
			headers[strings.ToLower(name)] = values[0]
		}
	}

	params := make(map[string]string)
	for name, values := range r.URL.Query() {
		if len(values) > 0 {
			params[name] = values[0]
		}
	}

	return ScriptInput{
		Method:     r.Method,
		Path:       resourcePath,
		Body:       body,
		Headers:    headers,
		Params:     params,
		PathParams: ExtractPathParams(uriPattern, resourcePath),
	}
}

// fullRequestURL rebuilds the full request URL (scheme, host, path and
// query) the way the client addressed it.
func fullRequestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return fmt.Sprintf("%s://%s%s", scheme, r.Host, r.URL.RequestURI())
}
