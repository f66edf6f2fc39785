// Package script evaluates SCRIPT dispatcher rules with expr-lang
// expressions. Scripts see the request through a read-only environment
// and must return the dispatch criteria as a string.
package script

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/virtmock/virtmock/internal/dispatch"
)

// Evaluator compiles and runs dispatch scripts. Compiled programs are
// cached per script; the environment is rebuilt for every invocation so
// no request state leaks across evaluations.
type Evaluator struct {
	mu    sync.RWMutex
	cache map[string]*vm.Program
}

// New creates an Evaluator with an empty program cache.
func New() *Evaluator {
	return &Evaluator{cache: make(map[string]*vm.Program)}
}

// Evaluate runs script against the request bindings and returns the
// string the script produced. A script returning anything but a string
// is an evaluation failure.
func (e *Evaluator) Evaluate(script string, input dispatch.ScriptInput) (string, error) {
	env := buildEnv(input)

	program, err := e.compile(script, env)
	if err != nil {
		return "", fmt.Errorf("compile script: %w", err)
	}

	result, err := expr.Run(program, env)
	if err != nil {
		return "", fmt.Errorf("run script: %w", err)
	}

	criteria, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("script returned %T, expected string", result)
	}
	return criteria, nil
}

func (e *Evaluator) compile(script string, env map[string]interface{}) (*vm.Program, error) {
	e.mu.RLock()
	if program, ok := e.cache[script]; ok {
		e.mu.RUnlock()
		return program, nil
	}
	e.mu.RUnlock()

	program, err := expr.Compile(script, expr.Env(env))
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	// Another goroutine may have compiled the same script meanwhile.
	if existing, ok := e.cache[script]; ok {
		e.mu.Unlock()
		return existing, nil
	}
	e.cache[script] = program
	e.mu.Unlock()

	return program, nil
}

// buildEnv assembles the script environment. The request body is also
// exposed pre-parsed as bodyJSON when it is valid JSON, so scripts can
// branch on payload fields without parsing themselves.
func buildEnv(input dispatch.ScriptInput) map[string]interface{} {
	var bodyJSON interface{}
	if input.Body != "" {
		if err := json.Unmarshal([]byte(input.Body), &bodyJSON); err != nil {
			bodyJSON = nil
		}
	}

	return map[string]interface{}{
		"request": map[string]interface{}{
			"method":     input.Method,
			"path":       input.Path,
			"body":       input.Body,
			"headers":    input.Headers,
			"params":     input.Params,
			"pathParams": input.PathParams,
		},
		"bodyJSON": bodyJSON,
	}
}

// Ensure Evaluator satisfies the dispatcher's contract.
var _ dispatch.ScriptEvaluator = (*Evaluator)(nil)
