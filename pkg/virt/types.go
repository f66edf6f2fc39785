// Package virt provides the domain types for virtualized services:
// services, their operations, stored responses and the dispatch styles
// used to select a response for a live request.
package virt

import (
	"strings"
)

// DispatchStyle identifies the strategy used to derive a dispatch
// criteria string from an incoming request.
type DispatchStyle string

const (
	DispatchNone        DispatchStyle = ""
	DispatchSequence    DispatchStyle = "SEQUENCE"
	DispatchScript      DispatchStyle = "SCRIPT"
	DispatchURIParams   DispatchStyle = "URI_PARAMS"
	DispatchURIParts    DispatchStyle = "URI_PARTS"
	DispatchURIElements DispatchStyle = "URI_ELEMENTS"
	DispatchJSONBody    DispatchStyle = "JSON_BODY"
)

// ParameterLocation tells where a constrained parameter lives on the request.
type ParameterLocation string

const (
	LocationHeader ParameterLocation = "header"
	LocationQuery  ParameterLocation = "query"
	LocationPath   ParameterLocation = "path"
)

// Service is a virtualized API identified by name and version.
// Services and everything they own are provisioned out-of-band and are
// read-only during request servicing.
type Service struct {
	// Name is the service name as registered (may contain spaces).
	Name string `json:"name" yaml:"name"`

	// Version is the service version string (e.g. "1.0").
	Version string `json:"version" yaml:"version"`

	// Operations is the ordered set of operations this service exposes.
	Operations []*Operation `json:"operations,omitempty" yaml:"operations,omitempty"`
}

// Operation is one logical API action (verb + path) within a Service.
type Operation struct {
	// Name identifies the operation. REST operations conventionally encode
	// "<VERB> <path-pattern>" (e.g. "GET /pastry/{name}").
	Name string `json:"name" yaml:"name"`

	// Method is the HTTP verb this operation answers to.
	Method string `json:"method" yaml:"method"`

	// ResourcePaths is the set of literal (still URL-encoded) resource
	// paths this operation accepts.
	ResourcePaths []string `json:"resourcePaths,omitempty" yaml:"resourcePaths,omitempty"`

	// Dispatcher selects the criteria-computation strategy.
	Dispatcher DispatchStyle `json:"dispatcher,omitempty" yaml:"dispatcher,omitempty"`

	// DispatcherRules is an opaque string whose grammar depends on Dispatcher.
	DispatcherRules string `json:"dispatcherRules,omitempty" yaml:"dispatcherRules,omitempty"`

	// DefaultDelay is an artificial latency in milliseconds applied when the
	// request does not override it. Nil means no default delay.
	DefaultDelay *int64 `json:"defaultDelay,omitempty" yaml:"defaultDelay,omitempty"`

	// ParameterConstraints are validated in order before dispatching.
	ParameterConstraints []ParameterConstraint `json:"parameterConstraints,omitempty" yaml:"parameterConstraints,omitempty"`
}

// HasResourcePath reports whether path is one of the operation's
// registered resource paths.
func (o *Operation) HasResourcePath(path string) bool {
	for _, p := range o.ResourcePaths {
		if p == path {
			return true
		}
	}
	return false
}

// URIPattern returns the operation's path template, stripping any leading
// "<VERB> " prefix from the operation name.
func (o *Operation) URIPattern() string {
	name := o.Name
	for _, verb := range []string{"GET ", "POST ", "PUT ", "DELETE ", "PATCH ", "OPTIONS ", "HEAD "} {
		if strings.HasPrefix(name, verb) {
			return name[len(verb):]
		}
	}
	return name
}

// ParameterConstraint is a declared validation or recopy rule on a
// request parameter.
type ParameterConstraint struct {
	// Name is the parameter (header or query) name.
	Name string `json:"name" yaml:"name"`

	// In is the parameter location (header, query or path).
	In ParameterLocation `json:"in" yaml:"in"`

	// Required makes the parameter's absence a violation.
	Required bool `json:"required,omitempty" yaml:"required,omitempty"`

	// Recopy echoes the request's value into the response header of the
	// same name. Only meaningful for header parameters.
	Recopy bool `json:"recopy,omitempty" yaml:"recopy,omitempty"`

	// MustMatchRegexp, when set, requires a present value to match.
	MustMatchRegexp string `json:"mustMatchRegexp,omitempty" yaml:"mustMatchRegexp,omitempty"`
}

// Response is a stored canned answer for an Operation, keyed by dispatch
// criteria or by name.
type Response struct {
	// Name identifies the response within its operation.
	Name string `json:"name" yaml:"name"`

	// OperationID ties the response to its operation (see BuildOperationID).
	OperationID string `json:"operationId" yaml:"operationId"`

	// MediaType is the response content type used for content negotiation.
	MediaType string `json:"mediaType,omitempty" yaml:"mediaType,omitempty"`

	// Status is the numeric HTTP status as a string. Empty means 200.
	Status string `json:"status,omitempty" yaml:"status,omitempty"`

	// Headers are additional response headers.
	Headers []Header `json:"headers,omitempty" yaml:"headers,omitempty"`

	// DispatchCriteria is the string key this response is stored under.
	DispatchCriteria string `json:"dispatchCriteria,omitempty" yaml:"dispatchCriteria,omitempty"`

	// Content is the (possibly templated) response body.
	Content string `json:"content,omitempty" yaml:"content,omitempty"`
}

// Header is a named response header with one or more values.
type Header struct {
	Name   string   `json:"name" yaml:"name"`
	Values []string `json:"values" yaml:"values"`
}
