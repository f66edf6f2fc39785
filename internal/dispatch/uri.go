package dispatch

import (
	"net/url"
	"sort"
	"strings"
)

// templateParamName returns the parameter name of a URI template segment,
// or "" when the segment is literal. Both "{name}" and ":name" template
// forms are recognized.
func templateParamName(segment string) string {
	if strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
		return segment[1 : len(segment)-1]
	}
	if strings.HasPrefix(segment, ":") {
		return segment[1:]
	}
	return ""
}

// ExtractPathParams matches resourcePath against pattern segment by
// segment and returns the values captured by template segments.
func ExtractPathParams(pattern, resourcePath string) map[string]string {
	patternParts := strings.Split(pattern, "/")
	pathParts := strings.Split(resourcePath, "/")

	params := make(map[string]string)
	for i, part := range patternParts {
		if i >= len(pathParts) {
			break
		}
		if name := templateParamName(part); name != "" {
			params[name] = pathParts[i]
		}
	}
	return params
}

// ExtractFromURIPattern extracts a criteria string from resourcePath by
// structurally matching it against pattern. Captured parameters are
// rendered as "/name=value" pairs in name-sorted order so the result is
// deterministic for a given request.
func ExtractFromURIPattern(pattern, resourcePath string) string {
	params := ExtractPathParams(pattern, resourcePath)

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString("/")
		sb.WriteString(name)
		sb.WriteString("=")
		sb.WriteString(params[name])
	}
	return sb.String()
}

// ParseParamRules splits a URI_PARAMS dispatcher rule into the declared
// parameter names, preserving declaration order. Names are separated by
// "&&" (e.g. "status && page").
func ParseParamRules(rules string) []string {
	var names []string
	for _, name := range strings.Split(rules, "&&") {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// ExtractFromURIParams extracts a criteria string from the query part of
// fullURI. For each parameter declared in rules, in rule-declared order,
// a present query parameter contributes "?name=value"; missing parameters
// contribute nothing.
func ExtractFromURIParams(rules, fullURI string) string {
	idx := strings.Index(fullURI, "?")
	if idx < 0 {
		return ""
	}

	values, err := url.ParseQuery(fullURI[idx+1:])
	if err != nil {
		return ""
	}

	var sb strings.Builder
	for _, name := range ParseParamRules(rules) {
		if _, ok := values[name]; !ok {
			continue
		}
		sb.WriteString("?")
		sb.WriteString(name)
		sb.WriteString("=")
		sb.WriteString(values.Get(name))
	}
	return sb.String()
}
