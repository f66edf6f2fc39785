package dispatch

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// Evaluation operators supported by JSON_BODY dispatcher rules.
const (
	OperatorEquals   = "equals"
	OperatorRange    = "range"
	OperatorSize     = "size"
	OperatorRegexp   = "regexp"
	OperatorPresence = "presence"
)

// defaultCase is the fallback label consulted when no case matches.
const defaultCase = "default"

// EvaluationSpecification is the parsed form of a JSON_BODY dispatcher
// rule: a JSONPath expression, an operator and a set of labelled cases.
//
//	{"exp": "$.country", "operator": "equals",
//	 "cases": {"FR": "france_response", "default": "other_response"}}
type EvaluationSpecification struct {
	Exp      string            `json:"exp"`
	Operator string            `json:"operator"`
	Cases    map[string]string `json:"cases"`
}

// BuildEvaluationSpecification parses dispatcher rules into an
// EvaluationSpecification. Malformed rules are a normal error, not a
// fault: callers report "no criteria" and continue.
func BuildEvaluationSpecification(rules string) (*EvaluationSpecification, error) {
	var spec EvaluationSpecification
	if err := json.Unmarshal([]byte(rules), &spec); err != nil {
		return nil, fmt.Errorf("dispatcher rules are not a valid JSON evaluation specification: %w", err)
	}
	if spec.Exp == "" {
		return nil, fmt.Errorf("evaluation specification has no expression")
	}
	if _, err := jp.ParseString(spec.Exp); err != nil {
		return nil, fmt.Errorf("invalid JSONPath expression %q: %w", spec.Exp, err)
	}
	return &spec, nil
}

// EvaluateJSONBody evaluates body against spec and returns the label of
// the matching case, or the default case's label when nothing matches.
// An empty result means the evaluation selected no case.
func EvaluateJSONBody(body string, spec *EvaluationSpecification) (string, error) {
	var data interface{}
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return "", fmt.Errorf("request body is not valid JSON: %w", err)
	}

	expr, err := jp.ParseString(spec.Exp)
	if err != nil {
		return "", fmt.Errorf("invalid JSONPath expression %q: %w", spec.Exp, err)
	}
	results := expr.Get(data)

	switch spec.Operator {
	case OperatorPresence:
		if len(results) > 0 {
			return caseOrDefault(spec.Cases, "found"), nil
		}
		return caseOrDefault(spec.Cases, "missing"), nil

	case OperatorEquals, "":
		if len(results) == 0 {
			return spec.Cases[defaultCase], nil
		}
		return caseOrDefault(spec.Cases, stringifyValue(results[0])), nil

	case OperatorRegexp:
		if len(results) == 0 {
			return spec.Cases[defaultCase], nil
		}
		value := stringifyValue(results[0])
		for pattern, label := range spec.Cases {
			if pattern == defaultCase {
				continue
			}
			if matched, err := regexp.MatchString(pattern, value); err == nil && matched {
				return label, nil
			}
		}
		return spec.Cases[defaultCase], nil

	case OperatorRange:
		if len(results) == 0 {
			return spec.Cases[defaultCase], nil
		}
		n, ok := toNumber(results[0])
		if !ok {
			return "", fmt.Errorf("range operator requires a numeric value, got %T", results[0])
		}
		return matchIntervalCase(spec.Cases, n), nil

	case OperatorSize:
		if len(results) == 0 {
			return spec.Cases[defaultCase], nil
		}
		arr, ok := results[0].([]interface{})
		if !ok {
			return "", fmt.Errorf("size operator requires an array value, got %T", results[0])
		}
		return matchIntervalCase(spec.Cases, float64(len(arr))), nil

	default:
		return "", fmt.Errorf("unknown evaluation operator %q", spec.Operator)
	}
}

// caseOrDefault returns the label for key, falling back to the default case.
func caseOrDefault(cases map[string]string, key string) string {
	if label, ok := cases[key]; ok {
		return label
	}
	return cases[defaultCase]
}

// matchIntervalCase matches n against interval-notation case keys like
// "[1;3]" (inclusive bounds) or "]0;10[" (exclusive bounds) and returns
// the first matching label, falling back to the default case. Map
// iteration order does not matter as long as intervals are disjoint,
// which is the rule author's contract.
func matchIntervalCase(cases map[string]string, n float64) string {
	for key, label := range cases {
		if key == defaultCase {
			continue
		}
		if matchesInterval(key, n) {
			return label
		}
	}
	return cases[defaultCase]
}

// matchesInterval reports whether n falls within an interval-notation
// key. The opening bracket "[" includes the lower bound, "]" excludes
// it; the closing bracket "]" includes the upper bound, "[" excludes it.
func matchesInterval(key string, n float64) bool {
	if len(key) < 5 {
		return false
	}
	opening, closing := key[0], key[len(key)-1]
	if (opening != '[' && opening != ']') || (closing != '[' && closing != ']') {
		return false
	}

	bounds := strings.Split(key[1:len(key)-1], ";")
	if len(bounds) != 2 {
		return false
	}
	min, err1 := strconv.ParseFloat(strings.TrimSpace(bounds[0]), 64)
	max, err2 := strconv.ParseFloat(strings.TrimSpace(bounds[1]), 64)
	if err1 != nil || err2 != nil {
		return false
	}

	if opening == '[' {
		if n < min {
			return false
		}
	} else if n <= min {
		return false
	}
	if closing == ']' {
		if n > max {
			return false
		}
	} else if n >= max {
		return false
	}
	return true
}

// stringifyValue renders a JSON value the way a case label would spell it.
func stringifyValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case nil:
		return "null"
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}

// toNumber attempts to interpret a JSON value as a number.
func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
