// Package condition evaluates the `if`/`when`/waitFor-custom JSONPath
// conditions used throughout a flow: fetch an object, pull a field out of it
// with a JSONPath expression, and compare it against an expected value.
package condition

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/util/jsonpath"

	"github.com/hashmap-kz/pseudoflow-operator/pkg/kube"
)

// Condition is the Go shape of an `if`/`when` step body's condition fields.
type Condition struct {
	APIVersion string
	Kind       string
	Name       string
	Namespace  string
	Path       string
	Comparator string
	Value      string
}

const (
	Equals      = "equals"
	NotEquals   = "notEquals"
	Contains    = "contains"
	GreaterThan = "greaterThan"
	LessThan    = "lessThan"
)

// Evaluate never returns an error: a fetch failure, a 404, or a JSONPath
// that matches nothing all evaluate to false, matching spec.md's
// "conditions never throw" rule so a flow author can probe for a resource's
// absence without an explicit existence check.
func Evaluate(ctx context.Context, apis *kube.Clients, cond Condition, defaultNS string) bool {
	obj, err := apis.Get(ctx, kube.ResourceRef{
		APIVersion: cond.APIVersion,
		Kind:       cond.Kind,
		Name:       cond.Name,
		Namespace:  cond.Namespace,
	}, defaultNS)
	if err != nil {
		return false
	}

	values, err := lookup(cond.Path, obj)
	if err != nil || len(values) == 0 {
		return false
	}

	for _, v := range values {
		if compare(cond.Comparator, v, cond.Value) {
			return true
		}
	}
	return false
}

// Lookup runs a JSONPath expression against obj's unstructured form,
// returning the string representation of every match. Exported so waitFor's
// `custom` condition can reuse the same JSONPath machinery without
// refetching through Evaluate.
func Lookup(path string, obj *unstructured.Unstructured) ([]string, error) {
	return lookup(path, obj)
}

// Compare applies one of the Equals/NotEquals/Contains/GreaterThan/LessThan
// comparators, exported for the same reason as Lookup.
func Compare(comparator, actual, expected string) bool {
	return compare(comparator, actual, expected)
}

func lookup(path string, obj *unstructured.Unstructured) ([]string, error) {
	jp := jsonpath.New("condition")
	jp.AllowMissingKeys(true)
	if err := jp.Parse(wrapPath(path)); err != nil {
		return nil, err
	}

	results, err := jp.FindResults(obj.Object)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, set := range results {
		for _, r := range set {
			out = append(out, fmt.Sprintf("%v", r.Interface()))
		}
	}
	return out, nil
}

// wrapPath accepts both a braced "{.status.phase}" and the bare
// ".status.phase" form, matching what flow authors write in YAML most
// often; jsonpath.Parse requires the enclosing braces.
func wrapPath(path string) string {
	if len(path) > 0 && path[0] == '{' {
		return path
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	buf.WriteString(path)
	buf.WriteByte('}')
	return buf.String()
}

func compare(comparator, actual, expected string) bool {
	switch comparator {
	case Equals, "":
		return actual == expected
	case NotEquals:
		return actual != expected
	case Contains:
		return strings.Contains(actual, expected)
	case GreaterThan:
		a, errA := strconv.ParseFloat(actual, 64)
		b, errB := strconv.ParseFloat(expected, 64)
		return errA == nil && errB == nil && a > b
	case LessThan:
		a, errA := strconv.ParseFloat(actual, 64)
		b, errB := strconv.ParseFloat(expected, 64)
		return errA == nil && errB == nil && a < b
	default:
		return false
	}
}
