// Package apicompat checks that a revised OpenAPI document stays backward
// compatible with a base document. Both YAML and JSON inputs are accepted.
package apicompat

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var supportedMethods = map[string]struct{}{
	"get":     {},
	"put":     {},
	"post":    {},
	"delete":  {},
	"patch":   {},
	"head":    {},
	"options": {},
}

// Operation is the part of an OpenAPI operation the checker compares.
type Operation struct {
	Responses map[string]struct{}
	Secured   bool
}

// Spec maps path -> lowercase method -> operation.
type Spec struct {
	Paths map[string]map[string]Operation
}

// IssueKind classifies a breaking change.
type IssueKind string

const (
	RemovedPath      IssueKind = "removed path"
	RemovedOperation IssueKind = "removed operation"
	RemovedResponse  IssueKind = "removed response code"
	NewlySecured     IssueKind = "newly secured operation"
)

// Issue is one breaking change found by Compare.
type Issue struct {
	Kind   IssueKind
	Method string
	Path   string
	Code   string
}

func (i Issue) String() string {
	switch i.Kind {
	case RemovedPath:
		return fmt.Sprintf("%s: %s", i.Kind, i.Path)
	case RemovedResponse:
		return fmt.Sprintf("%s: %s %s -> %s", i.Kind, strings.ToUpper(i.Method), i.Path, strings.ToUpper(i.Code))
	default:
		return fmt.Sprintf("%s: %s %s", i.Kind, strings.ToUpper(i.Method), i.Path)
	}
}

// Parse reads an OpenAPI/Swagger document. An operation counts as secured
// when it, or the document root, declares a non-empty security list.
func Parse(raw []byte) (Spec, error) {
	doc := map[string]interface{}{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Spec{}, err
	}

	pathsRaw, ok := doc["paths"]
	if !ok {
		return Spec{}, errors.New("missing top-level paths field")
	}
	pathsMap, ok := toMap(pathsRaw)
	if !ok {
		return Spec{}, errors.New("paths is not an object")
	}
	globalSecured := hasSecurity(doc)

	spec := Spec{Paths: make(map[string]map[string]Operation)}
	for pathKey, pathEntry := range pathsMap {
		pathOps, ok := toMap(pathEntry)
		if !ok {
			continue
		}

		ops := make(map[string]Operation)
		for methodKey, methodEntry := range pathOps {
			method := strings.ToLower(strings.TrimSpace(methodKey))
			if _, supported := supportedMethods[method]; !supported {
				continue
			}
			methodMap, ok := toMap(methodEntry)
			if !ok {
				continue
			}

			op := Operation{Responses: make(map[string]struct{}), Secured: globalSecured}
			if _, declared := methodMap["security"]; declared {
				op.Secured = hasSecurity(methodMap)
			}
			if responses, ok := toMap(methodMap["responses"]); ok {
				for code := range responses {
					if normalized := strings.ToLower(strings.TrimSpace(code)); normalized != "" {
						op.Responses[normalized] = struct{}{}
					}
				}
			}
			ops[method] = op
		}

		if len(ops) > 0 {
			spec.Paths[pathKey] = ops
		}
	}
	return spec, nil
}

func hasSecurity(m map[string]interface{}) bool {
	list, ok := m["security"].([]interface{})
	return ok && len(list) > 0
}

func toMap(v interface{}) (map[string]interface{}, bool) {
	switch t := v.(type) {
	case map[string]interface{}:
		return t, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// Compare lists the breaking changes from base to revision, sorted by their
// string form.
func Compare(base, revision Spec) []Issue {
	var issues []Issue

	for path, baseOps := range base.Paths {
		revOps, ok := revision.Paths[path]
		if !ok {
			issues = append(issues, Issue{Kind: RemovedPath, Path: path})
			continue
		}

		for method, baseOp := range baseOps {
			revOp, ok := revOps[method]
			if !ok {
				issues = append(issues, Issue{Kind: RemovedOperation, Method: method, Path: path})
				continue
			}
			if !baseOp.Secured && revOp.Secured {
				issues = append(issues, Issue{Kind: NewlySecured, Method: method, Path: path})
			}
			for code := range baseOp.Responses {
				if _, ok := revOp.Responses[code]; !ok {
					issues = append(issues, Issue{Kind: RemovedResponse, Method: method, Path: path, Code: code})
				}
			}
		}
	}

	sort.Slice(issues, func(i, j int) bool { return issues[i].String() < issues[j].String() })
	return issues
}
