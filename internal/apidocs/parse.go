// Copyright 2025 Ehab Terra
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package apidocs retrieves a vendor's API description and flattens it into
// a list of endpoints. Swagger 2.0, OpenAPI 3 and the legacy flat JSON list
// published with the v0 dashboard API are understood.
package apidocs

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned when a document is neither OpenAPI nor the
// legacy endpoint list.
var ErrUnknownFormat = errors.New("unknown API description format")

var curlyPlaceholder = regexp.MustCompile(`\{([^{}/]+)\}`)

// BracketPath rewrites OpenAPI `{name}` placeholders into the `[name]` form
// used throughout the generator.
func BracketPath(path string) string {
	return curlyPlaceholder.ReplaceAllString(path, "[$1]")
}

// Parse detects the document format and returns its endpoints sorted with
// SortEndpoints.
func Parse(data []byte) ([]Endpoint, error) {
	raw, jsonData, err := decodeAny(data)
	if err != nil {
		return nil, err
	}

	switch doc := raw.(type) {
	case map[string]any:
		if _, ok := doc["swagger"]; ok {
			return parseSwagger(jsonData)
		}
		if _, ok := doc["openapi"]; ok {
			return parseOpenAPI3(jsonData)
		}
	case []any:
		return parseLegacy(jsonData)
	}
	return nil, ErrUnknownFormat
}

// decodeAny decodes JSON or YAML into a generic value and returns the JSON
// encoding of it, which is what the kin-openapi types unmarshal from.
func decodeAny(data []byte) (any, []byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil, fmt.Errorf("%w: empty document", ErrUnknownFormat)
	}

	var raw any
	if trimmed[0] == '{' || trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, nil, fmt.Errorf("failed to decode JSON description: %w", err)
		}
		return raw, trimmed, nil
	}

	if err := yaml.Unmarshal(trimmed, &raw); err != nil {
		return nil, nil, fmt.Errorf("failed to decode YAML description: %w", err)
	}
	raw = stringKeys(raw)
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to re-encode YAML description: %w", err)
	}
	return raw, jsonData, nil
}

// stringKeys converts YAML mappings with non-string keys, such as unquoted
// response codes, into string-keyed maps that encoding/json accepts.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = stringKeys(val)
		}
		return m
	case map[string]any:
		for k, val := range t {
			t[k] = stringKeys(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = stringKeys(val)
		}
		return t
	default:
		return v
	}
}

func parseSwagger(data []byte) ([]Endpoint, error) {
	var doc2 openapi2.T
	if err := json.Unmarshal(data, &doc2); err != nil {
		return nil, fmt.Errorf("failed to parse swagger document: %w", err)
	}
	doc3, err := openapi2conv.ToV3(&doc2)
	if err != nil {
		return nil, fmt.Errorf("failed to convert swagger document: %w", err)
	}
	return fromOpenAPI3(doc3), nil
}

func parseOpenAPI3(data []byte) ([]Endpoint, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = false
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI document: %w", err)
	}
	return fromOpenAPI3(doc), nil
}

func parseLegacy(data []byte) ([]Endpoint, error) {
	var eps []Endpoint
	if err := json.Unmarshal(data, &eps); err != nil {
		return nil, fmt.Errorf("failed to parse endpoint list: %w", err)
	}
	for i := range eps {
		ep := &eps[i]
		if ep.Verb == "" || ep.Path == "" {
			return nil, fmt.Errorf("endpoint %d: http_method and path are required", i)
		}
		ep.Verb = strings.ToUpper(ep.Verb)
		ep.Path = BracketPath(ep.Path)
		if ep.Summary == "" {
			ep.Summary = firstLine(ep.Description)
		}
		if ep.Section == "" {
			ep.Section = sectionFromPath(ep.Path)
		}
	}
	SortEndpoints(eps)
	return eps, nil
}

func fromOpenAPI3(doc *openapi3.T) []Endpoint {
	if doc == nil || doc.Paths == nil {
		return nil
	}

	var eps []Endpoint
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for verb, op := range item.Operations() {
			if op == nil {
				continue
			}
			eps = append(eps, endpointFromOperation(path, verb, item, op))
		}
	}
	SortEndpoints(eps)
	return eps
}

func endpointFromOperation(path, verb string, item *openapi3.PathItem, op *openapi3.Operation) Endpoint {
	ep := Endpoint{
		Verb:        strings.ToUpper(verb),
		Path:        BracketPath(path),
		OperationID: op.OperationID,
		Summary:     op.Summary,
		Description: op.Description,
	}
	if ep.Summary == "" {
		ep.Summary = firstLine(op.Description)
	}
	if len(op.Tags) > 0 {
		ep.Section = op.Tags[0]
	} else {
		ep.Section = sectionFromPath(ep.Path)
	}

	// Operation parameters override path-level ones with the same name and location.
	seen := make(map[string]int)
	addParam := func(ref *openapi3.ParameterRef) {
		if ref == nil || ref.Value == nil {
			return
		}
		p := Param{
			Name:        ref.Value.Name,
			In:          ref.Value.In,
			Required:    ref.Value.Required,
			Description: ref.Value.Description,
		}
		key := p.In + "/" + p.Name
		if i, ok := seen[key]; ok {
			ep.Params[i] = p
			return
		}
		seen[key] = len(ep.Params)
		ep.Params = append(ep.Params, p)
	}
	for _, ref := range item.Parameters {
		addParam(ref)
	}
	for _, ref := range op.Parameters {
		addParam(ref)
	}

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		ep.Params = append(ep.Params, bodyParams(op.RequestBody.Value)...)
	}
	ep.SampleResponse = sampleResponse(op)
	return ep
}

func bodyParams(rb *openapi3.RequestBody) []Param {
	mt := preferredMediaType(rb.Content)
	if mt != nil && mt.Schema != nil && mt.Schema.Value != nil && len(mt.Schema.Value.Properties) > 0 {
		schema := mt.Schema.Value
		required := make(map[string]bool, len(schema.Required))
		for _, r := range schema.Required {
			required[r] = true
		}
		names := make([]string, 0, len(schema.Properties))
		for name := range schema.Properties {
			names = append(names, name)
		}
		sort.Strings(names)

		params := make([]Param, 0, len(names))
		for _, name := range names {
			p := Param{Name: name, In: InBody, Required: required[name]}
			if prop := schema.Properties[name]; prop != nil && prop.Value != nil {
				p.Description = prop.Value.Description
			}
			params = append(params, p)
		}
		return params
	}
	return []Param{{Name: "body", In: InBody, Required: rb.Required, Description: rb.Description}}
}

func preferredMediaType(content openapi3.Content) *openapi3.MediaType {
	if len(content) == 0 {
		return nil
	}
	if mt, ok := content["application/json"]; ok {
		return mt
	}
	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return content[keys[0]]
}

// sampleResponse returns the first example attached to a 2xx response.
func sampleResponse(op *openapi3.Operation) string {
	if op.Responses == nil {
		return ""
	}
	responses := op.Responses.Map()
	codes := make([]string, 0, len(responses))
	for code := range responses {
		if strings.HasPrefix(code, "2") {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)

	for _, code := range codes {
		ref := responses[code]
		if ref == nil || ref.Value == nil {
			continue
		}
		mt := preferredMediaType(ref.Value.Content)
		if mt == nil {
			continue
		}
		if mt.Example != nil {
			return marshalExample(mt.Example)
		}
		names := make([]string, 0, len(mt.Examples))
		for name := range mt.Examples {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if ex := mt.Examples[name]; ex != nil && ex.Value != nil && ex.Value.Value != nil {
				return marshalExample(ex.Value.Value)
			}
		}
	}
	return ""
}

func marshalExample(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
