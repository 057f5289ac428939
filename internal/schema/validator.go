package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validator checks payloads against the schemas of one API version.
type Validator struct {
	registry *Registry
	version  string
}

// NewValidator binds a registry to the API version used for every call. A nil
// registry gets a fresh one backed by the embedded schemas.
func NewValidator(registry *Registry, apiVersion string) *Validator {
	if registry == nil {
		registry = NewRegistry()
	}
	if strings.TrimSpace(apiVersion) == "" {
		apiVersion = DefaultVersion
	}
	return &Validator{registry: registry, version: normalizeVersion(apiVersion)}
}

// APIVersion returns the version this validator resolves schemas against.
func (v *Validator) APIVersion() string {
	return v.version
}

// Validate returns payload unchanged when it conforms to the schema of
// endpoint. With partial set, missing required fields are not reported, but
// present fields are still type checked.
func (v *Validator) Validate(payload map[string]any, endpoint string, partial bool) (map[string]any, error) {
	es, ok, err := v.registry.Resolve(v.version, endpoint)
	if err != nil {
		return nil, err
	}
	if !ok {
		return payload, nil
	}

	instance, err := normalize(payload)
	if err != nil {
		return nil, &ValidationError{
			Endpoint: endpoint,
			Fields:   []FieldError{{Reason: fmt.Sprintf("payload is not JSON encodable: %v", err)}},
		}
	}

	var fields []FieldError
	if !partial {
		fields = append(fields, missingRequired(es.rules, instance, "")...)
	}
	if err := es.shape.Validate(instance); err != nil {
		fields = append(fields, shapeErrors(err)...)
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Endpoint: endpoint, Fields: fields}
	}
	return payload, nil
}

// normalize round-trips the payload through JSON so that only decoded JSON
// types reach the schema, with numbers kept as json.Number.
func normalize(payload map[string]any) (any, error) {
	if payload == nil {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func missingRequired(rules map[string]any, value any, prefix string) []FieldError {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil
	}

	var out []FieldError
	if required, ok := rules["required"].([]any); ok {
		for _, item := range required {
			name, ok := item.(string)
			if !ok {
				continue
			}
			if _, present := obj[name]; !present {
				out = append(out, FieldError{Field: joinField(prefix, name), Reason: "required field"})
			}
		}
	}

	props, _ := rules["properties"].(map[string]any)
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		child, ok := props[name].(map[string]any)
		if !ok {
			continue
		}
		v, present := obj[name]
		if !present {
			continue
		}
		path := joinField(prefix, name)
		out = append(out, missingRequired(child, v, path)...)

		items, ok := child["items"].(map[string]any)
		if !ok {
			continue
		}
		if list, ok := v.([]any); ok {
			for i, el := range list {
				out = append(out, missingRequired(items, el, path+"["+strconv.Itoa(i)+"]")...)
			}
		}
	}
	return out
}

func shapeErrors(err error) []FieldError {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []FieldError{{Reason: err.Error()}}
	}
	var out []FieldError
	collectLeaves(ve, &out)
	return out
}

func collectLeaves(ve *jsonschema.ValidationError, out *[]FieldError) {
	if len(ve.Causes) == 0 {
		*out = append(*out, FieldError{Field: fieldPath(ve.InstanceLocation), Reason: ve.Message})
		return
	}
	for _, cause := range ve.Causes {
		collectLeaves(cause, out)
	}
}

// fieldPath converts a JSON pointer instance location into a dotted path.
func fieldPath(location string) string {
	loc := strings.TrimPrefix(location, "#")
	loc = strings.TrimPrefix(loc, "/")
	if loc == "" {
		return ""
	}
	var path string
	for _, part := range strings.Split(loc, "/") {
		part = strings.ReplaceAll(strings.ReplaceAll(part, "~1", "/"), "~0", "~")
		if _, err := strconv.Atoi(part); err == nil && path != "" {
			path += "[" + part + "]"
			continue
		}
		path = joinField(path, part)
	}
	return path
}

func joinField(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
