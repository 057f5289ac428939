package schema

import (
	"fmt"
	"strings"
)

// FieldError describes one problem with one payload field. Field is a dotted
// path ("labels[0]", "scene.name"); it is empty for problems with the payload
// as a whole.
type FieldError struct {
	Field  string
	Reason string
}

func (f FieldError) String() string {
	if f.Field == "" {
		return f.Reason
	}
	return f.Field + ": " + f.Reason
}

// ValidationError reports a payload that does not conform to its endpoint
// schema. It is returned before any network call is made.
type ValidationError struct {
	Endpoint string
	Fields   []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Endpoint, strings.Join(parts, "; "))
}

// HasField reports whether any field error names the given field path.
func (e *ValidationError) HasField(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// SchemaNotFoundError reports that no usable schema set exists for an API
// version. It is a configuration error, not a per-call error.
type SchemaNotFoundError struct {
	APIVersion string
	Err        error
}

func (e *SchemaNotFoundError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("no schema found for api version %s", e.APIVersion)
	}
	return fmt.Sprintf("no schema found for api version %s: %v", e.APIVersion, e.Err)
}

func (e *SchemaNotFoundError) Unwrap() error {
	return e.Err
}
