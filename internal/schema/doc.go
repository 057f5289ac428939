// Package schema loads versioned payload schemas and validates outgoing
// request payloads against them before they are signed and sent.
//
// # Schema Files
//
// Each API version has one YAML file named schema_v<N>.yaml. The file maps an
// endpoint short name (the last segment of the endpoint path) to a JSON Schema
// object:
//
//	addLabel:
//	  type: object
//	  properties:
//	    newName: {type: string}
//	    status:  {type: integer, enum: [0, 1]}
//	  required: [newName]
//
// Version 1 is embedded in the binary. Tests and deployments can supply a
// different file system with WithFS.
//
// # Registry
//
// A Registry decodes and compiles a version the first time it is asked for and
// keeps the result for its own lifetime. Loads are guarded per version, so
// concurrent first access performs exactly one load. A version that fails to
// load keeps failing with the same SchemaNotFoundError; it is never retried.
//
// The Registry is a plain value owned by whoever constructs it. There is no
// package-level cache.
//
// # Validation
//
// Validator checks required fields by walking the schema's required and
// properties keywords, and checks the type and shape of every present field
// with the compiled JSON Schema. Partial validation skips the required-field
// walk only. Unknown fields are always accepted.
//
// Failures are reported as a *ValidationError carrying one FieldError per
// problem. Endpoints without an entry in the schema file are accepted as-is.
package schema
