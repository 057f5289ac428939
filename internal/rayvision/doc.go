// Package rayvision is a client for the render farm task API.
//
// Every call is a signed POST of a JSON payload. The Client validates the
// payload against the schema of the endpoint, signs a canonical rendering of
// it with HMAC-SHA256 and unwraps the {code, message, data} envelope of the
// reply. Failures are reported as *ValidationError, *SchemaNotFoundError,
// *SigningError, *TransportError, *ParameterError or *APIError.
//
// The helpers in this package (TaskList, LoadProfile, AddLabel and the rest)
// take a Poster, so they work the same over a bare Client or a Retrier.
package rayvision
