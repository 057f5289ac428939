package rayvision

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// Header names sent with every request. They are sent verbatim, without
// MIME canonicalization.
const (
	HeaderAccessID    = "accessId"
	HeaderChannel     = "channel"
	HeaderPlatform    = "platform"
	HeaderTimestamp   = "UTCTimestamp"
	HeaderNonce       = "nonce"
	HeaderSignature   = "signature"
	HeaderVersion     = "version"
	HeaderContentType = "Content-Type"
)

// signedHeaders are folded into the canonical message in this order.
var signedHeaders = []string{HeaderTimestamp, HeaderNonce, HeaderPlatform, HeaderAccessID}

// Signer computes request signatures with the account access key.
type Signer struct {
	key []byte
}

// NewSigner returns a signer keyed with accessKey.
func NewSigner(accessKey string) (*Signer, error) {
	if accessKey == "" {
		return nil, &SigningError{Reason: "access key is empty"}
	}
	return &Signer{key: []byte(accessKey)}, nil
}

// NewNonce returns a fresh single-use token: 32 hex characters from a random
// UUID.
func (s *Signer) NewNonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Sign returns the base64 HMAC-SHA256 of the canonical message for a request.
// headers must carry UTCTimestamp, nonce, platform and accessId.
func (s *Signer) Sign(domain, endpointPath string, headers map[string]string, body any) (string, error) {
	if s == nil || len(s.key) == 0 {
		return "", &SigningError{Reason: "access key is empty"}
	}
	msg, err := CanonicalMessage(domain, endpointPath, headers, body)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(msg))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// CanonicalMessage builds the string that is signed:
//
//	POST<domain><path>&UTCTimestamp=<ts>&nonce=<nonce>&platform=<p>&accessId=<id>&<body>
//
// where body is the canonical JSON encoding of the payload.
func CanonicalMessage(domain, endpointPath string, headers map[string]string, body any) (string, error) {
	if strings.TrimSpace(domain) == "" {
		return "", &SigningError{Reason: "domain is empty"}
	}
	if !strings.HasPrefix(endpointPath, "/") {
		return "", &SigningError{Reason: "endpoint path must start with /"}
	}

	var b strings.Builder
	b.WriteString("POST")
	b.WriteString(domain)
	b.WriteString(endpointPath)
	for _, name := range signedHeaders {
		value, ok := headers[name]
		if !ok || value == "" {
			return "", &SigningError{Reason: "missing header " + name}
		}
		b.WriteByte('&')
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(value)
	}

	canonical, err := CanonicalBody(body)
	if err != nil {
		return "", &SigningError{Reason: "encode body", Err: err}
	}
	b.WriteByte('&')
	b.Write(canonical)
	return b.String(), nil
}

// CanonicalBody encodes body as compact JSON with object keys sorted at every
// level and numbers kept exactly as written. An absent or empty payload
// encodes as {}.
func CanonicalBody(body any) ([]byte, error) {
	var raw []byte
	switch x := body.(type) {
	case nil:
		return []byte("{}"), nil
	case map[string]any:
		if len(x) == 0 {
			return []byte("{}"), nil
		}
	case json.RawMessage:
		raw = x
	case []byte:
		raw = x
	}
	if raw == nil {
		var err error
		if raw, err = json.Marshal(body); err != nil {
			return nil, err
		}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if v == nil {
		return []byte("{}"), nil
	}

	// encoding/json writes map keys in sorted order.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
