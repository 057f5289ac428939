package rayvision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/rayvision/internal/schema"
)

// PayloadValidator checks an outgoing payload against the schema of an
// endpoint. *schema.Validator implements it.
type PayloadValidator interface {
	Validate(payload map[string]any, endpoint string, partial bool) (map[string]any, error)
}

// Doer performs HTTP requests. *http.Client implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Poster issues signed calls. *Client and *Retrier implement it, and every
// helper in this package is written against it.
type Poster interface {
	Post(ctx context.Context, endpointPath string, payload map[string]any, opts ...PostOption) (json.RawMessage, error)
}

// Ensure Client implements Poster at compile time.
var _ Poster = (*Client)(nil)

const (
	DefaultDomain   = "task.renderbus.com"
	DefaultProtocol = "https"
	DefaultPlatform = "2"
	DefaultChannel  = "4"
	HeaderVersionV1 = "1.0.0"

	requestTimeout   = 30 * time.Second
	maxResponseBytes = 32 << 20
)

// Credentials identify the account. They are fixed for the life of a client.
type Credentials struct {
	AccessID  string
	AccessKey string
}

// String never includes the access key.
func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{AccessID:%s AccessKey:<redacted>}", c.AccessID)
}

// GoString never includes the access key.
func (c Credentials) GoString() string {
	return c.String()
}

// MarshalJSON never includes the access key.
func (c Credentials) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"accessId": c.AccessID})
}

// Session describes where requests go. APIVersion selects the payload schema
// set. Headers are merged over the default header set.
type Session struct {
	Domain     string
	Protocol   string
	PlatformID string
	APIVersion string
	Headers    map[string]string
}

// Client signs, validates and dispatches API calls. It is safe for concurrent
// use; per-call state is never written to the client.
type Client struct {
	domain   string
	protocol string
	version  string
	template map[string]string

	signer    *Signer
	validator PayloadValidator
	registry  *schema.Registry
	http      Doer
	now       func() time.Time
	logger    zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.http = d
		}
	}
}

// WithValidator replaces the schema validator.
func WithValidator(v PayloadValidator) Option {
	return func(c *Client) {
		if v != nil {
			c.validator = v
		}
	}
}

// WithRegistry builds the schema validator over reg instead of a private
// registry. It has no effect when WithValidator is also given.
func WithRegistry(reg *schema.Registry) Option {
	return func(c *Client) {
		c.registry = reg
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithClock replaces time.Now for request timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient builds a Client. The access id and key are required; other
// session fields fall back to defaults.
func NewClient(creds Credentials, sess Session, opts ...Option) (*Client, error) {
	if strings.TrimSpace(creds.AccessID) == "" {
		return nil, &SigningError{Reason: "access id is empty"}
	}
	signer, err := NewSigner(creds.AccessKey)
	if err != nil {
		return nil, err
	}

	c := &Client{
		domain:   strings.TrimSpace(sess.Domain),
		protocol: strings.ToLower(strings.TrimSpace(sess.Protocol)),
		version:  strings.TrimSpace(sess.APIVersion),
		signer:   signer,
		http:     &http.Client{Timeout: requestTimeout},
		now:      time.Now,
		logger:   zerolog.Nop(),
	}
	if c.domain == "" {
		c.domain = DefaultDomain
	}
	if c.protocol == "" {
		c.protocol = DefaultProtocol
	}
	if c.protocol != "http" && c.protocol != "https" {
		return nil, fmt.Errorf("unsupported protocol %q", sess.Protocol)
	}
	if c.version == "" {
		c.version = schema.DefaultVersion
	}
	platform := strings.TrimSpace(sess.PlatformID)
	if platform == "" {
		platform = DefaultPlatform
	}

	c.template = DefaultHeaders()
	maps.Copy(c.template, sess.Headers)
	c.template[HeaderAccessID] = creds.AccessID
	c.template[HeaderPlatform] = platform

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.validator == nil {
		c.validator = schema.NewValidator(c.registry, c.version)
	}
	return c, nil
}

// DefaultHeaders returns a new copy of the fixed header set.
func DefaultHeaders() map[string]string {
	return map[string]string{
		HeaderChannel:     DefaultChannel,
		HeaderVersion:     HeaderVersionV1,
		HeaderContentType: "application/json",
	}
}

// Domain returns the API host.
func (c *Client) Domain() string {
	return c.domain
}

// Platform returns the render platform id sent with every request.
func (c *Client) Platform() string {
	return c.template[HeaderPlatform]
}

// APIVersion returns the schema version used for validation.
func (c *Client) APIVersion() string {
	return c.version
}

// Headers returns a copy of the header template.
func (c *Client) Headers() map[string]string {
	return maps.Clone(c.template)
}

type postOptions struct {
	validate bool
	partial  bool
}

// PostOption adjusts one call.
type PostOption func(*postOptions)

// SkipValidation sends the payload without consulting the validator.
func SkipValidation() PostOption {
	return func(o *postOptions) { o.validate = false }
}

// PartialValidation type checks present fields but does not require any.
func PartialValidation() PostOption {
	return func(o *postOptions) { o.partial = true }
}

// Post validates payload, signs it, sends it to endpointPath and returns the
// data member of a successful envelope. A nil payload is sent as {}.
func (c *Client) Post(ctx context.Context, endpointPath string, payload map[string]any, opts ...PostOption) (json.RawMessage, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	o := postOptions{validate: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if payload == nil {
		payload = map[string]any{}
	}

	if o.validate {
		validated, err := c.validator.Validate(payload, EndpointName(endpointPath), o.partial)
		if err != nil {
			return nil, err
		}
		payload = validated
	}

	url := assembleURL(c.protocol, c.domain, endpointPath)
	headers, body, err := c.prepare(endpointPath, payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Kind: KindTransport, URL: url, Err: fmt.Errorf("create request: %w", err)}
	}
	for name, value := range headers {
		req.Header[name] = []string{value}
	}

	c.logger.Debug().
		Str("url", url).
		Interface("headers", redactHeaders(headers)).
		Int("body_bytes", len(body)).
		Msg("POST")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, newTransportError(ctx, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.Request != nil && resp.Request.URL != nil {
		url = resp.Request.URL.String()
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, newTransportError(ctx, url, fmt.Errorf("read response: %w", err))
	}

	env, err := decodeEnvelope(raw)
	if err != nil {
		return nil, &TransportError{Kind: KindDecode, URL: url, Status: resp.StatusCode, Err: err}
	}
	c.logger.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Int("code", env.Code).
		Str("message", env.Message).
		Msg("response")

	switch env.Code {
	case CodeSuccess:
		return env.Data, nil
	case CodeParameterError:
		return nil, &ParameterError{Message: env.Message, Payload: payload, URL: url}
	default:
		return nil, &APIError{Code: env.Code, Message: env.Message, URL: url}
	}
}

// prepare derives the per-call headers from a private copy of the template
// and encodes the body that was signed.
func (c *Client) prepare(endpointPath string, payload map[string]any) (map[string]string, []byte, error) {
	headers := maps.Clone(c.template)
	headers[HeaderTimestamp] = strconv.FormatInt(c.now().Unix(), 10)
	headers[HeaderNonce] = c.signer.NewNonce()

	signature, err := c.signer.Sign(c.domain, endpointPath, headers, payload)
	if err != nil {
		return nil, nil, err
	}
	headers[HeaderSignature] = signature

	body, err := CanonicalBody(payload)
	if err != nil {
		return nil, nil, &SigningError{Reason: "encode body", Err: err}
	}
	return headers, body, nil
}

func redactHeaders(headers map[string]string) map[string]string {
	out := maps.Clone(headers)
	if _, ok := out[HeaderSignature]; ok {
		out[HeaderSignature] = "<redacted>"
	}
	return out
}

// Envelope is the wrapper every response uses.
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(raw []byte) (Envelope, error) {
	var wire struct {
		Code    json.RawMessage `json:"code"`
		Message json.RawMessage `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if len(wire.Code) == 0 || string(wire.Code) == "null" {
		return Envelope{}, errors.New("decode envelope: missing code")
	}
	code, err := envelopeCode(wire.Code)
	if err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if len(wire.Message) == 0 {
		return Envelope{}, errors.New("decode envelope: missing message")
	}
	var message *string
	if err := json.Unmarshal(wire.Message, &message); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: message: %w", err)
	}
	env := Envelope{Code: code, Data: wire.Data}
	if message != nil {
		env.Message = *message
	}
	if len(env.Data) == 0 {
		env.Data = json.RawMessage("null")
	}
	return env, nil
}

// envelopeCode accepts integral numbers in any JSON spelling (200, 200.0,
// 2e2) and numeric strings ("601").
func envelopeCode(raw json.RawMessage) (int, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0, fmt.Errorf("code: %w", err)
		}
		text = n.String()
	}
	text = strings.TrimSpace(text)
	if code, err := strconv.Atoi(text); err == nil {
		return code, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("code %s is not an integer", raw)
	}
	return int(f), nil
}

// PostAs issues a call through p and decodes the data member into T.
func PostAs[T any](ctx context.Context, p Poster, endpointPath string, payload map[string]any, opts ...PostOption) (T, error) {
	var out T
	data, err := p.Post(ctx, endpointPath, payload, opts...)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode %s data: %w", EndpointName(endpointPath), err)
	}
	return out, nil
}
