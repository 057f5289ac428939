package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// DefaultVersion is the API version selected when none is configured.
const DefaultVersion = "1"

//go:embed schemas/*.yaml
var embedded embed.FS

// EndpointSchema is the compiled rule set for one endpoint in one version.
type EndpointSchema struct {
	Name string

	// rules is the decoded schema object including required lists.
	rules map[string]any
	// shape is compiled with every required list removed.
	shape *jsonschema.Schema
}

// Set holds every endpoint schema of one API version.
type Set struct {
	Version   string
	endpoints map[string]*EndpointSchema
}

// Endpoint returns the schema for an endpoint short name.
func (s *Set) Endpoint(name string) (*EndpointSchema, bool) {
	if s == nil {
		return nil, false
	}
	es, ok := s.endpoints[name]
	return es, ok
}

// Names lists the endpoint names in the set in sorted order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.endpoints))
	for name := range s.endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registry resolves endpoint schemas by API version, loading each version at
// most once.
type Registry struct {
	fsys fs.FS

	mu       sync.Mutex
	versions map[string]*versionEntry
}

type versionEntry struct {
	once sync.Once
	set  *Set
	err  error
}

// Option configures a Registry.
type Option func(*Registry)

// WithFS reads schema_v<N>.yaml files from the root of fsys instead of the
// embedded schemas.
func WithFS(fsys fs.FS) Option {
	return func(r *Registry) {
		if fsys != nil {
			r.fsys = fsys
		}
	}
}

// NewRegistry builds an empty registry. Nothing is read until the first
// Load or Resolve.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{versions: make(map[string]*versionEntry)}
	if sub, err := fs.Sub(embedded, "schemas"); err == nil {
		r.fsys = sub
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Load returns the schema set for version, decoding and compiling it on first
// use. A failed load is remembered and returned on every later call.
func (r *Registry) Load(version string) (*Set, error) {
	version = normalizeVersion(version)

	r.mu.Lock()
	entry, ok := r.versions[version]
	if !ok {
		entry = &versionEntry{}
		r.versions[version] = entry
	}
	r.mu.Unlock()

	entry.once.Do(func() {
		entry.set, entry.err = r.load(version)
	})
	return entry.set, entry.err
}

// Resolve returns the schema for endpoint in version. The boolean is false
// when the version loads but has no entry for the endpoint.
func (r *Registry) Resolve(version, endpoint string) (*EndpointSchema, bool, error) {
	set, err := r.Load(version)
	if err != nil {
		return nil, false, err
	}
	es, ok := set.Endpoint(endpoint)
	return es, ok, nil
}

func (r *Registry) load(version string) (*Set, error) {
	fail := func(err error) (*Set, error) {
		return nil, &SchemaNotFoundError{APIVersion: version, Err: err}
	}
	if version == "" {
		return fail(errors.New("api version is empty"))
	}
	if r.fsys == nil {
		return fail(errors.New("no schema source configured"))
	}

	name := fileName(version)
	data, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return fail(fmt.Errorf("read %s: %w", name, err))
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fail(fmt.Errorf("decode %s: %w", name, err))
	}
	if len(doc) == 0 {
		return fail(fmt.Errorf("%s defines no endpoints", name))
	}

	compiler := jsonschema.NewCompiler()
	set := &Set{Version: version, endpoints: make(map[string]*EndpointSchema, len(doc))}
	for endpoint, node := range doc {
		rules, ok := node.(map[string]any)
		if !ok {
			return fail(fmt.Errorf("%s: endpoint %q: schema must be a mapping", name, endpoint))
		}
		raw, err := json.Marshal(stripRequired(rules))
		if err != nil {
			return fail(fmt.Errorf("%s: endpoint %q: %w", name, endpoint, err))
		}
		url := fmt.Sprintf("mem://schema_v%s/%s.json", version, endpoint)
		if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
			return fail(fmt.Errorf("%s: endpoint %q: %w", name, endpoint, err))
		}
		shape, err := compiler.Compile(url)
		if err != nil {
			return fail(fmt.Errorf("%s: endpoint %q: %w", name, endpoint, err))
		}
		set.endpoints[endpoint] = &EndpointSchema{Name: endpoint, rules: rules, shape: shape}
	}
	return set, nil
}

func fileName(version string) string {
	return "schema_v" + version + ".yaml"
}

func normalizeVersion(version string) string {
	v := strings.TrimSpace(version)
	return strings.TrimPrefix(strings.TrimPrefix(v, "v"), "V")
}

// stripRequired returns a deep copy of a decoded schema node with every
// required keyword list removed.
func stripRequired(node any) any {
	switch x := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, v := range x {
			if k == "required" {
				if _, isList := v.([]any); isList {
					continue
				}
			}
			out[k] = stripRequired(v)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, v := range x {
			out[i] = stripRequired(v)
		}
		return out
	default:
		return node
	}
}
