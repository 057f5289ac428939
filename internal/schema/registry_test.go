package schema

import (
	"errors"
	"io/fs"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
)

type countingFS struct {
	fsys  fs.FS
	opens atomic.Int32
}

func (c *countingFS) Open(name string) (fs.File, error) {
	c.opens.Add(1)
	return c.fsys.Open(name)
}

func TestRegistry_LoadsEmbeddedVersion(t *testing.T) {
	reg := NewRegistry()
	set, err := reg.Load(DefaultVersion)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	names := set.Names()
	for _, want := range []string{"addLabel", "createTask", "submitTask", "stopTask"} {
		if !slices.Contains(names, want) {
			t.Fatalf("Names() = %v, want it to contain %q", names, want)
		}
	}
	if set.Version != "1" {
		t.Fatalf("Version = %q, want 1", set.Version)
	}
}

func TestRegistry_NormalizesVersion(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Load(" v1 "); err != nil {
		t.Fatalf("Load(v1) returned error: %v", err)
	}
}

func TestRegistry_UnknownVersion(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Load("9")
	var notFound *SchemaNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Load error = %v, want *SchemaNotFoundError", err)
	}
	if notFound.APIVersion != "9" {
		t.Fatalf("APIVersion = %q, want 9", notFound.APIVersion)
	}
}

func TestRegistry_MalformedFilesFailAtLoad(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid yaml", "addLabel: [unterminated"},
		{"empty document", ""},
		{"schema not a mapping", "addLabel: 3\n"},
		{"invalid schema keyword", "addLabel:\n  type: bogus\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry(WithFS(fstest.MapFS{
				"schema_v2.yaml": &fstest.MapFile{Data: []byte(tt.body)},
			}))
			_, err := reg.Load("2")
			var notFound *SchemaNotFoundError
			if !errors.As(err, &notFound) {
				t.Fatalf("Load error = %v, want *SchemaNotFoundError", err)
			}
		})
	}
}

func TestRegistry_FailedLoadIsNotRetried(t *testing.T) {
	mapFS := fstest.MapFS{}
	reg := NewRegistry(WithFS(mapFS))
	if _, err := reg.Load("2"); err == nil {
		t.Fatalf("Load returned nil error, want missing file error")
	}

	mapFS["schema_v2.yaml"] = &fstest.MapFile{Data: []byte("addLabel:\n  type: object\n")}
	if _, err := reg.Load("2"); err == nil {
		t.Fatalf("second Load returned nil error, want cached failure")
	}
}

func TestRegistry_ConcurrentFirstLoadReadsOnce(t *testing.T) {
	counting := &countingFS{fsys: fstest.MapFS{
		"schema_v1.yaml": &fstest.MapFile{Data: []byte("addLabel:\n  type: object\n  required: [newName]\n")},
	}}
	reg := NewRegistry(WithFS(counting))

	const workers = 16
	sets := make([]*Set, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			set, err := reg.Load("1")
			if err != nil {
				t.Errorf("Load returned error: %v", err)
				return
			}
			sets[i] = set
		}(i)
	}
	wg.Wait()

	if got := counting.opens.Load(); got != 1 {
		t.Fatalf("schema file opened %d times, want 1", got)
	}
	for i := 1; i < workers; i++ {
		if sets[i] != sets[0] {
			t.Fatalf("worker %d saw a different set", i)
		}
	}
}

func TestRegistry_ResolveReportsMissingEndpoint(t *testing.T) {
	reg := NewRegistry()
	es, ok, err := reg.Resolve("1", "addLabel")
	if err != nil || !ok || es.Name != "addLabel" {
		t.Fatalf("Resolve(addLabel) = %v, %v, %v; want schema", es, ok, err)
	}
	_, ok, err = reg.Resolve("1", "queryUserProfile")
	if err != nil {
		t.Fatalf("Resolve(queryUserProfile) returned error: %v", err)
	}
	if ok {
		t.Fatalf("Resolve(queryUserProfile) ok = true, want false")
	}
}
