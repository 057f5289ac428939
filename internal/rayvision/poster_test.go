package rayvision

import (
	"context"
	"encoding/json"
	"sync"
)

type postCall struct {
	path    string
	payload map[string]any
}

type postReply struct {
	data string
	err  error
}

// fakePoster replays scripted replies per endpoint path, in order. The last
// reply for a path repeats once the script runs out.
type fakePoster struct {
	mu      sync.Mutex
	replies map[string][]postReply
	calls   []postCall
}

func newFakePoster() *fakePoster {
	return &fakePoster{replies: map[string][]postReply{}}
}

func (f *fakePoster) reply(path, data string) *fakePoster {
	f.replies[path] = append(f.replies[path], postReply{data: data})
	return f
}

func (f *fakePoster) fail(path string, err error) *fakePoster {
	f.replies[path] = append(f.replies[path], postReply{err: err})
	return f
}

func (f *fakePoster) Post(ctx context.Context, endpointPath string, payload map[string]any, opts ...PostOption) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, postCall{path: endpointPath, payload: payload})
	script := f.replies[endpointPath]
	if len(script) == 0 {
		return json.RawMessage("null"), nil
	}
	r := script[0]
	if len(script) > 1 {
		f.replies[endpointPath] = script[1:]
	}
	if r.err != nil {
		return nil, r.err
	}
	return json.RawMessage(r.data), nil
}

func (f *fakePoster) callsTo(path string) []postCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []postCall
	for _, c := range f.calls {
		if c.path == path {
			out = append(out, c)
		}
	}
	return out
}
