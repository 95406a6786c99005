package probe

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
)

// fakeEvaluator answers Evaluate calls from canned JSON keyed by a substring
// of the expression. It is safe for concurrent use so orchestrator-style
// tests can share one instance.
type fakeEvaluator struct {
	mu        sync.Mutex
	responses map[string]string // expr substring -> JSON result
	failAll   bool
	calls     []string
}

var errEvalUnavailable = errors.New("capability unavailable")

func (f *fakeEvaluator) Evaluate(_ context.Context, expr string, out any) error {
	f.mu.Lock()
	f.calls = append(f.calls, expr)
	failAll := f.failAll
	responses := f.responses
	f.mu.Unlock()

	if failAll {
		return errEvalUnavailable
	}
	for key, body := range responses {
		if strings.Contains(expr, key) {
			return json.Unmarshal([]byte(body), out)
		}
	}
	return errEvalUnavailable
}
