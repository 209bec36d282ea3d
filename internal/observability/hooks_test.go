package observability

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCLIHooksLevels(t *testing.T) {
	op := OperationInfo{Component: "TokenAcquirer", Operation: "AcquireToken"}
	req := RequestInfo{Method: "POST", URL: "https://login.salesforce.com/services/oauth2/token"}

	tests := []struct {
		level    int
		wantOps  bool
		wantReqs bool
	}{
		{0, false, false},
		{1, true, false},
		{2, true, true},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		hooks := NewCLIHooks(tt.level, nil, NewTraceWriterTo(&buf))

		ctx := hooks.OnOperationStart(context.Background(), op)
		hooks.OnOperationEnd(ctx, op, nil, time.Millisecond)
		ctx = hooks.OnRequestStart(ctx, req)
		hooks.OnRequestEnd(ctx, req, RequestResult{StatusCode: 200})

		out := buf.String()
		assert.Equal(t, tt.wantOps, bytes.Contains(buf.Bytes(), []byte("AcquireToken")), "level %d ops, got: %s", tt.level, out)
		assert.Equal(t, tt.wantReqs, bytes.Contains(buf.Bytes(), []byte("oauth2/token")), "level %d reqs, got: %s", tt.level, out)
	}
}

func TestCLIHooksCollectsAtAnyLevel(t *testing.T) {
	collector := NewSessionCollector()
	hooks := NewCLIHooks(0, collector, nil)

	ctx := context.Background()
	hooks.OnOperationEnd(ctx, OperationInfo{}, nil, time.Millisecond)
	hooks.OnOperationEnd(ctx, OperationInfo{}, errors.New("boom"), time.Millisecond)
	hooks.OnRequestEnd(ctx, RequestInfo{}, RequestResult{StatusCode: 200, Duration: 10 * time.Millisecond})

	s := collector.Summary()
	assert.Equal(t, 2, s.TotalOperations)
	assert.Equal(t, 1, s.FailedOps)
	assert.Equal(t, 1, s.TotalRequests)
	assert.Equal(t, 10*time.Millisecond, s.TotalLatency)
}

func TestCollectorReset(t *testing.T) {
	collector := NewSessionCollector()
	collector.RecordOperation(OperationMetrics{Error: errors.New("x")})
	collector.RecordRequest(RequestMetrics{Duration: time.Second})

	collector.Reset()
	s := collector.Summary()
	assert.Zero(t, s.TotalOperations)
	assert.Zero(t, s.FailedOps)
	assert.Zero(t, s.TotalRequests)
	assert.Zero(t, s.TotalLatency)
}

func TestNopHooks(t *testing.T) {
	// NopHooks must be safe to call and pass contexts through unchanged.
	var h Hooks = NopHooks{}
	ctx := context.WithValue(context.Background(), contextKeyProbe{}, "v")

	assert.Equal(t, ctx, h.OnOperationStart(ctx, OperationInfo{}))
	assert.Equal(t, ctx, h.OnRequestStart(ctx, RequestInfo{}))
	h.OnOperationEnd(ctx, OperationInfo{}, nil, 0)
	h.OnRequestEnd(ctx, RequestInfo{}, RequestResult{})
}

type contextKeyProbe struct{}
