package ollama

import (
	"context"
	"sync/atomic"
)

// MockGenerator is a Generator whose behaviour is supplied by fn fields.
type MockGenerator struct {
	GenerateFunc func(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
	PingFunc     func(ctx context.Context) error

	calls int64
}

var _ Generator = (*MockGenerator)(nil)

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

func (m *MockGenerator) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	atomic.AddInt64(&m.calls, 1)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return &GenerateResponse{Done: true}, nil
}

func (m *MockGenerator) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// Calls returns how many times Generate was invoked.
func (m *MockGenerator) Calls() int {
	return int(atomic.LoadInt64(&m.calls))
}

//Personal.AI order the ending
