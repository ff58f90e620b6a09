package llm

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Mock is an offline Provider for tests and dry runs. It echoes a canned
// announcement so the rest of the pipeline can be exercised without a key.
type Mock struct {
	calls int64
}

// NewMock creates a new mock provider.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) GenerateText(_ context.Context, intent, prompt string) (string, error) {
	n := atomic.AddInt64(&m.calls, 1)
	return fmt.Sprintf("Mock %s segment number %d. Thanks for tuning in.", intent, n), nil
}

func (m *Mock) HealthCheck(_ context.Context) error {
	return nil
}

// Calls returns how many generations were requested.
func (m *Mock) Calls() int64 {
	return atomic.LoadInt64(&m.calls)
}
