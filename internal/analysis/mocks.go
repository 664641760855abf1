package analysis

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockAIClient struct {
	mock.Mock
}

func (m *MockAIClient) Invoke(ctx context.Context, prompt string, maxTokens int32) (string, error) {
	args := m.Called(ctx, prompt, maxTokens)
	return args.String(0), args.Error(1)
}

type MockIssueResolver struct {
	mock.Mock
}

func (m *MockIssueResolver) IssueDescription(ctx context.Context, number int) (string, bool) {
	args := m.Called(ctx, number)
	return args.String(0), args.Bool(1)
}
