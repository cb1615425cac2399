package mocks

import (
	"context"

	"ocrapi/internal/recognition"
	"github.com/stretchr/testify/mock"
)

type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Recognize(ctx context.Context, content []byte, fileExtension, documentType string) (recognition.Fields, error) {
	args := m.Called(ctx, content, fileExtension, documentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(recognition.Fields), args.Error(1)
}
