package mocks

import (
	"context"

	"ocrapi/internal/envelope"
	"ocrapi/internal/recognition"
	"github.com/stretchr/testify/mock"
)

type MockRecognitionService struct {
	mock.Mock
}

func (m *MockRecognitionService) Recognize(ctx context.Context, env envelope.Envelope) (recognition.Fields, error) {
	args := m.Called(ctx, env)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(recognition.Fields), args.Error(1)
}
