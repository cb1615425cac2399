package repository

import (
	"context"

	"ocrapi/internal/model"
)

// RecognitionRepository persists recognition audit records using SQL queries only.
// It holds no business logic.
type RecognitionRepository interface {
	// Create inserts a new audit record and returns the stored row.
	Create(ctx context.Context, rec *model.Recognition) (*model.Recognition, error)

	// List returns a page of audit records, newest first, and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Recognition], error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}
