package framework

import (
	"context"
	"errors"
)

var ErrFrameworkNotFound = errors.New("framework not found")

type Framework struct {
	ID      int64
	Name    string
	Expired bool
}

type Repository interface {
	GetByName(ctx context.Context, name string) (*Framework, error)
	List(ctx context.Context) ([]*Framework, error)
	Upsert(ctx context.Context, f *Framework) error
}
