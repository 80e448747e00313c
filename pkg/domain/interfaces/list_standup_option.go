package interfaces

import (
	"time"

	"github.com/beakerhub/beakerhub/pkg/domain/types"
)

// ListStandupOptions holds filtering options for listing standups
type ListStandupOptions struct {
	Status         *types.StandupStatus
	From           *time.Time
	To             *time.Time
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// ListStandupOption is a functional option for List
type ListStandupOption func(*ListStandupOptions)

// WithStatus filters standups by status
func WithStatus(status types.StandupStatus) ListStandupOption {
	return func(o *ListStandupOptions) {
		o.Status = &status
	}
}

// WithDateRange filters standups by meeting date, inclusive on both ends
func WithDateRange(from, to time.Time) ListStandupOption {
	return func(o *ListStandupOptions) {
		o.From = &from
		o.To = &to
	}
}

// WithIncludeDeleted includes soft-deleted standups in the result
func WithIncludeDeleted() ListStandupOption {
	return func(o *ListStandupOptions) {
		o.IncludeDeleted = true
	}
}

// WithPagination limits and offsets the result set
func WithPagination(limit, offset int) ListStandupOption {
	return func(o *ListStandupOptions) {
		o.Limit = limit
		o.Offset = offset
	}
}

// BuildListStandupOptions applies options to a zero-value options struct
func BuildListStandupOptions(opts ...ListStandupOption) *ListStandupOptions {
	o := &ListStandupOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
