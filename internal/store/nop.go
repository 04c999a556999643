package store

import (
	"context"

	"github.com/amishk599/jobtrend/internal/model"
)

// NopStore is a no-op recorder used in dry-run mode.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) RecordRun(_ context.Context, _ model.RunRecord) error { return nil }
