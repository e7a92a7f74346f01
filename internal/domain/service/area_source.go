package service

import (
	"context"

	"github.com/td-lach-buckanen/commute-catchment/internal/domain/entity"
)

// AreaSource supplies the static candidate boundary dataset. It is read
// once before first matching; the returned collection is immutable for
// the process lifetime.
type AreaSource interface {
	LoadAreas(ctx context.Context) ([]*entity.CandidateArea, error)
}
