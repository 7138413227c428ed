package storage

import (
	"context"
	"errors"

	"rental-aggregator/models"
)

// ErrNoSnapshot is returned by SnapshotStore.Latest before any dataset has
// been saved, or after the saved one expired.
var ErrNoSnapshot = errors.New("storage: no snapshot")

// DatasetWriter is the interface any output sink must satisfy.
type DatasetWriter interface {
	Write(ctx context.Context, ds *models.Dataset) error
	Close() error
}

// SnapshotStore keeps the most recent dataset for readers such as the API.
type SnapshotStore interface {
	Save(ctx context.Context, ds *models.Dataset) error
	Latest(ctx context.Context) (*models.Dataset, error)
}
