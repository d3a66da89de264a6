package port

import (
	"context"

	"whale_analyzer/internal/domain/entity"
)

// ChainMetadataProvider resolves chain ids to display metadata.
type ChainMetadataProvider interface {
	// Get always returns usable metadata; unknown chains get a placeholder and false.
	Get(ctx context.Context, chainID uint64) (entity.ChainMetadata, bool)
	All(ctx context.Context) []entity.ChainMetadata
	Refresh(ctx context.Context) error
}
