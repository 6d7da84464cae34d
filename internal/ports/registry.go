package ports

import (
	"context"

	"github.com/harris-mohamed/sensorsync/internal/domain"
)

// EndpointRegistry reads the active rows of the control table, ordered by id.
type EndpointRegistry interface {
	ActiveEndpoints(ctx context.Context) ([]domain.ControlRow, error)
}
