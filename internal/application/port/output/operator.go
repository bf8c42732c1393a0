package output

import (
	"context"

	"browser-automation/internal/domain/entity"
)

// OperatorPort tells the human operator about intervention requests.
type OperatorPort interface {
	AnnounceIntervention(ctx context.Context, req *entity.InterventionRequest)
	AnnounceResolution(ctx context.Context, req *entity.InterventionRequest)
}
