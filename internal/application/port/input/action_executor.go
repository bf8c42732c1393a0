package input

import (
	"context"

	"browser-automation/internal/domain/entity"
)

// ActionExecutor runs one action and always returns a result envelope.
type ActionExecutor interface {
	Execute(ctx context.Context, name entity.ActionName, arguments string) *entity.ActionResult
	Definitions() []entity.ActionDefinition
}
