package output

import (
	"context"

	"browser-automation/internal/domain/entity"
)

type ActionPort interface {
	Name() entity.ActionName
	Description() string
	Parameters() map[string]interface{}
	Execute(ctx context.Context, arguments string) (*entity.ActionOutput, error)
}

type ActionRegistry interface {
	Register(action ActionPort)
	Get(name entity.ActionName) (ActionPort, bool)
	All() []ActionPort
	Definitions() []entity.ActionDefinition
}
