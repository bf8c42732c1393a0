package service

import (
	"sort"

	"browser-automation/internal/application/port/output"
	"browser-automation/internal/domain/entity"
)

var _ output.ActionRegistry = (*ActionRegistryImpl)(nil)

type ActionRegistryImpl struct {
	actions map[entity.ActionName]output.ActionPort
}

func NewActionRegistry() *ActionRegistryImpl {
	return &ActionRegistryImpl{
		actions: make(map[entity.ActionName]output.ActionPort),
	}
}

func (r *ActionRegistryImpl) Register(action output.ActionPort) {
	r.actions[action.Name()] = action
}

func (r *ActionRegistryImpl) Get(name entity.ActionName) (output.ActionPort, bool) {
	action, ok := r.actions[name.Canonical()]
	return action, ok
}

// All returns actions sorted by name.
func (r *ActionRegistryImpl) All() []output.ActionPort {
	result := make([]output.ActionPort, 0, len(r.actions))
	for _, action := range r.actions {
		result = append(result, action)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result
}

func (r *ActionRegistryImpl) Definitions() []entity.ActionDefinition {
	all := r.All()
	result := make([]entity.ActionDefinition, 0, len(all))
	for _, action := range all {
		result = append(result, entity.ActionDefinition{
			Name:        action.Name(),
			Description: action.Description(),
			Parameters:  action.Parameters(),
		})
	}
	return result
}
