package action

import (
	"context"

	"browser-automation/internal/domain/entity"
)

// dialogScript replaces the blocking dialogs of the page. prompt answers
// with its default value when accepting.
const dialogScript = `(accept) => {
	window.alert = () => {};
	window.confirm = () => accept;
	window.prompt = (_, value) => accept ? (value ?? '') : null;
}`

type DialogAction struct {
	d      *Deps
	accept bool
}

func NewDialogAction(d *Deps, accept bool) *DialogAction {
	return &DialogAction{d: d, accept: accept}
}

func (a *DialogAction) Name() entity.ActionName {
	if a.accept {
		return entity.ActionAcceptDialog
	}
	return entity.ActionDismissDialog
}

func (a *DialogAction) Description() string {
	if a.accept {
		return "Makes later alert, confirm and prompt dialogs accept automatically"
	}
	return "Makes later alert, confirm and prompt dialogs dismiss automatically"
}

func (a *DialogAction) Parameters() map[string]interface{} {
	return object(map[string]interface{}{})
}

func (a *DialogAction) Execute(ctx context.Context, _ string) (*entity.ActionOutput, error) {
	page, err := a.d.page()
	if err != nil {
		return nil, err
	}
	if err := page.Eval(ctx, dialogScript, nil, a.accept); err != nil {
		return nil, entity.Upstream("install dialog handler", err)
	}
	msg := "Dialog handling set to dismiss dialogs"
	if a.accept {
		msg = "Dialog handling set to accept dialogs"
	}
	return &entity.ActionOutput{Message: msg}, nil
}
