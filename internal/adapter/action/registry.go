package action

import (
	"browser-automation/internal/application/port/output"
)

// RegisterAll adds the full action catalogue to registry.
func RegisterAll(registry output.ActionRegistry, d *Deps) {
	actions := []output.ActionPort{
		NewNavigateAction(d),
		NewSearchGoogleAction(d),
		NewGoBackAction(d),
		NewGoForwardAction(d),
		NewRefreshAction(d),
		NewWaitAction(d),

		NewClickElementAction(d),
		NewClickCoordinatesAction(d),
		NewInputTextAction(d),
		NewSendKeysAction(d),
		NewDragDropAction(d),
		NewGetDropdownOptionsAction(d),
		NewSelectDropdownOptionAction(d),

		NewSwitchTabAction(d),
		NewOpenTabAction(d),
		NewCloseTabAction(d),
		NewListTabsAction(d),

		NewSwitchToFrameAction(d),
		NewSwitchToMainFrameAction(d),

		NewScrollAction(d, true),
		NewScrollAction(d, false),
		NewScrollToTextAction(d),
		NewScrollToEdgeAction(d, true),
		NewScrollToEdgeAction(d, false),

		NewExtractContentAction(d),
		NewTakeScreenshotAction(d),
		NewPDFAction(d, false),
		NewPDFAction(d, true),

		NewGetCookiesAction(d),
		NewSetCookieAction(d),
		NewClearCookiesAction(d),
		NewClearLocalStorageAction(d),

		NewDialogAction(d, true),
		NewDialogAction(d, false),

		NewSetNetworkConditionsAction(d),

		NewRequestInterventionAction(d),
		NewCompleteInterventionAction(d),
		NewCancelInterventionAction(d),
		NewInterventionStatusAction(d),
		NewAutoDetectAction(d),
	}
	for _, a := range actions {
		registry.Register(a)
	}
}
