package entity

type ActionName string

const (
	ActionNavigateTo   ActionName = "navigate_to"
	ActionSearchGoogle ActionName = "search_google"
	ActionGoBack       ActionName = "go_back"
	ActionGoForward    ActionName = "go_forward"
	ActionRefresh      ActionName = "refresh"
	ActionWait         ActionName = "wait"

	ActionClickElement         ActionName = "click_element"
	ActionClickCoordinates     ActionName = "click_coordinates"
	ActionInputText            ActionName = "input_text"
	ActionSendKeys             ActionName = "send_keys"
	ActionDragDrop             ActionName = "drag_drop"
	ActionGetDropdownOptions   ActionName = "get_dropdown_options"
	ActionSelectDropdownOption ActionName = "select_dropdown_option"

	ActionSwitchTab ActionName = "switch_tab"
	ActionOpenTab   ActionName = "open_tab"
	ActionCloseTab  ActionName = "close_tab"
	ActionListTabs  ActionName = "list_tabs"

	ActionSwitchToFrame     ActionName = "switch_to_frame"
	ActionSwitchToMainFrame ActionName = "switch_to_main_frame"

	ActionScrollDown     ActionName = "scroll_down"
	ActionScrollUp       ActionName = "scroll_up"
	ActionScrollToText   ActionName = "scroll_to_text"
	ActionScrollToTop    ActionName = "scroll_to_top"
	ActionScrollToBottom ActionName = "scroll_to_bottom"

	ActionExtractContent ActionName = "extract_content"
	ActionTakeScreenshot ActionName = "take_screenshot"
	ActionSavePDF        ActionName = "save_pdf"
	ActionGetPagePDF     ActionName = "get_page_pdf"

	ActionGetCookies        ActionName = "get_cookies"
	ActionSetCookie         ActionName = "set_cookie"
	ActionClearCookies      ActionName = "clear_cookies"
	ActionClearLocalStorage ActionName = "clear_local_storage"

	ActionAcceptDialog  ActionName = "accept_dialog"
	ActionDismissDialog ActionName = "dismiss_dialog"

	ActionSetNetworkConditions ActionName = "set_network_conditions"

	ActionRequestIntervention  ActionName = "request_intervention"
	ActionCompleteIntervention ActionName = "complete_intervention"
	ActionCancelIntervention   ActionName = "cancel_intervention"
	ActionInterventionStatus   ActionName = "intervention_status"
	ActionAutoDetect           ActionName = "auto_detect_intervention"
)

// ActionAliases maps legacy route names onto canonical actions.
var ActionAliases = map[ActionName]ActionName{
	"open_new_tab":     ActionOpenTab,
	"generate_pdf":     ActionSavePDF,
	"drag_and_drop":    ActionDragDrop,
	"get_page_content": ActionExtractContent,
}

func (a ActionName) String() string {
	return string(a)
}

// Canonical resolves aliases.
func (a ActionName) Canonical() ActionName {
	if c, ok := ActionAliases[a]; ok {
		return c
	}
	return a
}

// ActionDefinition describes an action to callers.
type ActionDefinition struct {
	Name        ActionName             `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// ActionOutput is what a single action reports before the state refresh.
type ActionOutput struct {
	Message string
	Content any
	// Screenshot replaces the refreshed viewport capture when set.
	Screenshot string
}

// PageState is the snapshot derived view embedded in every result.
type PageState struct {
	URL                 string
	Title               string
	Elements            string
	ScreenshotBase64    string
	PixelsAbove         int
	PixelsBelow         int
	OCRText             string
	ElementCount        int
	InteractiveElements []InteractiveElement
	ViewportWidth       int
	ViewportHeight      int
}

// ActionResult is the uniform envelope returned by every action.
type ActionResult struct {
	Success             bool                 `json:"success"`
	Message             string               `json:"message"`
	Error               string               `json:"error"`
	ErrorKind           string               `json:"error_kind,omitempty"`
	URL                 string               `json:"url"`
	Title               string               `json:"title"`
	Elements            string               `json:"elements"`
	ScreenshotBase64    string               `json:"screenshot_base64,omitempty"`
	PixelsAbove         int                  `json:"pixels_above"`
	PixelsBelow         int                  `json:"pixels_below"`
	Content             any                  `json:"content,omitempty"`
	OCRText             string               `json:"ocr_text,omitempty"`
	ElementCount        int                  `json:"element_count"`
	InteractiveElements []InteractiveElement `json:"interactive_elements"`
	ViewportWidth       int                  `json:"viewport_width"`
	ViewportHeight      int                  `json:"viewport_height"`
}

// Apply copies a state view into the result.
func (r *ActionResult) Apply(s PageState) {
	r.URL = s.URL
	r.Title = s.Title
	r.Elements = s.Elements
	r.ScreenshotBase64 = s.ScreenshotBase64
	r.PixelsAbove = s.PixelsAbove
	r.PixelsBelow = s.PixelsBelow
	r.OCRText = s.OCRText
	r.ElementCount = s.ElementCount
	r.InteractiveElements = s.InteractiveElements
	if r.InteractiveElements == nil {
		r.InteractiveElements = []InteractiveElement{}
	}
	r.ViewportWidth = s.ViewportWidth
	r.ViewportHeight = s.ViewportHeight
}
