package action

import (
	"context"
	"fmt"
	"strings"

	"browser-automation/internal/domain/entity"
)

type GetCookiesAction struct {
	d *Deps
}

func NewGetCookiesAction(d *Deps) *GetCookiesAction {
	return &GetCookiesAction{d: d}
}

func (a *GetCookiesAction) Name() entity.ActionName            { return entity.ActionGetCookies }
func (a *GetCookiesAction) Description() string                { return "Lists cookies visible to the current page" }
func (a *GetCookiesAction) Parameters() map[string]interface{} { return object(map[string]interface{}{}) }

func (a *GetCookiesAction) Execute(ctx context.Context, _ string) (*entity.ActionOutput, error) {
	page, err := a.d.page()
	if err != nil {
		return nil, err
	}
	cookies, err := page.Cookies(ctx)
	if err != nil {
		return nil, entity.Upstream("get cookies", err)
	}
	if cookies == nil {
		cookies = []entity.Cookie{}
	}
	return &entity.ActionOutput{
		Message: fmt.Sprintf("Retrieved %d cookies", len(cookies)),
		Content: map[string]any{"cookies": cookies, "count": len(cookies)},
	}, nil
}

var sameSiteValues = map[string]string{"strict": "Strict", "lax": "Lax", "none": "None"}

type SetCookieAction struct {
	d *Deps
}

func NewSetCookieAction(d *Deps) *SetCookieAction {
	return &SetCookieAction{d: d}
}

func (a *SetCookieAction) Name() entity.ActionName { return entity.ActionSetCookie }
func (a *SetCookieAction) Description() string     { return "Sets a cookie and verifies it was stored" }
func (a *SetCookieAction) Parameters() map[string]interface{} {
	return object(map[string]interface{}{
		"name":      prop("string", "Cookie name"),
		"value":     prop("string", "Cookie value"),
		"domain":    prop("string", "Cookie domain, the current URL is used when omitted"),
		"path":      prop("string", "Cookie path, default /"),
		"expires":   prop("number", "Expiry as seconds since the Unix epoch"),
		"http_only": prop("boolean", "HttpOnly flag"),
		"secure":    prop("boolean", "Secure flag"),
		"same_site": prop("string", "Strict, Lax or None"),
	}, "name", "value")
}

func (a *SetCookieAction) Execute(ctx context.Context, args string) (*entity.ActionOutput, error) {
	var input struct {
		Name        string  `json:"name"`
		Value       *string `json:"value"`
		Domain      string  `json:"domain"`
		Path        string  `json:"path"`
		Expires     float64 `json:"expires"`
		HTTPOnly    *bool   `json:"http_only"`
		HTTPOnlyAlt *bool   `json:"httpOnly"`
		Secure      bool    `json:"secure"`
		SameSite    string  `json:"same_site"`
		SameSiteAlt string  `json:"sameSite"`
	}
	if err := decode(args, &input); err != nil {
		return nil, err
	}
	if input.Name == "" || input.Value == nil || *input.Value == "" {
		return nil, fmt.Errorf("name and value are required: %w", entity.ErrInvalidArguments)
	}
	cookie := entity.Cookie{
		Name:     input.Name,
		Value:    *input.Value,
		Domain:   input.Domain,
		Path:     input.Path,
		Expires:  input.Expires,
		HTTPOnly: firstOf(false, input.HTTPOnly, input.HTTPOnlyAlt),
		Secure:   input.Secure,
	}
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	if s := firstNonEmpty(input.SameSite, input.SameSiteAlt); s != "" {
		v, ok := sameSiteValues[strings.ToLower(s)]
		if !ok {
			return nil, fmt.Errorf("same_site %q: %w", s, entity.ErrInvalidArguments)
		}
		cookie.SameSite = v
	}

	page, err := a.d.page()
	if err != nil {
		return nil, err
	}
	if cookie.Domain == "" {
		info, err := page.Info(ctx)
		if err != nil {
			return nil, entity.Upstream("read page url", err)
		}
		cookie.URL = info.URL
	}
	if err := page.SetCookie(ctx, cookie); err != nil {
		return nil, entity.Upstream("set cookie", err)
	}

	for _, delay := range a.d.Timeouts.CookieChecks {
		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
		cookies, err := page.Cookies(ctx)
		if err != nil {
			a.d.Logger.Warn("Listing cookies for verification failed", "error", err)
			continue
		}
		for _, c := range cookies {
			if c.Name == cookie.Name && c.Value == cookie.Value {
				return &entity.ActionOutput{
					Message: fmt.Sprintf("Cookie '%s' set successfully", cookie.Name),
					Content: map[string]any{"cookie": c},
				}, nil
			}
		}
	}
	return nil, entity.Upstream("set cookie", fmt.Errorf("cookie %q was not stored by the browser", cookie.Name))
}

type ClearCookiesAction struct {
	d *Deps
}

func NewClearCookiesAction(d *Deps) *ClearCookiesAction {
	return &ClearCookiesAction{d: d}
}

func (a *ClearCookiesAction) Name() entity.ActionName            { return entity.ActionClearCookies }
func (a *ClearCookiesAction) Description() string                { return "Deletes all browser cookies" }
func (a *ClearCookiesAction) Parameters() map[string]interface{} { return object(map[string]interface{}{}) }

func (a *ClearCookiesAction) Execute(ctx context.Context, _ string) (*entity.ActionOutput, error) {
	page, err := a.d.page()
	if err != nil {
		return nil, err
	}
	before, err := page.Cookies(ctx)
	if err != nil {
		return nil, entity.Upstream("get cookies", err)
	}
	if err := page.ClearCookies(ctx); err != nil {
		return nil, entity.Upstream("clear cookies", err)
	}
	after, err := page.Cookies(ctx)
	if err != nil {
		return nil, entity.Upstream("get cookies", err)
	}
	if len(after) > 0 && len(after) >= len(before) {
		return nil, entity.Upstream("clear cookies", fmt.Errorf("%d cookies remain", len(after)))
	}
	return &entity.ActionOutput{
		Message: fmt.Sprintf("Cleared %d cookies", len(before)-len(after)),
		Content: map[string]any{"before": len(before), "after": len(after)},
	}, nil
}

type ClearLocalStorageAction struct {
	d *Deps
}

func NewClearLocalStorageAction(d *Deps) *ClearLocalStorageAction {
	return &ClearLocalStorageAction{d: d}
}

func (a *ClearLocalStorageAction) Name() entity.ActionName { return entity.ActionClearLocalStorage }
func (a *ClearLocalStorageAction) Description() string     { return "Clears localStorage of the current origin" }
func (a *ClearLocalStorageAction) Parameters() map[string]interface{} {
	return object(map[string]interface{}{})
}

func (a *ClearLocalStorageAction) Execute(ctx context.Context, _ string) (*entity.ActionOutput, error) {
	ec, err := a.d.Session.ExecutionContext()
	if err != nil {
		return nil, err
	}
	if err := ec.Eval(ctx, `() => { window.localStorage.clear(); }`, nil); err != nil {
		return nil, entity.Upstream("clear local storage", err)
	}
	return &entity.ActionOutput{Message: "Local storage cleared"}, nil
}
