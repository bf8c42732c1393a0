package intervention

import (
	"context"
	"strings"

	"browser-automation/internal/application/port/output"
	"browser-automation/internal/domain/entity"
)

// NoticeID is the DOM id of the banner rendered while a request is pending.
const NoticeID = "human-intervention-notice"

var typeEmoji = map[entity.InterventionType]string{
	entity.InterventionCaptcha:          "🔍",
	entity.InterventionLoginRequired:    "🔐",
	entity.InterventionSecurityCheck:    "🛡️",
	entity.InterventionAntiBot:          "🤖",
	entity.InterventionCookiesConsent:   "🍪",
	entity.InterventionTwoFactorAuth:    "📱",
	entity.InterventionAgeVerification:  "🔞",
	entity.InterventionComplexDataEntry: "📝",
}

type notice struct {
	ID           string `json:"id"`
	Emoji        string `json:"emoji"`
	Label        string `json:"label"`
	Message      string `json:"message"`
	Instructions string `json:"instructions"`
	CompleteURL  string `json:"completeURL"`
	CancelURL    string `json:"cancelURL"`
}

// renderScript draws the banner from its argument with textContent only, so
// caller supplied text is never parsed as markup.
const renderScript = `(n) => {
	document.getElementById('human-intervention-notice')?.remove();
	const notice = document.createElement('div');
	notice.id = 'human-intervention-notice';
	notice.style.cssText = 'position:fixed;top:0;left:0;right:0;background:linear-gradient(135deg,#ff4444,#cc0000);' +
		'color:white;padding:20px;text-align:center;font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Roboto,sans-serif;' +
		'font-size:16px;font-weight:bold;z-index:999999;box-shadow:0 4px 20px rgba(0,0,0,0.3);border-bottom:3px solid #990000;';
	const line = (text, css) => {
		const d = document.createElement('div');
		d.style.cssText = css;
		d.textContent = text;
		notice.appendChild(d);
		return d;
	};
	line(n.emoji + '  HUMAN INTERVENTION REQUIRED', 'margin-bottom:10px;font-size:20px;');
	line(n.label, 'font-size:18px;margin-bottom:8px;color:#ffdddd;');
	line(n.message, 'font-size:14px;margin-bottom:15px;color:#ffeeee;');
	if (n.instructions) line(n.instructions, 'font-size:12px;margin-bottom:15px;color:#ffdddd;font-style:italic;');

	const row = document.createElement('div');
	row.style.cssText = 'display:flex;justify-content:center;gap:15px;flex-wrap:wrap;';
	const finish = (text, background) => {
		notice.style.background = background;
		notice.replaceChildren();
		line(text, 'font-size:18px;');
		setTimeout(() => notice.remove(), 3000);
	};
	const button = (id, text, color, url, body, done, background) => {
		const b = document.createElement('button');
		b.id = id;
		b.textContent = text;
		b.style.cssText = 'padding:10px 25px;color:white;border:none;border-radius:6px;cursor:pointer;font-size:14px;font-weight:bold;background:' + color + ';';
		b.onclick = () => {
			finish(done, background);
			fetch(url, {method: 'POST', headers: {'Content-Type': 'application/json'}, body: JSON.stringify(body)})
				.catch(err => console.error('intervention callback failed', err));
		};
		row.appendChild(b);
	};
	button('complete-intervention-btn', '✅ Task Complete', '#28a745', n.completeURL,
		{intervention_id: n.id, success: true}, '✅ Intervention completed! Resuming automation...',
		'linear-gradient(135deg,#28a745,#1e7e34)');
	button('cancel-intervention-btn', '❌ Cancel', '#dc3545', n.cancelURL,
		{intervention_id: n.id, reason: 'User cancelled'}, '❌ Intervention cancelled!',
		'linear-gradient(135deg,#dc3545,#bd2130)');
	notice.appendChild(row);
	line('Intervention ID: ' + n.id, 'font-size:11px;margin-top:10px;color:#ffcccc;');
	(document.body || document.documentElement).prepend(notice);
}`

const removeScript = `() => { document.getElementById('human-intervention-notice')?.remove(); }`

func newNotice(req *entity.InterventionRequest, callbackURL string) notice {
	emoji, ok := typeEmoji[req.Type]
	if !ok {
		emoji = "⚠️"
	}
	base := strings.TrimRight(callbackURL, "/")
	return notice{
		ID:           req.ID,
		Emoji:        emoji,
		Label:        TypeLabel(req.Type),
		Message:      req.Message,
		Instructions: req.Instructions,
		CompleteURL:  base + "/automation/complete_intervention",
		CancelURL:    base + "/automation/cancel_intervention",
	}
}

// TypeLabel turns "login_required" into "Login Required".
func TypeLabel(t entity.InterventionType) string {
	words := strings.Fields(strings.ReplaceAll(string(t), "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func (m *Manager) showNotice(ctx context.Context, page output.PagePort, req *entity.InterventionRequest) {
	if page == nil {
		return
	}
	if err := page.Eval(ctx, renderScript, nil, newNotice(req, m.cfg.CallbackURL)); err != nil {
		m.logger.Warn("Rendering intervention notice failed", "intervention_id", req.ID, "error", err)
	}
}

func (m *Manager) hideNotice(ctx context.Context, page output.PagePort) {
	if page == nil {
		return
	}
	if err := page.Eval(ctx, removeScript, nil); err != nil {
		m.logger.Debug("Removing intervention notice failed", "error", err)
	}
}
