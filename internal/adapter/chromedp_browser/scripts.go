package chromedp_browser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/user/fathom-scraper/internal/repository"
)

// jsString renders s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// locatorExpr builds an expression evaluating to the first element matching
// loc, or null.
func locatorExpr(loc repository.Locator) string {
	if loc.Text == "" {
		return fmt.Sprintf("document.querySelector(%s)", jsString(loc.CSS))
	}
	return fmt.Sprintf(
		"(Array.from(document.querySelectorAll(%s)).find(el => (el.innerText || el.textContent || '').toLowerCase().includes(%s)) || null)",
		jsString(loc.CSS), jsString(strings.ToLower(loc.Text)),
	)
}

func existsScript(loc repository.Locator) string {
	return fmt.Sprintf("!!%s", locatorExpr(loc))
}

func clickScript(loc repository.Locator) string {
	return fmt.Sprintf("(() => { const el = %s; if (!el) return false; el.click(); return true; })()", locatorExpr(loc))
}

func attributeScript(selector, name string) string {
	return fmt.Sprintf(
		"(() => { const el = document.querySelector(%s); if (!el || !el.hasAttribute(%s)) return {ok: false, value: ''}; return {ok: true, value: el.getAttribute(%s) || ''}; })()",
		jsString(selector), jsString(name), jsString(name),
	)
}

// textsScript reports innerText and textContent for every match. Visibility
// follows the usual layout-box test plus computed visibility.
func textsScript(selector string) string {
	return fmt.Sprintf(`Array.from(document.querySelectorAll(%s)).map(el => {
	const style = window.getComputedStyle(el);
	const boxed = !!(el.offsetWidth || el.offsetHeight || el.getClientRects().length);
	return {
		visible: boxed && style.visibility !== 'hidden' && style.display !== 'none',
		innerText: el.innerText || '',
		textContent: el.textContent || ''
	};
})`, jsString(selector))
}

func outerHTMLScript(selector string) string {
	return fmt.Sprintf("(() => { const el = document.querySelector(%s); return el ? el.outerHTML : ''; })()", jsString(selector))
}

// truthyScript wraps a predicate so the result is always a boolean.
func truthyScript(expression string) string {
	return fmt.Sprintf("!!(%s)", expression)
}
