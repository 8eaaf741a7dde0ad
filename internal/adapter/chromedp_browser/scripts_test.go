package chromedp_browser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/user/fathom-scraper/internal/repository"
)

func TestLocatorExprCSSOnly(t *testing.T) {
	got := locatorExpr(repository.Locator{CSS: `input[name="email"]`})
	assert.Equal(t, `document.querySelector("input[name=\"email\"]")`, got)
}

func TestLocatorExprWithText(t *testing.T) {
	got := locatorExpr(repository.Locator{CSS: "button", Text: "Show Transcript"})
	assert.Contains(t, got, `document.querySelectorAll("button")`)
	assert.Contains(t, got, `.includes("show transcript")`)
}

func TestScriptsQuoteSelectors(t *testing.T) {
	assert.Contains(t, attributeScript("#app", "data-page"), `document.querySelector("#app")`)
	assert.Contains(t, attributeScript("#app", "data-page"), `el.getAttribute("data-page")`)
	assert.Contains(t, outerHTMLScript("page-call-detail-transcript"), `"page-call-detail-transcript"`)
	assert.Contains(t, textsScript(`a[title='x']`), `"a[title='x']"`)
	assert.Equal(t, "!!(1 + 1)", truthyScript("1 + 1"))
	assert.Contains(t, clickScript(repository.Locator{CSS: "button"}), "el.click()")
	assert.Equal(t, `!!document.querySelector("#x")`, existsScript(repository.Locator{CSS: "#x"}))
}
