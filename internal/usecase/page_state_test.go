package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/user/fathom-scraper/internal/entity"
)

func TestClassify(t *testing.T) {
	c := NewPageClassifier("", discardLogger())
	assert.Equal(t, entity.OnTarget, c.Classify("https://fathom.video/share/abc"))
	assert.Equal(t, entity.UnknownRedirect, c.Classify("https://fathom.video/login"))
	assert.Equal(t, entity.UnknownRedirect, c.Classify(""))
}

func TestResolveOnTarget(t *testing.T) {
	c := NewPageClassifier(DefaultSharePattern, discardLogger())
	page := newFakePage("https://fathom.video/share/abc")
	state, err := c.Resolve(context.Background(), page, page.landingURL)
	assert.NoError(t, err)
	assert.Equal(t, entity.OnTarget, state)
}

func TestResolveLoginRedirect(t *testing.T) {
	c := NewPageClassifier(DefaultSharePattern, discardLogger())
	page := newFakePage("https://fathom.video/users/sign_in")
	page.present[loginFormLocator] = true

	state, err := c.Resolve(context.Background(), page, page.landingURL)
	assert.Equal(t, entity.LoginRedirect, state)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
}

func TestResolveUnknownRedirect(t *testing.T) {
	c := NewPageClassifier(DefaultSharePattern, discardLogger())
	page := newFakePage("https://example.com/elsewhere")

	state, err := c.Resolve(context.Background(), page, page.landingURL)
	assert.Equal(t, entity.UnknownRedirect, state)
	assert.ErrorIs(t, err, ErrUnexpectedRedirect)
}

func TestPageStateString(t *testing.T) {
	assert.Equal(t, "on_target", entity.OnTarget.String())
	assert.Equal(t, "login_redirect", entity.LoginRedirect.String())
	assert.Equal(t, "unknown_redirect", entity.UnknownRedirect.String())
}
