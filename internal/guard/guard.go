// Package guard decides whether a session may view a portal page. The gates
// are pure functions of the session user and the page's required role set;
// redirecting is left to the caller.
package guard

import "paygate/internal/model"

// Decision is the outcome of checking a page against a session.
type Decision int

const (
	// Allow lets the page render.
	Allow Decision = iota
	// RedirectLogin sends the visitor to the login entry point.
	RedirectLogin
	// RedirectUnauthorized sends an authenticated-but-unpermitted visitor
	// to the unauthorized page.
	RedirectUnauthorized
)

// Authenticate is the first gate: an anonymous visitor is always sent to
// login, whatever the page requires.
func Authenticate(user *model.User) Decision {
	if user == nil {
		return RedirectLogin
	}
	return Allow
}

// Authorize is the second gate: an empty required set admits every
// authenticated role, otherwise the role must be a member.
func Authorize(role model.Role, required []model.Role) Decision {
	if len(required) == 0 {
		return Allow
	}
	for _, r := range required {
		if r == role {
			return Allow
		}
	}
	return RedirectUnauthorized
}

// Check applies both gates in fixed order: authentication strictly before
// role, so an anonymous visitor never sees the unauthorized page.
func Check(user *model.User, required []model.Role) Decision {
	if d := Authenticate(user); d != Allow {
		return d
	}
	return Authorize(user.Role, required)
}
