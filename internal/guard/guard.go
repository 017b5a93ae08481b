// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

/*
Package guard decides where the web client may navigate.

For every page transition the front-end asks the gateway to evaluate the
destination path against the viewer's token. The answer is purely advisory
UX routing ("send logged-in viewers past the login page", "bounce buyers
off the farmer dashboard") and never a security boundary: the marketplace
backend re-checks authorization on every data request regardless of what
this package decides.

# Decision Table

	public path, no usable token    → allow
	public path, usable token       → redirect to the role's dashboard
	protected path, no usable token → redirect to login
	protected path, wrong role      → redirect to the unauthorized page
	otherwise                       → allow

A token that fails to decode or has expired is silently treated as "no
valid session"; decode trouble is never surfaced to the caller. The
unauthorized page itself is always reachable so the guard can never
redirect in a loop.
*/
package guard

import (
	"strings"
	"time"

	"github.com/farmlink/gateway/internal/platform/sec"
)

// # Route Tables

const (
	// LoginPath is where unauthenticated viewers of protected pages land.
	LoginPath = "/auth/login"

	// UnauthorizedPath is shown on a role mismatch. Always reachable.
	UnauthorizedPath = "/unauthorized"

	// GenericDashboardPath catches tokens whose role the gateway does
	// not recognize (e.g. minted by a newer backend deploy).
	GenericDashboardPath = "/dashboard"
)

// publicPrefixes lists path prefixes reachable without a session.
var publicPrefixes = []string{
	"/auth",
	"/marketplace",
	"/community",
	"/resources",
	"/about",
}

// roleDashboards maps each role to its landing page.
var roleDashboards = map[sec.Role]string{
	sec.RoleFarmer: "/farmer-dashboard",
	sec.RoleBuyer:  "/buyer-dashboard",
	sec.RoleAdmin:  "/admin-dashboard",
}

// roleAllowedPrefixes lists the protected path prefixes each role may visit.
var roleAllowedPrefixes = map[sec.Role][]string{
	sec.RoleFarmer: {"/farmer-dashboard", "/dashboard", "/profile", "/settings", "/listings"},
	sec.RoleBuyer:  {"/buyer-dashboard", "/dashboard", "/profile", "/settings", "/orders"},
	// Admins may visit every protected page.
	sec.RoleAdmin: {"/"},
}

// Decision is the outcome of one route evaluation.
type Decision struct {
	// Allow is true when the viewer may render the requested path.
	Allow bool `json:"allow"`
	// RedirectTo is the destination path when Allow is false.
	RedirectTo string `json:"redirect_to,omitempty"`
}

// allow is the affirmative decision.
func allow() Decision { return Decision{Allow: true} }

// redirect sends the viewer elsewhere.
func redirect(target string) Decision { return Decision{RedirectTo: target} }

// Evaluate decides whether the viewer may navigate to path.
//
// rawToken may be empty (anonymous). The function is pure apart from
// reading the clock for expiry; it never errors. An unreadable token is
// simply an absent one.
func Evaluate(path string, rawToken string) Decision {
	return evaluateAt(path, rawToken, time.Now())
}

// evaluateAt is Evaluate with an injectable clock.
func evaluateAt(path string, rawToken string, now time.Time) Decision {

	// The unauthorized page must never itself redirect to the
	// unauthorized page.
	if path == UnauthorizedPath {
		return allow()
	}

	payload, err := sec.Decode(rawToken)
	hasSession := err == nil && !payload.Expired(now)

	if isPublic(path) {
		if hasSession {
			// Logged-in viewers skip public entry pages and land on
			// their dashboard.
			return redirect(DashboardFor(payload.Role))
		}
		return allow()
	}

	if !hasSession {
		return redirect(LoginPath)
	}

	if !roleMayVisit(payload.Role, path) {
		return redirect(UnauthorizedPath)
	}

	return allow()
}

// DashboardFor returns the landing page for a role, falling back to the
// generic dashboard for roles the gateway does not know.
func DashboardFor(role sec.Role) string {
	if dashboard, ok := roleDashboards[role]; ok {
		return dashboard
	}
	return GenericDashboardPath
}

// isPublic reports whether the path is reachable without a session.
func isPublic(path string) bool {
	if path == "/" {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// roleMayVisit reports whether the role's allowed prefixes cover the path.
func roleMayVisit(role sec.Role, path string) bool {
	for _, prefix := range roleAllowedPrefixes[role] {
		if prefix == "/" || strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
