// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

package sec

// # Viewer Roles

// Role represents the marketplace role carried in a viewer's token.
type Role string

const (
	// Sells produce and farm resources on the marketplace
	RoleFarmer Role = "farmer"

	// Browses listings and places orders
	RoleBuyer Role = "buyer"

	// Full administrative access to the platform
	RoleAdmin Role = "admin"
)

// Known reports whether the role is one the platform recognizes.
//
// Tokens can outlive a deploy, so an unknown role string is routed to the
// generic dashboard rather than rejected.
func (r Role) Known() bool {
	switch r {
	case RoleFarmer, RoleBuyer, RoleAdmin:
		return true
	default:
		return false
	}
}
