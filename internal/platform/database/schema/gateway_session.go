// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

package schema

// SessionTable represents the 'gateway.session' table
type SessionTable struct {
	Table     string
	ViewerKey string
	Token     string
	UpdatedAt string
}

// Session is the schema definition for gateway.session
var Session = SessionTable{
	Table:     "gateway.session",
	ViewerKey: "viewer_key",
	Token:     "token",
	UpdatedAt: "updated_at",
}

// Columns returns all standard column names
func (t SessionTable) Columns() []string {
	return []string{
		t.ViewerKey, t.Token, t.UpdatedAt,
	}
}
