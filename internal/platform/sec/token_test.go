// Copyright (c) 2026 FarmLink. All rights reserved.
// Author: platform@farmlink.app

package sec_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmlink/gateway/internal/platform/sec"
)

func mint(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-key"))
	require.NoError(t, err)
	return token
}

/*
TestDecode_ReadsClaims verifies role, subject, and expiry extraction.
*/
func TestDecode_ReadsClaims(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	raw := mint(t, jwt.MapClaims{
		"sub":  "user-7",
		"role": "buyer",
		"exp":  expiry.Unix(),
	})

	payload, err := sec.Decode(raw)

	require.NoError(t, err)
	assert.Equal(t, sec.RoleBuyer, payload.Role)
	assert.Equal(t, "user-7", payload.Subject)
	assert.True(t, payload.Expiry.Equal(expiry))
	assert.False(t, payload.Expired(time.Now()))
}

/*
TestDecode_Malformed verifies every non-token input maps to ErrDecode.
*/
func TestDecode_Malformed(t *testing.T) {
	inputs := []string{"", "garbage", "a.b", "a.b.c.d"}

	for _, raw := range inputs {
		_, err := sec.Decode(raw)
		assert.ErrorIs(t, err, sec.ErrDecode)
	}
}

/*
TestPayload_Expired covers the expiry edge cases, including the missing
'exp' claim.
*/
func TestPayload_Expired(t *testing.T) {
	now := time.Now()

	// 1. A token without 'exp' decodes but is never usable.
	raw := mint(t, jwt.MapClaims{"sub": "user-7", "role": "buyer"})
	payload, err := sec.Decode(raw)
	require.NoError(t, err)
	assert.True(t, payload.Expired(now))

	// 2. Expiry exactly now counts as expired.
	assert.True(t, sec.TokenPayload{Expiry: now}.Expired(now))

	// 3. Future expiry is usable.
	assert.False(t, sec.TokenPayload{Expiry: now.Add(time.Minute)}.Expired(now))
}
