package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextEncodeDecodeRoundTrip(t *testing.T) {
	ctx := &Context{
		Roles: []string{"manager"},
		Permissions: map[string]Scope{
			"products.view": true,
			"products.edit": map[string]any{"own": true},
		},
	}

	raw, err := ctx.Encode()
	require.NoError(t, err)

	decoded := DecodeContext(raw)
	require.NotNil(t, decoded)
	assert.Equal(t, ctx.Roles, decoded.Roles)
	assert.True(t, decoded.Granted("products.view"))

	scope, ok := decoded.GrantedScope("products.edit")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"own": true}, scope)
}

func TestDecodeContextMalformed(t *testing.T) {
	assert.Nil(t, DecodeContext(""))
	assert.Nil(t, DecodeContext("{not json"))
}

func TestContextNilReceiverIsSafe(t *testing.T) {
	var c *Context
	assert.False(t, c.Granted("products.view"))
	assert.False(t, c.HasRole("manager"))
	assert.True(t, c.Anonymous())
}

func TestContextAnonymous(t *testing.T) {
	assert.True(t, (&Context{}).Anonymous())
	assert.False(t, (&Context{Roles: []string{"staff"}}).Anonymous())
	assert.False(t, (&Context{Permissions: map[string]Scope{"products.view": true}}).Anonymous())
}
