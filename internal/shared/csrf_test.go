package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFTokenLifecycle(t *testing.T) {
	mgr := NewCSRFManager("csrf-secret")
	sess := &Session{ID: "sess-1"}

	token, err := mgr.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, token, sess.Get(CSRFSessionKey))

	again, err := mgr.EnsureToken(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, token, again, "token is stable for the session")

	assert.NoError(t, mgr.VerifyToken(context.Background(), sess, token))
	assert.ErrorIs(t, mgr.VerifyToken(context.Background(), sess, ""), ErrCSRFTokenMissing)
	assert.ErrorIs(t, mgr.VerifyToken(context.Background(), sess, "forged"), ErrCSRFTokenMismatch)
}

func TestCSRFVerifyWithoutIssuedToken(t *testing.T) {
	mgr := NewCSRFManager("csrf-secret")

	assert.ErrorIs(t, mgr.VerifyToken(context.Background(), &Session{ID: "sess-2"}, "anything"), ErrCSRFTokenMissing)
	assert.ErrorIs(t, mgr.VerifyToken(context.Background(), nil, "anything"), ErrCSRFTokenMissing)
}
