package registration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxschool-bot/internal/domain"
)

func TestMemorySessionStore_GetCreatesIdleDefault(t *testing.T) {
	store := NewMemorySessionStore()
	sess, err := store.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StateIdle, sess.State)
	assert.Nil(t, sess.Contact)
	assert.Nil(t, sess.Code)
}

func TestMemorySessionStore_PutThenGetReturnsSameSession(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	in := &domain.Session{
		State:   domain.StateAwaitingConfirmation,
		Contact: &domain.ContactPending{Phone: "79991234567", PlatformID: "u1"},
	}
	require.NoError(t, store.Put(ctx, "u1", in))

	out, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestMemorySessionStore_ResetClearsPayload(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "u1", &domain.Session{
		State: domain.StateAwaitingEmailCode,
		Code:  &domain.CodePending{Code: "123456"},
	}))
	require.NoError(t, store.Reset(ctx, "u1"))

	sess, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StateIdle, sess.State)
	assert.Nil(t, sess.Code)
}

func TestMemorySessionStore_UsersAreIsolated(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "u1", &domain.Session{State: domain.StateAwaitingContact}))

	other, err := store.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, domain.StateIdle, other.State)
}
