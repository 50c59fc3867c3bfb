package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AmineFethii/AMINE-FETHI-CRM-sub000/pkg/core"
)

func mustHash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthenticate(t *testing.T) {
	c := acme()
	c.PasswordHash = mustHash(t, "client-secret")
	svc := newTestService(t, NewMockRepository(c), core.WithAdmin(core.AdminCredentials{
		Email:        "admin@practice.test",
		Name:         "Amine",
		PasswordHash: mustHash(t, "admin-secret"),
	}))
	ctx := context.Background()

	t.Run("admin", func(t *testing.T) {
		sess, ok := svc.Authenticate(ctx, "ADMIN@practice.test", "admin-secret")
		require.True(t, ok)
		assert.True(t, sess.IsAdmin())
		assert.Equal(t, "Amine", sess.Name)
	})

	t.Run("client", func(t *testing.T) {
		sess, ok := svc.Authenticate(ctx, "Jane@Acme.test", "client-secret")
		require.True(t, ok)
		assert.Equal(t, core.RoleClient, sess.Role)
		assert.Equal(t, "c1", sess.ClientID)
		assert.True(t, sess.Owns(c))
	})

	t.Run("wrong password", func(t *testing.T) {
		_, ok := svc.Authenticate(ctx, "jane@acme.test", "admin-secret")
		assert.False(t, ok)
		_, ok = svc.Authenticate(ctx, "admin@practice.test", "client-secret")
		assert.False(t, ok)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, ok := svc.Authenticate(ctx, "who@nowhere.test", "x")
		assert.False(t, ok)
	})
}

func TestAuthenticate_DelayHonoursContext(t *testing.T) {
	c := acme()
	c.PasswordHash = mustHash(t, "pw")
	svc := newTestService(t, NewMockRepository(c), core.WithLoginDelay(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok := svc.Authenticate(ctx, "jane@acme.test", "pw")
	assert.False(t, ok)
}

func TestSession_Owns(t *testing.T) {
	c := acme()
	assert.True(t, core.Session{Role: core.RoleClient, Email: "JANE@acme.test"}.Owns(c))
	assert.False(t, core.AdminSession().Owns(c))
	assert.False(t, core.Session{Role: core.RoleClient}.Owns(c))
}

func TestHashPassword(t *testing.T) {
	h, err := core.HashPassword("s3cret")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(h), []byte("s3cret")))
}
