package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/rackbook/internal/common"
	"github.com/dmitrijs2005/rackbook/internal/server/events"
	"github.com/dmitrijs2005/rackbook/internal/server/models"
)

func TestUserService_Login(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	res, err := h.users.Login(ctx, "admin@demo.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, models.Profile{ID: 1, Email: "admin@demo.com", Name: "Admin", Role: "admin"}, res.User)

	id, err := h.users.VerifyToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id.UserID)
	assert.True(t, id.IsAdmin())

	_, err = h.users.Login(ctx, "admin@demo.com", "wrong")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = h.users.Login(ctx, "nobody@demo.com", "admin123")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestUserService_CreateAndList(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	p, err := h.users.Create(ctx, NewUser{Email: " carol@demo.com ", Password: "secret1", Name: "Carol"})
	require.NoError(t, err)
	assert.Equal(t, &models.Profile{ID: 3, Email: "carol@demo.com", Name: "Carol", Role: "user"}, p)

	_, err = h.users.Create(ctx, NewUser{Email: "carol@demo.com", Password: "secret2"})
	assert.ErrorIs(t, err, common.ErrEmailExists)

	res, err := h.users.Login(ctx, "carol@demo.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "user", res.User.Role)

	profiles, err := h.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, profiles, 3)

	assert.NotContains(t, string(h.mem.Raw("users.json")), `"secret1"`)
	assert.Equal(t, []string{events.UserCreated}, h.events.types())
}

func TestUserService_CreateValidation(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	for _, in := range []NewUser{
		{Email: "not-an-email", Password: "secret1"},
		{Email: "a@demo.com", Password: "123"},
		{Email: "a@demo.com", Password: "secret1", Role: "root"},
	} {
		_, err := h.users.Create(ctx, in)
		assert.ErrorIs(t, err, common.ErrorValidation, "%+v", in)
	}
}
