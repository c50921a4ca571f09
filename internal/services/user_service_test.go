package services

import (
	"context"
	"testing"

	"centavo/internal/core"
	"centavo/internal/storage"

	"github.com/stretchr/testify/require"
)

const foodID = "00000000-0000-4000-8000-000000000001"

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.Register(ctx, RegisterInput{
		Email: "  Ana@Example.com ", Password: "password123", DisplayName: "Ana", Currency: "usd",
	})
	require.NoError(t, err)
	require.Equal(t, "ana@example.com", *u.Email)
	require.Equal(t, "USD", u.DefaultCurrency)
	require.NotEqual(t, "password123", u.PasswordHash)

	_, err = f.users.Register(ctx, RegisterInput{Email: "ana@example.com", Password: "password123", DisplayName: "Again"})
	require.ErrorIs(t, err, core.ErrConflict)

	pair, err := f.users.Login(ctx, "ana@example.com", "password123")
	require.NoError(t, err)
	require.Equal(t, "bearer", pair.TokenType)

	got, err := f.users.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = f.users.Authenticate(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, core.ErrUnauthorized, "refresh token must not authenticate requests")

	refreshed, err := f.users.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, refreshed.AccessToken)

	_, err = f.users.Login(ctx, "ana@example.com", "wrong-password")
	require.ErrorIs(t, err, core.ErrUnauthorized)
	_, err = f.users.Login(ctx, "nobody@example.com", "password123")
	require.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.Register(context.Background(), RegisterInput{Email: "nope", Password: "short", DisplayName: ""})
	require.ErrorIs(t, err, core.ErrValidation)

	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Contains(t, ve.Fields, "email")
	require.Contains(t, ve.Fields, "password")
	require.Contains(t, ve.Fields, "display_name")
}

func TestLoginRejectsDisabledAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.webUser(t, "off@example.com")

	u.IsActive = false
	_, err := f.repo.UpdateUser(ctx, u)
	require.NoError(t, err)

	_, err = f.users.Login(ctx, "off@example.com", "password123")
	require.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.webUser(t, "p@example.com")

	got, err := f.users.UpdateProfile(ctx, u.ID, UpdateProfileInput{DefaultCurrency: ptr("eur")})
	require.NoError(t, err)
	require.Equal(t, "EUR", got.DefaultCurrency)
	require.Equal(t, "Web", got.DisplayName)

	_, err = f.users.UpdateProfile(ctx, u.ID, UpdateProfileInput{DefaultCurrency: ptr("euro")})
	require.ErrorIs(t, err, core.ErrValidation)
}

func TestGetOrCreateTelegramUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, created, err := f.users.GetOrCreateTelegramUser(ctx, 42, "pepe", "")
	require.NoError(t, err)
	require.True(t, created)
	require.True(t, u.IsShadow())
	require.Equal(t, "pepe", u.DisplayName)
	require.Equal(t, "MXN", u.DefaultCurrency)

	again, created, err := f.users.GetOrCreateTelegramUser(ctx, 42, "pepe", "Pepe")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, u.ID, again.ID)

	anon, _, err := f.users.GetOrCreateTelegramUser(ctx, 7, "", "")
	require.NoError(t, err)
	require.Equal(t, "User7", anon.DisplayName)
}

func TestLinkTelegram(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown code", func(t *testing.T) {
		f := newFixture(t)
		ok, err := f.users.LinkTelegram(ctx, "000000", 1)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("fresh identity is bound and code is spent", func(t *testing.T) {
		f := newFixture(t)
		web := f.webUser(t, "a@example.com")

		code, err := f.users.GenerateLinkCode(ctx, web.ID)
		require.NoError(t, err)
		require.Len(t, code, 6)

		ok, err := f.users.LinkTelegram(ctx, code, 555)
		require.NoError(t, err)
		require.True(t, ok)

		got, err := f.repo.GetUserByTelegramID(ctx, 555)
		require.NoError(t, err)
		require.Equal(t, web.ID, got.ID)

		ok, err = f.users.LinkTelegram(ctx, code, 555)
		require.NoError(t, err)
		require.False(t, ok, "a code works once")
	})

	t.Run("already linked is a no-op success", func(t *testing.T) {
		f := newFixture(t)
		web := f.webUser(t, "a@example.com")
		require.NoError(t, f.repo.BindTelegram(ctx, web.ID, 555))

		code, err := f.users.GenerateLinkCode(ctx, web.ID)
		require.NoError(t, err)
		ok, err := f.users.LinkTelegram(ctx, code, 555)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("shadow user is merged into the web account", func(t *testing.T) {
		f := newFixture(t)
		shadow := f.botUser(t, 555)
		f.expense(t, shadow.ID, 5000, ptr(foodID), core.NewDate(2024, 3, 1))
		web := f.webUser(t, "a@example.com")

		code, err := f.users.GenerateLinkCode(ctx, web.ID)
		require.NoError(t, err)
		ok, err := f.users.LinkTelegram(ctx, code, 555)
		require.NoError(t, err)
		require.True(t, ok)

		_, err = f.repo.GetUserByID(ctx, shadow.ID)
		require.ErrorIs(t, err, core.ErrNotFound)

		n, err := f.repo.CountTransactions(ctx, storage.TransactionFilter{UserID: web.ID})
		require.NoError(t, err)
		require.Equal(t, 1, n)
	})

	t.Run("identity on another email account moves alone", func(t *testing.T) {
		f := newFixture(t)
		other := f.webUser(t, "other@example.com")
		require.NoError(t, f.repo.BindTelegram(ctx, other.ID, 555))
		f.expense(t, other.ID, 100, nil, core.NewDate(2024, 3, 1))
		web := f.webUser(t, "a@example.com")

		code, err := f.users.GenerateLinkCode(ctx, web.ID)
		require.NoError(t, err)
		ok, err := f.users.LinkTelegram(ctx, code, 555)
		require.NoError(t, err)
		require.True(t, ok)

		prev, err := f.repo.GetUserByID(ctx, other.ID)
		require.NoError(t, err)
		require.Nil(t, prev.TelegramID)

		n, err := f.repo.CountTransactions(ctx, storage.TransactionFilter{UserID: other.ID})
		require.NoError(t, err)
		require.Equal(t, 1, n, "data of the previous holder stays put")
	})
}
