package services

import (
	"context"
	"testing"

	"centavo/internal/core"

	"github.com/stretchr/testify/require"
)

func TestCategoryOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.webUser(t, "owner@example.com")
	other := f.webUser(t, "other@example.com")

	c, err := f.categories.Create(ctx, owner.ID, CreateCategoryInput{Name: " Pets ", Type: core.Expense})
	require.NoError(t, err)
	require.Equal(t, "Pets", c.Name)
	require.Equal(t, core.DefaultCategoryIcon, c.Icon)
	require.Equal(t, core.DefaultCategoryColor, c.Color)

	_, err = f.categories.Create(ctx, owner.ID, CreateCategoryInput{Name: "Pets", Type: core.Expense})
	require.ErrorIs(t, err, core.ErrConflict)

	_, err = f.categories.Get(ctx, other.ID, c.ID)
	require.ErrorIs(t, err, core.ErrForbidden)

	_, err = f.categories.Update(ctx, other.ID, c.ID, UpdateCategoryInput{Name: ptr("Mine")})
	require.ErrorIs(t, err, core.ErrForbidden)

	_, err = f.categories.Update(ctx, owner.ID, foodID, UpdateCategoryInput{Name: ptr("Food")})
	require.ErrorIs(t, err, core.ErrForbidden)
	require.ErrorIs(t, f.categories.Delete(ctx, owner.ID, foodID), core.ErrForbidden)

	limit := core.Money{Cents: 20000}
	updated, err := f.categories.Update(ctx, owner.ID, c.ID, UpdateCategoryInput{MonthlyLimit: &limit})
	require.NoError(t, err)
	require.Equal(t, int64(20000), updated.MonthlyLimit.Cents)

	updated, err = f.categories.Update(ctx, owner.ID, c.ID, UpdateCategoryInput{ClearLimit: true})
	require.NoError(t, err)
	require.Nil(t, updated.MonthlyLimit)

	has, err := f.categories.HasOwn(ctx, owner.ID, core.Expense)
	require.NoError(t, err)
	require.True(t, has)

	require.NoError(t, f.categories.Delete(ctx, owner.ID, c.ID))
	_, err = f.categories.Get(ctx, owner.ID, c.ID)
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestCategoryCreateValidation(t *testing.T) {
	f := newFixture(t)
	u := f.webUser(t, "v@example.com")

	_, err := f.categories.Create(context.Background(), u.ID, CreateCategoryInput{Name: "", Color: "red", Type: "other"})
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Contains(t, ve.Fields, "name")
	require.Contains(t, ve.Fields, "color")
	require.Contains(t, ve.Fields, "type")
}

func TestFindByKeyword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.webUser(t, "k@example.com")

	tests := []struct {
		hint string
		typ  core.TransactionType
		want string
	}{
		{"food", core.Expense, "Food & Dining"},
		{"transport", core.Expense, "Transportation"},
		{"salary", core.Income, "Salary"},
		{"salary", core.Expense, ""},
		{"", core.Expense, ""},
	}

	for _, tt := range tests {
		t.Run(tt.hint+"/"+string(tt.typ), func(t *testing.T) {
			c, err := f.categories.FindByKeyword(ctx, u.ID, tt.hint, tt.typ)
			require.NoError(t, err)
			if tt.want == "" {
				require.Nil(t, c)
				return
			}
			require.NotNil(t, c)
			require.Equal(t, tt.want, c.Name)
		})
	}
}
