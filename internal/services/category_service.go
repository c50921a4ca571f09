package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"centavo/internal/core"
	"centavo/internal/log"
)

type CategoryService struct {
	categories CategoryStore
	logger     *log.Logger
}

func NewCategoryService(categories CategoryStore, logger *log.Logger) *CategoryService {
	return &CategoryService{categories: categories, logger: logger}
}

// List returns system categories followed by the user's own. A nil typ
// lists both types.
func (s *CategoryService) List(ctx context.Context, userID string, typ *core.TransactionType) ([]core.Category, error) {
	cats, err := s.categories.ListCategories(ctx, userID, typ)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []core.Category{}
	}
	return cats, nil
}

// HasOwn reports whether the user created any category of typ.
func (s *CategoryService) HasOwn(ctx context.Context, userID string, typ core.TransactionType) (bool, error) {
	n, err := s.categories.CountUserCategories(ctx, userID, typ)
	return n > 0, err
}

// Get returns a category the user may see.
func (s *CategoryService) Get(ctx context.Context, userID, id string) (core.Category, error) {
	c, err := s.categories.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, err
	}
	if !c.VisibleTo(userID) {
		return core.Category{}, core.ErrForbidden
	}
	return c, nil
}

type CreateCategoryInput struct {
	Name         string
	Icon         string
	Color        string
	Type         core.TransactionType
	MonthlyLimit *core.Money
}

func (s *CategoryService) Create(ctx context.Context, userID string, in CreateCategoryInput) (core.Category, error) {
	c := core.Category{
		UserID:       &userID,
		Name:         strings.TrimSpace(in.Name),
		Icon:         in.Icon,
		Color:        in.Color,
		Type:         in.Type,
		MonthlyLimit: in.MonthlyLimit,
	}
	if c.Icon == "" {
		c.Icon = core.DefaultCategoryIcon
	}
	if c.Color == "" {
		c.Color = core.DefaultCategoryColor
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	created, err := s.categories.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, err
	}
	s.logger.InfoContext(ctx, "Category created",
		log.FieldUserID, userID,
		log.FieldCategoryID, created.ID)
	return created, nil
}

type UpdateCategoryInput struct {
	Name         *string
	Icon         *string
	Color        *string
	MonthlyLimit *core.Money
	ClearLimit   bool
}

// ownedCategory loads id and checks the user may change it.
func (s *CategoryService) ownedCategory(ctx context.Context, userID, id string) (core.Category, error) {
	c, err := s.categories.GetCategory(ctx, id)
	if err != nil {
		return core.Category{}, err
	}
	if c.IsSystem {
		return core.Category{}, fmt.Errorf("%w: system categories cannot be changed", core.ErrForbidden)
	}
	if !c.OwnedBy(userID) {
		return core.Category{}, core.ErrForbidden
	}
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, userID, id string, in UpdateCategoryInput) (core.Category, error) {
	c, err := s.ownedCategory(ctx, userID, id)
	if err != nil {
		return core.Category{}, err
	}

	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Icon != nil {
		c.Icon = *in.Icon
	}
	if in.Color != nil {
		c.Color = *in.Color
	}
	switch {
	case in.ClearLimit:
		c.MonthlyLimit = nil
	case in.MonthlyLimit != nil:
		c.MonthlyLimit = in.MonthlyLimit
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	return s.categories.UpdateCategory(ctx, c)
}

// Delete removes a user category. Transactions that used it become
// uncategorised.
func (s *CategoryService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.ownedCategory(ctx, userID, id); err != nil {
		return err
	}
	if err := s.categories.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Category deleted", log.FieldUserID, userID, log.FieldCategoryID, id)
	return nil
}

// FindByKeyword maps a parser hint such as "food" to one of the user's
// visible categories of typ: an exact name match first, then the first
// name containing the hint. It returns nil when nothing matches.
func (s *CategoryService) FindByKeyword(ctx context.Context, userID, hint string, typ core.TransactionType) (*core.Category, error) {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if hint == "" {
		return nil, nil
	}
	cats, err := s.categories.ListCategories(ctx, userID, &typ)
	if err != nil {
		return nil, err
	}
	for i := range cats {
		if strings.ToLower(cats[i].Name) == hint {
			return &cats[i], nil
		}
	}
	for i := range cats {
		if strings.Contains(strings.ToLower(cats[i].Name), hint) {
			return &cats[i], nil
		}
	}
	return nil, nil
}

// resolveCategory checks that id names a category the user can attach to a
// transaction of typ.
func resolveCategory(ctx context.Context, store CategoryStore, userID, id string, typ core.TransactionType) (core.Category, error) {
	c, err := store.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Category{}, core.NewValidationError("category_id", "category not found")
		}
		return core.Category{}, err
	}
	if !c.VisibleTo(userID) {
		return core.Category{}, fmt.Errorf("%w: category belongs to another user", core.ErrForbidden)
	}
	if c.Type != typ {
		return core.Category{}, core.NewValidationError("category_id", fmt.Sprintf("category is for %s, not %s", c.Type, typ))
	}
	return c, nil
}
