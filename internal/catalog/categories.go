package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarashraf/kasher-backend/pkg/db"
	"github.com/omarashraf/kasher-backend/pkg/db/models"
	"github.com/omarashraf/kasher-backend/pkg/enums"
	pkgerrors "github.com/omarashraf/kasher-backend/pkg/errors"
)

func (s *service) ListCategories(ctx context.Context, actorID uuid.UUID, slug string) ([]CategoryDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermViewProducts)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListCategories(ctx, acc.Shop.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, categoryToDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) CreateCategory(ctx context.Context, actorID uuid.UUID, slug string, input CategoryInput) (*CategoryDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermCreateProducts)
	if err != nil {
		return nil, err
	}
	if fields := validateCategoryInput(input); len(fields) > 0 {
		return nil, pkgerrors.NewValidation(fields)
	}

	created, err := s.repo.CreateCategory(ctx, &models.Category{
		ShopID: acc.Shop.ID,
		Name:   input.Name,
		Color:  input.Color,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already used in this shop")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}

	dto := categoryToDTO(created)
	return &dto, nil
}

func (s *service) UpdateCategory(ctx context.Context, actorID uuid.UUID, slug string, categoryID uuid.UUID, input CategoryInput) (*CategoryDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermEditProducts)
	if err != nil {
		return nil, err
	}

	category, err := s.loadCategory(ctx, acc.Shop.ID, categoryID)
	if err != nil {
		return nil, err
	}
	if category.Name == models.DefaultCategoryName && input.Name != models.DefaultCategoryName {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "the default category cannot be renamed")
	}
	if fields := validateCategoryInput(input); len(fields) > 0 {
		return nil, pkgerrors.NewValidation(fields)
	}

	category.Name = input.Name
	category.Color = input.Color
	updated, err := s.repo.UpdateCategory(ctx, category)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category name already used in this shop")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}

	dto := categoryToDTO(updated)
	return &dto, nil
}

func (s *service) DeleteCategory(ctx context.Context, actorID uuid.UUID, slug string, categoryID uuid.UUID) error {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermDeleteProducts)
	if err != nil {
		return err
	}

	category, err := s.loadCategory(ctx, acc.Shop.ID, categoryID)
	if err != nil {
		return err
	}
	if category.Name == models.DefaultCategoryName {
		return pkgerrors.New(pkgerrors.CodeConflict, "the default category cannot be deleted")
	}

	fallback, err := s.repo.EnsureDefaultCategory(ctx, acc.Shop.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure default category")
	}
	if err := s.repo.DeleteCategoryReassign(ctx, category.ID, fallback.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

func (s *service) EnsureDefaultCategory(ctx context.Context, actorID uuid.UUID, slug string) (*CategoryDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermCreateProducts)
	if err != nil {
		return nil, err
	}
	category, err := s.repo.EnsureDefaultCategory(ctx, acc.Shop.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure default category")
	}
	dto := categoryToDTO(category)
	return &dto, nil
}

func (s *service) loadCategory(ctx context.Context, shopID, categoryID uuid.UUID) (*models.Category, error) {
	category, err := s.repo.GetCategory(ctx, shopID, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return category, nil
}

func validateCategoryInput(input CategoryInput) map[string]string {
	fields := map[string]string{}
	if input.Name == "" {
		fields["name"] = "name is required"
	}
	if !input.Color.IsValid() {
		fields["color"] = "color is not part of the palette"
	}
	return fields
}
