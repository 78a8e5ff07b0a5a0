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

func (s *service) CreateAttribute(ctx context.Context, actorID uuid.UUID, slug string, name string) (*AttributeDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermCreateProducts)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, pkgerrors.NewValidation(map[string]string{"name": "name is required"})
	}
	created, err := s.repo.CreateAttribute(ctx, &models.ProductAttribute{ShopID: acc.Shop.ID, Name: name})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create attribute")
	}
	dto := attributeToDTO(created)
	return &dto, nil
}

func (s *service) ListAttributes(ctx context.Context, actorID uuid.UUID, slug string) ([]AttributeDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermViewProducts)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListAttributes(ctx, acc.Shop.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list attributes")
	}
	out := make([]AttributeDTO, 0, len(rows))
	for i := range rows {
		out = append(out, attributeToDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) DeleteAttribute(ctx context.Context, actorID uuid.UUID, slug string, attributeID uuid.UUID) error {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermDeleteProducts)
	if err != nil {
		return err
	}
	attribute, err := s.repo.GetAttribute(ctx, acc.Shop.ID, attributeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "attribute not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load attribute")
	}

	// A value under this attribute may still be linked to a variant; the
	// protective constraint surfaces that as a conflict.
	for _, value := range attribute.Values {
		inUse, err := s.repo.AttributeValueInUse(ctx, value.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check value usage")
		}
		if inUse {
			return pkgerrors.New(pkgerrors.CodeConflict, "attribute value still assigned to a variant")
		}
	}
	if err := s.repo.DeleteAttribute(ctx, attribute.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete attribute")
	}
	return nil
}

func (s *service) AddAttributeValue(ctx context.Context, actorID uuid.UUID, slug string, attributeID uuid.UUID, name string) (*AttributeValueDTO, error) {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermCreateProducts)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, pkgerrors.NewValidation(map[string]string{"name": "name is required"})
	}
	if _, err := s.repo.GetAttribute(ctx, acc.Shop.ID, attributeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "attribute not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load attribute")
	}

	created, err := s.repo.CreateAttributeValue(ctx, &models.ProductAttributeValue{
		AttributeID: attributeID,
		Name:        name,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create attribute value")
	}
	return &AttributeValueDTO{ID: created.ID, Name: created.Name}, nil
}

func (s *service) DeleteAttributeValue(ctx context.Context, actorID uuid.UUID, slug string, valueID uuid.UUID) error {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermDeleteProducts)
	if err != nil {
		return err
	}
	value, err := s.loadAttributeValue(ctx, acc.Shop.ID, valueID)
	if err != nil {
		return err
	}

	inUse, err := s.repo.AttributeValueInUse(ctx, value.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check value usage")
	}
	if inUse {
		return pkgerrors.New(pkgerrors.CodeConflict, "attribute value still assigned to a variant")
	}
	if err := s.repo.DeleteAttributeValue(ctx, value.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete attribute value")
	}
	return nil
}

func (s *service) AssignAttributeValue(ctx context.Context, actorID uuid.UUID, slug string, variantID, valueID uuid.UUID) error {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermEditProducts)
	if err != nil {
		return err
	}
	variant, err := s.loadVariant(ctx, acc.Shop.ID, variantID)
	if err != nil {
		return err
	}
	value, err := s.loadAttributeValue(ctx, acc.Shop.ID, valueID)
	if err != nil {
		return err
	}

	err = s.repo.AssignAttributeValue(ctx, &models.ProductVariantAttributeValue{
		ProductVariantID: variant.ID,
		AttributeValueID: value.ID,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.New(pkgerrors.CodeConflict, "value already assigned to this variant")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign attribute value")
	}
	return nil
}

func (s *service) UnassignAttributeValue(ctx context.Context, actorID uuid.UUID, slug string, variantID, valueID uuid.UUID) error {
	acc, err := s.resolver.Require(ctx, actorID, slug, enums.PermEditProducts)
	if err != nil {
		return err
	}
	variant, err := s.loadVariant(ctx, acc.Shop.ID, variantID)
	if err != nil {
		return err
	}
	if err := s.repo.UnassignAttributeValue(ctx, variant.ID, valueID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unassign attribute value")
	}
	return nil
}

func (s *service) loadAttributeValue(ctx context.Context, shopID, valueID uuid.UUID) (*models.ProductAttributeValue, error) {
	value, err := s.repo.GetAttributeValue(ctx, shopID, valueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "attribute value not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load attribute value")
	}
	return value, nil
}
