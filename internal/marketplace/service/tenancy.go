package service

import (
	"context"
	"errors"

	"rentflow/internal/marketplace/models"
	"rentflow/pkg/domain"
	"rentflow/pkg/platform/sentinel"
)

// GetTenancy returns the property's tenancy. Only AcceptOffer writes one.
func (s *Service) GetTenancy(ctx context.Context, property domain.PropertyID) (*models.Tenancy, error) {
	var tenancy *models.Tenancy
	err := s.view(ctx, func(ctx context.Context, stores Stores) error {
		var err error
		tenancy, err = stores.Tenancies.FindByProperty(ctx, property)
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.ErrTenancyDoesNotExist
		}
		if err != nil {
			return wrapStore(err, "failed to load tenancy")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tenancy, nil
}
