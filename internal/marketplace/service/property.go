package service

import (
	"context"
	"errors"

	"rentflow/internal/marketplace/models"
	"rentflow/pkg/domain"
	audit "rentflow/pkg/platform/audit"
	"rentflow/pkg/platform/sentinel"
)

type RegisterPropertyCommand struct {
	AddressHash    domain.Hash
	PostalCodeHash domain.Hash
	Landlord       domain.AccountID
}

// RegisterProperty records a property under landlord. The landlord is not
// required to be verified, and the same address may be registered twice.
func (s *Service) RegisterProperty(ctx context.Context, caller domain.AccountID, cmd RegisterPropertyCommand) (*models.Property, error) {
	var property *models.Property
	err := s.command(ctx, "register_property", func(ctx context.Context, _ domain.Tick, stores Stores) error {
		if err := s.requirePrivileged(ctx, caller); err != nil {
			return err
		}
		next, err := allocate(ctx, stores, models.CounterProperty, models.ErrTooManyProperties)
		if err != nil {
			return err
		}

		property = models.NewProperty(domain.PropertyID(next), cmd.Landlord, cmd.AddressHash, cmd.PostalCodeHash)
		if err := stores.Properties.Insert(ctx, property); err != nil {
			return wrapStore(err, "failed to store property")
		}
		return advance(ctx, stores, models.CounterProperty, next)
	})
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, audit.EventPropertyRegistered,
		"actor_id", caller.String(),
		"subject", "property:"+property.ID.String(),
		"landlord_id", property.Landlord.String(),
	)
	return property, nil
}

func (s *Service) GetProperty(ctx context.Context, id domain.PropertyID) (*models.Property, error) {
	var property *models.Property
	err := s.view(ctx, func(ctx context.Context, stores Stores) error {
		var err error
		property, err = findProperty(ctx, stores, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return property, nil
}

func findProperty(ctx context.Context, stores Stores, id domain.PropertyID) (*models.Property, error) {
	property, err := stores.Properties.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, models.ErrPropertyDoesNotExist
	}
	if err != nil {
		return nil, wrapStore(err, "failed to load property")
	}
	return property, nil
}
