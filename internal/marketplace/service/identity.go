package service

import (
	"context"

	"rentflow/pkg/domain"
	audit "rentflow/pkg/platform/audit"
)

// RegisterApplicant adds account to the verified applicants. Re-registering
// is a successful no-op.
func (s *Service) RegisterApplicant(ctx context.Context, caller, account domain.AccountID) error {
	err := s.command(ctx, "register_applicant", func(ctx context.Context, _ domain.Tick, stores Stores) error {
		if err := s.requirePrivileged(ctx, caller); err != nil {
			return err
		}
		if err := stores.Identities.AddApplicant(ctx, account); err != nil {
			return wrapStore(err, "failed to register applicant")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logAudit(ctx, audit.EventApplicantRegistered,
		"actor_id", caller.String(),
		"subject", account.String(),
	)
	return nil
}

// RegisterLandlord adds account to the verified landlords. Re-registering
// is a successful no-op.
func (s *Service) RegisterLandlord(ctx context.Context, caller, account domain.AccountID) error {
	err := s.command(ctx, "register_landlord", func(ctx context.Context, _ domain.Tick, stores Stores) error {
		if err := s.requirePrivileged(ctx, caller); err != nil {
			return err
		}
		if err := stores.Identities.AddLandlord(ctx, account); err != nil {
			return wrapStore(err, "failed to register landlord")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logAudit(ctx, audit.EventLandlordRegistered,
		"actor_id", caller.String(),
		"subject", account.String(),
	)
	return nil
}

func (s *Service) IsVerifiedApplicant(ctx context.Context, account domain.AccountID) (bool, error) {
	var verified bool
	err := s.view(ctx, func(ctx context.Context, stores Stores) error {
		var err error
		verified, err = stores.Identities.IsApplicant(ctx, account)
		return err
	})
	if err != nil {
		return false, wrapStore(err, "failed to check applicant")
	}
	return verified, nil
}

func (s *Service) IsVerifiedLandlord(ctx context.Context, account domain.AccountID) (bool, error) {
	var verified bool
	err := s.view(ctx, func(ctx context.Context, stores Stores) error {
		var err error
		verified, err = stores.Identities.IsLandlord(ctx, account)
		return err
	})
	if err != nil {
		return false, wrapStore(err, "failed to check landlord")
	}
	return verified, nil
}
