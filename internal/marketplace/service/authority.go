package service

import (
	"context"

	"rentflow/pkg/domain"
)

// StaticAuthority treats a fixed set of accounts as privileged.
type StaticAuthority map[domain.AccountID]struct{}

func NewStaticAuthority(accounts ...domain.AccountID) StaticAuthority {
	a := make(StaticAuthority, len(accounts))
	for _, account := range accounts {
		a[account] = struct{}{}
	}
	return a
}

func (a StaticAuthority) IsPrivileged(_ context.Context, account domain.AccountID) bool {
	_, ok := a[account]
	return ok
}
