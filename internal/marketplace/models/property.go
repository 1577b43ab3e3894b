package models

import (
	"rentflow/pkg/domain"
)

// Property is a registered physical property. Immutable once created.
//
// Ids come from a sequential counter, so two registrations of the same
// address under the same landlord produce two properties.
type Property struct {
	ID             domain.PropertyID `json:"id"`
	Landlord       domain.AccountID  `json:"landlord_id"`
	AddressHash    domain.Hash       `json:"address_hash"`
	PostalCodeHash domain.Hash       `json:"postal_code_hash"`
}

func NewProperty(id domain.PropertyID, landlord domain.AccountID, address, postalCode domain.Hash) *Property {
	return &Property{
		ID:             id,
		Landlord:       landlord,
		AddressHash:    address,
		PostalCodeHash: postalCode,
	}
}

// IsOwnedBy reports whether account is the property's landlord.
func (p *Property) IsOwnedBy(account domain.AccountID) bool {
	return p.Landlord == account
}
