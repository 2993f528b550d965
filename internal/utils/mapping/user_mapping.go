package mapping

import (
	"strings"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/SscSPs/trustbridge_backend/internal/models"
)

// ToModelUser converts a domain User to a model User
func ToModelUser(d domain.User) models.User {
	return models.User{
		UserID:          d.UserID,
		Email:           strings.ToLower(d.Email),
		Name:            d.Name,
		Role:            string(d.Role),
		PasswordHash:    d.PasswordHash,
		KYCVerified:     d.KYCVerified,
		KYCVerifiedAt:   d.KYCVerifiedAt,
		Suspended:       d.Suspended,
		Bio:             d.Bio,
		Company:         d.Company,
		Industry:        d.Industry,
		Location:        d.Location,
		InvestmentFocus: d.InvestmentFocus,
		Revenue:         toNullDecimal(d.Revenue),
		GrowthRate:      toNullDecimal(d.GrowthRate),
		ProfitMargin:    toNullDecimal(d.ProfitMargin),
		AuditFields:     ToModelAuditFields(d.AuditFields),
		DeletedAt:       d.DeletedAt,
	}
}

// ToDomainUser converts a model User to a domain User
func ToDomainUser(m models.User) domain.User {
	return domain.User{
		UserID:        m.UserID,
		Email:         m.Email,
		Name:          m.Name,
		Role:          domain.UserRole(m.Role),
		PasswordHash:  m.PasswordHash,
		KYCVerified:   m.KYCVerified,
		KYCVerifiedAt: m.KYCVerifiedAt,
		Suspended:     m.Suspended,
		Profile: domain.Profile{
			Bio:             m.Bio,
			Company:         m.Company,
			Industry:        m.Industry,
			Location:        m.Location,
			InvestmentFocus: m.InvestmentFocus,
			Revenue:         fromNullDecimal(m.Revenue),
			GrowthRate:      fromNullDecimal(m.GrowthRate),
			ProfitMargin:    fromNullDecimal(m.ProfitMargin),
		},
		AuditFields: ToDomainAuditFields(m.AuditFields),
		DeletedAt:   m.DeletedAt,
	}
}

// ToDomainUserSlice converts a slice of model Users to a slice of domain Users
func ToDomainUserSlice(ms []models.User) []domain.User {
	ds := make([]domain.User, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainUser(m)
	}
	return ds
}
