package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserRole is the platform-wide role of a user.
type UserRole string

const (
	RoleInvestor     UserRole = "investor"
	RoleEntrepreneur UserRole = "entrepreneur"
	RoleAdmin        UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	return r == RoleInvestor || r == RoleEntrepreneur || r == RoleAdmin
}

// Profile holds the public profile of a user. Revenue, GrowthRate and
// ProfitMargin are only meaningful for entrepreneurs.
type Profile struct {
	Bio             string           `json:"bio,omitempty"`
	Company         string           `json:"company,omitempty"`
	Industry        string           `json:"industry,omitempty"`
	Location        string           `json:"location,omitempty"`
	InvestmentFocus string           `json:"investmentFocus,omitempty"`
	Revenue         *decimal.Decimal `json:"revenue,omitempty"`
	GrowthRate      *decimal.Decimal `json:"growthRate,omitempty"`
	ProfitMargin    *decimal.Decimal `json:"profitMargin,omitempty"`
}

// User represents a user of the application in the domain.
type User struct {
	UserID        string     `json:"userID"` // Primary Key (e.g., UUID)
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	Role          UserRole   `json:"role"`
	PasswordHash  string     `json:"-"`
	KYCVerified   bool       `json:"kycVerified"`
	KYCVerifiedAt *time.Time `json:"kycVerifiedAt,omitempty"`
	Suspended     bool       `json:"suspended"`
	Profile
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"` // Used for soft delete
}

// EstimatedValuation returns the heuristic profile valuation for entrepreneurs.
func (u User) EstimatedValuation() (decimal.Decimal, bool) {
	if u.Role != RoleEntrepreneur {
		return decimal.Zero, false
	}
	return HeuristicValuation(u.Revenue, u.GrowthRate, u.ProfitMargin), true
}

// KYCSubmission is the identity data a user submits for verification.
type KYCSubmission struct {
	UserID         string
	FullName       string
	DocumentType   string
	DocumentNumber string
	Country        string
}

// Principal is the authenticated caller of a service operation.
type Principal struct {
	UserID string
	Role   UserRole
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
