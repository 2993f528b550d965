package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a row of the users table.
type User struct {
	UserID          string              `db:"user_id"`
	Email           string              `db:"email"`
	Name            string              `db:"name"`
	Role            string              `db:"role"`
	PasswordHash    string              `db:"password_hash"`
	KYCVerified     bool                `db:"kyc_verified"`
	KYCVerifiedAt   *time.Time          `db:"kyc_verified_at"`
	Suspended       bool                `db:"suspended"`
	Bio             string              `db:"bio"`
	Company         string              `db:"company"`
	Industry        string              `db:"industry"`
	Location        string              `db:"location"`
	InvestmentFocus string              `db:"investment_focus"`
	Revenue         decimal.NullDecimal `db:"revenue"`
	GrowthRate      decimal.NullDecimal `db:"growth_rate"`
	ProfitMargin    decimal.NullDecimal `db:"profit_margin"`
	AuditFields
	DeletedAt *time.Time `db:"deleted_at"`
}
