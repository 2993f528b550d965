package dto

import (
	"time"

	"github.com/SscSPs/trustbridge_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RegisterRequest creates an investor or entrepreneur account.
// Admin accounts are provisioned out of band.
type RegisterRequest struct {
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=8,max=72"`
	Name     string          `json:"name" binding:"required,max=120"`
	Role     domain.UserRole `json:"role" binding:"required,oneof=investor entrepreneur"`
}

// LoginRequest defines the credentials for password login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest defines the profile fields a user may change.
// Using pointers to differentiate between omitted fields and zero-value fields.
type UpdateProfileRequest struct {
	Name            *string          `json:"name" binding:"omitempty,min=1,max=120"`
	Bio             *string          `json:"bio" binding:"omitempty,max=2000"`
	Company         *string          `json:"company" binding:"omitempty,max=200"`
	Industry        *string          `json:"industry" binding:"omitempty,max=100"`
	Location        *string          `json:"location" binding:"omitempty,max=100"`
	InvestmentFocus *string          `json:"investmentFocus" binding:"omitempty,max=500"`
	Revenue         *decimal.Decimal `json:"revenue" binding:"omitempty,gte=0" swaggertype:"string"`
	GrowthRate      *decimal.Decimal `json:"growthRate" binding:"omitempty,gte=-100,lte=1000" swaggertype:"string"`
	ProfitMargin    *decimal.Decimal `json:"profitMargin" binding:"omitempty,gte=-100,lte=100" swaggertype:"string"`
}

// Apply copies the provided fields onto profile and returns the result.
func (r UpdateProfileRequest) Apply(profile domain.Profile) domain.Profile {
	if r.Bio != nil {
		profile.Bio = *r.Bio
	}
	if r.Company != nil {
		profile.Company = *r.Company
	}
	if r.Industry != nil {
		profile.Industry = *r.Industry
	}
	if r.Location != nil {
		profile.Location = *r.Location
	}
	if r.InvestmentFocus != nil {
		profile.InvestmentFocus = *r.InvestmentFocus
	}
	if r.Revenue != nil {
		profile.Revenue = r.Revenue
	}
	if r.GrowthRate != nil {
		profile.GrowthRate = r.GrowthRate
	}
	if r.ProfitMargin != nil {
		profile.ProfitMargin = r.ProfitMargin
	}
	return profile
}

// KYCSubmissionRequest carries the identity data sent for verification.
type KYCSubmissionRequest struct {
	FullName       string `json:"fullName" binding:"required,max=200"`
	DocumentType   string `json:"documentType" binding:"required,oneof=passport national_id drivers_license"`
	DocumentNumber string `json:"documentNumber" binding:"required,alphanum,min=4,max=40"`
	Country        string `json:"country" binding:"required,iso3166_1_alpha2"`
}

// AdminSetKYCRequest overrides the verification status of a user.
type AdminSetKYCRequest struct {
	Verified *bool `json:"verified" binding:"required"`
}

// AdminSetSuspendedRequest blocks or unblocks a user.
type AdminSetSuspendedRequest struct {
	Suspended *bool `json:"suspended" binding:"required"`
}

// ListUsersParams defines query parameters for listing users.
type ListUsersParams struct {
	Limit  int    `form:"limit,default=20" binding:"min=1,max=100"`
	Offset int    `form:"offset,default=0" binding:"min=0"`
	Role   string `form:"role" binding:"omitempty,oneof=investor entrepreneur admin"`
}

// UserResponse defines the data returned for a user.
type UserResponse struct {
	UserID             string             `json:"userID"`
	Email              string             `json:"email,omitempty"`
	Name               string             `json:"name"`
	Role               domain.UserRole    `json:"role"`
	KYCVerified        bool               `json:"kycVerified"`
	Suspended          bool               `json:"suspended"`
	Profile            domain.Profile     `json:"profile"`
	EstimatedValuation *ValuationResponse `json:"estimatedValuation,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
}

// ToUserResponse converts a domain.User to a UserResponse DTO.
func ToUserResponse(user *domain.User) UserResponse {
	res := UserResponse{
		UserID:      user.UserID,
		Email:       user.Email,
		Name:        user.Name,
		Role:        user.Role,
		KYCVerified: user.KYCVerified,
		Suspended:   user.Suspended,
		Profile:     user.Profile,
		CreatedAt:   user.CreatedAt,
	}
	if value, ok := user.EstimatedValuation(); ok {
		v := ToHeuristicValuationResponse(value)
		res.EstimatedValuation = &v
	}
	return res
}

// ToPublicUserResponse is ToUserResponse without the contact email.
func ToPublicUserResponse(user *domain.User) UserResponse {
	res := ToUserResponse(user)
	res.Email = ""
	return res
}

// ListUsersResponse wraps the list of users.
type ListUsersResponse struct {
	Users  []UserResponse `json:"users"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// ToListUserResponse converts a slice of domain.User to ListUsersResponse DTO
func ToListUserResponse(users []domain.User, params ListUsersParams) ListUsersResponse {
	userResponses := make([]UserResponse, len(users))
	for i := range users {
		userResponses[i] = ToUserResponse(&users[i])
	}
	return ListUsersResponse{
		Users:  userResponses,
		Limit:  params.Limit,
		Offset: params.Offset,
	}
}
