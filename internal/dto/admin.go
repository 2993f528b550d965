package dto

// PlatformStatsParams defines query parameters of the admin dashboard.
type PlatformStatsParams struct {
	Months int `form:"months,default=12" binding:"min=1,max=60"`
}
