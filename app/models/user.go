// Package models defines user tier and usage tracking fields.
package models

import "time"

type Tier string

const (
	TierFree Tier = "free"
	TierPro  Tier = "pro"
)

type User struct {
	ID                   string     `json:"id"`
	Email                string     `json:"email"`
	PasswordHash         string     `json:"-"`
	SubscriptionTier     Tier       `json:"subscriptionTier"`
	MonthlyAnalysisCount int        `json:"monthlyAnalysisCount"`
	LastAnalysisDate     *time.Time `json:"lastAnalysisDate,omitempty"`
	StripeCustomerID     string     `json:"-"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}
