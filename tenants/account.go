package tenants

import (
	"time"

	"github.com/jrsteele09/go-cms-client/users"
)

type SubscriptionStatus string

const (
	StatusTrialing SubscriptionStatus = "trialing"
	StatusActive   SubscriptionStatus = "active"
	StatusPastDue  SubscriptionStatus = "past_due"
	StatusCanceled SubscriptionStatus = "canceled"
	StatusUnpaid   SubscriptionStatus = "unpaid"
)

// Account is an isolated customer workspace. All content and users are scoped to exactly one.
type Account struct {
	ID                  string             `json:"id"`
	Name                string             `json:"name"`
	Slug                string             `json:"slug"`
	Description         string             `json:"description,omitempty"`
	Owner               *users.User        `json:"owner,omitempty"`
	SubscriptionPlan    *SubscriptionPlan  `json:"subscription_plan,omitempty"`
	SubscriptionStatus  SubscriptionStatus `json:"subscription_status,omitempty"`
	CurrentArticleCount int                `json:"current_article_count"`
	CurrentStorageMB    float64            `json:"current_storage_mb"`
	IsActive            bool               `json:"is_active"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

type SubscriptionPlan struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	Slug                 string         `json:"slug"`
	Description          string         `json:"description,omitempty"`
	MonthlyPrice         float64        `json:"monthly_price"`
	YearlyPrice          float64        `json:"yearly_price"`
	MaxUsers             int            `json:"max_users"`
	MaxArticles          int            `json:"max_articles"`
	MaxStorageMB         int            `json:"max_storage_mb"`
	Features             map[string]any `json:"features,omitempty"`
	StripePriceIDMonthly string         `json:"stripe_price_id_monthly,omitempty"`
	StripePriceIDYearly  string         `json:"stripe_price_id_yearly,omitempty"`
	IsActive             bool           `json:"is_active"`
}

// AccountUser is one user's membership and role within an account.
type AccountUser struct {
	ID       string         `json:"id"`
	Account  Account        `json:"account"`
	User     users.User     `json:"user"`
	Role     users.RoleType `json:"role"`
	IsActive bool           `json:"is_active"`
	JoinedAt time.Time      `json:"joined_at"`
}

// AccountInput creates an account. Slug is derived server-side when empty.
type AccountInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
}

// AccountUpdate is a partial account change.
type AccountUpdate struct {
	Name        *string `json:"name,omitempty"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Invitation adds a user to the current account.
type Invitation struct {
	Email string         `json:"email"`
	Role  users.RoleType `json:"role"`
}
