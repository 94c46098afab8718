package cmsmodel

import (
	"encoding/json"
	"time"

	"github.com/jrsteele09/go-cms-client/tenants"
)

type BillingType string

const (
	BillingMonthly BillingType = "monthly"
	BillingYearly  BillingType = "yearly"
)

type SubscriptionStatus struct {
	Status           tenants.SubscriptionStatus `json:"status"`
	Plan             *tenants.SubscriptionPlan  `json:"plan"`
	CurrentPeriodEnd *time.Time                 `json:"current_period_end,omitempty"`
	CancelAtPeriod   bool                       `json:"cancel_at_period_end"`
	TrialEndsAt      *time.Time                 `json:"trial_ends_at,omitempty"`
}

type Invoice struct {
	ID         string     `json:"id"`
	Number     string     `json:"number"`
	AmountDue  float64    `json:"amount_due"`
	AmountPaid float64    `json:"amount_paid"`
	Currency   string     `json:"currency"`
	Status     string     `json:"status"`
	PDFURL     string     `json:"invoice_pdf,omitempty"`
	CreatedAt  time.Time  `json:"created"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
}

type PaymentMethod struct {
	ID        string `json:"id"`
	Brand     string `json:"brand"`
	Last4     string `json:"last4"`
	ExpMonth  int    `json:"exp_month"`
	ExpYear   int    `json:"exp_year"`
	IsDefault bool   `json:"is_default"`
}

type ProrationCalculation struct {
	ProrationAmount float64   `json:"proration_amount"`
	NextInvoiceDate time.Time `json:"next_invoice_date"`
	Currency        string    `json:"currency"`
}

type CouponValidation struct {
	Valid          bool    `json:"valid"`
	DiscountAmount float64 `json:"discount_amount,omitempty"`
	DiscountType   string  `json:"discount_type,omitempty"`
	Message        string  `json:"message,omitempty"`
}

// BillingResult is the acknowledgement returned by subscription lifecycle actions.
type BillingResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// BillingInfo, analytics and alerts are passed through untyped.
type BillingInfo = json.RawMessage

type PageViewAnalytics struct {
	TotalViews     int               `json:"total_views"`
	UniqueVisitors int               `json:"unique_visitors"`
	ByDay          []DailyPageViews  `json:"by_day,omitempty"`
	TopPages       []json.RawMessage `json:"top_pages,omitempty"`
}

type DailyPageViews struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}
