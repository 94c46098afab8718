package cmsmodel

import "time"

type Subscriber struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	SubscribedAt      time.Time `json:"subscribed_at"`
	IsActive          bool      `json:"is_active"`
	ConfirmationToken *string   `json:"confirmation_token"`
}

type SubscribeInput struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type SubscriberUpdate struct {
	IsActive  *bool   `json:"is_active,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

type SubscriberStats struct {
	Total       int `json:"total"`
	Active      int `json:"active"`
	Unconfirmed int `json:"unconfirmed"`
	NewThisWeek int `json:"new_this_week"`
}

// ImportResult summarises a subscriber CSV import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignScheduled CampaignStatus = "scheduled"
	CampaignSent      CampaignStatus = "sent"
)

type Campaign struct {
	ID          string         `json:"id"`
	Subject     string         `json:"subject"`
	Content     string         `json:"content"`
	Status      CampaignStatus `json:"status"`
	ScheduledAt *time.Time     `json:"scheduled_at,omitempty"`
	SentAt      *time.Time     `json:"sent_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

type CampaignInput struct {
	Subject string `json:"subject"`
	Content string `json:"content"`
}

type CampaignStats struct {
	Recipients int     `json:"recipients"`
	Opens      int     `json:"opens"`
	Clicks     int     `json:"clicks"`
	OpenRate   float64 `json:"open_rate"`
	ClickRate  float64 `json:"click_rate"`
}
