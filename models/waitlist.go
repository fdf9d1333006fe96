package models

import "time"

// WaitlistEntry is a persisted waitlist row. Email is unique across all entries.
type WaitlistEntry struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Company       string    `json:"company"`
	Role          *string   `json:"role"`
	CloudProvider *string   `json:"cloud_provider"`
	MonthlySpend  *string   `json:"monthly_spend"`
	CreatedAt     time.Time `json:"created_at"`
}
