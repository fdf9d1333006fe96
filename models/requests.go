package models

import "encoding/json"

type AdminLoginRequest struct {
	Password string `json:"password"`
}

type WaitlistRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Company       string `json:"company"`
	Role          string `json:"role"`
	CloudProvider string `json:"cloudProvider"`
	MonthlySpend  string `json:"monthlySpend"`
}

// CloudConnectionRequest keeps credentials raw so they can be decoded against the
// declared provider.
type CloudConnectionRequest struct {
	Provider       string          `json:"provider"`
	Credentials    json.RawMessage `json:"credentials"`
	UserEmail      string          `json:"userEmail"`
	ConnectionName string          `json:"connectionName"`
}
