package models

import "time"

// InstanceInfo represents Aura instance information as returned by the
// instance API. The struct is refreshed in place by status polls.
type InstanceInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Status        string `json:"status"`
	ConnectionURL string `json:"connection_url"`
	Memory        string `json:"memory"`
	Storage       string `json:"storage"`
	Region        string `json:"region"`
	Type          string `json:"type"`
	TenantID      string `json:"tenant_id"`
	CloudProvider string `json:"cloud_provider"`

	// InfoUpdated is the local time of the most recent refresh.
	// Not part of the API payload.
	InfoUpdated time.Time `json:"-"`
}

// InstanceSummary represents one row of the instance list endpoint,
// which returns fewer fields than the per-instance endpoint.
type InstanceSummary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	TenantID      string `json:"tenant_id"`
	CloudProvider string `json:"cloud_provider"`
}
