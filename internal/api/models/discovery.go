package models

import "time"

// DiscoveryResponse describes the currently known service endpoint.
type DiscoveryResponse struct {
	Hostname   string    `json:"hostname"`
	Port       uint16    `json:"port"`
	Path       string    `json:"path"`
	APIVersion string    `json:"api_version,omitempty"`
	IPv4       string    `json:"ipv4"`
	URL        string    `json:"url"`
	UpdatedAt  time.Time `json:"updated_at"`
}
