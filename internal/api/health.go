package api

// HealthStatus is the data payload of the health check.
type HealthStatus struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}
