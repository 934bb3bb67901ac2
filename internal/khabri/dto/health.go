package dto

// HealthResponse reports liveness and which pipeline stages are wired.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Agents    map[string]string `json:"agents"`
}

// RootResponse is the service banner served at /.
type RootResponse struct {
	Message   string            `json:"message"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}
