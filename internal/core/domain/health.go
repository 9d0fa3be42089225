package domain

type HealthStatus struct {
	Status     string            `json:"status"`
	Message    string            `json:"message"`
	Components map[string]string `json:"components"`
	Timestamp  int64             `json:"timestamp"`
}
