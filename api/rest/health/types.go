package health

import "context"

// anything whose reachability the health check reports
type Pinger interface {
	Ping(ctx context.Context) error
}

// Response represents the health check response
type Response struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Version  string `json:"version,omitempty"`
	Database string `json:"database"`
}

type PingResponse struct {
	Message string `json:"message"`
}
