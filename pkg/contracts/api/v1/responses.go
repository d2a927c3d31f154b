package api

import "time"

// Response wraps every successful JSON payload.
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// Success wraps data in the success envelope.
func Success(data interface{}) Response {
	return Response{Status: "success", Data: data}
}

// DatasetMeta describes the dataset a response was computed from.
type DatasetMeta struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Strategy string    `json:"strategy"`
	LoadedAt time.Time `json:"loaded_at"`
	Rows     int       `json:"rows"`
}

// ItemsResponse is the body of GET /api/inventory/items.
type ItemsResponse struct {
	Dataset  DatasetMeta `json:"dataset"`
	Columns  []string    `json:"columns"`
	Total    int         `json:"total"`
	Returned int         `json:"returned"`
	Items    interface{} `json:"items"`
}

// HealthResponse is the body of the health endpoints.
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
	Runtime   interface{}       `json:"runtime,omitempty"`
}
