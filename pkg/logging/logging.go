package logging

import (
	"encoding/json"
	"log"
	"time"
)

// Fields is one structured log line. Empty fields are dropped from the
// output.
type Fields struct {
	Service    string `json:"service"`
	OrderID    string `json:"order_id,omitempty"`
	EventID    string `json:"event_id,omitempty"`
	EventName  string `json:"event_name,omitempty"`
	Step       string `json:"step,omitempty"`
	Status     string `json:"status,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Log writes fields as a single JSON line with a UTC timestamp.
func Log(fields Fields) {
	payload := map[string]any{
		"service":   fields.Service,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}
	if fields.OrderID != "" {
		payload["order_id"] = fields.OrderID
	}
	if fields.EventID != "" {
		payload["event_id"] = fields.EventID
	}
	if fields.EventName != "" {
		payload["event_name"] = fields.EventName
	}
	if fields.Step != "" {
		payload["step"] = fields.Step
	}
	if fields.Status != "" {
		payload["status"] = fields.Status
	}
	if fields.DurationMS != 0 {
		payload["duration_ms"] = fields.DurationMS
	}
	if fields.Message != "" {
		payload["message"] = fields.Message
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("{\"service\":%q,\"status\":\"log_error\",\"error\":%q}", fields.Service, err.Error())
		return
	}
	log.Print(string(data))
}
