package domain

import "fmt"

// Status is the lifecycle state of an order.
type Status string

const (
	StatusCreated    Status = "CREATED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// transitions is the single source of truth for the status machine.
// Both the Order aggregate and the standalone EventManager validate
// against this table.
var transitions = map[Status][]Status{
	StatusCreated:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether the table allows moving from one status
// to another. Terminal-state precedence is handled by the callers.
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is accepted from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s Status) String() string { return string(s) }

// ParseStatus converts external input into a Status.
func ParseStatus(v string) (Status, error) {
	switch Status(v) {
	case StatusCreated, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return Status(v), nil
	}
	return "", fmt.Errorf("unknown order status %q", v)
}
