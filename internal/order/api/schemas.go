package api

// Request and response shapes. Field names mirror the existing wire
// contract, including "unityPrice" on items.

type ItemRequest struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	UnityPrice  string `json:"unityPrice"`
}

type CreateOrderRequest struct {
	CustomerID      string        `json:"customerId"`
	ShippingAddress string        `json:"shippingAddress"`
	Items           []ItemRequest `json:"items"`
}

type CreateOrderResponse struct {
	OrderID string `json:"orderId"`
}

type ItemResponse struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	UnityPrice  string `json:"unityPrice"`
}

type OrderResponse struct {
	ID              string         `json:"id"`
	CustomerID      string         `json:"customerId"`
	ShippingAddress string         `json:"shippingAddress"`
	Status          string         `json:"status"`
	CreatedAt       string         `json:"createdAt"`
	UpdatedAt       string         `json:"updatedAt"`
	Items           []ItemResponse `json:"items"`
}

type UpdateOrderStatusRequest struct {
	NewStatus string `json:"newStatus"`
	ChangedBy string `json:"changedBy,omitempty"`
	Reason    string `json:"reason,omitempty"`
}
