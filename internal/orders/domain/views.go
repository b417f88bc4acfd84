package domain

import "time"

// Summary is the admin listing row: an order joined with its customer and
// product names.
type Summary struct {
	ID            int64       `json:"id"`
	Quantity      int         `json:"quantity"`
	TotalPrice    int64       `json:"total_price"`
	Status        OrderStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	CustomerName  string      `json:"customer_name"`
	CustomerEmail string      `json:"customer_email"`
	ProductName   string      `json:"product_name"`
}

// Detail backs the order-status page: the order joined with customer,
// product and the most recent payment attempt, if any.
type Detail struct {
	ID                 int64       `json:"id"`
	Quantity           int         `json:"quantity"`
	TotalPrice         int64       `json:"total_price"`
	Status             OrderStatus `json:"order_status"`
	CreatedAt          time.Time   `json:"created_at"`
	CustomerName       string      `json:"customer_name"`
	CustomerEmail      string      `json:"customer_email"`
	CustomerPhone      string      `json:"customer_phone"`
	CustomerAddress    string      `json:"customer_address"`
	ProductName        string      `json:"product_name"`
	ProductDescription string      `json:"product_description"`
	ProductPrice       int64       `json:"product_price"`
	PaymentStatus      string      `json:"payment_status,omitempty"`
	PaymentMethod      string      `json:"payment_method,omitempty"`
	TransactionRef     string      `json:"transaction_ref,omitempty"`
}

// Stats aggregates the admin dashboard numbers. GrowthRate compares this
// month's order count to last month's, in whole percent.
type Stats struct {
	TotalOrders     int   `json:"total_orders"`
	TotalRevenue    int64 `json:"total_revenue"`
	TotalCustomers  int   `json:"total_customers"`
	PendingOrders   int   `json:"pending_orders"`
	ConfirmedOrders int   `json:"confirmed_orders"`
	ShippedOrders   int   `json:"shipped_orders"`
	DeliveredOrders int   `json:"delivered_orders"`
	CancelledOrders int   `json:"cancelled_orders"`
	GrowthRate      int   `json:"growth_rate"`
}
