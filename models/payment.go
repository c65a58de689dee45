package models

// Payment is a durable checkout record under payments/{method}/{paymentId}.
// The header is written without Items; line items live as children under
// items/{1..n}, keyed from 1 so the remote hierarchy reads in order.
// A payment is immutable once written.
type Payment struct {
	PaymentID     string     `json:"paymentId"`
	PaymentMethod string     `json:"paymentMethod"`
	UserID        string     `json:"userId"`
	UserName      string     `json:"userName"`
	Date          string     `json:"date"` // dd/MM/yyyy
	Hour          string     `json:"hour"` // HH:mm, same instant as Date
	Items         []CartItem `json:"items,omitempty"`
}

// Amount is the sum of line item totals.
func (p Payment) Amount() int {
	sum := 0
	for _, it := range p.Items {
		sum += it.Total
	}
	return sum
}
