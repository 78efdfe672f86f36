// Package partners holds the supplier and customer directory referenced by
// purchase and sale transactions.
package partners

import "time"

// Kind discriminates directory entries.
type Kind string

const (
	KindSupplier Kind = "SUPPLIER"
	KindCustomer Kind = "CUSTOMER"
)

// Partner is a supplier or customer.
type Partner struct {
	ID        int64     `json:"id"`
	Kind      Kind      `json:"kind"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PartnerInput carries create fields.
type PartnerInput struct {
	Name  string  `json:"name" validate:"required"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone *string `json:"phone,omitempty"`
}
