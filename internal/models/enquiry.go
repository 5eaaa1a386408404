package models

import "time"

// Enquiry is a customer request about one cake.
type Enquiry struct {
	ID        string    `json:"id"`
	CakeID    string    `json:"cake_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// EnquiryRow is an enquiry joined with the name and category of its cake.
// CakeName and CakeCategory are empty when the join was not requested.
type EnquiryRow struct {
	Enquiry
	CakeName     string   `json:"cake_name,omitempty"`
	CakeCategory Category `json:"cake_category,omitempty"`
}
