package models

import "gorm.io/datatypes"

// Contact is the part of an account shown next to listings and inquiries.
// It is loaded from the users table and never written through.
type Contact struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone"`
}

func (Contact) TableName() string { return "users" }

// ListingSummary is the listing an inquiry refers to, as its author sees it.
type ListingSummary struct {
	ID       string                      `json:"id"`
	Title    string                      `json:"title"`
	Location string                      `json:"location"`
	County   string                      `json:"county"`
	Price    float64                     `json:"price"`
	Images   datatypes.JSONSlice[string] `json:"images"`
}

func (ListingSummary) TableName() string { return "properties" }
