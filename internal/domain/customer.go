package domain

import "time"

// Customer is the account tickets are raised against.
type Customer struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Asset is a serviceable piece of customer equipment.
type Asset struct {
	ID           string
	CustomerID   string
	Name         string
	Model        string
	SerialNumber *string
	CreatedAt    time.Time
}
