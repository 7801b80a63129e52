package domain

import "time"

// Role enumerates the actor roles known to the access policy.
type Role string

const (
	RoleAdmin           Role = "ADMIN"
	RoleServicePerson   Role = "SERVICE_PERSON"
	RoleCustomerOwner   Role = "CUSTOMER_OWNER"
	RoleCustomerContact Role = "CUSTOMER_CONTACT"
)

// User is any authenticated person: admins, field-service personnel and
// customer-side accounts. Customer-side users carry a CustomerID.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CustomerID   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor is the pre-authenticated identity supplied to the workflow engine.
// The engine trusts it without re-verifying credentials.
type Actor struct {
	ID         string
	Role       Role
	CustomerID *string
}

// ActorFromUser derives the workflow identity from a loaded user.
func ActorFromUser(u *User) Actor {
	return Actor{ID: u.ID, Role: u.Role, CustomerID: u.CustomerID}
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsCustomerSide reports whether the actor belongs to a customer account.
func (a Actor) IsCustomerSide() bool {
	return a.Role == RoleCustomerOwner || a.Role == RoleCustomerContact
}
