package entities

import "time"

type User struct {
	ID        uint64    `json:"id" db:"id"`
	FullName  string    `json:"fullName" db:"full_name"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type Customer struct {
	ID          uint64    `json:"id" db:"id"`
	FullName    string    `json:"fullName" db:"full_name"`
	PhoneNumber string    `json:"phoneNumber" db:"phone_number"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
