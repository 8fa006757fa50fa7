package model

import "time"

// User is the owner of every journal entity. All trades, check-ins,
// behaviors and patterns are scoped to exactly one user.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserName string `gorm:"size:60;uniqueIndex;not null" json:"user_name"`
	Email    string `gorm:"size:255;uniqueIndex" json:"email"`
	Password string `gorm:"size:255" json:"-"`

	FirstName string `gorm:"size:100" json:"first_name"`
	LastName  string `gorm:"size:100" json:"last_name"`

	// Timezone is the IANA zone the dashboard renders timestamps in.
	// Aggregation stays UTC; this is display only.
	Timezone     string `gorm:"size:64" json:"timezone,omitempty"`
	BaseCurrency string `gorm:"size:3" json:"base_currency,omitempty"`
	Broker       string `gorm:"size:100" json:"broker,omitempty"`

	// APIToken is the opaque token presented on the X-Api-Token header.
	APIToken string `gorm:"size:64;index" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse is the public projection of a user, without credentials.
type UserResponse struct {
	ID           uint   `json:"id"`
	UserName     string `json:"user_name"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Timezone     string `json:"timezone,omitempty"`
	BaseCurrency string `json:"base_currency,omitempty"`
	Broker       string `json:"broker,omitempty"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:           u.ID,
		UserName:     u.UserName,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Timezone:     u.Timezone,
		BaseCurrency: u.BaseCurrency,
		Broker:       u.Broker,
	}
}

// UpdateUserPayload carries optional profile fields for partial updates.
type UpdateUserPayload struct {
	Email        *string `json:"email,omitempty"`
	FirstName    *string `json:"first_name,omitempty"`
	LastName     *string `json:"last_name,omitempty"`
	Timezone     *string `json:"timezone,omitempty"`
	BaseCurrency *string `json:"base_currency,omitempty"`
	Broker       *string `json:"broker,omitempty"`
}

// ChangePasswordPayload carries a password change request.
type ChangePasswordPayload struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
