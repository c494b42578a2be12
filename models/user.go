package models

import (
	"golang.org/x/crypto/bcrypt"
)

// User roles. USER is the default shop account; BO manages the catalog,
// ADMIN manages everything.
const (
	RoleUser  = "USER"
	RoleBO    = "BO"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" gorm:"unique;not null"`
	Password  []byte `json:"-" gorm:"not null"`
	Role      string `json:"role" gorm:"size:16;not null;default:USER"`

	// ClientID links the user to its commercial account; NetworkID is the
	// network context used for pricing and draft quotations.
	ClientID  *uint `json:"client_id" gorm:"index"`
	NetworkID *uint `json:"network_id" gorm:"index"`

	Client  *Client  `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Network *Network `json:"network,omitempty" gorm:"foreignKey:NetworkID"`
}

func (user *User) SetPassword(password string) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(password), 12)
	user.Password = hashedPassword
}

func (user *User) ComparePassword(password string) error {
	return bcrypt.CompareHashAndPassword(user.Password, []byte(password))
}
