package model

import (
	"errors"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

var (
	passwordCharset = regexp.MustCompile(`^[A-Za-z\d$@!%*?&_]{8,16}$`)
	hasLower        = regexp.MustCompile(`[a-z]`)
	hasUpper        = regexp.MustCompile(`[A-Z]`)
	hasDigit        = regexp.MustCompile(`\d`)
	hasSpecial      = regexp.MustCompile(`[$@!%*?&_]`)
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Username, validation.Required, validation.Length(3, 64)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, validation.Required, validation.By(strongPassword)),
	)
}

// Normalize trims the identity fields and lower-cases the email.
func (r RegisterRequest) Normalize() RegisterRequest {
	return RegisterRequest{
		Name:     strings.TrimSpace(r.Name),
		Username: strings.TrimSpace(r.Username),
		Email:    strings.ToLower(strings.TrimSpace(r.Email)),
		Password: r.Password,
	}
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 64)),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 72)),
	)
}

// strongPassword requires 8-16 characters from the allowed set with at least
// one lower-case letter, one upper-case letter, one digit and one special character.
func strongPassword(value interface{}) error {
	s, _ := value.(string)
	if !passwordCharset.MatchString(s) ||
		!hasLower.MatchString(s) ||
		!hasUpper.MatchString(s) ||
		!hasDigit.MatchString(s) ||
		!hasSpecial.MatchString(s) {
		return errors.New("must be 8-16 characters with an upper-case letter, a lower-case letter, a digit and one of $@!%*?&_")
	}
	return nil
}

// User is a stored account, including the password hash.
type User struct {
	ID           string
	Name         string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Account is the public view of a User.
type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) Account() *Account {
	return &Account{
		ID:        u.ID,
		Name:      u.Name,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// Identity holds the claims carried by an access token.
type Identity struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	Identity    Identity
}
