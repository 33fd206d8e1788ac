package dto

import (
	"time"

	"github.com/huertacl/catalog-service/internal/domain"
)

// RegisterRequest payload for self-registration.
type RegisterRequest struct {
	FirstName string `json:"nombre" validate:"required,max=100"`
	LastName  string `json:"apellido" validate:"required,max=100"`
	BirthDate string `json:"fechaNacimiento" validate:"required,datetime=2006-01-02,pastdate"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"contrasena" validate:"required,maxbytes=72"`
	Phone     string `json:"telefono" validate:"max=30"`
	Commune   string `json:"comuna" validate:"max=100"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"contrasena"`
}

// UpdateUserRequest carries optional profile changes.
type UpdateUserRequest struct {
	FirstName *string `json:"nombre" validate:"omitempty,max=100"`
	LastName  *string `json:"apellido" validate:"omitempty,max=100"`
	BirthDate *string `json:"fechaNacimiento" validate:"omitempty,datetime=2006-01-02,pastdate"`
	Email     *string `json:"email" validate:"omitempty,email,max=255"`
	Password  *string `json:"contrasena" validate:"omitempty,maxbytes=72"`
	Phone     *string `json:"telefono" validate:"omitempty,max=30"`
	Commune   *string `json:"comuna" validate:"omitempty,max=100"`
	Role      *string `json:"role" validate:"omitempty"`
}

// UserResponse is the public view of a user. The password hash is never exposed.
type UserResponse struct {
	ID        int64       `json:"id"`
	FirstName string      `json:"nombre"`
	LastName  string      `json:"apellido"`
	BirthDate string      `json:"fechaNacimiento,omitempty"`
	Email     string      `json:"email"`
	Phone     string      `json:"telefono"`
	Commune   string      `json:"comuna"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"usuario"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Commune:   u.Commune,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.BirthDate.Year() > 1 {
		resp.BirthDate = u.BirthDate.Format(DateLayout)
	}
	return resp
}

// NewUserResponses maps a list of users.
func NewUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(raw string) (time.Time, error) {
	return time.Parse(DateLayout, raw)
}
