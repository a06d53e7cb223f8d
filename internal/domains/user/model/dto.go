package model

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"yamdb-backend/internal/access"
)

const (
	MaxUsernameLength = 150
	MaxEmailLength    = 254
	MaxNameLength     = 150
	ReservedUsername  = "me"
)

var UsernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// usernameRules is shared by every request that names a user.
func usernameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.RuneLength(1, MaxUsernameLength),
		validation.Match(UsernamePattern).Error("username may contain only letters, digits and @/./+/-/_"),
		validation.By(notReserved),
	}
}

func notReserved(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	}
	if strings.EqualFold(s, ReservedUsername) {
		return validation.NewError("validation_username_reserved", "username \"me\" is reserved")
	}
	return nil
}

func emailRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.RuneLength(1, MaxEmailLength),
		is.EmailFormat,
	}
}

// =====================================================
// AUTH
// =====================================================

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (r *SignupRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
}

func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, usernameRules()...),
		validation.Field(&r.Email, emailRules()...),
	)
}

type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type TokenRequest struct {
	Username         string `json:"username"`
	ConfirmationCode string `json:"confirmation_code"`
}

func (r *TokenRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.ConfirmationCode = strings.TrimSpace(r.ConfirmationCode)
}

func (r TokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, usernameRules()...),
		validation.Field(&r.ConfirmationCode, validation.Required, validation.RuneLength(1, 64)),
	)
}

type TokenResponse struct {
	Token string `json:"token"`
}

// =====================================================
// ACCOUNTS
// =====================================================

// CreateUserRequest is the admin create body. Role defaults to user.
type CreateUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

func (r *CreateUserRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	if strings.TrimSpace(r.Role) == "" {
		r.Role = string(access.RoleUser)
	}
}

func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, usernameRules()...),
		validation.Field(&r.Email, emailRules()...),
		validation.Field(&r.FirstName, validation.RuneLength(0, MaxNameLength)),
		validation.Field(&r.LastName, validation.RuneLength(0, MaxNameLength)),
		validation.Field(&r.Role, validation.By(roleRule)),
	)
}

// UpdateUserRequest is a partial update. Role is honoured only on the admin route.
type UpdateUserRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role"`
}

func (r *UpdateUserRequest) Normalize() {
	for _, field := range []*string{r.Username, r.Email, r.FirstName, r.LastName} {
		if field != nil {
			*field = strings.TrimSpace(*field)
		}
	}
}

func (r UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.NilOrNotEmpty, validation.RuneLength(1, MaxUsernameLength),
			validation.Match(UsernamePattern), validation.By(notReserved)),
		validation.Field(&r.Email, validation.NilOrNotEmpty, validation.RuneLength(1, MaxEmailLength), is.EmailFormat),
		validation.Field(&r.FirstName, validation.RuneLength(0, MaxNameLength)),
		validation.Field(&r.LastName, validation.RuneLength(0, MaxNameLength)),
		validation.Field(&r.Role, validation.By(roleRule)),
	)
}

func roleRule(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	}
	if _, ok := access.ParseRole(s); !ok {
		return validation.NewError("validation_role_invalid", ErrInvalidRole.Message)
	}
	return nil
}

type ListQuery struct {
	Search string
	Page   int
	Limit  int
}

func (q ListQuery) Offset() int { return (q.Page - 1) * q.Limit }

type UserResponse struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

func ToResponse(u *User) UserResponse {
	return UserResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      string(u.Role),
	}
}
