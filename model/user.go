package model

// Role is the type of a role.
type Role string

const (
	// RoleMember is the MEMBER role.
	RoleMember Role = "MEMBER"
	// RoleLibrarian is the LIBRARIAN role.
	RoleLibrarian Role = "LIBRARIAN"
	// RoleAdmin is the ADMIN role.
	RoleAdmin Role = "ADMIN"
)

func (r Role) String() string {
	switch r {
	case RoleMember:
		return "MEMBER"
	case RoleLibrarian:
		return "LIBRARIAN"
	case RoleAdmin:
		return "ADMIN"
	}
	return "MEMBER"
}

// IsStaff reports whether the role may act on other users' loans and
// reservations.
func (r Role) IsStaff() bool {
	return r == RoleLibrarian || r == RoleAdmin
}

// UserStatus is the account status of a user.
type UserStatus string

const (
	UserActive    UserStatus = "ACTIVE"
	UserInactive  UserStatus = "INACTIVE"
	UserSuspended UserStatus = "SUSPENDED"
)

type User struct {
	ID int64 `json:"id"`

	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	PhoneNumber  string     `json:"phone_number"`
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`

	CreatedTs int64 `json:"created_ts"`
	UpdatedTs int64 `json:"updated_ts"`
}

// Actor is the verified caller identity passed to every engine operation.
// Handlers build it from the authenticated token, never from ambient state.
type Actor struct {
	UserID int64
	Role   Role
}

type FindUser struct {
	ID       *int64
	Username *string
	Email    *string
	Role     *Role
	Status   *UserStatus

	Limit  *int
	Offset *int
}

type UserRegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	FirstName   string `json:"first_name" validate:"required,min=2,max=100"`
	LastName    string `json:"last_name" validate:"required,min=2,max=100"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,min=7,max=20"`
}

type UserSigninRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserUpdateRequest struct {
	Email       *string     `json:"email" validate:"omitempty,email"`
	FirstName   *string     `json:"first_name" validate:"omitempty,min=2,max=100"`
	LastName    *string     `json:"last_name" validate:"omitempty,min=2,max=100"`
	PhoneNumber *string     `json:"phone_number" validate:"omitempty,min=7,max=20"`
	Role        *Role       `json:"role" validate:"omitempty,oneof=MEMBER LIBRARIAN ADMIN"`
	Status      *UserStatus `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE SUSPENDED"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// UserStatistics is the per-user activity summary shown on dashboards.
type UserStatistics struct {
	ActiveLoans       int64 `json:"active_loans"`
	TotalBorrowed     int64 `json:"total_borrowed"`
	TotalReservations int64 `json:"total_reservations"`
	OverdueCount      int64 `json:"overdue_count"`
}
