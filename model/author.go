package model

type Author struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Biography string `json:"biography,omitempty"`
}

type FindAuthor struct {
	ID     *int64
	Search *string

	Limit  *int
	Offset *int
}

type AuthorCreateRequest struct {
	FirstName string `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string `json:"last_name" validate:"required,min=1,max=100"`
	Biography string `json:"biography" validate:"max=2000"`
}

type AuthorUpdateRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	Biography *string `json:"biography" validate:"omitempty,max=2000"`
}
