package model

type Book struct {
	ID              int64  `json:"id"`
	ISBN            string `json:"isbn,omitempty"`
	Title           string `json:"title"`
	Publisher       string `json:"publisher"`
	PublicationYear int    `json:"publication_year"`
	Genre           string `json:"genre"`
	Description     string `json:"description,omitempty"`

	// AvailableCopies counts free copies. TotalCopies minus AvailableCopies
	// must always equal the number of ACTIVE loans plus READY reservations
	// on this book.
	TotalCopies     int `json:"total_copies"`
	AvailableCopies int `json:"available_copies"`

	Authors []*Author `json:"authors,omitempty"`

	CreatedTs int64 `json:"created_ts"`
	UpdatedTs int64 `json:"updated_ts"`
}

type FindBook struct {
	ID     *int64
	ISBN   *string
	Genre  *string
	Search *string // matches title, publisher or author name

	// OnlyAvailable restricts to books with at least one free copy.
	OnlyAvailable bool

	Limit  *int
	Offset *int
}

type BookCreateRequest struct {
	ISBN            string  `json:"isbn" validate:"omitempty,min=10,max=20"`
	Title           string  `json:"title" validate:"required"`
	Publisher       string  `json:"publisher" validate:"required"`
	PublicationYear int     `json:"publication_year" validate:"required,gte=1400,lte=2100"`
	Genre           string  `json:"genre" validate:"required"`
	Description     string  `json:"description" validate:"max=1000"`
	TotalCopies     int     `json:"total_copies" validate:"gte=0"`
	AuthorIDs       []int64 `json:"author_ids"`
}

type BookUpdateRequest struct {
	ISBN            *string  `json:"isbn" validate:"omitempty,min=10,max=20"`
	Title           *string  `json:"title"`
	Publisher       *string  `json:"publisher"`
	PublicationYear *int     `json:"publication_year" validate:"omitempty,gte=1400,lte=2100"`
	Genre           *string  `json:"genre"`
	Description     *string  `json:"description" validate:"omitempty,max=1000"`
	TotalCopies     *int     `json:"total_copies" validate:"omitempty,gte=0"`
	AuthorIDs       []int64  `json:"author_ids"`
}
