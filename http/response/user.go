package response

import (
	"time"

	"github.com/JohnBravos/bookhub-manager/model"
)

// UserResponse strips the password hash before a user leaves the server.
func UserResponse(user *model.User) *model.User {
	return &model.User{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		PhoneNumber: user.PhoneNumber,
		Role:        user.Role,
		Status:      user.Status,
		CreatedTs:   user.CreatedTs,
		UpdatedTs:   user.UpdatedTs,
	}
}

func UserListResponse(users []*model.User) []*model.User {
	response := make([]*model.User, 0, len(users))
	for _, user := range users {
		response = append(response, UserResponse(user))
	}
	return response
}

// LoanResponse reports the derived status: an ACTIVE loan past its due date
// shows as OVERDUE without any stored transition.
func LoanResponse(loan *model.Loan, now time.Time) *model.Loan {
	out := *loan
	out.Status = loan.EffectiveStatus(now)
	return &out
}

func LoanListResponse(loans []*model.Loan, now time.Time) []*model.Loan {
	response := make([]*model.Loan, 0, len(loans))
	for _, loan := range loans {
		response = append(response, LoanResponse(loan, now))
	}
	return response
}

// ReservationResponse decorates a live reservation with the expected
// available date derived from the book's earliest active due date.
func ReservationResponse(reservation *model.Reservation, expectedAvailable int64) *model.Reservation {
	out := *reservation
	if !reservation.Status.IsTerminal() {
		out.ExpectedAvailableDate = expectedAvailable
	}
	return &out
}
