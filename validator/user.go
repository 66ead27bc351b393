package validator

import (
	"context"

	"github.com/JohnBravos/bookhub-manager/model"
	"github.com/JohnBravos/bookhub-manager/store"
	"github.com/JohnBravos/bookhub-manager/util"
)

func ValidateRegisterRequest(ctx context.Context, s *store.Store, req *model.UserRegisterRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrValidation, "request is nil")
	}
	if err := ValidateStruct(req); err != nil {
		return err
	}
	if !util.UIDMatcher.MatchString(req.Username) {
		return model.NewDomainError(model.ErrValidation, "username contains invalid characters")
	}
	if existing, _ := s.GetUser(ctx, &model.FindUser{Username: &req.Username}); existing != nil {
		return model.NewDomainError(model.ErrConflict, "username already exists")
	}
	if existing, _ := s.GetUser(ctx, &model.FindUser{Email: &req.Email}); existing != nil {
		return model.NewDomainError(model.ErrConflict, "email already exists")
	}
	return nil
}
