package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/JohnBravos/bookhub-manager/api/auth"
	"github.com/JohnBravos/bookhub-manager/config"
	"github.com/JohnBravos/bookhub-manager/http/response"
	"github.com/JohnBravos/bookhub-manager/log"
	"github.com/JohnBravos/bookhub-manager/model"
	"github.com/JohnBravos/bookhub-manager/validator"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	register := &model.UserRegisterRequest{}
	if err := json.NewDecoder(r.Body).Decode(register); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	if err := validator.ValidateRegisterRequest(r.Context(), h.store, register); err != nil {
		log.Debug("Failed to validate register request", zap.Error(err))
		response.DomainError(w, r, err)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(register.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to generate password hash", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	// The first registered account becomes the admin, everyone after is a member.
	newRole := model.RoleMember
	count, err := h.store.CountUsers(r.Context(), &model.FindUser{})
	if err != nil {
		log.Error("Failed to count users", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	if count == 0 {
		newRole = model.RoleAdmin
	}

	user := &model.User{
		Username:     register.Username,
		Email:        register.Email,
		PasswordHash: string(passwordHash),
		FirstName:    register.FirstName,
		LastName:     register.LastName,
		PhoneNumber:  register.PhoneNumber,
		Role:         newRole,
		Status:       model.UserActive,
	}

	newUser, err := h.store.CreateUser(r.Context(), user)
	if err != nil {
		log.Error("Failed to create user", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}

	response.Created(w, r, response.UserResponse(newUser))
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	signin := &model.UserSigninRequest{}
	if err := json.NewDecoder(r.Body).Decode(signin); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		response.BadRequest(w, r, err)
		return
	}

	user, err := h.store.GetUser(r.Context(), &model.FindUser{Username: &signin.Username})
	if err != nil {
		log.Error("Failed to get user", zap.Error(err))
		response.ServerError(w, r, err)
		return
	}
	if user == nil {
		response.Unauthorized(w, r)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(signin.Password)); err != nil {
		log.Debug("Failed to compare password", zap.String("username", signin.Username))
		response.Unauthorized(w, r)
		return
	}
	if user.Status != model.UserActive {
		log.Debug("Sign in rejected for inactive user", zap.String("username", signin.Username))
		response.Unauthorized(w, r)
		return
	}

	expireTime := time.Now().Add(auth.AccessTokenDuration)
	accessToken, err := auth.GenerateAccessToken(user.Username, user.ID, user.Role, expireTime, []byte(config.Opts.JWTSecret))
	if err != nil {
		log.Error("Failed to generate access token", zap.Error(err))
		response.ServerError(w, r, errors.Wrap(err, "failed to generate access token"))
		return
	}

	cookie := buildAccessTokenCookie(accessToken, expireTime, r.Header.Get("Origin"))
	w.Header().Set("Set-Cookie", cookie)

	response.OK(w, r, map[string]any{
		"token": accessToken,
		"user":  response.UserResponse(user),
	})
}

func buildAccessTokenCookie(accessToken string, expireTime time.Time, origin string) string {
	attrs := []string{
		fmt.Sprintf("%s=%s", auth.AccessTokenCookieName, accessToken),
		"Path=/",
		"HttpOnly",
	}
	if expireTime.IsZero() {
		attrs = append(attrs, "Expires=Thu, 01 Jan 1970 00:00:00 GMT")
	} else {
		attrs = append(attrs, "Expires="+expireTime.Format(time.RFC1123))
	}

	if strings.HasPrefix(origin, "https://") {
		attrs = append(attrs, "Secure", "SameSite=None")
	} else {
		attrs = append(attrs, "SameSite=Lax")
	}
	return strings.Join(attrs, "; ")
}
