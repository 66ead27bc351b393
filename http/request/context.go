package request

import (
	"net/http"

	"github.com/JohnBravos/bookhub-manager/model"
)

type ContextKey int

const (
	ClientIPContextKey ContextKey = iota
	UserIDContextKey
	UserNameContextKey
	UserRoleContextKey
)

func getContextStringValue(r *http.Request, key ContextKey) string {
	if v := r.Context().Value(key); v != nil {
		if value, valid := v.(string); valid {
			return value
		}
	}
	return ""
}

// ClientIP returns the client IP address stored in the context.
func ClientIP(r *http.Request) string {
	return getContextStringValue(r, ClientIPContextKey)
}

func GetUserID(r *http.Request) int64 {
	if v := r.Context().Value(UserIDContextKey); v != nil {
		if value, valid := v.(int64); valid {
			return value
		}
	}
	return 0
}

func GetUsername(r *http.Request) string {
	return getContextStringValue(r, UserNameContextKey)
}

func GetUserRole(r *http.Request) model.Role {
	if v := r.Context().Value(UserRoleContextKey); v != nil {
		if value, valid := v.(model.Role); valid {
			return value
		}
	}
	return ""
}

// GetActor builds the explicit caller identity handed to the engine.
func GetActor(r *http.Request) model.Actor {
	return model.Actor{
		UserID: GetUserID(r),
		Role:   GetUserRole(r),
	}
}
