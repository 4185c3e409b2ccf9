package identity

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"adbidgo/internal/domain"
	"adbidgo/internal/http/httpx"
)

const (
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"

	actorKey = "identity.actor"
)

// Middleware extracts the caller identity set by the gateway in front of this
// service. Requests without a valid user id are rejected.
func Middleware() gin.HandlerFunc {
	return func(ginCtx *gin.Context) {
		userID, err := strconv.ParseInt(ginCtx.GetHeader(headerUserID), 10, 64)
		if err != nil || userID <= 0 {
			httpx.Unauthorized(ginCtx)
			return
		}

		role := domain.RoleUser
		switch domain.Role(ginCtx.GetHeader(headerUserRole)) {
		case domain.RoleAdmin:
			role = domain.RoleAdmin
		case domain.RoleModerator:
			role = domain.RoleModerator
		}

		ginCtx.Set(actorKey, domain.Actor{ID: userID, Role: role})
		ginCtx.Next()
	}
}

// Actor returns the caller stored by Middleware. It must only be called on
// routes behind the middleware.
func Actor(ginCtx *gin.Context) domain.Actor {
	return ginCtx.MustGet(actorKey).(domain.Actor)
}
