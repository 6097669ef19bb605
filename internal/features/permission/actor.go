package permission

import (
	"context"

	"go-elms/pkg/utils"
)

// Actor is the authenticated user an operation runs on behalf of.
type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Title string `json:"title,omitempty"`
}

// SystemActor is used by background jobs.
var SystemActor = Actor{ID: "system", Name: "System", Role: RoleAdmin}

func ActorFromClaims(claims *utils.UserClaims) Actor {
	return Actor{
		ID:    claims.UserID,
		Name:  claims.Name,
		Email: claims.Email,
		Role:  Role(claims.Role),
		Title: claims.Title,
	}
}

// ActorFromContext reads the claims AuthMiddleware stored in the request context.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	claims, ok := ctx.Value(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok || claims == nil {
		return Actor{}, false
	}
	return ActorFromClaims(claims), true
}
