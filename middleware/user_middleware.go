package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/andrewpaige1/mindmap-api/logger"
	"github.com/andrewpaige1/mindmap-api/models"
	"github.com/andrewpaige1/mindmap-api/utils"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"gorm.io/gorm"
)

type contextKey string

const userKey contextKey = "user"

// UserFromContext returns the user attached by SyncUserMiddleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok && u != nil
}

// WithUser attaches user to ctx the same way SyncUserMiddleware does.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// SyncUserMiddleware ensures the Auth0 user exists in the DB and attaches it to context
func SyncUserMiddleware(db *gorm.DB, log *logger.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			auth0ID, ok := utils.GetAuth0ID(r)
			if !ok || auth0ID == "" {
				utils.WriteError(w, http.StatusUnauthorized, "Unauthorized", "No Auth0 subject found")
				return
			}

			nickname := ""
			if claims, ok := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims); ok {
				if customClaims, ok := claims.CustomClaims.(*CustomClaims); ok && customClaims != nil {
					nickname = customClaims.Nickname
				}
			}

			var user models.User
			err := db.Where("auth0_id = ?", auth0ID).First(&user).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				user = models.User{Auth0ID: auth0ID, Nickname: nickname}
				if err := db.Create(&user).Error; err != nil {
					log.Error("failed to create user", "error", err)
					utils.WriteError(w, http.StatusInternalServerError, "Internal error", "Failed to create user")
					return
				}
				log.Info("created new user", "user_id", user.ID, "nickname", user.Nickname)
			case err != nil:
				log.Error("failed to load user", "error", err)
				utils.WriteError(w, http.StatusInternalServerError, "Internal error", "Failed to load user")
				return
			case nickname != "" && user.Nickname != nickname:
				// update nickname only if non-empty and changed
				user.Nickname = nickname
				if err := db.Save(&user).Error; err != nil {
					log.Error("failed to update user", "error", err)
					utils.WriteError(w, http.StatusInternalServerError, "Internal error", "Failed to update user")
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), &user)))
		}
	}
}
