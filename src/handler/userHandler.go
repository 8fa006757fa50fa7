package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"journalapi/src/auth"
	"journalapi/src/model"
	"journalapi/src/repository"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type userUpdater interface {
	Update(ctx context.Context, user *model.User) error
}

// UpdateUserHandler returns a handler for partial profile updates. Only the
// fields present in the payload change; the rest of the profile is kept.
func UpdateUserHandler(repo userUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var payload model.UpdateUserPayload
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid user update payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		if payload.Email != nil {
			email := strings.TrimSpace(*payload.Email)
			if !strings.Contains(email, "@") {
				http.Error(w, "invalid email", http.StatusBadRequest)
				return
			}
			user.Email = email
		}
		if payload.FirstName != nil {
			user.FirstName = strings.TrimSpace(*payload.FirstName)
		}
		if payload.LastName != nil {
			user.LastName = strings.TrimSpace(*payload.LastName)
		}
		if payload.Timezone != nil {
			tz := strings.TrimSpace(*payload.Timezone)
			if tz != "" {
				if _, err := time.LoadLocation(tz); err != nil {
					http.Error(w, "invalid timezone", http.StatusBadRequest)
					return
				}
			}
			user.Timezone = tz
		}
		if payload.BaseCurrency != nil {
			currency := strings.ToUpper(strings.TrimSpace(*payload.BaseCurrency))
			if currency != "" && len(currency) != 3 {
				http.Error(w, "base_currency must be a 3-letter code", http.StatusBadRequest)
				return
			}
			user.BaseCurrency = currency
		}
		if payload.Broker != nil {
			user.Broker = strings.TrimSpace(*payload.Broker)
		}

		if err := repo.Update(r.Context(), user); err != nil {
			logger.WithError(err).Error("failed to update user profile")
			http.Error(w, "Unable to update profile", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(user.ToResponse()); err != nil {
			logger.WithError(err).Error("failed to encode user response")
		}
	}
}

// ChangePasswordHandler returns a handler that rotates the user's password
// after verifying the current one.
func ChangePasswordHandler(repo userUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var payload model.ChangePasswordPayload
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid change password payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		if payload.CurrentPassword == "" || payload.NewPassword == "" {
			http.Error(w, "Current and new passwords are required", http.StatusBadRequest)
			return
		}
		if len(payload.NewPassword) < minPasswordLength {
			http.Error(w, "New password is too short", http.StatusBadRequest)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.CurrentPassword)); err != nil {
			logger.WithField("user_id", user.ID).Warn("current password mismatch")
			http.Error(w, "Invalid current password", http.StatusUnauthorized)
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(payload.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			logger.WithError(err).Error("failed to hash new password")
			http.Error(w, "Unable to update password", http.StatusInternalServerError)
			return
		}

		user.Password = string(hashedPassword)

		if err := repo.Update(r.Context(), user); err != nil {
			logger.WithError(err).Error("failed to update user password")
			http.Error(w, "Unable to update password", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(map[string]string{"status": "password updated"}); err != nil {
			logger.WithError(err).Error("failed to encode change password response")
		}
	}
}

// DefaultUpdateUserHandler wires the handler to the production repository implementation.
func DefaultUpdateUserHandler() http.HandlerFunc {
	return UpdateUserHandler(repository.NewUserRepository())
}

// DefaultChangePasswordHandler wires the handler to the production repository implementation.
func DefaultChangePasswordHandler() http.HandlerFunc {
	return ChangePasswordHandler(repository.NewUserRepository())
}
