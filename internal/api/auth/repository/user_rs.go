package authRepository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"inkpress/internal/api/auth"
	"inkpress/internal/entity"
	contextPkg "inkpress/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type UserDB struct {
	ID        sql.NullString `db:"id"`
	Email     sql.NullString `db:"email"`
	Name      sql.NullString `db:"name"`
	Password  sql.NullString `db:"password"`
	Role      sql.NullString `db:"role"`
	Bio       sql.NullString `db:"bio"`
	AvatarURL sql.NullString `db:"avatar_url"`
	CreatedAt sql.NullTime   `db:"created_at"`
	UpdatedAt sql.NullTime   `db:"updated_at"`
}

func (r *userRepository) CreateUser(c context.Context, user entity.User) error {
	requestID := contextPkg.GetRequestID(c)
	now := time.Now()
	argsKV := map[string]interface{}{
		"id":         user.ID,
		"email":      user.Email,
		"name":       user.Name,
		"password":   user.Password,
		"role":       user.Role,
		"bio":        user.Bio,
		"avatar_url": user.AvatarURL,
		"created_at": now,
		"updated_at": now,
	}

	query, args, err := sqlx.Named(queryCreateUser, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateUser named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(c, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			if pqErr.Constraint == "users_email_key" {
				r.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"error":      err.Error(),
				}).Warn("Email already registered")
				return auth.ErrEmailAlreadyExists
			}
		}

		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating user")

		return err
	}

	return nil
}

func (r *userRepository) GetByID(c context.Context, id string) (entity.User, error) {
	requestID := contextPkg.GetRequestID(c)
	var user UserDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetByID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByID named query preparation err")

		return entity.User{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
			}).Warn("GetByID no rows found")
			return entity.User{}, auth.ErrUserNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByID execution err")
		return entity.User{}, err
	}

	return r.makeUser(user), nil
}

func (r *userRepository) GetByEmail(c context.Context, email string) (entity.User, error) {
	requestID := contextPkg.GetRequestID(c)
	var user UserDB

	argsKV := map[string]interface{}{
		"email": email,
	}

	query, args, err := sqlx.Named(queryGetByEmail, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByEmail named query preparation err")

		return entity.User{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
			}).Warn("GetByEmail no rows found")
			return entity.User{}, auth.ErrUserNotFound
		}

		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByEmail execution err")

		return entity.User{}, err
	}

	return r.makeUser(user), nil
}

func (r *userRepository) UpdateProfile(c context.Context, user entity.User) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":         user.ID,
		"name":       user.Name,
		"bio":        user.Bio,
		"updated_at": time.Now(),
	}

	query, args, err := sqlx.Named(queryUpdateProfile, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateProfile named query preparation err")

		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateProfile execution err")

		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("UpdateProfile no rows affected")
		return auth.ErrUserNotFound
	}

	return nil
}

func (r *userRepository) UpdateAvatar(c context.Context, id string, avatarURL string) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":         id,
		"avatar_url": avatarURL,
		"updated_at": time.Now(),
	}

	query, args, err := sqlx.Named(queryUpdateAvatar, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateAvatar named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateAvatar execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
		}).Warn("UpdateAvatar no rows affected")
		return auth.ErrUserNotFound
	}

	return nil
}

func (r *userRepository) makeUser(user UserDB) entity.User {
	var createdAt, updatedAt time.Time

	if user.CreatedAt.Valid {
		createdAt = user.CreatedAt.Time
	}

	if user.UpdatedAt.Valid {
		updatedAt = user.UpdatedAt.Time
	}

	return entity.User{
		ID:        user.ID.String,
		Email:     user.Email.String,
		Name:      user.Name.String,
		Password:  user.Password.String,
		Role:      user.Role.String,
		Bio:       user.Bio.String,
		AvatarURL: user.AvatarURL.String,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}
