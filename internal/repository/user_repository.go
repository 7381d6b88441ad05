package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hostelhq/hms/internal/model"
)

const userColumns = `id, first_name, last_name, email, password_hash, role,
	email_verified, email_verification_code, email_verification_expires,
	password_reset_token, password_reset_expires, password_changed_at,
	active, created_at, updated_at`

// UserRepo persists user records in the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&u.Role, &u.EmailVerified, &u.EmailVerificationCode, &u.EmailVerificationExpires,
		&u.PasswordResetToken, &u.PasswordResetExpires, &u.PasswordChangedAt,
		&u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// Create inserts a user and returns its ID. Email is normalized to
// lowercase; a duplicate email yields ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) (uint64, error) {
	email := strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (first_name, last_name, email, password_hash, role, email_verified, active) VALUES (?,?,?,?,?,?,?)",
		u.FirstName, u.LastName, email, u.PasswordHash, u.Role, u.EmailVerified, true)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByResetTokenHash fetches the user holding an unexpired password reset
// token with the given digest. Expired or unknown digests come back as
// ErrUserNotFound so handlers cannot tell the two cases apart.
func (r *UserRepo) GetByResetTokenHash(ctx context.Context, tokenHash string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE password_reset_token=? AND password_reset_expires > UTC_TIMESTAMP() LIMIT 1",
		tokenHash))
}

// UpdateProfile changes names and email and returns the updated record.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, firstName, lastName, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET first_name=?, last_name=?, email=? WHERE id=?",
		firstName, lastName, email, id)
	if err != nil {
		if isDuplicate(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Zero rows can also mean nothing changed; confirm existence below.
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.User{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// UpdatePassword sets a fresh password hash, stamps the password-change
// watermark and clears any armed reset token in one statement.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, passwordHash string, changedAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, password_changed_at=?, password_reset_token=NULL, password_reset_expires=NULL WHERE id=?",
		passwordHash, changedAt.UTC(), id)
	return err
}

// SetEmailVerification arms a 6-digit verification code with its expiry.
func (r *UserRepo) SetEmailVerification(ctx context.Context, id uint64, code string, expires time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET email_verification_code=?, email_verification_expires=? WHERE id=?",
		code, expires.UTC(), id)
	return err
}

// MarkEmailVerified flips the verified flag and clears the one-time code.
func (r *UserRepo) MarkEmailVerified(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET email_verified=1, email_verification_code=NULL, email_verification_expires=NULL WHERE id=?",
		id)
	return err
}

// SetPasswordReset arms a reset token digest with its expiry.
func (r *UserRepo) SetPasswordReset(ctx context.Context, id uint64, tokenHash string, expires time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_reset_token=?, password_reset_expires=? WHERE id=?",
		tokenHash, expires.UTC(), id)
	return err
}

// ClearPasswordReset disarms a reset token, e.g. after a failed email send.
func (r *UserRepo) ClearPasswordReset(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_reset_token=NULL, password_reset_expires=NULL WHERE id=?", id)
	return err
}

// SetActive toggles the soft-disable flag.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET active=? WHERE id=?", active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// ListByActive returns all users with the given active flag.
func (r *UserRepo) ListByActive(ctx context.Context, active bool) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE active=? ORDER BY id", active)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
			&u.Role, &u.EmailVerified, &u.EmailVerificationCode, &u.EmailVerificationExpires,
			&u.PasswordResetToken, &u.PasswordResetExpires, &u.PasswordChangedAt,
			&u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateAdminFields applies the only mutations an administrator may make
// to another account: verification state, active flag and role. Nil
// pointers leave the column untouched.
func (r *UserRepo) UpdateAdminFields(ctx context.Context, id uint64, emailVerified, active *bool, role *string) (model.User, error) {
	sets := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)
	if emailVerified != nil {
		sets = append(sets, "email_verified=?")
		args = append(args, *emailVerified)
	}
	if active != nil {
		sets = append(sets, "active=?")
		args = append(args, *active)
	}
	if role != nil {
		sets = append(sets, "role=?")
		args = append(args, *role)
	}
	if len(sets) > 0 {
		args = append(args, id)
		if _, err := r.DB.ExecContext(ctx,
			"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id=?", args...); err != nil {
			return model.User{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a user permanently. ErrUserNotFound when no row matched.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteAll removes every user and reports how many were deleted.
func (r *UserRepo) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
