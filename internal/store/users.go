package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/ayresjulia/jobly/internal/apperr"
	"github.com/ayresjulia/jobly/internal/sqlutil"
)

// User is the public view of an account; the password hash never leaves the store.
type User struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
}

// UserDetail adds the ids of the jobs the user applied to.
type UserDetail struct {
	User
	Applications []int `json:"applications"`
}

// NewUser is the input for Register.
type NewUser struct {
	Username  string `json:"username" validate:"required,min=1,max=25"`
	Password  string `json:"password" validate:"required,min=5,max=20"`
	FirstName string `json:"firstName" validate:"required,min=1,max=30"`
	LastName  string `json:"lastName" validate:"required,min=1,max=30"`
	Email     string `json:"email" validate:"required,email,min=6,max=60"`
	IsAdmin   bool   `json:"isAdmin"`
}

// UserPatch holds the fields a user update may change; nil means unchanged.
type UserPatch struct {
	FirstName *string `json:"firstName" validate:"omitnil,min=1,max=30"`
	LastName  *string `json:"lastName" validate:"omitnil,min=1,max=30"`
	Password  *string `json:"password" validate:"omitnil,min=5,max=20"`
	Email     *string `json:"email" validate:"omitnil,email,min=6,max=60"`
	IsAdmin   *bool   `json:"isAdmin"`
}

// userColumns translates UserPatch field names to columns.
var userColumns = map[string]string{
	"firstName": "first_name",
	"lastName":  "last_name",
	"isAdmin":   "is_admin",
}

func (p UserPatch) fields() []sqlutil.Field {
	var f []sqlutil.Field
	f = sqlutil.AppendIf(f, "firstName", p.FirstName)
	f = sqlutil.AppendIf(f, "lastName", p.LastName)
	f = sqlutil.AppendIf(f, "password", p.Password)
	f = sqlutil.AppendIf(f, "email", p.Email)
	f = sqlutil.AppendIf(f, "isAdmin", p.IsAdmin)
	return f
}

const userCols = `username, first_name, last_name, email, is_admin`

func scanUser(row scanner) (User, error) {
	var u User
	err := row.Scan(&u.Username, &u.FirstName, &u.LastName, &u.Email, &u.IsAdmin)
	return u, err
}

func invalidCredentials() error { return apperr.Unauthorized("Invalid username/password") }

// Authenticate checks username/password and returns the user.
// Unknown users and wrong passwords fail the same way.
func (s *Store) Authenticate(ctx context.Context, username, password string) (User, error) {
	var (
		u    User
		hash string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT username, password, first_name, last_name, email, is_admin
		 FROM users WHERE username = $1`, username,
	).Scan(&u.Username, &hash, &u.FirstName, &u.LastName, &u.Email, &u.IsAdmin)
	if err != nil {
		err = mapError(err)
		if errors.Is(err, ErrNotFound) {
			return User{}, invalidCredentials()
		}
		return User{}, fmt.Errorf("authenticate %s: %w", username, err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, invalidCredentials()
	}
	return u, nil
}

// Register hashes the password and inserts a new user.
func (s *Store) Register(ctx context.Context, nu NewUser) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password, first_name, last_name, email, is_admin)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+userCols,
		nu.Username, string(hash), nu.FirstName, nu.LastName, nu.Email, nu.IsAdmin,
	))
	if err != nil {
		err = mapError(err)
		switch {
		case errors.Is(err, ErrDuplicateKey):
			return User{}, apperr.Wrap(http.StatusBadRequest, "Duplicate username: "+nu.Username, err)
		case errors.Is(err, ErrCheckViolation):
			return User{}, apperr.Wrap(http.StatusBadRequest, "Invalid user data", err)
		}
		return User{}, fmt.Errorf("register %s: %w", nu.Username, err)
	}
	return u, nil
}

// FindAllUsers lists every user ordered by username.
func (s *Store) FindAllUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userCols+` FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", mapError(err))
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// GetUser returns a user with the ids of the jobs they applied to.
func (s *Store) GetUser(ctx context.Context, username string) (UserDetail, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE username = $1`, username))
	if err != nil {
		return UserDetail{}, s.notFound(err, "No user: %s", username)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT job_id FROM applications WHERE username = $1 ORDER BY job_id`, username)
	if err != nil {
		return UserDetail{}, fmt.Errorf("list applications: %w", mapError(err))
	}
	defer rows.Close()

	d := UserDetail{User: u, Applications: []int{}}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return UserDetail{}, fmt.Errorf("scan application: %w", err)
		}
		d.Applications = append(d.Applications, id)
	}
	return d, rows.Err()
}

// UpdateUser applies p to the user. A new password is hashed before storing.
func (s *Store) UpdateUser(ctx context.Context, username string, p UserPatch) (User, error) {
	if p.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*p.Password), s.cost)
		if err != nil {
			return User{}, fmt.Errorf("hash password: %w", err)
		}
		h := string(hash)
		p.Password = &h
	}

	upd, err := sqlutil.PartialUpdate(p.fields(), userColumns)
	if err != nil {
		return User{}, err
	}
	q := fmt.Sprintf(`UPDATE users SET %s WHERE username = $%d RETURNING %s`,
		upd.SetCols, upd.Next(), userCols)

	u, err := scanUser(s.db.QueryRowContext(ctx, q, append(upd.Values, username)...))
	if err != nil {
		if errors.Is(mapError(err), ErrCheckViolation) {
			return User{}, apperr.Wrap(http.StatusBadRequest, "Invalid user data", err)
		}
		return User{}, s.notFound(err, "No user: %s", username)
	}
	return u, nil
}

// RemoveUser deletes a user and, by cascade, their applications.
func (s *Store) RemoveUser(ctx context.Context, username string) error {
	return s.deleteOne(ctx, `DELETE FROM users WHERE username = $1`, username, "No user: %s")
}

// Apply records that username applied to job jobID.
func (s *Store) Apply(ctx context.Context, username string, jobID int) error {
	if err := s.exists(ctx, `SELECT 1 FROM jobs WHERE id = $1`, jobID, "No job: %v"); err != nil {
		return err
	}
	if err := s.exists(ctx, `SELECT 1 FROM users WHERE username = $1`, username, "No user: %v"); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO applications (job_id, username) VALUES ($1, $2)`, jobID, username)
	if err != nil {
		err = mapError(err)
		if errors.Is(err, ErrDuplicateKey) {
			return apperr.Wrap(http.StatusBadRequest, fmt.Sprintf("Already applied to job: %d", jobID), err)
		}
		return fmt.Errorf("apply %s to %d: %w", username, jobID, err)
	}
	return nil
}

// notFound maps a no-rows error to apperr.NotFound and wraps anything else.
func (s *Store) notFound(err error, format string, arg any) error {
	err = mapError(err)
	if errors.Is(err, ErrNotFound) {
		return apperr.Wrap(http.StatusNotFound, fmt.Sprintf(format, arg), err)
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, arg), err)
}

// exists returns apperr.NotFound unless query yields a row.
func (s *Store) exists(ctx context.Context, query string, arg any, format string) error {
	var one int
	if err := s.db.QueryRowContext(ctx, query, arg).Scan(&one); err != nil {
		return s.notFound(err, format, arg)
	}
	return nil
}

// deleteOne runs a single-row DELETE, reporting apperr.NotFound when nothing matched.
func (s *Store) deleteOne(ctx context.Context, query string, arg any, format string) error {
	res, err := s.db.ExecContext(ctx, query, arg)
	if err != nil {
		return fmt.Errorf("delete: %w", mapError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if n == 0 {
		return apperr.NotFound(format, arg)
	}
	return nil
}
