package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tbahati/dojokai/core"
	"github.com/tbahati/dojokai/core/user"
)

type dbUser struct {
	ID           string    `db:"id"`
	Name         string    `db:"nome"`
	Email        string    `db:"email"`
	AccessLevel  string    `db:"nivel_acesso"`
	IsActive     bool      `db:"ativo"`
	PasswordHash []byte    `db:"senha_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	LastLogin    null.Time `db:"last_login"`
}

func (u dbUser) toCore() user.User {
	return user.User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		AccessLevel:  u.AccessLevel,
		IsActive:     u.IsActive,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		LastLogin:    u.LastLogin.Time,
	}
}

type userRepository struct {
	exec core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{exec: exec}
}

func (repo userRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo userRepository) scanAll(rows *sql.Rows) ([]user.User, error) {
	defer func() { _ = rows.Close() }()
	var dbUsers []dbUser
	if err := sqlx.StructScan(rows, &dbUsers); err != nil {
		return nil, err
	}
	users := make([]user.User, 0, len(dbUsers))
	for _, u := range dbUsers {
		users = append(users, u.toCore())
	}
	return users, nil
}

func (repo userRepository) scanOne(rows *sql.Rows) (user.User, error) {
	users, err := repo.scanAll(rows)
	if err != nil {
		return user.User{}, err
	}
	if len(users) == 0 {
		return user.User{}, sql.ErrNoRows
	}
	return users[0], nil
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func trapUserNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	q := `SELECT EXISTS (SELECT 1 FROM usuarios WHERE lower(email) = lower($1) AND id != ALL($2))`
	ids := make([]string, 0, len(excludedUsers))
	for _, u := range excludedUsers {
		ids = append(ids, u.ID)
	}

	var exists bool
	err := repo.getExec(exec).QueryRowContext(ctx, q, email, pq.Array(ids)).Scan(&exists)
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	usr.ID = uuid.New().String()
	q := `
		INSERT INTO usuarios (id, nome, email, nivel_acesso, ativo, senha_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.getExec(exec).ExecContext(
		ctx, q,
		usr.ID, usr.Name, usr.Email, usr.AccessLevel, usr.IsActive, usr.PasswordHash,
		usr.CreatedAt, usr.UpdatedAt,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

// newest accounts first
var userOrdering = core.DBOrdering{Field: "created_at"}

func (repo userRepository) QueryAllUsers(ctx context.Context, exec ...core.DBExecutor) ([]user.User, error) {
	q := `
		SELECT id, nome, email, nivel_acesso, ativo, senha_hash, created_at, updated_at, last_login
		FROM usuarios
		ORDER BY ` + userOrdering.String()
	rows, err := repo.getExec(exec).QueryContext(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users, err := repo.scanAll(rows)
	if err != nil {
		return nil, errors.Wrap(err, "scanning users")
	}
	return users, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	q := `
		SELECT id, nome, email, nivel_acesso, ativo, senha_hash, created_at, updated_at, last_login
		FROM usuarios `
	var arg interface{}
	switch {
	case filter.ID != "":
		if !validID(filter.ID) {
			return user.User{}, user.ErrNotFound
		}
		q += `WHERE id = $1`
		arg = filter.ID
	case filter.Email != "":
		q += `WHERE lower(email) = lower($1)`
		arg = filter.Email
	default:
		return user.User{}, user.ErrNotFound
	}

	rows, err := repo.getExec(exec).QueryContext(ctx, q, arg)
	if err != nil {
		return user.User{}, errors.Wrap(err, "getting user")
	}
	usr, err := repo.scanOne(rows)
	if err != nil {
		return user.User{}, trapUserNoRowsErr(err, "getting user")
	}
	return usr, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool, exec ...core.DBExecutor) (user.User, error) {
	if !validID(usr.ID) {
		return user.User{}, user.ErrNotFound
	}
	q := `
		UPDATE usuarios
		SET nome         = COALESCE(NULLIF($2, ''), nome),
		    email        = COALESCE(NULLIF($3, ''), email),
		    nivel_acesso = COALESCE(NULLIF($4, ''), nivel_acesso),
		    ativo        = COALESCE($5, ativo),
		    senha_hash   = COALESCE(NULLIF($6, ''::bytea), senha_hash),
		    updated_at   = $7,
		    last_login   = COALESCE($8, last_login)
		WHERE id = $1`
	res, err := repo.getExec(exec).ExecContext(
		ctx, q,
		usr.ID, usr.Name, usr.Email, usr.AccessLevel, isActive, usr.PasswordHash,
		time.Now().UTC(), null.NewTime(usr.LastLogin, !usr.LastLogin.IsZero()),
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUser(ctx, user.GetFilter{ID: usr.ID}, exec...)
}

func (repo userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	if usr.ID == "" {
		return repo.CreateUser(ctx, usr, exec...)
	}
	updated, err := repo.UpdateUser(ctx, usr, nil, exec...)
	if err == user.ErrNotFound {
		return repo.CreateUser(ctx, usr, exec...)
	}
	return updated, err
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	if ids = validIDs(ids); len(ids) == 0 {
		return 0, nil
	}
	q := `DELETE FROM usuarios WHERE id = ANY($1)`
	res, err := repo.getExec(exec).ExecContext(ctx, q, pq.Array(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	return int(n), nil
}
