package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/uptrace/bun"

	"mathdrills/internal/domain"
)

type userModel struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID          int64  `bun:"id,pk,autoincrement"`
	Username    string `bun:"username,notnull,unique"`
	DisplayName string `bun:"display_name,notnull"`
}

func (m userModel) user() domain.User {
	return domain.User{ID: m.ID, Username: m.Username, DisplayName: m.DisplayName}
}

type userInput struct {
	Username    string `validate:"required,max=64"`
	DisplayName string `validate:"required,max=64"`
}

// UserStore manages learner profiles. The Anonymous user (id 1) always exists.
type UserStore struct {
	db       *bun.DB
	validate *validator.Validate
}

func NewUserStore(db *bun.DB) *UserStore {
	return &UserStore{db: db, validate: validator.New()}
}

// List returns all users ordered by display name.
func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	var rows []userModel
	if err := s.db.NewSelect().Model(&rows).Order("display_name ASC", "id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]domain.User, len(rows))
	for i, row := range rows {
		out[i] = row.user()
	}
	return out, nil
}

func (s *UserStore) Get(ctx context.Context, id int64) (domain.User, error) {
	return s.find(ctx, "id = ?", id)
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.find(ctx, "username = ?", strings.TrimSpace(username))
}

// Create adds a user. The display name defaults to the username.
func (s *UserStore) Create(ctx context.Context, username, displayName string) (domain.User, error) {
	in := userInput{Username: strings.TrimSpace(username), DisplayName: strings.TrimSpace(displayName)}
	if in.DisplayName == "" {
		in.DisplayName = in.Username
	}
	if err := s.validate.Struct(in); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", domain.ErrInvalidUser, err)
	}

	exists, err := s.db.NewSelect().Model((*userModel)(nil)).Where("username = ?", in.Username).Exists(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	if exists {
		return domain.User{}, fmt.Errorf("%w: %s", domain.ErrDuplicateUsername, in.Username)
	}

	row := &userModel{Username: in.Username, DisplayName: in.DisplayName}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, fmt.Errorf("%w: %s", domain.ErrDuplicateUsername, in.Username)
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return row.user(), nil
}

// UpdateDisplayName renames a user and reports whether the user existed.
func (s *UserStore) UpdateDisplayName(ctx context.Context, id int64, displayName string) (bool, error) {
	displayName = strings.TrimSpace(displayName)
	if err := s.validate.Var(displayName, "required,max=64"); err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrInvalidUser, err)
	}
	res, err := s.db.NewUpdate().Model((*userModel)(nil)).
		Set("display_name = ?", displayName).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("update user: %w", err)
	}
	return affected(res)
}

// Delete removes a user and reports whether it existed. The Anonymous user
// cannot be deleted.
func (s *UserStore) Delete(ctx context.Context, id int64) (bool, error) {
	if id == domain.AnonymousUserID {
		return false, domain.ErrReservedUser
	}
	res, err := s.db.NewDelete().Model((*userModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return affected(res)
}

func (s *UserStore) find(ctx context.Context, where string, arg interface{}) (domain.User, error) {
	var row userModel
	err := s.db.NewSelect().Model(&row).Where(where, arg).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return row.user(), nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
