package database

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) DB() *gorm.DB {
	return r.db
}

// Transaction runs fn against a repository bound to one transaction.
// fn must only use the repository it receives.
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// MaxPageNumber keeps offsets far from overflow for any page size callers use.
const MaxPageNumber = 1_000_000

// Page selects a 1-based page of Size rows.
type Page struct {
	Number int
	Size   int
}

func (p Page) apply(tx *gorm.DB) *gorm.DB {
	if p.Size <= 0 {
		return tx
	}
	number := p.Number
	if number < 1 {
		number = 1
	}
	if number > MaxPageNumber {
		number = MaxPageNumber
	}
	return tx.Offset((number - 1) * p.Size).Limit(p.Size)
}

// likeEscape goes after every LIKE that takes a likePattern.
const likeEscape = ` ESCAPE '\'`

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// likePattern matches q as a literal substring.
func likePattern(q string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(q))) + "%"
}

func newestFirst(table string) clause.OrderByColumn {
	return clause.OrderByColumn{Column: clause.Column{Table: table, Name: "created_at"}, Desc: true}
}

// Users

func (r *Repository) CreateUser(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	u := &User{}
	return u, r.db.WithContext(ctx).First(u, "id = ?", id).Error
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	u := &User{}
	return u, r.db.WithContext(ctx).First(u, "LOWER(username) = ?", strings.ToLower(username)).Error
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	u := &User{}
	return u, r.db.WithContext(ctx).First(u, "LOWER(email) = ?", strings.ToLower(email)).Error
}

func (r *Repository) GetUserByPhone(ctx context.Context, phone string) (*User, error) {
	u := &User{}
	return u, r.db.WithContext(ctx).First(u, "phone = ?", phone).Error
}

func (r *Repository) UpdateUser(ctx context.Context, id uuid.UUID, updates map[string]any) (*User, error) {
	tx := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}
	return r.GetUser(ctx, id)
}

func (r *Repository) SetUserRole(ctx context.Context, username string, role Role) error {
	tx := r.db.WithContext(ctx).
		Model(&User{}).
		Where("LOWER(username) = ?", strings.ToLower(username)).
		Update("role", role)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *Repository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx).Delete(&User{}, "id = ?", id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]*User, error) {
	var res []*User
	return res, r.db.WithContext(ctx).Order(newestFirst("users")).Find(&res).Error
}

// Files

func (r *Repository) CreateFile(ctx context.Context, f *File) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(f).Error
}

func (r *Repository) GetFile(ctx context.Context, id uuid.UUID) (*File, error) {
	f := &File{}
	return f, r.db.WithContext(ctx).First(f, "id = ?", id).Error
}

func (r *Repository) ListFiles(ctx context.Context, ownerID uuid.UUID, q string) ([]*File, error) {
	var res []*File
	tx := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if strings.TrimSpace(q) != "" {
		pattern := likePattern(q)
		tx = tx.Where("LOWER(title) LIKE ?"+likeEscape+" OR LOWER(content) LIKE ?"+likeEscape, pattern, pattern)
	}
	return res, tx.Order("updated_at DESC").Find(&res).Error
}

func (r *Repository) UpdateFile(ctx context.Context, id uuid.UUID, updates map[string]any) (*File, error) {
	tx := r.db.WithContext(ctx).Model(&File{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}
	return r.GetFile(ctx, id)
}

// DeleteFile removes the file; favourites, trash entries and shares go with it through the foreign keys.
func (r *Repository) DeleteFile(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx).Delete(&File{}, "id = ?", id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// PurgeFiles deletes the files and every row that depends on them, activities included.
// It returns the number of files removed.
func (r *Repository) PurgeFiles(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	db := r.db.WithContext(ctx)
	for _, model := range []any{&Favourite{}, &FileShare{}, &Activity{}, &Trash{}} {
		if err := db.Where("file_id IN ?", ids).Delete(model).Error; err != nil {
			return 0, err
		}
	}
	tx := db.Where("id IN ?", ids).Delete(&File{})
	return tx.RowsAffected, tx.Error
}

func (r *Repository) ListAllFiles(ctx context.Context) ([]*File, error) {
	var res []*File
	return res, r.db.WithContext(ctx).Preload("Owner").Order(newestFirst("files")).Find(&res).Error
}
