package repository

import (
	"context"
	"strings"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// ratingColumn computes a title's average review score; NULL when unreviewed.
const ratingColumn = "(SELECT AVG(reviews.score) FROM reviews WHERE reviews.title_id = titles.id) AS rating"

// TitleFilter narrows title listings. Zero values disable a filter.
type TitleFilter struct {
	Name     string // case-insensitive substring
	Year     int
	Genre    string // genre slug
	Category string // category slug
}

type TitleRepository interface {
	List(ctx context.Context, filter TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Title, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, t *models.Title) error
	// Update saves the title's own columns. When replaceGenres is set the
	// genre membership is swapped for genres in the same transaction.
	Update(ctx context.Context, t *models.Title, genres []models.Genre, replaceGenres bool) error
	Delete(ctx context.Context, id int64) error
}

type TitleRepo struct {
	db *gorm.DB
}

func NewTitleRepo(db *gorm.DB) *TitleRepo {
	return &TitleRepo{db: db}
}

func (r *TitleRepo) filtered(ctx context.Context, f TitleFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Title{})

	if name := strings.TrimSpace(f.Name); name != "" {
		q = q.Where("LOWER(titles.name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if f.Year != 0 {
		q = q.Where("titles.year = ?", f.Year)
	}
	if f.Genre != "" {
		q = q.Where(`titles.id IN (SELECT title_genre.title_id FROM title_genre
			JOIN genres ON genres.id = title_genre.genre_id WHERE genres.slug = ?)`, f.Genre)
	}
	if f.Category != "" {
		q = q.Where("titles.category_id IN (SELECT id FROM categories WHERE slug = ?)", f.Category)
	}
	return q
}

func (r *TitleRepo) List(ctx context.Context, f TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	var list []models.Title
	var total int64

	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, translate("count titles", err)
	}

	err := r.filtered(ctx, f).
		Select("titles.*, " + ratingColumn).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.name asc") }).
		Order("titles.name asc").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&list).Error
	if err != nil {
		return nil, 0, translate("list titles", err)
	}

	return list, total, nil
}

func (r *TitleRepo) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	err := r.db.WithContext(ctx).
		Select("titles.*, "+ratingColumn).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.name asc") }).
		Where("titles.id = ?", id).
		First(&t).Error
	if err != nil {
		return nil, translate("get title", err)
	}
	return &t, nil
}

func (r *TitleRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Title{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, translate("title exists", err)
	}
	return n > 0, nil
}

// Create inserts the title and its genre links. Genres must already exist.
func (r *TitleRepo) Create(ctx context.Context, t *models.Title) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Category", "Genres").Create(t).Error; err != nil {
			return err
		}
		if len(t.Genres) == 0 {
			return nil
		}
		return tx.Model(t).Omit("Genres.*").Association("Genres").Append(t.Genres)
	})
	return translate("create title", err)
}

func (r *TitleRepo) Update(ctx context.Context, t *models.Title, genres []models.Genre, replaceGenres bool) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Title{}).Where("id = ?", t.ID).Updates(map[string]any{
			"name":        t.Name,
			"year":        t.Year,
			"description": t.Description,
			"category_id": t.CategoryID,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if !replaceGenres {
			return nil
		}
		if genres == nil {
			genres = []models.Genre{}
		}
		return tx.Model(&models.Title{ID: t.ID}).Omit("Genres.*").Association("Genres").Replace(genres)
	})
	return translate("update title", err)
}

func (r *TitleRepo) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Title{}, id)
	if result.Error != nil {
		return translate("delete title", result.Error)
	}
	if result.RowsAffected == 0 {
		return translate("delete title", gorm.ErrRecordNotFound)
	}
	return nil
}
