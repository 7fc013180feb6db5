package repository

import (
	"context"
	"fmt"

	"reviewhub/internal/http-api/models"

	"gorm.io/gorm"
)

// TitleFilter narrows the title list. Zero values mean "no filter".
type TitleFilter struct {
	GenreSlug    string
	CategorySlug string
	Name         string
	Year         int
}

type TitleRepo struct {
	db *gorm.DB
}

func NewTitleRepo(db *gorm.DB) *TitleRepo {
	return &TitleRepo{db: db}
}

func (r *TitleRepo) GetAll(ctx context.Context, filter TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	var list []models.Title
	var total int64

	// The count gets its own chain: gorm keeps Distinct's column selection
	// on a reused statement, which would leave Find with only the id column.
	countQuery := filtered(r.db.WithContext(ctx).Model(&models.Title{}), filter)
	if err := countQuery.Distinct("titles.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := filtered(r.db.WithContext(ctx).Model(&models.Title{}), filter).
		Preload("Genres").
		Preload("Category").
		Order("titles.created_at desc").
		Limit(pageSize).
		Offset(offset).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

// filtered applies the list filters on top of a fresh query. Each slug joins
// a title to at most one row, so the result needs no deduplication.
func filtered(query *gorm.DB, filter TitleFilter) *gorm.DB {
	if filter.GenreSlug != "" {
		query = query.
			Joins("JOIN title_genres tg ON tg.title_id = titles.id").
			Joins("JOIN genres g ON g.id = tg.genre_id").
			Where("g.slug = ?", filter.GenreSlug)
	}
	if filter.CategorySlug != "" {
		query = query.
			Joins("JOIN categories c ON c.id = titles.category_id").
			Where("c.slug = ?", filter.CategorySlug)
	}
	if filter.Name != "" {
		query = query.Where("titles.name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Year != 0 {
		query = query.Where("titles.year = ?", filter.Year)
	}
	return query
}

func (r *TitleRepo) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	if err := r.db.WithContext(ctx).
		Preload("Genres").
		Preload("Category").
		First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TitleRepo) Create(ctx context.Context, t *models.Title) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create title: %w", err)
	}
	return nil
}

// Update saves the mutable fields and replaces the genre association when
// genres were resolved on the request.
func (r *TitleRepo) Update(ctx context.Context, t *models.Title, replaceGenres bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(t).Select("Name", "Year", "Description", "CategoryID").Updates(t).Error; err != nil {
			return fmt.Errorf("update title: %w", err)
		}
		if replaceGenres {
			if err := tx.Model(t).Association("Genres").Replace(t.Genres); err != nil {
				return fmt.Errorf("replace title genres: %w", err)
			}
		}
		return nil
	})
}

// Delete removes the title together with its reviews and their comments.
func (r *TitleRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reviewIDs []int64
		if err := tx.Model(&models.Review{}).Where("title_id = ?", id).Pluck("id", &reviewIDs).Error; err != nil {
			return err
		}
		if len(reviewIDs) > 0 {
			if err := tx.Where("review_id IN ?", reviewIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", reviewIDs).Delete(&models.Review{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("title_id = ?", id).Delete(&models.TitleGenre{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Title{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
