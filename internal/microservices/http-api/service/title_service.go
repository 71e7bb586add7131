package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/policy"
)

type TitleService interface {
	List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) (*dto.Paginated[dto.TitleResponse], error)
	Get(ctx context.Context, id int64) (*dto.TitleResponse, error)
	Create(ctx context.Context, subject policy.Subject, req dto.CreateTitleDTO) (*dto.TitleResponse, error)
	Update(ctx context.Context, subject policy.Subject, id int64, req dto.UpdateTitleDTO) (*dto.TitleResponse, error)
	Delete(ctx context.Context, subject policy.Subject, id int64) error
}

type titleService struct {
	titleRepo    repository.TitleRepository
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
	now          func() time.Time
}

func NewTitleService(
	titleRepo repository.TitleRepository,
	categoryRepo repository.CategoryRepository,
	genreRepo repository.GenreRepository,
) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		now:          time.Now,
	}
}

func (s *titleService) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) (*dto.Paginated[dto.TitleResponse], error) {
	list, total, err := s.titleRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}
	data := make([]dto.TitleResponse, 0, len(list))
	for _, t := range list {
		data = append(data, dto.TitleFromModel(t))
	}
	return dto.NewPaginated(data, total, page, pageSize), nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	t, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageError(err, ErrTitleNotFound)
	}
	resp := dto.TitleFromModel(*t)
	return &resp, nil
}

func (s *titleService) Create(ctx context.Context, subject policy.Subject, req dto.CreateTitleDTO) (*dto.TitleResponse, error) {
	if err := policy.AdminOrReadOnly(subject, policy.Create); err != nil {
		return nil, err
	}
	if err := s.checkYear(req.Year); err != nil {
		return nil, err
	}
	category, err := s.resolveCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}
	genres, err := s.resolveGenres(ctx, req.Genre)
	if err != nil {
		return nil, err
	}

	t := &models.Title{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		CategoryID:  category.ID,
		Genres:      genres,
	}
	if err := s.titleRepo.Create(ctx, t); err != nil {
		return nil, storageError(err, nil)
	}
	return s.Get(ctx, t.ID)
}

// Update applies a partial update. A present genre list replaces the
// title's genres entirely.
func (s *titleService) Update(ctx context.Context, subject policy.Subject, id int64, req dto.UpdateTitleDTO) (*dto.TitleResponse, error) {
	if err := policy.AdminOrReadOnly(subject, policy.Update); err != nil {
		return nil, err
	}
	t, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageError(err, ErrTitleNotFound)
	}

	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Year != nil {
		if err := s.checkYear(*req.Year); err != nil {
			return nil, err
		}
		t.Year = *req.Year
	}
	if req.Description != nil {
		t.Description = req.Description
	}
	if req.Category != nil {
		category, err := s.resolveCategory(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		t.CategoryID = category.ID
	}

	var genres []models.Genre
	if req.Genre != nil {
		if genres, err = s.resolveGenres(ctx, *req.Genre); err != nil {
			return nil, err
		}
	}

	if err := s.titleRepo.Update(ctx, t, genres, req.Genre != nil); err != nil {
		return nil, storageError(err, ErrTitleNotFound)
	}
	return s.Get(ctx, id)
}

func (s *titleService) Delete(ctx context.Context, subject policy.Subject, id int64) error {
	if err := policy.AdminOrReadOnly(subject, policy.Delete); err != nil {
		return err
	}
	return storageError(s.titleRepo.Delete(ctx, id), ErrTitleNotFound)
}

func (s *titleService) checkYear(year int) error {
	if year > s.now().Year() {
		return ErrFutureYear
	}
	return nil
}

func (s *titleService) resolveCategory(ctx context.Context, slug string) (*models.Category, error) {
	c, err := s.categoryRepo.FindBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, withCause(ErrUnknownCategory, fmt.Errorf("category %q: %w", slug, err))
	}
	return c, err
}

// resolveGenres maps slugs to stored genres, rejecting the first unknown slug.
// Duplicate slugs collapse to one membership.
func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]models.Genre, error) {
	seen := make(map[string]struct{}, len(slugs))
	unique := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		unique = append(unique, slug)
	}

	genres, err := s.genreRepo.FindBySlugs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(genres) == len(unique) {
		return genres, nil
	}

	found := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		found[g.Slug] = struct{}{}
	}
	for _, slug := range unique {
		if _, ok := found[slug]; !ok {
			return nil, withCause(ErrUnknownGenre, fmt.Errorf("genre %q", slug))
		}
	}
	return genres, nil
}
