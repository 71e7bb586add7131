package service

import (
	"context"
	"errors"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/policy"
)

type CategoryService interface {
	List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.CategoryResponse], error)
	Create(ctx context.Context, subject policy.Subject, req dto.CreateCategoryDTO) (*dto.CategoryResponse, error)
	Delete(ctx context.Context, subject policy.Subject, slug string) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.CategoryResponse], error) {
	list, total, err := s.repo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}
	data := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		data = append(data, dto.CategoryFromModel(c))
	}
	return dto.NewPaginated(data, total, page, pageSize), nil
}

func (s *categoryService) Create(ctx context.Context, subject policy.Subject, req dto.CreateCategoryDTO) (*dto.CategoryResponse, error) {
	if err := policy.AdminOrReadOnly(subject, policy.Create); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindBySlug(ctx, req.Slug); err == nil {
		return nil, ErrSlugTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	c := &models.Category{Name: req.Name, Slug: req.Slug}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, storageError(err, nil)
	}
	resp := dto.CategoryFromModel(*c)
	return &resp, nil
}

func (s *categoryService) Delete(ctx context.Context, subject policy.Subject, slug string) error {
	if err := policy.AdminOrReadOnly(subject, policy.Delete); err != nil {
		return err
	}
	return storageError(s.repo.DeleteBySlug(ctx, slug), ErrCategoryNotFound)
}
