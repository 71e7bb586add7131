package service

import (
	"context"
	"errors"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/policy"
)

type GenreService interface {
	List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.GenreResponse], error)
	Create(ctx context.Context, subject policy.Subject, req dto.CreateGenreDTO) (*dto.GenreResponse, error)
	Delete(ctx context.Context, subject policy.Subject, slug string) error
}

type genreService struct {
	repo repository.GenreRepository
}

func NewGenreService(repo repository.GenreRepository) GenreService {
	return &genreService{repo: repo}
}

func (s *genreService) List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.GenreResponse], error) {
	list, total, err := s.repo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}
	data := make([]dto.GenreResponse, 0, len(list))
	for _, g := range list {
		data = append(data, dto.GenreFromModel(g))
	}
	return dto.NewPaginated(data, total, page, pageSize), nil
}

func (s *genreService) Create(ctx context.Context, subject policy.Subject, req dto.CreateGenreDTO) (*dto.GenreResponse, error) {
	if err := policy.AdminOrReadOnly(subject, policy.Create); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindBySlug(ctx, req.Slug); err == nil {
		return nil, ErrSlugTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	g := &models.Genre{Name: req.Name, Slug: req.Slug}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, storageError(err, nil)
	}
	resp := dto.GenreFromModel(*g)
	return &resp, nil
}

func (s *genreService) Delete(ctx context.Context, subject policy.Subject, slug string) error {
	if err := policy.AdminOrReadOnly(subject, policy.Delete); err != nil {
		return err
	}
	return storageError(s.repo.DeleteBySlug(ctx, slug), ErrGenreNotFound)
}
