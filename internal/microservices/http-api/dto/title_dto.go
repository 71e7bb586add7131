package dto

import "yamdb/internal/microservices/http-api/models"

// CreateTitleDTO used for POST /api/v1/titles. Genre and category are slugs.
type CreateTitleDTO struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        int      `json:"year" binding:"required"`
	Description *string  `json:"description,omitempty"`
	Genre       []string `json:"genre" binding:"required,dive,slug"`
	Category    string   `json:"category" binding:"required,slug"`
}

// UpdateTitleDTO used for PATCH /api/v1/titles/:title_id (partial updates allowed)
type UpdateTitleDTO struct {
	Name        *string   `json:"name,omitempty" binding:"omitempty,min=1,max=256"`
	Year        *int      `json:"year,omitempty"`
	Description *string   `json:"description,omitempty"`
	Genre       *[]string `json:"genre,omitempty" binding:"omitempty,dive,slug"`
	Category    *string   `json:"category,omitempty" binding:"omitempty,slug"`
}

// TitleQuery holds the list filters.
type TitleQuery struct {
	PageQuery
	Name     string `form:"name"`
	Year     int    `form:"year"`
	Genre    string `form:"genre"`
	Category string `form:"category"`
}

// TitleResponse is the read representation: embedded genre and category
// objects plus the computed rating.
type TitleResponse struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Year        int              `json:"year"`
	Rating      *float64         `json:"rating"`
	Description *string          `json:"description"`
	Genre       []GenreResponse  `json:"genre"`
	Category    CategoryResponse `json:"category"`
}

func TitleFromModel(t models.Title) TitleResponse {
	genres := make([]GenreResponse, 0, len(t.Genres))
	for _, g := range t.Genres {
		genres = append(genres, GenreFromModel(g))
	}
	return TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       genres,
		Category:    CategoryFromModel(t.Category),
	}
}
