package models

type Title struct {
	ID          int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string  `json:"name" gorm:"size:256;not null;index"`
	Year        int     `json:"year" gorm:"not null;index"`
	Description *string `json:"description,omitempty" gorm:"type:text"`
	CategoryID  int64   `json:"category_id" gorm:"not null;index"`

	// Rating is AVG(reviews.score), filled in by the repository on reads and
	// never persisted.
	Rating *float64 `json:"rating" gorm:"->;-:migration"`

	// association
	Category Category `json:"category" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE;"`
	Genres   []Genre  `json:"genre" gorm:"many2many:title_genre;constraint:OnDelete:CASCADE;"`
}

func (Title) TableName() string {
	return "titles"
}
