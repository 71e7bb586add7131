package repository

import (
	"context"
	"testing"
	"time"

	"yamdb/database"
	"yamdb/internal/logger"
	"yamdb/internal/microservices/http-api/models"

	"github.com/stretchr/testify/suite"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// PostgresSuite runs the repositories against a disposable Postgres so the
// SQL behind ratings, filters and constraints is exercised for real.
type PostgresSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	db        *gorm.DB
	ctx       context.Context

	users    UserRepository
	titles   *TitleRepo
	reviews  ReviewRepository
	comments CommentRepository
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Postgres integration tests in short mode")
	}
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	s.ctx = context.Background()

	startCtx, cancel := context.WithTimeout(s.ctx, 2*time.Minute)
	defer cancel()

	container, err := tcpostgres.Run(startCtx, "postgres:16-alpine",
		tcpostgres.WithDatabase("yamdb"),
		tcpostgres.WithUsername("yamdb"),
		tcpostgres.WithPassword("yamdb"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		s.T().Skipf("Postgres container not available, skipping integration tests: %v", err)
		return
	}
	s.container = container

	dsn, err := container.ConnectionString(startCtx, "sslmode=disable")
	s.Require().NoError(err)

	s.db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(s.db, logger.Discard()))

	s.users = NewUserRepository(s.db)
	s.titles = NewTitleRepo(s.db)
	s.reviews = NewReviewRepository(s.db)
	s.comments = NewCommentRepository(s.db)
}

func (s *PostgresSuite) TearDownSuite() {
	if s.db != nil {
		_ = database.Close(s.db)
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresSuite) SetupTest() {
	s.Require().NoError(s.db.Exec(
		"TRUNCATE comments, reviews, title_genre, titles, genres, categories, users RESTART IDENTITY CASCADE",
	).Error)
}

func (s *PostgresSuite) newUser(username, role string) *models.User {
	u := &models.User{Username: username, Email: username + "@example.com", Role: role, IsActive: true}
	s.Require().NoError(s.users.Create(s.ctx, u))
	return u
}

func (s *PostgresSuite) newCategory(slug string) models.Category {
	c := models.Category{Name: slug, Slug: slug}
	s.Require().NoError(s.db.Create(&c).Error)
	return c
}

func (s *PostgresSuite) newGenre(slug string) models.Genre {
	g := models.Genre{Name: slug, Slug: slug}
	s.Require().NoError(s.db.Create(&g).Error)
	return g
}

func (s *PostgresSuite) newTitle(name string, year int, category models.Category, genres ...models.Genre) *models.Title {
	t := &models.Title{Name: name, Year: year, CategoryID: category.ID, Genres: genres}
	s.Require().NoError(s.titles.Create(s.ctx, t))
	return t
}

func (s *PostgresSuite) newReview(title *models.Title, author *models.User, score int) *models.Review {
	r := &models.Review{TitleID: title.ID, AuthorID: author.ID, Text: "text", Score: score}
	s.Require().NoError(s.reviews.Create(s.ctx, r))
	return r
}

func (s *PostgresSuite) TestUserUpdate_KeepsConcurrentRoleChange() {
	alice := s.newUser("alice", models.RoleModerator)

	stale, err := s.users.FindByID(s.ctx, alice.ID)
	s.Require().NoError(err)

	// an admin demotes alice after her profile was loaded
	s.Require().NoError(s.db.Model(&models.User{}).Where("id = ?", alice.ID).Update("role", models.RoleUser).Error)

	stale.Bio = "hello"
	s.Require().NoError(s.users.Update(s.ctx, stale, "bio"))

	stored, err := s.users.FindByID(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal(models.RoleUser, stored.Role)
	s.Equal("hello", stored.Bio)
}

func (s *PostgresSuite) TestUserUpdate_WritesZeroValues() {
	alice := s.newUser("alice", models.RoleUser)
	alice.ConfirmationCode = "hash"
	s.Require().NoError(s.users.Update(s.ctx, alice, "confirmation_code"))

	alice.ConfirmationCode = ""
	alice.IsActive = false
	s.Require().NoError(s.users.Update(s.ctx, alice, "confirmation_code", "is_active"))

	stored, err := s.users.FindByID(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Empty(stored.ConfirmationCode)
	s.False(stored.IsActive)
}

func (s *PostgresSuite) TestUserUpdate_DeletedUserIsNotRecreated() {
	alice := s.newUser("alice", models.RoleUser)
	stale, err := s.users.FindByID(s.ctx, alice.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.users.Delete(s.ctx, alice.ID))

	stale.IsActive = true
	err = s.users.Update(s.ctx, stale, "is_active")
	s.ErrorIs(err, ErrNotFound)

	_, err = s.users.FindByID(s.ctx, alice.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *PostgresSuite) TestTitleRating_MeanOrNull() {
	movies := s.newCategory("movie")
	title := s.newTitle("Heat", 1995, movies)

	got, err := s.titles.GetByID(s.ctx, title.ID)
	s.Require().NoError(err)
	s.Nil(got.Rating)

	s.newReview(title, s.newUser("alice", models.RoleUser), 3)
	s.newReview(title, s.newUser("bob", models.RoleUser), 8)

	got, err = s.titles.GetByID(s.ctx, title.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.Rating)
	s.InDelta(5.5, *got.Rating, 1e-9)

	list, total, err := s.titles.List(s.ctx, TitleFilter{}, 1, 10)
	s.Require().NoError(err)
	s.EqualValues(1, total)
	s.Require().NotNil(list[0].Rating)
	s.InDelta(5.5, *list[0].Rating, 1e-9)
}

func (s *PostgresSuite) TestReview_OnePerAuthorPerTitle() {
	title := s.newTitle("Heat", 1995, s.newCategory("movie"))
	alice := s.newUser("alice", models.RoleUser)
	s.newReview(title, alice, 7)

	err := s.reviews.Create(s.ctx, &models.Review{TitleID: title.ID, AuthorID: alice.ID, Text: "again", Score: 9})
	s.ErrorIs(err, ErrDuplicate)

	exists, err := s.reviews.ExistsForAuthor(s.ctx, title.ID, alice.ID)
	s.Require().NoError(err)
	s.True(exists)
}

func (s *PostgresSuite) TestReview_ScoreOutOfRangeRejected() {
	title := s.newTitle("Heat", 1995, s.newCategory("movie"))
	alice := s.newUser("alice", models.RoleUser)

	err := s.reviews.Create(s.ctx, &models.Review{TitleID: title.ID, AuthorID: alice.ID, Text: "x", Score: 11})
	s.Error(err)
}

func (s *PostgresSuite) TestTitleList_Filters() {
	movies := s.newCategory("movie")
	books := s.newCategory("book")
	drama := s.newGenre("drama")
	crime := s.newGenre("crime")

	s.newTitle("Heat", 1995, movies, crime, drama)
	s.newTitle("The Godfather", 1972, movies, crime)
	s.newTitle("Anna Karenina", 1878, books, drama)

	names := func(f TitleFilter) []string {
		list, total, err := s.titles.List(s.ctx, f, 1, 10)
		s.Require().NoError(err)
		s.EqualValues(len(list), total)
		out := make([]string, 0, len(list))
		for _, t := range list {
			out = append(out, t.Name)
		}
		return out
	}

	s.Equal([]string{"Anna Karenina", "Heat", "The Godfather"}, names(TitleFilter{}))
	s.Equal([]string{"Anna Karenina", "Heat"}, names(TitleFilter{Genre: "drama"}))
	s.Equal([]string{"Heat", "The Godfather"}, names(TitleFilter{Category: "movie"}))
	s.Equal([]string{"The Godfather"}, names(TitleFilter{Name: "GODF"}))
	s.Equal([]string{"Heat"}, names(TitleFilter{Year: 1995, Genre: "crime"}))
	s.Empty(names(TitleFilter{Genre: "comedy"}))
}

func (s *PostgresSuite) TestTitleUpdate_ReplacesGenresOnlyWhenAsked() {
	movies := s.newCategory("movie")
	drama := s.newGenre("drama")
	crime := s.newGenre("crime")
	title := s.newTitle("Heat", 1995, movies, drama)

	title.Name = "Heat (1995)"
	s.Require().NoError(s.titles.Update(s.ctx, title, nil, false))

	got, err := s.titles.GetByID(s.ctx, title.ID)
	s.Require().NoError(err)
	s.Equal("Heat (1995)", got.Name)
	s.Require().Len(got.Genres, 1)
	s.Equal("drama", got.Genres[0].Slug)

	s.Require().NoError(s.titles.Update(s.ctx, title, []models.Genre{crime}, true))
	got, err = s.titles.GetByID(s.ctx, title.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Genres, 1)
	s.Equal("crime", got.Genres[0].Slug)

	s.Require().NoError(s.titles.Update(s.ctx, title, nil, true))
	got, err = s.titles.GetByID(s.ctx, title.ID)
	s.Require().NoError(err)
	s.Empty(got.Genres)

	var genres int64
	s.Require().NoError(s.db.Model(&models.Genre{}).Count(&genres).Error)
	s.EqualValues(2, genres)
}

func (s *PostgresSuite) TestTitleUpdate_MissingTitle() {
	movies := s.newCategory("movie")
	err := s.titles.Update(s.ctx, &models.Title{ID: 999, Name: "x", Year: 2000, CategoryID: movies.ID}, nil, false)
	s.ErrorIs(err, ErrNotFound)
}

func (s *PostgresSuite) TestDeleteTitle_CascadesToReviewsAndComments() {
	title := s.newTitle("Heat", 1995, s.newCategory("movie"), s.newGenre("crime"))
	alice := s.newUser("alice", models.RoleUser)
	review := s.newReview(title, alice, 6)
	s.Require().NoError(s.comments.Create(s.ctx, &models.Comment{ReviewID: review.ID, AuthorID: alice.ID, Text: "agreed"}))

	s.Require().NoError(s.titles.Delete(s.ctx, title.ID))

	for _, table := range []any{&models.Review{}, &models.Comment{}, &models.TitleGenre{}} {
		var n int64
		s.Require().NoError(s.db.Model(table).Count(&n).Error)
		s.Zero(n)
	}
}

func (s *PostgresSuite) TestReviewAndCommentUpdate_MissingRow() {
	err := s.reviews.Update(s.ctx, &models.Review{ID: 42, Text: "x", Score: 5})
	s.ErrorIs(err, ErrNotFound)

	err = s.comments.Update(s.ctx, &models.Comment{ID: 42, Text: "x"})
	s.ErrorIs(err, ErrNotFound)
}
