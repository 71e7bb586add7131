package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/policy"
	"yamdb/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

var (
	anonymous = policy.Anonymous()
	alice     = policy.Subject{UserID: "u-alice", Username: "alice", Role: models.RoleUser, Authenticated: true}
	moderator = policy.Subject{UserID: "u-mod", Username: "mod", Role: models.RoleModerator, Authenticated: true}
	admin     = policy.Subject{UserID: "u-admin", Username: "root", Role: models.RoleAdmin, Authenticated: true}
)

var errBoom = errors.New("boom")

type mocks struct {
	auth     *MockAuthService
	users    *MockUserService
	category *MockCategoryService
	genre    *MockGenreService
	title    *MockTitleService
	review   *MockReviewService
	comment  *MockCommentService
	db       *MockPinger
}

func (m *mocks) assertExpectations(t *testing.T) {
	m.auth.AssertExpectations(t)
	m.users.AssertExpectations(t)
	m.category.AssertExpectations(t)
	m.genre.AssertExpectations(t)
	m.title.AssertExpectations(t)
	m.review.AssertExpectations(t)
	m.comment.AssertExpectations(t)
	m.db.AssertExpectations(t)
}

// newTestRouter mounts every handler with mocked services; requests run as
// subject.
func newTestRouter(subject policy.Subject) (*gin.Engine, *mocks) {
	m := &mocks{
		auth:     new(MockAuthService),
		users:    new(MockUserService),
		category: new(MockCategoryService),
		genre:    new(MockGenreService),
		title:    new(MockTitleService),
		review:   new(MockReviewService),
		comment:  new(MockCommentService),
		db:       new(MockPinger),
	}

	h := Handlers{
		Auth:     NewAuthHandler(m.auth),
		Users:    NewUserHandler(m.users),
		Category: NewCategoryHandler(m.category),
		Genre:    NewGenreHandler(m.genre),
		Title:    NewTitleHandler(m.title),
		Review:   NewReviewHandler(m.review),
		Comment:  NewCommentHandler(m.comment),
		Health:   NewHealthHandler(m.db),
	}

	r := gin.New()
	authenticate := func(c *gin.Context) {
		c.Set(middleware.SubjectKey, subject)
		c.Next()
	}
	noLimit := func(c *gin.Context) { c.Next() }
	h.Mount(r, authenticate, noLimit)
	return r, m
}

func perform(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
