package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/policy"
	"reviewhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// the service is never reached by these routes, so a repo-less instance is
// enough
func newCatalogRouter(actor *policy.Actor) *gin.Engine {
	router := setupRouter()
	group := router.Group("/")
	if actor != nil {
		group.Use(withActor(actor))
	}
	NewGenreHandler(service.NewGenreService(nil)).RegisterRoutes(group)
	NewCategoryHandler(service.NewCategoryService(nil)).RegisterRoutes(group)
	return router
}

func TestGenreGetBySlug_MethodNotAllowed(t *testing.T) {
	router := newCatalogRouter(nil)

	req, _ := http.NewRequest("GET", "/genres/drama", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestCategoryGetBySlug_MethodNotAllowed(t *testing.T) {
	router := newCatalogRouter(nil)

	req, _ := http.NewRequest("GET", "/categories/movie", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestGenreCreate_AnonymousUnauthorized(t *testing.T) {
	router := newCatalogRouter(nil)

	w := postJSON(router, "/genres", map[string]string{"name": "Drama", "slug": "drama"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGenreDelete_NonAdminForbidden(t *testing.T) {
	actor := &policy.Actor{ID: "user-id", Username: "plain", Role: models.RoleUser}
	router := newCatalogRouter(actor)

	req, _ := http.NewRequest("DELETE", "/genres/drama", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGenreDelete_ModeratorForbidden(t *testing.T) {
	actor := &policy.Actor{ID: "mod-id", Username: "mod", Role: models.RoleModerator}
	router := newCatalogRouter(actor)

	req, _ := http.NewRequest("DELETE", "/categories/movie", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
