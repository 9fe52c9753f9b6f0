package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "tradebook/internal/errors"
	"tradebook/internal/models"
	"tradebook/internal/pagination"
)

func setupUserRouter(svc *mockUserService) *gin.Engine {
	h := NewUserHandler(svc)
	r := newRouter()
	r.GET("/users", h.ListUsers)
	r.GET("/users/:id", h.GetUser)
	r.PUT("/users/:id", h.UpdateUser)
	r.DELETE("/users/:id", h.DeleteUser)
	return r
}

func TestUserHandler_ListUsers(t *testing.T) {
	var got pagination.PageRequest
	svc := &mockUserService{
		listUsersFn: func(page pagination.PageRequest) (*pagination.PageResponse[models.PublicUser], error) {
			got = page
			resp := pagination.Paginate([]models.PublicUser{{Email: "a@b.co"}}, page)
			return &resp, nil
		},
	}

	rec := doRequest(setupUserRouter(svc), http.MethodGet, "/users?page=1&page_size=5", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.PageSize != 5 {
		t.Errorf("expected page size 5, got %d", got.PageSize)
	}
	if len(parseJSON(t, rec)["data"].([]interface{})) != 1 {
		t.Errorf("expected one user, got %s", rec.Body.String())
	}
}

func TestUserHandler_UpdateUser(t *testing.T) {
	t.Run("changes role", func(t *testing.T) {
		var got models.UserPatch
		svc := &mockUserService{
			updateUserFn: func(id string, patch models.UserPatch) (*models.User, error) {
				got = patch
				return &models.User{Base: models.Base{ID: id}, Role: *patch.Role, Password: "hash"}, nil
			},
		}

		rec := doRequest(setupUserRouter(svc), http.MethodPut, "/users/u1", `{"role":"analyst"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Role == nil || *got.Role != models.RoleAnalyst {
			t.Errorf("expected analyst role, got %v", got.Role)
		}
		if _, leaked := parseJSON(t, rec)["user"].(map[string]interface{})["password"]; leaked {
			t.Error("response must not carry the password hash")
		}
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		rec := doRequest(setupUserRouter(&mockUserService{}), http.MethodPut, "/users/u1", `{"role":"root"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestUserHandler_DeleteUser(t *testing.T) {
	svc := &mockUserService{
		deleteUserFn: func(id string) error {
			if id == "missing" {
				return apperrors.ErrUserNotFound
			}
			return nil
		},
	}
	r := setupUserRouter(svc)

	if rec := doRequest(r, http.MethodDelete, "/users/u1", ""); rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	rec := doRequest(r, http.MethodDelete, "/users/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	assertErrorCode(t, parseJSON(t, rec), "USER_NOT_FOUND")
}
