package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"picstream/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// authedApp builds a Fiber app that runs every handler as the given user.
func authedApp(userID uint) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	})
	return app
}

func createHandlerTestUser(t *testing.T, srv *Server, username string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("SuperSecret1!"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
	}
	if err := srv.db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func doGet(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func doDelete(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, path, nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func TestFollowAndListFollowers(t *testing.T) {
	srv, _ := setupHandlerTest(t)
	alice := createHandlerTestUser(t, srv, "alice")
	bob := createHandlerTestUser(t, srv, "bob")

	app := authedApp(alice.ID)
	app.Post("/api/users/:id/follow", srv.FollowUser)
	app.Get("/api/users/:id/followers", srv.GetFollowers)
	app.Get("/api/users/:id", srv.GetUserProfile)

	resp := postJSON(t, app, "/api/users/2/follow", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("follow: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doGet(t, app, "/api/users/2/followers")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("followers: expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	followers, ok := body["followers"].([]any)
	if !ok || len(followers) != 1 {
		t.Fatalf("expected one follower, got %v", body["followers"])
	}
	first := followers[0].(map[string]any)
	if first["username"] != "alice" {
		t.Fatalf("expected alice, got %v", first["username"])
	}

	// The profile view reports the follow relationship for the caller.
	resp = doGet(t, app, "/api/users/2")
	body = decodeBody(t, resp)
	if body["following"] != true {
		t.Fatalf("expected following=true, got %v", body["following"])
	}
	if user, ok := body["user"].(map[string]any); !ok || user["username"] != bob.Username {
		t.Fatalf("unexpected profile payload: %v", body["user"])
	}
}

func TestFollowSelfRejected(t *testing.T) {
	srv, _ := setupHandlerTest(t)
	alice := createHandlerTestUser(t, srv, "alice")

	app := authedApp(alice.ID)
	app.Post("/api/users/:id/follow", srv.FollowUser)

	resp := postJSON(t, app, "/api/users/1/follow", nil, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestGetUserProfileInvalidID(t *testing.T) {
	srv, _ := setupHandlerTest(t)
	alice := createHandlerTestUser(t, srv, "alice")

	app := authedApp(alice.ID)
	app.Get("/api/users/:id", srv.GetUserProfile)

	resp := doGet(t, app, "/api/users/banana")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["code"] != models.CodeValidation {
		t.Fatalf("expected validation code, got %v", body["code"])
	}
}

func TestUpdateMyEmailRequiresCurrentPassword(t *testing.T) {
	srv, _ := setupHandlerTest(t)
	alice := createHandlerTestUser(t, srv, "alice")

	app := authedApp(alice.ID)
	app.Put("/api/users/me/email", srv.UpdateMyEmail)

	req := httptest.NewRequest(http.MethodPut, "/api/users/me/email",
		jsonBody(t, map[string]string{"email": "new@example.com"}))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["code"] != models.CodeReauthRequired {
		t.Fatalf("expected reauth code, got %v", body["code"])
	}

	req = httptest.NewRequest(http.MethodPut, "/api/users/me/email",
		jsonBody(t, map[string]string{"email": "new@example.com", "current_password": "SuperSecret1!"}))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body = decodeBody(t, resp)
	user := body["user"].(map[string]any)
	if user["email"] != "new@example.com" {
		t.Fatalf("email not updated: %v", user["email"])
	}
}

func TestDeleteMyAccount(t *testing.T) {
	srv, store := setupHandlerTest(t)
	alice := createHandlerTestUser(t, srv, "alice")
	post := &models.Post{CreatorID: alice.ID, ImageURL: "http://cdn.local/post_images/post_1_1.jpg"}
	if err := srv.db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}

	app := authedApp(alice.ID)
	app.Delete("/api/users/me/account", srv.DeleteMyAccount)

	// Wrong password leaves everything in place.
	req := httptest.NewRequest(http.MethodDelete, "/api/users/me/account",
		jsonBody(t, map[string]string{"current_password": "nope"}))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req = httptest.NewRequest(http.MethodDelete, "/api/users/me/account",
		jsonBody(t, map[string]string{"current_password": "SuperSecret1!"}))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["success"] != true {
		t.Fatalf("expected success, got %v", body)
	}

	var count int64
	srv.db.Model(&models.User{}).Where("id = ?", alice.ID).Count(&count)
	if count != 0 {
		t.Fatal("account row should be gone")
	}
	if len(store.deletes) != 1 {
		t.Fatalf("expected one blob delete, got %d", len(store.deletes))
	}
}
