package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"picstream/internal/cache"
	"picstream/internal/config"
	"picstream/internal/database"
	"picstream/internal/middleware"
	"picstream/internal/repository"
	"picstream/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeStore is an in-memory ObjectStore for handler tests.
type fakeStore struct {
	uploads []string
	deletes []string
}

func (f *fakeStore) Upload(_ context.Context, key string, _ io.Reader, _ int64, _ string) (string, error) {
	f.uploads = append(f.uploads, key)
	return "http://cdn.local/" + key, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.deletes = append(f.deletes, key)
	return nil
}

func (f *fakeStore) KeyFromURL(rawURL string) (string, error) {
	return strings.TrimPrefix(rawURL, "http://cdn.local/"), nil
}

func setupHandlerTest(t *testing.T) (*Server, *fakeStore) {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{JWTSecret: "handler-test-secret"}
	middleware.InitMiddleware(cfg)

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	store := &fakeStore{}

	srv := &Server{
		config:      cfg,
		db:          db,
		userRepo:    userRepo,
		followRepo:  followRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
	}
	srv.userService = service.NewUserService(userRepo, followRepo)
	srv.postService = service.NewPostService(postRepo, followRepo, store)
	srv.commentService = service.NewCommentService(commentRepo, postRepo)
	srv.cascadeService = service.NewCascadeService(userRepo, followRepo, postRepo, commentRepo, store)

	return srv, store
}

func postJSON(t *testing.T, app *fiber.App, path string, body any, token string) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func jsonBody(t *testing.T, body any) *bytes.Reader {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(payload)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestSignupLoginFlow(t *testing.T) {
	srv, _ := setupHandlerTest(t)
	app := fiber.New()
	app.Post("/api/auth/signup", srv.Signup)
	app.Post("/api/auth/login", srv.Login)

	creds := map[string]string{
		"username": "walter",
		"email":    "walter@example.com",
		"password": "SuperSecret1!",
	}

	resp := postJSON(t, app, "/api/auth/signup", creds, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["token"] == "" || body["token"] == nil {
		t.Fatal("signup response missing token")
	}
	user, ok := body["user"].(map[string]any)
	if !ok || user["username"] != "walter" {
		t.Fatalf("unexpected user payload: %v", body["user"])
	}
	if _, leaked := user["password"]; leaked {
		t.Fatal("password hash must never appear in responses")
	}

	// Same email again
	resp = postJSON(t, app, "/api/auth/signup", creds, "")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate signup: expected 409, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Same username under a different email
	resp = postJSON(t, app, "/api/auth/signup", map[string]string{
		"username": "walter", "email": "other@example.com", "password": "SuperSecret1!",
	}, "")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("taken username: expected 409, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, app, "/api/auth/login", map[string]string{
		"email": "walter@example.com", "password": "wrong-password",
	}, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, app, "/api/auth/login", map[string]string{
		"email": "walter@example.com", "password": "SuperSecret1!",
	}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	body = decodeBody(t, resp)
	if body["token"] == "" || body["token"] == nil {
		t.Fatal("login response missing token")
	}
}

func TestSignupRejectsWeakPassword(t *testing.T) {
	srv, _ := setupHandlerTest(t)
	app := fiber.New()
	app.Post("/api/auth/signup", srv.Signup)

	resp := postJSON(t, app, "/api/auth/signup", map[string]string{
		"username": "eve", "email": "eve@example.com", "password": "short",
	}, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLogoutRevokesToken(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(client)
	middleware.SetTokenDenylist(cache.IsTokenDenied)
	t.Cleanup(func() {
		cache.SetClient(nil)
		middleware.SetTokenDenylist(nil)
		client.Close()
	})

	srv, _ := setupHandlerTest(t)
	app := fiber.New()
	app.Post("/api/auth/signup", srv.Signup)
	app.Post("/api/auth/logout", middleware.AuthRequired, srv.Logout)
	app.Get("/api/users/me", middleware.AuthRequired, srv.GetMyProfile)

	resp := postJSON(t, app, "/api/auth/signup", map[string]string{
		"username": "jesse", "email": "jesse@example.com", "password": "SuperSecret1!",
	}, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d", resp.StatusCode)
	}
	token, _ := decodeBody(t, resp)["token"].(string)
	if token == "" {
		t.Fatal("signup response missing token")
	}

	// Token works before logout.
	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("before logout: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, app, "/api/auth/logout", nil, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Same token is now refused.
	req = httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("after logout: expected 401, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAuthRequiredRejectsMissingHeader(t *testing.T) {
	srv, _ := setupHandlerTest(t)
	app := fiber.New()
	app.Get("/api/users/me", middleware.AuthRequired, srv.GetMyProfile)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
