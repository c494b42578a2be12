package middlewares

import (
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"catalog-backend/database"
	"catalog-backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupIdempotencyApp(t *testing.T) (*fiber.App, *int) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.IdempotencyKey{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.DB = db

	calls := 0
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", "1")
		return c.Next()
	})
	app.Use(Idempotency())
	app.Post("/items", func(c *fiber.Ctx) error {
		calls++
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"call": calls})
	})
	return app, &calls
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	app, calls := setupIdempotencyApp(t)

	post := func() (int, string) {
		req := httptest.NewRequest(fiber.MethodPost, "/items", strings.NewReader(`{"product_id":1}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "k1")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		return resp.StatusCode, string(body)
	}

	status1, body1 := post()
	if status1 != fiber.StatusCreated {
		t.Fatalf("first call status %d", status1)
	}
	if *calls != 1 {
		t.Fatalf("expected 1 handler run got %d", *calls)
	}

	// The retry answers from the stored record, the handler does not run
	// again.
	status2, body2 := post()
	if *calls != 1 {
		t.Fatalf("handler re-executed on replay: calls=%d", *calls)
	}
	if status2 != status1 || body2 != body1 {
		t.Fatalf("replay diverged: got %d %q want %d %q", status2, body2, status1, body1)
	}

	var rec models.IdempotencyKey
	if err := database.DB.Where("key = ?", "k1").First(&rec).Error; err != nil {
		t.Fatalf("stored record: %v", err)
	}
	if rec.ResponseStatus != fiber.StatusCreated || string(rec.ResponseBody) != body1 {
		t.Fatalf("stored response mutated: %d %q", rec.ResponseStatus, rec.ResponseBody)
	}
}

func TestIdempotencyRejectsKeyReuse(t *testing.T) {
	app, _ := setupIdempotencyApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/items", strings.NewReader(`{"product_id":1}`))
	req.Header.Set("Idempotency-Key", "k2")
	if _, err := app.Test(req); err != nil {
		t.Fatalf("first request: %v", err)
	}

	// Same key, different payload.
	req = httptest.NewRequest(fiber.MethodPost, "/items", strings.NewReader(`{"product_id":2}`))
	req.Header.Set("Idempotency-Key", "k2")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.StatusCode)
	}
}

func TestIdempotencySkipsUnkeyedRequests(t *testing.T) {
	app, calls := setupIdempotencyApp(t)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(fiber.MethodPost, "/items", strings.NewReader(`{}`))
		if _, err := app.Test(req); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}
	if *calls != 2 {
		t.Fatalf("unkeyed requests must each run the handler, calls=%d", *calls)
	}
}
