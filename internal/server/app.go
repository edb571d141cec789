package server

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"formgrid-backend/internal/admin"
	"formgrid-backend/internal/data"
	"formgrid-backend/internal/meta"
	"formgrid-backend/internal/record"
	"formgrid-backend/internal/store"
)

// New assembles the Fiber app: middleware, health check, admin and data
// routes, all sharing the one injected store handle.
func New(st *store.Store) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New())
	app.Use(CamelCaseResponse())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	entities := meta.NewEntityService(st)
	columns := meta.NewColumnService(st)
	fields := meta.NewFieldService(st)
	records := record.NewService(st)

	admin.RegisterAdminRoutes(app, admin.NewHandler(entities, columns, fields))
	data.RegisterDataRoutes(app, data.NewHandler(entities, records))

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	var appErr *meta.AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.Status).JSON(meta.ErrorResponse{Error: appErr})
	}

	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(meta.ErrorResponse{
			Error: &meta.AppError{Code: "NOT_FOUND", Message: "Not found"},
		})
	}
	if errors.Is(err, store.ErrUniqueViolation) {
		return c.Status(fiber.StatusConflict).JSON(meta.ErrorResponse{
			Error: &meta.AppError{Code: "CONFLICT", Message: "Duplicate key"},
		})
	}

	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	log.Printf("ERROR: %v", err)
	return c.Status(code).JSON(meta.ErrorResponse{
		Error: &meta.AppError{
			Code:    "INTERNAL_ERROR",
			Message: "Internal server error",
		},
	})
}
