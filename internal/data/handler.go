package data

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"formgrid-backend/internal/meta"
	"formgrid-backend/internal/record"
	"formgrid-backend/internal/store"
)

// Handler serves the runtime surface: entity metadata for the renderer and
// opaque row CRUD.
type Handler struct {
	entities *meta.EntityService
	records  *record.Service
}

func NewHandler(entities *meta.EntityService, records *record.Service) *Handler {
	return &Handler{entities: entities, records: records}
}

func RegisterDataRoutes(app *fiber.App, h *Handler) {
	api := app.Group("/api")

	api.Get("/entity", h.ListEntityMeta)
	api.Get("/entity/:entity", h.GetEntityMeta)

	data := api.Group("/data")
	data.Get("/:entity", h.ListRecords)
	data.Post("/:entity/validate", h.ValidateRecord)
	data.Post("/:entity", h.CreateRecord)
	data.Get("/:entity/:id", h.GetRecord)
	data.Put("/:entity/:id", h.UpdateRecord)
	data.Delete("/:entity/:id", h.DeleteRecord)
}

// --- Runtime metadata ---

func (h *Handler) ListEntityMeta(c *fiber.Ctx) error {
	entities, err := h.entities.List(c.Context())
	if err != nil {
		return fmt.Errorf("list entity meta: %w", err)
	}
	return c.JSON(entities)
}

func (h *Handler) GetEntityMeta(c *fiber.Ctx) error {
	doc, err := h.entities.GetFull(c.Context(), c.Params("entity"))
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Entity not found"})
	}
	if err != nil {
		return fmt.Errorf("get entity meta: %w", err)
	}
	return c.JSON(doc)
}

// --- Records ---

func (h *Handler) ListRecords(c *fiber.Ctx) error {
	rows, err := h.records.List(c.Context(), c.Params("entity"))
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}
	return c.JSON(rows)
}

func (h *Handler) GetRecord(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	row, err := h.records.Get(c.Context(), c.Params("entity"), id)
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Record not found"})
	}
	if err != nil {
		return fmt.Errorf("get record: %w", err)
	}
	return c.JSON(row)
}

func (h *Handler) CreateRecord(c *fiber.Ctx) error {
	payload, err := parseBody(c)
	if err != nil {
		return err
	}
	id, err := h.records.Create(c.Context(), c.Params("entity"), payload)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (h *Handler) UpdateRecord(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	payload, err := parseBody(c)
	if err != nil {
		return err
	}
	if err := h.records.Update(c.Context(), c.Params("entity"), id, payload); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handler) DeleteRecord(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.records.Delete(c.Context(), c.Params("entity"), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ValidateRecord dry-runs a candidate row against the entity's field
// definitions without writing anything.
func (h *Handler) ValidateRecord(c *fiber.Ctx) error {
	payload, err := parseBody(c)
	if err != nil {
		return err
	}
	doc, err := h.entities.GetFull(c.Context(), c.Params("entity"))
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Entity not found"})
	}
	if err != nil {
		return fmt.Errorf("load entity for validation: %w", err)
	}
	if details := meta.ValidateRecord(doc.Fields, payload); len(details) > 0 {
		return meta.ValidationError(details)
	}
	return c.JSON(fiber.Map{"valid": true})
}

// --- helpers ---

func parseBody(c *fiber.Ctx) (map[string]any, error) {
	var m map[string]any
	if err := c.BodyParser(&m); err != nil {
		return nil, meta.NewAppError("INVALID_PAYLOAD", 400, "Invalid JSON body")
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

func paramID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, meta.NewAppError("INVALID_ID", 400, "record id must be an integer")
	}
	return id, nil
}
