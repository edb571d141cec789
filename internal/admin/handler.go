package admin

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"formgrid-backend/internal/meta"
	"formgrid-backend/internal/store"
)

// Handler serves the admin surface: entity documents plus the per-tab
// column/field editors.
type Handler struct {
	entities *meta.EntityService
	columns  *meta.ColumnService
	fields   *meta.FieldService
}

func NewHandler(entities *meta.EntityService, columns *meta.ColumnService, fields *meta.FieldService) *Handler {
	return &Handler{entities: entities, columns: columns, fields: fields}
}

func RegisterAdminRoutes(app *fiber.App, h *Handler) {
	admin := app.Group("/admin")

	// Static segments must register before the :entity wildcard.
	admin.Get("/full", h.ListEntitiesFull)
	admin.Get("/", h.ListEntities)
	admin.Post("/", h.CreateEntity)

	admin.Get("/:entity/full", h.GetEntityFull)
	admin.Get("/:entity/columns", h.ListColumns)
	admin.Post("/:entity/columns", h.CreateColumn)
	admin.Put("/:entity/columns/:id", h.UpdateColumn)
	admin.Delete("/:entity/columns/:id", h.DeleteColumn)
	admin.Get("/:entity/fields", h.ListFields)
	admin.Post("/:entity/fields", h.CreateField)
	admin.Put("/:entity/fields/:id", h.UpdateField)
	admin.Delete("/:entity/fields/:id", h.DeleteField)

	admin.Get("/:entity", h.GetEntity)
	admin.Put("/:entity", h.UpdateEntity)
	admin.Delete("/:entity", h.DeleteEntity)
}

// --- Entities ---

func (h *Handler) ListEntities(c *fiber.Ctx) error {
	entities, err := h.entities.List(c.Context())
	if err != nil {
		return fmt.Errorf("list entities: %w", err)
	}
	return c.JSON(entities)
}

func (h *Handler) ListEntitiesFull(c *fiber.Ctx) error {
	docs, err := h.entities.ListFull(c.Context())
	if err != nil {
		return fmt.Errorf("list entities full: %w", err)
	}
	return c.JSON(docs)
}

func (h *Handler) GetEntity(c *fiber.Ctx) error {
	entity, err := h.entities.Get(c.Context(), c.Params("entity"))
	if errors.Is(err, store.ErrNotFound) {
		return entityNotFound(c)
	}
	if err != nil {
		return fmt.Errorf("get entity: %w", err)
	}
	return c.JSON(entity)
}

func (h *Handler) GetEntityFull(c *fiber.Ctx) error {
	doc, err := h.entities.GetFull(c.Context(), c.Params("entity"))
	if errors.Is(err, store.ErrNotFound) {
		return entityNotFound(c)
	}
	if err != nil {
		return fmt.Errorf("get entity full: %w", err)
	}
	return c.JSON(doc)
}

func (h *Handler) CreateEntity(c *fiber.Ctx) error {
	doc, err := parseBody(c)
	if err != nil {
		return err
	}
	id, err := h.entities.CreateFull(c.Context(), doc)
	if errors.Is(err, store.ErrUniqueViolation) {
		return meta.DuplicateError(meta.StringOf(doc["id"]))
	}
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (h *Handler) UpdateEntity(c *fiber.Ctx) error {
	doc, err := parseBody(c)
	if err != nil {
		return err
	}
	err = h.entities.UpdateFull(c.Context(), c.Params("entity"), doc)
	if errors.Is(err, store.ErrNotFound) {
		return entityNotFound(c)
	}
	if err != nil {
		return fmt.Errorf("update entity: %w", err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handler) DeleteEntity(c *fiber.Ctx) error {
	if err := h.entities.Delete(c.Context(), c.Params("entity")); err != nil {
		return fmt.Errorf("delete entity: %w", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// --- Columns ---

func (h *Handler) ListColumns(c *fiber.Ctx) error {
	cols, err := h.columns.List(c.Context(), c.Params("entity"))
	if err != nil {
		return fmt.Errorf("list columns: %w", err)
	}
	return c.JSON(cols)
}

func (h *Handler) CreateColumn(c *fiber.Ctx) error {
	payload, err := parseBody(c)
	if err != nil {
		return err
	}
	id, err := h.columns.Create(c.Context(), c.Params("entity"), payload)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (h *Handler) UpdateColumn(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	payload, err := parseBody(c)
	if err != nil {
		return err
	}
	if err := h.columns.Update(c.Context(), c.Params("entity"), id, payload); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handler) DeleteColumn(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.columns.Delete(c.Context(), c.Params("entity"), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// --- Fields ---

func (h *Handler) ListFields(c *fiber.Ctx) error {
	fields, err := h.fields.List(c.Context(), c.Params("entity"))
	if err != nil {
		return fmt.Errorf("list fields: %w", err)
	}
	return c.JSON(fields)
}

func (h *Handler) CreateField(c *fiber.Ctx) error {
	payload, err := parseBody(c)
	if err != nil {
		return err
	}
	id, err := h.fields.Create(c.Context(), c.Params("entity"), payload)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (h *Handler) UpdateField(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	payload, err := parseBody(c)
	if err != nil {
		return err
	}
	if err := h.fields.Update(c.Context(), c.Params("entity"), id, payload); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handler) DeleteField(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.fields.Delete(c.Context(), c.Params("entity"), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
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
		return 0, meta.NewAppError("INVALID_ID", 400, "id must be an integer")
	}
	return id, nil
}

func entityNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Entity not found"})
}
