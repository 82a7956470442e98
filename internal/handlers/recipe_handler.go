package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/tastebook/backend/internal/dto"
	"github.com/tastebook/backend/internal/identity"
	"github.com/tastebook/backend/internal/search"
	"github.com/tastebook/backend/internal/services"
)

type RecipeHandler struct {
	recipeService *services.RecipeService
}

func NewRecipeHandler(recipeService *services.RecipeService) *RecipeHandler {
	return &RecipeHandler{recipeService: recipeService}
}

func (h *RecipeHandler) SearchTypes(c *fiber.Ctx) error {
	return c.JSON(search.Types())
}

func (h *RecipeHandler) Index(c *fiber.Ctx) error {
	searchType, err := search.ParseType(c.Query("searchType"))
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Error: true, Message: "The given data was invalid.",
			Fields: map[string]string{"searchType": "The selected search type is invalid."},
		})
	}

	categoryIDs, err := queryCategoryIDs(c)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Error: true, Message: "The given data was invalid.",
			Fields: map[string]string{"category_ids": "The selected category_ids is invalid."},
		})
	}

	filter := search.Filter{
		Keyword:     c.Query("keyword"),
		Type:        searchType,
		CategoryIDs: categoryIDs,
	}

	page := c.QueryInt("page", 1)
	result, err := h.recipeService.Search(filter, page)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch recipes",
		})
	}

	return c.JSON(result)
}

func (h *RecipeHandler) Show(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid recipe ID",
		})
	}

	recipe, err := h.recipeService.Get(uint(id))
	if err != nil {
		return recipeError(c, err, "Failed to fetch recipe")
	}
	return c.JSON(recipe)
}

func (h *RecipeHandler) Store(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	input, resp := parseRecipeInput(c)
	if resp != nil {
		return resp(c)
	}

	recipe, err := h.recipeService.Create(c.Context(), userID, input)
	if err != nil {
		return recipeError(c, err, "Failed to create recipe")
	}
	return c.Status(fiber.StatusCreated).JSON(recipe)
}

func (h *RecipeHandler) Update(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid recipe ID",
		})
	}

	input, resp := parseRecipeInput(c)
	if resp != nil {
		return resp(c)
	}

	recipe, err := h.recipeService.Update(c.Context(), userID, uint(id), input)
	if err != nil {
		return recipeError(c, err, "Failed to update recipe")
	}
	return c.JSON(recipe)
}

func (h *RecipeHandler) Destroy(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid recipe ID",
		})
	}

	if err := h.recipeService.Delete(c.Context(), userID, uint(id)); err != nil {
		return recipeError(c, err, "Failed to delete recipe")
	}
	return c.JSON(dto.MessageResponse{Message: "Recipe deleted"})
}

// recipeError maps service failures to HTTP responses. Forbidden and
// not-found stay distinct so probing ids does not leak existence.
func recipeError(c *fiber.Ctx, err error, fallback string) error {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Error: true, Message: "The given data was invalid.", Fields: ve.Fields,
		})
	}
	if errors.Is(err, services.ErrForbidden) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	if errors.Is(err, services.ErrRecipeNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: fallback,
	})
}

// parseRecipeInput reads a create/update payload from either a JSON or
// a multipart body (the SPA submits multipart when an image is
// attached). On failure the second return value renders the error.
func parseRecipeInput(c *fiber.Ctx) (*services.RecipeInput, func(*fiber.Ctx) error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return parseMultipartInput(c)
	}

	var req dto.RecipeRequest
	if err := c.BodyParser(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			field := typeErr.Field
			return nil, func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
					Error: true, Message: "The given data was invalid.",
					Fields: map[string]string{field: "The " + field + " field is invalid."},
				})
			}
		}
		return nil, badBody
	}

	return &services.RecipeInput{
		Title:        req.Title,
		Description:  req.Description,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		CategoryIDs:  req.CategoryIDs,
	}, nil
}

func parseMultipartInput(c *fiber.Ctx) (*services.RecipeInput, func(*fiber.Ctx) error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, badBody
	}

	input := &services.RecipeInput{
		Title:        formValue(form, "title"),
		Description:  formValuePtr(form, "description"),
		Ingredients:  formValuePtr(form, "ingredients"),
		Instructions: formValuePtr(form, "instructions"),
	}

	ids, present, err := formCategoryIDs(form)
	if err != nil {
		return nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
				Error: true, Message: "The given data was invalid.",
				Fields: map[string]string{"category_ids": "The selected category_ids is invalid."},
			})
		}
	}
	if present {
		input.CategoryIDs = &ids
	}

	if files := form.File["image"]; len(files) > 0 {
		data, err := readUpload(files[0])
		if err != nil {
			return nil, badBody
		}
		input.Image = data
		input.ImageFilename = files[0].Filename
	}

	return input, nil
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: "Invalid request body",
	})
}

func formValue(form *multipart.Form, key string) string {
	if vals := form.Value[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// formValuePtr keeps the absent-vs-empty distinction: a missing key
// yields nil, a present key yields a pointer even when the value is "".
func formValuePtr(form *multipart.Form, key string) *string {
	if vals, ok := form.Value[key]; ok && len(vals) > 0 {
		return &vals[0]
	}
	return nil
}

func formCategoryIDs(form *multipart.Form) ([]uint, bool, error) {
	vals, ok := form.Value["category_ids[]"]
	if !ok {
		vals, ok = form.Value["category_ids"]
	}
	if !ok {
		return nil, false, nil
	}

	ids := make([]uint, 0, len(vals))
	for _, v := range vals {
		if v == "" {
			continue
		}
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil || id == 0 {
			return nil, true, errors.New("invalid category id")
		}
		ids = append(ids, uint(id))
	}
	return ids, true, nil
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func queryCategoryIDs(c *fiber.Ctx) ([]uint, error) {
	args := c.Context().QueryArgs()

	var raw [][]byte
	for _, key := range []string{"category_ids[]", "category_ids"} {
		if vals := args.PeekMulti(key); len(vals) > 0 {
			raw = vals
			break
		}
	}

	ids := make([]uint, 0, len(raw))
	for _, v := range raw {
		s := string(v)
		if s == "" {
			continue
		}
		id, err := strconv.ParseUint(s, 10, 32)
		if err != nil || id == 0 {
			return nil, errors.New("invalid category id")
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
