package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/recipebox/core/internal/domain/entities"
	"github.com/recipebox/core/internal/infrastructure/logger"
	"github.com/recipebox/core/internal/ports"
)

// RecipeHandler handles recipe-related requests
type RecipeHandler struct {
	recipeService ports.RecipeService
	logger        *logger.Logger
}

// NewRecipeHandler creates a new recipe handler
func NewRecipeHandler(recipeService ports.RecipeService, logger *logger.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
		logger:        logger,
	}
}

// ListRecipes writes the stored collection verbatim
func (h *RecipeHandler) ListRecipes(c echo.Context) error {
	data, err := h.recipeService.ListRecipes(c.Request().Context())
	if err != nil {
		if errors.Is(err, entities.ErrStoreCreate) {
			return echo.NewHTTPError(http.StatusInternalServerError, MsgCannotCreateFile).SetInternal(err)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, MsgCannotReadRecipes).SetInternal(err)
	}

	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}

// CreateRecipe handles recipe creation
func (h *RecipeHandler) CreateRecipe(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}

	payload, err := entities.DecodePayload(body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, MsgInvalidJSON)
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request().Context(), payload)
	if err != nil {
		if errors.Is(err, entities.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, MsgRequiredFields)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, MsgCannotSaveRecipe).SetInternal(err)
	}

	return c.JSON(http.StatusCreated, recipe)
}

// UpdateRecipe replaces a recipe by id
func (h *RecipeHandler) UpdateRecipe(c echo.Context) error {
	id := c.Param("id")

	body, err := readBody(c)
	if err != nil {
		return err
	}

	payload, err := entities.DecodePayload(body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, MsgInvalidJSON)
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request().Context(), id, payload)
	if err != nil {
		switch {
		case errors.Is(err, entities.ErrInvalidJSON):
			return echo.NewHTTPError(http.StatusBadRequest, MsgInvalidJSON)
		case errors.Is(err, entities.ErrRecipeNotFound):
			return echo.NewHTTPError(http.StatusNotFound, MsgRecipeNotFound)
		case errors.Is(err, entities.ErrStoreRead):
			return echo.NewHTTPError(http.StatusInternalServerError, MsgCannotReadRecipes).SetInternal(err)
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, MsgCannotUpdateRecipe).SetInternal(err)
		}
	}

	return c.JSON(http.StatusOK, recipe)
}

// DeleteRecipe removes a recipe by id
func (h *RecipeHandler) DeleteRecipe(c echo.Context) error {
	id := c.Param("id")

	recipe, err := h.recipeService.DeleteRecipe(c.Request().Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, entities.ErrRecipeNotFound):
			return echo.NewHTTPError(http.StatusNotFound, MsgRecipeNotFound)
		case errors.Is(err, entities.ErrStoreRead):
			return echo.NewHTTPError(http.StatusInternalServerError, MsgCannotReadRecipes).SetInternal(err)
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, MsgCannotDeleteRecipe).SetInternal(err)
		}
	}

	return c.JSON(http.StatusOK, ports.DeleteResponse{
		Message: MsgRecipeDeleted,
		Recipe:  recipe,
	})
}
