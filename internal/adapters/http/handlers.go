package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Response messages
const (
	MsgEndpointNotFound   = "Endpoint not found"
	MsgInvalidJSON        = "Invalid JSON format"
	MsgRequiredFields     = "Name and ingredients are required"
	MsgRecipeNotFound     = "Recipe not found"
	MsgRecipeDeleted      = "Recipe deleted"
	MsgCannotReadRecipes  = "Cannot read recipes"
	MsgCannotCreateFile   = "Cannot create recipes file"
	MsgCannotSaveRecipe   = "Cannot save recipe"
	MsgCannotUpdateRecipe = "Cannot update recipe"
	MsgCannotDeleteRecipe = "Cannot delete recipe"
)

// ErrorResponse is the body of every JSON error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// readBody buffers the whole request body. Errors raised by the body reader
// itself (such as the body limit middleware) are passed through.
func readBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return nil, he
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, MsgInvalidJSON).SetInternal(err)
	}
	return body, nil
}
