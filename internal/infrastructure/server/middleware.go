package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	indexPath      = "/"
	stylesheetPath = "/style.css"
)

var corsAllowMethods = strings.Join([]string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
	http.MethodOptions,
}, ", ")

// corsMiddleware attaches CORS headers to every response except the static
// assets and answers OPTIONS requests on any path with an empty 200.
func corsMiddleware(origin string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if isStaticAsset(req) {
				return next(c)
			}

			header := c.Response().Header()
			header.Set(echo.HeaderAccessControlAllowOrigin, origin)
			header.Set(echo.HeaderAccessControlAllowMethods, corsAllowMethods)
			header.Set(echo.HeaderAccessControlAllowHeaders, echo.HeaderContentType)

			if req.Method == http.MethodOptions {
				return c.NoContent(http.StatusOK)
			}

			return next(c)
		}
	}
}

func isStaticAsset(req *http.Request) bool {
	if req.Method != http.MethodGet {
		return false
	}
	return req.URL.Path == indexPath || req.URL.Path == stylesheetPath
}
