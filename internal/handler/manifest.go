package handler

import (
	"github.com/deppfellow/guardian/internal/response"
	"github.com/labstack/echo/v4"
)

// ManifestHandler publishes the operation manifest so clients can discover
// every action, its input type and the procedures it runs.
type ManifestHandler struct {
	operations []Operation
}

func NewManifestHandler(operations []Operation) *ManifestHandler {
	return &ManifestHandler{operations: operations}
}

func (h *ManifestHandler) ServeOperations(c echo.Context) error {
	return response.Write(c, response.Success(h.operations))
}
