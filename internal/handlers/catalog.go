package handlers

import (
	"net/http"

	"custom-print-backend/internal/catalog"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{
		catalog: c,
	}
}

// GetTechniques godoc
// @Summary     List printing techniques
// @Description Returns the printing techniques with their per-unit cost and the default product price, all in minor currency units.
// @Tags        catalog
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.CatalogResponse
// @Router      /catalog/techniques [get]
func (h *CatalogHandler) GetTechniques(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Response())
}
