package v1

import (
	"net/http"

	"github.com/budgeter/backend/internal/category"
	"github.com/budgeter/backend/internal/httputil"
	"github.com/gin-gonic/gin"
)

type CategoryListResponse struct {
	Data []category.Category `json:"data"` // The catalog, in display order
}

func (co Controller) RegisterCategoryRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", co.OptionsCategories)
	r.GET("", co.GetCategories)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Categories
// @Success		204
// @Router			/v1/categories [options]
func (co Controller) OptionsCategories(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Get categories
// @Description	Returns the category catalog. Budgets and transactions reference categories by their ID.
// @Tags			Categories
// @Produce		json
// @Success		200	{object}	CategoryListResponse
// @Router			/v1/categories [get]
func (co Controller) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, CategoryListResponse{Data: category.All()})
}
