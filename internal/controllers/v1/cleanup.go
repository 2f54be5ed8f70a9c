package v1

import (
	"net/http"

	"github.com/budgeter/backend/internal/models"
	"github.com/gin-gonic/gin"
)

var errCleanupConfirmation = models.Validation("the specified confirmation does not match 'yes-please-delete-everything'")

// @Summary		Delete everything
// @Description	Permanently deletes all resources of the owner
// @Tags			v1
// @Success		204
// @Failure		400		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			confirm	query		string	false	"Confirmation to delete all resources. Must have the value 'yes-please-delete-everything'"
// @Router			/v1 [delete]
func (co Controller) Cleanup(c *gin.Context) {
	var params struct {
		Confirm string `form:"confirm"`
	}

	err := c.Bind(&params)
	if err != nil || params.Confirm != "yes-please-delete-everything" {
		fail(c, errCleanupConfirmation)
		return
	}

	err = models.DeleteOwnerData(models.DB, owner(c))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
