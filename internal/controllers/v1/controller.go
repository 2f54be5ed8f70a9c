// Package v1 implements the handlers of the v1 API.
package v1

import (
	"errors"
	"net/http"

	"github.com/budgeter/backend/internal/bank"
	"github.com/budgeter/backend/internal/events"
	"github.com/budgeter/backend/internal/models"
	"github.com/budgeter/backend/internal/tax"
	ez_uuid "github.com/budgeter/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Controller holds the dependencies of the handlers. The database is models.DB.
type Controller struct {
	Bank   *bank.Service    // nil when the bank integration is disabled
	Events events.Publisher // nil to not publish events
	Tax    tax.Calculator
}

// New returns a controller with the default tax tables.
func New() Controller {
	return Controller{Tax: tax.Default()}
}

type httpError struct {
	Error string `json:"error" example:"the specified resource ID is not a valid UUID"`
}

type URIID struct {
	ID ez_uuid.UUID `uri:"id" binding:"required" format:"UUID"` // ID of the resource
}

// Pagination contains information about the pagination for collection endpoint responses.
type Pagination struct {
	Count  int   `json:"count" example:"25"`  // The amount of records returned in this response
	Offset uint  `json:"offset" example:"50"` // The offset for the first record returned
	Limit  int   `json:"limit" example:"25"`  // The maximum amount of resources to return for this request
	Total  int64 `json:"total" example:"827"` // The total number of resources matching the query
}

// status returns the appropriate status for an error
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	if errors.Is(err, bank.ErrDisabled) {
		return http.StatusServiceUnavailable
	}

	return http.StatusBadRequest
}

// owner returns the ID of the owner of the request.
func owner(c *gin.Context) uuid.UUID {
	if id, ok := c.Get(string(models.DBContextOwner)); ok {
		if o, ok := id.(uuid.UUID); ok {
			return o
		}
	}

	return models.LocalOwner
}

// url returns the base URL of the API.
func url(c *gin.Context) string {
	return c.GetString(string(models.DBContextURL))
}

// fail writes the error as httpError.
func fail(c *gin.Context, err error) {
	c.JSON(status(err), httpError{Error: err.Error()})
}
