package httputil

import "github.com/budgeter/backend/internal/models"

var (
	ErrInvalidBody      = models.Validation("the body of your request contains invalid or un-parseable data. Please check and try again")
	ErrRequestBodyEmpty = models.Validation("the request body must not be empty")
)

// HTTPError is the body of error responses that have no resource specific type.
type HTTPError struct {
	Error string `json:"error" example:"this HTTP method is not allowed for the endpoint you called"` // The error
}
