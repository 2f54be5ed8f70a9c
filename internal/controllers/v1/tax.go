package v1

import (
	"net/http"
	"time"

	"github.com/budgeter/backend/internal/httputil"
	"github.com/budgeter/backend/internal/models"
	"github.com/budgeter/backend/internal/tax"
	"github.com/budgeter/backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TaxTables struct {
	Brackets tax.Brackets `json:"brackets"` // Income tax brackets, the last one is unbounded
	Rates    tax.Rates    `json:"rates"`    // Payroll tax rates
}

type TaxTablesResponse struct {
	Data *TaxTables `json:"data"` // The configured tables
}

type TaxEstimateRequest struct {
	From           types.Date         `json:"from" example:"2025-01-01"`  // First day of the range, defaults to the first day of the current year
	Until          types.Date         `json:"until" example:"2025-12-31"` // Last day of the range, defaults to the last day of the current year
	Categorization tax.Categorization `json:"categorization"`             // Tax category per deposit ID, 'w2', '1099' or 'none'. Deposits not contained are 'none'.
}

type TaxEstimate struct {
	From     types.Date `json:"from" example:"2025-01-01"`  // First day of the range
	Until    types.Date `json:"until" example:"2025-12-31"` // Last day of the range
	Deposits int        `json:"deposits" example:"26"`      // Number of deposits in the range
	tax.Estimate
}

type TaxEstimateResponse struct {
	Error *string      `json:"error" example:"the tax category must be one of 'w2', '1099' or 'none'"` // The error, if any occurred
	Data  *TaxEstimate `json:"data"`                                                                   // The estimate, amounts are rounded to cents
}

func (co Controller) RegisterTaxRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("/brackets", co.OptionsTaxBrackets)
		r.GET("/brackets", co.GetTaxBrackets)
	}
	{
		r.OPTIONS("/estimate", co.OptionsTaxEstimate)
		r.POST("/estimate", co.EstimateTax)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Tax
// @Success		204
// @Router			/v1/tax/brackets [options]
func (co Controller) OptionsTaxBrackets(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Tax
// @Success		204
// @Router			/v1/tax/estimate [options]
func (co Controller) OptionsTaxEstimate(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Get tax tables
// @Description	Returns the income tax brackets and payroll rates used for estimates
// @Tags			Tax
// @Produce		json
// @Success		200	{object}	TaxTablesResponse
// @Router			/v1/tax/brackets [get]
func (co Controller) GetTaxBrackets(c *gin.Context) {
	c.JSON(http.StatusOK, TaxTablesResponse{Data: &TaxTables{
		Brackets: co.Tax.Brackets(),
		Rates:    co.Tax.Rates(),
	}})
}

// @Summary		Estimate tax
// @Description	Estimates the annual tax liability from the deposits in the range that are categorized as W-2 or 1099 income.
// @Description	W-2 deposits are net pay. The gross pay is reconstructed with the flat payroll rates, assuming no income tax withholding and no wage base cap.
// @Tags			Tax
// @Accept			json
// @Produce		json
// @Success		200		{object}	TaxEstimateResponse
// @Failure		400		{object}	TaxEstimateResponse
// @Failure		500		{object}	TaxEstimateResponse
// @Param			request	body		TaxEstimateRequest	true	"Range and categorization"
// @Router			/v1/tax/estimate [post]
func (co Controller) EstimateTax(c *gin.Context) {
	var request TaxEstimateRequest
	err := httputil.BindData(c, &request)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TaxEstimateResponse{Error: &e})
		return
	}

	year := time.Now().In(time.UTC).Year()
	if request.From.IsZero() {
		request.From = types.NewDate(year, time.January, 1)
	}
	if request.Until.IsZero() {
		request.Until = types.NewDate(year, time.December, 31)
	}

	if request.Until.Before(request.From) {
		err := models.Validation("until must not be before from")
		e := err.Error()
		c.JSON(status(err), TaxEstimateResponse{Error: &e})
		return
	}

	var transactions []models.Transaction
	err = models.DB.
		Scopes(models.OwnedBy(owner(c)), models.Between(request.From.Time(), request.Until.Time())).
		Find(&transactions).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TaxEstimateResponse{Error: &e})
		return
	}

	known := make(map[uuid.UUID]bool, len(transactions))
	taxable := make([]tax.Transaction, 0, len(transactions))
	deposits := 0
	for _, t := range transactions {
		known[t.ID] = true
		taxable = append(taxable, t.Taxable())

		if t.Type == models.TransactionDeposit {
			deposits++
		}
	}

	for id, category := range request.Categorization {
		if !category.Valid() {
			err := models.Validation("%s, transaction %s has '%s'", tax.ErrCategoryInvalid, id, category)
			e := err.Error()
			c.JSON(status(err), TaxEstimateResponse{Error: &e})
			return
		}

		if !known[id] {
			err := models.Validation("there is no transaction with ID %s between %s and %s", id, request.From, request.Until)
			e := err.Error()
			c.JSON(status(err), TaxEstimateResponse{Error: &e})
			return
		}
	}

	estimate, err := co.Tax.Estimate(taxable, request.Categorization)
	if err != nil {
		err = models.Validation("%s", err)
		e := err.Error()
		c.JSON(status(err), TaxEstimateResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, TaxEstimateResponse{Data: &TaxEstimate{
		From:     request.From,
		Until:    request.Until,
		Deposits: deposits,
		Estimate: estimate.Round(),
	}})
}
