package v1

import (
	"net/http"
	"time"

	"github.com/budgeter/backend/internal/category"
	"github.com/budgeter/backend/internal/httputil"
	"github.com/budgeter/backend/internal/models"
	"github.com/budgeter/backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type MonthSummary struct {
	Month    types.Month     `json:"month" example:"2025-01"`    // The month
	Income   decimal.Decimal `json:"income" example:"5200"`      // Sum of all deposits
	Spending decimal.Decimal `json:"spending" example:"3971.20"` // Sum of all withdrawals
	Net      decimal.Decimal `json:"net" example:"1228.80"`      // Income minus spending
}

type MonthlySummaryResponse struct {
	Data  []MonthSummary `json:"data"`                                                     // Months, oldest first
	Error *string        `json:"error" example:"months must be a number between 1 and 60"` // The error, if any occurred
}

type MonthlySummaryQuery struct {
	Months int         `form:"months,default=8" binding:"min=1,max=60"` // Number of months
	Month  types.Month `form:"month"`                                   // The last month, defaults to the current month
}

type CategorySummary struct {
	CategoryID string          `json:"categoryId" example:"groceries"` // ID of the category
	Label      string          `json:"label" example:"Groceries"`      // Label of the category
	Spending   decimal.Decimal `json:"spending" example:"412.77"`      // Sum of all withdrawals in the category
}

type CategorySummaryResponse struct {
	Data  []CategorySummary `json:"data"`                                                   // Categories with spending, ordered like the catalog
	Error *string           `json:"error" example:"the month must be formatted as YYYY-MM"` // The error, if any occurred
}

type CategorySummaryQuery struct {
	Month types.Month `form:"month"` // The month, defaults to the current month
}

func (co Controller) RegisterSummaryRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("/monthly", co.OptionsSummary)
		r.GET("/monthly", co.GetMonthlySummary)
	}
	{
		r.OPTIONS("/spending-by-category", co.OptionsSummary)
		r.GET("/spending-by-category", co.GetSpendingByCategory)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Summaries
// @Success		204
// @Router			/v1/summaries/monthly [options]
// @Router			/v1/summaries/spending-by-category [options]
func (co Controller) OptionsSummary(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Monthly summary
// @Description	Returns income and spending per month for the last months, including months without transactions
// @Tags			Summaries
// @Produce		json
// @Success		200		{object}	MonthlySummaryResponse
// @Failure		400		{object}	MonthlySummaryResponse
// @Failure		500		{object}	MonthlySummaryResponse
// @Param			months	query		int		false	"Number of months, 1 to 60. Defaults to 8."
// @Param			month	query		string	false	"The last month, format YYYY-MM. Defaults to the current month."
// @Router			/v1/summaries/monthly [get]
func (co Controller) GetMonthlySummary(c *gin.Context) {
	var query MonthlySummaryQuery
	err := c.ShouldBindQuery(&query)
	if err != nil {
		err = models.Validation("months must be a number between 1 and 60, month must be formatted as YYYY-MM")
		e := err.Error()
		c.JSON(status(err), MonthlySummaryResponse{Error: &e})
		return
	}

	if query.Month.IsZero() {
		query.Month = types.MonthOf(time.Now())
	}

	summaries, err := models.MonthlySummary(models.DB, owner(c), query.Month, query.Months)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), MonthlySummaryResponse{Error: &e})
		return
	}

	data := make([]MonthSummary, 0, len(summaries))
	for _, s := range summaries {
		data = append(data, MonthSummary{
			Month:    s.Month,
			Income:   s.Income,
			Spending: s.Spending,
			Net:      s.Income.Sub(s.Spending),
		})
	}

	c.JSON(http.StatusOK, MonthlySummaryResponse{Data: data})
}

// @Summary		Spending by category
// @Description	Returns the withdrawals of the month per category. Categories not in the catalog count as miscellaneous.
// @Tags			Summaries
// @Produce		json
// @Success		200		{object}	CategorySummaryResponse
// @Failure		400		{object}	CategorySummaryResponse
// @Failure		500		{object}	CategorySummaryResponse
// @Param			month	query		string	false	"The month, format YYYY-MM. Defaults to the current month."
// @Router			/v1/summaries/spending-by-category [get]
func (co Controller) GetSpendingByCategory(c *gin.Context) {
	var query CategorySummaryQuery
	err := c.ShouldBindQuery(&query)
	if err != nil {
		err = models.Validation("the month must be formatted as YYYY-MM")
		e := err.Error()
		c.JSON(status(err), CategorySummaryResponse{Error: &e})
		return
	}

	if query.Month.IsZero() {
		query.Month = types.MonthOf(time.Now())
	}

	summaries, err := models.SpendingByCategory(models.DB, owner(c), query.Month)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), CategorySummaryResponse{Error: &e})
		return
	}

	data := make([]CategorySummary, 0, len(summaries))
	for _, s := range summaries {
		data = append(data, CategorySummary{
			CategoryID: s.CategoryID,
			Label:      category.LabelOf(s.CategoryID),
			Spending:   s.Spending,
		})
	}

	c.JSON(http.StatusOK, CategorySummaryResponse{Data: data})
}
