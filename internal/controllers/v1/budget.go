package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/budgeter/backend/internal/events"
	"github.com/budgeter/backend/internal/httputil"
	"github.com/budgeter/backend/internal/models"
	"github.com/budgeter/backend/internal/types"
	ez_uuid "github.com/budgeter/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

func (co Controller) RegisterBudgetRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", co.OptionsBudgets)
		r.GET("", co.GetBudgets)
		r.POST("", co.CreateBudgets)
	}
	{
		r.OPTIONS("/primary", co.OptionsBudgetPrimary)
		r.GET("/primary", co.GetPrimaryBudget)
	}
	{
		r.OPTIONS("/:id", co.OptionsBudgetDetail)
		r.GET("/:id", co.GetBudget)
		r.PATCH("/:id", co.UpdateBudget)
		r.DELETE("/:id", co.DeleteBudget)
	}
	{
		r.OPTIONS("/:id/categories/:categoryId/transactions", co.OptionsBudgetCategoryTransactions)
		r.GET("/:id/categories/:categoryId/transactions", co.GetBudgetCategoryTransactions)
	}
	{
		r.OPTIONS("/:id/transactions/:transactionId/toggle-exclusion", co.OptionsToggleExclusion)
		r.POST("/:id/transactions/:transactionId/toggle-exclusion", co.ToggleExclusion)
	}
}

func allocationOrder(db *gorm.DB) *gorm.DB {
	return db.Order("allocations.category_id ASC")
}

// budget loads the budget of the owner with its allocations
func budget(c *gin.Context, id ez_uuid.UUID) (models.Budget, error) {
	var budget models.Budget
	err := models.DB.
		Scopes(models.OwnedBy(owner(c)), models.ByID(id.UUID)).
		Preload("Allocations", allocationOrder).
		First(&budget).Error

	return budget, err
}

// withSpend returns the API representation of the budgets with their spend
func withSpend(c *gin.Context, budgets []models.Budget) ([]Budget, error) {
	spend, err := models.BudgetSpend(models.DB, owner(c), budgets)
	if err != nil {
		return nil, err
	}

	data := make([]Budget, 0, len(budgets))
	for _, b := range budgets {
		data = append(data, newBudget(c, b, spend[b.ID]))
	}

	return data, nil
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Budgets
// @Success		204
// @Router			/v1/budgets [options]
func (co Controller) OptionsBudgets(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Budgets
// @Success		204
// @Router			/v1/budgets/primary [options]
func (co Controller) OptionsBudgetPrimary(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Budgets
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/budgets/{id} [options]
func (co Controller) OptionsBudgetDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		fail(c, err)
		return
	}

	_, err = budget(c, uri.ID)
	if err != nil {
		fail(c, err)
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Budgets
// @Success		204
// @Router			/v1/budgets/{id}/categories/{categoryId}/transactions [options]
func (co Controller) OptionsBudgetCategoryTransactions(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Budgets
// @Success		204
// @Router			/v1/budgets/{id}/transactions/{transactionId}/toggle-exclusion [options]
func (co Controller) OptionsToggleExclusion(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Create budgets
// @Description	Creates new budgets with their allocations. Primary budgets must not overlap with other primary budgets.
// @Tags			Budgets
// @Produce		json
// @Success		201		{object}	BudgetCreateResponse
// @Failure		400		{object}	BudgetCreateResponse
// @Failure		500		{object}	BudgetCreateResponse
// @Param			budgets	body		[]BudgetEditable	true	"Budgets"
// @Router			/v1/budgets [post]
func (co Controller) CreateBudgets(c *gin.Context) {
	var editables []BudgetEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := BudgetCreateResponse{}

	for _, create := range editables {
		budget := create.model(owner(c))

		// Allocations are created with the budget
		err = models.DB.Create(&budget).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data, err := withSpend(c, []models.Budget{budget})
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		r.Data = append(r.Data, BudgetResponse{Data: &data[0]})
	}

	c.JSON(status, r)
}

// @Summary		Get budgets
// @Description	Returns a list of budgets with their spend
// @Tags			Budgets
// @Produce		json
// @Success		200		{object}	BudgetListResponse
// @Failure		400		{object}	BudgetListResponse
// @Failure		500		{object}	BudgetListResponse
// @Router			/v1/budgets [get]
// @Param			name	query	string	false	"Filter by name"
// @Param			primary	query	bool	false	"Is the budget primary?"
// @Param			date	query	string	false	"Budgets containing this day, format YYYY-MM-DD"
// @Param			offset	query	uint	false	"The offset of the first budget returned. Defaults to 0."
// @Param			limit	query	int		false	"Maximum number of budgets to return. Defaults to 50."
func (co Controller) GetBudgets(c *gin.Context) {
	var filter BudgetQueryFilter
	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, BudgetListResponse{
			Error: &s,
		})
		return
	}

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)
	where := filter.model()

	q := models.DB.
		Scopes(models.OwnedBy(owner(c))).
		Order("budgets.start_date ASC, budgets.name ASC").
		Where(&where, queryFields...)

	if !filter.Date.IsZero() {
		q = q.Where("budgets.start_date <= ? AND budgets.end_date >= ?", filter.Date, filter.Date)
	}

	q = q.Offset(int(filter.Offset))

	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit).Session(&gorm.Session{})

	var budgets []models.Budget
	err := q.Preload("Allocations", allocationOrder).Find(&budgets).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetListResponse{
			Error: &s,
		})
		return
	}

	data, err := withSpend(c, budgets)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetListResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusOK, BudgetListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get primary budget
// @Description	Returns the primary budget that contains today. The data is null when there is none.
// @Tags			Budgets
// @Produce		json
// @Success		200	{object}	BudgetResponse
// @Failure		500	{object}	BudgetResponse
// @Router			/v1/budgets/primary [get]
func (co Controller) GetPrimaryBudget(c *gin.Context) {
	budget, err := models.CurrentPrimary(models.DB, owner(c), types.Today())
	if errors.Is(err, models.ErrResourceNotFound) {
		c.JSON(http.StatusOK, BudgetResponse{})
		return
	}

	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &e,
		})
		return
	}

	data, err := withSpend(c, []models.Budget{budget})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &e,
		})
		return
	}

	c.JSON(http.StatusOK, BudgetResponse{Data: &data[0]})
}

// @Summary		Get budget
// @Description	Returns a specific budget with its spend
// @Tags			Budgets
// @Produce		json
// @Success		200	{object}	BudgetResponse
// @Failure		400	{object}	BudgetResponse
// @Failure		404	{object}	BudgetResponse
// @Failure		500	{object}	BudgetResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/budgets/{id} [get]
func (co Controller) GetBudget(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &e,
		})
		return
	}

	budget, err := budget(c, uri.ID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &e,
		})
		return
	}

	data, err := withSpend(c, []models.Budget{budget})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &e,
		})
		return
	}

	c.JSON(http.StatusOK, BudgetResponse{Data: &data[0]})
}

// @Summary		Update budget
// @Description	Updates an existing budget. Only values to be updated need to be specified. When allocations are specified, they replace all existing allocations.
// @Tags			Budgets
// @Accept			json
// @Produce		json
// @Success		200		{object}	BudgetResponse
// @Failure		400		{object}	BudgetResponse
// @Failure		404		{object}	BudgetResponse
// @Failure		500		{object}	BudgetResponse
// @Param			id		path		URIID			true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			budget	body		BudgetEditable	true	"Budget"
// @Router			/v1/budgets/{id} [patch]
func (co Controller) UpdateBudget(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &e,
		})
		return
	}

	budget, err := budget(c, uri.ID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &e,
		})
		return
	}

	// Get the fields that are set to be updated
	updateFields, err := httputil.GetBodyFields(c, BudgetEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &e,
		})
		return
	}

	var data BudgetEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &e,
		})
		return
	}

	if slices.Contains(updateFields, any("Name")) {
		budget.Name = data.Name
	}
	if slices.Contains(updateFields, any("StartDate")) {
		budget.StartDate = data.StartDate
	}
	if slices.Contains(updateFields, any("EndDate")) {
		budget.EndDate = data.EndDate
	}
	if slices.Contains(updateFields, any("Primary")) {
		budget.Primary = data.Primary
	}

	// nil keeps the existing allocations
	var replace []models.Allocation
	if slices.Contains(updateFields, any("Allocations")) {
		replace = allocations(data.Allocations)
	}

	err = budget.Update(models.DB, replace)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &e,
		})
		return
	}

	result, err := withSpend(c, []models.Budget{budget})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &e,
		})
		return
	}

	c.JSON(http.StatusOK, BudgetResponse{Data: &result[0]})
}

// @Summary		Delete budget
// @Description	Deletes a budget with its allocations and exclusions
// @Tags			Budgets
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/budgets/{id} [delete]
func (co Controller) DeleteBudget(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		fail(c, err)
		return
	}

	budget, err := budget(c, uri.ID)
	if err != nil {
		fail(c, err)
		return
	}

	err = models.DB.Delete(&budget).Error
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// @Summary		Get transactions of a budget category
// @Description	Returns the withdrawals of the category in the budget period, marking the ones excluded from the budget
// @Tags			Budgets
// @Produce		json
// @Success		200			{object}	BudgetTransactionListResponse
// @Failure		400			{object}	BudgetTransactionListResponse
// @Failure		404			{object}	BudgetTransactionListResponse
// @Failure		500			{object}	BudgetTransactionListResponse
// @Param			id			path		string	true	"ID of the budget"
// @Param			categoryId	path		string	true	"ID of the category"
// @Router			/v1/budgets/{id}/categories/{categoryId}/transactions [get]
func (co Controller) GetBudgetCategoryTransactions(c *gin.Context) {
	var uri BudgetCategoryURI
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetTransactionListResponse{
			Error: &e,
		})
		return
	}

	budget, err := budget(c, uri.ID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetTransactionListResponse{
			Error: &e,
		})
		return
	}

	var transactions []models.Transaction
	err = models.DB.
		Scopes(models.OwnedBy(owner(c)), models.Between(budget.StartDate.Time(), budget.EndDate.Time())).
		Where(&models.Transaction{Type: models.TransactionWithdrawal, Category: uri.CategoryID}).
		Order("transactions.date ASC, transactions.created_at ASC").
		Find(&transactions).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetTransactionListResponse{
			Error: &e,
		})
		return
	}

	ids := make([]uuid.UUID, 0, len(transactions))
	for _, t := range transactions {
		ids = append(ids, t.ID)
	}

	excluded, err := models.IsExcluded(models.DB, budget.ID, ids)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetTransactionListResponse{
			Error: &e,
		})
		return
	}

	data := make([]BudgetTransaction, 0, len(transactions))
	for _, t := range transactions {
		data = append(data, BudgetTransaction{
			ID:          t.ID,
			Description: t.Description,
			Amount:      t.Amount,
			Date:        types.DateOf(t.Date),
			Excluded:    excluded[t.ID],
		})
	}

	c.JSON(http.StatusOK, BudgetTransactionListResponse{Data: data})
}

// @Summary		Toggle exclusion
// @Description	Excludes the transaction from the spend of the budget, or includes it again when it is excluded already. The transaction must be dated within the budget period.
// @Tags			Budgets
// @Produce		json
// @Success		200				{object}	ExclusionToggleResponse
// @Failure		400				{object}	ExclusionToggleResponse
// @Failure		404				{object}	ExclusionToggleResponse
// @Failure		500				{object}	ExclusionToggleResponse
// @Param			id				path		string	true	"ID of the budget"
// @Param			transactionId	path		string	true	"ID of the transaction"
// @Router			/v1/budgets/{id}/transactions/{transactionId}/toggle-exclusion [post]
func (co Controller) ToggleExclusion(c *gin.Context) {
	var uri BudgetTransactionURI
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ExclusionToggleResponse{
			Error: &e,
		})
		return
	}

	excluded, err := models.ToggleExclusion(models.DB, owner(c), uri.ID.UUID, uri.TransactionID.UUID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ExclusionToggleResponse{
			Error: &e,
		})
		return
	}

	toggle := ExclusionToggle{
		BudgetID:      uri.ID.UUID,
		TransactionID: uri.TransactionID.UUID,
		Excluded:      excluded,
	}
	co.notify(c, events.New(events.ExclusionToggled, owner(c), toggle))

	c.JSON(http.StatusOK, ExclusionToggleResponse{Data: &toggle})
}

// notify publishes the event without tying it to the request lifetime
func (co Controller) notify(c *gin.Context, e events.Event) {
	events.Notify(context.WithoutCancel(c.Request.Context()), co.Events, e)
}
