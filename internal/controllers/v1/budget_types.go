package v1

import (
	"fmt"

	"github.com/budgeter/backend/internal/budgeting"
	"github.com/budgeter/backend/internal/category"
	"github.com/budgeter/backend/internal/models"
	"github.com/budgeter/backend/internal/types"
	ez_uuid "github.com/budgeter/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AllocationEditable struct {
	CategoryID string          `json:"categoryId" example:"groceries"`                                                                         // ID of the category from the catalog
	Budgeted   decimal.Decimal `json:"budgeted" example:"400" minimum:"0" maximum:"999999999999.99999999" multipleOf:"0.00000001" default:"0"` // Amount budgeted for the category
}

type BudgetEditable struct {
	Name        string               `json:"name" example:"January 2025" default:""` // Name of the budget
	StartDate   types.Date           `json:"startDate" example:"2025-01-01"`         // First day of the budget
	EndDate     types.Date           `json:"endDate" example:"2025-01-31"`           // Last day of the budget
	Primary     bool                 `json:"primary" example:"true" default:"false"` // Primary budgets of an owner must not overlap
	Allocations []AllocationEditable `json:"allocations"`                            // Amounts budgeted per category
}

// model returns the database resource for the API representation of the editable fields
func (editable BudgetEditable) model(owner uuid.UUID) models.Budget {
	return models.Budget{
		Owned:       models.Owned{OwnerID: owner},
		Name:        editable.Name,
		StartDate:   editable.StartDate,
		EndDate:     editable.EndDate,
		Primary:     editable.Primary,
		Allocations: allocations(editable.Allocations),
	}
}

// allocations converts the allocations. The result is never nil.
func allocations(editable []AllocationEditable) []models.Allocation {
	allocations := make([]models.Allocation, 0, len(editable))
	for _, a := range editable {
		allocations = append(allocations, models.Allocation{CategoryID: a.CategoryID, Budgeted: a.Budgeted})
	}

	return allocations
}

type Spending struct {
	CategoryID string          `json:"categoryId" example:"groceries"` // ID of the category
	Label      string          `json:"label" example:"Groceries"`      // Label of the category
	Budgeted   decimal.Decimal `json:"budgeted" example:"400"`         // Amount budgeted
	Spent      decimal.Decimal `json:"spent" example:"123.45"`         // Amount spent within the budget period
	Remaining  decimal.Decimal `json:"remaining" example:"276.55"`     // Amount budgeted, but not spent
}

type BudgetLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/budgets/550dc009-cea6-4c12-b2a5-03446eb7b7cf"` // The budget itself
}

type Budget struct {
	models.DefaultModel
	OwnerID uuid.UUID `json:"ownerId" example:"00000000-0000-4000-8000-000000000001"` // ID of the owner
	BudgetEditable
	Spend         []Spending      `json:"spend"`                        // Spend per allocated category, ordered like the catalog
	TotalBudgeted decimal.Decimal `json:"totalBudgeted" example:"2100"` // Sum of all allocations
	TotalSpent    decimal.Decimal `json:"totalSpent" example:"1490.10"` // Sum of the spend of all allocations
	Links         BudgetLinks     `json:"links"`
}

// newBudget returns the API v1 representation of the resource
func newBudget(c *gin.Context, model models.Budget, spend []budgeting.Spending) Budget {
	allocations := make([]AllocationEditable, 0, len(model.Allocations))
	for _, a := range model.Allocations {
		allocations = append(allocations, AllocationEditable{CategoryID: a.CategoryID, Budgeted: a.Budgeted})
	}

	data := make([]Spending, 0, len(spend))
	for _, s := range spend {
		data = append(data, Spending{
			CategoryID: s.CategoryID,
			Label:      category.LabelOf(s.CategoryID),
			Budgeted:   s.Budgeted,
			Spent:      s.Spent,
			Remaining:  s.Budgeted.Sub(s.Spent),
		})
	}
	budgeted, spent := budgeting.Totals(spend)

	return Budget{
		DefaultModel: model.DefaultModel,
		OwnerID:      model.OwnerID,
		BudgetEditable: BudgetEditable{
			Name:        model.Name,
			StartDate:   model.StartDate,
			EndDate:     model.EndDate,
			Primary:     model.Primary,
			Allocations: allocations,
		},
		Spend:         data,
		TotalBudgeted: budgeted,
		TotalSpent:    spent,
		Links: BudgetLinks{
			Self: fmt.Sprintf("%s/v1/budgets/%s", url(c), model.ID),
		},
	}
}

type BudgetListResponse struct {
	Data       []Budget    `json:"data"`                                                          // List of resources
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type BudgetCreateResponse struct {
	Error *string          `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []BudgetResponse `json:"data"`                                                          // List of created resources
}

func (b *BudgetCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	b.Data = append(b.Data, BudgetResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type BudgetResponse struct {
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  *Budget `json:"data"`                                                          // The resource
}

type BudgetQueryFilter struct {
	Name    string     `form:"name"`                       // By name
	Primary bool       `form:"primary"`                    // Is the budget primary?
	Date    types.Date `form:"date" filterField:"false"`   // Budgets containing this day
	Offset  uint       `form:"offset" filterField:"false"` // The offset of the first resource returned
	Limit   int        `form:"limit" filterField:"false"`  // Maximum number of resources to return
}

func (f BudgetQueryFilter) model() models.Budget {
	return models.Budget{
		Name:    f.Name,
		Primary: f.Primary,
	}
}

type BudgetTransaction struct {
	ID          uuid.UUID       `json:"id" example:"0f2b2a8c-8c4e-4c4d-9f25-0c1c4d64f3a6"` // ID of the transaction
	Description string          `json:"description" example:"Farmers market"`              // Description of the transaction
	Amount      decimal.Decimal `json:"amount" example:"23.50"`                            // Amount of the transaction
	Date        types.Date      `json:"date" example:"2025-01-11"`                         // Day of the transaction
	Excluded    bool            `json:"excluded" example:"false"`                          // Is the transaction excluded from the spend of the budget?
}

type BudgetTransactionListResponse struct {
	Data  []BudgetTransaction `json:"data"`                                                          // Transactions of the category in the budget period
	Error *string             `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type BudgetTransactionURI struct {
	ID            ez_uuid.UUID `uri:"id" binding:"required" format:"UUID"`            // ID of the budget
	TransactionID ez_uuid.UUID `uri:"transactionId" binding:"required" format:"UUID"` // ID of the transaction
}

type BudgetCategoryURI struct {
	ID         ez_uuid.UUID `uri:"id" binding:"required" format:"UUID"` // ID of the budget
	CategoryID string       `uri:"categoryId" binding:"required"`       // ID of the category
}

type ExclusionToggle struct {
	BudgetID      uuid.UUID `json:"budgetId" example:"550dc009-cea6-4c12-b2a5-03446eb7b7cf"`      // ID of the budget
	TransactionID uuid.UUID `json:"transactionId" example:"0f2b2a8c-8c4e-4c4d-9f25-0c1c4d64f3a6"` // ID of the transaction
	Excluded      bool      `json:"excluded" example:"true"`                                      // Is the transaction excluded after the toggle?
}

type ExclusionToggleResponse struct {
	Error *string          `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  *ExclusionToggle `json:"data"`                                                          // The state after the toggle
}
