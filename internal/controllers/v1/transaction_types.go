package v1

import (
	"fmt"

	"github.com/budgeter/backend/internal/models"
	"github.com/budgeter/backend/internal/types"
	ez_uuid "github.com/budgeter/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionEditable struct {
	Type        models.TransactionType `json:"type" example:"withdrawal" enums:"withdrawal,deposit"`                                                // Direction of the transaction
	Amount      decimal.Decimal        `json:"amount" example:"14.03" minimum:"0.00000001" maximum:"999999999999.99999999" multipleOf:"0.00000001"` // The amount of the transaction
	Category    string                 `json:"category" example:"groceries" default:"miscellaneous"`                                                // ID of the category. IDs not in the catalog are kept as sent
	Description string                 `json:"description" example:"Farmers market" default:""`                                                     // A description of the transaction
	Date        types.Date             `json:"date" example:"2025-01-11"`                                                                           // Day of the transaction
	AccountID   *uuid.UUID             `json:"accountId" example:"fd81dc45-a3a2-468e-a6fa-b2618f30aa45"`                                            // ID of the account the transaction belongs to
}

// model returns the database resource for the API representation of the editable fields
func (editable TransactionEditable) model(owner uuid.UUID) models.Transaction {
	return models.Transaction{
		Owned:       models.Owned{OwnerID: owner},
		Type:        editable.Type,
		Amount:      editable.Amount,
		Category:    editable.Category,
		Description: editable.Description,
		Date:        editable.Date.Time(),
		AccountID:   editable.AccountID,
	}
}

type TransactionLinks struct {
	Self    string `json:"self" example:"https://example.com/api/v1/transactions/d430d7c3-d14c-4712-9336-ee56965a6673"` // The transaction itself
	Account string `json:"account" example:"https://example.com/api/v1/accounts/fd81dc45-a3a2-468e-a6fa-b2618f30aa45"`  // The account of the transaction, empty when it has none
}

type Transaction struct {
	models.DefaultModel
	OwnerID uuid.UUID `json:"ownerId" example:"00000000-0000-4000-8000-000000000001"` // ID of the owner
	TransactionEditable
	ImportHash string           `json:"importHash" example:"867e3a26dc0baf73f4bff506f31a97f6c32088917e9e5cf1a5ed6f3f84a6fa70"` // Hash used to detect duplicates on import, empty for transactions not imported
	Links      TransactionLinks `json:"links"`
}

// newTransaction returns the API v1 representation of the resource
func newTransaction(c *gin.Context, model models.Transaction) Transaction {
	links := TransactionLinks{
		Self: fmt.Sprintf("%s/v1/transactions/%s", url(c), model.ID),
	}

	if model.AccountID != nil {
		links.Account = fmt.Sprintf("%s/v1/accounts/%s", url(c), model.AccountID)
	}

	return Transaction{
		DefaultModel: model.DefaultModel,
		OwnerID:      model.OwnerID,
		TransactionEditable: TransactionEditable{
			Type:        model.Type,
			Amount:      model.Amount,
			Category:    model.Category,
			Description: model.Description,
			Date:        types.DateOf(model.Date),
			AccountID:   model.AccountID,
		},
		ImportHash: model.ImportHash,
		Links:      links,
	}
}

type TransactionListResponse struct {
	Data       []Transaction `json:"data"`                                                          // List of transactions
	Error      *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination   `json:"pagination"`                                                    // Pagination information
}

type TransactionCreateResponse struct {
	Error *string               `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []TransactionResponse `json:"data"`                                                          // List of created transactions
}

func (t *TransactionCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, TransactionResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type TransactionResponse struct {
	Error *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  *Transaction `json:"data"`                                                          // The transaction data, if creation was successful
}

type TransactionQueryFilter struct {
	Type              models.TransactionType `form:"type"`                                  // Direction of the transaction
	Category          string                 `form:"category"`                              // Category of the transaction
	AccountID         ez_uuid.UUID           `form:"account" filterField:"false"`           // ID of the account
	FromDate          types.Date             `form:"fromDate" filterField:"false"`          // Transactions on and after this day
	UntilDate         types.Date             `form:"untilDate" filterField:"false"`         // Transactions on and before this day
	AmountLessOrEqual decimal.Decimal        `form:"amountLessOrEqual" filterField:"false"` // Amount less than or equal to this
	AmountMoreOrEqual decimal.Decimal        `form:"amountMoreOrEqual" filterField:"false"` // Amount more than or equal to this
	Search            string                 `form:"search" filterField:"false"`            // By string in the description
	Offset            uint                   `form:"offset" filterField:"false"`            // The offset of the first transaction returned
	Limit             int                    `form:"limit" filterField:"false"`             // Maximum number of transactions to return
}

func (f TransactionQueryFilter) model() models.Transaction {
	return models.Transaction{
		Type:     f.Type,
		Category: f.Category,
	}
}

type TransactionBulkDelete struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1"` // IDs of the transactions to delete
}
