package v1

import (
	"fmt"
	"net/http"

	"github.com/budgeter/backend/internal/httputil"
	"github.com/budgeter/backend/internal/models"
	ez_uuid "github.com/budgeter/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

type AccountEditable struct {
	Name        string             `json:"name" example:"Checking" default:""`                                            // Name of the account
	Type        models.AccountType `json:"type" example:"checking" enums:"checking,savings,credit_card,investment,other"` // Type of the account
	Balance     decimal.Decimal    `json:"balance" example:"2731.44" minimum:"0" default:"0"`                             // Current balance
	Institution string             `json:"institution" example:"First Platypus Bank" default:""`                          // Institution holding the account
}

// model returns the database resource for the API representation of the editable fields
func (editable AccountEditable) model(owner uuid.UUID) models.Account {
	return models.Account{
		Owned:       models.Owned{OwnerID: owner},
		Name:        editable.Name,
		Type:        editable.Type,
		Balance:     editable.Balance,
		Institution: editable.Institution,
		Active:      true,
	}
}

type AccountLinks struct {
	Self         string `json:"self" example:"https://example.com/api/v1/accounts/af92e0a4-4ba5-4ad8-a3cd-8d1f7c3b8b52"`                     // The account itself
	Transactions string `json:"transactions" example:"https://example.com/api/v1/transactions?account=af92e0a4-4ba5-4ad8-a3cd-8d1f7c3b8b52"` // Transactions of the account
}

type Account struct {
	models.DefaultModel
	OwnerID uuid.UUID `json:"ownerId" example:"00000000-0000-4000-8000-000000000001"` // ID of the owner
	AccountEditable
	Active       bool         `json:"active" example:"true"`                                       // Inactive accounts have been deleted, their transactions are kept
	LinkedItemID *uuid.UUID   `json:"linkedItemId" example:"a7e0d2a4-39f4-4a0e-a7f3-bf6a2f3b1c9e"` // ID of the linked bank item for mirrored accounts
	Links        AccountLinks `json:"links"`
}

func newAccount(c *gin.Context, model models.Account) Account {
	return Account{
		DefaultModel: model.DefaultModel,
		OwnerID:      model.OwnerID,
		AccountEditable: AccountEditable{
			Name:        model.Name,
			Type:        model.Type,
			Balance:     model.Balance,
			Institution: model.Institution,
		},
		Active:       model.Active,
		LinkedItemID: model.LinkedItemID,
		Links: AccountLinks{
			Self:         fmt.Sprintf("%s/v1/accounts/%s", url(c), model.ID),
			Transactions: fmt.Sprintf("%s/v1/transactions?account=%s", url(c), model.ID),
		},
	}
}

type AccountListResponse struct {
	Data  []Account `json:"data"`                                                          // List of accounts
	Error *string   `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type AccountResponse struct {
	Error *string  `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  *Account `json:"data"`                                                          // The account
}

type AccountQueryFilter struct {
	Type   models.AccountType `form:"type"`                       // Type of the account
	Active bool               `form:"active"`                     // Is the account active?
	Name   string             `form:"name"`                       // By name
	Linked bool               `form:"linked" filterField:"false"` // Is the account mirrored from a linked bank item?
}

func (f AccountQueryFilter) model() models.Account {
	return models.Account{
		Type:   f.Type,
		Active: f.Active,
		Name:   f.Name,
	}
}

func (co Controller) RegisterAccountRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", co.OptionsAccounts)
		r.GET("", co.GetAccounts)
		r.POST("", co.CreateAccount)
	}
	{
		r.OPTIONS("/:id", co.OptionsAccountDetail)
		r.GET("/:id", co.GetAccount)
		r.PATCH("/:id", co.UpdateAccount)
		r.DELETE("/:id", co.DeleteAccount)
	}
}

func account(c *gin.Context, id ez_uuid.UUID) (models.Account, error) {
	var account models.Account
	err := models.DB.Scopes(models.OwnedBy(owner(c)), models.ByID(id.UUID)).First(&account).Error
	return account, err
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Accounts
// @Success		204
// @Router			/v1/accounts [options]
func (co Controller) OptionsAccounts(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Accounts
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/accounts/{id} [options]
func (co Controller) OptionsAccountDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		fail(c, err)
		return
	}

	_, err = account(c, uri.ID)
	if err != nil {
		fail(c, err)
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create account
// @Description	Creates a new account
// @Tags			Accounts
// @Accept			json
// @Produce		json
// @Success		201		{object}	AccountResponse
// @Failure		400		{object}	AccountResponse
// @Failure		500		{object}	AccountResponse
// @Param			account	body		AccountEditable	true	"Account"
// @Router			/v1/accounts [post]
func (co Controller) CreateAccount(c *gin.Context) {
	var data AccountEditable
	err := httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AccountResponse{Error: &e})
		return
	}

	account := data.model(owner(c))
	err = models.DB.Create(&account).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AccountResponse{Error: &e})
		return
	}

	result := newAccount(c, account)
	c.JSON(http.StatusCreated, AccountResponse{Data: &result})
}

// @Summary		Get accounts
// @Description	Returns the accounts, ordered by name
// @Tags			Accounts
// @Produce		json
// @Success		200		{object}	AccountListResponse
// @Failure		400		{object}	AccountListResponse
// @Failure		500		{object}	AccountListResponse
// @Param			type	query		string	false	"Filter by type"
// @Param			active	query		bool	false	"Is the account active?"
// @Param			name	query		string	false	"Filter by name"
// @Param			linked	query		bool	false	"Is the account mirrored from a linked bank item?"
// @Router			/v1/accounts [get]
func (co Controller) GetAccounts(c *gin.Context) {
	var filter AccountQueryFilter
	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, AccountListResponse{Error: &s})
		return
	}

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)
	where := filter.model()

	q := models.DB.
		Scopes(models.OwnedBy(owner(c))).
		Order("accounts.name ASC").
		Where(&where, queryFields...)

	if slices.Contains(setFields, "Linked") {
		if filter.Linked {
			q = q.Where("accounts.linked_item_id IS NOT NULL")
		} else {
			q = q.Where("accounts.linked_item_id IS NULL")
		}
	}

	var accounts []models.Account
	err := q.Find(&accounts).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AccountListResponse{Error: &s})
		return
	}

	data := make([]Account, 0, len(accounts))
	for _, a := range accounts {
		data = append(data, newAccount(c, a))
	}

	c.JSON(http.StatusOK, AccountListResponse{Data: data})
}

// @Summary		Get account
// @Description	Returns a specific account
// @Tags			Accounts
// @Produce		json
// @Success		200	{object}	AccountResponse
// @Failure		400	{object}	AccountResponse
// @Failure		404	{object}	AccountResponse
// @Failure		500	{object}	AccountResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/accounts/{id} [get]
func (co Controller) GetAccount(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AccountResponse{Error: &e})
		return
	}

	account, err := account(c, uri.ID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AccountResponse{Error: &e})
		return
	}

	result := newAccount(c, account)
	c.JSON(http.StatusOK, AccountResponse{Data: &result})
}

// @Summary		Update account
// @Description	Updates an existing account. Only values to be updated need to be specified.
// @Tags			Accounts
// @Accept			json
// @Produce		json
// @Success		200		{object}	AccountResponse
// @Failure		400		{object}	AccountResponse
// @Failure		404		{object}	AccountResponse
// @Failure		500		{object}	AccountResponse
// @Param			id		path		URIID			true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			account	body		AccountEditable	true	"Account"
// @Router			/v1/accounts/{id} [patch]
func (co Controller) UpdateAccount(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AccountResponse{Error: &e})
		return
	}

	account, err := account(c, uri.ID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AccountResponse{Error: &e})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, AccountEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AccountResponse{Error: &e})
		return
	}

	var data AccountEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AccountResponse{Error: &e})
		return
	}

	patch := data.model(owner(c))
	apply(&account, &patch, updateFields)

	err = models.DB.Save(&account).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AccountResponse{Error: &e})
		return
	}

	result := newAccount(c, account)
	c.JSON(http.StatusOK, AccountResponse{Data: &result})
}

// @Summary		Delete account
// @Description	Deactivates an account. Its transactions are kept.
// @Tags			Accounts
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/accounts/{id} [delete]
func (co Controller) DeleteAccount(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		fail(c, err)
		return
	}

	account, err := account(c, uri.ID)
	if err != nil {
		fail(c, err)
		return
	}

	err = account.Deactivate(models.DB)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
