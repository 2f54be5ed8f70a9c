package v1

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/budgeter/backend/internal/bank"
	"github.com/budgeter/backend/internal/httputil"
	"github.com/budgeter/backend/internal/models"
	ez_uuid "github.com/budgeter/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LinkedItemCreate struct {
	PublicToken     string `json:"publicToken" binding:"required" example:"public-sandbox-5c224a01-8314-4491-a06f-39e193d5cddc"` // Public token from the link flow
	InstitutionName string `json:"institutionName" example:"First Platypus Bank"`                                                // Name of the institution
}

type LinkedItemLinks struct {
	Self     string `json:"self" example:"https://example.com/api/v1/linked-items/a7e0d2a4-39f4-4a0e-a7f3-bf6a2f3b1c9e"` // The linked item itself
	Accounts string `json:"accounts" example:"https://example.com/api/v1/accounts?linked=true"`                          // Accounts mirrored from linked items
	Sync     string `json:"sync" example:"https://example.com/api/v1/linked-items/sync"`                                 // Sync transactions of all linked items
	Balances string `json:"balances" example:"https://example.com/api/v1/linked-items/balances"`                         // Balances of all linked items
}

// LinkedItem is the API representation of a linked item. The access token never leaves the server.
type LinkedItem struct {
	models.DefaultModel
	OwnerID         uuid.UUID       `json:"ownerId" example:"00000000-0000-4000-8000-000000000001"` // ID of the owner
	ItemID          string          `json:"itemId" example:"eVBnVMp7zdTJLkRNr33Rs6zr7KNJqBFL9DrE6"` // ID of the item at the bank integration
	InstitutionName string          `json:"institutionName" example:"First Platypus Bank"`          // Name of the institution
	LastSyncedAt    *time.Time      `json:"lastSyncedAt" example:"2025-03-01T08:12:44Z"`            // Time of the last successful sync
	Links           LinkedItemLinks `json:"links"`
}

func newLinkedItem(c *gin.Context, model models.LinkedItem) LinkedItem {
	return LinkedItem{
		DefaultModel:    model.DefaultModel,
		OwnerID:         model.OwnerID,
		ItemID:          model.ItemID,
		InstitutionName: model.InstitutionName,
		LastSyncedAt:    model.LastSyncedAt,
		Links: LinkedItemLinks{
			Self:     fmt.Sprintf("%s/v1/linked-items/%s", url(c), model.ID),
			Accounts: fmt.Sprintf("%s/v1/accounts?linked=true", url(c)),
			Sync:     fmt.Sprintf("%s/v1/linked-items/sync", url(c)),
			Balances: fmt.Sprintf("%s/v1/linked-items/balances", url(c)),
		},
	}
}

type LinkedItemListResponse struct {
	Data  []LinkedItem `json:"data"`                                                // List of linked items
	Error *string      `json:"error" example:"the bank integration is not enabled"` // The error, if any occurred
}

type LinkedItemResponse struct {
	Error *string     `json:"error" example:"the bank item is already linked"` // The error, if any occurred
	Data  *LinkedItem `json:"data"`                                            // The linked item
}

type LinkToken struct {
	LinkToken string `json:"linkToken" example:"link-sandbox-af1a0311-da53-4636-b754-dd15cc058176"` // Token to start the link flow with
}

type LinkTokenResponse struct {
	Error *string    `json:"error" example:"the bank integration is not enabled"` // The error, if any occurred
	Data  *LinkToken `json:"data"`                                                // The link token
}

type BalancesResponse struct {
	Error *string             `json:"error" example:"there are no linked bank items"` // The error, if any occurred
	Data  []bank.ItemBalances `json:"data"`                                           // Balances per linked item
}

type SyncResponse struct {
	Error *string          `json:"error" example:"there are no linked bank items"` // The error, if any occurred
	Data  *bank.SyncResult `json:"data"`                                           // What the sync did
}

func (co Controller) RegisterLinkedItemRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", co.OptionsLinkedItems)
		r.GET("", co.GetLinkedItems)
		r.POST("", co.CreateLinkedItem)
	}
	{
		r.OPTIONS("/link-token", co.OptionsLinkToken)
		r.POST("/link-token", co.CreateLinkToken)
	}
	{
		r.OPTIONS("/balances", co.OptionsBalances)
		r.GET("/balances", co.GetBalances)
	}
	{
		r.OPTIONS("/sync", co.OptionsSync)
		r.POST("/sync", co.SyncLinkedItems)
	}
	{
		r.OPTIONS("/:id", co.OptionsLinkedItemDetail)
		r.DELETE("/:id", co.DeleteLinkedItem)
	}
}

// bankStatus returns the status for errors of the bank integration. Errors
// not known to the application come from the bank.
func bankStatus(err error) int {
	if errors.Is(err, models.ErrValidation) {
		return http.StatusBadRequest
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	if errors.Is(err, bank.ErrDisabled) {
		return http.StatusServiceUnavailable
	}

	if errors.Is(err, models.ErrGeneral) || errors.Is(err, bank.ErrSealBroken) {
		return http.StatusInternalServerError
	}

	return http.StatusBadGateway
}

// enabled writes an error and returns false when the bank integration is disabled.
func (co Controller) enabled(c *gin.Context) bool {
	if co.Bank != nil {
		return true
	}

	fail(c, bank.ErrDisabled)
	return false
}

func linkedItem(c *gin.Context, id ez_uuid.UUID) (models.LinkedItem, error) {
	var item models.LinkedItem
	err := models.DB.Where(&models.LinkedItem{OwnerID: owner(c)}).Scopes(models.ByID(id.UUID)).First(&item).Error
	return item, err
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Linked Items
// @Success		204
// @Router			/v1/linked-items [options]
func (co Controller) OptionsLinkedItems(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Linked Items
// @Success		204
// @Router			/v1/linked-items/link-token [options]
func (co Controller) OptionsLinkToken(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Linked Items
// @Success		204
// @Router			/v1/linked-items/balances [options]
func (co Controller) OptionsBalances(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Linked Items
// @Success		204
// @Router			/v1/linked-items/sync [options]
func (co Controller) OptionsSync(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Linked Items
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/linked-items/{id} [options]
func (co Controller) OptionsLinkedItemDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		fail(c, err)
		return
	}

	_, err = linkedItem(c, uri.ID)
	if err != nil {
		fail(c, err)
		return
	}

	httputil.OptionsDelete(c)
}

// @Summary		Get linked items
// @Description	Returns the linked bank items
// @Tags			Linked Items
// @Produce		json
// @Success		200	{object}	LinkedItemListResponse
// @Failure		500	{object}	LinkedItemListResponse
// @Failure		503	{object}	LinkedItemListResponse
// @Router			/v1/linked-items [get]
func (co Controller) GetLinkedItems(c *gin.Context) {
	if !co.enabled(c) {
		return
	}

	var items []models.LinkedItem
	err := models.DB.Where(&models.LinkedItem{OwnerID: owner(c)}).Order("created_at").Find(&items).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LinkedItemListResponse{Error: &e})
		return
	}

	data := make([]LinkedItem, 0, len(items))
	for _, i := range items {
		data = append(data, newLinkedItem(c, i))
	}

	c.JSON(http.StatusOK, LinkedItemListResponse{Data: data})
}

// @Summary		Link bank item
// @Description	Exchanges the public token of a finished link flow and stores the linked item
// @Tags			Linked Items
// @Accept			json
// @Produce		json
// @Success		201		{object}	LinkedItemResponse
// @Failure		400		{object}	LinkedItemResponse
// @Failure		500		{object}	LinkedItemResponse
// @Failure		502		{object}	LinkedItemResponse
// @Failure		503		{object}	LinkedItemResponse
// @Param			item	body		LinkedItemCreate	true	"Public token"
// @Router			/v1/linked-items [post]
func (co Controller) CreateLinkedItem(c *gin.Context) {
	if !co.enabled(c) {
		return
	}

	var data LinkedItemCreate
	err := httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), LinkedItemResponse{Error: &e})
		return
	}

	item, err := co.Bank.Link(c.Request.Context(), models.DB, owner(c), data.PublicToken, data.InstitutionName)
	if err != nil {
		e := err.Error()
		c.JSON(bankStatus(err), LinkedItemResponse{Error: &e})
		return
	}

	result := newLinkedItem(c, item)
	c.JSON(http.StatusCreated, LinkedItemResponse{Data: &result})
}

// @Summary		Unlink bank item
// @Description	Deletes a linked item. The mirrored accounts and their transactions are kept as local accounts.
// @Tags			Linked Items
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Failure		503	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/linked-items/{id} [delete]
func (co Controller) DeleteLinkedItem(c *gin.Context) {
	if !co.enabled(c) {
		return
	}

	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		fail(c, err)
		return
	}

	item, err := linkedItem(c, uri.ID)
	if err != nil {
		fail(c, err)
		return
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Account{}).
			Where(&models.Account{LinkedItemID: &item.ID}).
			Updates(map[string]any{"linked_item_id": nil, "external_id": ""}).Error
		if err != nil {
			return err
		}

		return tx.Delete(&item).Error
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// @Summary		Create link token
// @Description	Creates a token to start the link flow of the bank integration with
// @Tags			Linked Items
// @Produce		json
// @Success		201	{object}	LinkTokenResponse
// @Failure		502	{object}	LinkTokenResponse
// @Failure		503	{object}	LinkTokenResponse
// @Router			/v1/linked-items/link-token [post]
func (co Controller) CreateLinkToken(c *gin.Context) {
	if !co.enabled(c) {
		return
	}

	token, err := co.Bank.LinkToken(c.Request.Context(), owner(c))
	if err != nil {
		e := err.Error()
		c.JSON(bankStatus(err), LinkTokenResponse{Error: &e})
		return
	}

	c.JSON(http.StatusCreated, LinkTokenResponse{Data: &LinkToken{LinkToken: token}})
}

// @Summary		Get balances
// @Description	Returns the current balances of all accounts of all linked items. Local accounts mirroring them are updated.
// @Tags			Linked Items
// @Produce		json
// @Success		200	{object}	BalancesResponse
// @Failure		400	{object}	BalancesResponse
// @Failure		500	{object}	BalancesResponse
// @Failure		502	{object}	BalancesResponse
// @Failure		503	{object}	BalancesResponse
// @Router			/v1/linked-items/balances [get]
func (co Controller) GetBalances(c *gin.Context) {
	if !co.enabled(c) {
		return
	}

	balances, err := co.Bank.Balances(c.Request.Context(), models.DB, owner(c))
	if err != nil {
		e := err.Error()
		c.JSON(bankStatus(err), BalancesResponse{Error: &e})
		return
	}

	c.JSON(http.StatusOK, BalancesResponse{Data: balances})
}

// @Summary		Sync transactions
// @Description	Imports the transactions of all linked items. Transactions imported before are skipped.
// @Tags			Linked Items
// @Produce		json
// @Success		200	{object}	SyncResponse
// @Failure		400	{object}	SyncResponse
// @Failure		500	{object}	SyncResponse
// @Failure		502	{object}	SyncResponse
// @Failure		503	{object}	SyncResponse
// @Router			/v1/linked-items/sync [post]
func (co Controller) SyncLinkedItems(c *gin.Context) {
	if !co.enabled(c) {
		return
	}

	result, err := co.Bank.Sync(c.Request.Context(), models.DB, owner(c))
	if err != nil {
		e := err.Error()
		c.JSON(bankStatus(err), SyncResponse{Error: &e})
		return
	}

	if result.Unmatched == nil {
		result.Unmatched = []string{}
	}

	c.JSON(http.StatusOK, SyncResponse{Data: &result})
}
