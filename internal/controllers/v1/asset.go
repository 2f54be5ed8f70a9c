package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/budgeter/backend/internal/httputil"
	"github.com/budgeter/backend/internal/models"
	ez_uuid "github.com/budgeter/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AssetEditable struct {
	Name                string           `json:"name" example:"House" default:""`                                               // Name of the asset
	Type                models.AssetType `json:"type" example:"property" enums:"property,automobile,collectibles,other"`        // Type of the asset
	Valuation           decimal.Decimal  `json:"valuation" example:"420000" minimum:"0"`                                        // Estimated value of the whole asset
	OwnershipPercentage *decimal.Decimal `json:"ownershipPercentage" example:"50" minimum:"0.0001" maximum:"100" default:"100"` // Share of the asset owned, in percent
	Note                string           `json:"note" example:"Appraised in March" default:""`                                  // A note about the asset
}

// model returns the database resource for the API representation of the editable fields
func (editable AssetEditable) model(owner uuid.UUID) models.Asset {
	ownership := decimal.NewFromInt(100)
	if editable.OwnershipPercentage != nil {
		ownership = *editable.OwnershipPercentage
	}

	return models.Asset{
		Owned:               models.Owned{OwnerID: owner},
		Name:                editable.Name,
		Type:                editable.Type,
		Valuation:           editable.Valuation,
		OwnershipPercentage: ownership,
		Note:                editable.Note,
	}
}

type AssetLinks struct {
	Self    string `json:"self" example:"https://example.com/api/v1/assets/1f5a5e3b-6a8a-4e62-9e47-0f8b9c3d6a11"`            // The asset itself
	History string `json:"history" example:"https://example.com/api/v1/assets/1f5a5e3b-6a8a-4e62-9e47-0f8b9c3d6a11/history"` // Past valuations of the asset
}

type Asset struct {
	models.DefaultModel
	OwnerID uuid.UUID `json:"ownerId" example:"00000000-0000-4000-8000-000000000001"` // ID of the owner
	AssetEditable
	OwnedValue decimal.Decimal `json:"ownedValue" example:"210000"` // Valuation times the ownership percentage
	Links      AssetLinks      `json:"links"`
}

func newAsset(c *gin.Context, model models.Asset) Asset {
	ownership := model.OwnershipPercentage

	return Asset{
		DefaultModel: model.DefaultModel,
		OwnerID:      model.OwnerID,
		AssetEditable: AssetEditable{
			Name:                model.Name,
			Type:                model.Type,
			Valuation:           model.Valuation,
			OwnershipPercentage: &ownership,
			Note:                model.Note,
		},
		OwnedValue: model.OwnedValue(),
		Links: AssetLinks{
			Self:    fmt.Sprintf("%s/v1/assets/%s", url(c), model.ID),
			History: fmt.Sprintf("%s/v1/assets/%s/history", url(c), model.ID),
		},
	}
}

type AssetListResponse struct {
	Data       []Asset         `json:"data"`                                                          // List of assets
	TotalValue decimal.Decimal `json:"totalValue" example:"235000"`                                   // Sum of the owned value of all assets
	Error      *string         `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type AssetResponse struct {
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  *Asset  `json:"data"`                                                          // The asset
}

type AssetHistoryEntry struct {
	Valuation           decimal.Decimal `json:"valuation" example:"400000"`                       // Valuation at the time
	OwnershipPercentage decimal.Decimal `json:"ownershipPercentage" example:"50"`                 // Ownership percentage at the time
	OwnedValue          decimal.Decimal `json:"ownedValue" example:"200000"`                      // Owned value at the time
	RecordedAt          time.Time       `json:"recordedAt" example:"2024-03-02T19:28:44.491514Z"` // Time the valuation was recorded
}

type AssetHistoryResponse struct {
	Data  []AssetHistoryEntry `json:"data"`                                                          // Valuations, oldest first
	Error *string             `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type AssetQueryFilter struct {
	Type models.AssetType `form:"type"` // Type of the asset
	Name string           `form:"name"` // By name
}

func (co Controller) RegisterAssetRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", co.OptionsAssets)
		r.GET("", co.GetAssets)
		r.POST("", co.CreateAsset)
	}
	{
		r.OPTIONS("/:id", co.OptionsAssetDetail)
		r.GET("/:id", co.GetAsset)
		r.PATCH("/:id", co.UpdateAsset)
		r.DELETE("/:id", co.DeleteAsset)
	}
	{
		r.OPTIONS("/:id/history", co.OptionsAssetHistory)
		r.GET("/:id/history", co.GetAssetHistory)
	}
}

func asset(c *gin.Context, id ez_uuid.UUID) (models.Asset, error) {
	var asset models.Asset
	err := models.DB.Scopes(models.OwnedBy(owner(c)), models.ByID(id.UUID)).First(&asset).Error
	return asset, err
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Assets
// @Success		204
// @Router			/v1/assets [options]
func (co Controller) OptionsAssets(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Assets
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/assets/{id} [options]
func (co Controller) OptionsAssetDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		fail(c, err)
		return
	}

	_, err = asset(c, uri.ID)
	if err != nil {
		fail(c, err)
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Assets
// @Success		204
// @Param			id	path	URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/assets/{id}/history [options]
func (co Controller) OptionsAssetHistory(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Create asset
// @Description	Creates a new asset. The ownership percentage defaults to 100.
// @Tags			Assets
// @Accept			json
// @Produce		json
// @Success		201		{object}	AssetResponse
// @Failure		400		{object}	AssetResponse
// @Failure		500		{object}	AssetResponse
// @Param			asset	body		AssetEditable	true	"Asset"
// @Router			/v1/assets [post]
func (co Controller) CreateAsset(c *gin.Context) {
	var data AssetEditable
	err := httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AssetResponse{Error: &e})
		return
	}

	asset := data.model(owner(c))
	err = models.DB.Create(&asset).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AssetResponse{Error: &e})
		return
	}

	result := newAsset(c, asset)
	c.JSON(http.StatusCreated, AssetResponse{Data: &result})
}

// @Summary		Get assets
// @Description	Returns the assets, ordered by name, and the sum of their owned value
// @Tags			Assets
// @Produce		json
// @Success		200		{object}	AssetListResponse
// @Failure		400		{object}	AssetListResponse
// @Failure		500		{object}	AssetListResponse
// @Param			type	query		string	false	"Filter by type"
// @Param			name	query		string	false	"Filter by name"
// @Router			/v1/assets [get]
func (co Controller) GetAssets(c *gin.Context) {
	var filter AssetQueryFilter
	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, AssetListResponse{Error: &s})
		return
	}

	queryFields, _ := httputil.GetURLFields(c.Request.URL, filter)

	var assets []models.Asset
	err := models.DB.
		Scopes(models.OwnedBy(owner(c))).
		Order("assets.name ASC").
		Where(&models.Asset{Type: filter.Type, Name: filter.Name}, queryFields...).
		Find(&assets).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AssetListResponse{Error: &s})
		return
	}

	total := decimal.Zero
	data := make([]Asset, 0, len(assets))
	for _, a := range assets {
		data = append(data, newAsset(c, a))
		total = total.Add(a.OwnedValue())
	}

	c.JSON(http.StatusOK, AssetListResponse{Data: data, TotalValue: total})
}

// @Summary		Get asset
// @Description	Returns a specific asset
// @Tags			Assets
// @Produce		json
// @Success		200	{object}	AssetResponse
// @Failure		400	{object}	AssetResponse
// @Failure		404	{object}	AssetResponse
// @Failure		500	{object}	AssetResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/assets/{id} [get]
func (co Controller) GetAsset(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AssetResponse{Error: &e})
		return
	}

	asset, err := asset(c, uri.ID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AssetResponse{Error: &e})
		return
	}

	result := newAsset(c, asset)
	c.JSON(http.StatusOK, AssetResponse{Data: &result})
}

// @Summary		Update asset
// @Description	Updates an existing asset. Only values to be updated need to be specified. Changes of valuation or ownership are recorded in the history.
// @Tags			Assets
// @Accept			json
// @Produce		json
// @Success		200		{object}	AssetResponse
// @Failure		400		{object}	AssetResponse
// @Failure		404		{object}	AssetResponse
// @Failure		500		{object}	AssetResponse
// @Param			id		path		URIID			true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			asset	body		AssetEditable	true	"Asset"
// @Router			/v1/assets/{id} [patch]
func (co Controller) UpdateAsset(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AssetResponse{Error: &e})
		return
	}

	asset, err := asset(c, uri.ID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AssetResponse{Error: &e})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, AssetEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AssetResponse{Error: &e})
		return
	}

	var data AssetEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AssetResponse{Error: &e})
		return
	}

	patch := data.model(owner(c))
	apply(&asset, &patch, updateFields)

	err = models.DB.Save(&asset).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AssetResponse{Error: &e})
		return
	}

	result := newAsset(c, asset)
	c.JSON(http.StatusOK, AssetResponse{Data: &result})
}

// @Summary		Delete asset
// @Description	Deletes an asset with its history
// @Tags			Assets
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/assets/{id} [delete]
func (co Controller) DeleteAsset(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		fail(c, err)
		return
	}

	asset, err := asset(c, uri.ID)
	if err != nil {
		fail(c, err)
		return
	}

	err = models.DB.Delete(&asset).Error
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// @Summary		Get asset history
// @Description	Returns the recorded valuations of an asset, oldest first
// @Tags			Assets
// @Produce		json
// @Success		200	{object}	AssetHistoryResponse
// @Failure		400	{object}	AssetHistoryResponse
// @Failure		404	{object}	AssetHistoryResponse
// @Failure		500	{object}	AssetHistoryResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/assets/{id}/history [get]
func (co Controller) GetAssetHistory(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AssetHistoryResponse{Error: &e})
		return
	}

	asset, err := asset(c, uri.ID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AssetHistoryResponse{Error: &e})
		return
	}

	var history []models.AssetHistory
	err = models.DB.
		Where(&models.AssetHistory{AssetID: asset.ID}).
		Order("asset_histories.recorded_at ASC").
		Find(&history).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AssetHistoryResponse{Error: &e})
		return
	}

	data := make([]AssetHistoryEntry, 0, len(history))
	for _, h := range history {
		data = append(data, AssetHistoryEntry{
			Valuation:           h.Valuation,
			OwnershipPercentage: h.OwnershipPercentage,
			OwnedValue:          models.Asset{Valuation: h.Valuation, OwnershipPercentage: h.OwnershipPercentage}.OwnedValue(),
			RecordedAt:          h.RecordedAt.In(time.UTC),
		})
	}

	c.JSON(http.StatusOK, AssetHistoryResponse{Data: data})
}
