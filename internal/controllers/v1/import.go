package v1

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/budgeter/backend/internal/events"
	"github.com/budgeter/backend/internal/httputil"
	"github.com/budgeter/backend/internal/importer"
	"github.com/budgeter/backend/internal/importer/parser/csvimport"
	"github.com/budgeter/backend/internal/models"
	"github.com/budgeter/backend/internal/types"
	ez_uuid "github.com/budgeter/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	errNoFilePost      = models.Validation("you must send a file to this endpoint")
	errWrongFileSuffix = models.Validation("the file must have the suffix .csv")
)

type ImportRecord struct {
	Type        models.TransactionType `json:"type" example:"withdrawal" enums:"withdrawal,deposit"`                 // Direction of the transaction
	Amount      decimal.Decimal        `json:"amount" example:"14.03"`                                               // The amount of the transaction
	Category    string                 `json:"category" example:"Food & Groceries"`                                  // Free text category, mapped to the catalog
	Description string                 `json:"description" example:"Farmers market"`                                 // A description of the transaction
	Date        types.Date             `json:"date" example:"2025-01-11"`                                            // Day of the transaction
	AccountID   *uuid.UUID             `json:"accountId" example:"fd81dc45-a3a2-468e-a6fa-b2618f30aa45"`             // ID of the account the transaction belongs to
	Reference   string                 `json:"reference" example:"lPNjeW1nR6CDn5okmGQ6hEpMo4lLNoSrzqDje" default:""` // Stable ID of the transaction at the source. Used for duplicate detection when set.
}

type ImportQuery struct {
	AccountID ez_uuid.UUID `form:"account"` // ID of the account for all transactions of a CSV upload
}

type ImportResult struct {
	Imported   []Transaction `json:"imported"`               // The created transactions
	Duplicates int           `json:"duplicates" example:"4"` // Number of records that were imported before
	Unmatched  []string      `json:"unmatched"`              // Category texts that did not match the catalog. Transactions for them are miscellaneous.
	Backfilled int64         `json:"backfilled" example:"0"` // Number of transactions whose category was updated by the backfill
}

type ImportResponse struct {
	Error *string       `json:"error" example:"the file must have the suffix .csv"` // The error, if any occurred
	Data  *ImportResult `json:"data"`                                               // The result of the import
}

func (co Controller) RegisterImportRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("/transactions", co.OptionsImportTransactions)
		r.POST("/transactions", co.ImportTransactions)
	}
}

// getUploadedFile returns the form file and handles potential errors.
func getUploadedFile(c *gin.Context, suffix string) (multipart.File, error) {
	formFile, err := c.FormFile("file")
	if formFile == nil {
		return nil, errNoFilePost
	}

	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(formFile.Filename, suffix) {
		return nil, errWrongFileSuffix
	}

	return formFile.Open()
}

// importRecords reads the records from a CSV upload or the JSON body.
func importRecords(c *gin.Context) ([]importer.Record, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		var query ImportQuery
		err := c.BindQuery(&query)
		if err != nil {
			return nil, models.Validation("%s", err)
		}

		f, err := getUploadedFile(c, ".csv")
		if err != nil {
			return nil, err
		}
		defer f.Close()

		records, err := csvimport.Parse(f)
		if err != nil {
			return nil, err
		}

		if query.AccountID != ez_uuid.Nil {
			for i := range records {
				records[i].AccountID = &query.AccountID.UUID
			}
		}

		return records, nil
	}

	var body []ImportRecord
	err := httputil.BindData(c, &body)
	if err != nil {
		return nil, err
	}

	records := make([]importer.Record, 0, len(body))
	for _, r := range body {
		records = append(records, importer.Record{
			Type:        r.Type,
			Amount:      r.Amount,
			Category:    r.Category,
			Description: r.Description,
			Date:        r.Date.Time(),
			AccountID:   r.AccountID,
			Reference:   r.Reference,
		})
	}

	return records, nil
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Import
// @Success		204
// @Router			/v1/import/transactions [options]
func (co Controller) OptionsImportTransactions(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Import transactions
// @Description	Imports transactions from a JSON array or a CSV file upload. Categories are mapped to the catalog, records imported before are skipped.
// @Tags			Import
// @Accept			json,mpfd
// @Produce		json
// @Success		201		{object}	ImportResponse
// @Failure		400		{object}	ImportResponse
// @Failure		500		{object}	ImportResponse
// @Param			records	body		[]ImportRecord	false	"Records to import"
// @Param			file	formData	file			false	"CSV file to import"
// @Param			account	query		string			false	"ID of the account for all transactions of a CSV upload"
// @Router			/v1/import/transactions [post]
func (co Controller) ImportTransactions(c *gin.Context) {
	records, err := importRecords(c)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ImportResponse{Error: &e})
		return
	}

	checked := map[uuid.UUID]bool{}
	for _, r := range records {
		if r.AccountID == nil || checked[*r.AccountID] {
			continue
		}

		err = ownedAccount(c, r.AccountID)
		if err != nil {
			e := err.Error()
			c.JSON(status(err), ImportResponse{Error: &e})
			return
		}
		checked[*r.AccountID] = true
	}

	result, err := importer.Import(models.DB, owner(c), records)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ImportResponse{Error: &e})
		return
	}

	imported := make([]Transaction, 0, len(result.Imported))
	for _, t := range result.Imported {
		imported = append(imported, newTransaction(c, t))
	}

	unmatched := result.Unmatched
	if unmatched == nil {
		unmatched = []string{}
	}

	co.notify(c, events.New(events.TransactionsImported, owner(c), map[string]any{
		"imported":   len(result.Imported),
		"duplicates": result.Duplicates,
		"backfilled": result.Backfilled,
	}))

	c.JSON(http.StatusCreated, ImportResponse{Data: &ImportResult{
		Imported:   imported,
		Duplicates: result.Duplicates,
		Unmatched:  unmatched,
		Backfilled: result.Backfilled,
	}})
}
