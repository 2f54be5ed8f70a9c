// Package csvimport parses CSV exports of bank statements.
//
// The first line names the columns. Date and either Outflow or Inflow are
// required, Description and Category are optional. Column names are case insensitive.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/budgeter/backend/internal/importer"
	"github.com/budgeter/backend/internal/models"
	"github.com/shopspring/decimal"
)

const (
	Date        = "date"
	Description = "description"
	Category    = "category"
	Outflow     = "outflow"
	Inflow      = "inflow"
)

var ErrColumnMissing = models.Validation("the CSV must have a 'date' column and an 'outflow' or 'inflow' column")

// Parse parses the CSV file into records for importer.Import.
func Parse(f io.Reader) ([]importer.Record, error) {
	reader := csv.NewReader(f)

	// We can reuse the array in the background to improve performance
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return []importer.Record{}, nil
	}
	if err != nil {
		return csvReadError(reader, fmt.Errorf("could not read header: %w", err))
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	_, hasDate := columns[Date]
	_, hasOutflow := columns[Outflow]
	_, hasInflow := columns[Inflow]
	if !hasDate || (!hasOutflow && !hasInflow) {
		return []importer.Record{}, ErrColumnMissing
	}

	field := func(record []string, column string) string {
		i, ok := columns[column]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	records := []importer.Record{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return csvReadError(reader, fmt.Errorf("could not read line in CSV: %w", err))
		}

		date, err := time.Parse("2006-01-02", field(record, Date))
		if err != nil {
			return csvReadError(reader, fmt.Errorf("could not parse date: %w", err))
		}

		r := importer.Record{
			Date:        date,
			Description: field(record, Description),
			Category:    field(record, Category),
		}

		outflow, inflow := field(record, Outflow), field(record, Inflow)
		if outflow != "" && inflow != "" {
			return csvReadError(reader, errors.New("both outflow and inflow are set for the transaction"))
		} else if outflow == "" && inflow == "" {
			return csvReadError(reader, errors.New("no amount is set for the transaction"))
		} else if outflow != "" {
			r.Type = models.TransactionWithdrawal
			r.Amount, err = decimal.NewFromString(outflow)
			if err != nil {
				return csvReadError(reader, errors.New("outflow could not be parsed to a decimal"))
			}
		} else {
			r.Type = models.TransactionDeposit
			r.Amount, err = decimal.NewFromString(inflow)
			if err != nil {
				return csvReadError(reader, errors.New("inflow could not be parsed to a decimal"))
			}
		}

		if !r.Amount.IsPositive() {
			return csvReadError(reader, errors.New("the amount for a transaction must be greater than 0"))
		}

		records = append(records, r)
	}

	return records, nil
}

// csvReadError returns the error with the line of the input it occurred in.
// All errors match models.ErrValidation.
func csvReadError(r *csv.Reader, err error) ([]importer.Record, error) {
	line, _ := r.FieldPos(0)
	return []importer.Record{}, models.Validation("error in line %d of the CSV: %s", line, err)
}
