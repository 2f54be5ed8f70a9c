package models_test

import (
	"testing"
	"time"

	"github.com/budgeter/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestBudgetValidation() {
	tests := []struct {
		name   string
		budget models.Budget
		err    error
	}{
		{"Name missing", models.Budget{Name: "  ", StartDate: day(2024, 1, 1), EndDate: day(2024, 1, 31)}, models.ErrBudgetNameMissing},
		{"Start missing", models.Budget{Name: "January", EndDate: day(2024, 1, 31)}, models.ErrBudgetDatesMissing},
		{"End missing", models.Budget{Name: "January", StartDate: day(2024, 1, 1)}, models.ErrBudgetDatesMissing},
		{"End before start", models.Budget{Name: "January", StartDate: day(2024, 1, 31), EndDate: day(2024, 1, 1)}, models.ErrBudgetEndBeforeStart},
		{"Negative allocation", models.Budget{Name: "January", StartDate: day(2024, 1, 1), EndDate: day(2024, 1, 31), Allocations: []models.Allocation{
			{CategoryID: "groceries", Budgeted: decimal.NewFromInt(-1)},
		}}, models.ErrAllocationAmountNegative},
		{"Allocation without category", models.Budget{Name: "January", StartDate: day(2024, 1, 1), EndDate: day(2024, 1, 31), Allocations: []models.Allocation{
			{Budgeted: decimal.NewFromInt(1)},
		}}, models.ErrAllocationCategoryMissing},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			tt.budget.OwnerID = models.LocalOwner
			err := models.DB.Create(&tt.budget).Error
			assert.ErrorIs(t, err, tt.err)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func (suite *TestSuiteStandard) TestBudgetSingleDay() {
	budget := suite.createTestBudget(models.Budget{StartDate: day(2024, 2, 29), EndDate: day(2024, 2, 29), Primary: true})
	suite.Assert().True(budget.StartDate.Equal(budget.EndDate))
}

// A second primary budget overlapping the existing one is rejected.
func (suite *TestSuiteStandard) TestBudgetPrimaryOverlap() {
	january := suite.createTestBudget(models.Budget{Name: "January", StartDate: day(2024, 1, 1), EndDate: day(2024, 1, 31), Primary: true})

	overlapping := models.Budget{
		Owned:     models.Owned{OwnerID: models.LocalOwner},
		Name:      "Mid January to mid February",
		StartDate: day(2024, 1, 15),
		EndDate:   day(2024, 2, 15),
		Primary:   true,
	}
	err := models.DB.Create(&overlapping).Error
	suite.Assert().ErrorIs(err, models.ErrBudgetPrimaryOverlap)
	suite.Assert().ErrorIs(err, models.ErrValidation)
	suite.Assert().Contains(err.Error(), january.ID.String())

	// Touching on the last day is an overlap, windows are inclusive
	overlapping.StartDate = day(2024, 1, 31)
	suite.Assert().ErrorIs(models.DB.Create(&overlapping).Error, models.ErrBudgetPrimaryOverlap)

	// Not primary, no check
	overlapping.Primary = false
	suite.Assert().Nil(models.DB.Create(&overlapping).Error)

	// Different owner, no conflict
	suite.createTestBudget(models.Budget{
		Owned:     models.Owned{OwnerID: uuid.New()},
		StartDate: day(2024, 1, 15),
		EndDate:   day(2024, 2, 15),
		Primary:   true,
	})

	// Adjacent period
	suite.createTestBudget(models.Budget{StartDate: day(2024, 2, 1), EndDate: day(2024, 2, 29), Primary: true})

	// Updating the budget itself is not a conflict
	january.Name = "Still January"
	january.EndDate = day(2024, 1, 30)
	suite.Assert().Nil(january.Update(models.DB, nil))

	// Marking the non primary budget as primary is
	overlapping.Primary = true
	suite.Assert().ErrorIs(overlapping.Update(models.DB, nil), models.ErrBudgetPrimaryOverlap)
}

func (suite *TestSuiteStandard) TestHasOverlappingPrimary() {
	january := suite.createTestBudget(models.Budget{Name: "January", StartDate: day(2024, 1, 1), EndDate: day(2024, 1, 31), Primary: true})

	conflict, found, err := models.HasOverlappingPrimary(models.DB, models.LocalOwner, day(2023, 12, 1), day(2024, 1, 1), uuid.Nil)
	suite.Require().Nil(err)
	suite.Assert().True(found)
	suite.Assert().Equal(january.ID, conflict.ID)

	_, found, err = models.HasOverlappingPrimary(models.DB, models.LocalOwner, day(2023, 12, 1), day(2024, 1, 1), january.ID)
	suite.Require().Nil(err)
	suite.Assert().False(found)

	_, found, err = models.HasOverlappingPrimary(models.DB, models.LocalOwner, day(2024, 2, 1), day(2024, 2, 2), uuid.Nil)
	suite.Require().Nil(err)
	suite.Assert().False(found)
}

func (suite *TestSuiteStandard) TestBudgetUpdateReplacesAllocations() {
	budget := suite.createTestBudget(models.Budget{
		StartDate: day(2024, 1, 1),
		EndDate:   day(2024, 1, 31),
		Allocations: []models.Allocation{
			{CategoryID: "groceries", Budgeted: decimal.NewFromInt(500)},
			{CategoryID: "dining", Budgeted: decimal.NewFromInt(100)},
		},
	})

	err := budget.Update(models.DB, []models.Allocation{{CategoryID: "gas", Budgeted: decimal.NewFromInt(80)}})
	suite.Require().Nil(err)

	var allocations []models.Allocation
	suite.Require().Nil(models.DB.Where(&models.Allocation{BudgetID: budget.ID}).Find(&allocations).Error)
	suite.Require().Len(allocations, 1)
	suite.Assert().Equal("gas", allocations[0].CategoryID)

	// Nil keeps the allocations
	budget.Name = "Renamed"
	suite.Require().Nil(budget.Update(models.DB, nil))
	suite.Require().Len(budget.Allocations, 1)

	// Empty removes all
	suite.Require().Nil(budget.Update(models.DB, []models.Allocation{}))
	suite.Assert().Nil(models.DB.Where(&models.Allocation{BudgetID: budget.ID}).Find(&allocations).Error)
	suite.Assert().Len(allocations, 0)
}

// When replacing the allocations fails, the budget is not changed either.
func (suite *TestSuiteStandard) TestBudgetUpdateAtomic() {
	budget := suite.createTestBudget(models.Budget{
		Name:        "Original",
		StartDate:   day(2024, 1, 1),
		EndDate:     day(2024, 1, 31),
		Allocations: []models.Allocation{{CategoryID: "groceries", Budgeted: decimal.NewFromInt(500)}},
	})

	budget.Name = "Changed"
	err := budget.Update(models.DB, []models.Allocation{
		{CategoryID: "gas", Budgeted: decimal.NewFromInt(1)},
		{CategoryID: "gas", Budgeted: decimal.NewFromInt(2)},
	})
	suite.Assert().ErrorIs(err, models.ErrAllocationCategoryNotUnique)

	var stored models.Budget
	suite.Require().Nil(models.DB.Preload("Allocations").Scopes(models.ByID(budget.ID)).First(&stored).Error)
	suite.Assert().Equal("Original", stored.Name)
	suite.Require().Len(stored.Allocations, 1)
	suite.Assert().Equal("groceries", stored.Allocations[0].CategoryID)
}

func (suite *TestSuiteStandard) TestBudgetDeleteCascades() {
	budget := suite.createTestBudget(models.Budget{
		StartDate:   day(2024, 1, 1),
		EndDate:     day(2024, 1, 31),
		Allocations: []models.Allocation{{CategoryID: "groceries", Budgeted: decimal.NewFromInt(500)}},
	})
	transaction := suite.createTestTransaction(models.Transaction{Category: "groceries", Date: day(2024, 1, 15).Time()})

	_, err := models.ToggleExclusion(models.DB, models.LocalOwner, budget.ID, transaction.ID)
	suite.Require().Nil(err)

	suite.Require().Nil(models.DB.Delete(&budget).Error)

	var allocations, exclusions int64
	models.DB.Model(&models.Allocation{}).Count(&allocations)
	models.DB.Model(&models.BudgetExclusion{}).Count(&exclusions)
	suite.Assert().Zero(allocations)
	suite.Assert().Zero(exclusions)
}

func (suite *TestSuiteStandard) TestCurrentPrimary() {
	budget := suite.createTestBudget(models.Budget{
		StartDate:   day(2024, 1, 1),
		EndDate:     day(2024, 1, 31),
		Primary:     true,
		Allocations: []models.Allocation{{CategoryID: "groceries", Budgeted: decimal.NewFromInt(500)}},
	})
	suite.createTestBudget(models.Budget{StartDate: day(2024, 1, 1), EndDate: day(2024, 1, 31)})

	for _, d := range []int{1, 15, 31} {
		current, err := models.CurrentPrimary(models.DB, models.LocalOwner, day(2024, 1, d))
		suite.Require().Nil(err)
		suite.Assert().Equal(budget.ID, current.ID)
		suite.Assert().Len(current.Allocations, 1)
	}

	_, err := models.CurrentPrimary(models.DB, models.LocalOwner, day(2024, 2, 1))
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)

	_, err = models.CurrentPrimary(models.DB, uuid.New(), day(2024, 1, 15))
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestBudgetSpend() {
	budget := suite.createTestBudget(models.Budget{
		StartDate:   day(2024, 1, 1),
		EndDate:     day(2024, 1, 31),
		Allocations: []models.Allocation{{CategoryID: "groceries", Budgeted: decimal.NewFromInt(500)}, {CategoryID: "gas", Budgeted: decimal.NewFromInt(50)}},
	})

	other := suite.createTestBudget(models.Budget{
		StartDate:   day(2024, 1, 10),
		EndDate:     day(2024, 2, 10),
		Allocations: []models.Allocation{{CategoryID: "groceries", Budgeted: decimal.NewFromInt(300)}},
	})

	groceries := suite.createTestTransaction(models.Transaction{
		Category: "groceries",
		Amount:   decimal.NewFromInt(450),
		Date:     time.Date(2024, 1, 15, 18, 30, 0, 0, time.UTC),
	})

	// Not counted: deposit, other owner, outside both windows
	suite.createTestTransaction(models.Transaction{Type: models.TransactionDeposit, Category: "groceries", Date: day(2024, 1, 15).Time()})
	suite.createTestTransaction(models.Transaction{Owned: models.Owned{OwnerID: uuid.New()}, Category: "groceries", Date: day(2024, 1, 15).Time()})
	suite.createTestTransaction(models.Transaction{Category: "groceries", Date: day(2024, 3, 1).Time()})

	spend, err := models.BudgetSpend(models.DB, models.LocalOwner, []models.Budget{budget, other})
	suite.Require().Nil(err)

	// Ordered like the catalog
	suite.Require().Len(spend[budget.ID], 2)
	suite.Assert().Equal("gas", spend[budget.ID][0].CategoryID)
	suite.Assert().True(spend[budget.ID][0].Spent.IsZero())
	suite.Assert().Equal("groceries", spend[budget.ID][1].CategoryID)
	suite.Assert().True(spend[budget.ID][1].Spent.Equal(decimal.NewFromInt(450)), spend[budget.ID][1].Spent.String())
	suite.Assert().True(spend[budget.ID][1].Budgeted.Equal(decimal.NewFromInt(500)))

	// Excluding from one budget does not change the other
	excluded, err := models.ToggleExclusion(models.DB, models.LocalOwner, budget.ID, groceries.ID)
	suite.Require().Nil(err)
	suite.Require().True(excluded)

	spend, err = models.BudgetSpend(models.DB, models.LocalOwner, []models.Budget{budget, other})
	suite.Require().Nil(err)
	suite.Assert().True(spend[budget.ID][1].Spent.IsZero())
	suite.Assert().True(spend[other.ID][0].Spent.Equal(decimal.NewFromInt(450)))

	empty, err := models.BudgetSpend(models.DB, models.LocalOwner, nil)
	suite.Require().Nil(err)
	suite.Assert().Len(empty, 0)
}
