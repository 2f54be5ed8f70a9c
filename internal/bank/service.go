package bank

import (
	"context"
	"errors"
	"time"

	"github.com/budgeter/backend/internal/category"
	"github.com/budgeter/backend/internal/events"
	"github.com/budgeter/backend/internal/importer"
	"github.com/budgeter/backend/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Service links bank items for owners and keeps their data in sync.
type Service struct {
	client      Client
	sealer      Sealer
	events      events.Publisher
	concurrency int
	lookback    time.Duration
	now         func() time.Time
}

// NewService creates a service. At most concurrency requests to the aggregator
// run at the same time, Sync imports transactions of the last lookback.
func NewService(client Client, sealer Sealer, publisher events.Publisher, concurrency int, lookback time.Duration) *Service {
	if concurrency < 1 {
		concurrency = 1
	}

	return &Service{
		client:      client,
		sealer:      sealer,
		events:      publisher,
		concurrency: concurrency,
		lookback:    lookback,
		now:         time.Now,
	}
}

// ItemBalances are the balances of all accounts of a linked item.
type ItemBalances struct {
	LinkedItemID    uuid.UUID `json:"linkedItemId" example:"a7e0d2a4-39f4-4a0e-a7f3-bf6a2f3b1c9e"` // ID of the linked item
	InstitutionName string    `json:"institutionName" example:"First Platypus Bank"`             // Name of the institution
	Accounts        []Account `json:"accounts"`                                                  // Accounts of the item
}

// SyncResult describes what a sync did.
type SyncResult struct {
	Items      int      `json:"items" example:"2"`        // Number of linked items synced
	Imported   int      `json:"imported" example:"38"`    // Number of new transactions
	Duplicates int      `json:"duplicates" example:"112"` // Number of transactions that were imported before
	Pending    int      `json:"pending" example:"3"`      // Number of pending transactions skipped
	Backfilled int64    `json:"backfilled" example:"0"`   // Number of transactions whose category was backfilled
	Unmatched  []string `json:"unmatched"`                // Categories that did not match the catalog
}

// LinkToken creates a token to start the link flow for the owner.
func (s *Service) LinkToken(ctx context.Context, owner uuid.UUID) (string, error) {
	return s.client.CreateLinkToken(ctx, owner)
}

// Link exchanges the public token and stores the item with its sealed access token.
func (s *Service) Link(ctx context.Context, db *gorm.DB, owner uuid.UUID, publicToken, institution string) (models.LinkedItem, error) {
	if publicToken == "" {
		return models.LinkedItem{}, models.Validation("the public token must be set")
	}

	item, err := s.client.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return models.LinkedItem{}, err
	}

	sealed, err := s.sealer.Seal(item.AccessToken)
	if err != nil {
		return models.LinkedItem{}, err
	}

	linked := models.LinkedItem{
		OwnerID:         owner,
		ItemID:          item.ItemID,
		InstitutionName: institution,
		AccessToken:     sealed,
	}

	err = db.Create(&linked).Error
	if err != nil {
		return models.LinkedItem{}, err
	}

	return linked, nil
}

// Balances fetches the balances of all items of the owner. Local accounts
// mirroring the bank accounts are created or updated with the current balance.
func (s *Service) Balances(ctx context.Context, db *gorm.DB, owner uuid.UUID) ([]ItemBalances, error) {
	items, err := linkedItems(db, owner)
	if err != nil {
		return nil, err
	}

	accounts := make([][]Account, len(items))
	err = s.each(ctx, items, func(ctx context.Context, i int, token string) error {
		a, err := s.client.Balances(ctx, token)
		accounts[i] = a
		return err
	})
	if err != nil {
		return nil, err
	}

	balances := make([]ItemBalances, 0, len(items))
	for i, item := range items {
		for j := range accounts[i] {
			id, err := mirror(db, owner, item, accounts[i][j])
			if err != nil {
				return nil, err
			}
			accounts[i][j].AccountID = &id
		}

		balances = append(balances, ItemBalances{
			LinkedItemID:    item.ID,
			InstitutionName: item.InstitutionName,
			Accounts:        accounts[i],
		})
	}

	return balances, nil
}

// Sync imports the transactions of all items of the owner. Transactions that
// have been imported before are skipped, pending ones are imported once they post.
func (s *Service) Sync(ctx context.Context, db *gorm.DB, owner uuid.UUID) (SyncResult, error) {
	items, err := linkedItems(db, owner)
	if err != nil {
		return SyncResult{}, err
	}

	end := s.now().In(time.UTC)
	start := end.Add(-s.lookback)

	transactions := make([][]Transaction, len(items))
	err = s.each(ctx, items, func(ctx context.Context, i int, token string) error {
		t, err := s.client.Transactions(ctx, token, start, end)
		transactions[i] = t
		return err
	})
	if err != nil {
		return SyncResult{}, err
	}

	accounts, err := mirroredAccounts(db, owner)
	if err != nil {
		return SyncResult{}, err
	}

	result := SyncResult{Items: len(items)}
	var records []importer.Record
	for _, list := range transactions {
		for _, t := range list {
			if t.Pending {
				result.Pending++
				continue
			}

			if t.Amount.IsZero() {
				continue
			}

			records = append(records, record(t, accounts))
		}
	}

	imported, err := importer.Import(db, owner, records)
	if err != nil {
		return SyncResult{}, err
	}

	result.Imported = len(imported.Imported)
	result.Duplicates = imported.Duplicates
	result.Backfilled = imported.Backfilled
	result.Unmatched = imported.Unmatched

	for _, item := range items {
		err = db.Model(&item).UpdateColumn("last_synced_at", end).Error
		if err != nil {
			return SyncResult{}, err
		}
	}

	log.Info().Str("owner", owner.String()).Int("items", result.Items).Int("imported", result.Imported).Int("duplicates", result.Duplicates).Msg("bank sync")
	events.Notify(ctx, s.events, events.New(events.TransactionsSynced, owner, result))

	return result, nil
}

// each calls f for every item with its opened access token. At most
// s.concurrency calls run at the same time, the first error cancels all others.
func (s *Service) each(ctx context.Context, items []models.LinkedItem, f func(ctx context.Context, i int, token string) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, item := range items {
		g.Go(func() error {
			token, err := s.sealer.Open(item.AccessToken)
			if err != nil {
				return err
			}

			return f(ctx, i, token)
		})
	}

	return g.Wait()
}

// record converts a bank transaction. Positive amounts leave the account.
func record(t Transaction, accounts map[string]uuid.UUID) importer.Record {
	r := importer.Record{
		Type:        models.TransactionWithdrawal,
		Amount:      t.Amount,
		Category:    category.FromBank(t.Category),
		Description: t.Name,
		Date:        t.Date,
		Reference:   t.ID,
	}

	if t.Amount.IsNegative() {
		r.Type = models.TransactionDeposit
		r.Amount = t.Amount.Neg()
	}

	if id, ok := accounts[t.AccountID]; ok {
		r.AccountID = &id
	}

	return r
}

func linkedItems(db *gorm.DB, owner uuid.UUID) ([]models.LinkedItem, error) {
	var items []models.LinkedItem
	err := db.Where(&models.LinkedItem{OwnerID: owner}).Order("created_at").Find(&items).Error
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, ErrNoLinkedItems
	}

	return items, nil
}

// mirroredAccounts maps the bank IDs of the owner's linked accounts to their local IDs.
func mirroredAccounts(db *gorm.DB, owner uuid.UUID) (map[string]uuid.UUID, error) {
	var accounts []models.Account
	err := db.Scopes(models.OwnedBy(owner)).Where("linked_item_id IS NOT NULL AND external_id != ''").Find(&accounts).Error
	if err != nil {
		return nil, err
	}

	ids := make(map[string]uuid.UUID, len(accounts))
	for _, a := range accounts {
		ids[a.ExternalID] = a.ID
	}

	return ids, nil
}

// mirror creates or updates the local account for the bank account and returns its ID.
func mirror(db *gorm.DB, owner uuid.UUID, item models.LinkedItem, a Account) (uuid.UUID, error) {
	balance := decimal.Zero
	if a.Current != nil {
		balance = *a.Current
	} else if a.Available != nil {
		balance = *a.Available
	}

	// Credit balances are reported as the negative amount owed by some institutions
	balance = balance.Abs()

	var account models.Account
	err := db.Scopes(models.OwnedBy(owner)).Where(&models.Account{LinkedItemID: &item.ID, ExternalID: a.ID}).First(&account).Error
	if errors.Is(err, models.ErrResourceNotFound) {
		account = models.Account{
			Owned:        models.Owned{OwnerID: owner},
			Name:         a.Name,
			Type:         accountType(a.Type, a.Subtype),
			Balance:      balance,
			Institution:  item.InstitutionName,
			LinkedItemID: &item.ID,
			ExternalID:   a.ID,
		}

		err = db.Create(&account).Error
		return account.ID, err
	} else if err != nil {
		return uuid.Nil, err
	}

	account.Balance = balance
	err = db.Save(&account).Error
	return account.ID, err
}

func accountType(t, subtype string) models.AccountType {
	switch {
	case t == "depository" && subtype == "checking":
		return models.AccountChecking
	case t == "depository" && (subtype == "savings" || subtype == "money market" || subtype == "cd"):
		return models.AccountSavings
	case t == "credit":
		return models.AccountCreditCard
	case t == "investment" || t == "brokerage":
		return models.AccountInvestment
	default:
		return models.AccountOther
	}
}
