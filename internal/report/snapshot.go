// Package report shapes per-currency tables and dashboard figures from a
// snapshot of the contract ledger.
package report

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"contracting/internal/domain"
	"contracting/internal/gateway"
	"contracting/internal/repository"
)

// Source is the read side of the repository the loader needs.
type Source interface {
	ListContracts(ctx context.Context, filter repository.ContractListFilter) ([]domain.Contract, error)
	ListContractItems(ctx context.Context, contractIDs ...string) ([]domain.ContractItem, error)
	ListPurchases(ctx context.Context, contractIDs ...string) ([]domain.ContractPurchase, error)
	ListExpenses(ctx context.Context, contractIDs ...string) ([]domain.ContractExpense, error)
	ListPayments(ctx context.Context, contractIDs ...string) ([]domain.Payment, error)
}

// Snapshot is the raw material for every report. The five lists are fetched
// independently, so a row created mid-load may appear without its children.
type Snapshot struct {
	Currency      string
	Contracts     []domain.Contract
	Items         []domain.ContractItem
	Purchases     []domain.ContractPurchase
	Expenses      []domain.ContractExpense
	Payments      []domain.Payment
	Unprovisioned []string
}

type Loader struct {
	src Source
}

func NewLoader(src Source) *Loader {
	return &Loader{src: src}
}

// Snapshot fetches all tables in parallel. Missing purchase or expense tables
// degrade to empty lists and are named in Snapshot.Unprovisioned.
func (l *Loader) Snapshot(ctx context.Context) (Snapshot, error) {
	var (
		snap Snapshot
		mu   sync.Mutex
	)
	optional := func(err error) error {
		if table := gateway.NotProvisionedTable(err); table != "" {
			mu.Lock()
			snap.Unprovisioned = append(snap.Unprovisioned, table)
			mu.Unlock()
			return nil
		}
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		contracts, err := l.src.ListContracts(ctx, repository.ContractListFilter{})
		if err != nil {
			return fmt.Errorf("load contracts: %w", err)
		}
		snap.Contracts = contracts
		return nil
	})
	g.Go(func() error {
		items, err := l.src.ListContractItems(ctx)
		if err != nil {
			return fmt.Errorf("load contract items: %w", err)
		}
		snap.Items = items
		return nil
	})
	g.Go(func() error {
		payments, err := l.src.ListPayments(ctx)
		if err != nil {
			return fmt.Errorf("load payments: %w", err)
		}
		snap.Payments = payments
		return nil
	})
	g.Go(func() error {
		purchases, err := l.src.ListPurchases(ctx)
		if err != nil {
			return optional(err)
		}
		snap.Purchases = purchases
		return nil
	})
	g.Go(func() error {
		expenses, err := l.src.ListExpenses(ctx)
		if err != nil {
			return optional(err)
		}
		snap.Expenses = expenses
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	sort.Strings(snap.Unprovisioned)
	return snap, nil
}

// ForCurrency keeps the contracts in one currency and the rows that belong to
// them. Contracts without a currency count as domain.DefaultCurrency.
func (s Snapshot) ForCurrency(code string) Snapshot {
	if code == "" {
		code = domain.DefaultCurrency
	}
	out := Snapshot{Currency: code, Unprovisioned: s.Unprovisioned}
	keep := make(map[string]struct{})
	for _, c := range s.Contracts {
		if currencyOf(c) == code {
			out.Contracts = append(out.Contracts, c)
			keep[c.ID] = struct{}{}
		}
	}
	out.Items = filterByContract(s.Items, keep, func(v domain.ContractItem) string { return v.ContractID })
	out.Purchases = filterByContract(s.Purchases, keep, func(v domain.ContractPurchase) string { return v.ContractID })
	out.Expenses = filterByContract(s.Expenses, keep, func(v domain.ContractExpense) string { return v.ContractID })
	out.Payments = filterByContract(s.Payments, keep, func(v domain.Payment) string { return v.ContractID })
	return out
}

// Currencies lists the distinct contract currencies in first-seen order.
// With no contracts the default currency is the only entry.
func Currencies(contracts []domain.Contract) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range contracts {
		code := currencyOf(c)
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	if len(out) == 0 {
		return []string{domain.DefaultCurrency}
	}
	return out
}

func currencyOf(c domain.Contract) string {
	if c.Currency == "" {
		return domain.DefaultCurrency
	}
	return c.Currency
}

func filterByContract[T any](rows []T, keep map[string]struct{}, contractOf func(T) string) []T {
	var out []T
	for _, r := range rows {
		if _, ok := keep[contractOf(r)]; ok {
			out = append(out, r)
		}
	}
	return out
}

// indexByContract groups rows by contract id for the in-memory join.
func indexByContract[T any](rows []T, contractOf func(T) string) map[string][]T {
	out := make(map[string][]T)
	for _, r := range rows {
		id := contractOf(r)
		out[id] = append(out[id], r)
	}
	return out
}
