// Package memory is an in-process backend used for development and tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/mamadbah2/shopms/internal/domain/models"
	"github.com/mamadbah2/shopms/internal/repository"
)

// Store keeps every collection in maps guarded by a single lock.
type Store struct {
	mu       sync.RWMutex
	products map[string]models.Product
	sales    map[string]models.Sale
	expenses map[string]models.Expense
	users    map[string]models.AdminUser
	reports  []models.DailyReport

	// txMu serializes units of work.
	txMu sync.Mutex
}

// New returns an empty store.
func New() *Store {
	return &Store{
		products: make(map[string]models.Product),
		sales:    make(map[string]models.Sale),
		expenses: make(map[string]models.Expense),
		users:    make(map[string]models.AdminUser),
	}
}

// Products returns the product collection.
func (s *Store) Products() repository.ProductStore { return productStore{s} }

// Sales returns the sale collection.
func (s *Store) Sales() repository.SaleStore { return saleStore{s} }

// Expenses returns the expense collection.
func (s *Store) Expenses() repository.ExpenseStore { return expenseStore{s} }

// Users returns the admin user collection.
func (s *Store) Users() repository.UserStore { return userStore{s} }

// Reports returns the daily report sink.
func (s *Store) Reports() repository.ReportStore { return reportStore{s} }

// Transactor returns the unit-of-work runner.
func (s *Store) Transactor() repository.Transactor { return s }

// DailyReports returns every saved report in insertion order.
func (s *Store) DailyReports() []models.DailyReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.reports)
}

type undoKey struct{}

// undoLog holds the inverse of every write made inside one unit of work. Steps
// run in reverse with mu held.
type undoLog struct {
	steps []func()
}

// record appends step to the unit of work carried by ctx, if any. Callers hold mu.
func record(ctx context.Context, step func()) {
	if log, ok := ctx.Value(undoKey{}).(*undoLog); ok {
		log.steps = append(log.steps, step)
	}
}

// WithinTransaction runs fn and undoes its product and sale writes when it fails.
// Writes made through other contexts are left alone. Nested calls join the outer unit.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(undoKey{}).(*undoLog); ok {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	log := &undoLog{}
	if err := fn(context.WithValue(ctx, undoKey{}, log)); err != nil {
		s.mu.Lock()
		for i := len(log.steps) - 1; i >= 0; i-- {
			log.steps[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// Atomic is true: a failed unit of work is rolled back from its undo log.
func (s *Store) Atomic() bool { return true }

// restoreProduct records how to put product id back to its current state. Callers hold mu.
func (s *Store) restoreProduct(ctx context.Context, id string) {
	prev, existed := s.products[id]
	record(ctx, func() {
		if existed {
			s.products[id] = prev
			return
		}
		delete(s.products, id)
	})
}

// restoreSale is restoreProduct for sales.
func (s *Store) restoreSale(ctx context.Context, id string) {
	prev, existed := s.sales[id]
	prev.Items = slices.Clone(prev.Items)
	record(ctx, func() {
		if existed {
			s.sales[id] = prev
			return
		}
		delete(s.sales, id)
	})
}

type productStore struct{ s *Store }

func (p productStore) Get(_ context.Context, id string) (models.Product, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	product, ok := p.s.products[id]
	if !ok {
		return models.Product{}, models.NewNotFoundError("Product", id)
	}
	return product, nil
}

func (p productStore) Find(_ context.Context, ids []string) (map[string]models.Product, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	found := make(map[string]models.Product, len(ids))
	for _, id := range ids {
		if product, ok := p.s.products[id]; ok {
			found[id] = product
		}
	}
	return found, nil
}

func (p productStore) AdjustStock(ctx context.Context, id string, delta int) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	product, ok := p.s.products[id]
	if !ok {
		return models.NewNotFoundError("Product", id)
	}
	if product.Stock+delta < 0 {
		return &models.InsufficientStockError{
			ProductID:   id,
			ProductName: product.Name,
			Available:   product.Stock,
			Requested:   -delta,
		}
	}
	product.Stock += delta
	p.s.products[id] = product
	record(ctx, func() {
		if current, ok := p.s.products[id]; ok {
			current.Stock -= delta
			p.s.products[id] = current
		}
	})
	return nil
}

func (p productStore) List(_ context.Context) ([]models.Product, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	out := make([]models.Product, 0, len(p.s.products))
	for _, product := range p.s.products {
		out = append(out, product)
	}
	slices.SortFunc(out, func(a, b models.Product) int {
		if a.Name == b.Name {
			return cmp.Compare(a.ID, b.ID)
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out, nil
}

func (p productStore) Create(ctx context.Context, product models.Product) (models.Product, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	p.s.restoreProduct(ctx, product.ID)
	p.s.products[product.ID] = product
	return product, nil
}

func (p productStore) Update(ctx context.Context, product models.Product) (models.Product, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if _, ok := p.s.products[product.ID]; !ok {
		return models.Product{}, models.NewNotFoundError("Product", product.ID)
	}
	p.s.restoreProduct(ctx, product.ID)
	p.s.products[product.ID] = product
	return product, nil
}

func (p productStore) Delete(ctx context.Context, id string) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if _, ok := p.s.products[id]; !ok {
		return models.NewNotFoundError("Product", id)
	}
	p.s.restoreProduct(ctx, id)
	delete(p.s.products, id)
	return nil
}

type saleStore struct{ s *Store }

func (r saleStore) Insert(ctx context.Context, sale models.Sale) (models.Sale, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sale.ID == "" {
		sale.ID = uuid.NewString()
	}
	r.s.restoreSale(ctx, sale.ID)
	sale.Items = slices.Clone(sale.Items)
	r.s.sales[sale.ID] = sale
	return sale, nil
}

func (r saleStore) Get(_ context.Context, id string) (models.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sale, ok := r.s.sales[id]
	if !ok {
		return models.Sale{}, models.NewNotFoundError("Sale", id)
	}
	sale.Items = slices.Clone(sale.Items)
	return sale, nil
}

func (r saleStore) Update(ctx context.Context, sale models.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sales[sale.ID]; !ok {
		return models.NewNotFoundError("Sale", sale.ID)
	}
	r.s.restoreSale(ctx, sale.ID)
	sale.Items = slices.Clone(sale.Items)
	r.s.sales[sale.ID] = sale
	return nil
}

func (r saleStore) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sales[id]; !ok {
		return models.NewNotFoundError("Sale", id)
	}
	r.s.restoreSale(ctx, id)
	delete(r.s.sales, id)
	return nil
}

func (r saleStore) List(_ context.Context, within *models.DateRange) ([]models.Sale, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Sale, 0, len(r.s.sales))
	for _, sale := range r.s.sales {
		if within != nil && !within.Contains(sale.Date) {
			continue
		}
		sale.Items = slices.Clone(sale.Items)
		out = append(out, sale)
	}
	slices.SortFunc(out, func(a, b models.Sale) int { return b.Date.Compare(a.Date) })
	return out, nil
}

type expenseStore struct{ s *Store }

func (r expenseStore) Create(_ context.Context, expense models.Expense) (models.Expense, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if expense.ID == "" {
		expense.ID = uuid.NewString()
	}
	r.s.expenses[expense.ID] = expense
	return expense, nil
}

func (r expenseStore) Get(_ context.Context, id string) (models.Expense, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	expense, ok := r.s.expenses[id]
	if !ok {
		return models.Expense{}, models.NewNotFoundError("Expense", id)
	}
	return expense, nil
}

func (r expenseStore) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.expenses[id]; !ok {
		return models.NewNotFoundError("Expense", id)
	}
	delete(r.s.expenses, id)
	return nil
}

func (r expenseStore) List(_ context.Context, within *models.DateRange) ([]models.Expense, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Expense, 0, len(r.s.expenses))
	for _, expense := range r.s.expenses {
		if within != nil && !within.Contains(expense.ExpenseDate) {
			continue
		}
		out = append(out, expense)
	}
	slices.SortFunc(out, func(a, b models.Expense) int { return b.ExpenseDate.Compare(a.ExpenseDate) })
	return out, nil
}

type userStore struct{ s *Store }

func (r userStore) FindByUsername(_ context.Context, username string) (models.AdminUser, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, user := range r.s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.AdminUser{}, models.NewNotFoundError("User", username)
}

func (r userStore) FindAdmin(_ context.Context) (models.AdminUser, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var admin models.AdminUser
	for _, user := range r.s.users {
		if user.Role != models.RoleAdmin {
			continue
		}
		if admin.ID == "" || user.CreatedAt.Before(admin.CreatedAt) {
			admin = user
		}
	}
	if admin.ID == "" {
		return models.AdminUser{}, models.NewNotFoundError("User", models.RoleAdmin)
	}
	return admin, nil
}

func (r userStore) Create(_ context.Context, user models.AdminUser) (models.AdminUser, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Username == user.Username {
			return models.AdminUser{}, &models.ConflictError{Message: "Username already exists"}
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.s.users[user.ID] = user
	return user, nil
}

func (r userStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return models.NewNotFoundError("User", id)
	}
	user.PasswordHash = passwordHash
	r.s.users[id] = user
	return nil
}

type reportStore struct{ s *Store }

func (r reportStore) SaveDailyReport(_ context.Context, report models.DailyReport) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.reports = append(r.s.reports, report)
	return nil
}
