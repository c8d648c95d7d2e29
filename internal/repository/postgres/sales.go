package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/mamadbah2/shopms/internal/domain/models"
)

type saleStore struct{ s *Store }

func (r *saleStore) Insert(ctx context.Context, sale models.Sale) (models.Sale, error) {
	sale.ID = uuid.NewString()
	err := r.s.WithinTransaction(ctx, func(ctx context.Context) error {
		q := r.s.q(ctx)
		if _, err := q.Exec(ctx, `
			INSERT INTO sales (id, buyer_name, sale_date, total_amount, total_profit)
			VALUES ($1, $2, $3, $4, $5)
		`, sale.ID, sale.BuyerName, sale.Date, sale.TotalAmount, sale.TotalProfit); err != nil {
			return models.NewStorageError("insert sale", err)
		}
		return r.insertItems(ctx, sale)
	})
	if err != nil {
		return models.Sale{}, err
	}
	return sale, nil
}

func (r *saleStore) Get(ctx context.Context, id string) (models.Sale, error) {
	var sale models.Sale
	err := r.s.q(ctx).QueryRow(ctx,
		"SELECT id, buyer_name, sale_date, total_amount, total_profit FROM sales WHERE id = $1", id,
	).Scan(&sale.ID, &sale.BuyerName, &sale.Date, &sale.TotalAmount, &sale.TotalProfit)
	if err != nil {
		return models.Sale{}, notFoundOr(err, "Sale", id, "find sale")
	}

	batch := []models.Sale{sale}
	if err := r.loadItems(ctx, batch); err != nil {
		return models.Sale{}, err
	}
	return batch[0], nil
}

func (r *saleStore) Update(ctx context.Context, sale models.Sale) error {
	return r.s.WithinTransaction(ctx, func(ctx context.Context) error {
		q := r.s.q(ctx)
		tag, err := q.Exec(ctx, `
			UPDATE sales SET buyer_name = $2, sale_date = $3, total_amount = $4, total_profit = $5
			WHERE id = $1
		`, sale.ID, sale.BuyerName, sale.Date, sale.TotalAmount, sale.TotalProfit)
		if err != nil {
			return models.NewStorageError("update sale", err)
		}
		if tag.RowsAffected() == 0 {
			return models.NewNotFoundError("Sale", sale.ID)
		}
		if _, err := q.Exec(ctx, "DELETE FROM sale_items WHERE sale_id = $1", sale.ID); err != nil {
			return models.NewStorageError("replace sale items", err)
		}
		return r.insertItems(ctx, sale)
	})
}

func (r *saleStore) Delete(ctx context.Context, id string) error {
	tag, err := r.s.q(ctx).Exec(ctx, "DELETE FROM sales WHERE id = $1", id)
	if err != nil {
		return models.NewStorageError("delete sale", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("Sale", id)
	}
	return nil
}

func (r *saleStore) List(ctx context.Context, within *models.DateRange) ([]models.Sale, error) {
	query := "SELECT id, buyer_name, sale_date, total_amount, total_profit FROM sales"
	var args []any
	if within != nil {
		query += " WHERE sale_date >= $1 AND sale_date <= $2"
		args = append(args, within.From, within.To)
	}
	query += " ORDER BY sale_date DESC, id DESC"

	rows, err := r.s.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, models.NewStorageError("list sales", err)
	}
	defer rows.Close()

	sales := []models.Sale{}
	for rows.Next() {
		var sale models.Sale
		if err := rows.Scan(&sale.ID, &sale.BuyerName, &sale.Date, &sale.TotalAmount, &sale.TotalProfit); err != nil {
			return nil, models.NewStorageError("scan sale", err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewStorageError("list sales", err)
	}
	rows.Close()

	if err := r.loadItems(ctx, sales); err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *saleStore) insertItems(ctx context.Context, sale models.Sale) error {
	q := r.s.q(ctx)
	for i, item := range sale.Items {
		_, err := q.Exec(ctx, `
			INSERT INTO sale_items (sale_id, line_no, product_id, product_name, quantity, sale_price, cost_price, amount, profit)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, sale.ID, i, item.ProductID, item.ProductName, item.Quantity, item.SalePrice, item.CostPrice, item.Amount, item.Profit)
		if err != nil {
			return models.NewStorageError("insert sale item", err)
		}
	}
	return nil
}

func (r *saleStore) loadItems(ctx context.Context, sales []models.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	index := make(map[string]int, len(sales))
	ids := make([]string, 0, len(sales))
	for i, sale := range sales {
		index[sale.ID] = i
		ids = append(ids, sale.ID)
		sales[i].Items = []models.SaleItem{}
	}

	rows, err := r.s.q(ctx).Query(ctx, `
		SELECT sale_id, product_id, product_name, quantity, sale_price, cost_price, amount, profit
		FROM sale_items WHERE sale_id = ANY($1) ORDER BY sale_id, line_no
	`, ids)
	if err != nil {
		return models.NewStorageError("load sale items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var saleID string
		var item models.SaleItem
		if err := rows.Scan(&saleID, &item.ProductID, &item.ProductName, &item.Quantity,
			&item.SalePrice, &item.CostPrice, &item.Amount, &item.Profit); err != nil {
			return models.NewStorageError("scan sale item", err)
		}
		i := index[saleID]
		sales[i].Items = append(sales[i].Items, item)
	}
	if err := rows.Err(); err != nil {
		return models.NewStorageError("load sale items", err)
	}
	return nil
}
