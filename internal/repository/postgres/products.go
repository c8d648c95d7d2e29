package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/mamadbah2/shopms/internal/domain/models"
)

type productStore struct{ s *Store }

func (p *productStore) Get(ctx context.Context, id string) (models.Product, error) {
	var product models.Product
	err := p.s.q(ctx).QueryRow(ctx,
		"SELECT id, name, category, stock, price FROM products WHERE id = $1", id,
	).Scan(&product.ID, &product.Name, &product.Category, &product.Stock, &product.Price)
	if err != nil {
		return models.Product{}, notFoundOr(err, "Product", id, "find product")
	}
	return product, nil
}

// Find loads the given products. Inside a transaction the rows are locked in id
// order until commit.
func (p *productStore) Find(ctx context.Context, ids []string) (map[string]models.Product, error) {
	found := make(map[string]models.Product, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	query := "SELECT id, name, category, stock, price FROM products WHERE id = ANY($1) ORDER BY id"
	if inTx(ctx) {
		query += " FOR UPDATE"
	}
	rows, err := p.s.q(ctx).Query(ctx, query, ids)
	if err != nil {
		return nil, models.NewStorageError("find products", err)
	}
	defer rows.Close()

	for rows.Next() {
		var product models.Product
		if err := rows.Scan(&product.ID, &product.Name, &product.Category, &product.Stock, &product.Price); err != nil {
			return nil, models.NewStorageError("scan product", err)
		}
		found[product.ID] = product
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewStorageError("find products", err)
	}
	return found, nil
}

// AdjustStock only applies delta while the resulting stock stays non-negative.
func (p *productStore) AdjustStock(ctx context.Context, id string, delta int) error {
	tag, err := p.s.q(ctx).Exec(ctx,
		"UPDATE products SET stock = stock + $2 WHERE id = $1 AND stock + $2 >= 0", id, delta)
	if err != nil {
		return models.NewStorageError("adjust stock", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	current, err := p.Get(ctx, id)
	if err != nil {
		return err
	}
	return &models.InsufficientStockError{
		ProductID:   id,
		ProductName: current.Name,
		Available:   current.Stock,
		Requested:   -delta,
	}
}

func (p *productStore) List(ctx context.Context) ([]models.Product, error) {
	rows, err := p.s.q(ctx).Query(ctx, "SELECT id, name, category, stock, price FROM products ORDER BY name, id")
	if err != nil {
		return nil, models.NewStorageError("list products", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var product models.Product
		if err := rows.Scan(&product.ID, &product.Name, &product.Category, &product.Stock, &product.Price); err != nil {
			return nil, models.NewStorageError("scan product", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewStorageError("list products", err)
	}
	return products, nil
}

func (p *productStore) Create(ctx context.Context, product models.Product) (models.Product, error) {
	product.ID = uuid.NewString()
	_, err := p.s.q(ctx).Exec(ctx,
		"INSERT INTO products (id, name, category, stock, price) VALUES ($1, $2, $3, $4, $5)",
		product.ID, product.Name, product.Category, product.Stock, product.Price)
	if err != nil {
		return models.Product{}, models.NewStorageError("insert product", err)
	}
	return product, nil
}

func (p *productStore) Update(ctx context.Context, product models.Product) (models.Product, error) {
	tag, err := p.s.q(ctx).Exec(ctx,
		"UPDATE products SET name = $2, category = $3, stock = $4, price = $5 WHERE id = $1",
		product.ID, product.Name, product.Category, product.Stock, product.Price)
	if err != nil {
		return models.Product{}, models.NewStorageError("update product", err)
	}
	if tag.RowsAffected() == 0 {
		return models.Product{}, models.NewNotFoundError("Product", product.ID)
	}
	return product, nil
}

func (p *productStore) Delete(ctx context.Context, id string) error {
	tag, err := p.s.q(ctx).Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return models.NewStorageError("delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("Product", id)
	}
	return nil
}
