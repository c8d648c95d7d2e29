package mongodb

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/shopms/internal/domain/models"
)

type productDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Name     string             `bson:"name"`
	Category string             `bson:"category,omitempty"`
	Stock    int                `bson:"stock"`
	Price    decimal.Decimal    `bson:"price"`
}

func (d productDocument) model() models.Product {
	return models.Product{
		ID:       d.ID.Hex(),
		Name:     d.Name,
		Category: d.Category,
		Stock:    d.Stock,
		Price:    d.Price,
	}
}

type productStore struct {
	coll *mongo.Collection
}

func (s *productStore) Get(ctx context.Context, id string) (models.Product, error) {
	oid, err := objectID("Product", id)
	if err != nil {
		return models.Product{}, err
	}
	var doc productDocument
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return models.Product{}, notFoundOr(err, "Product", id, "find product")
	}
	return doc.model(), nil
}

func (s *productStore) Find(ctx context.Context, ids []string) (map[string]models.Product, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	found := make(map[string]models.Product, len(oids))
	if len(oids) == 0 {
		return found, nil
	}

	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, models.NewStorageError("find products", err)
	}
	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, models.NewStorageError("decode products", err)
	}
	for _, doc := range docs {
		found[doc.ID.Hex()] = doc.model()
	}
	return found, nil
}

// AdjustStock applies delta with $inc. A negative delta only matches while the
// stored stock covers it, so concurrent sales cannot drive stock below zero.
func (s *productStore) AdjustStock(ctx context.Context, id string, delta int) error {
	oid, err := objectID("Product", id)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": oid}
	if delta < 0 {
		filter["stock"] = bson.M{"$gte": -delta}
	}
	res, err := s.coll.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"stock": delta}})
	if err != nil {
		return models.NewStorageError("adjust stock", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	current, err := s.Get(ctx, id)
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

func (s *productStore) List(ctx context.Context) ([]models.Product, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, models.NewStorageError("list products", err)
	}
	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, models.NewStorageError("decode products", err)
	}
	products := make([]models.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, doc.model())
	}
	return products, nil
}

func (s *productStore) Create(ctx context.Context, product models.Product) (models.Product, error) {
	doc := productDocument{
		Name:     product.Name,
		Category: product.Category,
		Stock:    product.Stock,
		Price:    product.Price,
	}
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return models.Product{}, models.NewStorageError("insert product", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return models.Product{}, models.NewStorageError("insert product", errors.New("unexpected inserted id type"))
	}
	doc.ID = oid
	return doc.model(), nil
}

func (s *productStore) Update(ctx context.Context, product models.Product) (models.Product, error) {
	oid, err := objectID("Product", product.ID)
	if err != nil {
		return models.Product{}, err
	}
	update := bson.M{"$set": bson.M{
		"name":     product.Name,
		"category": product.Category,
		"stock":    product.Stock,
		"price":    product.Price,
	}}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return models.Product{}, models.NewStorageError("update product", err)
	}
	if res.MatchedCount == 0 {
		return models.Product{}, models.NewNotFoundError("Product", product.ID)
	}
	return product, nil
}

func (s *productStore) Delete(ctx context.Context, id string) error {
	oid, err := objectID("Product", id)
	if err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return models.NewStorageError("delete product", err)
	}
	if res.DeletedCount == 0 {
		return models.NewNotFoundError("Product", id)
	}
	return nil
}
