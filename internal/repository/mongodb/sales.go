package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/shopms/internal/domain/models"
)

type saleItemDocument struct {
	Product     primitive.ObjectID `bson:"product"`
	ProductName string             `bson:"productName,omitempty"`
	Quantity    int                `bson:"quantity"`
	SalePrice   decimal.Decimal    `bson:"salePrice"`
	CostPrice   decimal.Decimal    `bson:"costPrice"`
	Amount      decimal.Decimal    `bson:"amount"`
	Profit      decimal.Decimal    `bson:"profit"`
}

type saleDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	BuyerName   string             `bson:"buyerName"`
	SaleDate    time.Time          `bson:"saleDate"`
	Items       []saleItemDocument `bson:"items"`
	TotalAmount decimal.Decimal    `bson:"totalAmount"`
	TotalProfit decimal.Decimal    `bson:"totalProfit"`
}

func newSaleDocument(sale models.Sale) (saleDocument, error) {
	doc := saleDocument{
		BuyerName:   sale.BuyerName,
		SaleDate:    sale.Date,
		Items:       make([]saleItemDocument, 0, len(sale.Items)),
		TotalAmount: sale.TotalAmount,
		TotalProfit: sale.TotalProfit,
	}
	for _, item := range sale.Items {
		oid, err := objectID("Product", item.ProductID)
		if err != nil {
			return saleDocument{}, err
		}
		doc.Items = append(doc.Items, saleItemDocument{
			Product:     oid,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			SalePrice:   item.SalePrice,
			CostPrice:   item.CostPrice,
			Amount:      item.Amount,
			Profit:      item.Profit,
		})
	}
	return doc, nil
}

func (d saleDocument) model() models.Sale {
	sale := models.Sale{
		ID:          d.ID.Hex(),
		BuyerName:   d.BuyerName,
		Date:        d.SaleDate,
		Items:       make([]models.SaleItem, 0, len(d.Items)),
		TotalAmount: d.TotalAmount,
		TotalProfit: d.TotalProfit,
	}
	for _, item := range d.Items {
		sale.Items = append(sale.Items, models.SaleItem{
			ProductID:   item.Product.Hex(),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			SalePrice:   item.SalePrice,
			CostPrice:   item.CostPrice,
			Amount:      item.Amount,
			Profit:      item.Profit,
		})
	}
	return sale
}

type saleStore struct {
	coll *mongo.Collection
}

func (s *saleStore) Insert(ctx context.Context, sale models.Sale) (models.Sale, error) {
	doc, err := newSaleDocument(sale)
	if err != nil {
		return models.Sale{}, err
	}
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return models.Sale{}, models.NewStorageError("insert sale", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return models.Sale{}, models.NewStorageError("insert sale", errors.New("unexpected inserted id type"))
	}
	doc.ID = oid
	return doc.model(), nil
}

func (s *saleStore) Get(ctx context.Context, id string) (models.Sale, error) {
	oid, err := objectID("Sale", id)
	if err != nil {
		return models.Sale{}, err
	}
	var doc saleDocument
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return models.Sale{}, notFoundOr(err, "Sale", id, "find sale")
	}
	return doc.model(), nil
}

func (s *saleStore) Update(ctx context.Context, sale models.Sale) error {
	oid, err := objectID("Sale", sale.ID)
	if err != nil {
		return err
	}
	doc, err := newSaleDocument(sale)
	if err != nil {
		return err
	}
	doc.ID = oid
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return models.NewStorageError("update sale", err)
	}
	if res.MatchedCount == 0 {
		return models.NewNotFoundError("Sale", sale.ID)
	}
	return nil
}

func (s *saleStore) Delete(ctx context.Context, id string) error {
	oid, err := objectID("Sale", id)
	if err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return models.NewStorageError("delete sale", err)
	}
	if res.DeletedCount == 0 {
		return models.NewNotFoundError("Sale", id)
	}
	return nil
}

func (s *saleStore) List(ctx context.Context, within *models.DateRange) ([]models.Sale, error) {
	opts := options.Find().SetSort(bson.D{{Key: "saleDate", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.coll.Find(ctx, dateFilter("saleDate", within), opts)
	if err != nil {
		return nil, models.NewStorageError("list sales", err)
	}
	var docs []saleDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, models.NewStorageError("decode sales", err)
	}
	sales := make([]models.Sale, 0, len(docs))
	for _, doc := range docs {
		sales = append(sales, doc.model())
	}
	return sales, nil
}
