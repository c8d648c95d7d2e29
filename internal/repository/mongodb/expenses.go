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

type expenseDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Type        string             `bson:"type"`
	Description string             `bson:"description,omitempty"`
	Amount      decimal.Decimal    `bson:"amount"`
	ExpenseDate time.Time          `bson:"expenseDate"`
}

func (d expenseDocument) model() models.Expense {
	return models.Expense{
		ID:          d.ID.Hex(),
		Type:        models.ExpenseType(d.Type),
		Description: d.Description,
		Amount:      d.Amount,
		ExpenseDate: d.ExpenseDate,
	}
}

type expenseStore struct {
	coll *mongo.Collection
}

func (s *expenseStore) Create(ctx context.Context, expense models.Expense) (models.Expense, error) {
	doc := expenseDocument{
		Type:        string(expense.Type),
		Description: expense.Description,
		Amount:      expense.Amount,
		ExpenseDate: expense.ExpenseDate,
	}
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return models.Expense{}, models.NewStorageError("insert expense", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return models.Expense{}, models.NewStorageError("insert expense", errors.New("unexpected inserted id type"))
	}
	doc.ID = oid
	return doc.model(), nil
}

func (s *expenseStore) Get(ctx context.Context, id string) (models.Expense, error) {
	oid, err := objectID("Expense", id)
	if err != nil {
		return models.Expense{}, err
	}
	var doc expenseDocument
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return models.Expense{}, notFoundOr(err, "Expense", id, "find expense")
	}
	return doc.model(), nil
}

func (s *expenseStore) Delete(ctx context.Context, id string) error {
	oid, err := objectID("Expense", id)
	if err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return models.NewStorageError("delete expense", err)
	}
	if res.DeletedCount == 0 {
		return models.NewNotFoundError("Expense", id)
	}
	return nil
}

func (s *expenseStore) List(ctx context.Context, within *models.DateRange) ([]models.Expense, error) {
	opts := options.Find().SetSort(bson.D{{Key: "expenseDate", Value: -1}})
	cursor, err := s.coll.Find(ctx, dateFilter("expenseDate", within), opts)
	if err != nil {
		return nil, models.NewStorageError("list expenses", err)
	}
	var docs []expenseDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, models.NewStorageError("decode expenses", err)
	}
	expenses := make([]models.Expense, 0, len(docs))
	for _, doc := range docs {
		expenses = append(expenses, doc.model())
	}
	return expenses, nil
}
