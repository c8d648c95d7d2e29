package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopms/internal/domain/models"
	"github.com/mamadbah2/shopms/internal/repository"
)

const (
	productsCollection = "products"
	salesCollection    = "sales"
	expensesCollection = "expenses"
	usersCollection    = "users"
	reportsCollection  = "daily_reports"
)

// Option customizes a MongoDBRepository.
type Option func(*MongoDBRepository)

// WithTransactions runs ledger units of work inside multi-document transactions.
// The server must be a replica set or sharded cluster.
func WithTransactions(enabled bool) Option {
	return func(r *MongoDBRepository) { r.transactions = enabled }
}

// WithLogger sets the repository logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *MongoDBRepository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// MongoDBRepository is the MongoDB backend for every store contract.
type MongoDBRepository struct {
	client       *mongo.Client
	db           *mongo.Database
	transactions bool
	logger       *zap.Logger
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, opts ...Option) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri).SetRegistry(newRegistry())
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	r := &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// EnsureIndexes creates the indexes the queries rely on.
func (r *MongoDBRepository) EnsureIndexes(ctx context.Context) error {
	indexes := map[string]mongo.IndexModel{
		usersCollection: {
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		salesCollection:    {Keys: bson.D{{Key: "saleDate", Value: -1}}},
		expensesCollection: {Keys: bson.D{{Key: "expenseDate", Value: -1}}},
		productsCollection: {Keys: bson.D{{Key: "name", Value: 1}}},
	}
	for coll, model := range indexes {
		if _, err := r.db.Collection(coll).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", coll, err)
		}
	}
	return nil
}

// Products returns the product store.
func (r *MongoDBRepository) Products() repository.ProductStore {
	return &productStore{coll: r.db.Collection(productsCollection)}
}

// Sales returns the sale store.
func (r *MongoDBRepository) Sales() repository.SaleStore {
	return &saleStore{coll: r.db.Collection(salesCollection)}
}

// Expenses returns the expense store.
func (r *MongoDBRepository) Expenses() repository.ExpenseStore {
	return &expenseStore{coll: r.db.Collection(expensesCollection)}
}

// Users returns the admin user store.
func (r *MongoDBRepository) Users() repository.UserStore {
	return &userStore{coll: r.db.Collection(usersCollection)}
}

// Reports returns the daily report store.
func (r *MongoDBRepository) Reports() repository.ReportStore { return r }

// Transactor returns the unit-of-work runner.
func (r *MongoDBRepository) Transactor() repository.Transactor { return r }

// WithinTransaction runs fn in a session transaction when transactions are enabled,
// otherwise it calls fn directly.
func (r *MongoDBRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !r.transactions {
		return fn(ctx)
	}
	return r.client.UseSession(ctx, func(sc mongo.SessionContext) error {
		_, err := sc.WithTransaction(sc, func(sc mongo.SessionContext) (interface{}, error) {
			return nil, fn(sc)
		})
		return err
	})
}

// Atomic reports whether WithinTransaction rolls back on failure.
func (r *MongoDBRepository) Atomic() bool { return r.transactions }

// SaveDailyReport saves a daily report to the database.
func (r *MongoDBRepository) SaveDailyReport(ctx context.Context, report models.DailyReport) error {
	collection := r.db.Collection(reportsCollection)
	_, err := collection.InsertOne(ctx, report)
	if err != nil {
		return models.NewStorageError("insert daily report", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// objectID parses a hex id. Malformed ids cannot match any document.
func objectID(resource, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, models.NewNotFoundError(resource, id)
	}
	return oid, nil
}

func notFoundOr(err error, resource, id, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewStorageError(op, err)
}

func dateFilter(field string, within *models.DateRange) bson.M {
	if within == nil {
		return bson.M{}
	}
	return bson.M{field: bson.M{"$gte": within.From, "$lte": within.To}}
}
