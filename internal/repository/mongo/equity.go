package mongo

import (
	"context"
	"time"

	"papertrade/internal/repository"
	"papertrade/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EquityRepository struct {
	conn       *mongo.Client
	collection *mongo.Collection
}

func NewEquityRepository(conn *mongo.Client) repository.EquityRepo {
	collection := conn.Database("papertrade").Collection("equity")

	return &EquityRepository{conn: conn, collection: collection}
}

// equityDoc stores the decimal as its string form; NUMERIC fidelity
// matters more than native mongo number types here.
type equityDoc struct {
	AccountID string `bson:"account_id"`
	Equity    string `bson:"equity"`
	At        int64  `bson:"at"`
}

func (r *EquityRepository) Append(ctx context.Context, point *models.EquityPoint) error {
	doc := equityDoc{
		AccountID: point.AccountID,
		Equity:    point.Equity.String(),
		At:        point.At.UnixMilli(),
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return err
	}

	return nil
}

func (r *EquityRepository) Series(ctx context.Context, accountID string) ([]models.EquityPoint, error) {
	opts := options.Find().SetSort(bson.D{{Key: "at", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.D{{Key: "account_id", Value: accountID}}, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var out []models.EquityPoint
	for cursor.Next(ctx) {
		var doc equityDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}

		equity, err := decimal.NewFromString(doc.Equity)
		if err != nil {
			return nil, err
		}

		out = append(out, models.EquityPoint{
			AccountID: doc.AccountID,
			Equity:    equity,
			At:        time.UnixMilli(doc.At),
		})
	}

	return out, cursor.Err()
}
