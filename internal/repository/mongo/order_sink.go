package mongo

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type itemDocument struct {
	ID    int64  `bson:"id"`
	Name  string `bson:"name"`
	Price int64  `bson:"price"`
}

type orderDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Address   string             `bson:"address"`
	Cart      []itemDocument     `bson:"cart"`
	Total     int64              `bson:"total"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func toDocument(o *domain.Order, createdAt time.Time) orderDocument {
	items := make([]itemDocument, 0, len(o.Cart))
	for _, it := range o.Cart {
		items = append(items, itemDocument{ID: it.ID, Name: it.Name, Price: it.Price})
	}
	return orderDocument{
		Name:      o.Name,
		Email:     o.Email,
		Address:   o.Address,
		Cart:      items,
		Total:     o.Total,
		CreatedAt: createdAt,
	}
}

type MongoOrderSink struct {
	Collection *mongo.Collection
	now        func() time.Time
}

func NewMongoOrderSink(db *mongo.Database, collection string) repository.OrderSink {
	return &MongoOrderSink{
		Collection: db.Collection(collection),
		now:        time.Now,
	}
}

func (r *MongoOrderSink) Create(ctx context.Context, order *domain.Order) error {
	// Millisecond precision matches what BSON dates can hold.
	createdAt := r.now().UTC().Truncate(time.Millisecond)
	res, err := r.Collection.InsertOne(ctx, toDocument(order, createdAt))
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("insert order: unexpected id type %T", res.InsertedID)
	}
	order.ID = id.Hex()
	order.CreatedAt = createdAt
	return nil
}
