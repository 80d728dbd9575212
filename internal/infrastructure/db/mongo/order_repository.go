package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/orderflow/orderflow/internal/core/domain"
)

const collectionOrders = "orders"

type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection(collectionOrders)}
}

type orderDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	CustomerName string             `bson:"customer_name"`
	ItemNumber   string             `bson:"item_number"`
	Quantity     int                `bson:"qty"`
	Details      string             `bson:"details,omitempty"`
	PickupDate   string             `bson:"day_pickup"`
	PickupTime   string             `bson:"time_pickup"`
	Department   string             `bson:"department"`
	Status       string             `bson:"status"`
	CreatedBy    string             `bson:"created_by,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (d orderDocument) toDomain() domain.Order {
	return domain.Order{
		ID:           d.ID.Hex(),
		CustomerName: d.CustomerName,
		ItemNumber:   d.ItemNumber,
		Quantity:     d.Quantity,
		Details:      d.Details,
		PickupDate:   d.PickupDate,
		PickupTime:   d.PickupTime,
		Department:   domain.Department(d.Department),
		Status:       domain.OrderStatus(d.Status),
		CreatedBy:    d.CreatedBy,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// newestFirst sorts the aggregate list.
func newestFirst() bson.D {
	return bson.D{{Key: "created_at", Value: -1}}
}

// byPickup sorts a department list by pickup date, then time.
func byPickup() bson.D {
	return bson.D{
		{Key: "day_pickup", Value: 1},
		{Key: "time_pickup", Value: 1},
	}
}

// ListAll returns every order, newest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(newestFirst()))
}

// ListByDepartment returns one department's orders by pickup date and time.
func (r *OrderRepository) ListByDepartment(ctx context.Context, department domain.Department) ([]domain.Order, error) {
	return r.find(ctx, bson.M{"department": string(department)}, options.Find().SetSort(byPickup()))
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrOrderNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc orderDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFoundOr("find order", err)
	}
	o := doc.toDomain()
	return &o, nil
}

func (r *OrderRepository) Create(ctx context.Context, fields domain.OrderFields, creatorID string) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	status := fields.Status
	if status == "" {
		status = domain.StatusNew
	}
	now := time.Now().UTC()
	doc := orderDocument{
		CustomerName: fields.CustomerName,
		ItemNumber:   fields.ItemNumber,
		Quantity:     fields.Quantity,
		Details:      fields.Details,
		PickupDate:   fields.PickupDate,
		PickupTime:   fields.PickupTime,
		Department:   string(fields.Department),
		Status:       string(status),
		CreatedBy:    creatorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("create order: %w: %v", domain.ErrPersistence, err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	o := doc.toDomain()
	return &o, nil
}

// Update applies the non-nil fields of patch without upserting.
func (r *OrderRepository) Update(ctx context.Context, id string, patch domain.OrderPatch) (*domain.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrOrderNotFound
	}

	set, unset := updateDocument(patch)
	if len(set) == 0 && len(unset) == 0 {
		return r.FindByID(ctx, id)
	}
	set["updated_at"] = time.Now().UTC()
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After).SetUpsert(false)
	var doc orderDocument
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		return nil, notFoundOr("update order", err)
	}
	o := doc.toDomain()
	return &o, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	return r.Update(ctx, id, domain.StatusPatch(status))
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrOrderNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete order: %w: %v", domain.ErrPersistence, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// EnsureIndexes creates the indexes backing both list orderings.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "department", Value: 1}, {Key: "day_pickup", Value: 1}, {Key: "time_pickup", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w: %v", domain.ErrPersistence, err)
	}
	defer cur.Close(ctx)

	orders := make([]domain.Order, 0)
	for cur.Next(ctx) {
		var doc orderDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode order: %w: %v", domain.ErrPersistence, err)
		}
		orders = append(orders, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w: %v", domain.ErrPersistence, err)
	}
	return orders, nil
}

// updateDocument splits a patch into $set and $unset; an empty details
// value removes the field.
func updateDocument(p domain.OrderPatch) (bson.M, bson.M) {
	set := bson.M{}
	unset := bson.M{}

	if p.CustomerName != nil {
		set["customer_name"] = strings.TrimSpace(*p.CustomerName)
	}
	if p.ItemNumber != nil {
		set["item_number"] = strings.TrimSpace(*p.ItemNumber)
	}
	if p.Quantity != nil {
		set["qty"] = *p.Quantity
	}
	if p.Details != nil {
		if d := strings.TrimSpace(*p.Details); d != "" {
			set["details"] = d
		} else {
			unset["details"] = ""
		}
	}
	if p.PickupDate != nil {
		set["day_pickup"] = *p.PickupDate
	}
	if p.PickupTime != nil {
		set["time_pickup"] = *p.PickupTime
	}
	if p.Department != nil {
		set["department"] = string(*p.Department)
	}
	if p.Status != nil {
		set["status"] = string(*p.Status)
	}
	return set, unset
}

func notFoundOr(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrOrderNotFound
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrPersistence, err)
}
