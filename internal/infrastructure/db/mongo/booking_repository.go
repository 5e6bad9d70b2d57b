package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/a5adamaty/booking-platform/internal/core/domain"
)

const collectionBookings = "bookings"

// BookingRepository implements ports.BookingRepository using MongoDB.
type BookingRepository struct {
	coll  *mongo.Collection
	users *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{
		coll:  db.Collection(collectionBookings),
		users: db.Collection(collectionUsers),
	}
}

type mongoBooking struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	UserID          string             `bson:"user_id"`
	ServiceName     string             `bson:"service_name"`
	ServiceCategory string             `bson:"service_category"`
	ScheduledDate   string             `bson:"scheduled_date"`
	ScheduledTime   string             `bson:"scheduled_time"`
	DurationMinutes int                `bson:"duration_minutes"`
	Price           float64            `bson:"price"`
	Notes           string             `bson:"notes,omitempty"`
	ProviderName    string             `bson:"provider_name,omitempty"`
	Location        string             `bson:"location"`
	Status          string             `bson:"status"`
	PaymentStatus   string             `bson:"payment_status"`
	IdempotencyKey  string             `bson:"idempotency_key,omitempty"`
	CreatedAt       time.Time          `bson:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at"`
}

func (mb mongoBooking) toDomain() *domain.Booking {
	return &domain.Booking{
		ID:              mb.ID.Hex(),
		UserID:          mb.UserID,
		ServiceName:     mb.ServiceName,
		ServiceCategory: mb.ServiceCategory,
		ScheduledDate:   mb.ScheduledDate,
		ScheduledTime:   mb.ScheduledTime,
		DurationMinutes: mb.DurationMinutes,
		Price:           mb.Price,
		Notes:           mb.Notes,
		ProviderName:    mb.ProviderName,
		Location:        mb.Location,
		Status:          domain.BookingStatus(mb.Status),
		PaymentStatus:   domain.PaymentStatus(mb.PaymentStatus),
		IdempotencyKey:  mb.IdempotencyKey,
		CreatedAt:       mb.CreatedAt,
		UpdatedAt:       mb.UpdatedAt,
	}
}

func fromDomain(b *domain.Booking) mongoBooking {
	return mongoBooking{
		UserID:          b.UserID,
		ServiceName:     b.ServiceName,
		ServiceCategory: b.ServiceCategory,
		ScheduledDate:   b.ScheduledDate,
		ScheduledTime:   b.ScheduledTime,
		DurationMinutes: b.DurationMinutes,
		Price:           b.Price,
		Notes:           b.Notes,
		ProviderName:    b.ProviderName,
		Location:        b.Location,
		Status:          string(b.Status),
		PaymentStatus:   string(b.PaymentStatus),
		IdempotencyKey:  b.IdempotencyKey,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, fromDomain(b))
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	created := *b
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrBookingNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mb mongoBooking
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mb); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return mb.toDomain(), nil
}

func (r *BookingRepository) FindByUser(ctx context.Context, userID string) ([]*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "scheduled_date", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find bookings by user: %w", err)
	}
	defer cur.Close(ctx)

	return decodeBookings(ctx, cur)
}

// ListWithOwners returns all bookings, newest first, with each owner's
// contact summary joined in via a batched second fetch.
func (r *BookingRepository) ListWithOwners(ctx context.Context) ([]*domain.BookingWithOwner, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer cur.Close(ctx)

	bookings, err := decodeBookings(ctx, cur)
	if err != nil {
		return nil, err
	}

	owners, err := r.fetchOwners(ctx, bookings)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.BookingWithOwner, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, &domain.BookingWithOwner{
			Booking: *b,
			Owner:   owners[b.UserID],
		})
	}
	return out, nil
}

func (r *BookingRepository) fetchOwners(ctx context.Context, bookings []*domain.Booking) (map[string]domain.OwnerSummary, error) {
	var ids []primitive.ObjectID
	seen := make(map[string]struct{}, len(bookings))
	for _, b := range bookings {
		if _, ok := seen[b.UserID]; ok {
			continue
		}
		seen[b.UserID] = struct{}{}
		if oid, err := primitive.ObjectIDFromHex(b.UserID); err == nil {
			ids = append(ids, oid)
		}
	}
	owners := make(map[string]domain.OwnerSummary, len(ids))
	if len(ids) == 0 {
		return owners, nil
	}

	cur, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("fetch booking owners: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var mu mongoUser
		if err := cur.Decode(&mu); err != nil {
			return nil, fmt.Errorf("decode owner: %w", err)
		}
		owners[mu.ID.Hex()] = domain.OwnerSummary{
			ID:    mu.ID.Hex(),
			Name:  mu.Name,
			Email: mu.Email,
			Phone: mu.Phone,
		}
	}
	return owners, cur.Err()
}

func (r *BookingRepository) Update(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	oid, err := primitive.ObjectIDFromHex(b.ID)
	if err != nil {
		return nil, domain.ErrBookingNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, fromDomain(b))
	if err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrBookingNotFound
	}
	return b, nil
}

func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrBookingNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

// EnsureIndexes creates the indexes backing the owner listing and the
// idempotency lookup.
func (r *BookingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "scheduled_date", Value: -1}}},
		{Keys: bson.D{{Key: "idempotency_key", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func decodeBookings(ctx context.Context, cur *mongo.Cursor) ([]*domain.Booking, error) {
	var bookings []*domain.Booking
	for cur.Next(ctx) {
		var mb mongoBooking
		if err := cur.Decode(&mb); err != nil {
			return nil, fmt.Errorf("decode booking: %w", err)
		}
		bookings = append(bookings, mb.toDomain())
	}
	return bookings, cur.Err()
}
