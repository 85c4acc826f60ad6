package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	itemDomain "github.com/davicafu/crudlab/internal/item/domain"
	sharedDomain "github.com/davicafu/crudlab/internal/shared/domain"
	sharedUtils "github.com/davicafu/crudlab/internal/shared/infra/utils"
)

// ItemRepoMongoDB implementa la interfaz ItemRepository para MongoDB.
type ItemRepoMongoDB struct {
	client *mongo.Client
	coll   *mongo.Collection
	schema sharedDomain.Schema
}

var _ itemDomain.ItemRepository = (*ItemRepoMongoDB)(nil)

// NewItemRepoMongoDB es el constructor del repositorio.
func NewItemRepoMongoDB(ctx context.Context, client *mongo.Client, dbName string) (*ItemRepoMongoDB, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}

	schema := itemDomain.Schema()
	return &ItemRepoMongoDB{
		client: client,
		coll:   client.Database(dbName).Collection(schema.Table),
		schema: schema,
	}, nil
}

// --- Structs de BSON para el mapeo ---
// Se definen localmente para no "contaminar" el dominio con tags de BSON.
// Los nombres de campo coinciden con los del Schema para que sort_by y
// search_field funcionen sin traducción (salvo id -> _id).

type mongoItem struct {
	ID          uuid.UUID `bson:"_id"`
	Name        string    `bson:"name"`
	Value       int64     `bson:"value"`
	Description string    `bson:"description"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

// --- Mutaciones ---

func (r *ItemRepoMongoDB) Insert(ctx context.Context, it *itemDomain.Item) error {
	if _, err := r.coll.InsertOne(ctx, toMongoItem(it)); err != nil {
		return sharedDomain.Storage(err)
	}
	return nil
}

func (r *ItemRepoMongoDB) Update(ctx context.Context, it *itemDomain.Item) error {
	mi := toMongoItem(it)
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": mi.ID}, bson.M{"$set": mi})
	if err != nil {
		return sharedDomain.Storage(err)
	}
	if res.MatchedCount == 0 {
		return sharedDomain.ErrNotFound
	}
	return nil
}

func (r *ItemRepoMongoDB) DeleteByID(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return sharedDomain.Storage(err)
	}
	if res.DeletedCount == 0 {
		return sharedDomain.ErrNotFound
	}
	return nil
}

// --- Lectura ---

func (r *ItemRepoMongoDB) GetByID(ctx context.Context, id uuid.UUID) (*itemDomain.Item, error) {
	var mi mongoItem
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&mi)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sharedDomain.ErrNotFound
		}
		return nil, sharedDomain.Storage(err)
	}
	return fromMongoItem(&mi), nil
}

func (r *ItemRepoMongoDB) List(ctx context.Context, q sharedDomain.Query) ([]*itemDomain.Item, error) {
	filter, opts, err := r.buildFind(q)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, filter, opts)
}

func (r *ItemRepoMongoDB) ListPage(ctx context.Context, q sharedDomain.Query) ([]*itemDomain.Item, error) {
	filter, opts, err := r.buildFind(q)
	if err != nil {
		return nil, err
	}
	opts.SetSkip(int64(q.Offset()))
	opts.SetLimit(int64(q.Limit))
	return r.find(ctx, filter, opts)
}

func (r *ItemRepoMongoDB) Count(ctx context.Context, q sharedDomain.Query) (int64, error) {
	filter, err := r.queryToFilter(q)
	if err != nil {
		return 0, err
	}
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, sharedDomain.Storage(err)
	}
	return total, nil
}

func (r *ItemRepoMongoDB) find(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]*itemDomain.Item, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, sharedDomain.Storage(err)
	}
	defer cursor.Close(ctx)

	var items []*itemDomain.Item
	for cursor.Next(ctx) {
		var mi mongoItem
		if err := cursor.Decode(&mi); err != nil {
			return nil, sharedDomain.Storage(err)
		}
		items = append(items, fromMongoItem(&mi))
	}
	if err := cursor.Err(); err != nil {
		return nil, sharedDomain.Storage(err)
	}
	return items, nil
}

// --- Traducción Query -> Mongo ---

func (r *ItemRepoMongoDB) buildFind(q sharedDomain.Query) (bson.D, *options.FindOptions, error) {
	filter, err := r.queryToFilter(q)
	if err != nil {
		return nil, nil, err
	}

	field, err := r.schema.SortField(q.SortBy)
	if err != nil {
		return nil, nil, err
	}
	opts := options.Find().SetSort(bson.D{{
		Key:   mongoField(field),
		Value: sharedUtils.Ternary(q.Desc(), -1, 1),
	}})

	return filter, opts, nil
}

// queryToFilter traduce los filtros a un documento con bounds inclusivos.
func (r *ItemRepoMongoDB) queryToFilter(q sharedDomain.Query) (bson.D, error) {
	if err := q.Validate(r.schema); err != nil {
		return nil, err
	}

	filter := bson.D{}
	if q.MinDate != nil {
		filter = append(filter, bson.E{Key: "created_at", Value: bson.M{"$gte": *q.MinDate}})
	}
	if q.MaxDate != nil {
		filter = append(filter, bson.E{Key: "created_at", Value: bson.M{"$lte": *q.MaxDate}})
	}
	if q.MinValue != nil {
		filter = append(filter, bson.E{Key: r.schema.NumericField, Value: bson.M{"$gte": *q.MinValue}})
	}
	if q.MaxValue != nil {
		filter = append(filter, bson.E{Key: r.schema.NumericField, Value: bson.M{"$lte": *q.MaxValue}})
	}
	if q.Search != "" && q.SearchField != "" {
		filter = append(filter, bson.E{
			Key:   mongoField(q.SearchField),
			Value: bson.M{"$regex": regexp.QuoteMeta(q.Search), "$options": "i"},
		})
	}
	return filter, nil
}

func mongoField(field string) string {
	if field == "id" {
		return "_id"
	}
	return field
}

// --- Helpers de Mapeo ---

func toMongoItem(it *itemDomain.Item) *mongoItem {
	return &mongoItem{
		ID: it.ID, Name: it.Name, Value: it.Value,
		Description: it.Description, CreatedAt: it.CreatedAt, UpdatedAt: it.UpdatedAt,
	}
}

func fromMongoItem(mi *mongoItem) *itemDomain.Item {
	return &itemDomain.Item{
		ID: mi.ID, Name: mi.Name, Value: mi.Value,
		Description: mi.Description, CreatedAt: mi.CreatedAt, UpdatedAt: mi.UpdatedAt,
	}
}
