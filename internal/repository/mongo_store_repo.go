package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Werneck0live/mm-store/internal/models"
)

const (
	storesCollection   = "stores"
	countersCollection = "counters"
)

// MongoStoreRepository guarda as lojas como documentos; o _id inteiro vem de um contador.
type MongoStoreRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

func NewMongoStoreRepository(db *mongo.Database) *MongoStoreRepository {
	return &MongoStoreRepository{
		coll:     db.Collection(storesCollection),
		counters: db.Collection(countersCollection),
	}
}

func (r *MongoStoreRepository) EnsureIndexes(ctx context.Context) error {
	idx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "cnpj", Value: 1}}, Options: options.Index().SetName("idx_cnpj")},
		{Keys: bson.D{{Key: "addressid", Value: 1}}, Options: options.Index().SetName("idx_addressid")},
		{Keys: bson.D{{Key: "ownerid", Value: 1}}, Options: options.Index().SetName("idx_ownerid")},
	}
	for _, m := range idx {
		if err := r.createIndex(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *MongoStoreRepository) createIndex(ctx context.Context, model mongo.IndexModel) error {
	_, err := r.coll.Indexes().CreateOne(ctx, model)
	if err == nil {
		return nil
	}
	// Se já existir com outra opção, tenta dropar e recriar
	name := *model.Options.Name
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 85 { // IndexOptionsConflict
		if _, dropErr := r.coll.Indexes().DropOne(ctx, name); dropErr != nil {
			return fmt.Errorf("drop index %s: %w", name, dropErr)
		}
		_, createErr := r.coll.Indexes().CreateOne(ctx, model)
		return createErr
	}
	return err
}

func (r *MongoStoreRepository) nextID(ctx context.Context) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": storesCollection},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next store id: %w", err)
	}
	return doc.Seq, nil
}

func mongoFilter(f models.StoreFilter) bson.M {
	filter := bson.M{}
	if f.Name != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Name), Options: "i"}
	}
	if f.CNPJ != "" {
		filter["cnpj"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.CNPJ), Options: "i"}
	}
	if f.OwnerID != "" {
		filter["ownerid"] = f.OwnerID
	}
	switch {
	case f.AddressID != "" && f.AddressIDs != nil:
		filter["$and"] = bson.A{
			bson.M{"addressid": f.AddressID},
			bson.M{"addressid": bson.M{"$in": f.AddressIDs}},
		}
	case f.AddressID != "":
		filter["addressid"] = f.AddressID
	case f.AddressIDs != nil:
		filter["addressid"] = bson.M{"$in": f.AddressIDs}
	}
	return filter
}

func (r *MongoStoreRepository) List(ctx context.Context, f models.StoreFilter) ([]models.Store, error) {
	list := []models.Store{}
	if f.AddressIDs != nil && len(f.AddressIDs) == 0 {
		return list, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, mongoFilter(f), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var s models.Store
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, cur.Err()
}

func (r *MongoStoreRepository) Get(ctx context.Context, id int64) (*models.Store, error) {
	var s models.Store
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *MongoStoreRepository) Create(ctx context.Context, s *models.Store) (*models.Store, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}
	doc := *s
	doc.ID = id
	if _, err := r.coll.InsertOne(ctx, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *MongoStoreRepository) Update(ctx context.Context, id int64, p models.StorePatch) (*models.Store, error) {
	cur, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsEmpty() {
		return cur, nil
	}
	if err := p.Apply(cur); err != nil {
		return nil, err
	}

	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M(patchColumns(p))})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return cur, nil
}

func (r *MongoStoreRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoStoreRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}

func (r *MongoStoreRepository) Close() error {
	return r.coll.Database().Client().Disconnect(context.Background())
}
