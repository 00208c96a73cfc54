package docstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// storage names of the system fields
const (
	mongoID          = "_id"
	mongoCreatedAt   = "createdAt"
	mongoUpdatedAt   = "updatedAt"
	mongoPermissions = "permissions"
)

// Mongo stores every collection of the facade as a MongoDB collection.
// Document ids are strings, permissions are kept as an array in their stored form.
type Mongo struct {
	DB *mongo.Database
	// Timeout is applied to each call on top of the caller's context
	Timeout time.Duration
	Now     func() time.Time
}

// NewMongo wraps an open database
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		DB:      db,
		Timeout: 10 * time.Second,
		Now:     time.Now,
	}
}

func (m *Mongo) Create(ctx context.Context, collection string, id string, data Data, permissions []Permission) (*Document, error) {
	if err := checkCreate(permissions, UserFrom(ctx)); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()

	if id == "" {
		id = primitive.NewObjectID().Hex()
	}
	now := m.Now().UTC()

	perms := make([]string, 0, len(permissions))
	for _, p := range permissions {
		perms = append(perms, p.String())
	}

	record := bson.M{}
	for k, v := range stripReserved(data) {
		record[k] = v
	}
	record[mongoID] = id
	record[mongoCreatedAt] = now
	record[mongoUpdatedAt] = now
	record[mongoPermissions] = perms

	_, err := m.DB.Collection(collection).InsertOne(ctx, record)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &Error{Code: 409, Message: "document with the requested id already exists"}
		}
		return nil, err
	}

	return toDocument(collection, record), nil
}

func (m *Mongo) Get(ctx context.Context, collection string, id string) (*Document, error) {
	ctx, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()

	var record bson.M
	err := m.DB.Collection(collection).FindOne(ctx, bson.M{mongoID: id}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return toDocument(collection, record), nil
}

func (m *Mongo) Update(ctx context.Context, collection string, id string, data Data) (*Document, error) {
	ctx, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()

	set := bson.M{}
	for k, v := range stripReserved(data) {
		if isSystemField(k) {
			continue
		}
		set[k] = v
	}
	set[mongoUpdatedAt] = m.Now().UTC()

	filter := bson.M{
		mongoID:          id,
		mongoPermissions: bson.M{"$in": grants(ActionUpdate, UserFrom(ctx))},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var record bson.M
	err := m.DB.Collection(collection).FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, m.missingOrDenied(ctx, collection, id)
		}
		return nil, err
	}

	return toDocument(collection, record), nil
}

func (m *Mongo) Increment(ctx context.Context, collection string, id string, deltas map[string]float64) (*Document, error) {
	ctx, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()

	inc := bson.M{}
	for field, delta := range deltas {
		if isSystemField(field) || strings.HasPrefix(field, "$") {
			continue
		}
		// integral deltas keep integer counters integer
		if delta == float64(int64(delta)) {
			inc[field] = int64(delta)
		} else {
			inc[field] = delta
		}
	}

	update := bson.M{
		"$inc": inc,
		"$set": bson.M{mongoUpdatedAt: m.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var record bson.M
	err := m.DB.Collection(collection).FindOneAndUpdate(ctx, bson.M{mongoID: id}, update, opts).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return toDocument(collection, record), nil
}

func (m *Mongo) Delete(ctx context.Context, collection string, id string) error {
	ctx, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()

	filter := bson.M{
		mongoID:          id,
		mongoPermissions: bson.M{"$in": grants(ActionDelete, UserFrom(ctx))},
	}
	res, err := m.DB.Collection(collection).DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return m.missingOrDenied(ctx, collection, id)
	}

	return nil
}

func (m *Mongo) List(ctx context.Context, collection string, queries ...Query) ([]*Document, error) {
	ctx, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()

	plan := compile(queries)

	filter := bson.D{}
	for _, f := range plan.filters {
		filter = append(filter, bson.E{Key: storageField(f.Field), Value: f.Value})
	}

	sort := bson.D{}
	for _, o := range plan.orders {
		dir := 1
		if o.kind == queryOrderDesc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: storageField(o.Field), Value: dir})
	}
	if len(sort) == 0 {
		sort = bson.D{{Key: mongoCreatedAt, Value: -1}, {Key: mongoID, Value: -1}}
	}

	opts := options.Find().SetSort(sort).SetLimit(int64(plan.limit))
	cursor, err := m.DB.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []bson.M
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	docs := make([]*Document, 0, len(records))
	for _, r := range records {
		docs = append(docs, toDocument(collection, r))
	}
	return docs, nil
}

// missingOrDenied tells a missing document apart from a permission rejection
// after a permission-filtered write matched nothing
func (m *Mongo) missingOrDenied(ctx context.Context, collection string, id string) error {
	n, err := m.DB.Collection(collection).CountDocuments(ctx, bson.M{mongoID: id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return errUnauthorized("the current user is not authorized to perform the requested action")
}

func storageField(field string) string {
	switch field {
	case FieldID:
		return mongoID
	case FieldCreatedAt:
		return mongoCreatedAt
	case FieldUpdatedAt:
		return mongoUpdatedAt
	}
	return field
}

func isSystemField(field string) bool {
	switch field {
	case mongoID, mongoCreatedAt, mongoUpdatedAt, mongoPermissions:
		return true
	}
	return false
}

func toDocument(collection string, record bson.M) *Document {
	doc := &Document{
		Collection: collection,
		Data:       Data{},
	}

	for k, v := range record {
		switch k {
		case mongoID:
			switch id := v.(type) {
			case string:
				doc.ID = id
			case primitive.ObjectID:
				doc.ID = id.Hex()
			}
		case mongoCreatedAt:
			doc.CreatedAt = parseTime(fromBSON(v))
		case mongoUpdatedAt:
			doc.UpdatedAt = parseTime(fromBSON(v))
		case mongoPermissions:
			if list, ok := fromBSON(v).([]interface{}); ok {
				for _, item := range list {
					s, _ := item.(string)
					if p, ok := ParsePermission(s); ok {
						doc.Permissions = append(doc.Permissions, p)
					}
				}
			} else if list, ok := v.([]string); ok {
				for _, s := range list {
					if p, ok := ParsePermission(s); ok {
						doc.Permissions = append(doc.Permissions, p)
					}
				}
			}
		default:
			doc.Data[k] = fromBSON(v)
		}
	}

	return doc
}

// fromBSON converts driver types into plain Go values
func fromBSON(v interface{}) interface{} {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	case primitive.ObjectID:
		return t.Hex()
	case primitive.A:
		list := make([]interface{}, 0, len(t))
		for _, item := range t {
			list = append(list, fromBSON(item))
		}
		return list
	case primitive.M:
		obj := make(map[string]interface{}, len(t))
		for k, item := range t {
			obj[k] = fromBSON(item)
		}
		return obj
	case primitive.D:
		obj := make(map[string]interface{}, len(t))
		for _, e := range t {
			obj[e.Key] = fromBSON(e.Value)
		}
		return obj
	case int32:
		return int64(t)
	}
	return v
}
