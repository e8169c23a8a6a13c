package store

import (
	"context"
	"errors"
	"fmt"

	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// collectionName is the MongoDB collection holding the contact documents.
const collectionName = "contacts"

// contactDocument is the stored form of a contact.
type contactDocument struct {
	ID            bson.ObjectID `bson:"_id,omitempty"`
	model.Contact `bson:",inline"`
}

func (d contactDocument) toContact() model.Contact {
	c := d.Contact
	c.Id = d.ID.Hex()
	return c
}

// MongoStore is a ContactStore backed by a MongoDB collection.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore connects to the MongoDB server at uri and uses the contacts collection of the
// given database.
func NewMongoStore(uri string, database string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("error connecting to mongodb: %w", err)
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collectionName),
	}, nil
}

// idFilter selects the document with the given hex id. Ids that are not valid object ids select
// the null id, which no stored document has.
func idFilter(id string) bson.M {
	oid, err := bson.ObjectIDFromHex(id)
	if id == "" || err != nil {
		return bson.M{"_id": nil}
	}
	return bson.M{"_id": oid}
}

// nameFilter matches names against the unescaped expression, ignoring case.
func nameFilter(name string) bson.M {
	if name == "" {
		return bson.M{}
	}
	return bson.M{"name": bson.Regex{Pattern: name, Options: "i"}}
}

// patchUpdate builds the $set document for the fields set in the patch.
func patchUpdate(patch model.ContactPatch) bson.M {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.Address != nil {
		set["address"] = *patch.Address
	}
	if patch.Phone != nil {
		set["phone"] = *patch.Phone
	}
	if patch.Favorite != nil {
		set["favorite"] = *patch.Favorite
	}
	return bson.M{"$set": set}
}

// Create inserts the contact with a new ObjectID and sets its Id to the hex form of it.
func (s *MongoStore) Create(ctx context.Context, contact *model.Contact) error {
	doc := contactDocument{ID: bson.NewObjectID(), Contact: *contact}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("error saving contact: %w", err)
	}
	contact.Id = doc.ID.Hex()
	return nil
}

// FindAll returns the contacts whose name matches, or all contacts when name is empty.
func (s *MongoStore) FindAll(ctx context.Context, name string) ([]model.Contact, error) {
	return s.find(ctx, nameFilter(name))
}

// FindFavorites returns the favorite contacts.
func (s *MongoStore) FindFavorites(ctx context.Context) ([]model.Contact, error) {
	return s.find(ctx, bson.M{"favorite": true})
}

func (s *MongoStore) find(ctx context.Context, filter bson.M) ([]model.Contact, error) {
	cursor, err := s.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error finding contacts: %w", err)
	}
	var docs []contactDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("error decoding contacts: %w", err)
	}
	contacts := make([]model.Contact, 0, len(docs))
	for _, doc := range docs {
		contacts = append(contacts, doc.toContact())
	}
	return contacts, nil
}

// FindByID returns the contact with the given id or ErrNotFound.
func (s *MongoStore) FindByID(ctx context.Context, id string) (*model.Contact, error) {
	var doc contactDocument
	err := s.collection.FindOne(ctx, idFilter(id)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error finding contact %q: %w", id, err)
	}
	contact := doc.toContact()
	return &contact, nil
}

// Update with an empty patch only checks that the contact exists, since an empty $set is
// rejected by the server.
func (s *MongoStore) Update(ctx context.Context, id string, patch model.ContactPatch) (*model.Contact, error) {
	if patch.IsEmpty() {
		return s.FindByID(ctx, id)
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc contactDocument
	err := s.collection.FindOneAndUpdate(ctx, idFilter(id), patchUpdate(patch), opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error updating contact %q: %w", id, err)
	}
	contact := doc.toContact()
	return &contact, nil
}

// Delete removes the contact with the given id or returns ErrNotFound.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	err := s.collection.FindOneAndDelete(ctx, idFilter(id)).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("error deleting contact %q: %w", id, err)
	}
	return nil
}

// DeleteAll removes every document of the collection and returns how many were removed.
func (s *MongoStore) DeleteAll(ctx context.Context) (int64, error) {
	result, err := s.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("error deleting all contacts: %w", err)
	}
	return result.DeletedCount, nil
}

// Ping checks that the primary of the replica set can be reached.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
