package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestIdFilter(t *testing.T) {
	oid := bson.NewObjectID()
	assert.Equal(t, bson.M{"_id": oid}, idFilter(oid.Hex()))

	// Invalid ids must select nothing instead of failing.
	for _, id := range []string{"", "42", "INVALID", oid.Hex() + "0"} {
		assert.Equal(t, bson.M{"_id": nil}, idFilter(id), "id: "+id)
	}
}

func TestNameFilter(t *testing.T) {
	assert.Empty(t, nameFilter(""))
	assert.Equal(t, bson.M{"name": bson.Regex{Pattern: "a.n(", Options: "i"}}, nameFilter("a.n("))
}

func TestPatchUpdate(t *testing.T) {
	update := patchUpdate(model.ContactPatch{Email: strPtr("x@example.com"), Favorite: boolPtr(true)})
	assert.Equal(t, bson.M{"$set": bson.M{"email": "x@example.com", "favorite": true}}, update)
}

// TestContactDocumentEncoding expects the stored document to hold the object id in _id and to
// omit unset optional fields.
func TestContactDocumentEncoding(t *testing.T) {
	oid := bson.NewObjectID()
	doc := contactDocument{ID: oid, Contact: model.Contact{Id: "ignored", Name: "Ana", Phone: strPtr("+420 111")}}
	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var decoded bson.M
	require.NoError(t, bson.Unmarshal(raw, &decoded))
	assert.Equal(t, oid, decoded["_id"])
	assert.Equal(t, "Ana", decoded["name"])
	assert.Equal(t, "+420 111", decoded["phone"])
	assert.Equal(t, false, decoded["favorite"])
	assert.NotContains(t, decoded, "email")
	assert.NotContains(t, decoded, "Id")

	var back contactDocument
	require.NoError(t, bson.Unmarshal(raw, &back))
	assert.Equal(t, oid.Hex(), back.toContact().Id)
}
