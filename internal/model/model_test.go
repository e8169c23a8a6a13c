package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeCreateRequest(t *testing.T, body string) CreateRequest {
	var req CreateRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req
}

// TestCreateRequestHasName expects null, false, 0 and "" to count as a missing name and every
// other value as present.
func TestCreateRequestHasName(t *testing.T) {
	for _, name := range []string{`"Ana"`, `5`, `-1.5`, `true`, `{}`, `[]`} {
		assert.True(t, decodeCreateRequest(t, `{"name": `+name+`}`).HasName(), "name: "+name)
	}
	assert.False(t, decodeCreateRequest(t, `{}`).HasName())
	for _, name := range []string{`null`, `""`, `0`, `false`} {
		assert.False(t, decodeCreateRequest(t, `{"name": `+name+`}`).HasName(), "name: "+name)
	}
}

// TestNewContact expects the optional fields to be taken over and 'favorite' to be true only for
// the JSON boolean true.
func TestNewContact(t *testing.T) {
	contact, err := decodeCreateRequest(t, `{"name": "Ana", "email": "ana@example.com", "favorite": true}`).NewContact()
	require.NoError(t, err)
	assert.Equal(t, "Ana", contact.Name)
	assert.Equal(t, "ana@example.com", *contact.Email)
	assert.Nil(t, contact.Address)
	assert.Nil(t, contact.Phone)
	assert.True(t, contact.Favorite)
	assert.Empty(t, contact.Id)

	for _, favorite := range []string{`"true"`, `1`, `false`, `null`, `{}`} {
		contact, err := decodeCreateRequest(t, `{"name": "Ana", "favorite": `+favorite+`}`).NewContact()
		require.NoError(t, err)
		assert.False(t, contact.Favorite, "favorite: "+favorite)
	}
}

// TestNewContactNameAsText expects numbers and booleans to be stored as text and objects or arrays
// to be refused.
func TestNewContactNameAsText(t *testing.T) {
	names := map[string]string{
		`5`:       "5",
		`12.5`:    "12.5",
		`1000000`: "1000000",
		`true`:    "true",
	}
	for name, expected := range names {
		contact, err := decodeCreateRequest(t, `{"name": `+name+`}`).NewContact()
		require.NoError(t, err, "name: "+name)
		assert.Equal(t, expected, contact.Name)
	}
	for _, name := range []string{`{}`, `["Ana"]`} {
		_, err := decodeCreateRequest(t, `{"name": `+name+`}`).NewContact()
		assert.ErrorIs(t, err, ErrNameNotText, "name: "+name)
	}
}

func TestContactPatch(t *testing.T) {
	phone := "+420 111"
	contact := Contact{Id: "1", Name: "Ana", Phone: &phone, Favorite: true}

	var patch ContactPatch
	require.NoError(t, json.Unmarshal([]byte(`{"email": "ana@example.com", "favorite": false}`), &patch))
	assert.False(t, patch.IsEmpty())
	patch.Apply(&contact)

	assert.Equal(t, "1", contact.Id)
	assert.Equal(t, "Ana", contact.Name)
	assert.Equal(t, "ana@example.com", *contact.Email)
	assert.Equal(t, "+420 111", *contact.Phone)
	assert.False(t, contact.Favorite)

	assert.True(t, ContactPatch{}.IsEmpty())
}

// TestContactJSON expects unset optional fields to be omitted and 'favorite' to be always present.
func TestContactJSON(t *testing.T) {
	raw, err := json.Marshal(Contact{Id: "65f1c0ffee0000000000002a", Name: "Ana"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": "65f1c0ffee0000000000002a", "name": "Ana", "favorite": false}`, string(raw))
}
