package integrationtest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/dirk.krummacker/contacts-api/internal/config"
	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
	"gitlab.com/dirk.krummacker/contacts-api/internal/service"
	"gitlab.com/dirk.krummacker/contacts-api/internal/store"
	"go.uber.org/zap"
)

// setupRouter connects to the database given by the environment and returns the router of the
// service. The tests only run with INTEGRATION=1 since they need a running database.
//
// Usage example on the command line:
// > INTEGRATION=1 DBDRIVER=mongo MONGO_URI=mongodb://localhost:27017 go test ./internal/integrationtest/
func setupRouter(t *testing.T) *gin.Engine {
	if os.Getenv("INTEGRATION") != "1" {
		t.Skip("set INTEGRATION=1 to run against a live database")
	}
	cfg, err := config.Load()
	require.NoError(t, err)
	contacts, err := store.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { contacts.Close(context.Background()) })
	gin.SetMode(gin.ReleaseMode)
	return service.SetupHttpRouter(contacts, zap.NewNop(), service.Options{})
}

// request executes the HTTP request and returns the response.
func request(router *gin.Engine, method string, url string, body string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	req, _ := http.NewRequest(method, url, strings.NewReader(body))
	router.ServeHTTP(recorder, req)
	return recorder
}

// createContact posts the body, checks the response and returns the new id.
func createContact(t *testing.T, router *gin.Engine, body string) string {
	recorder := request(router, "POST", "/contacts", body)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	var contact model.Contact
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &contact))
	require.NotEmpty(t, contact.Id)
	return contact.Id
}

// deleteContact deletes the contact with the given id and asserts that this worked.
func deleteContact(t *testing.T, router *gin.Engine, id string) {
	recorder := request(router, "DELETE", "/contacts/"+id, "")
	assert.Equal(t, http.StatusOK, recorder.Code)
}

// findContacts runs the GET request and returns the contacts of the response.
func findContacts(t *testing.T, router *gin.Engine, url string) []model.Contact {
	recorder := request(router, "GET", url, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	var contacts []model.Contact
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &contacts))
	return contacts
}

func containsID(contacts []model.Contact, id string) bool {
	for _, contact := range contacts {
		if contact.Id == id {
			return true
		}
	}
	return false
}

// TestContactHappyPath tests a POST, GET, PUT, and DELETE with valid data.
func TestContactHappyPath(t *testing.T) {
	router := setupRouter(t)

	// test the endpoint for creating a contact
	id := createContact(t, router, `
		{
			"name": "Erika Mustermann",
			"email": "erika@example.com",
			"phone": "+49 0815 4711"
		}
	`)

	// test the endpoint for finding a contact
	getRecorder := request(router, "GET", "/contacts/"+id, "")
	assert.Equal(t, http.StatusOK, getRecorder.Code)
	var getBody map[string]interface{}
	json.Unmarshal(getRecorder.Body.Bytes(), &getBody)
	assert.Equal(t, id, getBody["id"])
	assert.Equal(t, "Erika Mustermann", getBody["name"])
	assert.Equal(t, "erika@example.com", getBody["email"])
	assert.Equal(t, "+49 0815 4711", getBody["phone"])
	assert.Equal(t, false, getBody["favorite"])

	// test the endpoint for updating a contact
	putRecorder := request(router, "PUT", "/contacts/"+id, `
		{
			"name": "Rudi Völler",
			"address": "Am Ring 1",
			"favorite": true
		}
	`)
	assert.Equal(t, http.StatusOK, putRecorder.Code)

	// test if a subsequent lookup of the contact returns the updated values
	getAgainRecorder := request(router, "GET", "/contacts/"+id, "")
	assert.Equal(t, http.StatusOK, getAgainRecorder.Code)
	var getAgainBody map[string]interface{}
	json.Unmarshal(getAgainRecorder.Body.Bytes(), &getAgainBody)
	assert.Equal(t, "Rudi Völler", getAgainBody["name"])
	assert.Equal(t, "erika@example.com", getAgainBody["email"])
	assert.Equal(t, "Am Ring 1", getAgainBody["address"])
	assert.Equal(t, "+49 0815 4711", getAgainBody["phone"])
	assert.Equal(t, true, getAgainBody["favorite"])

	// test the endpoint for deleting a contact
	deleteContact(t, router, id)

	// test if a final lookup of the contact will correctly not find it
	getFinalRecorder := request(router, "GET", "/contacts/"+id, "")
	assert.Equal(t, http.StatusNotFound, getFinalRecorder.Code)
}

// TestCreateContactInvalidBody tests a POST with different forms of invalid request body data.
func TestCreateContactInvalidBody(t *testing.T) {
	invalidRequestBodies := []string{
		"not JSON",
		`{
			"name": "Erika"
			"phone": "+49 0815 4711"
		}`, // commas missing
	}

	router := setupRouter(t)
	for _, body := range invalidRequestBodies {
		recorder := request(router, "POST", "/contacts", body)
		assert.Equal(t, http.StatusBadRequest, recorder.Code, "request body: "+body)
	}
}

// TestCreateContactWithoutName tests a POST without a name, which must not create a contact.
func TestCreateContactWithoutName(t *testing.T) {
	router := setupRouter(t)
	before := findContacts(t, router, "/contacts")

	recorder := request(router, "POST", "/contacts", `{"phone": "+49 0815 4711"}`)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	assert.Len(t, findContacts(t, router, "/contacts"), len(before))
}

// TestUpdateContactInvalidId tests a PUT with an id the database could never have assigned.
func TestUpdateContactInvalidId(t *testing.T) {
	router := setupRouter(t)
	recorder := request(router, "PUT", "/contacts/invalid", `{"name": "Rudi Völler"}`)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

// TestUpdateContactEmptyBody tests a PUT with a valid id but nothing to update.
func TestUpdateContactEmptyBody(t *testing.T) {
	router := setupRouter(t)
	id := createContact(t, router, `{"name": "Erika"}`)

	for _, body := range []string{"", "{}"} {
		recorder := request(router, "PUT", "/contacts/"+id, body)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	}

	// clean up after the test
	deleteContact(t, router, id)
}

// TestFindContactsByName creates two contacts and verifies that a name filter only finds the
// matching one, regardless of case.
func TestFindContactsByName(t *testing.T) {
	router := setupRouter(t)
	matchingId := createContact(t, router, `{"name": "Julius Cäsar"}`)
	nonMatchingId := createContact(t, router, `{"name": "Marc Anton"}`)

	contacts := findContacts(t, router, "/contacts?name=jul")
	assert.True(t, containsID(contacts, matchingId), "could not find contact with matching name")
	assert.False(t, containsID(contacts, nonMatchingId), "found contact with non-matching name")

	// clean up after the test
	deleteContact(t, router, matchingId)
	deleteContact(t, router, nonMatchingId)
}

// TestFindFavoriteContacts verifies that only favorites are returned by the favorites endpoint.
func TestFindFavoriteContacts(t *testing.T) {
	router := setupRouter(t)
	favoriteId := createContact(t, router, `{"name": "Ana", "favorite": true}`)
	otherId := createContact(t, router, `{"name": "Bob", "favorite": "true"}`)

	contacts := findContacts(t, router, "/contacts/favorite")
	assert.True(t, containsID(contacts, favoriteId))
	assert.False(t, containsID(contacts, otherId))
	for _, contact := range contacts {
		assert.True(t, contact.Favorite)
	}

	// clean up after the test
	deleteContact(t, router, favoriteId)
	deleteContact(t, router, otherId)
}
