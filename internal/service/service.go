package service

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
	"gitlab.com/dirk.krummacker/contacts-api/internal/store"
	"go.uber.org/zap"
)

const (
	msgNameEmpty        = "Name can not be empty"
	msgNameNotText      = "Name must be text"
	msgUpdateEmpty      = "Data to update can not be empty"
	msgInvalidJSON      = "invalid JSON"
	msgContactNotFound  = "Contact not found"
	msgContactUpdated   = "Contact was updated successfully"
	msgContactDeleted   = "Contact was deleted successfully"
	msgCreateFailed     = "An error occurred while creating the contact"
	msgFindAllFailed    = "An error occurred while retrieving contact"
	msgFavoritesFailed  = "An error occurred while retrieving favorite contacts"
	msgDeleteAllFailed  = "An error occurred while removing all contacts"
	fmtFindOneFailed    = "Error retrieving contact with id = %s"
	fmtUpdateFailed     = "Error updating contact with id=%s"
	fmtDeleteFailed     = "Could not delete contact with id=%s"
	fmtDeletedAllResult = "%d contacts was deleted successfully"
)

// Options controls the parts of the router that differ between deployments.
type Options struct {
	// RequestLogging turns on one log line per request.
	RequestLogging bool
	// Metrics exposes Prometheus metrics under /metrics.
	Metrics bool
	// MissingNameStatus is the status of a create call without a name. Zero means 404, which
	// existing clients of the API expect.
	MissingNameStatus int
}

// ContactHandler answers the REST API calls for contacts.
type ContactHandler struct {
	contacts          store.ContactStore
	missingNameStatus int
}

// NewContactHandler creates a handler that keeps its contacts in the given store.
func NewContactHandler(contacts store.ContactStore, missingNameStatus int) *ContactHandler {
	if missingNameStatus == 0 {
		missingNameStatus = http.StatusNotFound
	}
	return &ContactHandler{contacts: contacts, missingNameStatus: missingNameStatus}
}

// SetupHttpRouter initializes the REST API router and registers all endpoints.
func SetupHttpRouter(contacts store.ContactStore, log *zap.Logger, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID())
	if opts.RequestLogging {
		router.Use(RequestLogger(log))
	} else {
		log.Info("Turning off HTTP request logging.")
	}
	if opts.Metrics {
		p := ginprometheus.NewPrometheus("contacts")
		// Label by route so that contact ids do not create new time series.
		p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
			return c.FullPath()
		}
		p.Use(router)
	}
	router.Use(ErrorReporter(log))

	h := NewContactHandler(contacts, opts.MissingNameStatus)
	router.GET("/health", h.health)
	router.GET("/contacts", h.findContacts)
	router.POST("/contacts", h.createContact)
	router.DELETE("/contacts", h.deleteAllContacts)
	router.GET("/contacts/favorite", h.findFavoriteContacts)
	router.GET("/contacts/:id", h.findContactByID)
	router.PUT("/contacts/:id", h.updateContactByID)
	router.DELETE("/contacts/:id", h.deleteContactByID)
	return router
}

// bindBody binds the JSON request body to obj and runs the binding validations. The body is
// cached, so it can be bound more than once. An empty body leaves obj untouched.
func bindBody(c *gin.Context, obj any) error {
	err := c.ShouldBindBodyWithJSON(obj)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// hasFields reports whether a decoded update body carries anything to update.
func hasFields(body any) bool {
	switch v := body.(type) {
	case nil:
		return false
	case map[string]any:
		return len(v) > 0
	case []any:
		return len(v) > 0
	default:
		return true
	}
}

// createContact inserts the contact specified in the request's JSON into the database. It responds
// with the full contact data including the newly assigned id.
//
// The name is mandatory; null, false, 0 and "" count as missing. Numbers and booleans are stored
// as text. The contact only becomes a favorite if 'favorite' is the JSON boolean true; any other
// value, including the string "true", stores false.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts --request "POST" --include --header "Content-Type: application/json" --data '{"name": "Hans Wurst", "phone": "0815", "favorite": true}'
func (h *ContactHandler) createContact(c *gin.Context) {
	var req model.CreateRequest
	if err := bindBody(c, &req); err != nil {
		reportError(c, http.StatusBadRequest, msgInvalidJSON, err)
		return
	}
	if !req.HasName() {
		reportError(c, h.missingNameStatus, msgNameEmpty, nil)
		return
	}

	contact, err := req.NewContact()
	if err != nil {
		reportError(c, http.StatusBadRequest, msgNameNotText, err)
		return
	}
	if err := h.contacts.Create(c.Request.Context(), &contact); err != nil {
		reportError(c, http.StatusInternalServerError, msgCreateFailed, err)
		return
	}
	c.IndentedJSON(http.StatusOK, contact)
}

// findContacts responds with the list of contacts as JSON.
//
// The URL parameter 'name' is a regular expression that is matched against the name of the
// contact, ignoring case. It is passed to the database unescaped.
//
// REST API calls:
//
//	> curl "http://localhost:8080/contacts"
//	> curl "http://localhost:8080/contacts?name=an"
func (h *ContactHandler) findContacts(c *gin.Context) {
	contacts, err := h.contacts.FindAll(c.Request.Context(), c.Query("name"))
	if err != nil {
		reportError(c, http.StatusInternalServerError, msgFindAllFailed, err)
		return
	}
	c.IndentedJSON(http.StatusOK, contacts)
}

// findContactByID locates the contact whose ID value matches the id parameter of the request URL,
// then returns that contact as a response. Ids the database could never have assigned are
// answered like ids of deleted contacts.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/65f1c0ffee0000000000002a
func (h *ContactHandler) findContactByID(c *gin.Context) {
	id := c.Param("id")
	contact, err := h.contacts.FindByID(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		reportError(c, http.StatusNotFound, msgContactNotFound, err)
		return
	}
	if err != nil {
		reportError(c, http.StatusInternalServerError, fmt.Sprintf(fmtFindOneFailed, id), err)
		return
	}
	c.IndentedJSON(http.StatusOK, contact)
}

// updateContactByID updates the values specified in the JSON (and only those) of the contact whose
// ID value matches the id parameter of the request URL. A body without any field is rejected
// before the contact is looked up.
//
// Example REST API calls:
//
//	> curl http://localhost:8080/contacts/65f1c0ffee0000000000002a --request "PUT" --include --header "Content-Type: application/json" --data '{"phone": "81970"}'
//	> curl http://localhost:8080/contacts/65f1c0ffee0000000000002a --request "PUT" --include --header "Content-Type: application/json" --data '{"favorite": false}'
func (h *ContactHandler) updateContactByID(c *gin.Context) {
	id := c.Param("id")
	var fields any
	if err := bindBody(c, &fields); err != nil {
		reportError(c, http.StatusBadRequest, msgInvalidJSON, err)
		return
	}
	if !hasFields(fields) {
		reportError(c, http.StatusBadRequest, msgUpdateEmpty, nil)
		return
	}

	var patch model.ContactPatch
	if err := bindBody(c, &patch); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			reportError(c, http.StatusBadRequest, msgNameEmpty, err)
		} else {
			reportError(c, http.StatusBadRequest, msgInvalidJSON, err)
		}
		return
	}

	_, err := h.contacts.Update(c.Request.Context(), id, patch)
	if errors.Is(err, store.ErrNotFound) {
		reportError(c, http.StatusNotFound, msgContactNotFound, err)
		return
	}
	if err != nil {
		reportError(c, http.StatusInternalServerError, fmt.Sprintf(fmtUpdateFailed, id), err)
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"message": msgContactUpdated})
}

// deleteContactByID deletes the contact whose ID value matches the id parameter of the request URL
// from the database.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/65f1c0ffee0000000000002a --request "DELETE"
func (h *ContactHandler) deleteContactByID(c *gin.Context) {
	id := c.Param("id")
	err := h.contacts.Delete(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		reportError(c, http.StatusNotFound, msgContactNotFound, err)
		return
	}
	if err != nil {
		reportError(c, http.StatusInternalServerError, fmt.Sprintf(fmtDeleteFailed, id), err)
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"message": msgContactDeleted})
}

// findFavoriteContacts responds with the list of all favorite contacts as JSON.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/favorite
func (h *ContactHandler) findFavoriteContacts(c *gin.Context) {
	contacts, err := h.contacts.FindFavorites(c.Request.Context())
	if err != nil {
		reportError(c, http.StatusInternalServerError, msgFavoritesFailed, err)
		return
	}
	c.IndentedJSON(http.StatusOK, contacts)
}

// deleteAllContacts removes every contact and responds with the number of removed contacts.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts --request "DELETE"
func (h *ContactHandler) deleteAllContacts(c *gin.Context) {
	count, err := h.contacts.DeleteAll(c.Request.Context())
	if err != nil {
		reportError(c, http.StatusInternalServerError, msgDeleteAllFailed, err)
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"message": fmt.Sprintf(fmtDeletedAllResult, count)})
}

// health answers 200 as long as the database can be reached.
func (h *ContactHandler) health(c *gin.Context) {
	if err := h.contacts.Ping(c.Request.Context()); err != nil {
		reportError(c, http.StatusServiceUnavailable, "database unavailable", err)
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"status": "healthy"})
}
