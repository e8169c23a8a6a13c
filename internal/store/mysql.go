package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
)

// contactColumns is the column list shared by all select statements.
const contactColumns = "id, name, email, address, phone, favorite"

// contactRow is a contact as read from the contacts table.
type contactRow struct {
	ID int64 `db:"id"`
	model.Contact
}

func (r contactRow) toContact() model.Contact {
	c := r.Contact
	c.Id = strconv.FormatInt(r.ID, 10)
	return c
}

func toContacts(rows []contactRow) []model.Contact {
	contacts := make([]model.Contact, 0, len(rows))
	for _, row := range rows {
		contacts = append(contacts, row.toContact())
	}
	return contacts
}

// MySQLStore is a ContactStore backed by the contacts table of a MySQL database.
type MySQLStore struct {
	db *sqlx.DB

	// Prepared statements offer a significant speed increase if executed many times.
	insert          *sqlx.NamedStmt
	selectAll       *sqlx.Stmt
	selectWhereName *sqlx.Stmt
	selectFavorites *sqlx.Stmt
	selectWhereId   *sqlx.Stmt
	deleteWhereId   *sqlx.Stmt
	deleteAll       *sqlx.Stmt
}

// OpenMySQL returns a handle to the MySQL database with the given connection parameters.
// Found rows are reported as affected rows, so an update that does not change any value still
// counts as a match.
func OpenMySQL(host string, user string, password string, dbName string) (*sql.DB, error) {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = host
	cfg.User = user
	cfg.Passwd = password
	cfg.DBName = dbName
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	sqlDB, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("error opening mysql database: %w", err)
	}
	return sqlDB, nil
}

// NewMySQLStore wraps the specified sql database and prepares all statements. The database
// argument can be a real database for production use or a mock database within unit tests.
func NewMySQLStore(sqlDB *sql.DB) (*MySQLStore, error) {
	s := &MySQLStore{db: sqlx.NewDb(sqlDB, "mysql")}
	var err error
	s.insert, err = s.db.PrepareNamed(`
		INSERT INTO contacts (name, email, address, phone, favorite)
		VALUES (:name, :email, :address, :phone, :favorite)
	`)
	if err != nil {
		return nil, fmt.Errorf("error preparing insert: %w", err)
	}
	statements := []struct {
		target **sqlx.Stmt
		query  string
	}{
		{&s.selectAll, "SELECT " + contactColumns + " FROM contacts ORDER BY id"},
		{&s.selectWhereName, "SELECT " + contactColumns + " FROM contacts WHERE REGEXP_LIKE(name, ?, 'i') ORDER BY id"},
		{&s.selectFavorites, "SELECT " + contactColumns + " FROM contacts WHERE favorite = TRUE ORDER BY id"},
		{&s.selectWhereId, "SELECT " + contactColumns + " FROM contacts WHERE id = ?"},
		{&s.deleteWhereId, "DELETE FROM contacts WHERE id = ?"},
		{&s.deleteAll, "DELETE FROM contacts"},
	}
	for _, st := range statements {
		*st.target, err = s.db.Preparex(st.query)
		if err != nil {
			return nil, fmt.Errorf("error preparing %q: %w", st.query, err)
		}
	}
	return s, nil
}

// parseID converts the id to the numeric key. Anything that is not a positive integer in its
// canonical form ("7", not "+7" or "007") becomes 0, which AUTO_INCREMENT never assigns.
func parseID(id string) int64 {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n < 1 || strconv.FormatInt(n, 10) != id {
		return 0
	}
	return n
}

// Create inserts the contact and sets its Id to the generated key.
func (s *MySQLStore) Create(ctx context.Context, contact *model.Contact) error {
	result, err := s.insert.ExecContext(ctx, contact)
	if err != nil {
		return fmt.Errorf("error saving contact: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("error getting last insert id: %w", err)
	}
	contact.Id = strconv.FormatInt(id, 10)
	return nil
}

// FindAll returns the contacts in key order, filtered by name when name is not empty.
func (s *MySQLStore) FindAll(ctx context.Context, name string) ([]model.Contact, error) {
	var rows []contactRow
	var err error
	if name == "" {
		err = s.selectAll.SelectContext(ctx, &rows)
	} else {
		err = s.selectWhereName.SelectContext(ctx, &rows, name)
	}
	if err != nil {
		return nil, fmt.Errorf("error finding contacts: %w", err)
	}
	return toContacts(rows), nil
}

// FindFavorites returns the favorite contacts in key order.
func (s *MySQLStore) FindFavorites(ctx context.Context) ([]model.Contact, error) {
	var rows []contactRow
	if err := s.selectFavorites.SelectContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("error finding favorite contacts: %w", err)
	}
	return toContacts(rows), nil
}

// FindByID returns the contact with the given id or ErrNotFound.
func (s *MySQLStore) FindByID(ctx context.Context, id string) (*model.Contact, error) {
	var row contactRow
	err := s.selectWhereId.GetContext(ctx, &row, parseID(id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error finding contact %q: %w", id, err)
	}
	contact := row.toContact()
	return &contact, nil
}

// Update writes only the columns set in the patch and returns the stored contact.
func (s *MySQLStore) Update(ctx context.Context, id string, patch model.ContactPatch) (*model.Contact, error) {
	var args []interface{}
	query := "UPDATE contacts SET "
	if patch.Name != nil {
		args = append(args, *patch.Name)
		query += "name=?, "
	}
	if patch.Email != nil {
		args = append(args, *patch.Email)
		query += "email=?, "
	}
	if patch.Address != nil {
		args = append(args, *patch.Address)
		query += "address=?, "
	}
	if patch.Phone != nil {
		args = append(args, *patch.Phone)
		query += "phone=?, "
	}
	if patch.Favorite != nil {
		args = append(args, *patch.Favorite)
		query += "favorite=?, "
	}
	if len(args) == 0 {
		return s.FindByID(ctx, id)
	}

	query = query[:len(query)-2]
	query += " WHERE id=?"
	args = append(args, parseID(id))
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error updating contact %q: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("error updating contact %q: %w", id, err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.FindByID(ctx, id)
}

// Delete removes the contact with the given id or returns ErrNotFound.
func (s *MySQLStore) Delete(ctx context.Context, id string) error {
	result, err := s.deleteWhereId.ExecContext(ctx, parseID(id))
	if err != nil {
		return fmt.Errorf("error deleting contact %q: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error deleting contact %q: %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll empties the contacts table and returns the number of removed rows.
func (s *MySQLStore) DeleteAll(ctx context.Context) (int64, error) {
	result, err := s.deleteAll.ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("error deleting all contacts: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error deleting all contacts: %w", err)
	}
	return count, nil
}

// Ping checks the connection to the database.
func (s *MySQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the prepared statements and the database handle.
func (s *MySQLStore) Close(context.Context) error {
	errs := []error{s.insert.Close()}
	for _, st := range []*sqlx.Stmt{s.selectAll, s.selectWhereName, s.selectFavorites, s.selectWhereId, s.deleteWhereId, s.deleteAll} {
		errs = append(errs, st.Close())
	}
	errs = append(errs, s.db.Close())
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("error closing mysql store: %w", err)
	}
	return nil
}
