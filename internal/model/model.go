package model

import (
	"errors"
	"strconv"
)

// Contact is the data structure for a person that we know.
// All fields with the exception of Id, Name and Favorite are optional.
type Contact struct {
	Id       string  `json:"id"                bson:"-"                 db:"-"`
	Name     string  `json:"name"              bson:"name"              db:"name"`
	Email    *string `json:"email,omitempty"   bson:"email,omitempty"   db:"email"`
	Address  *string `json:"address,omitempty" bson:"address,omitempty" db:"address"`
	Phone    *string `json:"phone,omitempty"   bson:"phone,omitempty"   db:"phone"`
	Favorite bool    `json:"favorite"          bson:"favorite"          db:"favorite"`
}

// ErrNameNotText is returned for a create request whose name is an object or an array.
var ErrNameNotText = errors.New("name must be text")

// CreateRequest is the body of a create call. Name and Favorite are kept untyped: a name only
// counts as missing when it is null, false, 0 or "", and only the JSON boolean true marks a
// contact as favorite.
type CreateRequest struct {
	Name     any     `json:"name"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
	Phone    *string `json:"phone"`
	Favorite any     `json:"favorite"`
}

// NewContact builds the contact to be stored from a create request. Numbers and booleans given
// as name are stored in their text form.
func (r CreateRequest) NewContact() (Contact, error) {
	favorite, _ := r.Favorite.(bool)
	contact := Contact{
		Email:    r.Email,
		Address:  r.Address,
		Phone:    r.Phone,
		Favorite: favorite,
	}
	switch name := r.Name.(type) {
	case nil:
	case string:
		contact.Name = name
	case float64:
		contact.Name = strconv.FormatFloat(name, 'f', -1, 64)
	case bool:
		contact.Name = strconv.FormatBool(name)
	default:
		return Contact{}, ErrNameNotText
	}
	return contact, nil
}

// HasName reports whether the request carries a name that is not null, false, 0 or "".
func (r CreateRequest) HasName() bool {
	switch name := r.Name.(type) {
	case nil:
		return false
	case string:
		return name != ""
	case float64:
		return name != 0
	case bool:
		return name
	default:
		return true
	}
}

// ContactPatch holds the fields of a partial update. Nil fields keep their stored value.
type ContactPatch struct {
	Name     *string `json:"name"     binding:"omitempty,min=1"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
	Phone    *string `json:"phone"`
	Favorite *bool   `json:"favorite"`
}

// IsEmpty reports whether the patch would not change any field.
func (p ContactPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Address == nil && p.Phone == nil && p.Favorite == nil
}

// Apply overwrites the fields of the contact that are set in the patch.
func (p ContactPatch) Apply(c *Contact) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = p.Email
	}
	if p.Address != nil {
		c.Address = p.Address
	}
	if p.Phone != nil {
		c.Phone = p.Phone
	}
	if p.Favorite != nil {
		c.Favorite = *p.Favorite
	}
}
