// Package model holds the JSON types of the contacts REST API for use by clients.
package model

// Contact is the data structure for a person that we know, as exchanged with the REST API.
// All fields with the exception of Id, Name and Favorite are optional.
type Contact struct {
	Id       string  `json:"id,omitempty"`
	Name     string  `json:"name"`
	Email    *string `json:"email,omitempty"`
	Address  *string `json:"address,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Favorite bool    `json:"favorite"`
}

// Message is the body of all error responses and of the successful responses that carry no
// contact data.
type Message struct {
	Message string `json:"message"`
}
