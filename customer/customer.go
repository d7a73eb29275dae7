// Package customer defines the Northwind customer entity shared by the store
// adapter and the cache-aside repository.
package customer

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Customer is a Northwind customer record. CustomerID is the only field that
// participates in identity; every other field is opaque to the repository.
type Customer struct {
	bun.BaseModel `bun:"table:customers,alias:c" json:"-"`

	CustomerID   string `bun:"customer_id,pk" json:"customerId"`
	CompanyName  string `bun:"company_name,notnull" json:"companyName"`
	ContactName  string `bun:"contact_name" json:"contactName,omitempty"`
	ContactTitle string `bun:"contact_title" json:"contactTitle,omitempty"`
	Address      string `bun:"address" json:"address,omitempty"`
	City         string `bun:"city" json:"city,omitempty"`
	Region       string `bun:"region" json:"region,omitempty"`
	PostalCode   string `bun:"postal_code" json:"postalCode,omitempty"`
	Country      string `bun:"country" json:"country,omitempty"`
	Phone        string `bun:"phone" json:"phone,omitempty"`
	Fax          string `bun:"fax" json:"fax,omitempty"`
}

// NormalizeID returns the canonical, case-insensitive form of a customer id.
func NormalizeID(id string) string {
	return strings.ToUpper(id)
}

// Normalize upper-cases the customer's id in place.
func (c *Customer) Normalize() {
	c.CustomerID = NormalizeID(c.CustomerID)
}

// Clone returns an independent copy of the customer.
func (c *Customer) Clone() *Customer {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// Validate checks the customer against the Northwind column constraints.
func (c *Customer) Validate() error {
	if c == nil {
		return goerrors.New("customer is nil", goerrors.CategoryValidation)
	}

	err := validation.ValidateStruct(c,
		validation.Field(&c.CustomerID, validation.Required, validation.RuneLength(1, 5)),
		validation.Field(&c.CompanyName, validation.Required, validation.RuneLength(1, 40)),
		validation.Field(&c.ContactName, validation.RuneLength(0, 30)),
		validation.Field(&c.ContactTitle, validation.RuneLength(0, 30)),
		validation.Field(&c.Address, validation.RuneLength(0, 60)),
		validation.Field(&c.City, validation.RuneLength(0, 15)),
		validation.Field(&c.Region, validation.RuneLength(0, 15)),
		validation.Field(&c.PostalCode, validation.RuneLength(0, 10)),
		validation.Field(&c.Country, validation.RuneLength(0, 15)),
		validation.Field(&c.Phone, validation.RuneLength(0, 24)),
		validation.Field(&c.Fax, validation.RuneLength(0, 24)),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid customer "+c.CustomerID)
	}
	return nil
}
