package directory

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Supplier is a Northwind supplier.
type Supplier struct {
	bun.BaseModel `bun:"table:suppliers,alias:s" json:"-"`

	SupplierID   int64  `bun:"supplier_id,pk,autoincrement" json:"supplierId"`
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
	HomePage     string `bun:"home_page" json:"homePage,omitempty"`
}

// Validate checks the supplier against the Northwind column constraints.
func (s *Supplier) Validate() error {
	if s == nil {
		return goerrors.New("supplier is nil", goerrors.CategoryValidation)
	}

	err := validation.ValidateStruct(s,
		validation.Field(&s.CompanyName, validation.Required, validation.RuneLength(1, 40)),
		validation.Field(&s.ContactName, validation.RuneLength(0, 30)),
		validation.Field(&s.ContactTitle, validation.RuneLength(0, 30)),
		validation.Field(&s.Address, validation.RuneLength(0, 60)),
		validation.Field(&s.City, validation.RuneLength(0, 15)),
		validation.Field(&s.Region, validation.RuneLength(0, 15)),
		validation.Field(&s.PostalCode, validation.RuneLength(0, 10)),
		validation.Field(&s.Country, validation.RuneLength(0, 15)),
		validation.Field(&s.Phone, validation.RuneLength(0, 24)),
		validation.Field(&s.Fax, validation.RuneLength(0, 24)),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid supplier "+s.CompanyName)
	}
	return nil
}

// Employee is a Northwind employee. ReportsTo is nil for the top of the
// reporting chain.
type Employee struct {
	bun.BaseModel `bun:"table:employees,alias:e" json:"-"`

	EmployeeID      int64  `bun:"employee_id,pk,autoincrement" json:"employeeId"`
	LastName        string `bun:"last_name,notnull" json:"lastName"`
	FirstName       string `bun:"first_name,notnull" json:"firstName"`
	Title           string `bun:"title" json:"title,omitempty"`
	TitleOfCourtesy string `bun:"title_of_courtesy" json:"titleOfCourtesy,omitempty"`
	City            string `bun:"city" json:"city,omitempty"`
	Country         string `bun:"country" json:"country,omitempty"`
	ReportsTo       *int64 `bun:"reports_to" json:"reportsTo,omitempty"`
}

// DisplayName formats the employee as "Ms. Nancy Davolio".
func (e Employee) DisplayName() string {
	return strings.Join(strings.Fields(e.TitleOfCourtesy+" "+e.FirstName+" "+e.LastName), " ")
}

func copyEmployee(e Employee) Employee {
	if e.ReportsTo != nil {
		manager := *e.ReportsTo
		e.ReportsTo = &manager
	}
	return e
}
