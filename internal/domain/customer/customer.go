package customer

import (
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taxi-travel/service-travel/internal/domain"
)

var (
	namePattern  = regexp.MustCompile(`^[A-Za-z'-]{1,25}$`)
	phonePattern = regexp.MustCompile(`^0\d{10}$`)
)

// Customer is the aggregate root for a person who books taxis and trips.
type Customer struct {
	id          uuid.UUID
	firstName   string
	lastName    string
	email       string
	phoneNumber string
	birthDate   time.Time
	createdAt   time.Time
	updatedAt   time.Time
}

// NewCustomer validates the details and creates a Customer with a fresh id.
func NewCustomer(firstName, lastName, email, phoneNumber string, birthDate time.Time) (*Customer, error) {
	c := &Customer{id: uuid.New()}
	if err := c.apply(firstName, lastName, email, phoneNumber, birthDate); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	c.createdAt = now
	c.updatedAt = now
	return c, nil
}

// ReconstructCustomer rebuilds a Customer from persistence data (no validation).
func ReconstructCustomer(
	id uuid.UUID,
	firstName, lastName, email, phoneNumber string,
	birthDate, createdAt, updatedAt time.Time,
) *Customer {
	return &Customer{
		id:          id,
		firstName:   firstName,
		lastName:    lastName,
		email:       email,
		phoneNumber: phoneNumber,
		birthDate:   birthDate,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// UpdateDetails replaces the customer's mutable fields after validating them.
func (c *Customer) UpdateDetails(firstName, lastName, email, phoneNumber string, birthDate time.Time) error {
	if err := c.apply(firstName, lastName, email, phoneNumber, birthDate); err != nil {
		return err
	}
	c.updatedAt = time.Now().UTC()
	return nil
}

func (c *Customer) apply(firstName, lastName, email, phoneNumber string, birthDate time.Time) error {
	email = strings.ToLower(strings.TrimSpace(email))

	verr := domain.NewValidationError("invalid customer")
	if !namePattern.MatchString(firstName) {
		verr.WithReason("firstName", "Please use a name without numbers or specials")
	}
	if !namePattern.MatchString(lastName) {
		verr.WithReason("lastName", "Please use a name without numbers or specials")
	}
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		verr.WithReason("email", "The email address must be in the format of name@domain.com")
	}
	if !phonePattern.MatchString(phoneNumber) {
		verr.WithReason("phoneNumber", "Phone number must start with 0 followed by 10 digits")
	}
	if birthDate.IsZero() || !birthDate.Before(time.Now()) {
		verr.WithReason("birthDate", "Birthdates can not be in the future")
	}
	if len(verr.Reasons) > 0 {
		return verr
	}

	c.firstName = firstName
	c.lastName = lastName
	c.email = email
	c.phoneNumber = phoneNumber
	c.birthDate = birthDate
	return nil
}

func (c *Customer) ID() uuid.UUID        { return c.id }
func (c *Customer) FirstName() string    { return c.firstName }
func (c *Customer) LastName() string     { return c.lastName }
func (c *Customer) Email() string        { return c.email }
func (c *Customer) PhoneNumber() string  { return c.phoneNumber }
func (c *Customer) BirthDate() time.Time { return c.birthDate }
func (c *Customer) CreatedAt() time.Time { return c.createdAt }
func (c *Customer) UpdatedAt() time.Time { return c.updatedAt }

// EmailTakenReason is the field explanation returned when an email is already registered.
const EmailTakenReason = "That email is already used, please use a unique email"

// NewEmailTakenError builds the Conflict returned on a duplicate email.
func NewEmailTakenError() *domain.DomainError {
	return domain.NewConflictError("customer email already exists").WithReason("email", EmailTakenReason)
}
