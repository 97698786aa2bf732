package taxi

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taxi-travel/service-travel/internal/domain"
)

const (
	MinSeats = 2
	MaxSeats = 20
)

var registrationPattern = regexp.MustCompile(`^[A-Z0-9]{7}$`)

// Taxi is a bookable vehicle.
type Taxi struct {
	id                 uuid.UUID
	registrationNumber string
	seatNumber         int
	createdAt          time.Time
	updatedAt          time.Time
}

// NewTaxi validates the vehicle details and creates a Taxi with a fresh id.
func NewTaxi(registrationNumber string, seatNumber int) (*Taxi, error) {
	t := &Taxi{id: uuid.New()}
	if err := t.apply(registrationNumber, seatNumber); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	t.createdAt = now
	t.updatedAt = now
	return t, nil
}

// ReconstructTaxi rebuilds a Taxi from persistence data (no validation).
func ReconstructTaxi(id uuid.UUID, registrationNumber string, seatNumber int, createdAt, updatedAt time.Time) *Taxi {
	return &Taxi{
		id:                 id,
		registrationNumber: registrationNumber,
		seatNumber:         seatNumber,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

// UpdateDetails changes registration and capacity.
func (t *Taxi) UpdateDetails(registrationNumber string, seatNumber int) error {
	if err := t.apply(registrationNumber, seatNumber); err != nil {
		return err
	}
	t.updatedAt = time.Now().UTC()
	return nil
}

func (t *Taxi) apply(registrationNumber string, seatNumber int) error {
	registrationNumber = strings.ToUpper(strings.TrimSpace(registrationNumber))

	verr := domain.NewValidationError("invalid taxi")
	if !registrationPattern.MatchString(registrationNumber) {
		verr.WithReason("registrationNumber", "Registration number must be 7 letters or digits")
	}
	if seatNumber < MinSeats || seatNumber > MaxSeats {
		verr.WithReason("seatNumber", "Seat number must be between 2 and 20")
	}
	if len(verr.Reasons) > 0 {
		return verr
	}

	t.registrationNumber = registrationNumber
	t.seatNumber = seatNumber
	return nil
}

func (t *Taxi) ID() uuid.UUID              { return t.id }
func (t *Taxi) RegistrationNumber() string { return t.registrationNumber }
func (t *Taxi) SeatNumber() int            { return t.seatNumber }
func (t *Taxi) CreatedAt() time.Time       { return t.createdAt }
func (t *Taxi) UpdatedAt() time.Time       { return t.updatedAt }
