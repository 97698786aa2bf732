// Package memory keeps every repository in process memory. It backs the
// "memory" storage driver and the service-level tests.
//
// Transactions are emulated with an undo journal of the rows they write.
// Transactions run one at a time; reads inside a transaction see writes made
// outside it.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/taxi-travel/service-travel/internal/domain"
	"github.com/taxi-travel/service-travel/internal/domain/booking"
	"github.com/taxi-travel/service-travel/internal/domain/customer"
	"github.com/taxi-travel/service-travel/internal/domain/taxi"
	"github.com/taxi-travel/service-travel/internal/domain/travelagent"
	"github.com/taxi-travel/service-travel/internal/domain/uow"
)

type tables struct {
	customers map[uuid.UUID]customer.Customer
	taxis     map[uuid.UUID]taxi.Taxi
	bookings  map[uuid.UUID]booking.Booking
	trips     map[uuid.UUID]travelagent.TravelAgentBooking
	orphans   map[uuid.UUID]travelagent.OrphanedResource
}

func newTables() tables {
	return tables{
		customers: make(map[uuid.UUID]customer.Customer),
		taxis:     make(map[uuid.UUID]taxi.Taxi),
		bookings:  make(map[uuid.UUID]booking.Booking),
		trips:     make(map[uuid.UUID]travelagent.TravelAgentBooking),
		orphans:   make(map[uuid.UUID]travelagent.OrphanedResource),
	}
}

// journal records the prior value of every row a transaction writes so a
// rollback undoes only that transaction's changes.
type journal struct {
	undo []func()
}

// keep must be called with mu held, before m[id] is changed.
func keep[V any](j *journal, m map[uuid.UUID]V, id uuid.UUID) {
	if j == nil {
		return
	}
	prev, existed := m[id]
	j.undo = append(j.undo, func() {
		if existed {
			m[id] = prev
		} else {
			delete(m, id)
		}
	})
}

// Store implements uow.Manager and every repository interface.
type Store struct {
	mu   sync.RWMutex
	data tables

	// serialises transactions; writes outside a transaction only take mu
	txMu sync.Mutex
}

var _ uow.Manager = (*Store)(nil)

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{data: newTables()}
}

func (s *Store) Repositories() uow.Repositories { return txRepos{s: s} }

// WithinTx runs fn with repositories that journal their writes and replays
// the journal backwards when fn fails or panics.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos uow.Repositories) error) (err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	j := &journal{}
	defer func() {
		if p := recover(); p != nil {
			s.rollback(j)
			panic(p)
		}
		if err != nil {
			s.rollback(j)
		}
	}()
	return fn(ctx, txRepos{s: s, j: j})
}

func (s *Store) rollback(j *journal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
}

// txRepos binds the repositories to a journal; j is nil outside a transaction.
type txRepos struct {
	s *Store
	j *journal
}

func (r txRepos) Customers() customer.CustomerRepository { return customerRepo{r.s, r.j} }
func (r txRepos) Taxis() taxi.TaxiRepository             { return taxiRepo{r.s, r.j} }
func (r txRepos) Bookings() booking.BookingRepository    { return bookingRepo{r.s, r.j} }
func (r txRepos) TravelAgentBookings() travelagent.TravelAgentBookingRepository {
	return tripRepo{r.s, r.j}
}
func (r txRepos) Orphans() travelagent.OrphanRepository { return orphanRepo{r.s, r.j} }

func (s *Store) Customers() customer.CustomerRepository                        { return customerRepo{s: s} }
func (s *Store) Taxis() taxi.TaxiRepository                                    { return taxiRepo{s: s} }
func (s *Store) Bookings() booking.BookingRepository                           { return bookingRepo{s: s} }
func (s *Store) TravelAgentBookings() travelagent.TravelAgentBookingRepository { return tripRepo{s: s} }
func (s *Store) Orphans() travelagent.OrphanRepository                         { return orphanRepo{s: s} }

type customerRepo struct {
	s *Store
	j *journal
}

func (r customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.data.customers[id]
	if !ok {
		return nil, domain.NewNotFoundError("Customer", id.String())
	}
	return &c, nil
}

func (r customerRepo) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, c := range r.s.data.customers {
		if c.Email() == email {
			found := c
			return &found, nil
		}
	}
	return nil, domain.NewNotFoundError("Customer", email)
}

func (r customerRepo) FindAll(ctx context.Context) ([]*customer.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*customer.Customer, 0, len(r.s.data.customers))
	for _, c := range r.s.data.customers {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName() != out[j].LastName() {
			return out[i].LastName() < out[j].LastName()
		}
		return out[i].FirstName() < out[j].FirstName()
	})
	return out, nil
}

func (r customerRepo) emailTaken(email string, except uuid.UUID) bool {
	for id, c := range r.s.data.customers {
		if id != except && c.Email() == email {
			return true
		}
	}
	return false
}

func (r customerRepo) Save(ctx context.Context, c *customer.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.emailTaken(c.Email(), uuid.Nil) {
		return customer.NewEmailTakenError()
	}
	keep(r.j, r.s.data.customers, c.ID())
	r.s.data.customers[c.ID()] = *c
	return nil
}

func (r customerRepo) Update(ctx context.Context, c *customer.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.customers[c.ID()]; !ok {
		return domain.NewNotFoundError("Customer", c.ID().String())
	}
	if r.emailTaken(c.Email(), c.ID()) {
		return customer.NewEmailTakenError()
	}
	keep(r.j, r.s.data.customers, c.ID())
	r.s.data.customers[c.ID()] = *c
	return nil
}

func (r customerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.customers[id]; !ok {
		return domain.NewNotFoundError("Customer", id.String())
	}
	for _, b := range r.s.data.bookings {
		if b.CustomerID() == id {
			return domain.NewConflictError("customer still has bookings")
		}
	}
	for _, t := range r.s.data.trips {
		if t.CustomerID() == id {
			return domain.NewConflictError("customer still has travel agent bookings")
		}
	}
	keep(r.j, r.s.data.customers, id)
	delete(r.s.data.customers, id)
	return nil
}

type taxiRepo struct {
	s *Store
	j *journal
}

func (r taxiRepo) FindByID(ctx context.Context, id uuid.UUID) (*taxi.Taxi, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.data.taxis[id]
	if !ok {
		return nil, domain.NewNotFoundError("Taxi", id.String())
	}
	return &t, nil
}

func (r taxiRepo) FindAll(ctx context.Context) ([]*taxi.Taxi, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*taxi.Taxi, 0, len(r.s.data.taxis))
	for _, t := range r.s.data.taxis {
		t := t
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegistrationNumber() < out[j].RegistrationNumber() })
	return out, nil
}

func (r taxiRepo) registrationTaken(reg string, except uuid.UUID) bool {
	for id, t := range r.s.data.taxis {
		if id != except && t.RegistrationNumber() == reg {
			return true
		}
	}
	return false
}

func registrationConflict() error {
	return domain.NewConflictError("taxi registration already exists").
		WithReason("registrationNumber", "That registration number is already used")
}

func (r taxiRepo) Save(ctx context.Context, t *taxi.Taxi) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.registrationTaken(t.RegistrationNumber(), uuid.Nil) {
		return registrationConflict()
	}
	keep(r.j, r.s.data.taxis, t.ID())
	r.s.data.taxis[t.ID()] = *t
	return nil
}

func (r taxiRepo) Update(ctx context.Context, t *taxi.Taxi) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.taxis[t.ID()]; !ok {
		return domain.NewNotFoundError("Taxi", t.ID().String())
	}
	if r.registrationTaken(t.RegistrationNumber(), t.ID()) {
		return registrationConflict()
	}
	keep(r.j, r.s.data.taxis, t.ID())
	r.s.data.taxis[t.ID()] = *t
	return nil
}

func (r taxiRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.taxis[id]; !ok {
		return domain.NewNotFoundError("Taxi", id.String())
	}
	for _, b := range r.s.data.bookings {
		if b.TaxiID() == id {
			return domain.NewConflictError("taxi still has bookings")
		}
	}
	keep(r.j, r.s.data.taxis, id)
	delete(r.s.data.taxis, id)
	return nil
}

type bookingRepo struct {
	s *Store
	j *journal
}

func (r bookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.data.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return &b, nil
}

func (r bookingRepo) FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*booking.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*booking.Booking
	for _, b := range r.s.data.bookings {
		if b.CustomerID() == customerID {
			b := b
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookDate().Before(out[j].BookDate()) })
	return out, nil
}

func (r bookingRepo) FindAll(ctx context.Context) ([]*booking.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*booking.Booking, 0, len(r.s.data.bookings))
	for _, b := range r.s.data.bookings {
		b := b
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CustomerID() != out[j].CustomerID() {
			return out[i].CustomerID().String() < out[j].CustomerID().String()
		}
		return out[i].BookDate().Before(out[j].BookDate())
	})
	return out, nil
}

func (r bookingRepo) pairTaken(b *booking.Booking) bool {
	for id, existing := range r.s.data.bookings {
		if id != b.ID() && existing.TaxiID() == b.TaxiID() && existing.CustomerID() == b.CustomerID() {
			return true
		}
	}
	return false
}

func (r bookingRepo) Save(ctx context.Context, b *booking.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.pairTaken(b) {
		return booking.NewDuplicateError()
	}
	keep(r.j, r.s.data.bookings, b.ID())
	r.s.data.bookings[b.ID()] = *b
	return nil
}

func (r bookingRepo) Update(ctx context.Context, b *booking.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.bookings[b.ID()]; !ok {
		return domain.NewNotFoundError("Booking", b.ID().String())
	}
	if r.pairTaken(b) {
		return booking.NewDuplicateError()
	}
	keep(r.j, r.s.data.bookings, b.ID())
	r.s.data.bookings[b.ID()] = *b
	return nil
}

func (r bookingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.bookings[id]; !ok {
		return domain.NewNotFoundError("Booking", id.String())
	}
	keep(r.j, r.s.data.bookings, id)
	delete(r.s.data.bookings, id)
	return nil
}

type tripRepo struct {
	s *Store
	j *journal
}

func (r tripRepo) FindByID(ctx context.Context, id uuid.UUID) (*travelagent.TravelAgentBooking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.data.trips[id]
	if !ok {
		return nil, domain.NewNotFoundError("TravelAgentBooking", id.String())
	}
	return &t, nil
}

func (r tripRepo) FindAll(ctx context.Context) ([]*travelagent.TravelAgentBooking, error) {
	return r.find(func(*travelagent.TravelAgentBooking) bool { return true })
}

func (r tripRepo) FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*travelagent.TravelAgentBooking, error) {
	return r.find(func(t *travelagent.TravelAgentBooking) bool { return t.CustomerID() == customerID })
}

func (r tripRepo) find(match func(*travelagent.TravelAgentBooking) bool) ([]*travelagent.TravelAgentBooking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*travelagent.TravelAgentBooking, 0)
	for _, t := range r.s.data.trips {
		t := t
		if match(&t) {
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CustomerID() != out[j].CustomerID() {
			return out[i].CustomerID().String() < out[j].CustomerID().String()
		}
		return out[i].CreatedAt().Before(out[j].CreatedAt())
	})
	return out, nil
}

func (r tripRepo) Save(ctx context.Context, t *travelagent.TravelAgentBooking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.trips {
		if existing.TaxiBookingID() == t.TaxiBookingID() {
			return domain.NewConflictError("taxi booking already belongs to a travel agent booking")
		}
	}
	keep(r.j, r.s.data.trips, t.ID())
	r.s.data.trips[t.ID()] = *t
	return nil
}

func (r tripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.trips[id]; !ok {
		return domain.NewNotFoundError("TravelAgentBooking", id.String())
	}
	keep(r.j, r.s.data.trips, id)
	delete(r.s.data.trips, id)
	return nil
}

type orphanRepo struct {
	s *Store
	j *journal
}

func (r orphanRepo) Record(ctx context.Context, o *travelagent.OrphanedResource) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.data.orphans {
		if existing.Source() == o.Source() && existing.ResourceKind() == o.ResourceKind() && existing.ResourceID() == o.ResourceID() {
			return false, nil
		}
	}
	keep(r.j, r.s.data.orphans, o.ID())
	r.s.data.orphans[o.ID()] = *o
	return true, nil
}

func (r orphanRepo) FindByID(ctx context.Context, id uuid.UUID) (*travelagent.OrphanedResource, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.data.orphans[id]
	if !ok {
		return nil, domain.NewNotFoundError("OrphanedResource", id.String())
	}
	return &o, nil
}

func (r orphanRepo) FindUnresolved(ctx context.Context) ([]*travelagent.OrphanedResource, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*travelagent.OrphanedResource, 0)
	for _, o := range r.s.data.orphans {
		o := o
		if o.ResolvedAt() == nil {
			out = append(out, &o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out, nil
}

func (r orphanRepo) Update(ctx context.Context, o *travelagent.OrphanedResource) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.orphans[o.ID()]; !ok {
		return domain.NewNotFoundError("OrphanedResource", o.ID().String())
	}
	keep(r.j, r.s.data.orphans, o.ID())
	r.s.data.orphans[o.ID()] = *o
	return nil
}
