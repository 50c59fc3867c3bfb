package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
)

// Service is the client engagement engine. It applies updates, routes
// notifications and records payments against a Store.
type Service struct {
	store      *Store
	logger     *slog.Logger
	metrics    Metrics
	now        func() time.Time
	newID      func() string
	loginDelay time.Duration
	admin      AdminCredentials
	eventBuf   int
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger. A nil logger discards output.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithServiceMetrics sets the metrics sink.
func WithServiceMetrics(m Metrics) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithClock overrides the time source used for notification dates and payments.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how notification and client ids are minted.
func WithIDGenerator(fn func() string) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLoginDelay sets the artificial delay of Authenticate.
func WithLoginDelay(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.loginDelay = d
	}
}

// WithAdmin registers the admin login.
func WithAdmin(creds AdminCredentials) ServiceOption {
	return func(s *Service) {
		s.admin = creds
	}
}

// WithEventBuffer sets the buffer of the channel returned by Watch.
// Zero means default (100).
func WithEventBuffer(size int) ServiceOption {
	return func(s *Service) {
		if size > 0 {
			s.eventBuf = size
		}
	}
}

// NewService creates a new Service over store.
func NewService(store *Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:    store,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:  NopMetrics{},
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
		eventBuf: 100,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store exposes the underlying record store.
func (s *Service) Store() *Store { return s.store }

// Get returns the record with the given id.
func (s *Service) Get(id string) (ClientEngagement, error) {
	c, ok := s.store.Get(id)
	if !ok {
		return ClientEngagement{}, &NotFoundError{ID: id}
	}
	return c, nil
}

// List returns every record.
func (s *Service) List() []ClientEngagement {
	return s.store.List()
}

// FindByEmail returns the record whose login email matches, ignoring case.
func (s *Service) FindByEmail(email string) (ClientEngagement, error) {
	c, ok := s.store.FindByEmail(email)
	if !ok {
		return ClientEngagement{}, &NotFoundError{ID: email}
	}
	return c, nil
}

// FindClients returns the records whose email or company name matches the
// glob pattern (e.g. "*@acme.*" or "acme*"). Matching ignores case.
func (s *Service) FindClients(pattern string) ([]ClientEngagement, error) {
	pattern = strings.ToLower(pattern)
	if !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}
	var out []ClientEngagement
	for _, c := range s.store.List() {
		for _, candidate := range []string{normalizeEmail(c.Email), strings.ToLower(c.CompanyName)} {
			if ok, _ := doublestar.Match(pattern, candidate); ok {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

// Onboard adds a fully formed record. An empty id is assigned, notifications
// start empty and derived fields are computed from the timeline and amounts.
func (s *Service) Onboard(ctx context.Context, c ClientEngagement) (ClientEngagement, error) {
	if c.ID == "" {
		c.ID = s.newID()
	}
	c.Notifications = Inbox{}
	if c.ContractValue < 0 || c.AmountPaid < 0 || !finite(c.ContractValue) || !finite(c.AmountPaid) {
		return ClientEngagement{}, &InvalidAmountError{Amount: c.AmountPaid, Reason: "amounts must be non-negative numbers"}
	}
	if p, ok := ComputeProgress(c.Timeline); ok {
		c.Progress = p.Percent
		if c.StatusMessage == "" {
			c.StatusMessage = p.StatusMessage
		}
	}
	c.Documents = normalizeDocuments(c.Documents)
	c.PaymentStatus = derivePaymentStatus(c.AmountPaid, c.ContractValue, c.PaymentStatus)

	err := s.store.WithTransaction(ctx, func(tx *Tx) error {
		if _, exists := tx.Client(c.ID); exists {
			return errors.New("client id already exists: " + c.ID)
		}
		if _, taken := tx.ClientByEmail(c.Email); taken {
			return ErrDuplicateEmail
		}
		tx.Put(c)
		return nil
	})
	if err != nil {
		s.metrics.OperationFailed("onboard", errorReason(err))
		return ClientEngagement{}, err
	}

	s.logger.Info("client onboarded", "client", c.ID, "company", c.CompanyName)
	return c.Clone(), nil
}

// Watch observes external changes of the record set when the repository
// supports it. Each event reloads the store before being forwarded.
func (s *Service) Watch(ctx context.Context) (<-chan Event, error) {
	w, ok := s.store.repo.(Watchable)
	if !ok {
		return nil, errors.New("repository does not support watching")
	}
	upstream, err := w.Watch(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan Event, s.eventBuf)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-upstream:
				if !ok {
					return nil
				}
				if err := s.store.Load(ctx); err != nil {
					s.logger.Error("reload after external change failed", "event", e.String(), "error", err)
					s.metrics.OperationFailed("reload", errorReason(err))
					continue
				}
				s.metrics.RecordSetReloaded()
				s.logger.Debug("record set reloaded", "event", e.String())
				select {
				case out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return out, nil
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrDuplicateEmail):
		return "duplicate_email"
	case errors.Is(err, ErrReadOnly):
		return "read_only"
	default:
		return "internal"
	}
}
