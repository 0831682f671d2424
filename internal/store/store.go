// Package store owns the in-memory session and user document. It mirrors
// every change to the local cache and persists the document to the backend
// through a debounced save.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alexanderramin/daoban/internal/apiclient"
	"github.com/alexanderramin/daoban/internal/domain"
	"github.com/alexanderramin/daoban/internal/logging"
	"github.com/alexanderramin/daoban/internal/payroll"
	"github.com/alexanderramin/daoban/internal/repository"
	"github.com/alexanderramin/daoban/internal/rotation"
)

// API is the subset of the backend client the store uses.
type API interface {
	Login(ctx context.Context, creds domain.Credentials, opts ...apiclient.CallOption) (apiclient.Ack, error)
	Register(ctx context.Context, reg domain.Registration, opts ...apiclient.CallOption) (apiclient.Ack, error)
	Logout(ctx context.Context, opts ...apiclient.CallOption) error
	GetUserData(ctx context.Context, username string, opts ...apiclient.CallOption) (domain.DocumentPatch, error)
	SaveUserData(ctx context.Context, username string, doc *domain.Document, opts ...apiclient.CallOption) error
	Notify(err error)
}

// Store is the single owner of session and document state. Methods are safe
// for concurrent use; the state lock is never held across a network call.
type Store struct {
	api   API
	cache Cache
	log   logging.Log
	now   func() time.Time
	sleep SleepFunc

	debounce   time.Duration
	backoff    time.Duration
	maxRetries int

	baseCtx context.Context
	cancel  context.CancelFunc

	mu          sync.Mutex
	session     domain.Session
	doc         domain.Document
	loadSeq     uint64
	saveTimer   *time.Timer
	saveGen     uint64
	savePending bool
	closed      bool

	// saveMu keeps at most one save in flight.
	saveMu sync.Mutex
	// timers counts scheduled debounce callbacks that have not finished.
	timers sync.WaitGroup
}

// New creates a Store seeded from the local cache. Unreadable cache entries
// are logged and replaced by defaults.
func New(api API, cache Cache, opts ...Option) *Store {
	s := &Store{
		api:        api,
		cache:      cache,
		log:        defaultLogger(),
		now:        time.Now,
		sleep:      sleepContext,
		debounce:   DefaultDebounce,
		backoff:    DefaultBackoff,
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.baseCtx, s.cancel = context.WithCancel(context.Background())
	s.doc = domain.DefaultDocument(s.now())
	s.restore(s.baseCtx)
	return s
}

func (s *Store) restore(ctx context.Context) {
	session, ok, err := s.cache.LoadSession(ctx)
	switch {
	case err != nil:
		s.log.Warn("ignoring cached session", zap.Error(err))
	case ok:
		s.session = session
	}

	patch, ok, err := s.cache.LoadDocument(ctx)
	switch {
	case err != nil:
		s.log.Warn("ignoring cached document", zap.Error(err))
	case ok:
		patch.Apply(&s.doc)
		s.normalizeLocked()
	}
}

// Session returns the current session.
func (s *Store) Session() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// IsAuthenticated reports whether a user is logged in.
func (s *Store) IsAuthenticated() bool {
	return s.Session().IsAuthenticated()
}

// Snapshot returns a deep copy of the current document.
func (s *Store) Snapshot() domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// CurrentShift returns the shift the rotation assigns to day.
func (s *Store) CurrentShift(day time.Time) rotation.Shift {
	s.mu.Lock()
	settings := s.doc.Settings.Clone()
	s.mu.Unlock()
	return rotation.ForSettings(settings, day)
}

// EffectiveSalary returns the salary in force for month (YYYY-MM).
func (s *Store) EffectiveSalary(month string) domain.SalarySettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return payroll.Resolve(month, s.doc.SalarySettings, s.doc.MonthlySalarySettings)
}

// Login authenticates and starts a session. On failure the session is left
// untouched.
func (s *Store) Login(ctx context.Context, creds domain.Credentials) (domain.Session, error) {
	if err := s.checkOpen(); err != nil {
		return domain.Session{}, err
	}
	ack, err := s.api.Login(ctx, creds)
	if err != nil {
		return domain.Session{}, fmt.Errorf("logging in as %s: %w", creds.Username, err)
	}

	username := creds.Username
	if ack.Username != "" {
		username = ack.Username
	}

	s.mu.Lock()
	prev := s.session.Username
	s.mu.Unlock()
	switching := prev != "" && prev != username
	if switching {
		// A pending save belongs to the previous account.
		if err := s.Flush(ctx); err != nil {
			s.log.Warn("saving previous user's data before switching", zap.String("username", prev), zap.Error(err))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if switching {
		s.cancelSaveLocked()
		s.resetLocked()
		s.writeDocumentLocked(ctx)
	}
	s.session = domain.Session{Username: username, IsLoggedIn: true}
	s.loadSeq++
	if err := s.cache.SaveSession(ctx, s.session); err != nil {
		s.log.Warn("writing session to local cache", zap.Error(err))
	}
	s.log.Info("logged in", zap.String("username", username))
	return s.session, nil
}

// Register creates an account. It does not log in.
func (s *Store) Register(ctx context.Context, reg domain.Registration) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if _, err := s.api.Register(ctx, reg); err != nil {
		return fmt.Errorf("registering %s: %w", reg.Username, err)
	}
	return nil
}

// Logout ends the session. The backend call is best-effort; the local
// session, document and cache are cleared regardless of its outcome. Any
// pending save is dropped.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.api.Logout(ctx, apiclient.Silent()); err != nil {
		s.log.Warn("logout request failed, clearing local session anyway", zap.Error(err))
	}

	s.mu.Lock()
	s.cancelSaveLocked()
	username := s.session.Username
	s.session = domain.Session{}
	s.resetLocked()
	s.loadSeq++
	s.mu.Unlock()

	if err := s.cache.Purge(ctx); err != nil {
		return fmt.Errorf("clearing local cache: %w", err)
	}
	s.log.Info("logged out", zap.String("username", username))
	return nil
}

// LoadUserData fetches the user's document and merges the fields the
// backend returned into the local state. Network failures are retried with
// linear backoff; the terminal failure is reported once.
func (s *Store) LoadUserData(ctx context.Context) (domain.Document, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.Document{}, ErrClosed
	}
	if !s.session.IsAuthenticated() {
		s.mu.Unlock()
		return domain.Document{}, ErrNotAuthenticated
	}
	s.loadSeq++
	seq := s.loadSeq
	username := s.session.Username
	s.mu.Unlock()

	patch, err := s.fetchWithRetry(ctx, username)
	if err != nil {
		s.api.Notify(err)
		return domain.Document{}, fmt.Errorf("loading user data: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.loadSeq || s.session.Username != username {
		s.log.Debug("discarding stale load", zap.String("username", username), zap.Uint64("seq", seq))
		return domain.Document{}, ErrStaleResponse
	}
	patch.Apply(&s.doc)
	s.normalizeLocked()
	s.writeDocumentLocked(ctx)
	return s.doc.Clone(), nil
}

func (s *Store) fetchWithRetry(ctx context.Context, username string) (domain.DocumentPatch, error) {
	for attempt := 0; ; attempt++ {
		patch, err := s.api.GetUserData(ctx, username, apiclient.Silent())
		if err == nil {
			return patch, nil
		}
		if !errors.Is(err, apiclient.ErrNetwork) || attempt >= s.maxRetries {
			return domain.DocumentPatch{}, err
		}

		delay := time.Duration(attempt+1) * s.backoff
		s.log.Info("retrying user data load",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err))
		if sleepErr := s.sleep(ctx, delay); sleepErr != nil {
			return domain.DocumentPatch{}, err
		}
	}
}

// SaveUserData schedules a debounced save of the current document. Calls
// within the debounce window collapse into one request carrying the state
// at flush time.
func (s *Store) SaveUserData() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if !s.session.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	s.scheduleSaveLocked()
	return nil
}

// Flush sends a pending save immediately and waits for it. It is a no-op
// when nothing is pending.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	s.stopTimerLocked()
	s.mu.Unlock()
	return s.flush(ctx)
}

// Close flushes any pending save and releases the store. Later calls
// return ErrClosed.
func (s *Store) Close(ctx context.Context) error {
	err := s.Flush(ctx)

	s.mu.Lock()
	s.closed = true
	s.cancelSaveLocked()
	s.mu.Unlock()

	s.timers.Wait()
	s.cancel()
	return err
}

// UpdateSettings applies a partial rotation update. It returns false when
// the result would be invalid.
func (s *Store) UpdateSettings(p domain.RotationPatch) bool {
	return s.mutate("update settings", func(doc *domain.Document) error {
		next := doc.Settings.Clone()
		p.Apply(&next)
		if err := next.Validate(); err != nil {
			return err
		}
		doc.Settings = next
		return nil
	})
}

// MarkDate toggles mark t on date.
func (s *Store) MarkDate(date time.Time, t domain.MarkType) bool {
	return s.mutate("mark date", func(doc *domain.Document) error {
		if _, err := domain.ParseMarkType(string(t)); err != nil {
			return err
		}
		if doc.MarkedDates == nil {
			doc.MarkedDates = domain.MarkedDates{}
		}
		doc.MarkedDates.Toggle(domain.DateKey(date), t)
		return nil
	})
}

// UpdateMonthlySalarySettings sets or removes a month's salary override.
func (s *Store) UpdateMonthlySalarySettings(u domain.MonthlyUpdate) bool {
	return s.mutate("update monthly salary", func(doc *domain.Document) error {
		if err := u.Validate(); err != nil {
			return err
		}
		month, err := domain.ParseMonthKey(u.Month)
		if err != nil {
			return err
		}
		key := domain.MonthKey(month)
		if doc.MonthlySalarySettings == nil {
			doc.MonthlySalarySettings = domain.MonthlySalarySettings{}
		}
		if u.Delete {
			delete(doc.MonthlySalarySettings, key)
			return nil
		}
		settings := u.Settings.Clone()
		settings.Repair(domain.RequiredSalaryFields...)
		doc.MonthlySalarySettings[key] = settings
		return nil
	})
}

// UpdateSalarySettings merges fields into the default salary.
func (s *Store) UpdateSalarySettings(fields domain.SalarySettings) bool {
	return s.mutate("update salary", func(doc *domain.Document) error {
		if len(fields) == 0 {
			return &domain.ValidationError{Field: "salarySettings", Reason: "no fields given"}
		}
		if doc.SalarySettings == nil {
			doc.SalarySettings = domain.DefaultSalarySettings()
		}
		for k, v := range fields {
			doc.SalarySettings[k] = v
		}
		doc.SalarySettings.Repair()
		return nil
	})
}

// mutate runs fn on a copy of the document and commits it only if fn
// succeeds. A committed change is written to the local cache and, when a
// user is logged in, a save is scheduled.
func (s *Store) mutate(op string, fn func(doc *domain.Document) error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.log.Warn(op+" rejected", zap.Error(ErrClosed))
		return false
	}

	next := s.doc.Clone()
	if err := fn(&next); err != nil {
		s.log.Warn(op+" rejected", zap.Error(err))
		return false
	}
	s.doc = next
	s.writeDocumentLocked(s.baseCtx)
	if s.session.IsAuthenticated() {
		s.scheduleSaveLocked()
	}
	return true
}

func (s *Store) scheduleSaveLocked() {
	s.stopTimerLocked()
	s.saveGen++
	gen := s.saveGen
	s.savePending = true

	s.timers.Add(1)
	s.saveTimer = time.AfterFunc(s.debounce, func() {
		defer s.timers.Done()
		s.mu.Lock()
		current := gen == s.saveGen
		s.mu.Unlock()
		if !current {
			return
		}
		if err := s.flush(s.baseCtx); err != nil {
			s.log.Warn("debounced save failed", zap.Error(err))
		}
	})
}

// stopTimerLocked stops the debounce timer without discarding the pending
// save.
func (s *Store) stopTimerLocked() {
	if s.saveTimer != nil && s.saveTimer.Stop() {
		s.timers.Done()
	}
	s.saveTimer = nil
}

func (s *Store) cancelSaveLocked() {
	s.stopTimerLocked()
	s.saveGen++
	s.savePending = false
}

func (s *Store) flush(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if !s.savePending {
		s.mu.Unlock()
		return nil
	}
	s.savePending = false
	if !s.session.IsAuthenticated() {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	username := s.session.Username
	doc := s.doc.Clone()
	s.mu.Unlock()

	if err := s.api.SaveUserData(ctx, username, &doc); err != nil {
		return fmt.Errorf("saving user data for %s: %w", username, err)
	}
	s.log.Debug("user data saved", zap.String("username", username))
	return nil
}

func (s *Store) resetLocked() {
	s.doc = domain.DefaultDocument(s.now())
}

func (s *Store) normalizeLocked() {
	for _, note := range s.doc.Settings.Normalize(s.now()) {
		s.log.Warn("repaired rotation settings", zap.String("note", note))
	}
	if s.doc.SalarySettings == nil {
		s.doc.SalarySettings = domain.DefaultSalarySettings()
	}
	if s.doc.MonthlySalarySettings == nil {
		s.doc.MonthlySalarySettings = domain.MonthlySalarySettings{}
	}
	if s.doc.MarkedDates == nil {
		s.doc.MarkedDates = domain.MarkedDates{}
	}
}

func (s *Store) writeDocumentLocked(ctx context.Context) {
	if err := s.cache.SaveDocument(ctx, s.doc); err != nil {
		s.log.Warn("writing document to local cache", zap.Error(err))
	}
}

// CacheEntries lists what the local cache currently holds.
func (s *Store) CacheEntries(ctx context.Context) ([]repository.CacheEntry, error) {
	return s.cache.Entries(ctx)
}

func (s *Store) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}
