package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/insightdesk/access-directory/internal/api/metrics"
	"github.com/insightdesk/access-directory/internal/core/domain"
	"github.com/insightdesk/access-directory/internal/core/ports"
)

// DirectoryService implements the administrative operations on the client
// access directory. Every operation is atomic with respect to a single
// record; there is no cross-record locking and two concurrent edits of the
// same record race last-write-wins.
type DirectoryService struct {
	repo     ports.ClientRepository
	notifier ports.Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

func NewDirectoryService(repo ports.ClientRepository, notifier ports.Notifier, logger zerolog.Logger) *DirectoryService {
	return &DirectoryService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates (or, on an id collision, replaces) a client record from
// the manual add form. The record starts logged out with a blank password;
// creation, purchase and access-granted timestamps all equal "now". The
// access-granted notification is best-effort and never fails the call.
func (s *DirectoryService) Register(ctx context.Context, in ports.RegisterInput) (*domain.ClientRecord, error) {
	if strings.TrimSpace(in.Email) == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if len(in.Permissions) == 0 {
		return nil, fmt.Errorf("%w: at least one dashboard permission is required", domain.ErrValidation)
	}

	now := s.now().UTC()
	record := s.buildRecord(in.Email, "", in.ExpiryDate, in.Permissions, now, now)

	if err := s.repo.Upsert(ctx, record); err != nil {
		s.logger.Error().Err(err).Str("username", record.ID).Msg("failed to register client")
		return nil, err
	}

	metrics.ClientsRegisteredTotal.WithLabelValues("manual").Inc()
	s.logger.Info().Str("username", record.ID).Str("email", record.Email).Msg("client registered")

	s.dispatchNotification(ctx, record)
	return record, nil
}

// Get retrieves one record by id.
func (s *DirectoryService) Get(ctx context.Context, id string) (*domain.ClientRecord, error) {
	return s.repo.Get(ctx, id)
}

// List returns the full directory sorted by the store's canonical order
// (access granted descending, then email).
func (s *DirectoryService) List(ctx context.Context) ([]*domain.ClientRecord, error) {
	return s.repo.List(ctx)
}

// Edit replaces the editable fields of a record and appends one audit entry
// listing exactly the fields that changed. An edit that changes nothing
// still succeeds but leaves the audit trail untouched.
func (s *DirectoryService) Edit(ctx context.Context, id string, in ports.EditInput) (*domain.ClientRecord, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	newPermissions := domain.NormalizePermissions(in.Permissions)

	var changes []domain.FieldChange
	if in.Email != record.Email {
		changes = append(changes, domain.FieldChange{Field: "Email", Old: record.Email, New: in.Email})
	}
	if in.ExpiryDate != record.ExpiryDate {
		changes = append(changes, domain.FieldChange{Field: "Expiry Date", Old: record.ExpiryDate, New: in.ExpiryDate})
	}
	if !domain.SamePermissions(newPermissions, record.Permissions) {
		changes = append(changes, domain.FieldChange{
			Field: "Permissions",
			Old:   strings.Join(record.Permissions, ", "),
			New:   strings.Join(newPermissions, ", "),
		})
	}

	now := s.now().UTC()
	record.Email = in.Email
	record.ExpiryDate = in.ExpiryDate
	record.Permissions = newPermissions
	record.LastUpdated = now
	if len(changes) > 0 {
		record.EditLogs = append(record.EditLogs, domain.NewEditLogEntry(now, changes))
	}

	if err := s.repo.Upsert(ctx, record); err != nil {
		s.logger.Error().Err(err).Str("username", id).Msg("failed to persist edit")
		return nil, err
	}

	if len(changes) > 0 {
		metrics.ClientEditsTotal.Inc()
		s.logger.Info().Str("username", id).Int("changed_fields", len(changes)).Msg("client edited")
	}
	return record, nil
}

// ResetLoginStatus forces the client logged out. The external login surface
// checks this flag before accepting the stored password again, so the reset
// is the administrator's only session-revocation mechanism. Idempotent.
func (s *DirectoryService) ResetLoginStatus(ctx context.Context, id string) error {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	record.LoginStatus = domain.LoggedOut
	if err := s.repo.Upsert(ctx, record); err != nil {
		s.logger.Error().Err(err).Str("username", id).Msg("failed to reset login status")
		return err
	}

	metrics.LoginResetsTotal.WithLabelValues("status").Inc()
	s.logger.Info().Str("username", id).Msg("login status reset")
	return nil
}

// ResetLoginDetails issues a fresh random password and forces the client
// logged out. The password is returned once; the caller is expected to hand
// it to the client out of band.
func (s *DirectoryService) ResetLoginDetails(ctx context.Context, id string) (string, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}

	password := generatePassword()
	record.Password = password
	record.LoginStatus = domain.LoggedOut

	if err := s.repo.Upsert(ctx, record); err != nil {
		s.logger.Error().Err(err).Str("username", id).Msg("failed to reset login details")
		return "", err
	}

	metrics.LoginResetsTotal.WithLabelValues("details").Inc()
	s.logger.Info().Str("username", id).Msg("login details reset")
	return password, nil
}

// Remove hard-deletes the record. Removing an id that does not exist fails
// with domain.ErrClientNotFound rather than succeeding silently.
func (s *DirectoryService) Remove(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	metrics.ClientsRemovedTotal.Inc()
	s.logger.Info().Str("username", id).Msg("client removed")
	return nil
}

// buildRecord is the single construction path for new records; manual
// registration and bulk import both go through it so upsert semantics and
// defaults stay identical.
func (s *DirectoryService) buildRecord(email, name, expiryDate string, permissions []string, accessGranted, purchaseDate time.Time) *domain.ClientRecord {
	return &domain.ClientRecord{
		ID:              domain.UsernameFromEmail(email),
		Email:           email,
		Name:            name,
		Password:        "",
		Permissions:     domain.NormalizePermissions(permissions),
		ExpiryDate:      expiryDate,
		LoginStatus:     domain.LoggedOut,
		CreatedAt:       accessGranted,
		AccessGrantedAt: accessGranted,
		PurchaseDate:    purchaseDate,
	}
}

// dispatchNotification sends the access-granted message. Failures are logged
// and swallowed: a client who never gets the mail can be re-notified, but a
// failed mail must not undo a committed registration.
func (s *DirectoryService) dispatchNotification(ctx context.Context, record *domain.ClientRecord) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, record.Email, record.ID); err != nil {
		metrics.NotificationsTotal.WithLabelValues("error").Inc()
		s.logger.Warn().Err(err).Str("email", record.Email).Msg("access-granted notification failed")
		return
	}
	metrics.NotificationsTotal.WithLabelValues("dispatched").Inc()
}

// passwordAlphabet is the fixed alphabet reset passwords are drawn from.
const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"

const passwordLength = 12

// generatePassword returns a random fixed-length password. The stored value
// is plaintext: the external login surface compares it verbatim, so hashing
// here would break logins against existing data.
func generatePassword() string {
	buf := make([]byte, passwordLength)
	if _, err := rand.Read(buf); err != nil {
		// fallback: derive from the clock, still fixed-length
		return fmt.Sprintf("%012d", time.Now().UnixNano()%1e12)
	}
	for i, b := range buf {
		buf[i] = passwordAlphabet[int(b)%len(passwordAlphabet)]
	}
	return string(buf)
}
