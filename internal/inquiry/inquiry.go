// Package inquiry is the ledger of buyer contact requests against listings.
package inquiry

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"landmarket/server/internal/apperr"
	"landmarket/server/internal/authz"
	"landmarket/server/internal/database"
	"landmarket/server/internal/models"
)

// MaxMessageLength is counted in characters, not bytes.
const MaxMessageLength = 2000

type Store interface {
	CreateInquiry(ctx context.Context, i *models.Inquiry) error
	GetInquiry(ctx context.Context, id string) (*models.Inquiry, error)
	UpdateInquiryMessage(ctx context.Context, i *models.Inquiry) error
	DeleteInquiry(ctx context.Context, id string) error
	ListInquiries(ctx context.Context, filter database.InquiryFilter) ([]models.Inquiry, error)
	GetProperty(ctx context.Context, id string) (*models.Property, error)
}

type CreationRecorder interface {
	IncrementInquiryCreated()
}

type Service struct {
	store       Store
	guard       *authz.Guard
	recorder    CreationRecorder
	maxPageSize int
	logger      *logrus.Logger
}

func NewService(store Store, guard *authz.Guard, recorder CreationRecorder, maxPageSize int, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	if maxPageSize <= 0 {
		maxPageSize = 100
	}
	return &Service{store: store, guard: guard, recorder: recorder, maxPageSize: maxPageSize, logger: logger}
}

type CreateInput struct {
	PropertyID string `json:"propertyId"`
	Message    string `json:"message"`
}

// Page bounds a listing of inquiries.
type Page struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// Create records an inquiry by the actor. A listing the actor cannot see
// is reported as not found.
func (s *Service) Create(ctx context.Context, actor authz.Actor, in CreateInput) (*models.Inquiry, error) {
	if err := s.guard.Authorize(actor, authz.ActionCreate, authz.NewInquiry()); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.PropertyID) == "" {
		return nil, apperr.Validation("propertyId", "propertyId is required")
	}
	message, err := validMessage(in.Message)
	if err != nil {
		return nil, err
	}

	p, err := s.store.GetProperty(ctx, in.PropertyID)
	if err != nil {
		return nil, err
	}
	if d := s.guard.CanPerform(actor, authz.ActionRead, authz.PropertyResource(p)); !d.Allowed {
		return nil, apperr.NotFound("property")
	}

	i := &models.Inquiry{UserID: actor.ID, PropertyID: p.ID, Message: message}
	if err := s.store.CreateInquiry(ctx, i); err != nil {
		return nil, err
	}

	if s.recorder != nil {
		s.recorder.IncrementInquiryCreated()
	}
	s.logger.WithFields(logrus.Fields{
		"inquiry_id":  i.ID,
		"property_id": p.ID,
		"user_id":     actor.ID,
	}).Info("Inquiry created")
	return i, nil
}

// Get returns an inquiry to its author, the listing owner or an admin.
func (s *Service) Get(ctx context.Context, actor authz.Actor, id string) (*models.Inquiry, error) {
	i, p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(actor, authz.ActionRead, authz.InquiryResource(i, p)); err != nil {
		return nil, err
	}
	return i, nil
}

// ListForProperty returns the inquiries on one listing for its owner.
func (s *Service) ListForProperty(ctx context.Context, actor authz.Actor, propertyID string, page Page) ([]models.Inquiry, error) {
	p, err := s.store.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(actor, authz.ActionRead, authz.OwnedBy(authz.KindInquiry, p.OwnerID)); err != nil {
		return nil, err
	}
	return s.list(ctx, database.InquiryFilter{PropertyID: p.ID}, page)
}

// Mine returns the inquiries the actor wrote.
func (s *Service) Mine(ctx context.Context, actor authz.Actor, page Page) ([]models.Inquiry, error) {
	if err := s.guard.Authorize(actor, authz.ActionRead, authz.AuthoredBy(actor.ID)); err != nil {
		return nil, err
	}
	return s.list(ctx, database.InquiryFilter{UserID: actor.ID}, page)
}

// Received returns the inquiries on every listing the actor owns.
func (s *Service) Received(ctx context.Context, actor authz.Actor, page Page) ([]models.Inquiry, error) {
	if err := s.guard.Authorize(actor, authz.ActionRead, authz.OwnedBy(authz.KindInquiry, actor.ID)); err != nil {
		return nil, err
	}
	return s.list(ctx, database.InquiryFilter{OwnerID: actor.ID}, page)
}

func (s *Service) Update(ctx context.Context, actor authz.Actor, id, message string) (*models.Inquiry, error) {
	i, p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Authorize(actor, authz.ActionUpdate, authz.InquiryResource(i, p)); err != nil {
		return nil, err
	}
	if i.Message, err = validMessage(message); err != nil {
		return nil, err
	}
	if err := s.store.UpdateInquiryMessage(ctx, i); err != nil {
		return nil, err
	}
	return s.store.GetInquiry(ctx, id)
}

func (s *Service) Delete(ctx context.Context, actor authz.Actor, id string) error {
	i, p, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.guard.Authorize(actor, authz.ActionDelete, authz.InquiryResource(i, p)); err != nil {
		return err
	}
	if err := s.store.DeleteInquiry(ctx, id); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"inquiry_id": id,
		"actor_id":   actor.ID,
	}).Info("Inquiry deleted")
	return nil
}

// load fetches an inquiry with the listing that decides who owns it.
func (s *Service) load(ctx context.Context, id string) (*models.Inquiry, *models.Property, error) {
	i, err := s.store.GetInquiry(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.store.GetProperty(ctx, i.PropertyID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil, apperr.NotFound("inquiry")
	}
	if err != nil {
		return nil, nil, err
	}
	return i, p, nil
}

func (s *Service) list(ctx context.Context, filter database.InquiryFilter, page Page) ([]models.Inquiry, error) {
	if page.Offset < 0 {
		return nil, apperr.Validation("offset", "offset must not be negative")
	}
	filter.Limit = page.Limit
	if filter.Limit <= 0 || filter.Limit > s.maxPageSize {
		filter.Limit = s.maxPageSize
	}
	filter.Offset = page.Offset
	return s.store.ListInquiries(ctx, filter)
}

func validMessage(message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", apperr.Validation("message", "message is required")
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return "", apperr.Validation("message", "message must be at most %d characters", MaxMessageLength)
	}
	return message, nil
}
