package inquiry_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"landmarket/server/internal/apperr"
	"landmarket/server/internal/authz"
	"landmarket/server/internal/database"
	"landmarket/server/internal/database/dbtest"
	"landmarket/server/internal/inquiry"
	"landmarket/server/internal/metrics"
	"landmarket/server/internal/models"
)

type LedgerSuite struct {
	suite.Suite
	ctx     context.Context
	db      *database.Database
	metrics *metrics.Metrics
	svc     *inquiry.Service

	admin    authz.Actor
	seller   authz.Actor
	buyer    authz.Actor
	stranger authz.Actor

	approved *models.Property
	pending  *models.Property
}

func (s *LedgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = dbtest.New(s.T())
	s.metrics = metrics.New(prometheus.NewRegistry())

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	s.svc = inquiry.NewService(s.db, authz.NewGuard(s.metrics), s.metrics, 50, logger)

	seller := dbtest.Seller(s.T(), s.db, "seller")
	s.admin = authz.ActorFor(dbtest.Admin(s.T(), s.db, "admin"))
	s.seller = authz.ActorFor(seller)
	s.buyer = authz.ActorFor(dbtest.Buyer(s.T(), s.db, "buyer"))
	s.stranger = authz.ActorFor(dbtest.Buyer(s.T(), s.db, "stranger"))

	s.approved = dbtest.Listing(s.T(), s.db, seller, "approved", models.ModerationApproved)
	s.pending = dbtest.Listing(s.T(), s.db, seller, "pending", models.ModerationPending)
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) ask(actor authz.Actor, p *models.Property, message string) *models.Inquiry {
	i, err := s.svc.Create(s.ctx, actor, inquiry.CreateInput{PropertyID: p.ID, Message: message})
	s.Require().NoError(err)
	return i
}

func (s *LedgerSuite) TestCreate() {
	i := s.ask(s.buyer, s.approved, "  Is the title deed ready?  ")

	s.Equal("Is the title deed ready?", i.Message)
	s.Equal(s.buyer.ID, i.UserID)
	s.Equal(s.approved.ID, i.PropertyID)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.InquiriesCreated))
}

func (s *LedgerSuite) TestCreateRequiresAuthentication() {
	_, err := s.svc.Create(s.ctx, authz.Actor{}, inquiry.CreateInput{PropertyID: s.approved.ID, Message: "hi"})
	s.ErrorIs(err, apperr.ErrForbidden)
}

func (s *LedgerSuite) TestCreateOnHiddenListingIsNotFound() {
	_, err := s.svc.Create(s.ctx, s.buyer, inquiry.CreateInput{PropertyID: s.pending.ID, Message: "hi"})
	s.ErrorIs(err, apperr.ErrNotFound)

	_, err = s.svc.Create(s.ctx, s.buyer, inquiry.CreateInput{PropertyID: "missing", Message: "hi"})
	s.ErrorIs(err, apperr.ErrNotFound)

	// The owner can see the pending listing.
	s.ask(s.seller, s.pending, "note to self")
}

func (s *LedgerSuite) TestMessageValidation() {
	for _, message := range []string{"", "   ", strings.Repeat("a", inquiry.MaxMessageLength+1)} {
		_, err := s.svc.Create(s.ctx, s.buyer, inquiry.CreateInput{PropertyID: s.approved.ID, Message: message})
		s.ErrorIs(err, apperr.ErrValidation)
		s.Equal("message", apperr.FieldOf(err))
	}

	// Multi-byte characters count once each.
	s.ask(s.buyer, s.approved, strings.Repeat("é", inquiry.MaxMessageLength))

	_, err := s.svc.Create(s.ctx, s.buyer, inquiry.CreateInput{Message: "hi"})
	s.ErrorIs(err, apperr.ErrValidation)
	s.Equal("propertyId", apperr.FieldOf(err))
}

func (s *LedgerSuite) TestListForPropertyIsOwnerOrAdmin() {
	first := s.ask(s.buyer, s.approved, "first")
	time.Sleep(2 * time.Millisecond)
	second := s.ask(s.stranger, s.approved, "second")

	for _, actor := range []authz.Actor{s.seller, s.admin} {
		got, err := s.svc.ListForProperty(s.ctx, actor, s.approved.ID, inquiry.Page{})
		s.Require().NoError(err)
		s.Require().Len(got, 2)
		s.Equal(second.ID, got[0].ID)
		s.Equal(first.ID, got[1].ID)
	}

	_, err := s.svc.ListForProperty(s.ctx, s.buyer, s.approved.ID, inquiry.Page{})
	s.ErrorIs(err, apperr.ErrForbidden)
	_, err = s.svc.ListForProperty(s.ctx, authz.Actor{}, s.approved.ID, inquiry.Page{})
	s.ErrorIs(err, apperr.ErrForbidden)
	_, err = s.svc.ListForProperty(s.ctx, s.seller, "missing", inquiry.Page{})
	s.ErrorIs(err, apperr.ErrNotFound)
}

func (s *LedgerSuite) TestMineAndReceived() {
	s.ask(s.buyer, s.approved, "mine")
	s.ask(s.stranger, s.approved, "theirs")

	mine, err := s.svc.Mine(s.ctx, s.buyer, inquiry.Page{})
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal("mine", mine[0].Message)
	s.Require().NotNil(mine[0].Property)
	s.Equal(s.approved.Title, mine[0].Property.Title)

	received, err := s.svc.Received(s.ctx, s.seller, inquiry.Page{Limit: 1})
	s.Require().NoError(err)
	s.Len(received, 1)

	received, err = s.svc.Received(s.ctx, s.seller, inquiry.Page{})
	s.Require().NoError(err)
	s.Len(received, 2)
	for _, i := range received {
		s.Require().NotNil(i.Inquirer)
		s.NotEmpty(i.Inquirer.Phone)
		s.NotEmpty(i.Inquirer.Email)
	}

	_, err = s.svc.Mine(s.ctx, authz.Actor{}, inquiry.Page{})
	s.ErrorIs(err, apperr.ErrForbidden)
	_, err = s.svc.Received(s.ctx, authz.Actor{}, inquiry.Page{})
	s.ErrorIs(err, apperr.ErrForbidden)
	_, err = s.svc.Mine(s.ctx, s.buyer, inquiry.Page{Offset: -1})
	s.ErrorIs(err, apperr.ErrValidation)
}

func (s *LedgerSuite) TestGetVisibility() {
	i := s.ask(s.buyer, s.approved, "hello")

	for _, actor := range []authz.Actor{s.buyer, s.seller, s.admin} {
		got, err := s.svc.Get(s.ctx, actor, i.ID)
		s.Require().NoError(err)
		s.Equal(i.ID, got.ID)
	}

	_, err := s.svc.Get(s.ctx, s.stranger, i.ID)
	s.ErrorIs(err, apperr.ErrForbidden)
}

func (s *LedgerSuite) TestUpdateAndDeleteArePropertyOwnerOrAdmin() {
	i := s.ask(s.buyer, s.approved, "hello")

	_, err := s.svc.Update(s.ctx, s.buyer, i.ID, "edited by author")
	s.ErrorIs(err, apperr.ErrForbidden)
	s.ErrorIs(s.svc.Delete(s.ctx, s.stranger, i.ID), apperr.ErrForbidden)

	got, err := s.svc.Update(s.ctx, s.seller, i.ID, "answered")
	s.Require().NoError(err)
	s.Equal("answered", got.Message)

	_, err = s.svc.Update(s.ctx, s.admin, i.ID, "")
	s.ErrorIs(err, apperr.ErrValidation)

	s.Require().NoError(s.svc.Delete(s.ctx, s.admin, i.ID))
	_, err = s.svc.Get(s.ctx, s.admin, i.ID)
	s.ErrorIs(err, apperr.ErrNotFound)
}

func (s *LedgerSuite) TestDeniedReadsAreCounted() {
	i := s.ask(s.buyer, s.approved, "hello")
	_, _ = s.svc.Get(s.ctx, s.stranger, i.ID)

	s.Equal(1.0, testutil.ToFloat64(s.metrics.AuthzDenials.WithLabelValues("read", "inquiry", "owner-read")))
}
