package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"landmarket/server/internal/apperr"
	"landmarket/server/internal/database"
	"landmarket/server/internal/database/dbtest"
	"landmarket/server/internal/models"
)

type StoreSuite struct {
	suite.Suite
	db     *database.Database
	ctx    context.Context
	seller *models.User
	other  *models.User
}

func (s *StoreSuite) SetupTest() {
	s.db = dbtest.New(s.T())
	s.ctx = context.Background()
	s.seller = dbtest.Seller(s.T(), s.db, "wanjiku")
	s.other = dbtest.Seller(s.T(), s.db, "otieno")
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func ids(props []models.Property) []string {
	out := make([]string, 0, len(props))
	for _, p := range props {
		out = append(out, p.ID)
	}
	return out
}

func (s *StoreSuite) TestGetPropertyNotFound() {
	_, err := s.db.GetProperty(s.ctx, "missing")
	s.ErrorIs(err, apperr.ErrNotFound)
}

func (s *StoreSuite) TestBoundaryRoundTrip() {
	p := dbtest.Listing(s.T(), s.db, s.seller, "ridge", models.ModerationPending)
	p.Boundary = models.Boundary{
		{Lat: -1.30, Lng: 36.80}, {Lat: -1.30, Lng: 36.81},
		{Lat: -1.29, Lng: 36.81}, {Lat: -1.30, Lng: 36.80},
	}
	s.Require().NoError(s.db.UpdatePropertyFields(s.ctx, p, []string{"boundary"}))

	got, err := s.db.GetProperty(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p.Boundary, got.Boundary)
	s.Equal(p.Title, got.Title)
}

func (s *StoreSuite) TestUpdatePropertyFieldsOnlyTouchesSelectedColumns() {
	p := dbtest.Listing(s.T(), s.db, s.seller, "kiambu plot", models.ModerationPending)

	patch := *p
	patch.Title = "renamed"
	patch.Price = 1
	s.Require().NoError(s.db.UpdatePropertyFields(s.ctx, &patch, []string{"title"}))

	got, err := s.db.GetProperty(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("renamed", got.Title)
	s.Equal(p.Price, got.Price)
	s.Equal(models.ModerationPending, got.ModerationState)
}

func (s *StoreSuite) TestSetModerationStateIsCompareAndSet() {
	p := dbtest.Listing(s.T(), s.db, s.seller, "plot", models.ModerationPending)

	changed, err := s.db.SetModerationState(s.ctx, p.ID, models.ModerationPending, models.ModerationApproved)
	s.Require().NoError(err)
	s.True(changed)

	changed, err = s.db.SetModerationState(s.ctx, p.ID, models.ModerationPending, models.ModerationApproved)
	s.Require().NoError(err)
	s.False(changed)

	got, err := s.db.GetProperty(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(models.ModerationApproved, got.ModerationState)
	s.NotNil(got.ApprovedAt)
}

func (s *StoreSuite) TestQueryVisibility() {
	approved := dbtest.Listing(s.T(), s.db, s.seller, "approved", models.ModerationApproved)
	mine := dbtest.Listing(s.T(), s.db, s.seller, "mine pending", models.ModerationPending)
	theirs := dbtest.Listing(s.T(), s.db, s.other, "their pending", models.ModerationPending)

	anon, err := s.db.QueryProperties(s.ctx, database.PropertyFilter{})
	s.Require().NoError(err)
	s.ElementsMatch([]string{approved.ID}, ids(anon))

	owner, err := s.db.QueryProperties(s.ctx, database.PropertyFilter{
		Visibility: database.Visibility{ViewerID: s.seller.ID},
	})
	s.Require().NoError(err)
	s.ElementsMatch([]string{approved.ID, mine.ID}, ids(owner))

	// Filters must still apply to the owner's extra rows.
	owner, err = s.db.QueryProperties(s.ctx, database.PropertyFilter{
		ModerationState: models.ModerationApproved,
		Visibility:      database.Visibility{ViewerID: s.seller.ID},
	})
	s.Require().NoError(err)
	s.ElementsMatch([]string{approved.ID}, ids(owner))

	all, err := s.db.QueryProperties(s.ctx, database.PropertyFilter{Visibility: database.Visibility{All: true}})
	s.Require().NoError(err)
	s.ElementsMatch([]string{approved.ID, mine.ID, theirs.ID}, ids(all))
}

func (s *StoreSuite) TestQueryFiltersCombine() {
	cheap := dbtest.Listing(s.T(), s.db, s.seller, "Cheap shamba", models.ModerationApproved)
	pricey := dbtest.Listing(s.T(), s.db, s.seller, "Prime commercial", models.ModerationApproved)
	pricey.Price = 9_000_000
	pricey.Type = models.PropertyCommercial
	pricey.County = "Mombasa"
	s.Require().NoError(s.db.UpdatePropertyFields(s.ctx, pricey, []string{"price", "type", "county"}))

	floor := 5_000_000.0
	got, err := s.db.QueryProperties(s.ctx, database.PropertyFilter{MinPrice: &floor})
	s.Require().NoError(err)
	s.ElementsMatch([]string{pricey.ID}, ids(got))

	got, err = s.db.QueryProperties(s.ctx, database.PropertyFilter{County: "nairobi"})
	s.Require().NoError(err)
	s.ElementsMatch([]string{cheap.ID}, ids(got))

	got, err = s.db.QueryProperties(s.ctx, database.PropertyFilter{Search: "SHAMBA"})
	s.Require().NoError(err)
	s.ElementsMatch([]string{cheap.ID}, ids(got))

	got, err = s.db.QueryProperties(s.ctx, database.PropertyFilter{
		Type:     models.PropertyCommercial,
		MinPrice: &floor,
		County:   "Nairobi",
	})
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *StoreSuite) TestQuerySearchEscapesWildcards() {
	dbtest.Listing(s.T(), s.db, s.seller, "plain", models.ModerationApproved)
	hit := dbtest.Listing(s.T(), s.db, s.seller, "100% titled", models.ModerationApproved)

	got, err := s.db.QueryProperties(s.ctx, database.PropertyFilter{Search: "%"})
	s.Require().NoError(err)
	s.ElementsMatch([]string{hit.ID}, ids(got))
}

func (s *StoreSuite) TestQueryOrderAndPaging() {
	first := dbtest.Listing(s.T(), s.db, s.seller, "first", models.ModerationApproved)
	time.Sleep(5 * time.Millisecond)
	second := dbtest.Listing(s.T(), s.db, s.seller, "second", models.ModerationApproved)

	got, err := s.db.QueryProperties(s.ctx, database.PropertyFilter{Limit: 1})
	s.Require().NoError(err)
	s.Equal([]string{second.ID}, ids(got))

	got, err = s.db.QueryProperties(s.ctx, database.PropertyFilter{Limit: 1, Offset: 1})
	s.Require().NoError(err)
	s.Equal([]string{first.ID}, ids(got))
}

func (s *StoreSuite) TestDeletePropertyRemovesInquiries() {
	p := dbtest.Listing(s.T(), s.db, s.seller, "plot", models.ModerationApproved)
	buyer := dbtest.Buyer(s.T(), s.db, "kamau")
	s.Require().NoError(s.db.CreateInquiry(s.ctx, &models.Inquiry{UserID: buyer.ID, PropertyID: p.ID, Message: "hi"}))

	s.Require().NoError(s.db.DeleteProperty(s.ctx, p.ID))

	left, err := s.db.ListInquiries(s.ctx, database.InquiryFilter{PropertyID: p.ID})
	s.Require().NoError(err)
	s.Empty(left)
	s.ErrorIs(s.db.DeleteProperty(s.ctx, p.ID), apperr.ErrNotFound)
}

func (s *StoreSuite) TestListingsCarryOwnerContact() {
	p := dbtest.Listing(s.T(), s.db, s.seller, "plot", models.ModerationApproved)

	got, err := s.db.GetProperty(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.Owner)
	s.Equal(models.Contact{ID: s.seller.ID, Name: s.seller.Name, Phone: s.seller.Phone}, *got.Owner)

	list, err := s.db.QueryProperties(s.ctx, database.PropertyFilter{Visibility: database.Visibility{All: true}})
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Require().NotNil(list[0].Owner)
	s.Equal(s.seller.Phone, list[0].Owner.Phone)
	s.Empty(list[0].Owner.Email)
}

func (s *StoreSuite) TestInquiriesCarryInquirerAndListing() {
	p := dbtest.Listing(s.T(), s.db, s.seller, "lakeside", models.ModerationApproved)
	buyer := dbtest.Buyer(s.T(), s.db, "kamau")
	i := &models.Inquiry{UserID: buyer.ID, PropertyID: p.ID, Message: "is it fenced?"}
	s.Require().NoError(s.db.CreateInquiry(s.ctx, i))

	for _, filter := range []database.InquiryFilter{
		{PropertyID: p.ID},
		{OwnerID: s.seller.ID},
		{UserID: buyer.ID},
	} {
		got, err := s.db.ListInquiries(s.ctx, filter)
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Require().NotNil(got[0].Inquirer)
		s.Equal(models.Contact{ID: buyer.ID, Name: buyer.Name, Email: buyer.Email, Phone: buyer.Phone}, *got[0].Inquirer)
		s.Require().NotNil(got[0].Property)
		s.Equal(p.ID, got[0].Property.ID)
		s.Equal("lakeside", got[0].Property.Title)
		s.Equal(p.Price, got[0].Property.Price)
		s.Equal(p.Location, got[0].Property.Location)
	}

	one, err := s.db.GetInquiry(s.ctx, i.ID)
	s.Require().NoError(err)
	s.Require().NotNil(one.Inquirer)
	s.Equal(buyer.Email, one.Inquirer.Email)
	s.Require().NotNil(one.Property)
	s.Equal("lakeside", one.Property.Title)
}

func (s *StoreSuite) TestDeleteUserCascades() {
	owned := dbtest.Listing(s.T(), s.db, s.seller, "owned", models.ModerationApproved)
	elsewhere := dbtest.Listing(s.T(), s.db, s.other, "elsewhere", models.ModerationApproved)
	buyer := dbtest.Buyer(s.T(), s.db, "kamau")

	onOwned := &models.Inquiry{UserID: buyer.ID, PropertyID: owned.ID, Message: "a"}
	byDeleted := &models.Inquiry{UserID: s.seller.ID, PropertyID: elsewhere.ID, Message: "b"}
	kept := &models.Inquiry{UserID: buyer.ID, PropertyID: elsewhere.ID, Message: "c"}
	for _, i := range []*models.Inquiry{onOwned, byDeleted, kept} {
		s.Require().NoError(s.db.CreateInquiry(s.ctx, i))
	}

	s.Require().NoError(s.db.DeleteUser(s.ctx, s.seller.ID))

	_, err := s.db.GetUser(s.ctx, s.seller.ID)
	s.ErrorIs(err, apperr.ErrNotFound)
	_, err = s.db.GetProperty(s.ctx, owned.ID)
	s.ErrorIs(err, apperr.ErrNotFound)

	left, err := s.db.ListInquiries(s.ctx, database.InquiryFilter{})
	s.Require().NoError(err)
	s.Require().Len(left, 1)
	s.Equal(kept.ID, left[0].ID)
}

func (s *StoreSuite) TestDuplicateEmailIsConflict() {
	dup := &models.User{
		Name: "dup", Email: s.seller.Email, Phone: "+254700000999",
		PasswordHash: "x", Role: models.RoleBuyer, AccountState: models.AccountVerified,
	}
	err := s.db.CreateUser(s.ctx, dup)
	s.ErrorIs(err, apperr.ErrConflict)

	exists, err := s.db.UserExists(s.ctx, "email", "WANJIKU@example.com", "")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.db.UserExists(s.ctx, "email", s.seller.Email, s.seller.ID)
	s.Require().NoError(err)
	s.False(exists)
}

func (s *StoreSuite) TestFindUserByLogin() {
	got, err := s.db.FindUserByLogin(s.ctx, "Wanjiku@Example.com")
	s.Require().NoError(err)
	s.Equal(s.seller.ID, got.ID)

	got, err = s.db.FindUserByLogin(s.ctx, s.other.Phone)
	s.Require().NoError(err)
	s.Equal(s.other.ID, got.ID)

	_, err = s.db.FindUserByLogin(s.ctx, "nobody")
	s.ErrorIs(err, apperr.ErrNotFound)
}

func (s *StoreSuite) TestSetAccountState() {
	changed, err := s.db.SetAccountState(s.ctx, s.seller.ID, models.AccountVerified, models.AccountSuspended)
	s.Require().NoError(err)
	s.True(changed)

	changed, err = s.db.SetAccountState(s.ctx, s.seller.ID, models.AccountVerified, models.AccountSuspended)
	s.Require().NoError(err)
	s.False(changed)
}

func (s *StoreSuite) TestStats() {
	dbtest.Listing(s.T(), s.db, s.seller, "a", models.ModerationApproved)
	dbtest.Listing(s.T(), s.db, s.seller, "b", models.ModerationPending)

	pub, err := s.db.PublicStats(s.ctx)
	s.Require().NoError(err)
	s.Equal(models.PropertyStats{Users: 2, Listings: 1}, pub)

	admin, err := s.db.AdminStats(s.ctx)
	s.Require().NoError(err)
	s.Equal(models.AdminStats{Users: 2, Properties: 2, Pending: 1}, admin)
}

func (s *StoreSuite) TestModerationEventsIgnoreRedelivery() {
	ev := &models.ModerationEvent{
		Entity: models.EntityProperty, EntityID: "p1", Action: "approve",
		FromState: "pending", ToState: "approved", ActorID: "a1", OccurredAt: time.Now().UTC(),
	}
	s.Require().NoError(s.db.InsertModerationEvents(s.ctx, []*models.ModerationEvent{ev}))
	s.Require().NoError(s.db.InsertModerationEvents(s.ctx, []*models.ModerationEvent{ev}))

	events, err := s.db.ListModerationEvents(s.ctx, "p1", 10)
	s.Require().NoError(err)
	s.Len(events, 1)
}

func TestEscapeLikeViaSearchUnderscore(t *testing.T) {
	db := dbtest.New(t)
	seller := dbtest.Seller(t, db, "njeri")
	dbtest.Listing(t, db, seller, "abc", models.ModerationApproved)
	hit := dbtest.Listing(t, db, seller, "a_c", models.ModerationApproved)

	got, err := db.QueryProperties(context.Background(), database.PropertyFilter{Search: "a_c"})
	require.NoError(t, err)
	assert.Equal(t, []string{hit.ID}, ids(got))
}
