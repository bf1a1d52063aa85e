package listings

import (
	"context"

	"flatfinder/internal/app/actor"
	"flatfinder/internal/app/dto"
	"flatfinder/internal/app/handlers/support"
	"flatfinder/internal/app/queries"
	"flatfinder/internal/app/uow"
	domainlistings "flatfinder/internal/domain/listings"
	domainuser "flatfinder/internal/domain/user"
)

const (
	getListingKey    = "listing.get"
	catalogKey       = "listing.catalog"
	myListingsKey    = "listing.mine"
	adminListingsKey = "listing.admin_list"
)

type GetListingQuery struct {
	Actor     actor.Actor
	ListingID string `validate:"required"`
}

func (q GetListingQuery) Key() string { return getListingKey }

// Filters narrow catalog-style listing searches.
type Filters struct {
	City         string `validate:"max=120"`
	MaxRentCents int64  `validate:"gte=0"`
	MinRooms     int    `validate:"gte=0"`
	Limit        int    `validate:"gte=0,lte=100"`
	Offset       int    `validate:"gte=0"`
}

func (f Filters) params() domainlistings.SearchParams {
	return domainlistings.SearchParams{
		City:         f.City,
		MaxRentCents: f.MaxRentCents,
		MinRooms:     f.MinRooms,
		Limit:        f.Limit,
		Offset:       f.Offset,
	}
}

// CatalogQuery is the public search over approved listings.
type CatalogQuery struct {
	Filters Filters
}

func (q CatalogQuery) Key() string { return catalogKey }

type MyListingsQuery struct {
	Actor   actor.Actor
	Status  string
	Filters Filters
}

func (q MyListingsQuery) Key() string            { return myListingsKey }
func (q MyListingsQuery) Principal() actor.Actor { return q.Actor }
func (q MyListingsQuery) RequiredRoles() []domainuser.Role {
	return []domainuser.Role{domainuser.RoleLandlord}
}

type AdminListingsQuery struct {
	Actor   actor.Actor
	Status  string
	Filters Filters
}

func (q AdminListingsQuery) Key() string            { return adminListingsKey }
func (q AdminListingsQuery) Principal() actor.Actor { return q.Actor }
func (q AdminListingsQuery) RequiredRoles() []domainuser.Role {
	return []domainuser.Role{domainuser.RoleAdmin}
}

type GetListingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetListingHandler) Handle(ctx context.Context, q GetListingQuery) (dto.Listing, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Listing{}, err
	}
	defer cleanup()

	listing, err := support.VisibleListing(ctx, unit, q.ListingID, q.Actor)
	if err != nil {
		return dto.Listing{}, err
	}
	manage := q.Actor.IsAdmin() || listing.OwnedBy(q.Actor.UserID)
	return dto.MapListing(listing, manage), nil
}

// SearchHandler serves the catalog, landlord and admin listing queries.
type SearchHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *SearchHandler) HandleCatalog(ctx context.Context, q CatalogQuery) (dto.ListingCollection, error) {
	params := q.Filters.params()
	params.Statuses = []domainlistings.Status{domainlistings.StatusApproved}
	return h.search(ctx, params, false)
}

func (h *SearchHandler) HandleMine(ctx context.Context, q MyListingsQuery) (dto.ListingCollection, error) {
	params := q.Filters.params()
	params.Landlord = domainlistings.LandlordID(q.Actor.UserID)
	if err := withStatus(&params, q.Status); err != nil {
		return dto.ListingCollection{}, err
	}
	return h.search(ctx, params, true)
}

func (h *SearchHandler) HandleAdmin(ctx context.Context, q AdminListingsQuery) (dto.ListingCollection, error) {
	params := q.Filters.params()
	if err := withStatus(&params, q.Status); err != nil {
		return dto.ListingCollection{}, err
	}
	return h.search(ctx, params, true)
}

func (h *SearchHandler) search(ctx context.Context, params domainlistings.SearchParams, manage bool) (dto.ListingCollection, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingCollection{}, err
	}
	defer cleanup()

	params = params.Normalized()
	res, err := unit.Listings().Search(ctx, params)
	if err != nil {
		return dto.ListingCollection{}, err
	}
	return dto.MapListingCollection(res, params, manage), nil
}

func withStatus(params *domainlistings.SearchParams, raw string) error {
	if raw == "" {
		return nil
	}
	status, err := domainlistings.ParseStatus(raw)
	if err != nil {
		return err
	}
	params.Statuses = []domainlistings.Status{status}
	return nil
}

var _ queries.Handler[GetListingQuery, dto.Listing] = (*GetListingHandler)(nil)
