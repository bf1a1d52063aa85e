package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	domainlistings "flatfinder/internal/domain/listings"
)

const listingColumns = `id, landlord_id, title, description, address, city, monthly_rent_cents, rooms, photos, status, review_note, version, created_at, updated_at`

type ListingRepository struct {
	q Querier
}

func NewListingRepository(q Querier) *ListingRepository {
	return &ListingRepository{q: q}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	row := r.q.QueryRow(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, string(id))
	l, err := scanListing(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domainlistings.ErrListingNotFound
	}
	return l, err
}

// Save inserts the listing or updates it when the stored version still equals
// l.Version.
func (r *ListingRepository) Save(ctx context.Context, l *domainlistings.Listing) error {
	tag, err := r.q.Exec(ctx, `
		INSERT INTO listings (`+listingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12 + 1, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			address = EXCLUDED.address,
			city = EXCLUDED.city,
			monthly_rent_cents = EXCLUDED.monthly_rent_cents,
			rooms = EXCLUDED.rooms,
			photos = EXCLUDED.photos,
			status = EXCLUDED.status,
			review_note = EXCLUDED.review_note,
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at
		WHERE listings.version = $12
	`,
		string(l.ID), string(l.Landlord), l.Title, l.Description, l.Address, l.City,
		l.MonthlyRentCents, l.Rooms, l.Photos, string(l.Status), l.ReviewNote, l.Version,
		l.CreatedAt.UTC(), l.UpdatedAt.UTC(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainlistings.ErrConcurrentUpdate
	}
	l.Version++
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) (domainlistings.SearchResult, error) {
	params = params.Normalized()
	where, args := searchWhere(params)

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM listings`+where, args...).Scan(&total); err != nil {
		return domainlistings.SearchResult{}, err
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`SELECT %s FROM listings%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		listingColumns, where, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return domainlistings.SearchResult{}, err
	}
	defer rows.Close()

	items := make([]*domainlistings.Listing, 0, params.Limit)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return domainlistings.SearchResult{}, err
		}
		items = append(items, l)
	}
	if err := rows.Err(); err != nil {
		return domainlistings.SearchResult{}, err
	}
	return domainlistings.SearchResult{Items: items, Total: total}, nil
}

func searchWhere(p domainlistings.SearchParams) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if p.Landlord != "" {
		add("landlord_id = $%d", string(p.Landlord))
	}
	if len(p.Statuses) > 0 {
		statuses := make([]string, 0, len(p.Statuses))
		for _, s := range p.Statuses {
			statuses = append(statuses, string(s))
		}
		add("status = ANY($%d)", statuses)
	}
	if p.City != "" {
		add("lower(city) = $%d", p.City)
	}
	if p.MaxRentCents > 0 {
		add("monthly_rent_cents <= $%d", p.MaxRentCents)
	}
	if p.MinRooms > 0 {
		add("rooms >= $%d", p.MinRooms)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanListing(row pgx.Row) (*domainlistings.Listing, error) {
	var (
		l                   domainlistings.Listing
		id, landlord        string
		status              string
		createdAt, updateAt time.Time
	)
	err := row.Scan(&id, &landlord, &l.Title, &l.Description, &l.Address, &l.City,
		&l.MonthlyRentCents, &l.Rooms, &l.Photos, &status, &l.ReviewNote, &l.Version,
		&createdAt, &updateAt)
	if err != nil {
		return nil, err
	}
	l.ID = domainlistings.ListingID(id)
	l.Landlord = domainlistings.LandlordID(landlord)
	l.Status = domainlistings.Status(status)
	l.CreatedAt = createdAt.UTC()
	l.UpdatedAt = updateAt.UTC()
	if l.Photos == nil {
		l.Photos = []string{}
	}
	return &l, nil
}

var _ domainlistings.Repository = (*ListingRepository)(nil)
