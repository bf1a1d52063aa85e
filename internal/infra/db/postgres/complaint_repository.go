package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	domaincomplaints "flatfinder/internal/domain/complaints"
	domainlistings "flatfinder/internal/domain/listings"
)

const complaintColumns = `id, listing_id, reporter_id, subject, body, status, admin_note, created_at, updated_at`

type ComplaintRepository struct {
	q Querier
}

func NewComplaintRepository(q Querier) *ComplaintRepository {
	return &ComplaintRepository{q: q}
}

func (r *ComplaintRepository) ByID(ctx context.Context, id domaincomplaints.ComplaintID) (*domaincomplaints.Complaint, error) {
	row := r.q.QueryRow(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id = $1`, string(id))
	c, err := scanComplaint(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domaincomplaints.ErrNotFound
	}
	return c, err
}

func (r *ComplaintRepository) Save(ctx context.Context, c *domaincomplaints.Complaint) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO complaints (`+complaintColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			admin_note = EXCLUDED.admin_note,
			updated_at = EXCLUDED.updated_at
	`, string(c.ID), string(c.ListingID), c.ReporterID, c.Subject, c.Body,
		string(c.Status), c.AdminNote, c.CreatedAt.UTC(), c.UpdatedAt.UTC())
	return err
}

func (r *ComplaintRepository) List(ctx context.Context, params domaincomplaints.ListParams) ([]*domaincomplaints.Complaint, error) {
	var conds []string
	var args []any
	if params.Status != "" {
		args = append(args, string(params.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if params.ListingID != "" {
		args = append(args, string(params.ListingID))
		conds = append(conds, fmt.Sprintf("listing_id = $%d", len(args)))
	}
	query := `SELECT ` + complaintColumns + ` FROM complaints`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*domaincomplaints.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanComplaint(row pgx.Row) (*domaincomplaints.Complaint, error) {
	var (
		c                  domaincomplaints.Complaint
		id, listingID      string
		status             string
		created, updatedAt time.Time
	)
	if err := row.Scan(&id, &listingID, &c.ReporterID, &c.Subject, &c.Body, &status, &c.AdminNote, &created, &updatedAt); err != nil {
		return nil, err
	}
	c.ID = domaincomplaints.ComplaintID(id)
	c.ListingID = domainlistings.ListingID(listingID)
	c.Status = domaincomplaints.Status(status)
	c.CreatedAt = created.UTC()
	c.UpdatedAt = updatedAt.UTC()
	return &c, nil
}

var _ domaincomplaints.Repository = (*ComplaintRepository)(nil)
