package complaints

import (
	"context"
	"time"

	"github.com/google/uuid"

	"flatfinder/internal/app/actor"
	"flatfinder/internal/app/commands"
	"flatfinder/internal/app/dto"
	"flatfinder/internal/app/handlers/support"
	"flatfinder/internal/app/outbox"
	"flatfinder/internal/app/queries"
	"flatfinder/internal/app/uow"
	domaincomplaints "flatfinder/internal/domain/complaints"
	domainlistings "flatfinder/internal/domain/listings"
	domainuser "flatfinder/internal/domain/user"
)

const (
	fileComplaintKey       = "complaint.file"
	transitionComplaintKey = "complaint.transition"
	listComplaintsKey      = "complaint.list"
)

var adminOnly = []domainuser.Role{domainuser.RoleAdmin}

type FileComplaintCommand struct {
	Actor     actor.Actor
	ListingID string `validate:"required"`
	Subject   string `validate:"required,max=200"`
	Body      string `validate:"max=5000"`
}

func (c FileComplaintCommand) Key() string                      { return fileComplaintKey }
func (c FileComplaintCommand) Principal() actor.Actor           { return c.Actor }
func (c FileComplaintCommand) RequiredRoles() []domainuser.Role { return nil }

type TransitionComplaintCommand struct {
	Actor       actor.Actor
	ComplaintID string `validate:"required"`
	Status      string `validate:"required"`
	Note        string `validate:"max=1000"`
}

func (c TransitionComplaintCommand) Key() string                      { return transitionComplaintKey }
func (c TransitionComplaintCommand) Principal() actor.Actor           { return c.Actor }
func (c TransitionComplaintCommand) RequiredRoles() []domainuser.Role { return adminOnly }

type ListComplaintsQuery struct {
	Actor     actor.Actor
	Status    string
	ListingID string
}

func (q ListComplaintsQuery) Key() string                      { return listComplaintsKey }
func (q ListComplaintsQuery) Principal() actor.Actor           { return q.Actor }
func (q ListComplaintsQuery) RequiredRoles() []domainuser.Role { return adminOnly }

type FileComplaintHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
	NewID      func() string
}

func (h *FileComplaintHandler) Handle(ctx context.Context, cmd FileComplaintCommand) (dto.Complaint, error) {
	id := uuid.NewString()
	if h.NewID != nil {
		id = h.NewID()
	}
	var out dto.Complaint
	err := support.WithinUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
		if err != nil {
			return err
		}
		complaint, err := domaincomplaints.File(domaincomplaints.FileParams{
			ID:         domaincomplaints.ComplaintID(id),
			ListingID:  listing.ID,
			ReporterID: cmd.Actor.UserID,
			Subject:    cmd.Subject,
			Body:       cmd.Body,
			Now:        support.Now(h.Now),
		})
		if err != nil {
			return err
		}
		if err := unit.Complaints().Save(ctx, complaint); err != nil {
			return err
		}
		if err := support.RecordEvents(ctx, h.Outbox, h.Encoder, complaint); err != nil {
			return err
		}
		out = dto.MapComplaint(complaint)
		return nil
	})
	return out, err
}

type TransitionComplaintHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Now        func() time.Time
}

func (h *TransitionComplaintHandler) Handle(ctx context.Context, cmd TransitionComplaintCommand) (dto.Complaint, error) {
	status, err := domaincomplaints.ParseStatus(cmd.Status)
	if err != nil {
		return dto.Complaint{}, err
	}
	var out dto.Complaint
	err = support.WithinUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		complaint, err := unit.Complaints().ByID(ctx, domaincomplaints.ComplaintID(cmd.ComplaintID))
		if err != nil {
			return err
		}
		if err := complaint.Transition(status, cmd.Note, support.Now(h.Now)); err != nil {
			return err
		}
		if err := unit.Complaints().Save(ctx, complaint); err != nil {
			return err
		}
		if err := support.RecordEvents(ctx, h.Outbox, h.Encoder, complaint); err != nil {
			return err
		}
		out = dto.MapComplaint(complaint)
		return nil
	})
	return out, err
}

type ListComplaintsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListComplaintsHandler) Handle(ctx context.Context, q ListComplaintsQuery) (dto.ComplaintCollection, error) {
	params := domaincomplaints.ListParams{ListingID: domainlistings.ListingID(q.ListingID)}
	if q.Status != "" {
		status, err := domaincomplaints.ParseStatus(q.Status)
		if err != nil {
			return dto.ComplaintCollection{}, err
		}
		params.Status = status
	}

	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ComplaintCollection{}, err
	}
	defer cleanup()

	list, err := unit.Complaints().List(ctx, params)
	if err != nil {
		return dto.ComplaintCollection{}, err
	}
	items := make([]dto.Complaint, 0, len(list))
	for _, c := range list {
		items = append(items, dto.MapComplaint(c))
	}
	return dto.ComplaintCollection{Items: items}, nil
}

var _ commands.Handler[FileComplaintCommand, dto.Complaint] = (*FileComplaintHandler)(nil)
var _ commands.Handler[TransitionComplaintCommand, dto.Complaint] = (*TransitionComplaintHandler)(nil)
var _ queries.Handler[ListComplaintsQuery, dto.ComplaintCollection] = (*ListComplaintsHandler)(nil)
