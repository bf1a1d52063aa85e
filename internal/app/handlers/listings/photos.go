package listings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"flatfinder/internal/app/actor"
	"flatfinder/internal/app/commands"
	"flatfinder/internal/app/dto"
	"flatfinder/internal/app/handlers/support"
	"flatfinder/internal/app/outbox"
	"flatfinder/internal/app/uow"
	domainlistings "flatfinder/internal/domain/listings"
	domainuser "flatfinder/internal/domain/user"
)

const addPhotoKey = "listing.add_photo"

var (
	ErrPhotoStorageUnavailable = errors.New("listings: photo storage unavailable")
	ErrPhotoTypeUnsupported    = errors.New("listings: photo must be jpeg, png or webp")
)

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// PhotoStore keeps uploaded photos and hands back their public URL.
type PhotoStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, key string) error
}

type AddPhotoCommand struct {
	Actor       actor.Actor
	ListingID   string    `validate:"required"`
	ContentType string    `validate:"required"`
	Size        int64     `validate:"gt=0,lte=10485760"`
	Reader      io.Reader `validate:"-"`
}

func (c AddPhotoCommand) Key() string            { return addPhotoKey }
func (c AddPhotoCommand) Principal() actor.Actor { return c.Actor }
func (c AddPhotoCommand) RequiredRoles() []domainuser.Role {
	return []domainuser.Role{domainuser.RoleLandlord}
}

type AddPhotoHandler struct {
	UoWFactory uow.UoWFactory
	Store      PhotoStore
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *AddPhotoHandler) Handle(ctx context.Context, cmd AddPhotoCommand) (dto.Listing, error) {
	if h.Store == nil {
		return dto.Listing{}, ErrPhotoStorageUnavailable
	}
	contentType := strings.ToLower(strings.TrimSpace(cmd.ContentType))
	ext, ok := photoExtensions[contentType]
	if !ok {
		return dto.Listing{}, ErrPhotoTypeUnsupported
	}
	if cmd.Reader == nil {
		return dto.Listing{}, errors.New("listings: photo body is required")
	}

	var out dto.Listing
	err := support.WithinUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		listing, err := support.OwnedListing(ctx, unit, cmd.ListingID, cmd.Actor)
		if err != nil {
			return err
		}
		key := path.Join("listings", string(listing.ID), uuid.NewString()+ext)
		url, err := h.Store.Upload(ctx, key, cmd.Reader, cmd.Size, contentType)
		if err != nil {
			return fmt.Errorf("upload photo: %w", err)
		}
		if err := h.attach(ctx, unit, listing, url); err != nil {
			if rmErr := h.Store.Remove(ctx, key); rmErr != nil && h.Logger != nil {
				h.Logger.WarnContext(ctx, "orphaned listing photo", "key", key, "error", rmErr)
			}
			return err
		}
		out = dto.MapListing(listing, true)
		return nil
	})
	return out, err
}

func (h *AddPhotoHandler) attach(ctx context.Context, unit uow.UnitOfWork, listing *domainlistings.Listing, url string) error {
	if err := listing.AddPhoto(url, support.Now(h.Now)); err != nil {
		return err
	}
	if err := unit.Listings().Save(ctx, listing); err != nil {
		return err
	}
	return support.RecordEvents(ctx, h.Outbox, h.Encoder, listing)
}

var _ commands.Handler[AddPhotoCommand, dto.Listing] = (*AddPhotoHandler)(nil)
