package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"flatfinder/internal/app/handlers/support"
	"flatfinder/internal/app/outbox"
	"flatfinder/internal/app/uow"
	domainbooking "flatfinder/internal/domain/booking"
	"flatfinder/internal/domain/listings"
	"flatfinder/internal/domain/shared/daterange"
)

type listingFixture struct {
	ID               string          `json:"id"`
	Landlord         string          `json:"landlord_id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Address          string          `json:"address"`
	City             string          `json:"city"`
	MonthlyRentCents int64           `json:"monthly_rent_cents"`
	Rooms            int             `json:"rooms"`
	Availability     []fixtureWindow `json:"availability"`
}

type fixtureWindow struct {
	From string `json:"from"`
	To   string `json:"to"`
}

var errFixturePresent = errors.New("fixture listing already present")

// loadFixtures seeds approved listings with their published availability.
// Listings that already exist are left alone. Events of imported listings go
// to the outbox in the same unit.
func loadFixtures(ctx context.Context, factory uow.UoWFactory, events outbox.Writer, path string, loc *time.Location, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("listing fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	var fixtures []listingFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	imp := fixtureImporter{
		factory: factory,
		box:     outbox.NewBuffered(events),
		encoder: outbox.JSONEventEncoder{},
		policy:  domainbooking.DefaultStayPolicy(loc),
		now:     time.Now(),
	}
	for _, fx := range fixtures {
		err := imp.importListing(ctx, fx)
		switch {
		case errors.Is(err, errFixturePresent):
			logger.Info("listing fixture already present", "listing_id", fx.ID)
		case err != nil:
			logger.Error("fixture skipped", "listing_id", fx.ID, "error", err)
		default:
			logger.Info("listing fixture imported", "listing_id", fx.ID, "windows", len(fx.Availability))
		}
	}
	return nil
}

type fixtureImporter struct {
	factory uow.UoWFactory
	box     outbox.Outbox
	encoder outbox.EventEncoder
	policy  domainbooking.StayPolicy
	now     time.Time
}

// importListing returns errFixturePresent when the listing id is taken.
func (imp fixtureImporter) importListing(ctx context.Context, fx listingFixture) error {
	policy, now := imp.policy, imp.now
	listing, err := listings.NewListing(listings.CreateParams{
		ID:       listings.ListingID(fx.ID),
		Landlord: listings.LandlordID(fx.Landlord),
		Details: listings.Details{
			Title:            fx.Title,
			Description:      fx.Description,
			Address:          fx.Address,
			City:             fx.City,
			MonthlyRentCents: fx.MonthlyRentCents,
			Rooms:            fx.Rooms,
		},
		Now: now,
	})
	if err != nil {
		return err
	}
	if err := listing.Review(listings.StatusApproved, "fixture", now); err != nil {
		return err
	}

	windows := make([]daterange.DateRange, 0, len(fx.Availability))
	for _, w := range fx.Availability {
		from, err := time.ParseInLocation(time.DateOnly, w.From, policy.Location)
		if err != nil {
			return fmt.Errorf("availability from: %w", err)
		}
		to, err := time.ParseInLocation(time.DateOnly, w.To, policy.Location)
		if err != nil {
			return fmt.Errorf("availability to: %w", err)
		}
		dr, err := policy.Normalize(from, to)
		if err != nil {
			return err
		}
		windows = append(windows, dr)
	}

	return uow.Run(ctx, imp.factory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		if _, err := unit.Listings().ByID(ctx, listing.ID); err == nil {
			return errFixturePresent
		} else if !errors.Is(err, listings.ErrListingNotFound) {
			return err
		}
		if err := unit.Listings().Save(ctx, listing); err != nil {
			return err
		}
		schedule, err := unit.Availability().Schedule(ctx, listing.ID)
		if err != nil {
			return err
		}
		if err := schedule.Replace(windows, now); err != nil {
			return err
		}
		if err := unit.Availability().Save(ctx, schedule); err != nil {
			return err
		}
		return support.RecordEvents(ctx, imp.box, imp.encoder, listing, schedule)
	})
}
