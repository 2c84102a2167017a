// Package fixtures seeds a fresh store with the demo marketplace: hosts,
// guests, published listings, past stays and a few inbox threads.
package fixtures

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"rara/internal/app/uow"
	domainbooking "rara/internal/domain/booking"
	domainmessaging "rara/internal/domain/messaging"
	"rara/internal/domain/pricing"
	domainproperty "rara/internal/domain/property"
	domainreviews "rara/internal/domain/reviews"
	"rara/internal/domain/shared/daterange"
	"rara/internal/domain/shared/money"
	domainuser "rara/internal/domain/user"
)

// DevPassword is the password of every seeded account.
const DevPassword = "rara-demo-pass"

//go:embed seed.json
var seedJSON []byte

type PasswordHasher interface {
	Hash(password string) (string, error)
}

type Loader struct {
	UoWFactory    uow.UoWFactory
	Conversations domainmessaging.Repository
	Passwords     PasswordHasher
	Clock         func() time.Time
	Logger        *slog.Logger
}

type seedFile struct {
	Users         []seedUser         `json:"users"`
	Properties    []seedProperty     `json:"properties"`
	Bookings      []seedBooking      `json:"bookings"`
	Conversations []seedConversation `json:"conversations"`
}

type seedUser struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Avatar    string   `json:"avatar"`
	Roles     []string `json:"roles"`
	Superhost bool     `json:"superhost"`
	JoinYear  int      `json:"joinYear"`
}

type seedProperty struct {
	ID            string                `json:"id"`
	Title         string                `json:"title"`
	Type          string                `json:"type"`
	Location      string                `json:"location"`
	Coords        domainproperty.Coords `json:"coords"`
	PricePerNight int64                 `json:"pricePerNight"`
	Rating        float64               `json:"rating"`
	ReviewsCount  int                   `json:"reviewsCount"`
	MaxGuests     int                   `json:"maxGuests"`
	Bedrooms      int                   `json:"bedrooms"`
	Beds          int                   `json:"beds"`
	Bathrooms     int                   `json:"bathrooms"`
	Description   string                `json:"description"`
	Host          seedHost              `json:"host"`
	Amenities     []string              `json:"amenities"`
	Images        []string              `json:"images"`
	Rules         []string              `json:"rules"`
	Reviews       []seedReview          `json:"reviews"`
}

type seedHost struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
	JoinYear    int    `json:"joinYear"`
	IsSuperhost bool   `json:"isSuperhost"`
}

type seedReview struct {
	ID        string               `json:"id"`
	BookingID string               `json:"bookingId"`
	Author    domainreviews.Author `json:"author"`
	Date      string               `json:"date"`
	Rating    float64              `json:"rating"`
	Comment   string               `json:"comment"`
}

type seedBooking struct {
	ID         string `json:"id"`
	PropertyID string `json:"propertyId"`
	GuestID    string `json:"guestId"`
	From       string `json:"from"`
	To         string `json:"to"`
	Status     string `json:"status"`
}

type seedConversation struct {
	ID       string        `json:"id"`
	UserIDs  []string      `json:"userIds"`
	Subject  string        `json:"subject"`
	Messages []seedMessage `json:"messages"`
}

type seedMessage struct {
	From       string `json:"from"`
	Type       string `json:"type"`
	Text       string `json:"text"`
	MinutesAgo int    `json:"minutesAgo"`
}

// Load writes the demo data unless the first listing already exists.
func (l Loader) Load(ctx context.Context) error {
	var seed seedFile
	if err := json.Unmarshal(seedJSON, &seed); err != nil {
		return fmt.Errorf("fixtures: decode: %w", err)
	}
	hash, err := l.Passwords.Hash(DevPassword)
	if err != nil {
		return fmt.Errorf("fixtures: hash password: %w", err)
	}
	now := l.now()

	names := make(map[string]string, len(seed.Users))
	seeded := false
	err = uow.Run(ctx, l.UoWFactory, uow.TxOptions{}, func(ctx context.Context, unit uow.UnitOfWork) error {
		if len(seed.Properties) > 0 {
			_, err := unit.Properties().ByID(ctx, domainproperty.ID(seed.Properties[0].ID))
			if err == nil {
				return nil
			}
			if !errors.Is(err, domainproperty.ErrNotFound) {
				return err
			}
		}
		for _, su := range seed.Users {
			u, err := buildUser(su, hash)
			if err != nil {
				return fmt.Errorf("user %s: %w", su.ID, err)
			}
			names[su.ID] = u.Name()
			if err := unit.Users().Save(ctx, u); err != nil {
				return fmt.Errorf("user %s: %w", su.ID, err)
			}
		}
		titles := make(map[string]*domainproperty.Property, len(seed.Properties))
		// Stored in reverse so the first fixture heads the listing order.
		for i := len(seed.Properties) - 1; i >= 0; i-- {
			p, err := buildProperty(seed.Properties[i], now)
			if err != nil {
				return fmt.Errorf("property %s: %w", seed.Properties[i].ID, err)
			}
			titles[string(p.ID)] = p
			if err := unit.Properties().Add(ctx, p); err != nil {
				return fmt.Errorf("property %s: %w", p.ID, err)
			}
		}
		for _, sb := range seed.Bookings {
			p, ok := titles[sb.PropertyID]
			if !ok {
				return fmt.Errorf("booking %s: unknown property %s", sb.ID, sb.PropertyID)
			}
			b, err := buildBooking(sb, p, names[sb.GuestID])
			if err != nil {
				return fmt.Errorf("booking %s: %w", sb.ID, err)
			}
			if err := unit.Bookings().Save(ctx, b); err != nil {
				return fmt.Errorf("booking %s: %w", sb.ID, err)
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		return err
	}
	if !seeded {
		l.log("fixtures already present, skipping")
		return nil
	}
	if l.Conversations != nil {
		for _, sc := range seed.Conversations {
			if err := l.seedConversation(ctx, sc, names, now); err != nil {
				return fmt.Errorf("conversation %s: %w", sc.ID, err)
			}
		}
	}
	l.log("fixtures loaded",
		"users", len(seed.Users),
		"properties", len(seed.Properties),
		"bookings", len(seed.Bookings),
		"conversations", len(seed.Conversations),
	)
	return nil
}

func (l Loader) seedConversation(ctx context.Context, sc seedConversation, names map[string]string, now time.Time) error {
	if len(sc.Messages) == 0 {
		return nil
	}
	if _, err := l.Conversations.ByID(ctx, sc.ID); err == nil {
		return nil
	} else if !errors.Is(err, domainmessaging.ErrNotFound) {
		return err
	}
	messages := make([]domainmessaging.Message, 0, len(sc.Messages))
	for i, sm := range sc.Messages {
		sender := domainmessaging.Sender{ID: sm.From, Name: names[sm.From], Type: domainmessaging.SenderType(sm.Type)}
		if sm.From == domainmessaging.AdminSender().ID {
			sender = domainmessaging.AdminSender()
		}
		messages = append(messages, domainmessaging.Message{
			ID:     fmt.Sprintf("%s-m%d", sc.ID, i+1),
			From:   sender,
			Text:   sm.Text,
			SentAt: now.Add(-time.Duration(sm.MinutesAgo) * time.Minute),
		})
	}
	conv, err := domainmessaging.Start(domainmessaging.StartParams{
		ID:      sc.ID,
		UserIDs: sc.UserIDs,
		Subject: sc.Subject,
		First:   messages[0],
		Now:     messages[0].SentAt,
	})
	if err != nil {
		return err
	}
	for _, msg := range messages[1:] {
		if _, err := conv.Append(msg); err != nil {
			return err
		}
	}
	return l.Conversations.Create(ctx, conv)
}

func buildUser(su seedUser, hash string) (*domainuser.User, error) {
	roles := make([]domainuser.Role, 0, len(su.Roles))
	for _, r := range su.Roles {
		roles = append(roles, domainuser.Role(r))
	}
	u, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(su.ID),
		Email:        su.Email,
		PasswordHash: hash,
		FirstName:    su.FirstName,
		LastName:     su.LastName,
		Avatar:       su.Avatar,
		Roles:        roles,
		CreatedAt:    time.Date(su.JoinYear, time.January, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		return nil, err
	}
	u.Superhost = su.Superhost
	return u, nil
}

func buildProperty(sp seedProperty, now time.Time) (*domainproperty.Property, error) {
	p, err := domainproperty.New(domainproperty.CreateParams{
		ID:            domainproperty.ID(sp.ID),
		Title:         sp.Title,
		Type:          sp.Type,
		Location:      sp.Location,
		Coords:        sp.Coords,
		PricePerNight: money.Must(sp.PricePerNight, money.DefaultCurrency),
		MaxGuests:     sp.MaxGuests,
		Bedrooms:      sp.Bedrooms,
		Beds:          sp.Beds,
		Bathrooms:     sp.Bathrooms,
		Description:   sp.Description,
		Host: domainproperty.Host{
			ID:          sp.Host.ID,
			Name:        sp.Host.Name,
			Avatar:      sp.Host.Avatar,
			JoinYear:    sp.Host.JoinYear,
			IsSuperhost: sp.Host.IsSuperhost,
		},
		Amenities: sp.Amenities,
		Images:    sp.Images,
		Rules:     sp.Rules,
		Now:       now,
	})
	if err != nil {
		return nil, err
	}
	p.ClearEvents()
	p.Status = domainproperty.StatusPublished
	// Imported ratings are kept as published, including fractional averages.
	p.Rating = sp.Rating
	p.ReviewsCount = sp.ReviewsCount
	for _, sr := range sp.Reviews {
		created, err := time.Parse("January 2006", sr.Date)
		if err != nil {
			created = now
		}
		p.Reviews = append(p.Reviews, domainreviews.Review{
			ID:        domainreviews.ReviewID(sr.ID),
			BookingID: sr.BookingID,
			Author:    sr.Author,
			Rating:    sr.Rating,
			Comment:   sr.Comment,
			CreatedAt: created.UTC(),
		})
	}
	return p, nil
}

func buildBooking(sb seedBooking, p *domainproperty.Property, guestName string) (*domainbooking.Booking, error) {
	stay, err := daterange.Parse(sb.From, sb.To)
	if err != nil {
		return nil, err
	}
	status, err := domainbooking.ParseStatus(sb.Status)
	if err != nil {
		return nil, err
	}
	price, err := pricing.Quote(p.PricePerNight, stay)
	if err != nil {
		return nil, err
	}
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:            domainbooking.ID(sb.ID),
		PropertyID:    p.ID,
		PropertyTitle: p.Title,
		Guest:         domainbooking.Party{ID: sb.GuestID, Name: guestName},
		Host:          domainbooking.Party{ID: p.Host.ID, Name: p.Host.Name},
		Range:         stay,
		Price:         price,
		CreatedAt:     stay.CheckIn.AddDate(0, 0, -14),
	})
	if err != nil {
		return nil, err
	}
	b.ClearEvents()
	b.Status = status
	return b, nil
}

func (l Loader) now() time.Time {
	if l.Clock != nil {
		return l.Clock().UTC()
	}
	return time.Now().UTC()
}

func (l Loader) log(msg string, args ...any) {
	if l.Logger != nil {
		l.Logger.Info(msg, args...)
	}
}
