package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Simoh8/pamoja-vote/internal/app/models"
	"github.com/Simoh8/pamoja-vote/internal/app/models/dto"
	"github.com/Simoh8/pamoja-vote/internal/pkg/apperrors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type eventFixture struct {
	*squadFixture
	events EventService
	owner  *models.User
	member *models.User
	squad  uuid.UUID
	center *models.Center
}

func newEventFixture(t *testing.T) *eventFixture {
	t.Helper()
	sf := newSquadFixture(true)
	ctx := context.Background()

	owner := sf.db.addUser("+254700000001")
	member := sf.db.addUser("+254700000002")
	squad, err := sf.svc.CreateSquad(ctx, owner.ID, &dto.CreateSquadRequest{Name: "Kibra Voters", County: "Nairobi", VoterRegistrationDate: "2025-08-01"})
	if err != nil {
		t.Fatal(err)
	}
	squadID := uuid.MustParse(squad.ID)
	if _, err := sf.svc.JoinSquad(ctx, member.ID, squadID); err != nil {
		t.Fatal(err)
	}

	svc := NewEventService(fakeEvents{sf.db}, fakeCenters{sf.db}, newAuthorization(sf.db), zerolog.Nop())
	svc.(*eventServiceImpl).now = func() time.Time { return time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC) }

	return &eventFixture{
		squadFixture: sf,
		events:       svc,
		owner:        owner,
		member:       member,
		squad:        squadID,
		center:       sf.addCenter("Uhuru Primary", "Nairobi"),
	}
}

func (f *eventFixture) create(t *testing.T, at time.Time) *dto.EventResponse {
	t.Helper()
	ev, err := f.events.CreateEvent(context.Background(), f.owner.ID, &dto.CreateEventRequest{
		SquadID: f.squad, CenterID: f.center.ID, Datetime: at, MeetingPoint: "Main gate",
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	return ev
}

func TestCreateEventRequiresLeaderAndCenter(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	at := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)

	_, err := f.events.CreateEvent(ctx, f.member.ID, &dto.CreateEventRequest{SquadID: f.squad, CenterID: f.center.ID, Datetime: at})
	if !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("plain member creating event: got %v", err)
	}
	_, err = f.events.CreateEvent(ctx, f.owner.ID, &dto.CreateEventRequest{SquadID: f.squad, CenterID: uuid.New(), Datetime: at})
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("unknown center: got %v", err)
	}

	ev := f.create(t, at)
	if ev.CenterName != "Uhuru Primary" || ev.SquadName != "Kibra Voters" {
		t.Errorf("event names not joined: %+v", ev)
	}
}

func TestEventsVisibleOnlyToMembers(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	ev := f.create(t, time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC))
	id := uuid.MustParse(ev.ID)
	stranger := f.db.addUser("+254700000099")

	if _, err := f.events.GetEvent(ctx, stranger.ID, id); !errors.Is(err, apperrors.ErrEventNotFound) {
		t.Errorf("stranger get: got %v", err)
	}
	if _, err := f.events.RSVP(ctx, stranger.ID, id, nil); !errors.Is(err, apperrors.ErrEventNotFound) {
		t.Errorf("stranger rsvp: got %v", err)
	}
	list, _ := f.events.ListEvents(ctx, stranger.ID, 1, 20)
	if len(list.Events) != 0 {
		t.Errorf("stranger sees %d events", len(list.Events))
	}
	if _, err := f.events.SquadEvents(ctx, stranger.ID, f.squad, 1, 20); !errors.Is(err, apperrors.ErrSquadNotFound) {
		t.Errorf("stranger squad events: got %v", err)
	}

	got, err := f.events.SquadEvents(ctx, f.member.ID, f.squad, 1, 20)
	if err != nil || len(got.Events) != 1 {
		t.Errorf("member squad events = %+v, %v", got, err)
	}
}

func TestUpcomingEventsSkipsPast(t *testing.T) {
	f := newEventFixture(t)
	f.create(t, time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC))
	future := f.create(t, time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC))

	got, err := f.events.UpcomingEvents(context.Background(), f.member.ID, 1, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Events) != 1 || got.Events[0].ID != future.ID {
		t.Errorf("upcoming = %+v", got.Events)
	}
}

func TestRSVPIsIdempotentPerUser(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	ev := f.create(t, time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC))
	id := uuid.MustParse(ev.ID)

	first, err := f.events.RSVP(ctx, f.member.ID, id, nil)
	if err != nil {
		t.Fatal(err)
	}
	if first.Status != "maybe" {
		t.Errorf("default status = %s, want maybe", first.Status)
	}

	yes := "yes"
	second, err := f.events.RSVP(ctx, f.member.ID, id, &yes)
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID || second.Status != "yes" {
		t.Errorf("rsvp should update in place: %+v", second)
	}

	third, _ := f.events.RSVP(ctx, f.member.ID, id, nil)
	if third.Status != "yes" {
		t.Errorf("omitted status should keep yes, got %s", third.Status)
	}
	if !third.RespondedAt.After(second.RespondedAt) {
		t.Error("responded_at should be refreshed")
	}

	bad := "perhaps"
	if _, err := f.events.RSVP(ctx, f.member.ID, id, &bad); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("invalid status: got %v", err)
	}

	rsvps, _ := f.events.ListRSVPs(ctx, f.owner.ID, id)
	if len(rsvps) != 1 {
		t.Errorf("expected one rsvp row, got %d", len(rsvps))
	}
	mine, _ := f.events.MyRSVPs(ctx, f.member.ID)
	if len(mine) != 1 {
		t.Errorf("MyRSVPs = %d", len(mine))
	}
}

func TestUpdateAndDeleteEvent(t *testing.T) {
	f := newEventFixture(t)
	ctx := context.Background()
	ev := f.create(t, time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC))
	id := uuid.MustParse(ev.ID)

	note := "Bring your ID"
	if _, err := f.events.UpdateEvent(ctx, f.member.ID, id, &dto.UpdateEventRequest{Note: &note}); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("member update: got %v", err)
	}
	updated, err := f.events.UpdateEvent(ctx, f.owner.ID, id, &dto.UpdateEventRequest{Note: &note})
	if err != nil || updated.Note != note {
		t.Fatalf("UpdateEvent = %+v, %v", updated, err)
	}

	if err := f.events.DeleteEvent(ctx, f.member.ID, id); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("member delete: got %v", err)
	}
	if err := f.events.DeleteEvent(ctx, f.owner.ID, id); err != nil {
		t.Fatal(err)
	}
	if _, err := f.events.GetEvent(ctx, f.owner.ID, id); !errors.Is(err, apperrors.ErrEventNotFound) {
		t.Errorf("deleted event: got %v", err)
	}
}
