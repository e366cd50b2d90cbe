package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/Simoh8/pamoja-vote/internal/app/models"
	"github.com/Simoh8/pamoja-vote/internal/app/models/dto"
	"github.com/Simoh8/pamoja-vote/internal/pkg/apperrors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

type squadFixture struct {
	db  *memDB
	tx  *fakeTx
	svc SquadService
}

func newSquadFixture(singleMembership bool) *squadFixture {
	db := newMemDB()
	tx := &fakeTx{}
	svc := NewSquadService(
		fakeSquads{db}, fakeMembers{db}, fakeCenters{db}, tx,
		newAuthorization(db),
		SquadOptions{SingleMembership: singleMembership},
		zerolog.Nop(),
	)
	return &squadFixture{db: db, tx: tx, svc: svc}
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

func centerRefJSON(t *testing.T, raw string) dto.CenterRef {
	t.Helper()
	var ref dto.CenterRef
	if err := json.Unmarshal([]byte(raw), &ref); err != nil {
		t.Fatalf("decode center ref %s: %v", raw, err)
	}
	return ref
}

func (f *squadFixture) addCenter(name, county string) *models.Center {
	c := &models.Center{Name: name, County: county, Address: name + " road"}
	_ = fakeCenters{f.db}.Create(context.Background(), c)
	return c
}

func TestCreateSquadEnrollsOwnerAsLeader(t *testing.T) {
	f := newSquadFixture(true)
	ctx := context.Background()
	owner := f.db.addUser("+254700000001")

	resp, err := f.svc.CreateSquad(ctx, owner.ID, &dto.CreateSquadRequest{
		Name:                  "Westlands Youth",
		County:                "Nairobi",
		MaxMembers:            intPtr(5),
		VoterRegistrationDate: "2025-08-01",
	})
	if err != nil {
		t.Fatalf("CreateSquad: %v", err)
	}
	if !resp.IsPublic {
		t.Error("squads are public by default")
	}
	if resp.MemberCount != 1 || resp.Owner != owner.ID.String() {
		t.Errorf("unexpected squad %+v", resp)
	}

	mine, err := f.svc.MySquads(ctx, owner.ID)
	if err != nil || len(mine) != 1 {
		t.Fatalf("MySquads = %v, %v", mine, err)
	}
	ms, _ := f.svc.MyMemberships(ctx, owner.ID)
	if len(ms) != 1 || ms[0].Role != string(models.RoleLeader) {
		t.Errorf("owner membership = %+v", ms)
	}
	if f.tx.calls != 1 {
		t.Errorf("creation should run in one transaction, got %d", f.tx.calls)
	}
}

func TestJoinUpdatesComputedFields(t *testing.T) {
	f := newSquadFixture(true)
	ctx := context.Background()
	owner := f.db.addUser("+254700000001")
	joiner := f.db.addUser("+254700000002")

	squad, err := f.svc.CreateSquad(ctx, owner.ID, &dto.CreateSquadRequest{
		Name: "Kibra Voters", County: "Nairobi", MaxMembers: intPtr(5), VoterRegistrationDate: "2025-08-01",
	})
	if err != nil {
		t.Fatal(err)
	}
	squadID := uuid.MustParse(squad.ID)

	m, err := f.svc.JoinSquad(ctx, joiner.ID, squadID)
	if err != nil {
		t.Fatalf("JoinSquad: %v", err)
	}
	if m.Role != string(models.RoleMember) {
		t.Errorf("joiner role = %s", m.Role)
	}

	got, err := f.svc.GetSquad(ctx, joiner.ID, squadID)
	if err != nil {
		t.Fatal(err)
	}
	if got.MemberCount != 2 {
		t.Errorf("member_count = %d, want 2", got.MemberCount)
	}
	if got.RemainingSlots == nil || *got.RemainingSlots != 3 {
		t.Errorf("remaining_slots = %v, want 3", got.RemainingSlots)
	}

	membershipID := uuid.MustParse(m.ID)
	if _, err := f.svc.UpdateRegistrationStatus(ctx, joiner.ID, membershipID, true); err != nil {
		t.Fatal(err)
	}
	got, _ = f.svc.GetSquad(ctx, joiner.ID, squadID)
	if got.RegistrationProgress != 50 {
		t.Errorf("registration_progress = %v, want 50", got.RegistrationProgress)
	}
}

func TestCreateSquadRejectsJoinableDuplicate(t *testing.T) {
	f := newSquadFixture(true)
	ctx := context.Background()
	center := f.addCenter("Uhuru Primary", "Nairobi")
	ref := centerRefJSON(t, `"`+center.ID.String()+`"`)

	first, err := f.svc.CreateSquad(ctx, f.db.addUser("+254700000001").ID, &dto.CreateSquadRequest{
		Name: "X", County: "Nairobi", MaxMembers: intPtr(5), VoterRegistrationDate: "2025-08-01", RegistrationCenter: ref,
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.svc.CreateSquad(ctx, f.db.addUser("+254700000002").ID, &dto.CreateSquadRequest{
		Name: "Y", County: "Nairobi", VoterRegistrationDate: "2025-08-01", RegistrationCenter: ref,
	})
	if !errors.Is(err, apperrors.ErrDuplicateSquad) {
		t.Fatalf("expected duplicate squad error, got %v", err)
	}
	want := `A squad "X" already exists for Uhuru Primary on 2025-08-01 with available slots. Please join "X" instead of creating a new squad.`
	if err.Error() != want {
		t.Errorf("message = %q", err.Error())
	}
	ce, ok := apperrors.AsCustom(err)
	if !ok || ce.Details["squad_id"] != first.ID {
		t.Errorf("details should carry the conflicting squad id, got %+v", ce)
	}

	// a different date is not a duplicate
	if _, err := f.svc.CreateSquad(ctx, f.db.addUser("+254700000003").ID, &dto.CreateSquadRequest{
		Name: "Z", County: "Nairobi", VoterRegistrationDate: "2025-08-02", RegistrationCenter: ref,
	}); err != nil {
		t.Errorf("other date should be allowed: %v", err)
	}
}

func TestCreateSquadAllowsDuplicateWhenExistingIsFull(t *testing.T) {
	f := newSquadFixture(true)
	ctx := context.Background()
	center := f.addCenter("Uhuru Primary", "Nairobi")
	ref := centerRefJSON(t, `"`+center.ID.String()+`"`)

	if _, err := f.svc.CreateSquad(ctx, f.db.addUser("+254700000001").ID, &dto.CreateSquadRequest{
		Name: "Full", County: "Nairobi", MaxMembers: intPtr(1), VoterRegistrationDate: "2025-08-01", RegistrationCenter: ref,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.CreateSquad(ctx, f.db.addUser("+254700000002").ID, &dto.CreateSquadRequest{
		Name: "Second", County: "Nairobi", VoterRegistrationDate: "2025-08-01", RegistrationCenter: ref,
	}); err != nil {
		t.Errorf("full squad should not block creation: %v", err)
	}
}

func TestInlineCenterIsCreatedOnceAndReused(t *testing.T) {
	f := newSquadFixture(true)
	ctx := context.Background()

	first, err := f.svc.CreateSquad(ctx, f.db.addUser("+254700000001").ID, &dto.CreateSquadRequest{
		Name: "A", County: "Nairobi", VoterRegistrationDate: "2025-08-01",
		RegistrationCenter: centerRefJSON(t, `{"name":"Uhuru Primary"}`),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(f.db.centers) != 1 {
		t.Fatalf("expected one center, got %d", len(f.db.centers))
	}
	for _, c := range f.db.centers {
		if c.Ward != "Unknown" || c.Address != "Uhuru Primary, Unknown" || c.County != "Nairobi" || c.PollingStationName != "Uhuru Primary" {
			t.Errorf("inline center defaults not applied: %+v", c)
		}
	}

	second, err := f.svc.CreateSquad(ctx, f.db.addUser("+254700000002").ID, &dto.CreateSquadRequest{
		Name: "B", County: "Nairobi", VoterRegistrationDate: "2025-09-01",
		RegistrationCenter: centerRefJSON(t, `{"name":"uhuru primary","county":"NAIROBI"}`),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(f.db.centers) != 1 {
		t.Errorf("center should be reused, have %d", len(f.db.centers))
	}
	if *first.RegistrationCenter != *second.RegistrationCenter {
		t.Error("both squads should reference the same center")
	}
}

func TestCreateSquadRejectsBadCenterReference(t *testing.T) {
	f := newSquadFixture(true)
	ctx := context.Background()
	owner := f.db.addUser("+254700000001")

	for _, raw := range []string{`"center-1"`, `"` + uuid.NewString() + `"`, `{"county":"Nairobi"}`} {
		_, err := f.svc.CreateSquad(ctx, owner.ID, &dto.CreateSquadRequest{
			Name: "A", County: "Nairobi", VoterRegistrationDate: "2025-08-01",
			RegistrationCenter: centerRefJSON(t, raw),
		})
		if !errors.Is(err, apperrors.ErrValidationFailed) {
			t.Errorf("%s: expected validation error, got %v", raw, err)
		}
	}
	if len(f.db.squads) != 0 {
		t.Error("no squad should be stored")
	}
}

func TestCreateSquadSerializationFailureIsConflict(t *testing.T) {
	f := newSquadFixture(true)
	f.tx.err = &pgconn.PgError{Code: "40001"}

	_, err := f.svc.CreateSquad(context.Background(), f.db.addUser("+254700000001").ID, &dto.CreateSquadRequest{
		Name: "A", County: "Nairobi", VoterRegistrationDate: "2025-08-01",
	})
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestJoinSquadRules(t *testing.T) {
	f := newSquadFixture(true)
	ctx := context.Background()
	owner := f.db.addUser("+254700000001")
	user := f.db.addUser("+254700000002")

	public, _ := f.svc.CreateSquad(ctx, owner.ID, &dto.CreateSquadRequest{Name: "Open", County: "Nairobi", VoterRegistrationDate: "2025-08-01"})
	private, _ := f.svc.CreateSquad(ctx, owner.ID, &dto.CreateSquadRequest{Name: "Closed", County: "Nairobi", IsPublic: boolPtr(false), VoterRegistrationDate: "2025-08-01"})
	other, _ := f.svc.CreateSquad(ctx, owner.ID, &dto.CreateSquadRequest{Name: "Other", County: "Mombasa", VoterRegistrationDate: "2025-08-01"})

	if _, err := f.svc.JoinSquad(ctx, user.ID, uuid.New()); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("missing squad: got %v", err)
	}
	if _, err := f.svc.JoinSquad(ctx, user.ID, uuid.MustParse(private.ID)); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("private squad: got %v", err)
	}
	if _, err := f.svc.JoinSquad(ctx, user.ID, uuid.MustParse(public.ID)); err != nil {
		t.Fatalf("join public: %v", err)
	}
	if _, err := f.svc.JoinSquad(ctx, user.ID, uuid.MustParse(public.ID)); !errors.Is(err, apperrors.ErrAlreadyMember) {
		t.Errorf("second join: got %v", err)
	}

	_, err := f.svc.JoinSquad(ctx, user.ID, uuid.MustParse(other.ID))
	if !errors.Is(err, apperrors.ErrValidationFailed) || !strings.Contains(err.Error(), "Open") {
		t.Errorf("single membership policy should name the held squad, got %v", err)
	}

	// owners may hold memberships in their own squads
	if _, err := f.svc.JoinSquad(ctx, owner.ID, uuid.MustParse(public.ID)); !errors.Is(err, apperrors.ErrAlreadyMember) {
		t.Errorf("owner is already a leader member, got %v", err)
	}
}

func TestJoinSquadWithoutSingleMembership(t *testing.T) {
	f := newSquadFixture(false)
	ctx := context.Background()
	owner := f.db.addUser("+254700000001")
	user := f.db.addUser("+254700000002")

	a, _ := f.svc.CreateSquad(ctx, owner.ID, &dto.CreateSquadRequest{Name: "A", County: "Nairobi", VoterRegistrationDate: "2025-08-01"})
	b, _ := f.svc.CreateSquad(ctx, owner.ID, &dto.CreateSquadRequest{Name: "B", County: "Nairobi", VoterRegistrationDate: "2025-08-01"})

	for _, id := range []string{a.ID, b.ID} {
		if _, err := f.svc.JoinSquad(ctx, user.ID, uuid.MustParse(id)); err != nil {
			t.Errorf("join %s: %v", id, err)
		}
	}
}

func TestLeaveSquad(t *testing.T) {
	f := newSquadFixture(true)
	ctx := context.Background()
	owner := f.db.addUser("+254700000001")
	user := f.db.addUser("+254700000002")
	squad, _ := f.svc.CreateSquad(ctx, owner.ID, &dto.CreateSquadRequest{Name: "A", County: "Nairobi", VoterRegistrationDate: "2025-08-01"})
	squadID := uuid.MustParse(squad.ID)

	if err := f.svc.LeaveSquad(ctx, user.ID, squadID); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("non member leave: got %v", err)
	}
	if err := f.svc.LeaveSquad(ctx, owner.ID, squadID); !errors.Is(err, apperrors.ErrSoleLeader) {
		t.Errorf("sole leader leave: got %v", err)
	}

	m, _ := f.svc.JoinSquad(ctx, user.ID, squadID)
	if _, err := f.svc.ChangeRole(ctx, owner.ID, uuid.MustParse(m.ID), "leader"); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.LeaveSquad(ctx, owner.ID, squadID); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("owner leave with a co-leader: got %v", err)
	}
	if _, err := f.svc.MyMembership(ctx, owner.ID, squadID); err != nil {
		t.Errorf("owner membership should survive: %v", err)
	}

	// a co-leader who is not the owner may leave
	if err := f.svc.LeaveSquad(ctx, user.ID, squadID); err != nil {
		t.Errorf("co-leader leave: %v", err)
	}
	got, _ := f.svc.GetSquad(ctx, owner.ID, squadID)
	if got.MemberCount != 1 {
		t.Errorf("member_count = %d after leave", got.MemberCount)
	}
}

func TestChangeRolePermissions(t *testing.T) {
	f := newSquadFixture(true)
	ctx := context.Background()
	owner := f.db.addUser("+254700000001")
	alice := f.db.addUser("+254700000002")
	bob := f.db.addUser("+254700000003")
	squad, _ := f.svc.CreateSquad(ctx, owner.ID, &dto.CreateSquadRequest{Name: "A", County: "Nairobi", VoterRegistrationDate: "2025-08-01"})
	squadID := uuid.MustParse(squad.ID)

	am, _ := f.svc.JoinSquad(ctx, alice.ID, squadID)
	bm, _ := f.svc.JoinSquad(ctx, bob.ID, squadID)

	if _, err := f.svc.ChangeRole(ctx, alice.ID, uuid.MustParse(bm.ID), "leader"); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("member changing roles: got %v", err)
	}
	if _, err := f.svc.ChangeRole(ctx, owner.ID, uuid.MustParse(am.ID), "captain"); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("invalid role: got %v", err)
	}
	if _, err := f.svc.ChangeRole(ctx, owner.ID, uuid.MustParse(am.ID), "leader"); err != nil {
		t.Fatal(err)
	}
	// a leader may promote others too
	resp, err := f.svc.ChangeRole(ctx, alice.ID, uuid.MustParse(bm.ID), "leader")
	if err != nil || resp.Role != "leader" {
		t.Errorf("leader promoting member: %v, %+v", err, resp)
	}
	if _, err := f.svc.ChangeRole(ctx, owner.ID, uuid.New(), "leader"); !errors.Is(err, apperrors.ErrMembershipNotFound) {
		t.Errorf("unknown membership: got %v", err)
	}

	om, err := f.svc.MyMembership(ctx, owner.ID, squadID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.ChangeRole(ctx, alice.ID, uuid.MustParse(om.ID), "member"); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("leader demoting owner: got %v", err)
	}
	if _, err := f.svc.ChangeRole(ctx, owner.ID, uuid.MustParse(om.ID), "member"); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("owner demoting self: got %v", err)
	}
	if err := f.svc.LeaveSquad(ctx, owner.ID, squadID); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("owner leave: got %v", err)
	}
	if still, _ := f.svc.MyMembership(ctx, owner.ID, squadID); still == nil || still.Role != "leader" {
		t.Errorf("owner membership afterwards = %+v", still)
	}
}

func TestUpdateRegistrationStatusOnlyOwnMembership(t *testing.T) {
	f := newSquadFixture(true)
	ctx := context.Background()
	owner := f.db.addUser("+254700000001")
	user := f.db.addUser("+254700000002")
	squad, _ := f.svc.CreateSquad(ctx, owner.ID, &dto.CreateSquadRequest{Name: "A", County: "Nairobi", VoterRegistrationDate: "2025-08-01"})
	m, _ := f.svc.JoinSquad(ctx, user.ID, uuid.MustParse(squad.ID))

	if _, err := f.svc.UpdateRegistrationStatus(ctx, owner.ID, uuid.MustParse(m.ID), true); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("owner updating someone else's status: got %v", err)
	}
}

func TestSquadVisibilityAndOwnerOnlyWrites(t *testing.T) {
	f := newSquadFixture(true)
	ctx := context.Background()
	owner := f.db.addUser("+254700000001")
	stranger := f.db.addUser("+254700000002")
	private, _ := f.svc.CreateSquad(ctx, owner.ID, &dto.CreateSquadRequest{Name: "Hidden", County: "Nairobi", IsPublic: boolPtr(false), VoterRegistrationDate: "2025-08-01"})
	id := uuid.MustParse(private.ID)

	if _, err := f.svc.GetSquad(ctx, stranger.ID, id); !errors.Is(err, apperrors.ErrSquadNotFound) {
		t.Errorf("private squad should be hidden, got %v", err)
	}
	list, _ := f.svc.ListSquads(ctx, stranger.ID, dto.SquadFilter{})
	if len(list.Squads) != 0 {
		t.Errorf("stranger sees %d squads", len(list.Squads))
	}
	public, _ := f.svc.ListPublicSquads(ctx, dto.SquadFilter{})
	if len(public.Squads) != 0 {
		t.Errorf("public listing leaked a private squad")
	}

	name := "Renamed"
	updated, err := f.svc.UpdateSquad(ctx, owner.ID, id, &dto.UpdateSquadRequest{Name: &name, IsPublic: boolPtr(true)})
	if err != nil || updated.Name != "Renamed" || !updated.IsPublic {
		t.Fatalf("UpdateSquad = %+v, %v", updated, err)
	}
	if _, err := f.svc.UpdateSquad(ctx, stranger.ID, id, &dto.UpdateSquadRequest{Name: &name}); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("stranger update: got %v", err)
	}
	if err := f.svc.DeleteSquad(ctx, stranger.ID, id); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("stranger delete: got %v", err)
	}
	if err := f.svc.DeleteSquad(ctx, owner.ID, id); err != nil {
		t.Fatal(err)
	}
	if len(f.db.members) != 0 {
		t.Error("memberships should be removed with the squad")
	}
}

func TestLeaderboardOrdersByMemberCount(t *testing.T) {
	f := newSquadFixture(false)
	ctx := context.Background()
	owner := f.db.addUser("+254700000001")
	_, _ = f.svc.CreateSquad(ctx, owner.ID, &dto.CreateSquadRequest{Name: "Small", County: "Nairobi", VoterRegistrationDate: "2025-08-01"})
	big, _ := f.svc.CreateSquad(ctx, owner.ID, &dto.CreateSquadRequest{Name: "Big", County: "Nairobi", VoterRegistrationDate: "2025-08-01"})
	_, _ = f.svc.CreateSquad(ctx, owner.ID, &dto.CreateSquadRequest{Name: "Coast", County: "Mombasa", VoterRegistrationDate: "2025-08-01"})

	for _, phone := range []string{"+254700000010", "+254700000011"} {
		if _, err := f.svc.JoinSquad(ctx, f.db.addUser(phone).ID, uuid.MustParse(big.ID)); err != nil {
			t.Fatal(err)
		}
	}

	board, err := f.svc.Leaderboard(ctx, "nairobi", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(board) != 2 || board[0].SquadName != "Big" || board[0].MemberCount != 3 {
		t.Errorf("unexpected leaderboard %+v", board)
	}
}
