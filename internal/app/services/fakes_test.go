package services

import (
	"context"
	"sort"
	"strings"
	"time"

	authz "github.com/Simoh8/pamoja-vote/internal/app/auth"
	"github.com/Simoh8/pamoja-vote/internal/app/models"
	"github.com/Simoh8/pamoja-vote/internal/app/models/dto"
	"github.com/Simoh8/pamoja-vote/internal/app/repositories"
	"github.com/Simoh8/pamoja-vote/internal/pkg/apperrors"
	"github.com/google/uuid"
)

// memDB backs every fake store so joins and aggregates line up across them
type memDB struct {
	users   map[uuid.UUID]*models.User
	tokens  map[string]*models.RefreshToken
	centers map[uuid.UUID]*models.Center
	squads  map[uuid.UUID]*models.Squad
	members map[uuid.UUID]*models.Membership
	events  map[uuid.UUID]*models.Event
	rsvps   map[uuid.UUID]*models.RSVP
	invites []*models.Invite
	clock   time.Time
}

func newMemDB() *memDB {
	return &memDB{
		users:   map[uuid.UUID]*models.User{},
		tokens:  map[string]*models.RefreshToken{},
		centers: map[uuid.UUID]*models.Center{},
		squads:  map[uuid.UUID]*models.Squad{},
		members: map[uuid.UUID]*models.Membership{},
		events:  map[uuid.UUID]*models.Event{},
		rsvps:   map[uuid.UUID]*models.RSVP{},
		clock:   time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC),
	}
}

// tick returns strictly increasing timestamps so ordering is deterministic
func (m *memDB) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memDB) addUser(phone string) *models.User {
	u := &models.User{ID: uuid.New(), PhoneNumber: phone, Email: phone + "@example.com", CreatedAt: m.tick()}
	m.users[u.ID] = u
	return u
}

// ---- users ----

type fakeUsers struct{ *memDB }

func (f fakeUsers) Create(_ context.Context, u *models.User) error {
	for _, existing := range f.users {
		if existing.PhoneNumber == u.PhoneNumber {
			return apperrors.ErrPhoneAlreadyExists
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = f.tick()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f fakeUsers) GetByPhone(_ context.Context, phone string) (*models.User, error) {
	for _, u := range f.users {
		if u.PhoneNumber == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f fakeUsers) UpdateProfile(_ context.Context, u *models.User) error {
	for id, existing := range f.users {
		if id != u.ID && strings.EqualFold(existing.Email, u.Email) {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f fakeUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	u, ok := f.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f fakeUsers) TouchLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	u, ok := f.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.LastLoginAt = &at
	return nil
}

// ---- tokens ----

type fakeTokens struct{ *memDB }

func (f fakeTokens) CreateToken(_ context.Context, token string, userID uuid.UUID, expiry time.Time) error {
	f.tokens[token] = &models.RefreshToken{Token: token, UserID: userID, ExpiryDate: expiry}
	return nil
}

func (f fakeTokens) GetToken(_ context.Context, token string) (*models.RefreshToken, error) {
	t, ok := f.tokens[token]
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}
	cp := *t
	return &cp, nil
}

func (f fakeTokens) RevokeToken(_ context.Context, token string) error {
	t, ok := f.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	t.IsRevoked = true
	return nil
}

func (f fakeTokens) RevokeAllUserTokens(_ context.Context, userID uuid.UUID) error {
	for _, t := range f.tokens {
		if t.UserID == userID {
			t.IsRevoked = true
		}
	}
	return nil
}

// ---- centers ----

type fakeCenters struct{ *memDB }

func (f fakeCenters) Create(_ context.Context, c *models.Center) error {
	c.ID = uuid.New()
	c.CreatedAt = f.tick()
	cp := *c
	f.centers[c.ID] = &cp
	return nil
}

func (f fakeCenters) GetByID(_ context.Context, id uuid.UUID) (*models.Center, error) {
	c, ok := f.centers[id]
	if !ok {
		return nil, apperrors.ErrCenterNotFound
	}
	cp := *c
	return &cp, nil
}

func (f fakeCenters) FindByNameAndCounty(_ context.Context, name, county string) (*models.Center, error) {
	for _, c := range f.sorted() {
		if strings.EqualFold(c.Name, name) && strings.EqualFold(c.County, county) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperrors.ErrCenterNotFound
}

func (f fakeCenters) sorted() []*models.Center {
	out := make([]*models.Center, 0, len(f.centers))
	for _, c := range f.centers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (f fakeCenters) List(_ context.Context, filter dto.CenterFilter) ([]*models.Center, int64, error) {
	var out []*models.Center
	for _, c := range f.sorted() {
		if filter.County != "" && !strings.EqualFold(c.County, filter.County) {
			continue
		}
		if q := strings.ToLower(filter.Search); q != "" &&
			!strings.Contains(strings.ToLower(c.Name+" "+c.Address+" "+c.County), q) {
			continue
		}
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (f fakeCenters) ListByCounty(ctx context.Context, county string) ([]*models.Center, error) {
	out, _, err := f.List(ctx, dto.CenterFilter{County: county})
	return out, err
}

func (f fakeCenters) ListWithin(_ context.Context, b repositories.Bounds) ([]*models.Center, error) {
	var out []*models.Center
	for _, c := range f.sorted() {
		if c.Lat == nil || c.Lng == nil {
			continue
		}
		if *c.Lat >= b.MinLat && *c.Lat <= b.MaxLat && *c.Lng >= b.MinLng && *c.Lng <= b.MaxLng {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f fakeCenters) Update(_ context.Context, c *models.Center) error {
	if _, ok := f.centers[c.ID]; !ok {
		return apperrors.ErrCenterNotFound
	}
	cp := *c
	f.centers[c.ID] = &cp
	return nil
}

func (f fakeCenters) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.centers[id]; !ok {
		return apperrors.ErrCenterNotFound
	}
	delete(f.centers, id)
	return nil
}

// ---- squads ----

type fakeSquads struct{ *memDB }

func (f fakeSquads) withStats(s *models.Squad) *models.SquadWithStats {
	out := &models.SquadWithStats{Squad: *s}
	for _, m := range f.members {
		if m.SquadID == s.ID {
			out.Members++
			if m.HasRegistered {
				out.Registered++
			}
		}
	}
	if s.RegistrationCenterID != nil {
		if c, ok := f.centers[*s.RegistrationCenterID]; ok {
			out.CenterName = c.Name
		}
	}
	return out
}

func (f fakeSquads) all() []*models.SquadWithStats {
	out := make([]*models.SquadWithStats, 0, len(f.squads))
	for _, s := range f.squads {
		out = append(out, f.withStats(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f fakeSquads) isMember(squadID, userID uuid.UUID) bool {
	for _, m := range f.members {
		if m.SquadID == squadID && m.UserID == userID {
			return true
		}
	}
	return false
}

func (f fakeSquads) Create(_ context.Context, s *models.Squad) error {
	s.ID = uuid.New()
	s.CreatedAt = f.tick()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	f.squads[s.ID] = &cp
	return nil
}

func (f fakeSquads) GetWithStats(_ context.Context, id uuid.UUID) (*models.SquadWithStats, error) {
	s, ok := f.squads[id]
	if !ok {
		return nil, apperrors.ErrSquadNotFound
	}
	return f.withStats(s), nil
}

func (f fakeSquads) FindJoinable(_ context.Context, centerID uuid.UUID, date time.Time) (*models.SquadWithStats, error) {
	all := f.all()
	for i := len(all) - 1; i >= 0; i-- {
		s := all[i]
		if s.RegistrationCenterID == nil || *s.RegistrationCenterID != centerID || !s.VoterRegistrationDate.Equal(date) {
			continue
		}
		if s.MaxMembers == nil || s.Members < *s.MaxMembers {
			return s, nil
		}
	}
	return nil, apperrors.ErrSquadNotFound
}

func (f fakeSquads) ListVisible(_ context.Context, viewer uuid.UUID, filter dto.SquadFilter) ([]*models.SquadWithStats, int64, error) {
	var out []*models.SquadWithStats
	for _, s := range f.all() {
		if !(s.IsPublic || s.OwnerID == viewer || f.isMember(s.ID, viewer)) {
			continue
		}
		if filter.County != "" && !strings.EqualFold(s.County, filter.County) {
			continue
		}
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

func (f fakeSquads) ListPublic(_ context.Context, filter dto.SquadFilter) ([]*models.SquadWithStats, int64, error) {
	var out []*models.SquadWithStats
	for _, s := range f.all() {
		if s.IsPublic && (filter.County == "" || strings.EqualFold(s.County, filter.County)) {
			out = append(out, s)
		}
	}
	return out, int64(len(out)), nil
}

func (f fakeSquads) ListForUser(_ context.Context, userID uuid.UUID) ([]*models.SquadWithStats, error) {
	var out []*models.SquadWithStats
	for _, s := range f.all() {
		if s.OwnerID == userID || f.isMember(s.ID, userID) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f fakeSquads) Leaderboard(_ context.Context, county string, limit int) ([]*models.SquadWithStats, error) {
	var out []*models.SquadWithStats
	for _, s := range f.all() {
		if s.Members == 0 || (county != "" && !strings.EqualFold(s.County, county)) {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Members > out[j].Members })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f fakeSquads) Update(_ context.Context, s *models.Squad) error {
	if _, ok := f.squads[s.ID]; !ok {
		return apperrors.ErrSquadNotFound
	}
	cp := *s
	f.squads[s.ID] = &cp
	return nil
}

func (f fakeSquads) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.squads[id]; !ok {
		return apperrors.ErrSquadNotFound
	}
	delete(f.squads, id)
	for mid, m := range f.members {
		if m.SquadID == id {
			delete(f.members, mid)
		}
	}
	return nil
}

// ---- memberships ----

type fakeMembers struct{ *memDB }

func (f fakeMembers) decorate(m *models.Membership) *models.Membership {
	cp := *m
	if s, ok := f.squads[m.SquadID]; ok {
		cp.SquadName = s.Name
	}
	return &cp
}

func (f fakeMembers) find(match func(*models.Membership) bool) (*models.Membership, error) {
	var best *models.Membership
	for _, m := range f.members {
		if match(m) && (best == nil || m.JoinedAt.Before(best.JoinedAt)) {
			best = m
		}
	}
	if best == nil {
		return nil, apperrors.ErrMembershipNotFound
	}
	return f.decorate(best), nil
}

func (f fakeMembers) Add(_ context.Context, m *models.Membership) error {
	if _, ok := f.squads[m.SquadID]; !ok {
		return apperrors.ErrSquadNotFound
	}
	for _, existing := range f.members {
		if existing.SquadID == m.SquadID && existing.UserID == m.UserID {
			return apperrors.ErrAlreadyMember
		}
	}
	m.ID = uuid.New()
	m.JoinedAt = f.tick()
	cp := *m
	f.members[m.ID] = &cp
	return nil
}

func (f fakeMembers) Get(_ context.Context, squadID, userID uuid.UUID) (*models.Membership, error) {
	return f.find(func(m *models.Membership) bool { return m.SquadID == squadID && m.UserID == userID })
}

func (f fakeMembers) GetByID(_ context.Context, id uuid.UUID) (*models.Membership, error) {
	return f.find(func(m *models.Membership) bool { return m.ID == id })
}

func (f fakeMembers) FindOtherMembership(_ context.Context, userID, excludeSquadID uuid.UUID) (*models.Membership, error) {
	return f.find(func(m *models.Membership) bool {
		s, ok := f.squads[m.SquadID]
		return m.UserID == userID && m.SquadID != excludeSquadID && ok && s.OwnerID != userID
	})
}

func (f fakeMembers) list(match func(*models.Membership) bool) []*models.Membership {
	var out []*models.Membership
	for _, m := range f.members {
		if match(m) {
			out = append(out, f.decorate(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out
}

func (f fakeMembers) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Membership, error) {
	return f.list(func(m *models.Membership) bool { return m.UserID == userID }), nil
}

func (f fakeMembers) ListBySquad(_ context.Context, squadID uuid.UUID) ([]*models.Membership, error) {
	out := f.list(func(m *models.Membership) bool { return m.SquadID == squadID })
	for _, m := range out {
		if u, ok := f.users[m.UserID]; ok {
			cp := *u
			m.User = &cp
		}
	}
	return out, nil
}

func (f fakeMembers) CountLeaders(_ context.Context, squadID uuid.UUID) (int, error) {
	n := 0
	for _, m := range f.members {
		if m.SquadID == squadID && m.Role == models.RoleLeader {
			n++
		}
	}
	return n, nil
}

func (f fakeMembers) Remove(_ context.Context, id uuid.UUID) error {
	if _, ok := f.members[id]; !ok {
		return apperrors.ErrMembershipNotFound
	}
	delete(f.members, id)
	return nil
}

func (f fakeMembers) UpdateRole(_ context.Context, id uuid.UUID, role models.Role) error {
	m, ok := f.members[id]
	if !ok {
		return apperrors.ErrMembershipNotFound
	}
	m.Role = role
	return nil
}

func (f fakeMembers) UpdateRegistered(_ context.Context, id uuid.UUID, registered bool) error {
	m, ok := f.members[id]
	if !ok {
		return apperrors.ErrMembershipNotFound
	}
	m.HasRegistered = registered
	return nil
}

// ---- events ----

type fakeEvents struct{ *memDB }

func (f fakeEvents) decorate(e *models.Event) *models.Event {
	cp := *e
	if s, ok := f.squads[e.SquadID]; ok {
		cp.SquadName = s.Name
	}
	if c, ok := f.centers[e.CenterID]; ok {
		cp.CenterName = c.Name
	}
	return &cp
}

func (f fakeEvents) Create(_ context.Context, e *models.Event) error {
	_, squadOK := f.squads[e.SquadID]
	_, centerOK := f.centers[e.CenterID]
	if !squadOK || !centerOK {
		return apperrors.NewValidationError("center_id", "Referenced squad or center does not exist")
	}
	e.ID = uuid.New()
	e.CreatedAt = f.tick()
	cp := *e
	f.events[e.ID] = &cp
	return nil
}

func (f fakeEvents) GetByID(_ context.Context, id uuid.UUID) (*models.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	return f.decorate(e), nil
}

func (f fakeEvents) ListForMember(_ context.Context, userID uuid.UUID, filter dto.EventFilter) ([]*models.Event, int64, error) {
	squads := fakeSquads(f)
	var out []*models.Event
	for _, e := range f.events {
		if !squads.isMember(e.SquadID, userID) {
			continue
		}
		if filter.SquadID != nil && e.SquadID != *filter.SquadID {
			continue
		}
		if filter.From != nil && e.Datetime.Before(*filter.From) {
			continue
		}
		out = append(out, f.decorate(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Datetime.Before(out[j].Datetime) })
	return out, int64(len(out)), nil
}

func (f fakeEvents) Update(_ context.Context, e *models.Event) error {
	if _, ok := f.events[e.ID]; !ok {
		return apperrors.ErrEventNotFound
	}
	cp := *e
	f.events[e.ID] = &cp
	return nil
}

func (f fakeEvents) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.events[id]; !ok {
		return apperrors.ErrEventNotFound
	}
	delete(f.events, id)
	return nil
}

func (f fakeEvents) UpsertRSVP(_ context.Context, eventID, userID uuid.UUID, status *models.RSVPStatus) (*models.RSVP, error) {
	if _, ok := f.events[eventID]; !ok {
		return nil, apperrors.ErrEventNotFound
	}
	for _, r := range f.rsvps {
		if r.EventID == eventID && r.UserID == userID {
			if status != nil {
				r.Status = *status
			}
			r.RespondedAt = f.tick()
			cp := *r
			return &cp, nil
		}
	}
	r := &models.RSVP{ID: uuid.New(), EventID: eventID, UserID: userID, Status: models.RSVPMaybe, RespondedAt: f.tick()}
	if status != nil {
		r.Status = *status
	}
	f.rsvps[r.ID] = r
	cp := *r
	return &cp, nil
}

func (f fakeEvents) rsvpList(match func(*models.RSVP) bool) []*models.RSVP {
	var out []*models.RSVP
	for _, r := range f.rsvps {
		if match(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RespondedAt.After(out[j].RespondedAt) })
	return out
}

func (f fakeEvents) ListRSVPs(_ context.Context, eventID uuid.UUID) ([]*models.RSVP, error) {
	return f.rsvpList(func(r *models.RSVP) bool { return r.EventID == eventID }), nil
}

func (f fakeEvents) ListUserRSVPs(_ context.Context, userID uuid.UUID) ([]*models.RSVP, error) {
	return f.rsvpList(func(r *models.RSVP) bool { return r.UserID == userID }), nil
}

// ---- invites ----

type fakeInvites struct{ *memDB }

func (f *fakeInvites) CreateMany(_ context.Context, invites []*models.Invite) error {
	for _, inv := range invites {
		inv.ID = uuid.New()
		inv.SentAt = f.tick()
		cp := *inv
		f.invites = append(f.invites, &cp)
	}
	return nil
}

func (f *fakeInvites) GetByID(_ context.Context, id uuid.UUID) (*models.Invite, error) {
	for _, inv := range f.invites {
		if inv.ID == id {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, apperrors.ErrInviteNotFound
}

func (f *fakeInvites) ListByInviter(_ context.Context, inviterID uuid.UUID, _, _ int) ([]*models.Invite, int64, error) {
	var out []*models.Invite
	for _, inv := range f.invites {
		if inv.InviterID == inviterID {
			out = append(out, inv)
		}
	}
	return out, int64(len(out)), nil
}

// fakeTx runs the unit of work directly, or fails with err when set
type fakeTx struct {
	err   error
	calls int
}

func (t *fakeTx) RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	if t.err != nil {
		return t.err
	}
	return fn(ctx)
}

func newAuthorization(db *memDB) *authz.AuthorizationService {
	return authz.NewAuthorizationService(fakeSquads{db}, fakeMembers{db})
}
