// Package services holds the business rules of the API. Each service talks to
// storage through the narrow interfaces below so it can be exercised without a database.
package services

import (
	"context"
	"time"

	"github.com/Simoh8/pamoja-vote/internal/app/models"
	"github.com/Simoh8/pamoja-vote/internal/app/models/dto"
	"github.com/Simoh8/pamoja-vote/internal/app/repositories"
	"github.com/google/uuid"
)

// UserStore persists accounts
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// TokenStore persists refresh tokens
type TokenStore interface {
	CreateToken(ctx context.Context, token string, userID uuid.UUID, expiryDate time.Time) error
	GetToken(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// CenterStore persists the center directory
type CenterStore interface {
	Create(ctx context.Context, c *models.Center) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Center, error)
	FindByNameAndCounty(ctx context.Context, name, county string) (*models.Center, error)
	List(ctx context.Context, filter dto.CenterFilter) ([]*models.Center, int64, error)
	ListByCounty(ctx context.Context, county string) ([]*models.Center, error)
	ListWithin(ctx context.Context, b repositories.Bounds) ([]*models.Center, error)
	Update(ctx context.Context, c *models.Center) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SquadStore persists squads
type SquadStore interface {
	Create(ctx context.Context, s *models.Squad) error
	GetWithStats(ctx context.Context, id uuid.UUID) (*models.SquadWithStats, error)
	FindJoinable(ctx context.Context, centerID uuid.UUID, date time.Time) (*models.SquadWithStats, error)
	ListVisible(ctx context.Context, viewer uuid.UUID, filter dto.SquadFilter) ([]*models.SquadWithStats, int64, error)
	ListPublic(ctx context.Context, filter dto.SquadFilter) ([]*models.SquadWithStats, int64, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.SquadWithStats, error)
	Leaderboard(ctx context.Context, county string, limit int) ([]*models.SquadWithStats, error)
	Update(ctx context.Context, s *models.Squad) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MembershipStore persists squad memberships
type MembershipStore interface {
	Add(ctx context.Context, m *models.Membership) error
	Get(ctx context.Context, squadID, userID uuid.UUID) (*models.Membership, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Membership, error)
	FindOtherMembership(ctx context.Context, userID, excludeSquadID uuid.UUID) (*models.Membership, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Membership, error)
	ListBySquad(ctx context.Context, squadID uuid.UUID) ([]*models.Membership, error)
	CountLeaders(ctx context.Context, squadID uuid.UUID) (int, error)
	Remove(ctx context.Context, id uuid.UUID) error
	UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error
	UpdateRegistered(ctx context.Context, id uuid.UUID, registered bool) error
}

// EventStore persists events and RSVPs
type EventStore interface {
	Create(ctx context.Context, e *models.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListForMember(ctx context.Context, userID uuid.UUID, filter dto.EventFilter) ([]*models.Event, int64, error)
	Update(ctx context.Context, e *models.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpsertRSVP(ctx context.Context, eventID, userID uuid.UUID, status *models.RSVPStatus) (*models.RSVP, error)
	ListRSVPs(ctx context.Context, eventID uuid.UUID) ([]*models.RSVP, error)
	ListUserRSVPs(ctx context.Context, userID uuid.UUID) ([]*models.RSVP, error)
}

// InviteStore persists invites
type InviteStore interface {
	CreateMany(ctx context.Context, invites []*models.Invite) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invite, error)
	ListByInviter(ctx context.Context, inviterID uuid.UUID, page, size int) ([]*models.Invite, int64, error)
}

// Transactor runs a unit of work in a SERIALIZABLE transaction
type Transactor interface {
	RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}
