package repositories

import (
	"github.com/Simoh8/pamoja-vote/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository        *UserRepository
	TokenRepository       *TokenRepository
	CenterRepository      *CenterRepository
	SquadRepository       *SquadRepository
	SquadMemberRepository *SquadMemberRepository
	EventRepository       *EventRepository
	InviteRepository      *InviteRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		UserRepository:        NewUserRepository(database),
		TokenRepository:       NewTokenRepository(database),
		CenterRepository:      NewCenterRepository(database),
		SquadRepository:       NewSquadRepository(database),
		SquadMemberRepository: NewSquadMemberRepository(database),
		EventRepository:       NewEventRepository(database),
		InviteRepository:      NewInviteRepository(database),
	}
}
