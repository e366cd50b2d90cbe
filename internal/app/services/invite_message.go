package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/Simoh8/pamoja-vote/internal/app/models"
	"github.com/google/uuid"
)

const inviteTimeLayout = "2006-01-02 15:04"

// SquadJoinURL is the public link that opens a squad's join page
func SquadJoinURL(baseURL string, squadID uuid.UUID) string {
	return fmt.Sprintf("%s/join/%s", strings.TrimRight(baseURL, "/"), squadID)
}

// EventURL is the public link of an event
func EventURL(baseURL string, eventID uuid.UUID) string {
	return fmt.Sprintf("%s/event/%s", strings.TrimRight(baseURL, "/"), eventID)
}

// SquadInviteMessage composes the invite text for a squad
func SquadInviteMessage(channel models.InviteChannel, baseURL, squadName string, squadID uuid.UUID) string {
	link := SquadJoinURL(baseURL, squadID)
	if channel == models.ChannelSMS {
		return fmt.Sprintf("Join our squad '%s' on PamojaVote and register to vote together. Join here: %s", squadName, link)
	}
	return fmt.Sprintf("Hey! 🇰🇪 Join our squad '%s' on PamojaVote - we're working together to register as voters. Tap here to join 👉 %s", squadName, link)
}

// EventInviteMessage composes the invite text for an event
func EventInviteMessage(channel models.InviteChannel, baseURL, centerName string, at time.Time, eventID uuid.UUID) string {
	link := EventURL(baseURL, eventID)
	when := at.Format(inviteTimeLayout)
	if channel == models.ChannelSMS {
		return fmt.Sprintf("Join us for a voter registration event at %s on %s. Details: %s", centerName, when, link)
	}
	return fmt.Sprintf("Hey! 🇰🇪 Join us for a voter registration event at %s on %s. Tap here 👉 %s", centerName, when, link)
}
