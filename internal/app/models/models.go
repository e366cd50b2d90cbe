package models

// Role is a member's standing inside a squad
type Role string

const (
	RoleMember Role = "member"
	RoleLeader Role = "leader"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleMember || r == RoleLeader
}

// RSVPStatus is a user's answer to an event
type RSVPStatus string

const (
	RSVPYes   RSVPStatus = "yes"
	RSVPNo    RSVPStatus = "no"
	RSVPMaybe RSVPStatus = "maybe"
)

func (s RSVPStatus) Valid() bool {
	return s == RSVPYes || s == RSVPNo || s == RSVPMaybe
}

// InviteChannel is the medium an invite goes out on
type InviteChannel string

const (
	ChannelWhatsApp InviteChannel = "whatsapp"
	ChannelSMS      InviteChannel = "sms"
)

func (c InviteChannel) Valid() bool {
	return c == ChannelWhatsApp || c == ChannelSMS
}

// InviteStatus tracks delivery of an invite
type InviteStatus string

const (
	InviteSent      InviteStatus = "sent"
	InviteDelivered InviteStatus = "delivered"
	InviteFailed    InviteStatus = "failed"
)
