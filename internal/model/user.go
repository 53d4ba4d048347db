package model

import "time"

// Role is the coarse account type stored in users.role.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

// Label returns the French label shown on the profile page.
func (r Role) Label() string {
	if r == RoleAdmin {
		return "Propriétaire"
	}
	return "Locataire"
}

// Cleanliness describes how tidy a roommate expects the flat to be.
type Cleanliness string

const (
	CleanlinessRelaxed  Cleanliness = "relaxed"
	CleanlinessStandard Cleanliness = "standard"
	CleanlinessManiac   Cleanliness = "maniac"
)

func (c Cleanliness) Valid() bool {
	switch c {
	case CleanlinessRelaxed, CleanlinessStandard, CleanlinessManiac:
		return true
	}
	return false
}

// SocialVibe describes the atmosphere a roommate is looking for.
type SocialVibe string

const (
	SocialVibeQuiet    SocialVibe = "quiet"
	SocialVibeParty    SocialVibe = "party"
	SocialVibeBalanced SocialVibe = "balanced"
)

func (s SocialVibe) Valid() bool {
	switch s {
	case SocialVibeQuiet, SocialVibeParty, SocialVibeBalanced:
		return true
	}
	return false
}

// Profile holds the roommate-compatibility attributes embedded in a user row.
type Profile struct {
	Budget      float64     `json:"budget"`
	IsSmoker    bool        `json:"is_smoker"`
	HasPets     bool        `json:"has_pets"`
	Cleanliness Cleanliness `json:"cleanliness"`
	SocialVibe  SocialVibe  `json:"social_vibe"`
	Bio         string      `json:"bio"`
}

// DefaultProfile is the baseline used when a user never filled a profile.
func DefaultProfile() Profile {
	return Profile{
		Budget:      0,
		Cleanliness: CleanlinessStandard,
		SocialVibe:  SocialVibeBalanced,
	}
}

// ProfileUpdate is a partial profile edit. A nil field leaves the current
// value untouched.
type ProfileUpdate struct {
	Budget      *float64     `json:"budget,omitempty"`
	IsSmoker    *bool        `json:"is_smoker,omitempty"`
	HasPets     *bool        `json:"has_pets,omitempty"`
	Cleanliness *Cleanliness `json:"cleanliness,omitempty"`
	SocialVibe  *SocialVibe  `json:"social_vibe,omitempty"`
	Bio         *string      `json:"bio,omitempty"`
}

// Apply returns p with every non-nil field of u copied over.
func (u ProfileUpdate) Apply(p Profile) Profile {
	if u.Budget != nil {
		p.Budget = *u.Budget
	}
	if u.IsSmoker != nil {
		p.IsSmoker = *u.IsSmoker
	}
	if u.HasPets != nil {
		p.HasPets = *u.HasPets
	}
	if u.Cleanliness != nil {
		p.Cleanliness = *u.Cleanliness
	}
	if u.SocialVibe != nil {
		p.SocialVibe = *u.SocialVibe
	}
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	return p
}

// User is an account as stored in the users table. The password hash is
// kept in the repository layer and never serialized.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	Profile   *Profile  `json:"profile,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileOrDefault returns the stored profile or the baseline one.
func (u User) ProfileOrDefault() Profile {
	if u.Profile == nil {
		return DefaultProfile()
	}
	return *u.Profile
}
