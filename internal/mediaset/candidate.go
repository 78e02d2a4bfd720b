package mediaset

import (
	"mediathek/internal/media/classify"
	"mediathek/internal/media/probe"
)

// Member pairs a probed file with the rendition role it fills.
type Member struct {
	File probe.ProbedFile
	Role classify.Role
}

// Candidate is a mediaset under assembly: the grouped members, the elected
// metadata source, and the diagnostics collected along the way.
type Candidate struct {
	Key     classify.Key
	Year    string
	Members []Member
	// Source is the member elected to contribute the descriptive metadata:
	// the largest .mov, failing that the largest .mp4/.m4v.
	Source probe.ProbedFile
	// Shadowed lists members displaced by a larger file claiming the same
	// role. They are reported, never silently dropped.
	Shadowed []Member
	Warnings []string
}

// MemberForRole returns the member holding role, if any.
func (c *Candidate) MemberForRole(role classify.Role) (Member, bool) {
	for _, member := range c.Members {
		if member.Role == role {
			return member, true
		}
	}
	return Member{}, false
}

// HasVideo reports whether any video rendition (not the master) is present.
func (c *Candidate) HasVideo() bool {
	for _, member := range c.Members {
		switch member.Role {
		case classify.RoleMedienserver, classify.RoleInternet4K,
			classify.RoleInternetHD, classify.RoleInternetSD:
			return true
		}
	}
	return false
}

// HasPoster reports whether a poster member is present.
func (c *Candidate) HasPoster() bool {
	_, ok := c.MemberForRole(classify.RolePoster)
	return ok
}

// DirName returns the materialization directory name for the candidate.
func (c *Candidate) DirName() string {
	return DirName(c.Year, c.Key.FileName())
}
