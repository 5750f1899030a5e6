package auth

import "strings"

// Kind is the coarse role of a caller.
type Kind string

const (
	KindAdmin Kind = "admin"
	KindChair Kind = "chair"
	KindUser  Kind = "user"
)

// AllCommittees is the chair scope covering every committee.
const AllCommittees = "all"

// Role is the resolved authorization of a session.
type Role struct {
	Kind      Kind   `json:"kind"`
	Committee string `json:"committee,omitempty"`
	Email     string `json:"email"`
}

// Covers reports whether the role may act on committee.
func (r Role) Covers(committee string) bool {
	switch r.Kind {
	case KindAdmin:
		return true
	case KindChair:
		return r.Committee == AllCommittees || (committee != "" && r.Committee == committee)
	}
	return false
}

// ScopeFilter returns the committee a listing must be narrowed to, or ""
// when the role sees everything.
func (r Role) ScopeFilter() string {
	if r.Kind == KindChair && r.Committee != AllCommittees {
		return r.Committee
	}
	return ""
}

// Policy maps an authenticated session to a role.
type Policy interface {
	ResolveRole(s Session) Role
}

// AllowlistPolicy resolves roles from configured email lists.
type AllowlistPolicy struct {
	admins map[string]struct{}
	chairs map[string]string
}

// NewAllowlistPolicy builds a policy from admin emails and email→committee
// chair assignments. Emails are compared case-insensitively.
func NewAllowlistPolicy(admins []string, chairs map[string]string) *AllowlistPolicy {
	p := &AllowlistPolicy{
		admins: make(map[string]struct{}, len(admins)),
		chairs: make(map[string]string, len(chairs)),
	}
	for _, a := range admins {
		p.admins[strings.ToLower(strings.TrimSpace(a))] = struct{}{}
	}
	for email, committee := range chairs {
		p.chairs[strings.ToLower(strings.TrimSpace(email))] = committee
	}
	return p
}

func (p *AllowlistPolicy) ResolveRole(s Session) Role {
	email := strings.ToLower(s.Email)
	if _, ok := p.admins[email]; ok {
		return Role{Kind: KindAdmin, Email: email}
	}
	if committee, ok := p.chairs[email]; ok {
		return Role{Kind: KindChair, Committee: committee, Email: email}
	}
	return Role{Kind: KindUser, Email: email}
}
