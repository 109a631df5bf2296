package auth

import "github.com/Annany2002/projecthub-backend/internal/domain"

// State tracks how far a request got through a Guard.
type State int

const (
	Unauthenticated State = iota
	Authenticated
	Authorized
	Rejected
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	case Authorized:
		return "authorized"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Subject is the per-request value threaded through guard stages.
type Subject struct {
	Credential string
	Claim      *domain.IdentityClaim
	State      State
}

// Stage is one pass/fail check of a Guard.
type Stage func(s *Subject) error

// Guard runs its stages in order and stops at the first failure.
type Guard struct {
	stages []Stage
}

// NewGuard builds a Guard from stages, typically Verifier.Stage() followed by RequireRoles.
func NewGuard(stages ...Stage) *Guard {
	return &Guard{stages: stages}
}

// Run evaluates every stage against s. On failure s.State becomes Rejected.
func (g *Guard) Run(s *Subject) error {
	for _, stage := range g.stages {
		if err := stage(s); err != nil {
			s.State = Rejected
			return err
		}
	}
	return nil
}

// Stage adapts the Verifier into a guard stage that populates the claim.
func (v *Verifier) Stage() Stage {
	return func(s *Subject) error {
		claim, err := v.Verify(s.Credential)
		if err != nil {
			return err
		}
		s.Claim = claim
		s.State = Authenticated
		return nil
	}
}

// RequireRoles is the authorization stage for an operation limited to roles.
func RequireRoles(roles ...domain.Role) Stage {
	return func(s *Subject) error {
		if err := Authorize(s.Claim, roles...); err != nil {
			return err
		}
		s.State = Authorized
		return nil
	}
}
