// internal/middleware/policy.go
package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tripreel-service/internal/domain/auth"
	xerrors "tripreel-service/internal/pkg/errors"
	"tripreel-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type accessLevel int

const (
	levelAuthenticated accessLevel = iota
	levelPublic
	levelRole
)

// Access is the outcome of a policy lookup for one route.
type Access struct {
	level accessLevel
	role  auth.Role
}

var (
	Public        = Access{level: levelPublic}
	Authenticated = Access{level: levelAuthenticated}
)

// RequireRole admits principals whose current role is at least r.
func RequireRole(r auth.Role) Access {
	return Access{level: levelRole, role: r}
}

func (a Access) String() string {
	switch a.level {
	case levelPublic:
		return "PUBLIC"
	case levelRole:
		return "ROLE_" + string(a.role)
	}
	return "AUTHENTICATED"
}

// Rule maps a method and path pattern onto an Access. An empty Method
// matches any method. Pattern segments are literals, "*" for exactly one
// segment, or a trailing "**" for zero or more segments.
type Rule struct {
	Method  string
	Pattern string
	Access  Access
}

// RoleResolver looks up an identity's current role.
type RoleResolver interface {
	Resolve(ctx context.Context, id string) (auth.Role, error)
}

// DecisionRecorder receives one outcome per authorized request.
type DecisionRecorder interface {
	ObserveDecision(access, outcome string)
}

// Decision outcomes reported to a DecisionRecorder.
const (
	OutcomeAllowed         = "allowed"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeForbidden       = "forbidden"
	OutcomeError           = "error"
)

type compiledRule struct {
	Rule
	segments []string
	tail     bool
	literals int
	stars    int
}

// Policy is built once at startup and is read-only afterwards.
type Policy struct {
	rules    []compiledRule
	roles    RoleResolver
	logger   *zap.Logger
	recorder DecisionRecorder
}

func NewPolicy(rules []Rule, roles RoleResolver, logger *zap.Logger) (*Policy, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Policy{roles: roles, logger: logger}
	for i, r := range rules {
		cr, err := compile(r)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s %s): %w", i, r.Method, r.Pattern, err)
		}
		if r.Access.level == levelRole && roles == nil {
			return nil, fmt.Errorf("rule %d requires a role resolver", i)
		}
		p.rules = append(p.rules, cr)
	}
	return p, nil
}

// WithRecorder attaches a DecisionRecorder. Call it before serving.
func (p *Policy) WithRecorder(r DecisionRecorder) *Policy {
	p.recorder = r
	return p
}

func (p *Policy) record(access Access, outcome string) {
	if p.recorder != nil {
		p.recorder.ObserveDecision(access.String(), outcome)
	}
}

func compile(r Rule) (compiledRule, error) {
	if !strings.HasPrefix(r.Pattern, "/") {
		return compiledRule{}, errors.New("pattern must start with /")
	}
	cr := compiledRule{Rule: r, segments: splitPath(r.Pattern)}
	for i, seg := range cr.segments {
		switch seg {
		case "**":
			if i != len(cr.segments)-1 {
				return compiledRule{}, errors.New("** is only allowed as the last segment")
			}
			cr.tail = true
		case "*":
			cr.stars++
		default:
			cr.literals++
		}
	}
	if cr.tail {
		cr.segments = cr.segments[:len(cr.segments)-1]
	}
	return cr, nil
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func (r compiledRule) matches(method string, segments []string) bool {
	if r.Method != "" && !strings.EqualFold(r.Method, method) {
		return false
	}
	if r.tail {
		if len(segments) < len(r.segments) {
			return false
		}
	} else if len(segments) != len(r.segments) {
		return false
	}
	for i, seg := range r.segments {
		if seg != "*" && seg != segments[i] {
			return false
		}
	}
	return true
}

// moreSpecific reports whether r should win over other.
func (r compiledRule) moreSpecific(other compiledRule) bool {
	if r.literals != other.literals {
		return r.literals > other.literals
	}
	if r.stars != other.stars {
		return r.stars > other.stars
	}
	if r.tail != other.tail {
		return !r.tail
	}
	return r.Method != "" && other.Method == ""
}

// Decide returns the Access for method and path. Unmatched requests require
// authentication.
func (p *Policy) Decide(method, path string) Access {
	segments := splitPath(path)
	var best *compiledRule
	for i := range p.rules {
		r := &p.rules[i]
		if !r.matches(method, segments) {
			continue
		}
		if best == nil || r.moreSpecific(*best) {
			best = r
		}
	}
	if best == nil {
		return Authenticated
	}
	return best.Access
}

// Authorize returns the gin middleware enforcing the policy. It must run
// after the Authenticator.
func (p *Policy) Authorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		access := p.Decide(c.Request.Method, c.Request.URL.Path)

		switch access.level {
		case levelPublic:
			p.record(access, OutcomeAllowed)
			c.Next()
			return
		case levelAuthenticated:
			if !IsAuthenticated(c) {
				p.record(access, OutcomeUnauthenticated)
				response.Unauthorized(c)
				return
			}
			p.record(access, OutcomeAllowed)
			c.Next()
			return
		}

		principal, ok := PrincipalFrom(c)
		if !ok {
			p.record(access, OutcomeUnauthenticated)
			response.Unauthorized(c)
			return
		}

		role, err := p.roles.Resolve(c.Request.Context(), principal.Subject)
		switch {
		case errors.Is(err, xerrors.ErrNotFound):
			p.record(access, OutcomeUnauthenticated)
			response.Unauthorized(c)
			return
		case err != nil:
			p.logger.Error("role lookup failed",
				zap.String("subject", principal.Subject),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			p.record(access, OutcomeError)
			response.DatabaseError(c)
			return
		}

		if !role.Satisfies(access.role) {
			p.logger.Debug("insufficient role",
				zap.String("subject", principal.Subject),
				zap.String("role", string(role)),
				zap.String("required", string(access.role)),
			)
			p.record(access, OutcomeForbidden)
			response.Forbidden(c)
			return
		}

		p.record(access, OutcomeAllowed)
		principal.Authorities = role.Authorities()
		bind(c, principal)
		c.Set(roleKey, role)
		c.Next()
	}
}
