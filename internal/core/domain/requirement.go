package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// Operator is a version-comparison operator in a requirement clause.
type Operator string

const (
	OpEqual          Operator = "="
	OpNotEqual       Operator = "!="
	OpLessThan       Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpGreaterThan    Operator = ">"
	OpGreaterOrEqual Operator = ">="
)

// ErrRequirementInvalid is returned when a requirement clause cannot be parsed.
var ErrRequirementInvalid = zerr.New("invalid version requirement clause")

// Clause is a single (operator, version) constraint.
type Clause struct {
	Op      Operator
	Version Version
}

// Satisfies reports whether v satisfies this clause.
func (c Clause) Satisfies(v Version) bool {
	cmp := v.Compare(c.Version)
	switch c.Op {
	case OpEqual:
		return cmp == 0
	case OpNotEqual:
		return cmp != 0
	case OpLessThan:
		return cmp < 0
	case OpLessOrEqual:
		return cmp <= 0
	case OpGreaterThan:
		return cmp > 0
	case OpGreaterOrEqual:
		return cmp >= 0
	default:
		return false
	}
}

func (c Clause) String() string {
	return string(c.Op) + " " + c.Version.String()
}

// VersionRequirement is a conjunction of clauses. An empty requirement is
// satisfied by any version.
type VersionRequirement struct {
	clauses []Clause
}

// AnyVersion returns the empty requirement, satisfied by any version.
func AnyVersion() VersionRequirement {
	return VersionRequirement{}
}

// ExactVersion returns a requirement that matches exactly one version: a
// single "=" clause, the shape IsExact recognizes.
func ExactVersion(v Version) VersionRequirement {
	return VersionRequirement{clauses: []Clause{{Op: OpEqual, Version: v}}}
}

// NewRequirement builds a requirement from explicit clauses.
func NewRequirement(clauses ...Clause) VersionRequirement {
	return VersionRequirement{clauses: clauses}
}

// ParseRequirement parses a requirement string of the form
// "<op> <version>" (e.g. ">= 0.1"), or "*"/"" for any version.
func ParseRequirement(s string) (VersionRequirement, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return AnyVersion(), nil
	}

	ops := []Operator{OpGreaterOrEqual, OpLessOrEqual, OpNotEqual, OpEqual, OpLessThan, OpGreaterThan}
	for _, op := range ops {
		if strings.HasPrefix(s, string(op)) {
			rest := strings.TrimSpace(s[len(op):])
			v, err := ParseVersion(rest)
			if err != nil {
				return VersionRequirement{}, zerr.Wrap(err, "invalid version requirement")
			}
			return NewRequirement(Clause{Op: op, Version: v}), nil
		}
	}

	return VersionRequirement{}, zerr.With(ErrRequirementInvalid, "requirement", s)
}

// IsEmpty reports whether the requirement has no clauses (satisfied by any
// version).
func (r VersionRequirement) IsEmpty() bool {
	return len(r.clauses) == 0
}

// Clauses returns the requirement's clauses.
func (r VersionRequirement) Clauses() []Clause {
	return r.clauses
}

// Satisfies reports whether v satisfies every clause of r.
func (r VersionRequirement) Satisfies(v Version) bool {
	for _, c := range r.clauses {
		if !c.Satisfies(v) {
			return false
		}
	}
	return true
}

// IsExact reports whether r pins exactly one version (a single "=" clause),
// returning that version.
func (r VersionRequirement) IsExact() (Version, bool) {
	if len(r.clauses) == 1 && r.clauses[0].Op == OpEqual {
		return r.clauses[0].Version, true
	}
	return Version{}, false
}

// Intersect returns the conjunction of r and o (the union of their clauses).
// Intersection is represented syntactically, not solved against a candidate
// set — emptiness in the set-theoretic sense only shows when the result is
// tested against candidate versions with Satisfies.
func (r VersionRequirement) Intersect(o VersionRequirement) VersionRequirement {
	merged := make([]Clause, 0, len(r.clauses)+len(o.clauses))
	merged = append(merged, r.clauses...)
	merged = append(merged, o.clauses...)
	return VersionRequirement{clauses: merged}
}

func (r VersionRequirement) String() string {
	if r.IsEmpty() {
		return "*"
	}
	parts := make([]string, len(r.clauses))
	for i, c := range r.clauses {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
