package domain

import (
	"strings"

	"github.com/blang/semver"
)

// Operator is a comparison operator of a constraint clause.
type Operator string

const (
	// OpEqual matches exactly one version.
	OpEqual Operator = "="
	// OpNotEqual excludes exactly one version.
	OpNotEqual Operator = "!="
	// OpGreater matches versions above the operand.
	OpGreater Operator = ">"
	// OpGreaterEqual matches versions at or above the operand.
	OpGreaterEqual Operator = ">="
	// OpLess matches versions below the operand.
	OpLess Operator = "<"
	// OpLessEqual matches versions at or below the operand.
	OpLessEqual Operator = "<="
	// OpPessimistic matches versions at or above the operand that keep all but its last segment.
	OpPessimistic Operator = "~>"
)

// operators is ordered so that two-character operators are tried first.
var operators = []Operator{OpPessimistic, OpGreaterEqual, OpLessEqual, OpNotEqual, "==", OpGreater, OpLess, OpEqual}

// Clause is a single comparison such as ">= 1.2".
type Clause struct {
	Op      Operator
	Version Version
	// raw is the operand as written, kept for serialisation and pessimistic bounds.
	raw string
}

// Constraint is a predicate over versions: the logical AND of its clauses.
// The zero value is the default constraint, matching any release version.
type Constraint struct {
	clauses    []Clause
	prerelease bool
}

// AnyVersion returns the default constraint ">= 0" with prereleases excluded.
func AnyVersion() Constraint {
	return Constraint{}
}

// ParseConstraint parses a requirement expression.
// Clauses are separated by commas; a clause without operator is an exact match.
// Empty text and "*" yield the default constraint.
func ParseConstraint(text string) (Constraint, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed == "*" {
		return AnyVersion(), nil
	}

	var c Constraint
	for _, part := range strings.Split(trimmed, ",") {
		clause, err := parseClause(part)
		if err != nil {
			return Constraint{}, Fail(ErrInvalidConstraint, err.Error(), "constraint", text)
		}
		c.clauses = append(c.clauses, clause)
		if IsPrerelease(clause.Version) {
			c.prerelease = true
		}
	}
	return c, nil
}

// MustParseConstraint is like ParseConstraint but panics on malformed input.
func MustParseConstraint(text string) Constraint {
	c, err := ParseConstraint(text)
	if err != nil {
		panic(err)
	}
	return c
}

func parseClause(text string) (Clause, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Clause{}, Fail(ErrInvalidConstraint, "empty clause")
	}

	op := OpEqual
	for _, candidate := range operators {
		if strings.HasPrefix(s, string(candidate)) {
			op = candidate
			s = strings.TrimSpace(s[len(candidate):])
			break
		}
	}
	if op == "==" {
		op = OpEqual
	}

	v, err := ParseVersion(s)
	if err != nil {
		return Clause{}, err
	}
	if op == OpPessimistic && segments(s) < 2 {
		return Clause{}, Fail(ErrInvalidConstraint, "pessimistic operator needs at least two segments", "operand", s)
	}
	return Clause{Op: op, Version: v, raw: s}, nil
}

// Clauses returns a copy of the constraint's clauses.
func (c Constraint) Clauses() []Clause {
	out := make([]Clause, len(c.clauses))
	copy(out, c.clauses)
	return out
}

// IncludesPrerelease reports whether the constraint itself names a prerelease version.
func (c Constraint) IncludesPrerelease() bool {
	return c.prerelease
}

// IsDefault reports whether c is the default "any release" constraint.
func (c Constraint) IsDefault() bool {
	return len(c.clauses) == 0
}

// Matches reports whether v satisfies every clause.
// Prerelease versions only match when allowPrerelease is set or the constraint names a prerelease.
func (c Constraint) Matches(v Version, allowPrerelease bool) bool {
	if IsPrerelease(v) && !allowPrerelease && !c.prerelease {
		return false
	}
	for _, clause := range c.clauses {
		if !clause.matches(v) {
			return false
		}
	}
	return true
}

// And returns the conjunction of c and other.
func (c Constraint) And(other Constraint) Constraint {
	clauses := make([]Clause, 0, len(c.clauses)+len(other.clauses))
	clauses = append(clauses, c.clauses...)
	clauses = append(clauses, other.clauses...)
	return Constraint{clauses: clauses, prerelease: c.prerelease || other.prerelease}
}

// String serialises the constraint in a form ParseConstraint accepts.
func (c Constraint) String() string {
	if len(c.clauses) == 0 {
		return ">= 0"
	}
	parts := make([]string, len(c.clauses))
	for i, clause := range c.clauses {
		parts[i] = clause.String()
	}
	return strings.Join(parts, ", ")
}

// String renders the clause as "op version".
func (cl Clause) String() string {
	raw := cl.raw
	if raw == "" {
		raw = cl.Version.String()
	}
	return string(cl.Op) + " " + raw
}

func (cl Clause) matches(v Version) bool {
	cmp := v.Compare(cl.Version)
	switch cl.Op {
	case OpEqual:
		return cmp == 0
	case OpNotEqual:
		return cmp != 0
	case OpGreater:
		return cmp > 0
	case OpGreaterEqual:
		return cmp >= 0
	case OpLess:
		return cmp < 0
	case OpLessEqual:
		return cmp <= 0
	case OpPessimistic:
		return cmp >= 0 && v.LT(pessimisticCeiling(cl.Version, segments(cl.raw)))
	default:
		return false
	}
}

// pessimisticCeiling returns the exclusive upper bound of "~> v" written with n segments.
func pessimisticCeiling(v Version, n int) Version {
	if n >= 3 {
		return semver.Version{Major: v.Major, Minor: v.Minor + 1}
	}
	return semver.Version{Major: v.Major + 1}
}
