package render

import (
	"github.com/gobwas/glob"

	apperrors "github.com/Tsess/jira-planning/internal/errors"
)

// TeamFilter selects teams by a glob over their names. A nil filter, or
// one built from an empty pattern, matches every team.
type TeamFilter struct {
	pattern string
	g       glob.Glob
}

// NewTeamFilter compiles pattern. Brace alternatives work, so
// "{Platform,Mobile}" selects two teams.
func NewTeamFilter(pattern string) (*TeamFilter, error) {
	if pattern == "" {
		return &TeamFilter{}, nil
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid team filter").
			WithField("team").
			WithValue(pattern).
			WithCause(err)
	}
	return &TeamFilter{pattern: pattern, g: g}, nil
}

// Match reports whether team passes the filter.
func (f *TeamFilter) Match(team string) bool {
	if f == nil || f.g == nil {
		return true
	}
	return f.g.Match(team)
}

// String returns the pattern the filter was built from.
func (f *TeamFilter) String() string {
	if f == nil {
		return ""
	}
	return f.pattern
}
