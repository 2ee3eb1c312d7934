package planner

import "github.com/Tsess/jira-planning/internal/logging"

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the logger that receives pass summaries and anomalies.
func WithLogger(logger *logging.Logger) Option {
	return func(p *Planner) {
		if logger != nil {
			p.logger = logger
		}
	}
}
