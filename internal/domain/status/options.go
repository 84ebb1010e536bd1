package status

import (
	"time"

	"github.com/okian/labsite/pkg/logger"
)

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithHomeInstitution sets the institution that marks academic-track members.
func WithHomeInstitution(name string) Option {
	return func(c *Classifier) {
		if name != "" {
			c.homeInstitution = name
		}
	}
}

// WithHomeOrganizations sets the group names that mark in-group experience.
func WithHomeOrganizations(orgs ...string) Option {
	return func(c *Classifier) {
		kept := make([]string, 0, len(orgs))
		for _, o := range orgs {
			if o != "" {
				kept = append(kept, o)
			}
		}
		c.homeOrgs = kept
	}
}

// WithRoleMap sets the display remap applied to every resolved role.
func WithRoleMap(m map[string]string) Option {
	return func(c *Classifier) {
		c.roleMap = copyMap(m)
	}
}

// WithDegreeRoles sets the degree to academic role table.
func WithDegreeRoles(m map[string]string) Option {
	return func(c *Classifier) {
		if len(m) > 0 {
			c.degreeRoles = copyMap(m)
		}
	}
}

// WithHierarchy sets the role to rank table used to order current members.
func WithHierarchy(h map[string]int) Option {
	return func(c *Classifier) {
		c.hierarchy = make(map[string]int, len(h))
		for k, v := range h {
			c.hierarchy[k] = v
		}
	}
}

// WithPolicy decides what happens to members without any records.
func WithPolicy(p Policy) Option {
	return func(c *Classifier) {
		if p.Valid() {
			c.policy = p
		}
	}
}

// WithNow overrides the clock used to decide whether a date has passed.
func WithNow(now func() time.Time) Option {
	return func(c *Classifier) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger for issue reporting.
func WithLogger(l logger.Logger) Option {
	return func(c *Classifier) {
		if l != nil {
			c.log = l
		}
	}
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
