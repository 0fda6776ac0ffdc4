package dispatch

import (
	"github.com/kopong25/freightquick/core/match"
	"github.com/kopong25/freightquick/core/route"
)

// Config groups the dispatch tunables.
type Config struct {
	Match match.Config `json:"match"`
	Route route.Config `json:"route"`
}

// SetDefaults applies defaults to both sections.
func (c *Config) SetDefaults() {
	c.Match.SetDefaults()
	c.Route.SetDefaults()
}
