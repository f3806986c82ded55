package folio

import (
	"fmt"
	"math/rand"
	"time"

	"multa-gateway/pkg/luhn"
)

// Generator assembles folios from the catalog code, the agent code and a
// time component, closed with a check digit. It is a pure function of its
// inputs apart from the random agent code used when no agent id is known.
type Generator struct {
	catalog   *Catalog
	randAgent func() int
}

// Option configures a Generator.
type Option func(*Generator)

// WithAgentCodeRand overrides the random source for the unknown-agent code.
// Tests use this to make generation fully deterministic.
func WithAgentCodeRand(fn func() int) Option {
	return func(g *Generator) {
		g.randAgent = fn
	}
}

// New creates a Generator over the given catalog.
func New(catalog *Catalog, opts ...Option) *Generator {
	g := &Generator{
		catalog:   catalog,
		randAgent: func() int { return rand.Intn(1000) },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds a folio for one violation. It never fails and never
// returns a folio that does not self-validate.
//
// Without an agent id the agent code is random; uniqueness across agents is
// then only statistical, which is an accepted limitation.
func (g *Generator) Generate(infractionTypeID string, mode Mode, agentID *int, now time.Time) Folio {
	typeCode := g.catalog.Code(infractionTypeID)
	agentCode := g.agentCode(agentID)

	var base string
	if mode == ModeOffline {
		base = agentCode + typeCode + fmt.Sprintf("%08d", now.UnixMilli()%1e8)
	} else {
		base = typeCode + agentCode + fmt.Sprintf("%05d", now.UnixMilli()%1e5)
	}

	// base is all digits by construction, so Compute cannot fail.
	check, _ := luhn.Compute(base)
	return Folio(fmt.Sprintf("%s%d", base, check))
}

func (g *Generator) agentCode(agentID *int) string {
	if agentID == nil {
		return fmt.Sprintf("%03d", g.randAgent()%1000)
	}
	n := *agentID % 1000
	if n < 0 {
		n += 1000
	}
	return fmt.Sprintf("%03d", n)
}
