package poller

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Group reúne as páginas e o health. Cada uma tem seu próprio timer; não há
// ordem garantida entre elas.
type Group struct {
	pages  []*Page
	byName map[string]*Page
	Health *Health
}

func NewGroup(health *Health, pages ...*Page) *Group {
	g := &Group{Health: health, byName: make(map[string]*Page, len(pages))}
	for _, p := range pages {
		g.pages = append(g.pages, p)
		g.byName[p.Name] = p
	}
	return g
}

func (g *Group) Get(name string) (*Page, bool) {
	p, ok := g.byName[name]
	return p, ok
}

// Pages na ordem de registro
func (g *Group) Pages() []*Page { return g.pages }

// Run roda todos os loops até ctx ser cancelado
func (g *Group) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, p := range g.pages {
		p := p
		eg.Go(func() error { return p.Run(ctx) })
	}
	if g.Health != nil {
		eg.Go(func() error { return g.Health.Run(ctx) })
	}
	return eg.Wait()
}
