package classify

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-bindstat/pkg/algorithms"
	"github.com/dd0wney/cluso-bindstat/pkg/errs"
	"github.com/dd0wney/cluso-bindstat/pkg/moltype"
)

// Result is the outcome of classifying one component. OK is false for a
// component without receptors; such components are not counted.
type Result struct {
	Class     Class
	Receptors int
	OK        bool
}

// Classifier assigns aggregate classes to components. It holds no mutable
// state and may be shared between goroutines.
type Classifier struct {
	Types    moltype.Config
	Receptor int // type index of the classified molecules
	SiteA    int
	SiteB    int
}

// New returns a classifier for the receptor type 0 with sites A=0, B=1.
func New(types moltype.Config) *Classifier {
	return &Classifier{
		Types:    types,
		Receptor: moltype.Receptor,
		SiteA:    0,
		SiteB:    1,
	}
}

// WithSites returns a copy of c using the given singleton sites.
func (c *Classifier) WithSites(siteA, siteB int) *Classifier {
	cp := *c
	cp.SiteA = siteA
	cp.SiteB = siteB
	return &cp
}

// Classify labels comp. Every member must lie inside the type configuration.
func (c *Classifier) Classify(comp algorithms.Component, g *algorithms.BindingGraph) (Result, error) {
	receptors := 0
	single := -1
	for _, id := range comp.Members {
		t, err := c.Types.TypeOf(id)
		if err != nil {
			return Result{}, errs.New("classify").Context("component %d", comp.ID).Cause(err).Err()
		}
		if t == c.Receptor {
			receptors++
			single = id
		}
	}

	switch {
	case receptors == 0:
		return Result{}, nil
	case receptors >= 2:
		return Result{Class: Mer(receptors), Receptors: receptors, OK: true}, nil
	}

	class, err := c.singletonClass(single, comp, g)
	if err != nil {
		return Result{}, err
	}
	return Result{Class: class, Receptors: 1, OK: true}, nil
}

// singletonClass inspects the distinct sites of receptor r. A site counts as
// bound when r is the first endpoint of an edge on it, or when any member
// points at r on it.
func (c *Classifier) singletonClass(r int, comp algorithms.Component, g *algorithms.BindingGraph) (Class, error) {
	sites := make(map[int]struct{}, 4)
	for _, e := range g.Edges(r) {
		sites[e.Site1] = struct{}{}
	}
	for _, id := range comp.Members {
		if id == r {
			continue
		}
		for _, e := range g.Edges(id) {
			if e.Mol2 == r {
				sites[e.Site2] = struct{}{}
			}
		}
	}

	_, hasA := sites[c.SiteA]
	_, hasB := sites[c.SiteB]
	switch {
	case hasA && hasB:
		return SingletonAB, nil
	case hasA:
		return SingletonA, nil
	case hasB:
		return SingletonB, nil
	}
	return Free, errs.Invariant("classify", "receptor %d is bound but on neither site %d nor %d (sites %s)",
		r, c.SiteA, c.SiteB, siteList(sites))
}

func siteList(sites map[int]struct{}) string {
	if len(sites) == 0 {
		return "none"
	}
	ids := make([]int, 0, len(sites))
	for s := range sites {
		ids = append(ids, s)
	}
	sort.Ints(ids)
	parts := make([]string, len(ids))
	for i, s := range ids {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ",")
}
