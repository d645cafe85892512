package document

import (
	"slices"
	"strconv"

	"go.uber.org/multierr"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/errors"
)

// Validate checks a document against the format invariants and returns every
// violation found, combined with multierr. A nil return means the document is
// well formed. Orphaned nodes are not violations.
//
// Problems are reported in a stable order: version, pages, node records (by
// id), then tree structure page by page.
func Validate(d *Document) error {
	if d == nil {
		return errors.New(errors.ErrCodeInvalidDocument, "nil document")
	}

	var errs error
	if err := CheckVersion(d.Version); err != nil {
		errs = multierr.Append(errs, err)
	}

	seenPages := make(map[string]bool, len(d.Pages))
	for i, p := range d.Pages {
		switch {
		case p.ID == "":
			errs = multierr.Append(errs, problem("page %d has an empty id", i))
		case seenPages[p.ID]:
			errs = multierr.Append(errs, problem("page id %q is used more than once", p.ID))
		}
		seenPages[p.ID] = true
	}

	ids := make([]string, 0, len(d.Nodes))
	for id := range d.Nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if id == "" {
			errs = multierr.Append(errs, problem("node with an empty id"))
		}
		if d.Nodes[id].Type == "" {
			errs = multierr.Append(errs, problem("node %q has an empty type", id))
		}
	}

	v := &treeValidator{
		nodes:  d.Nodes,
		parent: make(map[string]string),
		state:  make(map[string]visitState),
	}
	for i, p := range d.Pages {
		owner := pageOwner(i)
		for _, child := range p.Children {
			v.visit(owner, child)
		}
	}
	return multierr.Append(errs, v.errs)
}

// Problems splits the error returned by [Validate] into individual violations.
func Problems(err error) []error {
	return multierr.Errors(err)
}

func problem(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidDocument, format, args...)
}

type visitState int

const (
	unvisited visitState = iota
	onPath
	done
)

type treeValidator struct {
	nodes  map[string]Node
	parent map[string]string
	state  map[string]visitState
	errs   error
}

func (v *treeValidator) visit(parent, id string) {
	if _, ok := v.nodes[id]; !ok {
		v.errs = multierr.Append(v.errs, problem("%s references missing node %q", describe(parent), id))
		return
	}
	switch v.state[id] {
	case onPath:
		v.errs = multierr.Append(v.errs, problem("node %q is its own ancestor (via %s)", id, describe(parent)))
		return
	case done:
		if prev := v.parent[id]; prev != parent {
			v.errs = multierr.Append(v.errs, problem("node %q has two parents: %s and %s", id, describe(prev), describe(parent)))
		} else {
			v.errs = multierr.Append(v.errs, problem("node %q is listed more than once by %s", id, describe(parent)))
		}
		return
	}

	v.state[id] = onPath
	v.parent[id] = parent
	for _, child := range v.nodes[id].Children {
		v.visit(id, child)
	}
	v.state[id] = done
}

// Page owners are stored with a NUL prefix so they never collide with a
// node id.
func pageOwner(i int) string {
	return "\x00page" + strconv.Itoa(i)
}

func describe(owner string) string {
	if len(owner) > 0 && owner[0] == 0 {
		return "page " + owner[len("\x00page"):]
	}
	return "node " + strconv.Quote(owner)
}
