// Package document keeps structures open for editing across requests.
//
// A [Document] owns one graph manager and a mutex: every read and edit
// takes the lock, so edits on one document are serialized while different
// documents proceed in parallel. A [Store] maps document IDs to open
// documents and can mirror their notation into a [cache.Cache], so a
// server restarted against the same Redis database finds its documents
// again.
//
// Nodes are addressed by canonical references ("RNA1:3") and edges by
// node reference pairs ("RNA1:2-RNA2:5"). References are resolved under
// the document lock, against the state the edit will apply to.
//
// [cache.Cache]: github.com/matzehuels/helmdraw/pkg/cache.Cache
package document

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/helmdraw/pkg/diagram"
	"github.com/matzehuels/helmdraw/pkg/edit"
	"github.com/matzehuels/helmdraw/pkg/errors"
	"github.com/matzehuels/helmdraw/pkg/graph"
	"github.com/matzehuels/helmdraw/pkg/monomer"
	"github.com/matzehuels/helmdraw/pkg/observability"
	"github.com/matzehuels/helmdraw/pkg/pipeline"
	"github.com/matzehuels/helmdraw/pkg/translate"
)

// Document is one open structure.
type Document struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	m         *graph.Manager
	db        monomer.Database
	version   int
	updatedAt time.Time
	onCommit  func(ctx context.Context, d *Document, notation string)
}

// Snapshot describes a document at one point in time.
type Snapshot struct {
	ID        string    `json:"id"`
	Notation  string    `json:"notation"`
	Version   int       `json:"version"`
	Chains    int       `json:"chains"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LinkRequest names a connection by node references. Ports are ignored
// for pairs.
type LinkRequest struct {
	From     string `json:"from" validate:"required"`
	FromPort string `json:"from_port,omitempty"`
	To       string `json:"to" validate:"required"`
	ToPort   string `json:"to_port,omitempty"`
	Pair     bool   `json:"pair,omitempty"`
}

func newDocument(id string, m *graph.Manager, db monomer.Database, now time.Time) *Document {
	return &Document{ID: id, CreatedAt: now, m: m, db: db, updatedAt: now}
}

// Snapshot returns the current state.
func (d *Document) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshot()
}

func (d *Document) snapshot() Snapshot {
	g := d.m.Graph()
	return Snapshot{
		ID:        d.ID,
		Notation:  translate.Serialize(d.m),
		Version:   d.version,
		Chains:    d.m.StartCount(),
		Nodes:     g.NodeCount(),
		Edges:     g.EdgeCount(),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.updatedAt,
	}
}

// Delete removes the referenced nodes and edges.
func (d *Document) Delete(ctx context.Context, nodes, edges []string) (*edit.Result, error) {
	return d.apply(ctx, "delete", func(m *graph.Manager) (*edit.Result, error) {
		var sel edit.Selection
		for _, ref := range nodes {
			n, err := edit.ResolveNode(m, ref)
			if err != nil {
				return nil, err
			}
			sel.Nodes = append(sel.Nodes, n)
		}
		for _, ref := range edges {
			e, err := edit.ResolveEdge(m, ref)
			if err != nil {
				return nil, err
			}
			sel.Edges = append(sel.Edges, e)
		}
		if sel.Empty() {
			return nil, errors.New(errors.ErrCodeInvalidInput, "nothing selected")
		}
		return edit.Delete(m, sel)
	})
}

// Replace swaps the monomer at node for symbol.
func (d *Document) Replace(ctx context.Context, node, symbol string) (*edit.Result, error) {
	return d.apply(ctx, "replace", func(m *graph.Manager) (*edit.Result, error) {
		n, err := edit.ResolveNode(m, node)
		if err != nil {
			return nil, err
		}
		return edit.Replace(m, d.db, n, symbol)
	})
}

// Connect adds a bond or base pair.
func (d *Document) Connect(ctx context.Context, req LinkRequest) (*edit.Result, error) {
	return d.apply(ctx, "connect", func(m *graph.Manager) (*edit.Result, error) {
		l, err := resolveLink(m, req)
		if err != nil {
			return nil, err
		}
		return edit.Connect(m, l)
	})
}

func resolveLink(m *graph.Manager, req LinkRequest) (graph.Link, error) {
	src, err := edit.ResolveNode(m, req.From)
	if err != nil {
		return graph.Link{}, err
	}
	tgt, err := edit.ResolveNode(m, req.To)
	if err != nil {
		return graph.Link{}, err
	}
	l := graph.Link{Src: src, Tgt: tgt, Pair: req.Pair}
	if req.Pair {
		return l, nil
	}
	if l.SrcPort, err = monomer.ParsePort(req.FromPort); err != nil {
		return graph.Link{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "from_port")
	}
	if l.TgtPort, err = monomer.ParsePort(req.ToPort); err != nil {
		return graph.Link{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "to_port")
	}
	return l, nil
}

// Layout lays out the document and renders the requested formats. Only
// geometry and render fields of opts are used; the notation comes from the
// document.
func (d *Document) Layout(ctx context.Context, opts pipeline.Options) (diagram.Drawing, map[string][]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	opts.Notation = translate.Serialize(d.m)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return diagram.Drawing{}, nil, err
	}
	drawing, err := pipeline.GenerateLayout(ctx, d.m, opts)
	if err != nil {
		return diagram.Drawing{}, nil, err
	}
	artifacts, err := pipeline.Render(ctx, d.m, drawing, opts)
	if err != nil {
		return diagram.Drawing{}, nil, err
	}
	return drawing, artifacts, nil
}

// apply runs one edit under the lock. The manager is only replaced by the
// edit package on success, so a failed edit leaves the document unchanged.
func (d *Document) apply(ctx context.Context, op string, fn func(*graph.Manager) (*edit.Result, error)) (*edit.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	start := time.Now()
	res, err := fn(d.m)
	observability.Pipeline().OnEdit(ctx, op, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	d.version++
	d.updatedAt = time.Now()
	if d.onCommit != nil {
		d.onCommit(ctx, d, res.Notation)
	}
	return res, nil
}
