// Package reactive implements a small dataflow runtime.
//
// Input cells hold the default values of the widgets. Callbacks bind an output to a set of
// input cells: whenever one of these inputs changes, the output is recomputed.
//
// All callbacks execute on a single event loop, strictly one at a time.
// Input values are carried by each update, so that concurrent clients never share state.
package reactive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
)

// Errors returned by the [Runtime].
var (
	ErrUnknownInput    = errors.New("unknown input")
	ErrInvalidValue    = errors.New("invalid input value")
	ErrDuplicateInput  = errors.New("duplicate input")
	ErrDuplicateOutput = errors.New("duplicate output")
	ErrStarted         = errors.New("runtime already started")
	ErrStopped         = errors.New("runtime stopped")
)

// Values maps input IDs to their current values.
type Values map[string]any

// Func recomputes an output from the values of the runtime's inputs.
//
// Functions reject values they cannot interpret with an error wrapping [ErrInvalidValue].
type Func func(ctx context.Context, in Values) (any, error)

// Update is a change of some input values, e.g. a user moving a slider.
type Update struct {
	// Changed lists the inputs that triggered the update. When empty, every input
	// listed in Inputs counts as changed.
	Changed []string `json:"changed,omitempty"`

	// Inputs carries the current input values known to the client.
	// Missing inputs take their default value.
	Inputs Values `json:"inputs"`
}

// Cell declares an input value.
type Cell struct {
	ID      string `json:"id"`
	Prop    string `json:"prop"`
	Default any    `json:"default"`
}

type binding struct {
	output string
	deps   []string
	fn     Func
}

type request struct {
	ctx      context.Context //nolint:containedctx // carried to the event loop
	values   Values
	bindings []binding
	reply    chan response
}

type response struct {
	outputs map[string]any
	err     error
}

// Runtime holds input cells and output bindings, and executes callbacks on a single event loop.
type Runtime struct {
	options

	mu       sync.Mutex
	started  bool
	cells    map[string]Cell
	order    []string
	bindings []binding

	requests chan request
	done     chan struct{}
	l        *slog.Logger
}

// New creates an empty [Runtime].
func New(opts ...Option) *Runtime {
	o := optionsWithDefaults(opts)

	return &Runtime{
		options:  o,
		cells:    make(map[string]Cell),
		requests: make(chan request, o.queueSize),
		done:     make(chan struct{}),
		l:        slog.Default().With(slog.String("module", "reactive")),
	}
}

// Input declares an input cell with its default value.
//
// Inputs must be declared before [Runtime.Run].
func (r *Runtime) Input(id, prop string, defaultValue any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return ErrStarted
	}

	if _, exists := r.cells[id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateInput, id)
	}

	r.cells[id] = Cell{ID: id, Prop: prop, Default: defaultValue}
	r.order = append(r.order, id)

	return nil
}

// Callback binds an output to a recompute function and the inputs it depends on.
//
// Callbacks must be registered before [Runtime.Run].
func (r *Runtime) Callback(output string, deps []string, fn Func) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return ErrStarted
	}

	for _, b := range r.bindings {
		if b.output == output {
			return fmt.Errorf("%w: %q", ErrDuplicateOutput, output)
		}
	}

	for _, dep := range deps {
		if _, ok := r.cells[dep]; !ok {
			return fmt.Errorf("%w: %q is required by output %q", ErrUnknownInput, dep, output)
		}
	}

	r.bindings = append(r.bindings, binding{
		output: output,
		deps:   slices.Clone(deps),
		fn:     fn,
	})

	return nil
}

// Cells returns the declared input cells, in declaration order.
func (r *Runtime) Cells() []Cell {
	r.mu.Lock()
	defer r.mu.Unlock()

	cells := make([]Cell, 0, len(r.order))
	for _, id := range r.order {
		cells = append(cells, r.cells[id])
	}

	return cells
}

// Outputs returns the IDs of the bound outputs, in registration order.
func (r *Runtime) Outputs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	outputs := make([]string, 0, len(r.bindings))
	for _, b := range r.bindings {
		outputs = append(outputs, b.output)
	}

	return outputs
}

// Run the event loop until the context is canceled.
//
// Once Run returns, pending and subsequent dispatches fail with [ErrStopped].
func (r *Runtime) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()

		return ErrStarted
	}
	r.started = true
	r.mu.Unlock()

	defer close(r.done)

	r.l.Info("event loop started", slog.Int("inputs", len(r.cells)), slog.Int("outputs", len(r.bindings)))

	for {
		select {
		case <-ctx.Done():
			r.l.Info("event loop stopped", slog.String("reason", context.Cause(ctx).Error()))

			return nil
		case req := <-r.requests:
			outputs, err := r.execute(req)
			req.reply <- response{outputs: outputs, err: err}
		}
	}
}

// Initial computes every output from the default input values.
func (r *Runtime) Initial(ctx context.Context) (map[string]any, error) {
	return r.submit(ctx, r.defaults(), r.bindings)
}

// Dispatch applies an update and returns the recomputed outputs of every binding
// that depends on a changed input.
func (r *Runtime) Dispatch(ctx context.Context, update Update) (map[string]any, error) {
	changed := update.Changed
	if len(changed) == 0 {
		changed = slices.Sorted(maps.Keys(update.Inputs))
	}

	for _, id := range changed {
		if _, ok := r.cells[id]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownInput, id)
		}
	}

	values := r.defaults()
	for id, value := range update.Inputs {
		if _, ok := r.cells[id]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownInput, id)
		}

		values[id] = value
	}

	var affected []binding
	for _, b := range r.bindings {
		if slices.ContainsFunc(b.deps, func(dep string) bool { return slices.Contains(changed, dep) }) {
			affected = append(affected, b)
		}
	}

	if len(affected) == 0 {
		return map[string]any{}, nil
	}

	return r.submit(ctx, values, affected)
}

func (r *Runtime) submit(ctx context.Context, values Values, bindings []binding) (map[string]any, error) {
	req := request{
		ctx:      ctx,
		values:   values,
		bindings: bindings,
		reply:    make(chan response, 1),
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-r.done:
		return nil, ErrStopped
	case r.requests <- req:
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-r.done:
		return nil, ErrStopped
	case resp := <-req.reply:
		return resp.outputs, resp.err
	}
}

func (r *Runtime) execute(req request) (map[string]any, error) {
	outputs := make(map[string]any, len(req.bindings))

	for _, b := range req.bindings {
		if err := req.ctx.Err(); err != nil {
			return nil, err
		}

		in := make(Values, len(b.deps))
		for _, dep := range b.deps {
			in[dep] = req.values[dep]
		}

		value, err := b.fn(req.ctx, in)
		if err != nil {
			r.l.Warn("callback failed", slog.String("output", b.output), slog.String("error", err.Error()))

			return nil, fmt.Errorf("computing output %q: %w", b.output, err)
		}

		outputs[b.output] = value
	}

	r.l.Debug("outputs computed", slog.Int("outputs", len(outputs)))

	return outputs, nil
}

func (r *Runtime) defaults() Values {
	values := make(Values, len(r.cells))
	for id, cell := range r.cells {
		values[id] = cell.Default
	}

	return values
}
