package editor

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/geometry"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/history"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/mindmap"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/observability"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/shape"
)

// Config holds the editor's thresholds and size floors.
type Config struct {
	// MoveThreshold is the displacement a move must exceed to be recorded
	// in history.
	MoveThreshold float64 `toml:"move_threshold" envconfig:"MOVE_THRESHOLD"`

	MinRadius float64 `toml:"min_radius" envconfig:"MIN_RADIUS"`
	MinWidth  float64 `toml:"min_width" envconfig:"MIN_WIDTH"`
	MinHeight float64 `toml:"min_height" envconfig:"MIN_HEIGHT"`

	// CircleSpacing multiplies a circle parent's radius to place children.
	CircleSpacing float64 `toml:"circle_spacing" envconfig:"CIRCLE_SPACING"`

	// A rectangle parent places children at max(width, height) times a
	// factor between RectSpacingMin (pointer level with the parent) and
	// RectSpacingMax (pointer straight above or below).
	RectSpacingMin float64 `toml:"rect_spacing_min" envconfig:"RECT_SPACING_MIN"`
	RectSpacingMax float64 `toml:"rect_spacing_max" envconfig:"RECT_SPACING_MAX"`
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		MoveThreshold:  5,
		MinRadius:      shape.MinRadius,
		MinWidth:       shape.MinWidth,
		MinHeight:      shape.MinHeight,
		CircleSpacing:  2.2,
		RectSpacingMin: 1.25,
		RectSpacingMax: 2.2,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	fill := func(v *float64, def float64) {
		if *v <= 0 || math.IsNaN(*v) {
			*v = def
		}
	}
	fill(&c.MoveThreshold, d.MoveThreshold)
	fill(&c.MinRadius, d.MinRadius)
	fill(&c.MinWidth, d.MinWidth)
	fill(&c.MinHeight, d.MinHeight)
	fill(&c.CircleSpacing, d.CircleSpacing)
	fill(&c.RectSpacingMin, d.RectSpacingMin)
	fill(&c.RectSpacingMax, d.RectSpacingMax)
	return c
}

// Editor is the explicit editing context: map, history, selection and
// logger, passed to every operation instead of living in globals.
type Editor struct {
	Map     *mindmap.Mindmap
	History *history.Manager
	Logger  *log.Logger
	Config  Config

	selected *shape.Shape
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger used for rejected operations and debug output.
func WithLogger(l *log.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.Logger = l
		}
	}
}

// WithHistory uses h instead of a fresh history manager.
func WithHistory(h *history.Manager) Option {
	return func(e *Editor) {
		if h != nil {
			e.History = h
		}
	}
}

// WithConfig overrides thresholds. Zero fields keep their defaults.
func WithConfig(c Config) Option {
	return func(e *Editor) { e.Config = c.withDefaults() }
}

// New creates an editor over m. A nil map starts from the default root.
func New(m *mindmap.Mindmap, opts ...Option) *Editor {
	if m == nil {
		m = mindmap.NewDefault()
	}
	e := &Editor{
		Map:     m,
		History: history.New(),
		Logger:  log.Default(),
		Config:  DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// =============================================================================
// Selection
// =============================================================================

// Selected returns the selected shape, or nil.
func (e *Editor) Selected() *shape.Shape { return e.selected }

// Select makes s the selection. s must belong to the map.
func (e *Editor) Select(s *shape.Shape) error {
	if s == nil || !e.Map.Contains(s) {
		return errors.New(errors.ErrCodeNotFound, "cannot select a shape outside the map")
	}
	e.selected = s
	return nil
}

// SelectID selects the shape with the given id.
func (e *Editor) SelectID(id int) error {
	s, ok := e.Map.Lookup(id)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "no shape with id %d", id)
	}
	e.selected = s
	return nil
}

// PickAt selects the shape under (x, y), or clears the selection when the
// point hits nothing. It returns the new selection.
func (e *Editor) PickAt(x, y float64) *shape.Shape {
	s, _ := e.Map.HitTest(x, y)
	e.selected = s
	return s
}

// Unselect clears the selection.
func (e *Editor) Unselect() { e.selected = nil }

// =============================================================================
// Structural mutations
// =============================================================================

// MoveNode moves node's center to (x, y) and translates its descendants by
// the same delta. The move is recorded in history only when the
// displacement exceeds Config.MoveThreshold.
func (e *Editor) MoveNode(node *shape.Shape, x, y float64) (bool, error) {
	if err := e.registered(node); err != nil {
		return false, err
	}
	if err := errors.ValidateNumber("x", x); err != nil {
		return false, e.invalid("move", err)
	}
	if err := errors.ValidateNumber("y", y); err != nil {
		return false, e.invalid("move", err)
	}
	from, to := node.Center(), geometry.Point{X: x, Y: y}
	d := to.Sub(from)
	if d == (geometry.Point{}) {
		return false, nil
	}
	if geometry.Dist(from, to) > e.Config.MoveThreshold {
		e.snapshot()
	}
	e.Map.Translate(node, d.X, d.Y)
	e.applied("move", node)
	return true, nil
}

// RemoveNode deletes node and its subtree. The root is never removed.
func (e *Editor) RemoveNode(node *shape.Shape) (bool, error) {
	if err := e.registered(node); err != nil {
		return false, err
	}
	if node.ID == shape.RootID {
		e.reject("remove", "the root cannot be removed")
		return false, nil
	}
	e.snapshot()
	n, err := e.Map.Remove(node)
	if err != nil {
		return false, err
	}
	if e.selected != nil && !e.Map.Contains(e.selected) {
		e.selected = nil
	}
	e.Logger.Debug("removed subtree", "id", node.ID, "shapes", n)
	e.applied("remove", node)
	return true, nil
}

// AddConnectedChild adds a child of parent's variant, placed along the
// direction from parent's center to the pointer at a distance derived from
// parent's size. The child inherits parent's fill color. Nothing happens
// when parent is collapsed.
func (e *Editor) AddConnectedChild(parent *shape.Shape, px, py float64) (*shape.Shape, error) {
	if parent == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "no parent shape")
	}
	return e.AddConnectedChildKind(parent, px, py, parent.Kind)
}

// AddConnectedChildKind is AddConnectedChild with an explicit variant for
// the new child.
func (e *Editor) AddConnectedChildKind(parent *shape.Shape, px, py float64, kind shape.Kind) (*shape.Shape, error) {
	if err := e.registered(parent); err != nil {
		return nil, err
	}
	if err := errors.ValidateNumber("pointer x", px); err != nil {
		return nil, e.invalid("add", err)
	}
	if err := errors.ValidateNumber("pointer y", py); err != nil {
		return nil, e.invalid("add", err)
	}
	if parent.Collapsed {
		e.reject("add", "parent is collapsed")
		return nil, nil
	}

	pos := e.childPosition(parent, geometry.Point{X: px, Y: py})
	id := e.Map.PeekNextID()
	var child *shape.Shape
	switch kind {
	case shape.Circle:
		child = shape.NewCircle(id, pos.X, pos.Y, shape.DefaultRadius, shape.DefaultText)
	case shape.Rectangle:
		child = shape.NewRectangle(id, pos.X, pos.Y, shape.DefaultWidth, shape.DefaultHeight, shape.DefaultText)
	default:
		return nil, errors.New(errors.ErrCodeUnknownNodeType, "unknown shape kind %d", kind)
	}
	child.FillColor = parent.FillColor

	e.snapshot()
	if err := e.Map.Attach(parent, child); err != nil {
		e.History.Discard()
		return nil, err
	}
	e.Map.NextID()
	e.applied("add", child)
	return child, nil
}

// childPosition places a new child along the parent-to-pointer direction.
func (e *Editor) childPosition(parent *shape.Shape, pointer geometry.Point) geometry.Point {
	c := parent.Center()
	angle := geometry.Angle(c, pointer)
	var dist float64
	switch parent.Kind {
	case shape.Rectangle:
		t := math.Abs(math.Sin(angle))
		factor := e.Config.RectSpacingMin + (e.Config.RectSpacingMax-e.Config.RectSpacingMin)*t
		dist = parent.Extent() * factor
	default:
		dist = parent.Radius * e.Config.CircleSpacing
	}
	return geometry.Offset(c, angle, dist)
}

// ToggleCollapse flips node's collapsed flag. Childless shapes are left
// alone.
func (e *Editor) ToggleCollapse(node *shape.Shape) (bool, error) {
	if err := e.registered(node); err != nil {
		return false, err
	}
	if !node.HasChildren() {
		e.reject("collapse", "shape has no children")
		return false, nil
	}
	e.snapshot()
	node.Collapsed = !node.Collapsed
	e.applied("collapse", node)
	return true, nil
}

// =============================================================================
// Selection-scoped mutations
// =============================================================================

// SetText renames the selected shape.
func (e *Editor) SetText(text string) (bool, error) {
	s := e.target("text")
	if s == nil {
		return false, nil
	}
	e.snapshot()
	s.SetText(text)
	e.applied("text", s)
	return true, nil
}

// SetFillColor recolors the selected shape's fill.
func (e *Editor) SetFillColor(c string) (bool, error) {
	return e.setColor("fill", c, (*shape.Shape).SetFillColor)
}

// SetBorderColor recolors the selected shape's border.
func (e *Editor) SetBorderColor(c string) (bool, error) {
	return e.setColor("border", c, (*shape.Shape).SetBorderColor)
}

// SetTextColor recolors the selected shape's text.
func (e *Editor) SetTextColor(c string) (bool, error) {
	return e.setColor("text-color", c, (*shape.Shape).SetTextColor)
}

func (e *Editor) setColor(op, c string, set func(*shape.Shape, string) error) (bool, error) {
	if err := errors.ValidateColor(c); err != nil {
		return false, e.invalid(op, err)
	}
	s := e.target(op)
	if s == nil {
		return false, nil
	}
	e.snapshot()
	_ = set(s, c)
	e.applied(op, s)
	return true, nil
}

// SetBorderWidth changes the selected shape's border width.
func (e *Editor) SetBorderWidth(w float64) (bool, error) {
	if err := errors.ValidateNumber("border width", w); err != nil {
		return false, e.invalid("border-width", err)
	}
	if w < 0 {
		return false, e.invalid("border-width",
			errors.New(errors.ErrCodeInvalidInput, "border width cannot be negative, got %v", w))
	}
	s := e.target("border-width")
	if s == nil {
		return false, nil
	}
	e.snapshot()
	_ = s.SetBorderWidth(w)
	e.applied("border-width", s)
	return true, nil
}

// SetRadius resizes the selected circle, clamping to Config.MinRadius.
func (e *Editor) SetRadius(r float64) (bool, error) {
	if err := errors.ValidatePositive("radius", r); err != nil {
		return false, e.invalid("radius", err)
	}
	s := e.target("radius")
	if s == nil {
		return false, nil
	}
	if s.Kind != shape.Circle {
		return false, errors.New(errors.ErrCodeUnsupported, "shape %d is a %s, not a circle", s.ID, s.Kind)
	}
	e.snapshot()
	_ = s.SetRadius(math.Max(r, e.Config.MinRadius))
	e.applied("radius", s)
	return true, nil
}

// SetDimensions resizes the selected rectangle, clamping to
// Config.MinWidth and Config.MinHeight.
func (e *Editor) SetDimensions(w, h float64) (bool, error) {
	if err := errors.ValidatePositive("width", w); err != nil {
		return false, e.invalid("dimensions", err)
	}
	if err := errors.ValidatePositive("height", h); err != nil {
		return false, e.invalid("dimensions", err)
	}
	s := e.target("dimensions")
	if s == nil {
		return false, nil
	}
	if s.Kind != shape.Rectangle {
		return false, errors.New(errors.ErrCodeUnsupported, "shape %d is a %s, not a rectangle", s.ID, s.Kind)
	}
	e.snapshot()
	_ = s.SetDimensions(math.Max(w, e.Config.MinWidth), math.Max(h, e.Config.MinHeight))
	e.applied("dimensions", s)
	return true, nil
}

// =============================================================================
// History
// =============================================================================

// Undo reinstalls the previous snapshot. It reports false when there is
// nothing to undo or the snapshot cannot be installed; in the latter case
// both stacks are left as they were.
func (e *Editor) Undo() bool {
	prev, ok := e.History.Undo(e.Map.Root())
	if !ok {
		return false
	}
	if err := e.install(prev); err != nil {
		e.History.Redo(prev)
		return false
	}
	return true
}

// Redo reinstalls the next snapshot. It reports false when there is
// nothing to redo or the snapshot cannot be installed.
func (e *Editor) Redo() bool {
	next, ok := e.History.Redo(e.Map.Root())
	if !ok {
		return false
	}
	if err := e.install(next); err != nil {
		e.History.Undo(next)
		return false
	}
	return true
}

// Load replaces the tree with root and clears history and selection, as
// for opening a saved map.
func (e *Editor) Load(root *shape.Shape) error {
	if err := e.Map.Install(root); err != nil {
		return err
	}
	e.History.Clear()
	e.selected = nil
	return nil
}

// Reset starts over from a fresh default root.
func (e *Editor) Reset() {
	_ = e.Load(shape.NewRoot(mindmap.DefaultRootX, mindmap.DefaultRootY))
}

// install swaps in a snapshot. The selection follows its id if the id
// still exists and is dropped otherwise.
func (e *Editor) install(root *shape.Shape) error {
	if err := e.Map.Install(root); err != nil {
		e.Logger.Error("snapshot rejected", "err", err)
		return err
	}
	if e.selected != nil {
		e.selected, _ = e.Map.Lookup(e.selected.ID)
	}
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

func (e *Editor) snapshot() {
	e.History.Save(e.Map.Root())
}

func (e *Editor) registered(s *shape.Shape) error {
	if s == nil || !e.Map.Contains(s) {
		return errors.New(errors.ErrCodeNotFound, "shape is not part of this map")
	}
	return nil
}

// target returns the selection for a selection-scoped edit, logging when
// there is none.
func (e *Editor) target(op string) *shape.Shape {
	if e.selected == nil {
		e.reject(op, "nothing selected")
		return nil
	}
	return e.selected
}

func (e *Editor) reject(op, reason string) {
	e.Logger.Warn("ignored", "op", op, "reason", reason)
	observability.Editor().OnRejected(op, reason)
}

func (e *Editor) invalid(op string, err error) error {
	e.Logger.Warn("invalid input", "op", op, "err", errors.UserMessage(err))
	observability.Editor().OnRejected(op, errors.UserMessage(err))
	return err
}

func (e *Editor) applied(op string, s *shape.Shape) {
	e.Logger.Debug("applied", "op", op, "id", s.ID)
	observability.Editor().OnMutation(op, s.ID)
}
