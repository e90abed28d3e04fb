package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/roach88/campusnav/internal/clock"
	"github.com/roach88/campusnav/internal/facility"
	"github.com/roach88/campusnav/internal/navstate"
	"github.com/roach88/campusnav/internal/search"
	"github.com/roach88/campusnav/internal/store"
	"github.com/roach88/campusnav/internal/viewport"
)

// View is an immutable snapshot published after every command.
// Callers must not modify its slices.
type View struct {
	Session         string              `json:"session"`
	Version         uint64              `json:"version"`
	State           navstate.State      `json:"state"`
	Phase           navstate.Phase      `json:"phase"`
	URL             string              `json:"url"`
	Loaded          bool                `json:"loaded"`
	Results         []facility.Facility `json:"results"`
	MatchCount      int                 `json:"match_count"`
	Directory       []facility.Facility `json:"directory"`
	DirectoryCount  int                 `json:"directory_count"`
	ClosingGuard    bool                `json:"closing_guard"`
	NavigationGuard bool                `json:"navigation_guard"`
}

// Session is one client's navigation session.
//
// CRITICAL: all state below the queue is owned by the loop goroutine (Run
// or Step). Only Enqueue, Submit, Snapshot, Load, Token and Stop may be
// called from elsewhere.
type Session struct {
	token   string
	logger  *slog.Logger
	clock   clock.Clock
	queue   *commandQueue
	metrics *Metrics
	journal Journal
	seq     *clock.Sequence
	ctx     context.Context

	nav       *navstate.Store
	viewport  *viewport.Controller
	recorders []navstate.Observer

	facilities []facility.Facility
	rooms      []facility.Room
	loaded     bool
	version    uint64
	torn       bool

	view atomic.Pointer[View]
}

type options struct {
	clock     clock.Clock
	camera    viewport.Camera
	viewport  viewport.Options
	storeOpts []navstate.Option
	journal   Journal
	metrics   *Metrics
	logger    *slog.Logger
	tokens    TokenGenerator
	recorders []navstate.Observer
}

// Option configures a Session.
type Option func(*options)

// WithClock sets the clock (default clock.Real).
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithCamera attaches a map camera. Without one, selections do not move
// any camera and map clicks are ignored.
func WithCamera(cam viewport.Camera, opts viewport.Options) Option {
	return func(o *options) {
		o.camera = cam
		o.viewport = opts
	}
}

// WithStoreOptions passes options through to the navigation store
// (debounce interval, guard windows).
func WithStoreOptions(opts ...navstate.Option) Option {
	return func(o *options) {
		o.storeOpts = append(o.storeOpts, opts...)
	}
}

// WithJournal appends every transition to j.
func WithJournal(j Journal) Option {
	return func(o *options) {
		o.journal = j
	}
}

// WithMetrics records counters on m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTokenGenerator sets the session token source (default UUIDv7).
func WithTokenGenerator(g TokenGenerator) Option {
	return func(o *options) {
		if g != nil {
			o.tokens = g
		}
	}
}

// WithRecorder registers an observer that sees every transition on the
// loop goroutine.
func WithRecorder(r navstate.Observer) Option {
	return func(o *options) {
		if r != nil {
			o.recorders = append(o.recorders, r)
		}
	}
}

// New creates a session mounted on the current location of history.
//
// To follow back/forward and external navigation, the owner forwards
// every location change as Location(path, rawQuery).
func New(history navstate.History, opts ...Option) *Session {
	o := options{
		clock:  clock.Real{},
		logger: slog.Default(),
		tokens: UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{
		token:     o.tokens.Generate(),
		clock:     o.clock,
		queue:     newCommandQueue(),
		metrics:   o.metrics,
		journal:   o.journal,
		seq:       clock.NewSequence(),
		ctx:       context.Background(),
		recorders: o.recorders,
	}
	s.logger = o.logger.With("session", s.token)

	storeOpts := []navstate.Option{
		navstate.WithLogger(s.logger),
		navstate.WithObserver(s.onTransition),
		navstate.WithResolver(s.lookup),
	}
	storeOpts = append(storeOpts, o.storeOpts...)
	s.nav = navstate.New(history, &loopClock{inner: o.clock, queue: s.queue}, storeOpts...)

	if o.camera != nil {
		s.viewport = viewport.NewController(o.camera, o.viewport)
		s.viewport.SetLogger(s.logger)
		s.viewport.SetClearSelection(func() {
			s.nav.SelectFacility(nil)
		})
	}

	s.publish()
	s.logger.Debug("session created")
	return s
}

// Token returns the session token.
func (s *Session) Token() string {
	return s.token
}

// Enqueue adds a command. Safe from any goroutine.
// Returns false once the session is stopped.
func (s *Session) Enqueue(cmd Command) bool {
	return s.queue.Enqueue(cmd)
}

// Submit is Enqueue with an error for a stopped session.
func (s *Session) Submit(cmd Command) error {
	if !s.queue.Enqueue(cmd) {
		return newClosedError(s.token)
	}
	return nil
}

// Run applies commands until ctx is cancelled or Stop is called.
// Commands already queued when Stop is called are still applied.
//
// Errors never stop the loop: every command is applied or logged, so one
// bad command cannot wedge the session.
func (s *Session) Run(ctx context.Context) error {
	s.ctx = ctx
	s.logger.Info("session starting")
	defer s.teardown()

	for {
		cmd, ok := s.queue.TryDequeue()
		if ok {
			s.apply(cmd)
			continue
		}

		select {
		case <-ctx.Done():
			s.logger.Info("session stopping: context cancelled")
			s.queue.Close()
			return ctx.Err()

		case <-s.queue.Wait():
			// The signal channel is closed once the queue is closed.
			if s.queue.Closed() && s.queue.Len() == 0 {
				s.logger.Info("session stopping: queue closed")
				return nil
			}
		}
	}
}

// Step applies every queued command, including commands enqueued while
// applying, and returns how many ran. For tests and the scenario harness;
// never call it while Run is active.
func (s *Session) Step() int {
	n := 0
	for {
		cmd, ok := s.queue.TryDequeue()
		if !ok {
			return n
		}
		s.apply(cmd)
		n++
	}
}

// Stop closes the queue. Run returns once the queue is drained.
func (s *Session) Stop() {
	s.queue.Close()
}

// Close stops a Step-driven session and tears it down immediately:
// pending timers are cancelled and queued commands are discarded.
func (s *Session) Close() {
	s.queue.Close()
	s.teardown()
}

// Snapshot returns the latest published view. Safe from any goroutine.
func (s *Session) Snapshot() View {
	return *s.view.Load()
}

// roomLister is implemented by sources that can list every room.
type roomLister interface {
	ListRooms(ctx context.Context) ([]facility.Room, error)
}

// Load fetches facilities (and rooms, when src can list them) and
// enqueues the result. It blocks for the fetch; run it on its own
// goroutine to keep the caller responsive.
//
// A failed fetch is still delivered to the loop, which logs it and keeps
// pending selections pending; the returned error has code LOAD_FAILED.
func (s *Session) Load(ctx context.Context, src facility.Source) error {
	facilities, err := src.List(ctx)
	var rooms []facility.Room
	if err == nil {
		if rl, ok := src.(roomLister); ok {
			rooms, err = rl.ListRooms(ctx)
		}
	}
	if err != nil {
		s.Enqueue(FacilitiesLoaded(nil, nil, err))
		return newLoadError(s.token, err)
	}
	if !s.Enqueue(FacilitiesLoaded(facilities, rooms, nil)) {
		return newClosedError(s.token)
	}
	return nil
}

// apply runs one command on the loop.
// CRITICAL: called only from Run or Step - single-writer guarantee.
func (s *Session) apply(cmd Command) {
	if s.torn {
		return
	}
	s.metrics.observeCommand(cmd.Kind)

	switch cmd.Kind {
	case CommandType:
		s.nav.SetSearchQuery(cmd.Text)
	case CommandFlushSearch:
		s.nav.FlushSearch()
	case CommandClearFilters:
		s.nav.ClearFilters()
	case CommandSetCategory:
		c, _ := facility.ParseCategory(cmd.Text)
		s.nav.SetCategory(c)
	case CommandSelect:
		s.selectByID(cmd.Text)
	case CommandCloseSelection:
		s.nav.SelectFacility(nil)
	case CommandSetTab:
		s.setTab(cmd.Text, cmd.Flag)
	case CommandLocation:
		s.nav.ApplyLocation(cmd.Text, cmd.Query)
	case CommandMapClick:
		if s.viewport != nil {
			s.viewport.HandleMapClick(cmd.Flag)
		}
	case CommandFacilitiesLoaded:
		s.applyLoaded(cmd)
	case commandTimer:
		if cmd.fire != nil {
			cmd.fire()
		}
	default:
		logCommandError(s.logger, cmd, fmt.Errorf("unknown command kind: %d", cmd.Kind))
		return
	}

	if s.viewport != nil {
		s.viewport.Observe(s.nav.State().SelectedFacility)
	}
	s.publish()
}

func (s *Session) selectByID(id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		s.logger.Debug("ignoring select without facility id")
		return
	}
	if f, ok := facility.Find(s.facilities, id); ok {
		s.nav.SelectFacility(&f)
		return
	}
	// Not loaded yet: keep it pending until a load resolves it.
	s.nav.RequestFacility(id)
}

func (s *Session) setTab(name string, clearSelection bool) {
	tab, ok := navstate.ParseTab(name)
	if !ok {
		s.logger.Debug("ignoring unknown tab", "tab", name)
		return
	}
	s.nav.SetActiveTab(tab, navstate.NavigateOptions{ClearSelection: clearSelection})
}

func (s *Session) applyLoaded(cmd Command) {
	if cmd.Err != nil {
		s.metrics.observeLoadFailure()
		logCommandError(s.logger, cmd, cmd.Err)
		return
	}
	s.facilities = append([]facility.Facility(nil), cmd.Facilities...)
	s.rooms = append([]facility.Room(nil), cmd.Rooms...)
	s.loaded = true
	s.logger.Debug("facilities loaded", "facilities", len(s.facilities), "rooms", len(s.rooms))
	s.nav.ResolveFrom(s.facilities)
}

func (s *Session) lookup(id string) (facility.Facility, bool) {
	return facility.Find(s.facilities, id)
}

func (s *Session) onTransition(t navstate.Transition) {
	seq := s.seq.Next()
	s.metrics.observeTransition(t)
	for _, r := range s.recorders {
		r(t)
	}
	if s.journal == nil {
		return
	}
	rec := store.TransitionRecord{
		Session:    s.token,
		Seq:        seq,
		Kind:       string(t.Kind),
		FacilityID: t.FacilityID,
		Tab:        string(t.Tab),
		URL:        t.URL,
		Value:      t.Value,
		At:         s.clock.Now(),
	}
	if err := s.journal.AppendTransition(s.ctx, rec); err != nil {
		s.logger.Error("journal append failed", "seq", seq, "kind", t.Kind, "error", err)
	}
}

func (s *Session) publish() {
	st := s.nav.State()
	term := st.DebouncedQuery
	mapResult := search.Filter(s.facilities, term, st.SelectedCategory, search.MatchRooms(s.rooms, term))
	dirResult := search.Filter(s.facilities, term, st.SelectedCategory, nil)

	s.version++
	s.view.Store(&View{
		Session:         s.token,
		Version:         s.version,
		State:           st,
		Phase:           st.Phase(),
		URL:             s.nav.URL(),
		Loaded:          s.loaded,
		Results:         mapResult.Results,
		MatchCount:      mapResult.MatchCount,
		Directory:       dirResult.Results,
		DirectoryCount:  dirResult.MatchCount,
		ClosingGuard:    s.nav.ClosingGuardActive(),
		NavigationGuard: s.nav.NavigationGuardActive(),
	})
}

func (s *Session) teardown() {
	if s.torn {
		return
	}
	s.torn = true
	s.nav.Close()
	s.logger.Debug("session torn down")
}

// logCommandError logs a failed command with enough context to replay it.
func logCommandError(l *slog.Logger, cmd Command, err error) {
	l.Error("command failed",
		"command", cmd.Kind.String(),
		"text", cmd.Text,
		"error", err,
	)
}
