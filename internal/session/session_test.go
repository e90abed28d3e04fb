package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/campusnav/internal/facility"
	"github.com/roach88/campusnav/internal/navstate"
	"github.com/roach88/campusnav/internal/store"
	"github.com/roach88/campusnav/internal/testutil"
	"github.com/roach88/campusnav/internal/viewport"
)

var (
	library = facility.Facility{
		ID: "lib", Name: "Main Library", Code: "LIB",
		Category: facility.CategoryLibrary, Lat: 40.7128, Lng: -74.0060,
	}
	gym = facility.Facility{
		ID: "gym", Name: "Gymnasium", Code: "GYM",
		Category: facility.CategorySports, Lat: 40.7140, Lng: -74.0010,
	}
	pool = facility.Room{ID: "gym-pool", FacilityID: "gym", Code: "B12", Name: "Pool"}
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fixture struct {
	clk   *testutil.ManualClock
	hist  *testutil.FakeHistory
	cam   *testutil.FakeCamera
	sess  *Session
	trace []navstate.Transition
}

func newFixture(t *testing.T, url string, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		clk:  testutil.NewManualClock(),
		hist: testutil.NewFakeHistory(url),
		cam:  testutil.NewFakeCamera(viewport.LatLng{Lat: 40.7, Lng: -74.0}, 15),
	}
	base := []Option{
		WithClock(f.clk),
		WithCamera(f.cam, viewport.DefaultOptions()),
		WithLogger(discard),
		WithTokenGenerator(testutil.NewFixedTokenGenerator("sess-1")),
		WithRecorder(func(tr navstate.Transition) {
			f.trace = append(f.trace, tr)
		}),
	}
	f.sess = New(f.hist, append(base, opts...)...)
	f.hist.OnChange = func(path, rawQuery string) {
		f.sess.Enqueue(Location(path, rawQuery))
	}
	t.Cleanup(f.sess.Close)
	return f
}

func (f *fixture) do(t *testing.T, cmds ...Command) {
	t.Helper()
	for _, c := range cmds {
		require.NoError(t, f.sess.Submit(c))
	}
	f.sess.Step()
}

func (f *fixture) advance(d time.Duration) {
	f.clk.Advance(d)
	f.sess.Step()
}

func (f *fixture) load(t *testing.T, facilities []facility.Facility, rooms []facility.Room) {
	t.Helper()
	src := facility.NewMemorySource(facilities, rooms)
	require.NoError(t, f.sess.Load(context.Background(), src))
	f.sess.Step()
}

func (f *fixture) count(kind navstate.TransitionKind) int {
	n := 0
	for _, tr := range f.trace {
		if tr.Kind == kind {
			n++
		}
	}
	return n
}

func ids(items []facility.Facility) []string {
	out := make([]string, 0, len(items))
	for _, f := range items {
		out = append(out, f.ID)
	}
	return out
}

func TestSession_SearchSelectAndMapClick(t *testing.T) {
	f := newFixture(t, "/")
	f.load(t, []facility.Facility{library, gym}, nil)

	f.do(t, Type("libra"))
	v := f.sess.Snapshot()
	assert.Equal(t, "libra", v.State.SearchQuery)
	assert.Equal(t, "", v.State.DebouncedQuery)
	assert.Equal(t, []string{"lib", "gym"}, ids(v.Results), "unsettled text does not filter")
	assert.Equal(t, "/", v.URL)

	f.advance(300 * time.Millisecond)
	v = f.sess.Snapshot()
	assert.Equal(t, []string{"lib"}, ids(v.Results))
	assert.Equal(t, 1, v.MatchCount)
	assert.Equal(t, "/?q=libra", v.URL)

	f.do(t, Select("lib"))
	v = f.sess.Snapshot()
	assert.Equal(t, navstate.PhaseResolved, v.Phase)
	assert.Equal(t, "/?facility=lib&q=libra", v.URL)
	flights := f.cam.Flights()
	require.Len(t, flights, 1)
	assert.Equal(t, viewport.LatLng{Lat: library.Lat, Lng: library.Lng}, flights[0].Target)
	assert.Equal(t, float64(17), flights[0].Zoom)

	f.do(t, MapClick(true))
	assert.Equal(t, navstate.PhaseResolved, f.sess.Snapshot().Phase, "marker clicks never deselect")

	f.do(t, MapClick(false))
	v = f.sess.Snapshot()
	assert.Equal(t, navstate.PhaseIdle, v.Phase)
	assert.True(t, v.ClosingGuard)
	assert.Equal(t, "/?q=libra", v.URL)
	flights = f.cam.Flights()
	require.Len(t, flights, 2)
	assert.Equal(t, float64(16), flights[1].Zoom)

	f.advance(100 * time.Millisecond)
	assert.False(t, f.sess.Snapshot().ClosingGuard)
}

func TestSession_DeepLinkResolvesOnce(t *testing.T) {
	f := newFixture(t, "/?facility=lib")
	assert.Equal(t, navstate.PhasePending, f.sess.Snapshot().Phase)
	assert.Empty(t, f.cam.Flights())

	f.load(t, []facility.Facility{library, gym}, nil)
	v := f.sess.Snapshot()
	assert.Equal(t, navstate.PhaseResolved, v.Phase)
	assert.Equal(t, "lib", v.State.SelectedID())
	assert.Len(t, f.cam.Flights(), 1)

	f.load(t, []facility.Facility{library, gym}, nil)
	assert.Equal(t, 1, f.count(navstate.KindResolve))
	assert.Len(t, f.cam.Flights(), 1, "a confirmed selection does not re-animate")
}

func TestSession_SelectBeforeLoadStaysPending(t *testing.T) {
	f := newFixture(t, "/")

	f.do(t, Select("gym"))
	v := f.sess.Snapshot()
	assert.Equal(t, navstate.PhasePending, v.Phase)
	assert.Equal(t, "/?facility=gym", v.URL)

	f.load(t, []facility.Facility{library, gym}, nil)
	assert.Equal(t, "gym", f.sess.Snapshot().State.SelectedID())
}

func TestSession_SelectWithoutIDIgnored(t *testing.T) {
	f := newFixture(t, "/")
	f.load(t, []facility.Facility{library}, nil)

	f.do(t, Select("  "))
	assert.Equal(t, navstate.PhaseIdle, f.sess.Snapshot().Phase)
	assert.Empty(t, f.trace)
}

func TestSession_LoadFailureKeepsPending(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	f := newFixture(t, "/?facility=lib", WithMetrics(m))

	src := facility.NewMemorySource([]facility.Facility{library}, nil)
	src.FailWith(errors.New("connection refused"))

	err := f.sess.Load(context.Background(), src)
	require.Error(t, err)
	assert.True(t, IsLoadFailed(err))
	assert.Contains(t, err.Error(), "connection refused")
	f.sess.Step()

	v := f.sess.Snapshot()
	assert.Equal(t, navstate.PhasePending, v.Phase)
	assert.False(t, v.Loaded)
	assert.Equal(t, float64(1), promtest.ToFloat64(m.loadFailures))

	src.FailWith(nil)
	require.NoError(t, f.sess.Load(context.Background(), src))
	f.sess.Step()
	assert.Equal(t, navstate.PhaseResolved, f.sess.Snapshot().Phase)
}

func TestSession_RoomCodeSearch(t *testing.T) {
	f := newFixture(t, "/")
	f.load(t, []facility.Facility{library, gym}, []facility.Room{pool})

	f.do(t, Type("b12"), FlushSearch())
	v := f.sess.Snapshot()
	assert.Equal(t, []string{"gym"}, ids(v.Results), "map matches room codes")
	assert.Empty(t, v.Directory, "directory ignores room matches")
	assert.Equal(t, 0, v.DirectoryCount)
}

func TestSession_CategoryAndClearFilters(t *testing.T) {
	f := newFixture(t, "/")
	f.load(t, []facility.Facility{library, gym}, nil)

	f.do(t, SetCategory("Sports"))
	v := f.sess.Snapshot()
	assert.Equal(t, []string{"gym"}, ids(v.Results))
	assert.Equal(t, "/?category=sports", v.URL)

	f.do(t, SetCategory("swimming"))
	assert.Equal(t, []string{"lib", "gym"}, ids(f.sess.Snapshot().Results), "unknown category means all")

	f.do(t, SetCategory("library"), Type("main"))
	f.do(t, ClearFilters())
	v = f.sess.Snapshot()
	assert.Equal(t, "", v.State.SearchQuery)
	assert.Equal(t, facility.Category(""), v.State.SelectedCategory)
	assert.Equal(t, "/", v.URL)
}

func TestSession_TabNavigationCarriesSelection(t *testing.T) {
	f := newFixture(t, "/")
	f.load(t, []facility.Facility{library, gym}, nil)
	f.do(t, Select("lib"))
	f.trace = nil

	f.do(t, SetTab("directory", false))
	v := f.sess.Snapshot()
	assert.Equal(t, navstate.TabDirectory, v.State.ActiveTab)
	assert.Equal(t, "/directory?facility=lib", v.URL)
	assert.False(t, v.NavigationGuard, "the router echo settles the navigation")
	assert.Equal(t, []string{"/directory?facility=lib"}, f.hist.Pushes())

	kinds := make([]navstate.TransitionKind, 0, len(f.trace))
	for _, tr := range f.trace {
		kinds = append(kinds, tr.Kind)
	}
	assert.Equal(t, []navstate.TransitionKind{
		navstate.KindTab,
		navstate.KindURLPush,
		navstate.KindNavigationSettled,
	}, kinds)

	f.do(t, SetTab("chat", true))
	v = f.sess.Snapshot()
	assert.Equal(t, "/chat", v.URL)
	assert.Equal(t, navstate.PhaseIdle, v.Phase)
}

func TestSession_UnknownTabIgnored(t *testing.T) {
	f := newFixture(t, "/")
	f.do(t, SetTab("settings", false))
	assert.Equal(t, navstate.TabMap, f.sess.Snapshot().State.ActiveTab)
	assert.Empty(t, f.hist.Pushes())
}

func TestSession_BackRestoresSelection(t *testing.T) {
	f := newFixture(t, "/")
	f.load(t, []facility.Facility{library, gym}, nil)

	f.do(t, Select("lib"))
	f.do(t, SetTab("directory", true))
	assert.Equal(t, navstate.PhaseIdle, f.sess.Snapshot().Phase)

	require.True(t, f.hist.Back())
	f.sess.Step()
	v := f.sess.Snapshot()
	assert.Equal(t, navstate.TabMap, v.State.ActiveTab)
	assert.Equal(t, "lib", v.State.SelectedID())
}

type recordingJournal struct {
	mu      sync.Mutex
	records []store.TransitionRecord
	err     error
}

func (j *recordingJournal) AppendTransition(ctx context.Context, rec store.TransitionRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	j.records = append(j.records, rec)
	return nil
}

func TestSession_JournalsTransitions(t *testing.T) {
	j := &recordingJournal{}
	f := newFixture(t, "/?facility=lib", WithJournal(j))
	f.load(t, []facility.Facility{library}, nil)

	require.Len(t, j.records, 2)
	assert.Equal(t, store.TransitionRecord{
		Session: "sess-1", Seq: 1, Kind: "request", FacilityID: "lib", At: testutil.Epoch,
	}, j.records[0])
	assert.Equal(t, "resolve", j.records[1].Kind)
	assert.Equal(t, int64(2), j.records[1].Seq)
}

func TestSession_JournalFailureDoesNotStopSession(t *testing.T) {
	j := &recordingJournal{err: errors.New("disk full")}
	f := newFixture(t, "/", WithJournal(j))
	f.load(t, []facility.Facility{library}, nil)

	f.do(t, Select("lib"))
	assert.Equal(t, "lib", f.sess.Snapshot().State.SelectedID())
}

func TestSession_JournalToSQLite(t *testing.T) {
	db, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := newFixture(t, "/", WithJournal(db))
	f.load(t, []facility.Facility{library}, nil)
	f.do(t, Select("lib"), CloseSelection())

	recs, err := db.ReadTransitions(context.Background(), "sess-1")
	require.NoError(t, err)
	kinds := make([]string, 0, len(recs))
	for _, r := range recs {
		kinds = append(kinds, r.Kind)
	}
	assert.Equal(t, []string{"select", "url_replace", "close", "url_replace"}, kinds)
}

func TestSession_Metrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	f := newFixture(t, "/", WithMetrics(m))
	f.load(t, []facility.Facility{library}, nil)

	f.do(t, Select("lib"), CloseSelection())
	f.hist.Navigate("/?facility=lib")
	f.sess.Step()

	assert.Equal(t, navstate.PhaseIdle, f.sess.Snapshot().Phase)
	assert.Equal(t, float64(1), promtest.ToFloat64(m.transitions.WithLabelValues("select")))
	assert.Equal(t, float64(1), promtest.ToFloat64(m.suppressions.WithLabelValues("closing")))
	assert.Equal(t, float64(0), promtest.ToFloat64(m.suppressions.WithLabelValues("navigation")))
	assert.Equal(t, float64(1), promtest.ToFloat64(m.commands.WithLabelValues("select")))
	assert.Equal(t, float64(1), promtest.ToFloat64(m.commands.WithLabelValues("facilities_loaded")))
}

func TestSession_SubmitAfterClose(t *testing.T) {
	f := newFixture(t, "/")
	f.sess.Close()

	err := f.sess.Submit(Type("gym"))
	require.Error(t, err)
	assert.True(t, IsClosed(err))
	assert.False(t, f.sess.Enqueue(Type("gym")))
	assert.Equal(t, 0, f.sess.Step())
}

func TestSession_CloseCancelsTimers(t *testing.T) {
	f := newFixture(t, "/")
	f.do(t, Type("gym"))
	f.sess.Close()

	f.clk.Advance(time.Second)
	f.sess.Step()
	assert.Equal(t, "", f.sess.Snapshot().State.DebouncedQuery)
}

func TestSession_RunWithRealClock(t *testing.T) {
	hist := testutil.NewFakeHistory("/")
	sess := New(hist,
		WithLogger(discard),
		WithStoreOptions(navstate.WithDebounce(10*time.Millisecond)),
	)
	hist.OnChange = func(path, rawQuery string) {
		sess.Enqueue(Location(path, rawQuery))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()

	go func() {
		_ = sess.Load(ctx, facility.NewMemorySource([]facility.Facility{library, gym}, nil))
	}()
	require.NoError(t, sess.Submit(Type("gym")))

	require.Eventually(t, func() bool {
		v := sess.Snapshot()
		return v.Loaded && v.URL == "/?q=gym" && len(v.Results) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.NotEmpty(t, sess.Token())

	sess.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestSession_RunStopsOnCancel(t *testing.T) {
	sess := New(testutil.NewFakeHistory("/"), WithLogger(discard))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.True(t, IsClosed(sess.Submit(Type("x"))))
}

func TestCommandKind_String(t *testing.T) {
	assert.Equal(t, "map_click", CommandMapClick.String())
	assert.Equal(t, "timer", commandTimer.String())
	assert.Equal(t, "unknown", CommandKind(99).String())
}
