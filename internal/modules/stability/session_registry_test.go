package stability

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/modules/trit"
)

type recordingListener struct {
	mu          sync.Mutex
	created     []string
	runs        []Report
	corrections []CorrectionEvent
	deleted     []string
}

func (l *recordingListener) SessionCreated(info SessionInfo) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.created = append(l.created, info.ID)
}

func (l *recordingListener) SessionRun(_ SessionInfo, report Report) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runs = append(l.runs, report)
}

func (l *recordingListener) LeakCorrected(_ string, ev CorrectionEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.corrections = append(l.corrections, ev)
}

func (l *recordingListener) SessionDeleted(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deleted = append(l.deleted, id)
}

func newTestRegistry(maxSessions int) *SessionRegistry {
	return NewSessionRegistry(DefaultParams(), maxSessions, zerolog.New(nil).Level(zerolog.Disabled))
}

func seedPtr(v uint64) *uint64 { return &v }

func TestSessionRegistry_CreateAndGet(t *testing.T) {
	reg := newTestRegistry(0)

	info, err := reg.Create(CreateRequest{Initial: 2, Seed: seedPtr(11)})
	require.NoError(t, err)
	assert.NotEmpty(t, info.ID)
	assert.Equal(t, uint64(11), info.Seed)
	assert.Equal(t, "sovereign", info.State)
	assert.Equal(t, 1.0, info.Coherence)
	assert.Nil(t, info.LastRun)

	got, err := reg.Get(info.ID)
	require.NoError(t, err)
	assert.Equal(t, info, got)
	assert.Equal(t, 1, reg.Count())
}

func TestSessionRegistry_CreateInvalidInitial(t *testing.T) {
	reg := newTestRegistry(0)
	_, err := reg.Create(CreateRequest{Initial: 3})
	assert.ErrorIs(t, err, trit.ErrInvalidState)
	assert.Zero(t, reg.Count())
}

func TestSessionRegistry_CreateInvalidParams(t *testing.T) {
	reg := newTestRegistry(0)
	bad := Params{NoiseProbability: 0.1, DecayFactor: 1.5, RecoveryFactor: 1.01}
	_, err := reg.Create(CreateRequest{Initial: 0, Params: &bad})
	assert.ErrorIs(t, err, ErrInvalidParams)
	assert.Zero(t, reg.Count())
}

func TestSessionRegistry_Limit(t *testing.T) {
	reg := newTestRegistry(2)
	for i := 0; i < 2; i++ {
		_, err := reg.Create(CreateRequest{Initial: i})
		require.NoError(t, err)
	}
	_, err := reg.Create(CreateRequest{Initial: 0})
	assert.ErrorIs(t, err, ErrSessionLimit)
}

func TestSessionRegistry_RunIsReproducible(t *testing.T) {
	reg := newTestRegistry(0)
	a, err := reg.Create(CreateRequest{Initial: 1, Seed: seedPtr(123)})
	require.NoError(t, err)
	b, err := reg.Create(CreateRequest{Initial: 1, Seed: seedPtr(123)})
	require.NoError(t, err)

	ra, infoA, err := reg.Run(a.ID, 100)
	require.NoError(t, err)
	rb, infoB, err := reg.Run(b.ID, 100)
	require.NoError(t, err)

	assert.Equal(t, ra, rb)
	assert.Equal(t, infoA.Bits, infoB.Bits)
	assert.Equal(t, 1, infoA.Runs)
	require.NotNil(t, infoA.LastRun)
	assert.Equal(t, ra, *infoA.LastRun)
	assert.Equal(t, uint64(100), infoA.TotalSteps)
}

func TestSessionRegistry_UnknownSession(t *testing.T) {
	reg := newTestRegistry(0)

	_, err := reg.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, _, err = reg.Run("missing", 1)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, reg.Delete("missing"), ErrSessionNotFound)
}

func TestSessionRegistry_ListAndDelete(t *testing.T) {
	reg := newTestRegistry(0)
	ids := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		info, err := reg.Create(CreateRequest{Initial: i})
		require.NoError(t, err)
		ids = append(ids, info.ID)
	}

	list := reg.List()
	require.Len(t, list, 3)
	for _, info := range list {
		assert.Contains(t, ids, info.ID)
	}

	require.NoError(t, reg.Delete(ids[1]))
	assert.Len(t, reg.List(), 2)
	_, err := reg.Get(ids[1])
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionRegistry_RunAll(t *testing.T) {
	reg := newTestRegistry(0)
	for i := 0; i < 3; i++ {
		_, err := reg.Create(CreateRequest{Initial: i, Seed: seedPtr(uint64(i))})
		require.NoError(t, err)
	}

	results := reg.RunAll(25)
	require.Len(t, results, 3)
	for _, res := range results {
		assert.Equal(t, uint32(25), res.Report.Steps)
		info, err := reg.Get(res.SessionID)
		require.NoError(t, err)
		assert.Equal(t, uint64(25), info.TotalSteps)
	}
}

func TestSessionRegistry_Listener(t *testing.T) {
	reg := newTestRegistry(0)
	listener := &recordingListener{}
	reg.SetListener(listener)

	always := Params{NoiseProbability: 1, DecayFactor: 0.95, RecoveryFactor: 1.01}
	info, err := reg.Create(CreateRequest{Initial: 1, Seed: seedPtr(8), Params: &always})
	require.NoError(t, err)

	report, _, err := reg.Run(info.ID, 200)
	require.NoError(t, err)
	require.NoError(t, reg.Delete(info.ID))

	assert.Equal(t, []string{info.ID}, listener.created)
	assert.Equal(t, []Report{report}, listener.runs)
	assert.Len(t, listener.corrections, int(report.Corrections))
	assert.Equal(t, []string{info.ID}, listener.deleted)
}

func TestSessionRegistry_InjectLeak(t *testing.T) {
	reg := newTestRegistry(0)
	quiet := Params{NoiseProbability: 0, DecayFactor: 0.95, RecoveryFactor: 1.01}
	info, err := reg.Create(CreateRequest{Initial: 2, Params: &quiet})
	require.NoError(t, err)

	leaked, err := reg.InjectLeak(info.ID)
	require.NoError(t, err)
	assert.Equal(t, "forbidden", leaked.State)

	report, after, err := reg.Run(info.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), report.Corrections)
	assert.Equal(t, "void", after.State)
	assert.Equal(t, uint64(1), after.Corrections)

	_, err = reg.InjectLeak("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionRegistry_DefaultSeed(t *testing.T) {
	reg := newTestRegistry(0)
	reg.SetDefaultSeed(seedPtr(99))

	a, err := reg.Create(CreateRequest{Initial: 0})
	require.NoError(t, err)
	b, err := reg.Create(CreateRequest{Initial: 0, Seed: seedPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, uint64(99), a.Seed)
	assert.Equal(t, uint64(5), b.Seed)

	reg.SetDefaultSeed(nil)
	c, err := reg.Create(CreateRequest{Initial: 0})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, c.ID)
}

func TestSessionRegistry_ConcurrentRuns(t *testing.T) {
	reg := newTestRegistry(0)
	info, err := reg.Create(CreateRequest{Initial: 0, Seed: seedPtr(4)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := reg.Run(info.ID, 50)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := reg.Get(info.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(400), got.TotalSteps)
	assert.Equal(t, 8, got.Runs)
}

func TestSessionRegistry_ListenerSetAfterCreate(t *testing.T) {
	reg := newTestRegistry(0)
	quiet := Params{NoiseProbability: 0, DecayFactor: 0.95, RecoveryFactor: 1.01}
	info, err := reg.Create(CreateRequest{Initial: 1, Params: &quiet})
	require.NoError(t, err)

	listener := &recordingListener{}
	reg.SetListener(listener)

	_, err = reg.InjectLeak(info.ID)
	require.NoError(t, err)
	_, _, err = reg.Run(info.ID, 1)
	require.NoError(t, err)

	require.Len(t, listener.corrections, 1)
	assert.Equal(t, uint64(1), listener.corrections[0].Corrections)

	reg.SetListener(nil)
	_, err = reg.InjectLeak(info.ID)
	require.NoError(t, err)
	_, _, err = reg.Run(info.ID, 1)
	require.NoError(t, err)
	assert.Len(t, listener.corrections, 1)
}
