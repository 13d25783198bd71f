package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adforge/pkg/catalog"
	"adforge/pkg/model"
	"adforge/pkg/picture"
)

type fakeCatalog struct {
	products map[string]*model.ProductSnapshot
}

func (f *fakeCatalog) GetProduct(ctx context.Context, id string) (*model.ProductSnapshot, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", catalog.ErrNotFound, id)
	}
	return p, nil
}

type fakeFetcher struct {
	img *picture.Image
	err error
}

func (f *fakeFetcher) Fetch(ctx context.Context, ref string) (*picture.Image, error) {
	return f.img, f.err
}

// fakeGen scripts the external operation. When doneAfter is set, polls
// before the Nth report a pending operation and later ones return pollResult.
type fakeGen struct {
	submitErr   error
	pollResult  PollResult
	pollErr     error
	downloadErr error
	video       []byte
	doneAfter   int32

	submits   int32
	polls     int32
	downloads int32
}

func (g *fakeGen) Submit(ctx context.Context, promptText string, img *picture.Image) (Handle, error) {
	atomic.AddInt32(&g.submits, 1)
	if g.submitErr != nil {
		return nil, g.submitErr
	}
	return "op-1", nil
}

func (g *fakeGen) Poll(ctx context.Context, h Handle) (PollResult, error) {
	n := atomic.AddInt32(&g.polls, 1)
	if g.pollErr != nil {
		return PollResult{}, g.pollErr
	}
	if n < g.doneAfter {
		return PollResult{}, nil
	}
	return g.pollResult, nil
}

func (g *fakeGen) Download(ctx context.Context, h Handle) ([]byte, error) {
	atomic.AddInt32(&g.downloads, 1)
	if g.downloadErr != nil {
		return nil, g.downloadErr
	}
	return g.video, nil
}

type fakeStore struct {
	mu       sync.Mutex
	files    map[string][]byte
	persists int
	err      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: make(map[string][]byte)}
}

func (s *fakeStore) Persist(key string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persists++
	if s.err != nil {
		return "", s.err
	}
	s.files[key] = data
	return "/videos/" + key, nil
}

func testProduct() *model.ProductSnapshot {
	return &model.ProductSnapshot{
		ID:          "P1",
		Name:        "Gold Watch",
		Description: "A shiny gold watch",
		Picture:     "/static/img/watch.jpg",
		Price:       model.Money{CurrencyCode: "USD", Units: 109, Nanos: 99},
		Categories:  []string{"accessories"},
	}
}

func newTestManager(gen *fakeGen, st *fakeStore) *Manager {
	cat := &fakeCatalog{products: map[string]*model.ProductSnapshot{"P1": testProduct()}}
	return NewManager(cat, &fakeFetcher{}, gen, st, nil)
}

func TestStart_UnknownProductFailsJob(t *testing.T) {
	gen := &fakeGen{}
	m := newTestManager(gen, newFakeStore())

	id, err := m.Start(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalog.ErrNotFound))

	view := m.CheckStatus(context.Background(), id)
	assert.Equal(t, model.StatusFailed, view.Status)
	assert.Contains(t, view.Error, "nope")
	assert.Equal(t, int32(0), gen.submits)
}

func TestStart_ImageFailureIsNotFatal(t *testing.T) {
	gen := &fakeGen{}
	cat := &fakeCatalog{products: map[string]*model.ProductSnapshot{"P1": testProduct()}}
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	m := NewManager(cat, fetcher, gen, newFakeStore(), nil)

	id, err := m.Start(context.Background(), "P1")
	require.NoError(t, err)

	view := m.CheckStatus(context.Background(), id)
	assert.Equal(t, model.StatusGenerating, view.Status)
	assert.Empty(t, view.Error)
}

func TestStart_SubmitErrorFailsJob(t *testing.T) {
	gen := &fakeGen{submitErr: errors.New("quota exceeded")}
	m := newTestManager(gen, newFakeStore())

	id, err := m.Start(context.Background(), "P1")
	require.Error(t, err)

	view := m.CheckStatus(context.Background(), id)
	assert.Equal(t, model.StatusFailed, view.Status)
	assert.Contains(t, view.Error, "quota exceeded")
}

func TestCheckStatus_UnknownJob(t *testing.T) {
	m := newTestManager(&fakeGen{}, newFakeStore())

	view := m.CheckStatus(context.Background(), "missing")
	assert.Equal(t, model.StatusNotFound, view.Status)
	assert.Len(t, m.jobs, 0, "lookup must not mutate the registry")
}

func TestCheckStatus_PendingStaysGenerating(t *testing.T) {
	gen := &fakeGen{pollResult: PollResult{Done: false}}
	m := newTestManager(gen, newFakeStore())

	id, err := m.Start(context.Background(), "P1")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		view := m.CheckStatus(context.Background(), id)
		assert.Equal(t, model.StatusGenerating, view.Status)
	}
	assert.Equal(t, int32(3), gen.polls, "each status check polls exactly once")
}

func TestCheckStatus_AdvancesThroughLifecycle(t *testing.T) {
	gen := &fakeGen{
		pollResult: PollResult{Done: true, HasVideo: true},
		video:      []byte("mp4-bytes"),
		doneAfter:  3,
	}
	st := newFakeStore()
	m := newTestManager(gen, st)

	id, err := m.Start(context.Background(), "P1")
	require.NoError(t, err)

	// The operation stays pending for two checks, then finishes.
	var statuses []model.JobStatus
	for i := 0; i < 3; i++ {
		statuses = append(statuses, m.CheckStatus(context.Background(), id).Status)
	}
	assert.Equal(t, []model.JobStatus{
		model.StatusGenerating,
		model.StatusGenerating,
		model.StatusCompleted,
	}, statuses)
	assert.Equal(t, []byte("mp4-bytes"), st.files[id+".mp4"])
}

func TestCheckStatus_CompletionPersistsVideo(t *testing.T) {
	gen := &fakeGen{
		pollResult: PollResult{Done: true, HasVideo: true},
		video:      []byte("mp4-bytes"),
	}
	st := newFakeStore()
	m := newTestManager(gen, st)

	id, err := m.Start(context.Background(), "P1")
	require.NoError(t, err)

	view := m.CheckStatus(context.Background(), id)
	require.Equal(t, model.StatusCompleted, view.Status)
	assert.Equal(t, id+".mp4", view.VideoFilename)
	assert.Equal(t, []byte("mp4-bytes"), st.files[id+".mp4"])
	require.NotNil(t, view.Product)
	assert.Equal(t, "Gold Watch", view.Product.Name)

	// Terminal: a further check must not contact the operation again.
	polls := gen.polls
	view = m.CheckStatus(context.Background(), id)
	assert.Equal(t, model.StatusCompleted, view.Status)
	assert.Equal(t, polls, gen.polls)
}

func TestCheckStatus_EmptyResultIsTerminalFailure(t *testing.T) {
	gen := &fakeGen{pollResult: PollResult{Done: true, HasVideo: false}}
	m := newTestManager(gen, newFakeStore())

	id, err := m.Start(context.Background(), "P1")
	require.NoError(t, err)

	view := m.CheckStatus(context.Background(), id)
	require.Equal(t, model.StatusFailed, view.Status)
	assert.Equal(t, ErrEmptyResult.Error(), view.Error)

	polls := gen.polls
	view = m.CheckStatus(context.Background(), id)
	assert.Equal(t, model.StatusFailed, view.Status)
	assert.Equal(t, polls, gen.polls, "terminal job must not be re-polled")
}

func TestCheckStatus_PollErrorFailsJob(t *testing.T) {
	gen := &fakeGen{pollErr: errors.New("deadline exceeded")}
	m := newTestManager(gen, newFakeStore())

	id, err := m.Start(context.Background(), "P1")
	require.NoError(t, err)

	view := m.CheckStatus(context.Background(), id)
	assert.Equal(t, model.StatusFailed, view.Status)
	assert.Contains(t, view.Error, "deadline exceeded")
}

func TestCheckStatus_DownloadErrorFailsJob(t *testing.T) {
	gen := &fakeGen{
		pollResult:  PollResult{Done: true, HasVideo: true},
		downloadErr: errors.New("file gone"),
	}
	m := newTestManager(gen, newFakeStore())

	id, err := m.Start(context.Background(), "P1")
	require.NoError(t, err)

	view := m.CheckStatus(context.Background(), id)
	assert.Equal(t, model.StatusFailed, view.Status)
	assert.Contains(t, view.Error, "failed to download video")
}

func TestCheckStatus_PersistErrorFailsJob(t *testing.T) {
	gen := &fakeGen{
		pollResult: PollResult{Done: true, HasVideo: true},
		video:      []byte("mp4-bytes"),
	}
	st := newFakeStore()
	st.err = errors.New("disk full")
	m := newTestManager(gen, st)

	id, err := m.Start(context.Background(), "P1")
	require.NoError(t, err)

	view := m.CheckStatus(context.Background(), id)
	assert.Equal(t, model.StatusFailed, view.Status)
	assert.Contains(t, view.Error, "disk full")
}

func TestCheckStatus_ConcurrentCompletionPersistsOnce(t *testing.T) {
	gen := &fakeGen{
		pollResult: PollResult{Done: true, HasVideo: true},
		video:      []byte("mp4-bytes"),
	}
	st := newFakeStore()
	m := newTestManager(gen, st)

	id, err := m.Start(context.Background(), "P1")
	require.NoError(t, err)

	const callers = 16
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			view := m.CheckStatus(context.Background(), id)
			assert.Equal(t, model.StatusCompleted, view.Status)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, st.persists, "completion side effect must run at most once")
	assert.Equal(t, int32(1), gen.polls, "only the first caller should reach the operation")
	assert.Equal(t, int32(1), gen.downloads)
}
