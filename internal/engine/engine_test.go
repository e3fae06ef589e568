package engine

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grabd/internal/classify"
	"grabd/internal/history"
	"grabd/internal/hub"
	"grabd/internal/message"
)

// fakeBackend is an in-memory clipboard whose change counter advances on
// every write, like the real platform counters.
type fakeBackend struct {
	mu    sync.Mutex
	count uint64
	text  string
	img   []byte
	files []string
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) ChangeCount() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count, nil
}

func (b *fakeBackend) ReadText() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

func (b *fakeBackend) ReadImage() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.img
}

func (b *fakeBackend) ReadFiles() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.files
}

func (b *fakeBackend) WriteText(text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text, b.img, b.files = text, nil, nil
	b.count++
	return nil
}

func (b *fakeBackend) WriteImage(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text, b.img, b.files = "", data, nil
	b.count++
	return nil
}

func (b *fakeBackend) Close() {}

// External applications writing to the clipboard.
func (b *fakeBackend) externalCopy(text string) {
	_ = b.WriteText(text)
}

func (b *fakeBackend) externalCopyImage(data []byte) {
	_ = b.WriteImage(data)
}

func (b *fakeBackend) externalCopyFiles(paths []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text, b.img, b.files = "", nil, paths
	b.count++
}

type fakeDurable struct {
	mu         sync.Mutex
	appended   []history.Entry
	deleted    []string
	failAppend bool
}

func (d *fakeDurable) Append(e history.Entry) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failAppend {
		return assert.AnError
	}
	d.appended = append(d.appended, e)
	return nil
}

func (d *fakeDurable) Delete(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deleted = append(d.deleted, id)
	return nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	eng     *Engine
	backend *fakeBackend
	durable *fakeDurable
	clock   *fakeClock
}

func newFixture(cfg Config) *fixture {
	backend := &fakeBackend{}
	durable := &fakeDurable{}
	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	eng := New(cfg, backend, history.NewStore(), history.NewCache(0), durable, hub.New())
	eng.now = clock.now
	return &fixture{eng: eng, backend: backend, durable: durable, clock: clock}
}

// A sentence long and wordy enough to pass every pre-acceptance filter.
const goodText = "The quick brown fox jumps over the lazy dog today"

func TestShortTextNeverRecorded(t *testing.T) {
	f := newFixture(Config{})
	for _, text := range []string{"", "hi", "short snippet"} {
		f.backend.externalCopy(text)
		f.eng.settle()
	}
	assert.Equal(t, 0, f.eng.Store().Len())
}

func TestSelectionFragmentsRejected(t *testing.T) {
	f := newFixture(Config{})

	// Single token without whitespace, under 150 chars.
	f.backend.externalCopy("supercalifragilisticexpialidocious")
	f.eng.settle()
	// Under five words and under 100 chars.
	f.backend.externalCopy("three word fragment")
	f.eng.settle()

	assert.Equal(t, 0, f.eng.Store().Len())
}

func TestNearDuplicateRejected(t *testing.T) {
	f := newFixture(Config{})

	f.backend.externalCopy(goodText)
	f.eng.settle()
	require.Equal(t, 1, f.eng.Store().Len())

	f.backend.externalCopy(goodText + "!")
	f.eng.settle()
	assert.Equal(t, 1, f.eng.Store().Len(), "near-duplicate must be rejected")

	f.backend.externalCopy("A completely different sentence about winter weather patterns.")
	f.eng.settle()
	assert.Equal(t, 2, f.eng.Store().Len())
}

func TestLongTextOnlyExactMatchRejected(t *testing.T) {
	f := newFixture(Config{})

	long := strings.Repeat("a long paragraph of copied prose ", 40) // > 1000 chars
	f.backend.externalCopy(long)
	f.eng.settle()
	require.Equal(t, 1, f.eng.Store().Len())

	// Identical beyond the length cap: rejected by byte equality.
	f.eng.settle()
	assert.Equal(t, 1, f.eng.Store().Len())

	// Similar but not identical: edit distance is skipped, so accepted.
	f.backend.externalCopy(long + " trailing addition")
	f.eng.settle()
	assert.Equal(t, 2, f.eng.Store().Len())
}

func TestSettleIdempotent(t *testing.T) {
	f := newFixture(Config{})
	f.backend.externalCopy(goodText)

	f.eng.settle()
	f.eng.settle()
	f.eng.settle()

	assert.Equal(t, 1, f.eng.Store().Len(), "re-settling an unchanged clipboard must not duplicate")
}

func TestGuardRoundTripRecordsNothing(t *testing.T) {
	f := newFixture(Config{})

	f.backend.externalCopy(goodText)
	f.eng.settle()
	require.Equal(t, 1, f.eng.Store().Len())
	id := f.eng.Store().List(1, 0)[0].ID

	// User picks the entry from history; the engine writes it back.
	require.NoError(t, f.eng.Recopy(id))
	f.eng.settle()

	assert.Equal(t, 1, f.eng.Store().Len(), "copy-back must not be re-recorded")
}

func TestGuardAutoClears(t *testing.T) {
	f := newFixture(Config{})
	text := "guarded content that would otherwise be perfectly acceptable"

	f.eng.MarkInternalWrite(text, nil)
	f.backend.externalCopy(text)
	f.eng.settle()
	assert.Equal(t, 0, f.eng.Store().Len())

	// Past the guard window the same content is external again.
	f.clock.advance(time.Second)
	f.eng.settle()
	assert.Equal(t, 1, f.eng.Store().Len())
}

func TestRapidSelectionBurst(t *testing.T) {
	f := newFixture(Config{SettleDelay: time.Millisecond})

	// Five mutations inside one second, payload a selection fragment.
	f.backend.externalCopy("quick brown fox")
	base := f.clock.now()
	for i := 0; i < 5; i++ {
		f.eng.onMutation(base.Add(time.Duration(i*200) * time.Millisecond))
	}
	time.Sleep(50 * time.Millisecond) // let any scheduled settles fire

	assert.Equal(t, 0, f.eng.Store().Len())
}

func TestMutationGapFilter(t *testing.T) {
	f := newFixture(Config{SettleDelay: time.Hour}) // never fires in-test
	base := f.clock.now()

	f.eng.onMutation(base)
	f.eng.onMutation(base.Add(100 * time.Millisecond))

	f.eng.mu.Lock()
	defer f.eng.mu.Unlock()
	assert.Equal(t, base, f.eng.lastScheduled, "event inside the 300ms gap must not reschedule")
}

func TestTickDetectsMutations(t *testing.T) {
	f := newFixture(Config{SettleDelay: time.Millisecond})

	f.backend.externalCopy(goodText)
	f.eng.tick() // first observation is baseline only
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, f.eng.Store().Len())

	f.clock.advance(time.Second)
	f.backend.externalCopy("A different deliberate copy with plenty of words in it.")
	f.eng.tick()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, f.eng.Store().Len())

	// No marker advance, no event.
	f.clock.advance(time.Second)
	f.eng.tick()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, f.eng.Store().Len())
}

func TestImageCaptureAndDedup(t *testing.T) {
	f := newFixture(Config{})
	img := encodePNG(t)

	f.backend.externalCopyImage(img)
	f.eng.settle()
	f.eng.settle()

	require.Equal(t, 1, f.eng.Store().Len())
	entry := f.eng.Store().List(1, 0)[0]
	assert.Equal(t, classify.CategoryImage, entry.Category)
	assert.Equal(t, img, entry.Payload)
	assert.Len(t, f.eng.Cache().Snapshot().Images, 1)
}

func TestRecopyImageGuarded(t *testing.T) {
	f := newFixture(Config{})
	img := encodePNG(t)

	f.backend.externalCopyImage(img)
	f.eng.settle()
	require.Equal(t, 1, f.eng.Store().Len())
	id := f.eng.Store().List(1, 0)[0].ID

	require.NoError(t, f.eng.Recopy(id))
	f.eng.settle()
	assert.Equal(t, 1, f.eng.Store().Len())
}

func TestFileCapture(t *testing.T) {
	f := newFixture(Config{})

	f.backend.externalCopyFiles([]string{"/home/u/report.pdf", "/home/u/notes.txt"})
	f.eng.settle()
	f.eng.settle()

	require.Equal(t, 1, f.eng.Store().Len())
	entry := f.eng.Store().List(1, 0)[0]
	assert.Equal(t, classify.CategoryFile, entry.Category)
	assert.Contains(t, entry.Content, "report.pdf")
	assert.Len(t, f.eng.Cache().Snapshot().Other, 1)
}

func TestCategoriesLandInBuckets(t *testing.T) {
	f := newFixture(Config{})

	f.backend.externalCopy("[ERROR] 2024-01-01T10:00:00 connection refused\n[INFO] 2024-01-01T10:00:01 retrying")
	f.eng.settle()
	f.backend.externalCopy("How do I implement a binary search tree in Python please?")
	f.eng.settle()

	snap := f.eng.Cache().Snapshot()
	require.Len(t, snap.Logs, 1)
	require.Len(t, snap.Prompts, 1)
	assert.Equal(t, classify.CategoryLog, snap.Logs[0].Category)
	assert.Equal(t, classify.CategoryPrompt, snap.Prompts[0].Category)
}

func TestRemovePropagates(t *testing.T) {
	f := newFixture(Config{})

	f.backend.externalCopy(goodText)
	f.eng.settle()
	id := f.eng.Store().List(1, 0)[0].ID

	assert.True(t, f.eng.Remove(id))
	assert.Equal(t, 0, f.eng.Store().Len())
	assert.Empty(t, f.eng.Cache().Snapshot().Other)
	assert.Equal(t, []string{id}, f.durable.deleted)

	assert.False(t, f.eng.Remove(id))
}

func TestDurableFailureIsNonFatal(t *testing.T) {
	f := newFixture(Config{})
	f.durable.failAppend = true

	f.backend.externalCopy(goodText)
	f.eng.settle()

	// Entry stays visible in-session even though it was never persisted.
	assert.Equal(t, 1, f.eng.Store().Len())
	assert.Empty(t, f.durable.appended)
}

func TestRestorePrimesDedup(t *testing.T) {
	f := newFixture(Config{})

	f.eng.Restore([]history.Entry{
		{ID: "01A", Category: classify.CategoryText, Content: goodText, SourceSize: len(goodText), Timestamp: f.clock.now()},
	})
	require.Equal(t, 1, f.eng.Store().Len())
	require.Len(t, f.eng.Cache().Snapshot().Other, 1)

	// The same content copied again after a restart is a near-duplicate.
	f.backend.externalCopy(goodText + "!")
	f.eng.settle()
	assert.Equal(t, 1, f.eng.Store().Len())
}

func TestStoppedEngineDropsSettledWork(t *testing.T) {
	f := newFixture(Config{})

	f.backend.externalCopy(goodText)
	f.eng.Stop()
	f.eng.settle()

	assert.Equal(t, 0, f.eng.Store().Len())
}

func TestAcceptedEntryPublished(t *testing.T) {
	f := newFixture(Config{})

	sub := &captureSub{}
	f.eng.hub.Subscribe(sub)

	f.backend.externalCopy(goodText)
	f.eng.settle()

	require.Len(t, sub.events, 1)
	assert.Equal(t, goodText, sub.events[0].Entry.Content)
}

type captureSub struct {
	mu     sync.Mutex
	events []hub.Event
}

func (s *captureSub) ID() string { return "test-sub" }

func (s *captureSub) Info() message.SubscriberInfo {
	return message.SubscriberInfo{ID: "test-sub", Addr: "test"}
}

func (s *captureSub) Send(ev hub.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func encodePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}
