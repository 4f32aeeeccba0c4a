package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/client/api"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/client/model"
	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/client/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	refreshed int
	remaps    map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{remaps: map[string]string{}}
}

func (c *fakeCache) Refresh(context.Context, string) error {
	c.refreshed++
	return nil
}

func (c *fakeCache) RemapNoteID(_ context.Context, _ string, oldID, newID string) error {
	c.remaps[oldID] = newID
	return nil
}

// notesServer is a scriptable stand-in for the REST API. Each request is
// recorded as "METHOD /path"; per-route status overrides simulate failures.
type notesServer struct {
	srv      *httptest.Server
	requests []string
	titles   []string       // title field of each accepted POST/PUT
	status   map[string]int // "METHOD /path" -> forced status
	nextID   int
}

func newNotesServer(t *testing.T) *notesServer {
	t.Helper()
	ns := &notesServer{status: map[string]int{}}
	ns.srv = httptest.NewServer(http.HandlerFunc(ns.handle))
	t.Cleanup(ns.srv.Close)
	return ns
}

func (ns *notesServer) handle(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	ns.requests = append(ns.requests, key)

	if code, ok := ns.status[key]; ok {
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{"error": http.StatusText(code)})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/notes":
		r.ParseMultipartForm(1 << 20)
		ns.titles = append(ns.titles, r.FormValue("title"))
		ns.nextID++
		json.NewEncoder(w).Encode(map[string]any{
			"id":    fmt.Sprintf("srv-%d", ns.nextID),
			"title": r.FormValue("title"),
		})
	case r.Method == http.MethodPut:
		r.ParseMultipartForm(1 << 20)
		ns.titles = append(ns.titles, r.FormValue("title"))
		json.NewEncoder(w).Encode(map[string]any{
			"id": strings.TrimPrefix(r.URL.Path, "/api/notes/"),
		})
	case r.Method == http.MethodGet && r.URL.Path == "/api/notes":
		w.Write([]byte(`[]`))
	default:
		w.Write([]byte(`{}`))
	}
}

func newTestSyncer(t *testing.T, ns *notesServer) (*Syncer, *Queue, *fakeCache) {
	t.Helper()
	store, err := storage.NewFileStorage(t.TempDir())
	require.NoError(t, err)
	queue := NewQueue(store)
	cache := newFakeCache()
	return NewSyncer(queue, api.New(ns.srv.URL), cache, nil), queue, cache
}

func localNote(id, title string) *model.Note {
	return &model.Note{ID: id, Title: title, Content: "body", UserID: "u1"}
}

func TestFlushReplaysInOrder(t *testing.T) {
	ns := newNotesServer(t)
	syncer, queue, cache := newTestSyncer(t, ns)

	require.NoError(t, queue.Append("u1", OpCreate, localNote("local-1", "first"), ""))
	require.NoError(t, queue.Append("u1", OpUpdate, localNote("local-1", "second"), ""))
	require.NoError(t, queue.Append("u1", OpDelete, nil, "local-1"))

	res, err := syncer.Flush(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, FlushResult{Confirmed: 3}, res)
	assert.True(t, res.Drained())

	// the update and delete used the id the server assigned to the create
	assert.Equal(t, []string{
		"POST /api/notes",
		"PUT /api/notes/srv-1",
		"DELETE /api/notes/srv-1",
	}, ns.requests)

	n, err := queue.Len("u1")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, cache.refreshed, "a drained flush refreshes the cache")
}

func TestFlushKeepsFailedEntries(t *testing.T) {
	ns := newNotesServer(t)
	syncer, queue, cache := newTestSyncer(t, ns)

	require.NoError(t, queue.Append("u1", OpCreate, localNote("local-1", "ok"), ""))
	require.NoError(t, queue.Append("u1", OpUpdate, localNote("stuck-1", "flaky"), ""))

	ns.status["PUT /api/notes/stuck-1"] = http.StatusInternalServerError

	res, err := syncer.Flush(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Confirmed)
	assert.Equal(t, 1, res.Failed)
	assert.False(t, res.Drained())

	// only the confirmed entry left the queue
	entries, err := queue.Load("u1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, OpUpdate, entries[0].Op)
	assert.Equal(t, 1, entries[0].RetryCount)
	assert.False(t, entries[0].NextRetryAt.IsZero())

	// partial flush: no refresh, but server-assigned ids still propagate
	assert.Zero(t, cache.refreshed)
	assert.Equal(t, map[string]string{"local-1": "srv-1"}, cache.remaps)
}

func TestFlushHoldsUpdateBehindFailedCreate(t *testing.T) {
	ns := newNotesServer(t)
	syncer, queue, cache := newTestSyncer(t, ns)

	require.NoError(t, queue.Append("u1", OpCreate, localNote("local-1", "first draft"), ""))
	require.NoError(t, queue.Append("u1", OpUpdate, localNote("local-1", "edited"), ""))

	ns.status["POST /api/notes"] = http.StatusInternalServerError

	base := time.Now()
	syncer.now = func() time.Time { return base }

	res, err := syncer.Flush(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, FlushResult{Failed: 1, Deferred: 1}, res)

	// the update stayed queued instead of replaying against the
	// provisional id and 404ing into a drop
	assert.Equal(t, []string{"POST /api/notes"}, ns.requests)
	entries, err := queue.Load("u1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, OpCreate, entries[0].Op)
	assert.Equal(t, OpUpdate, entries[1].Op)
	assert.Zero(t, cache.refreshed)

	// server recovers: both replay in order against the assigned id
	delete(ns.status, "POST /api/notes")
	syncer.now = func() time.Time { return base.Add(time.Hour) }

	res, err = syncer.Flush(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, FlushResult{Confirmed: 2}, res)
	assert.Equal(t, []string{
		"POST /api/notes",
		"POST /api/notes",
		"PUT /api/notes/srv-1",
	}, ns.requests)
	assert.Equal(t, []string{"first draft", "edited"}, ns.titles)
}

func TestFlushHoldsDeleteBehindFailedCreate(t *testing.T) {
	ns := newNotesServer(t)
	syncer, queue, _ := newTestSyncer(t, ns)

	require.NoError(t, queue.Append("u1", OpCreate, localNote("local-1", "short lived"), ""))
	require.NoError(t, queue.Append("u1", OpDelete, nil, "local-1"))

	ns.status["POST /api/notes"] = http.StatusInternalServerError

	base := time.Now()
	syncer.now = func() time.Time { return base }

	res, err := syncer.Flush(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, FlushResult{Failed: 1, Deferred: 1}, res)

	// a premature delete would 404 into a false confirmation, then the
	// retried create would resurrect the note
	assert.Equal(t, []string{"POST /api/notes"}, ns.requests)

	delete(ns.status, "POST /api/notes")
	syncer.now = func() time.Time { return base.Add(time.Hour) }

	res, err = syncer.Flush(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, FlushResult{Confirmed: 2}, res)
	assert.Equal(t, []string{
		"POST /api/notes",
		"POST /api/notes",
		"DELETE /api/notes/srv-1",
	}, ns.requests)

	n, err := queue.Len("u1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFlushKeepsSameNoteUpdatesOrdered(t *testing.T) {
	ns := newNotesServer(t)
	syncer, queue, _ := newTestSyncer(t, ns)

	require.NoError(t, queue.Append("u1", OpUpdate, localNote("n1", "old title"), ""))
	ns.status["PUT /api/notes/n1"] = http.StatusInternalServerError

	base := time.Now()
	syncer.now = func() time.Time { return base }

	res, err := syncer.Flush(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, 1, res.Failed)

	// a newer edit lands while the older one is backed off
	require.NoError(t, queue.Append("u1", OpUpdate, localNote("n1", "new title"), ""))

	// the newer entry must not jump ahead of the backed-off one
	syncer.now = func() time.Time { return base.Add(time.Second) }
	res, err = syncer.Flush(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, FlushResult{Deferred: 2}, res)
	assert.Len(t, ns.requests, 1)

	// after the backoff both replay in enqueue order, so the newest edit
	// is what the server ends up with
	delete(ns.status, "PUT /api/notes/n1")
	syncer.now = func() time.Time { return base.Add(time.Hour) }
	res, err = syncer.Flush(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, FlushResult{Confirmed: 2}, res)
	assert.Equal(t, []string{"old title", "new title"}, ns.titles)
}

func TestFlushDropsRejectedEntries(t *testing.T) {
	ns := newNotesServer(t)
	syncer, queue, cache := newTestSyncer(t, ns)

	require.NoError(t, queue.Append("u1", OpUpdate, localNote("bad-1", ""), ""))
	ns.status["PUT /api/notes/bad-1"] = http.StatusBadRequest

	res, err := syncer.Flush(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, FlushResult{Dropped: 1}, res)
	assert.True(t, res.Drained())

	n, err := queue.Len("u1")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, cache.refreshed)
}

func TestFlushDeleteOfMissingNoteSucceeds(t *testing.T) {
	ns := newNotesServer(t)
	syncer, queue, _ := newTestSyncer(t, ns)

	require.NoError(t, queue.Append("u1", OpDelete, nil, "gone-1"))
	ns.status["DELETE /api/notes/gone-1"] = http.StatusNotFound

	res, err := syncer.Flush(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, FlushResult{Confirmed: 1}, res, "deleting an already-deleted note is a success")
}

func TestFlushDefersBackedOffEntries(t *testing.T) {
	ns := newNotesServer(t)
	syncer, queue, _ := newTestSyncer(t, ns)

	require.NoError(t, queue.Append("u1", OpUpdate, localNote("stuck-1", "flaky"), ""))
	ns.status["PUT /api/notes/stuck-1"] = http.StatusInternalServerError

	base := time.Now()
	syncer.now = func() time.Time { return base }

	res, err := syncer.Flush(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, 1, res.Failed)
	require.Len(t, ns.requests, 1)

	// a second pass before the backoff deadline must not hit the server
	syncer.now = func() time.Time { return base.Add(time.Second) }
	res, err = syncer.Flush(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, FlushResult{Deferred: 1}, res)
	assert.Len(t, ns.requests, 1)

	// past the deadline, with the server recovered, the entry drains
	delete(ns.status, "PUT /api/notes/stuck-1")
	syncer.now = func() time.Time { return base.Add(time.Hour) }
	res, err = syncer.Flush(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, FlushResult{Confirmed: 1}, res)
}

func TestFlushEmptyQueue(t *testing.T) {
	ns := newNotesServer(t)
	syncer, _, cache := newTestSyncer(t, ns)

	res, err := syncer.Flush(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, FlushResult{}, res)
	assert.Empty(t, ns.requests)
	assert.Zero(t, cache.refreshed, "nothing to flush, nothing to refresh")
}

func TestBackoffGrowth(t *testing.T) {
	assert.Equal(t, 30*time.Second, backoff(1))
	assert.Equal(t, time.Minute, backoff(2))
	assert.Equal(t, 2*time.Minute, backoff(3))
	assert.Equal(t, 4*time.Minute, backoff(4))
	assert.Equal(t, 5*time.Minute, backoff(5))
	assert.Equal(t, 5*time.Minute, backoff(20))
}
