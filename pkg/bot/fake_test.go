package bot

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rubiojr/kashif/pkg/core"
	"github.com/rubiojr/kashif/pkg/search"
	"github.com/rubiojr/kashif/pkg/storage"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	ChatID int64
	ID     int
	Msg    Message
}

type fakeTransport struct {
	mu       sync.Mutex
	nextID   int
	sent     []sentMessage
	buttons  map[int][][]Button
	edits    map[int]Message
	deleted  []int
	failSend int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		nextID:  100,
		buttons: map[int][][]Button{},
		edits:   map[int]Message{},
	}
}

func (f *fakeTransport) Send(_ context.Context, chatID int64, msg Message) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend > 0 {
		f.failSend--
		return 0, fmt.Errorf("%w: telegram said no", core.ErrDelivery)
	}
	f.nextID++
	f.sent = append(f.sent, sentMessage{ChatID: chatID, ID: f.nextID, Msg: msg})
	if msg.Buttons != nil {
		f.buttons[f.nextID] = msg.Buttons
	}
	return f.nextID, nil
}

func (f *fakeTransport) SetButtons(_ context.Context, _ int64, messageID int, buttons [][]Button) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if buttons == nil {
		delete(f.buttons, messageID)
		return nil
	}
	f.buttons[messageID] = buttons
	return nil
}

func (f *fakeTransport) Edit(_ context.Context, _ int64, messageID int, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits[messageID] = msg
	return nil
}

func (f *fakeTransport) Delete(_ context.Context, _ int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeTransport) last() sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

func (f *fakeTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type harness struct {
	engine    *Engine
	transport *fakeTransport
	index     *storage.Index
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	idx, err := storage.Open(filepath.Join(t.TempDir(), "kashif.db"))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	ft := newFakeTransport()
	return &harness{
		engine:    New(ft, search.NewService(idx, nil), idx, opts),
		transport: ft,
		index:     idx,
	}
}

func (h *harness) insert(t *testing.T, docs ...core.Document) {
	t.Helper()
	require.NoError(t, h.index.InsertBatch(context.Background(), docs))
}

// failingSearcher returns err for every search.
type failingSearcher struct {
	err error
}

func (f failingSearcher) Search(context.Context, string) ([]string, error) {
	return nil, f.err
}

func (f failingSearcher) Documents(context.Context, []string) ([]core.Document, error) {
	return nil, errors.New("unused")
}

func (f failingSearcher) Document(context.Context, string) (core.Document, error) {
	return core.Document{}, core.ErrNotFound
}
