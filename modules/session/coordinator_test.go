package session

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/chat-relay/domain/chat"
	"github.com/example/chat-relay/modules/directory"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any)         {}
func (m *mockLogger) Info(msg string, args ...any)          {}
func (m *mockLogger) Warn(msg string, args ...any)          {}
func (m *mockLogger) Error(msg string, args ...any)         {}
func (m *mockLogger) With(args ...any) types.Logger         { return m }
func (m *mockLogger) WithError(err error) types.Logger      { return m }
func (m *mockLogger) WithModule(module string) types.Logger { return m }

type delivery struct {
	event   string
	payload any
}

// fakeHub records deliveries per connection and models room groups.
type fakeHub struct {
	mu         sync.Mutex
	rooms      map[string]string // connID -> room
	received   map[string][]delivery
	broadcasts int
}

func newFakeHub() *fakeHub {
	return &fakeHub{
		rooms:    make(map[string]string),
		received: make(map[string][]delivery),
	}
}

func (h *fakeHub) Subscribe(connID, room string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rooms[connID] = room
	return true
}

func (h *fakeHub) Unsubscribe(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms, connID)
}

func (h *fakeHub) Send(connID, event string, payload any) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.received[connID] = append(h.received[connID], delivery{event, payload})
	return true
}

func (h *fakeHub) BroadcastToRoom(room, event string, payload any, except string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcasts++
	n := 0
	for connID, r := range h.rooms {
		if r != room || connID == except {
			continue
		}
		h.received[connID] = append(h.received[connID], delivery{event, payload})
		n++
	}
	return n
}

func (h *fakeHub) Received(connID string) []delivery {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]delivery(nil), h.received[connID]...)
}

func (h *fakeHub) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.received = make(map[string][]delivery)
	h.broadcasts = 0
}

func (h *fakeHub) Broadcasts() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.broadcasts
}

type wordList []string

func (w wordList) IsProfane(text string) bool {
	for _, word := range w {
		if strings.Contains(strings.ToLower(text), word) {
			return true
		}
	}
	return false
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) record(e string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) UserJoined(_ context.Context, u chat.User, _ int) {
	n.record("joined:" + u.Username)
}
func (n *recordingNotifier) UserLeft(_ context.Context, u chat.User, _ int) {
	n.record("left:" + u.Username)
}
func (n *recordingNotifier) MessageSent(_ context.Context, u chat.User) {
	n.record("message:" + u.Username)
}
func (n *recordingNotifier) LocationShared(_ context.Context, u chat.User, _ string) {
	n.record("location:" + u.Username)
}

var fixedTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

type fixture struct {
	dir      *directory.Directory
	hub      *fakeHub
	notifier *recordingNotifier
	service  *Service
}

func newFixture() *fixture {
	f := &fixture{
		dir:      directory.New(),
		hub:      newFakeHub(),
		notifier: &recordingNotifier{},
	}
	f.service = NewService(f.dir, f.hub, &mockLogger{},
		WithProfanityChecker(wordList{"darn"}),
		WithRenderer(&ClockRenderer{Now: func() time.Time { return fixedTime }}),
		WithNotifier(f.notifier),
	)
	return f
}

func (f *fixture) join(t *testing.T, connID, username, room string) *Coordinator {
	t.Helper()
	c := f.service.NewCoordinator(connID)
	require.NoError(t, c.Join(context.Background(), username, room))
	return c
}

func countEvents(ds []delivery, event string) int {
	n := 0
	for _, d := range ds {
		if d.event == event {
			n++
		}
	}
	return n
}

func usernames(users []chat.User) []string {
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.Username
	}
	return names
}

func TestCoordinator_JoinSequence(t *testing.T) {
	f := newFixture()
	c := f.join(t, "1", "  Bob ", "General")

	assert.Equal(t, StateJoined, c.State())
	got := f.hub.Received("1")
	require.Len(t, got, 2)

	assert.Equal(t, EventMessage, got[0].event)
	assert.Equal(t, chat.RenderedMessage{Sender: chat.AdminName, Text: "Welcome!", SentAt: fixedTime}, got[0].payload)

	assert.Equal(t, EventRoomData, got[1].event)
	roster := got[1].payload.(chat.RoomData)
	assert.Equal(t, "general", roster.Room)
	assert.Equal(t, []string{"bob"}, usernames(roster.Users))

	assert.Equal(t, []string{"joined:bob"}, f.notifier.events)
}

func TestCoordinator_JoinFanOut(t *testing.T) {
	f := newFixture()
	f.join(t, "a", "alice", "r")
	f.join(t, "b", "ben", "r")
	f.join(t, "x", "xavier", "other")
	f.hub.Reset()

	f.join(t, "c", "carol", "r")

	for _, id := range []string{"a", "b"} {
		got := f.hub.Received(id)
		require.Len(t, got, 2, "member %s", id)
		assert.Equal(t, EventMessage, got[0].event)
		assert.Equal(t, "carol has joined!", got[0].payload.(chat.RenderedMessage).Text)
		assert.Equal(t, EventRoomData, got[1].event)
		assert.Equal(t, []string{"alice", "ben", "carol"}, usernames(got[1].payload.(chat.RoomData).Users))
	}

	got := f.hub.Received("c")
	require.Len(t, got, 2)
	assert.Equal(t, "Welcome!", got[0].payload.(chat.RenderedMessage).Text)
	assert.Equal(t, []string{"alice", "ben", "carol"}, usernames(got[1].payload.(chat.RoomData).Users))

	assert.Empty(t, f.hub.Received("x"))
}

func TestCoordinator_JoinFailures(t *testing.T) {
	tests := []struct {
		name     string
		username string
		room     string
		wantErr  error
		wantKind chat.ErrorKind
	}{
		{"empty username", "   ", "room", chat.ErrUsernameRoomRequired, chat.KindValidation},
		{"empty room", "bob", "", chat.ErrUsernameRoomRequired, chat.KindValidation},
		{"taken", "BOB", "general", chat.ErrUsernameTaken, chat.KindConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.join(t, "1", "bob", "general")
			f.hub.Reset()

			c := f.service.NewCoordinator("2")
			err := c.Join(context.Background(), tt.username, tt.room)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantKind, chat.KindOf(err))

			assert.Equal(t, StateConnected, c.State())
			assert.Equal(t, 0, f.hub.Broadcasts())
			assert.Empty(t, f.hub.Received("1"))
			assert.Empty(t, f.hub.Received("2"))
			_, ok := f.dir.GetUser("2")
			assert.False(t, ok)
		})
	}
}

func TestCoordinator_JoinTwiceRejected(t *testing.T) {
	f := newFixture()
	c := f.join(t, "1", "bob", "general")
	f.hub.Reset()

	err := c.Join(context.Background(), "bobby", "random")
	assert.ErrorIs(t, err, chat.ErrAlreadyJoined)
	assert.Equal(t, chat.KindConflict, chat.KindOf(err))
	assert.Equal(t, 0, f.hub.Broadcasts())

	user, ok := f.dir.GetUser("1")
	require.True(t, ok)
	assert.Equal(t, "general", user.Room)
}

func TestCoordinator_JoinAfterDisconnect(t *testing.T) {
	f := newFixture()
	c := f.service.NewCoordinator("1")
	c.Disconnect(context.Background())

	err := c.Join(context.Background(), "bob", "general")
	assert.ErrorIs(t, err, chat.ErrSessionClosed)
	assert.Equal(t, 0, f.dir.Count())
}

func TestCoordinator_SendMessage(t *testing.T) {
	f := newFixture()
	alice := f.join(t, "a", "alice", "r")
	f.join(t, "b", "ben", "r")
	f.join(t, "x", "xavier", "other")
	f.hub.Reset()

	require.NoError(t, alice.SendMessage(context.Background(), "hello"))

	want := chat.RenderedMessage{Sender: "alice", Text: "hello", SentAt: fixedTime}
	for _, id := range []string{"a", "b"} {
		got := f.hub.Received(id)
		require.Len(t, got, 1)
		assert.Equal(t, EventMessage, got[0].event)
		assert.Equal(t, want, got[0].payload)
	}
	assert.Empty(t, f.hub.Received("x"))
	assert.Contains(t, f.notifier.events, "message:alice")
}

func TestCoordinator_SendMessageProfanity(t *testing.T) {
	f := newFixture()
	alice := f.join(t, "a", "alice", "r")
	f.join(t, "b", "ben", "r")
	f.hub.Reset()

	err := alice.SendMessage(context.Background(), "well DARN it")
	require.ErrorIs(t, err, chat.ErrProfanity)
	assert.Equal(t, chat.KindProfanity, chat.KindOf(err))
	assert.Equal(t, "Profanity is not allowed!", err.Error())
	assert.Equal(t, 0, f.hub.Broadcasts())
	assert.NotContains(t, f.notifier.events, "message:alice")
}

func TestCoordinator_SendBeforeJoin(t *testing.T) {
	f := newFixture()
	c := f.service.NewCoordinator("1")

	err := c.SendMessage(context.Background(), "hello")
	assert.ErrorIs(t, err, chat.ErrUserNotFound)
	assert.Equal(t, chat.KindNotFound, chat.KindOf(err))

	err = c.SendLocation(context.Background(), chat.Coordinates{Latitude: 1, Longitude: 2})
	assert.ErrorIs(t, err, chat.ErrUserNotFound)
	assert.Equal(t, 0, f.hub.Broadcasts())
}

func TestCoordinator_ProfanityCheckedBeforeLookup(t *testing.T) {
	f := newFixture()
	c := f.service.NewCoordinator("1")

	err := c.SendMessage(context.Background(), "darn")
	assert.ErrorIs(t, err, chat.ErrProfanity)
}

func TestCoordinator_SendLocation(t *testing.T) {
	f := newFixture()
	alice := f.join(t, "a", "alice", "r")
	f.join(t, "b", "ben", "r")
	f.hub.Reset()

	require.NoError(t, alice.SendLocation(context.Background(), chat.Coordinates{Latitude: 51.5, Longitude: -0.12}))

	want := chat.LocationMessage{Sender: "alice", URL: "https://google.com/maps?q=51.5,-0.12", SentAt: fixedTime}
	for _, id := range []string{"a", "b"} {
		got := f.hub.Received(id)
		require.Len(t, got, 1)
		assert.Equal(t, EventLocationMessage, got[0].event)
		assert.Equal(t, want, got[0].payload)
	}
	assert.Contains(t, f.notifier.events, "location:alice")
}

func TestCoordinator_Disconnect(t *testing.T) {
	f := newFixture()
	alice := f.join(t, "a", "alice", "r")
	f.join(t, "b", "ben", "r")
	f.join(t, "c", "carol", "r")
	f.hub.Reset()

	alice.Disconnect(context.Background())

	assert.Equal(t, StateClosed, alice.State())
	assert.Equal(t, []string{"ben", "carol"}, usernames(f.dir.GetUsersInRoom("r")))
	assert.Empty(t, f.hub.Received("a"))

	for _, id := range []string{"b", "c"} {
		got := f.hub.Received(id)
		assert.Equal(t, 1, countEvents(got, EventMessage))
		assert.Equal(t, 1, countEvents(got, EventRoomData))
		require.Len(t, got, 2)
		assert.Equal(t, "alice has left!", got[0].payload.(chat.RenderedMessage).Text)
		assert.Equal(t, []string{"ben", "carol"}, usernames(got[1].payload.(chat.RoomData).Users))
	}
	assert.Contains(t, f.notifier.events, "left:alice")
}

func TestCoordinator_DisconnectIsIdempotent(t *testing.T) {
	f := newFixture()
	alice := f.join(t, "a", "alice", "r")
	f.join(t, "b", "ben", "r")
	f.hub.Reset()

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			alice.Disconnect(context.Background())
		}()
	}
	wg.Wait()

	assert.Len(t, f.hub.Received("b"), 2)
	assert.Equal(t, 2, f.hub.Broadcasts())
}

func TestCoordinator_DisconnectWithoutJoin(t *testing.T) {
	f := newFixture()
	f.join(t, "a", "alice", "r")
	f.hub.Reset()

	c := f.service.NewCoordinator("z")
	c.Disconnect(context.Background())

	assert.Equal(t, StateClosed, c.State())
	assert.Equal(t, 0, f.hub.Broadcasts())
	assert.Empty(t, f.notifier.events[1:])
}

func TestCoordinator_BobCarolScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	bob := f.service.NewCoordinator("1")
	require.NoError(t, bob.Join(ctx, "bob", "general"))

	second := f.service.NewCoordinator("2")
	err := second.Join(ctx, "bob", "general")
	assert.ErrorIs(t, err, chat.ErrUsernameTaken)
	assert.Equal(t, chat.KindConflict, chat.KindOf(err))

	f.hub.Reset()
	require.NoError(t, second.Join(ctx, "carol", "general"))

	got := f.hub.Received("1")
	require.Len(t, got, 2)
	assert.Equal(t, "carol has joined!", got[0].payload.(chat.RenderedMessage).Text)
	assert.Equal(t, []string{"bob", "carol"}, usernames(got[1].payload.(chat.RoomData).Users))
}

func TestCoordinator_ConcurrentSessions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			c := f.service.NewCoordinator(id)
			if err := c.Join(ctx, "user-"+id, "lobby"); err != nil {
				t.Errorf("join %s: %v", id, err)
				return
			}
			_ = c.SendMessage(ctx, "hi from "+id)
			c.Disconnect(ctx)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, f.dir.Count())
	assert.Empty(t, f.dir.GetUsersInRoom("lobby"))
}

// hookedDirectory runs onSnapshot once, right after the first roster read
// for a room.
type hookedDirectory struct {
	*directory.Directory
	once       sync.Once
	onSnapshot func()
}

func (d *hookedDirectory) GetUsersInRoom(room string) []chat.User {
	users := d.Directory.GetUsersInRoom(room)
	if d.onSnapshot != nil {
		d.once.Do(d.onSnapshot)
	}
	return users
}

func TestCoordinator_LeaveDuringJoinKeepsRosterCurrent(t *testing.T) {
	ctx := context.Background()
	dir := &hookedDirectory{Directory: directory.New()}
	hub := newFakeHub()
	service := NewService(dir, hub, &mockLogger{}, WithProfanityChecker(wordList{}))

	alice := service.NewCoordinator("a")
	require.NoError(t, alice.Join(ctx, "alice", "r"))
	bob := service.NewCoordinator("b")
	require.NoError(t, bob.Join(ctx, "bob", "r"))

	left := make(chan struct{})
	dir.onSnapshot = func() {
		go func() {
			defer close(left)
			alice.Disconnect(ctx)
		}()
		time.Sleep(20 * time.Millisecond)
	}

	carol := service.NewCoordinator("c")
	require.NoError(t, carol.Join(ctx, "carol", "r"))
	<-left

	assert.Equal(t, []string{"bob", "carol"}, usernames(dir.Directory.GetUsersInRoom("r")))
	for _, connID := range []string{"b", "c"} {
		got := hub.Received(connID)
		var last chat.RoomData
		for _, d := range got {
			if d.event == EventRoomData {
				last = d.payload.(chat.RoomData)
			}
		}
		assert.Equal(t, []string{"bob", "carol"}, usernames(last.Users), "last roster for %s", connID)
	}
}

func TestLocationURL(t *testing.T) {
	assert.Equal(t, "https://google.com/maps?q=0,0", LocationURL(chat.Coordinates{}))
	assert.Equal(t, "https://google.com/maps?q=-33.8688,151.2093",
		LocationURL(chat.Coordinates{Latitude: -33.8688, Longitude: 151.2093}))
}

func TestWordFilter(t *testing.T) {
	filter := NewWordFilter()
	assert.True(t, filter.IsProfane("what the fuck"))
	assert.False(t, filter.IsProfane("good morning everyone"))
}

func TestNewService_Defaults(t *testing.T) {
	s := NewService(directory.New(), newFakeHub(), &mockLogger{})
	assert.IsType(t, &WordFilter{}, s.profanity)
	assert.IsType(t, &ClockRenderer{}, s.renderer)
	assert.IsType(t, nopNotifier{}, s.notifier)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "connected", StateConnected.String())
	assert.Equal(t, "joined", StateJoined.String())
	assert.Equal(t, "closed", StateClosed.String())
}
