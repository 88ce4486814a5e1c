package directory

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"crosstalk/pkg/types"
)

// fakeMember is a minimal member for directory tests.
type fakeMember struct {
	id   string
	user string
	lang string
}

func (m *fakeMember) ID() string                       { return m.id }
func (m *fakeMember) User() string                     { return m.user }
func (m *fakeMember) Language() string                 { return m.lang }
func (m *fakeMember) Deliver(ev *types.ChatEvent) bool { return true }

func TestDirectory_JoinAndMembersOf(t *testing.T) {
	d := New()

	alice := &fakeMember{id: "c1", user: "alice", lang: "eng_Latn"}
	bob := &fakeMember{id: "c2", user: "bob", lang: "sna_Latn"}

	if err := d.Join("room1", alice); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if err := d.Join("room1", bob); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	members := d.MembersOf("room1")
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	// Join order preserved.
	if members[0].User() != "alice" || members[1].User() != "bob" {
		t.Errorf("unexpected member order: %s, %s", members[0].User(), members[1].User())
	}

	if got := d.MembersOf("empty-room"); len(got) != 0 {
		t.Errorf("expected no members for unknown room, got %d", len(got))
	}
}

func TestDirectory_JoinNil(t *testing.T) {
	d := New()
	if err := d.Join("room1", nil); err != ErrNilMember {
		t.Errorf("Join(nil) = %v, want ErrNilMember", err)
	}
}

func TestDirectory_LeaveIsIdempotent(t *testing.T) {
	d := New()
	m := &fakeMember{id: "c1", user: "alice", lang: "eng_Latn"}

	// Leaving before joining must not panic or error.
	d.Leave("room1", m)
	d.Leave("room1", nil)

	_ = d.Join("room1", m)
	d.Leave("room1", m)
	if got := d.MembersOf("room1"); len(got) != 0 {
		t.Errorf("expected empty room after leave, got %d members", len(got))
	}

	// Second leave is a no-op.
	d.Leave("room1", m)
}

func TestDirectory_LeaveOnlyRemovesRegisteredInstance(t *testing.T) {
	d := New()
	old := &fakeMember{id: "c1", user: "alice", lang: "eng_Latn"}
	replacement := &fakeMember{id: "c1", user: "alice", lang: "fra_Latn"}

	_ = d.Join("room1", old)
	_ = d.Join("room1", replacement) // reconnect replaces the entry

	// The old instance's deferred cleanup must not evict the replacement.
	d.Leave("room1", old)

	members := d.MembersOf("room1")
	if len(members) != 1 || members[0].Language() != "fra_Latn" {
		t.Errorf("replacement was evicted: %v", members)
	}
}

func TestDirectory_LanguagesInUse(t *testing.T) {
	d := New()
	_ = d.Join("room1", &fakeMember{id: "c1", user: "alice", lang: "eng_Latn"})
	_ = d.Join("room1", &fakeMember{id: "c2", user: "amy", lang: "eng_Latn"})
	_ = d.Join("room1", &fakeMember{id: "c3", user: "bob", lang: "sna_Latn"})
	_ = d.Join("room2", &fakeMember{id: "c4", user: "carol", lang: "fra_Latn"})

	langs := d.LanguagesInUse("room1")
	if len(langs) != 2 {
		t.Fatalf("expected 2 distinct languages, got %v", langs)
	}
	// Sorted output.
	if langs[0] != "eng_Latn" || langs[1] != "sna_Latn" {
		t.Errorf("unexpected languages: %v", langs)
	}

	if got := d.LanguagesInUse("room3"); got != nil {
		t.Errorf("expected nil for unknown room, got %v", got)
	}
}

func TestDirectory_ConcurrentAccess(t *testing.T) {
	d := New()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			m := &fakeMember{id: fmt.Sprintf("c%d", n), user: fmt.Sprintf("u%d", n), lang: "eng_Latn"}
			_ = d.Join("room1", m)
			d.LanguagesInUse("room1")
			d.MembersOf("room1")
			d.Leave("room1", m)
		}(i)
	}
	wg.Wait()

	if got := d.MembersOf("room1"); len(got) != 0 {
		t.Errorf("expected empty room after concurrent joins/leaves, got %d", len(got))
	}
	stats := d.Stats()
	if stats["total_members"] != 0 {
		t.Errorf("expected 0 total members, got %d", stats["total_members"])
	}
}

// slowMember answers Language only after a delay, the way a member backed
// by a store read would.
type slowMember struct {
	fakeMember
	delay time.Duration
}

func (m *slowMember) Language() string {
	time.Sleep(m.delay)
	return m.lang
}

func TestDirectory_SlowLanguageDoesNotBlockJoin(t *testing.T) {
	d := New()

	for i := 0; i < 4; i++ {
		m := &slowMember{
			fakeMember: fakeMember{id: fmt.Sprintf("c%d", i), user: fmt.Sprintf("u%d", i), lang: "eng_Latn"},
			delay:      100 * time.Millisecond,
		}
		if err := d.Join("room1", m); err != nil {
			t.Fatalf("Join failed: %v", err)
		}
	}

	started := make(chan struct{})
	go func() {
		close(started)
		d.LanguagesInUse("room1")
	}()
	<-started
	time.Sleep(10 * time.Millisecond) // let the scan reach a Language call

	late := &fakeMember{id: "late", user: "late", lang: "spa_Latn"}
	begin := time.Now()
	if err := d.Join("room1", late); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if stalled := time.Since(begin); stalled > 50*time.Millisecond {
		t.Errorf("Join stalled %v behind a language scan", stalled)
	}
}
