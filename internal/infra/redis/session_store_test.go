package redis

import (
	"testing"
	"time"

	"trivia-quiz-service/internal/app"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	store.Put(app.NewSession("game-1"))
	if !mr.Exists("trivia:session:game-1") {
		t.Fatalf("expected redis key to be set")
	}
	if got, _ := mr.Get("trivia:session:game-1"); got != liveMarker {
		t.Fatalf("expected live marker, got %q", got)
	}
	if _, ok := store.Get("game-1"); !ok {
		t.Fatalf("expected session in local map")
	}

	store.Delete("game-1")
	if mr.Exists("trivia:session:game-1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get("game-1"); ok {
		t.Fatalf("expected session removed")
	}
}

func TestSessionStoreLookupRefreshesMarker(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)
	store.Put(app.NewSession("game-1"))

	mr.FastForward(50 * time.Second)
	if _, ok := store.Get("game-1"); !ok {
		t.Fatalf("expected session in local map")
	}
	mr.FastForward(50 * time.Second)
	if !mr.Exists("trivia:session:game-1") {
		t.Fatalf("expected marker kept alive by lookup")
	}
	if ttl := mr.TTL("trivia:session:game-1"); ttl != 10*time.Second {
		t.Fatalf("expected refreshed ttl of 10s left, got %v", ttl)
	}

	mr.FastForward(time.Minute)
	if mr.Exists("trivia:session:game-1") {
		t.Fatalf("expected marker to expire without lookups")
	}
}
