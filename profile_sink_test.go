package main

import (
	"path/filepath"
	"sync"
	"testing"
)

func TestProfileSinkFlushOnStop(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	id, err := db.CreateAccount("tester", "hash")
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	sink := NewProfileSink(db)
	sink.Track(ProfileDelta{PlayerID: id, Consumed: 3, BestMass: 250})
	sink.Track(ProfileDelta{PlayerID: id, Consumed: 2, BestMass: 180, Predations: 1})
	sink.Stop()

	prof, err := db.GetProfile(id)
	if err != nil || prof == nil {
		t.Fatalf("get profile: %v", err)
	}
	if prof.Consumed != 5 {
		t.Errorf("expected 5 consumed, got %d", prof.Consumed)
	}
	if prof.BestMass != 250 {
		t.Errorf("best mass keeps the maximum, got %f", prof.BestMass)
	}
	if prof.Predations != 1 {
		t.Errorf("expected 1 predation, got %d", prof.Predations)
	}
}

func TestProfileSinkDropsAnonymous(t *testing.T) {
	sink := NewProfileSink(nil)
	sink.Track(ProfileDelta{PlayerID: 0, Consumed: 1})
	sink.Stop()
}

func TestProfileSinkNilReceiver(t *testing.T) {
	var sink *ProfileSink
	sink.Track(ProfileDelta{PlayerID: 1, Consumed: 1}) // must not panic
}

func TestProfileSinkTrackAfterStop(t *testing.T) {
	sink := NewProfileSink(nil)
	sink.Stop()
	sink.Track(ProfileDelta{PlayerID: 1, Consumed: 1}) // must not panic
}

// Rooms keep tracking while the process shuts down; a Track racing Stop
// must never hit a closed channel.
func TestProfileSinkConcurrentTrackAndStop(t *testing.T) {
	sink := NewProfileSink(nil)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 5000; i++ {
				sink.Track(ProfileDelta{PlayerID: 1, Consumed: 1})
			}
		}()
	}
	sink.Stop()
	wg.Wait()
}
