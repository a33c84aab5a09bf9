package events

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marmos91/brokerd/pkg/broker/command"
)

func readEvents(t *testing.T, path string) []Event {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open event log: %v", err)
	}
	defer f.Close()

	var out []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("bad event line %q: %v", scanner.Text(), err)
		}
		out = append(out, ev)
	}
	return out
}

func TestFileSink_AppendsJSONLines(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()

	now := time.Now()
	for i := 0; i < 3; i++ {
		if err := sink.Record(Event{Time: now, Type: EventCommandReceived, TenantID: "t1", Command: "exists"}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	path := filepath.Join(dir, "events-"+now.Format("2006-01-02")+".log")
	evs := readEvents(t, path)
	if len(evs) != 3 {
		t.Fatalf("got %d events, want 3", len(evs))
	}
	if evs[0].TenantID != "t1" || evs[0].Command != "exists" {
		t.Errorf("unexpected event: %+v", evs[0])
	}
}

func TestFileSink_RollsOverByDay(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()

	day1 := time.Date(2026, 8, 31, 23, 59, 0, 0, time.UTC)
	day2 := day1.Add(2 * time.Minute)

	if err := sink.Record(Event{Time: day1, Type: EventAccessGranted, TenantID: "t1"}); err != nil {
		t.Fatal(err)
	}
	if err := sink.Record(Event{Time: day2, Type: EventAccessDenied, TenantID: "t2"}); err != nil {
		t.Fatal(err)
	}

	if len(readEvents(t, filepath.Join(dir, "events-2026-08-31.log"))) != 1 {
		t.Error("day one file should hold one event")
	}
	if len(readEvents(t, filepath.Join(dir, "events-2026-09-01.log"))) != 1 {
		t.Error("day two file should hold one event")
	}
}

func TestRecorder_Gating(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()

	rec := NewRecorder(sink, RecorderConfig{LogResults: true})

	// Commands are gated off; results are on.
	rec.CommandReceived("t1", "exists")
	rec.CommandResult("t1", "writeFile", command.Invalidf("file already exists"))
	rec.AccessDecided("t1", true, "")

	path := filepath.Join(dir, "events-"+time.Now().Format("2006-01-02")+".log")
	evs := readEvents(t, path)
	if len(evs) != 1 {
		t.Fatalf("got %d events, want 1", len(evs))
	}
	if evs[0].Type != EventCommandResult || evs[0].Outcome != "invalid" {
		t.Errorf("unexpected event: %+v", evs[0])
	}
}

func TestRecorder_NilSink(t *testing.T) {
	rec := NewRecorder(nil, RecorderConfig{LogCommands: true, LogResults: true, LogAccess: true})
	// Must not panic.
	rec.CommandReceived("t1", "exists")
	rec.CommandResult("t1", "exists", command.OK(nil))
	rec.AccessDecided("t1", false, "denied")
}
