package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/marmos91/brokerd/pkg/broker/command"
	"github.com/marmos91/brokerd/pkg/broker/gate"
	"github.com/marmos91/brokerd/pkg/broker/router"
	"github.com/marmos91/brokerd/pkg/prompt"
	"github.com/marmos91/brokerd/pkg/store/file/local"
	"github.com/marmos91/brokerd/pkg/store/settings/memory"
)

func newTestServer(t *testing.T, gateCfg gate.Config, promptAnswer prompt.Response) *Server {
	t.Helper()

	store, err := local.NewLocalStore(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	settingsStore := memory.NewMemoryStore()
	t.Cleanup(func() { _ = settingsStore.Close() })

	g := gate.New(settingsStore, prompt.NewStatic(promptAnswer), nil, gateCfg)
	return New(Config{Listen: "127.0.0.1:0"}, g, router.New(store), nil)
}

func strptr(s string) *string { return &s }

func dispatch(t *testing.T, s *Server, msg *Message) *command.Result {
	t.Helper()
	result := s.dispatch(context.Background(), msg)
	if result == nil {
		t.Fatal("dispatch returned nil result")
	}
	return result
}

func TestDispatch_MissingCommand(t *testing.T) {
	s := newTestServer(t, gate.Config{}, prompt.ResponseDeny)

	result := dispatch(t, s, &Message{Sender: &Sender{ID: "t1"}})
	if !result.IsError() || result.Code() != command.CodeBadRequest {
		t.Fatalf("want 400, got %+v", result)
	}
	if result.ErrorMessage() != "Invalid Request: Message has no Command Object" {
		t.Fatalf("unexpected message: %q", result.ErrorMessage())
	}
}

func TestDispatch_InternalBypassesGate(t *testing.T) {
	// Gate enabled, prompting off: an external unknown tenant is denied,
	// an internal message with the same tenant proceeds.
	s := newTestServer(t, gate.Config{Enabled: true}, prompt.ResponseDeny)

	msg := &Message{
		Sender:  &Sender{ID: "t1"},
		Command: &command.Command{Command: command.CmdExists},
	}

	if result := dispatch(t, s, msg); !result.IsOK() {
		t.Fatalf("internal message must bypass the gate, got %+v", result)
	}

	msg.External = true
	result := dispatch(t, s, msg)
	if !result.IsError() || result.Code() != command.CodeForbidden {
		t.Fatalf("external unknown tenant must be denied, got %+v", result)
	}
}

func TestDispatch_ExternalGranted(t *testing.T) {
	s := newTestServer(t, gate.Config{Enabled: true, PromptEnabled: true}, prompt.ResponseGrant)

	msg := &Message{
		Sender:   &Sender{ID: "t1"},
		External: true,
		Command: &command.Command{
			Command:  command.CmdWriteFile,
			FileName: strptr("a.txt"),
			Data:     json.RawMessage(`"hello"`),
		},
	}

	result := dispatch(t, s, msg)
	if !result.IsOK() {
		t.Fatalf("granted tenant must proceed, got %+v", result)
	}
	if result.Payload()["bytesWritten"] != 5 {
		t.Fatalf("payload = %v", result.Payload())
	}
}

func TestDispatch_AccessProbe(t *testing.T) {
	s := newTestServer(t, gate.Config{Enabled: true, PromptEnabled: true}, prompt.ResponseDeny)

	msg := &Message{
		Sender:   &Sender{ID: "t1"},
		External: true,
		Command:  &command.Command{Command: command.CmdAccess},
	}

	result := dispatch(t, s, msg)
	if !result.IsOK() {
		t.Fatalf("access probe is a successful command, got %+v", result)
	}
	if result.Payload()["access"] != "denied" {
		t.Fatalf("payload = %v", result.Payload())
	}
}

func TestDispatch_InternalInvalidIdentity(t *testing.T) {
	s := newTestServer(t, gate.Config{}, prompt.ResponseDeny)

	msg := &Message{
		Sender:  &Sender{ID: "a/b"},
		Command: &command.Command{Command: command.CmdExists},
	}

	result := dispatch(t, s, msg)
	if !result.IsError() || result.Code() != command.CodeBadRequest {
		t.Fatalf("invalid identity must yield 400, got %+v", result)
	}
}

// TestServe_RoundTrip runs one real connection through the full stack.
func TestServe_RoundTrip(t *testing.T) {
	s := newTestServer(t, gate.Config{}, prompt.ResponseDeny)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveDone := make(chan error, 1)
	go func() { serveDone <- s.Serve(ctx) }()

	// Wait for the listener to come up.
	var addr net.Addr
	for i := 0; i < 100; i++ {
		if s.listener != nil {
			addr = s.listener.Addr()
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if addr == nil {
		t.Fatal("listener never started")
	}

	peer, err := net.Dial("tcp", addr.String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer peer.Close()

	request := `{"id": 7, "sender": {"id": "t1"}, "Command": {"command": "writeFile", "fileName": "notes.txt", "data": "abc"}}` + "\n"
	if _, err := peer.Write([]byte(request)); err != nil {
		t.Fatalf("write: %v", err)
	}

	reader := bufio.NewReader(peer)
	_ = peer.SetReadDeadline(time.Now().Add(5 * time.Second))
	line, err := reader.ReadBytes('\n')
	if err != nil {
		t.Fatalf("read reply: %v", err)
	}

	var reply struct {
		ID     int            `json:"id"`
		Result map[string]any `json:"result"`
	}
	if err := json.Unmarshal(line, &reply); err != nil {
		t.Fatalf("bad reply %q: %v", line, err)
	}
	if reply.ID != 7 {
		t.Errorf("reply id = %d, want 7", reply.ID)
	}
	if reply.Result["fileName"] != "notes.txt" || reply.Result["bytesWritten"] != float64(3) {
		t.Errorf("reply result = %v", reply.Result)
	}

	// Malformed input still gets an envelope.
	if _, err := peer.Write([]byte("this is not json\n")); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	line, err = reader.ReadBytes('\n')
	if err != nil {
		t.Fatalf("read error reply: %v", err)
	}
	var errReply struct {
		Result map[string]any `json:"result"`
	}
	if err := json.Unmarshal(line, &errReply); err != nil {
		t.Fatalf("bad error reply %q: %v", line, err)
	}
	if errReply.Result["code"] != "400" {
		t.Errorf("error reply = %v", errReply.Result)
	}

	cancel()
	select {
	case <-serveDone:
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
