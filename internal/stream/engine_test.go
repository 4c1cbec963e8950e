// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"context"
	"errors"
	"io"
	"runtime"
	"strings"
	"testing"

	"github.com/morganforge/consigliere-tui/internal/model"
)

// scriptOpener replays a fixed stream body.
type scriptOpener struct {
	body string
	err  error
}

func (o *scriptOpener) OpenStream(_ context.Context, _, _ string) (io.ReadCloser, error) {
	if o.err != nil {
		return nil, o.err
	}
	return io.NopCloser(strings.NewReader(o.body)), nil
}

// blockingOpener holds the stream open until released, for concurrency tests.
type blockingOpener struct {
	release chan struct{}
}

func (o *blockingOpener) OpenStream(_ context.Context, _, _ string) (io.ReadCloser, error) {
	return io.NopCloser(&blockingReader{release: o.release}), nil
}

type blockingReader struct {
	release chan struct{}
}

func (r *blockingReader) Read(_ []byte) (int, error) {
	<-r.release
	return 0, io.EOF
}

func run(t *testing.T, body string) *model.Transcript {
	t.Helper()
	tr := model.NewTranscript("chat-1")
	eng := NewEngine(&scriptOpener{body: body})
	if err := eng.Run(context.Background(), tr, "chat-1", "show revenue", nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return tr
}

func lastMessage(t *testing.T, tr *model.Transcript) *model.Message {
	t.Helper()
	msg := tr.Last()
	if msg == nil {
		t.Fatal("transcript has no messages")
	}
	return msg
}

func TestRunFullStream(t *testing.T) {
	body := `{"type":"step_start","step_number":0,"description":"Analyzing request and planning..."}
{"type":"step_start","step_number":1,"description":"Load the data","step_type":"table"}
{"type":"step_result","data":{"step_number":1,"type":"table","data":[{"region":"West","revenue":100}]}}
{"type":"step_start","step_number":2,"description":"Plot revenue","step_type":"chart"}
{"type":"step_result","data":{"step_number":2,"type":"image","data":"/static/chart_1.png"}}
{"type":"final_result","data":{"text":"Revenue summary ready.","steps":[{"step_number":1,"type":"table","data":[{"region":"West","revenue":100}]},{"step_number":2,"type":"image","data":"/static/chart_1.png"}],"plan":{"intent":"DATA_ACTION","plan":[{"step_number":1,"type":"table","title":"Load the data"}]},"code":"# Step 1\ndf.head()"}}
{"type":"final","message_id":"srv-42"}
`
	tr := run(t, body)

	if tr.Len() != 2 {
		t.Fatalf("transcript has %d messages, want user + assistant", tr.Len())
	}
	msg := lastMessage(t, tr)
	if msg.ID != "srv-42" {
		t.Errorf("id = %q, want server id", msg.ID)
	}
	if msg.State != model.StateFinalized {
		t.Errorf("state = %v, want finalized", msg.State)
	}
	if msg.Content != "Revenue summary ready." {
		t.Errorf("content = %q", msg.Content)
	}
	if len(msg.Steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(msg.Steps))
	}
	if msg.Plan == nil || msg.Plan.Intent != "DATA_ACTION" {
		t.Errorf("plan = %+v", msg.Plan)
	}
	if msg.RelatedCode == nil || msg.RelatedCode.Type != "python" {
		t.Errorf("related code = %+v", msg.RelatedCode)
	}
	if tr.PendingID() != "" {
		t.Error("no message should remain pending")
	}
}

func TestStepStartKeepsFirstDescription(t *testing.T) {
	// The first description becomes placeholder content with a trailing
	// ellipsis; later step_start events must not overwrite it.
	body := `{"type":"step_start","step_number":1,"description":"Load the data","step_type":"table"}
{"type":"step_start","step_number":2,"description":"Plot revenue","step_type":"chart"}
{"type":"final_result","data":{"text":"done","steps":[],"code":""}}
{"type":"final","message_id":"srv-2"}
`
	tr := model.NewTranscript("chat-1")
	eng := NewEngine(&scriptOpener{body: body})

	var contents []string
	err := eng.Run(context.Background(), tr, "chat-1", "show revenue", func() {
		if id := tr.PendingID(); id != "" {
			contents = append(contents, tr.Get(id).Content)
		}
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{"", "Load the data...", "Load the data..."}
	if len(contents) < len(want) {
		t.Fatalf("pending snapshots = %q, want at least %d", contents, len(want))
	}
	for i, w := range want {
		if contents[i] != w {
			t.Errorf("snapshot %d = %q, want %q", i, contents[i], w)
		}
	}
	if got := lastMessage(t, tr).Content; got != "done" {
		t.Errorf("final content = %q", got)
	}
}

func TestFinalResultOverwritesStreamedSteps(t *testing.T) {
	// The server resends the authoritative list; a shorter final list must
	// replace the streamed one, not merge.
	body := `{"type":"step_result","data":{"step_number":1,"type":"text","data":"a"}}
{"type":"step_result","data":{"step_number":2,"type":"text","data":"b"}}
{"type":"final_result","data":{"text":"done","steps":[{"step_number":9,"type":"text","data":"only"}],"code":""}}
{"type":"final","message_id":"srv-1"}
`
	msg := lastMessage(t, run(t, body))
	if len(msg.Steps) != 1 || msg.Steps[0].StepNumber != 9 {
		t.Fatalf("steps = %+v, want the final authoritative list only", msg.Steps)
	}
	if msg.RelatedCode != nil {
		t.Error("empty code log should not attach related code")
	}
}

func TestStepEventsMutateVisibly(t *testing.T) {
	body := `{"type":"step_start","step_number":0,"description":"Analyzing request and planning..."}
{"type":"step_start","step_number":1,"description":"Load data","step_type":"table"}
{"type":"step_result","data":{"step_number":1,"type":"text","data":"ok"}}
{"type":"final","message_id":"srv-1"}
`
	tr := model.NewTranscript("chat-1")
	eng := NewEngine(&scriptOpener{body: body})

	var states []model.StreamState
	var versions []uint64
	notify := func() {
		if msg := tr.Last(); msg != nil && msg.Role == model.RoleAssistant {
			states = append(states, msg.State)
		}
		versions = append(versions, tr.Version())
	}
	if err := eng.Run(context.Background(), tr, "chat-1", "q", notify); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Every event produced a distinct transcript version: mutation is
	// visible per chunk, not batched at stream end.
	for i := 1; i < len(versions); i++ {
		if versions[i] <= versions[i-1] {
			t.Errorf("version did not advance at notify %d: %v", i, versions)
		}
	}

	wantStates := []model.StreamState{
		model.StateAwaitingPlan, // pending appended
		model.StateAwaitingPlan, // step 0 = planning
		model.StateStreaming,    // step 1 started
		model.StateStreaming,    // step 1 result
		model.StateFinalized,    // final
	}
	if len(states) != len(wantStates) {
		t.Fatalf("observed states %v, want %d transitions", states, len(wantStates))
	}
	for i, want := range wantStates {
		if states[i] != want {
			t.Errorf("state[%d] = %v, want %v", i, states[i], want)
		}
	}
}

func TestErrorEventIsTerminalForMessage(t *testing.T) {
	body := `{"type":"step_start","step_number":1,"description":"Load data"}
{"type":"error","message":"Execution failed: division by zero"}
`
	msg := lastMessage(t, run(t, body))
	if msg.State != model.StateFailed {
		t.Errorf("state = %v, want failed", msg.State)
	}
	if !strings.Contains(msg.Content, "division by zero") {
		t.Errorf("content = %q, want server error text", msg.Content)
	}
}

func TestTransportFailureOnOpen(t *testing.T) {
	tr := model.NewTranscript("chat-1")
	eng := NewEngine(&scriptOpener{err: errors.New("connection refused")})

	err := eng.Run(context.Background(), tr, "chat-1", "q", nil)
	if err == nil {
		t.Fatal("expected transport error")
	}
	msg := lastMessage(t, tr)
	if msg.State != model.StateFailed {
		t.Errorf("state = %v, want failed", msg.State)
	}
	if !strings.Contains(msg.Content, "Error") {
		t.Errorf("content = %q, want error text", msg.Content)
	}
}

func TestStreamEndWithoutFinalIsCriticalError(t *testing.T) {
	body := `{"type":"step_start","step_number":1,"description":"Load data"}
`
	msg := lastMessage(t, run(t, body))
	if msg.State != model.StateFailed {
		t.Errorf("state = %v, want failed", msg.State)
	}
	if !strings.Contains(msg.Content, "Critical Error") {
		t.Errorf("content = %q", msg.Content)
	}
}

func TestStreamEndAfterFinalPayloadKeepsAnswer(t *testing.T) {
	// The answer arrived but the persistence confirmation did not. The
	// message keeps its content under the provisional id.
	body := `{"type":"final_result","data":{"text":"done","steps":[],"code":""}}
`
	msg := lastMessage(t, run(t, body))
	if msg.State != model.StateFinalized {
		t.Errorf("state = %v, want finalized", msg.State)
	}
	if msg.Content != "done" {
		t.Errorf("content = %q", msg.Content)
	}
	if !strings.HasPrefix(msg.ID, "local-") {
		t.Errorf("id = %q, want provisional", msg.ID)
	}
}

func TestMalformedLinesDoNotAbortStream(t *testing.T) {
	body := "garbage line\n" +
		`{"type":"final_result","data":{"text":"survived","steps":[],"code":""}}` + "\n" +
		`{"type":"final","message_id":"srv-1"}` + "\n"
	msg := lastMessage(t, run(t, body))
	if msg.Content != "survived" || msg.State != model.StateFinalized {
		t.Errorf("message = %+v", msg)
	}
}

func TestSecondSendWhileStreamingIsRejected(t *testing.T) {
	release := make(chan struct{})
	eng := NewEngine(&blockingOpener{release: release})
	tr := model.NewTranscript("chat-1")

	done := make(chan error, 1)
	go func() {
		done <- eng.Run(context.Background(), tr, "chat-1", "first", nil)
	}()

	// Wait until the first send holds the engine.
	for !eng.Streaming() {
		runtime.Gosched()
	}

	tr2 := model.NewTranscript("chat-2")
	if err := eng.Run(context.Background(), tr2, "chat-2", "second", nil); !errors.Is(err, ErrSendInFlight) {
		t.Errorf("second send error = %v, want ErrSendInFlight", err)
	}

	close(release)
	<-done
	if eng.Streaming() {
		t.Error("engine should be idle after the stream ends")
	}
}

func TestIDSwapHappensExactlyOnce(t *testing.T) {
	body := `{"type":"final_result","data":{"text":"t","steps":[],"code":""}}
{"type":"final","message_id":"srv-7"}
{"type":"final","message_id":"srv-8"}
`
	tr := run(t, body)
	msg := lastMessage(t, tr)
	// The duplicate final is ignored: the id is swapped exactly once.
	if msg.ID != "srv-7" {
		t.Fatalf("id = %q, want srv-7", msg.ID)
	}
	if tr.Get("srv-8") != nil {
		t.Error("duplicate final should not create a second swap")
	}
}
