package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"maia/internal/llm"
	"maia/internal/logging"
	"maia/internal/tools"
	"maia/internal/types"
)

// SendMessage runs one user turn: the text goes to the model and every batch
// of function calls it answers with is executed and returned, until the model
// replies without calls or the round cap is hit.
//
// The user message is appended before anything is sent. On transport failure
// or when the cap is exceeded a fixed notice is appended and the model history
// is rolled back to where it was before the turn.
func (m *Manager) SendMessage(ctx context.Context, text string) error {
	if !m.turn.TryAcquire(1) {
		return ErrTurnInProgress
	}
	defer m.turn.Release(1)

	m.mu.Lock()
	m.inTurn = true
	m.mu.Unlock()
	defer m.finishTurn(ctx)

	start := time.Now()
	mode := m.Mode()

	chat, err := m.ensureSession(ctx)
	if err != nil {
		m.metrics.RecordTurn(mode, "config_error", 0, time.Since(start))
		return err
	}

	m.mu.Lock()
	mode, cf := m.mode, m.contextFile
	m.errText = ""
	m.mu.Unlock()

	chat.SetSystemInstruction(m.systemInstruction(mode, cf))
	m.transcript.Append(m.newMessage(types.RoleUser, text, types.KindChat))
	logging.SessionDebug("Turn started: mode=%s len=%d", mode, len(text))

	base := chat.Len()
	resp, err := m.round(ctx, func(rctx context.Context) (*llm.Response, error) {
		return chat.SendText(rctx, text)
	})

	rounds := 0
	for err == nil && resp.HasFunctionCalls() {
		if rounds >= m.cfg.MaxToolRounds {
			logging.SessionWarn("Tool loop exceeded %d rounds, aborting turn", m.cfg.MaxToolRounds)
			m.abort(chat, base, replyLoopExceeded, "")
			m.metrics.RecordTurn(mode, "loop_exceeded", rounds, time.Since(start))
			return ErrToolLoopExceeded
		}

		results := m.dispatch(ctx, resp.FunctionCalls)
		resp, err = m.round(ctx, func(rctx context.Context) (*llm.Response, error) {
			return chat.SendFunctionResponses(rctx, results)
		})
		rounds++
	}

	if err != nil {
		logging.SessionError("Turn aborted after %d tool rounds: %v", rounds, err)
		m.abort(chat, base, replyServiceInterrupted, errTextConnection)
		m.metrics.RecordTurn(mode, "transport_error", rounds, time.Since(start))
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}

	if resp.Text != "" {
		m.transcript.Append(m.newMessage(types.RoleModel, resp.Text, types.KindChat))
	}

	m.metrics.UpdateWorkspace(m.store.Summary())
	m.metrics.RecordTurn(mode, "ok", rounds, time.Since(start))
	logging.Session("Turn completed: mode=%s rounds=%d duration=%v", mode, rounds, time.Since(start))
	return nil
}

// ensureSession returns the live chat, creating one from the current
// transcript if needed.
func (m *Manager) ensureSession(ctx context.Context) (*llm.Chat, error) {
	m.mu.Lock()
	chat, ready := m.chat, m.state == StateReady
	m.mu.Unlock()
	if ready && chat != nil {
		return chat, nil
	}

	if err := m.initialize(ctx, initResume, nil); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chat, nil
}

// round performs one model round trip under the per-round timeout.
func (m *Manager) round(ctx context.Context, send func(context.Context) (*llm.Response, error)) (*llm.Response, error) {
	rctx, cancel := context.WithTimeout(ctx, m.cfg.RoundTimeout)
	defer cancel()

	start := time.Now()
	resp, err := send(rctx)

	status := "ok"
	var usage llm.Usage
	switch {
	case err != nil && errors.Is(rctx.Err(), context.DeadlineExceeded):
		status = "timeout"
	case err != nil:
		status = "error"
	default:
		usage = resp.Usage
		m.usage.Track(m.cfg.Model, m.Mode(), m.SessionID(), usage.PromptTokens, usage.CandidatesTokens)
	}
	m.metrics.RecordModelRound(status, time.Since(start), usage.PromptTokens, usage.CandidatesTokens)
	return resp, err
}

// dispatch executes one batch of calls in order. Failures become error
// payloads for the model; they never abort the turn.
func (m *Manager) dispatch(ctx context.Context, calls []llm.FunctionCall) []llm.FunctionResponse {
	out := make([]llm.FunctionResponse, 0, len(calls))
	for _, call := range calls {
		start := time.Now()
		res, err := m.registry.Execute(ctx, call.Name, call.Args)

		var payload map[string]any
		label, status := call.Name, "ok"
		switch {
		case errors.Is(err, tools.ErrToolNotFound):
			payload = map[string]any{"error": unsupportedOperation + call.Name}
			label, status = "unknown", "unknown"
		case err != nil:
			payload = map[string]any{"error": err.Error()}
			status = "error"
		default:
			payload = map[string]any{"result": res.Result}
		}

		m.metrics.RecordToolCall(label, status, time.Since(start))
		logging.ToolsDebug("Call %s(%s) -> %s", call.Name, call.ID, status)

		out = append(out, llm.FunctionResponse{ID: call.ID, Name: call.Name, Response: payload})
	}
	return out
}

// abort rolls the model history back to before the turn and tells the user.
func (m *Manager) abort(chat *llm.Chat, base int, reply, errText string) {
	chat.Truncate(base)
	m.transcript.Append(m.newMessage(types.RoleModel, reply, types.KindError))
	if errText != "" {
		m.mu.Lock()
		m.errText = errText
		m.mu.Unlock()
	}
}

// finishTurn ends the turn and applies a mode change requested during it.
func (m *Manager) finishTurn(ctx context.Context) {
	m.mu.Lock()
	m.inTurn = false
	pending, source := m.pendingMode, m.pendingSource
	m.pendingMode, m.pendingSource = nil, ""
	m.mu.Unlock()

	if pending == nil {
		return
	}
	if err := m.switchMode(context.WithoutCancel(ctx), *pending, source); err != nil {
		logging.SessionWarn("Deferred mode change to %s failed: %v", *pending, err)
	}
}
