package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchpad/internal/llmclient"
)

func conversation(n int) []ChatMessage {
	msgs := make([]ChatMessage, 0, n)
	for i := 0; i < n; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		msgs = append(msgs, ChatMessage{Role: role, Content: fmt.Sprintf("m%d", i), Timestamp: int64(i)})
	}
	return msgs
}

func TestReplyMapsRolesAndSendsLastMessage(t *testing.T) {
	fake := llmclient.NewFakeClient().ScriptReply(PhaseChat, "Use esa.jsonc.")
	a := New(fake, Options{})

	got := a.Reply(context.Background(), conversation(3))
	assert.Equal(t, "Use esa.jsonc.", got)

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "m2", reqs[0].Prompt)
	assert.Equal(t, []llmclient.Turn{
		{Role: llmclient.RoleUser, Text: "m0"},
		{Role: llmclient.RoleModel, Text: "m1"},
	}, reqs[0].History)
	system, _ := reqs[0].Input.(string)
	assert.Contains(t, system, "EdgeKV")
	assert.Contains(t, system, "Reply in English")
}

func TestReplyUnboundedKeepsLeadingAssistantGreeting(t *testing.T) {
	fake := llmclient.NewFakeClient()
	msgs := []ChatMessage{
		{Role: RoleAssistant, Content: "Hi, how can I help?"},
		{Role: RoleUser, Content: "deploy?"},
	}
	New(fake, Options{}).Reply(context.Background(), msgs)
	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	require.Len(t, reqs[0].History, 1)
	assert.Equal(t, llmclient.RoleModel, reqs[0].History[0].Role)
}

func TestReplyBoundsHistory(t *testing.T) {
	fake := llmclient.NewFakeClient()
	a := New(fake, Options{MaxHistory: 5})

	a.Reply(context.Background(), conversation(21))
	hist := fake.Requests()[0].History
	// The last five prior messages are m15..m19; m15 is an assistant turn
	// and is dropped so the history opens on a user turn.
	require.Len(t, hist, 4)
	assert.Equal(t, "m16", hist[0].Text)
	assert.Equal(t, llmclient.RoleUser, hist[0].Role)
	assert.Equal(t, "m19", hist[3].Text)
}

func TestReplyFixedStrings(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ReplyNoMessage, New(llmclient.NewFakeClient(), Options{}).Reply(ctx, nil))

	failing := llmclient.NewFakeClient().ScriptError(PhaseChat, errors.New("503"))
	assert.Equal(t, ReplyUnreachable, New(failing, Options{}).Reply(ctx, conversation(1)))

	empty := llmclient.NewFakeClient().ScriptReply(PhaseChat, "  ")
	assert.Equal(t, ReplyNoContent, New(empty, Options{}).Reply(ctx, conversation(1)))

	assert.Equal(t, ReplyUnreachable, New(nil, Options{}).Reply(ctx, conversation(1)))
}

func TestSystemPromptLanguage(t *testing.T) {
	if !strings.Contains(SystemPrompt("Chinese"), "Reply in Chinese.") {
		t.Fatalf("language directive missing")
	}
}

func TestGenerateEdgeFunctionStaticWithoutFeatures(t *testing.T) {
	fake := llmclient.NewFakeClient()
	fn := New(fake, Options{}).GenerateEdgeFunction(context.Background(), EdgeFunctionOptions{})
	assert.False(t, fn.Generated)
	assert.Equal(t, StaticEdgeFunction, fn.Code)
	assert.Empty(t, fake.Requests())
}

func TestGenerateEdgeFunctionStripsFence(t *testing.T) {
	code := "export default { async fetch(request) { return fetch(request); } };"
	fake := llmclient.NewFakeClient().ScriptReply(PhaseEdgeFunction, "```javascript\n"+code+"\n```")
	fn := New(fake, Options{}).GenerateEdgeFunction(context.Background(), EdgeFunctionOptions{
		UseEdgeKV:        true,
		KVNamespace:      "sessions",
		UseCustomHeaders: true,
	})
	assert.True(t, fn.Generated)
	assert.Equal(t, code, fn.Code)

	prompt := fake.Requests()[0].Prompt
	assert.Contains(t, prompt, `namespace "sessions"`)
	assert.Contains(t, prompt, CustomHeader)
}

func TestGenerateEdgeFunctionFallsBackOnError(t *testing.T) {
	fake := llmclient.NewFakeClient().ScriptError(PhaseEdgeFunction, errors.New("quota"))
	fn := New(fake, Options{}).GenerateEdgeFunction(context.Background(), EdgeFunctionOptions{UseCustomHeaders: true})
	assert.False(t, fn.Generated)
	assert.Equal(t, StaticEdgeFunction, fn.Code)
}
