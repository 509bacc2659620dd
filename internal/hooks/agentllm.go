package hooks

import "context"

// AgentMessage is one turn in the conversation sent to the agent LLM
// hook, mirroring the adapter-layer message shape above the core.
type AgentMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content,omitempty"`
	ToolCalls []AgentToolCall `json:"tool_calls,omitempty"`
}

// AgentToolCall is one tool invocation the hook's reply requested.
type AgentToolCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// AgentTool describes one tool available to the hook for this call.
type AgentTool struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type agentLLMRequest struct {
	Messages []AgentMessage `json:"messages"`
	Tools    []AgentTool    `json:"tools,omitempty"`
	Session  string         `json:"session,omitempty"`
}

type agentLLMResponse struct {
	Message AgentMessage `json:"message"`
}

// AgentLLMHook adapts a child-process agent hook: the core itself
// never calls this directly, but the agent loop above it does,
// through the same Run framing as the expansion and rerank hooks.
type AgentLLMHook struct {
	Spec Spec
}

func (h AgentLLMHook) Complete(ctx context.Context, messages []AgentMessage, tools []AgentTool, session string) (AgentMessage, error) {
	var resp agentLLMResponse
	req := agentLLMRequest{Messages: messages, Tools: tools, Session: session}
	if err := Run(ctx, h.Spec, req, &resp); err != nil {
		return AgentMessage{}, err
	}
	return resp.Message, nil
}
