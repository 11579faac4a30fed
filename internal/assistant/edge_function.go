package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"launchpad/internal/llmclient"
	"launchpad/internal/llmtool"
)

// PhaseEdgeFunction tags oracle calls that write edge function code.
const PhaseEdgeFunction = "edge_function"

// CustomHeader is added to responses when custom headers are requested.
const CustomHeader = "X-Powered-By: ESA-LaunchPad"

// StaticEdgeFunction is returned when no dynamic feature is selected.
const StaticEdgeFunction = `// esa.jsonc handles static routing.
// A basic static site needs no extra edge function logic.
// Enable EdgeKV or custom headers to generate one.

export default {
  async fetch(request) {
    // pass through by default
    return fetch(request);
  }
};`

// EdgeFunctionOptions selects the features of a generated edge function.
type EdgeFunctionOptions struct {
	UseEdgeKV        bool   `json:"useEdgeKV"`
	KVNamespace      string `json:"kvNamespace,omitempty"`
	UseCustomHeaders bool   `json:"useCustomHeaders"`
}

func (o EdgeFunctionOptions) dynamic() bool { return o.UseEdgeKV || o.UseCustomHeaders }

// EdgeFunction is generated entry code.
type EdgeFunction struct {
	Code string `json:"code"`
	// Generated is false when Code is the static template.
	Generated bool `json:"generated"`
}

var edgeFunctionSpec = llmtool.StructuredPromptSpec{
	Purpose: "Write a complete JavaScript ES module (index.js) for an Alibaba Cloud ESA edge function.",
	OutputFields: []llmtool.PromptField{
		{Name: "export default", Type: "object", Required: true, Description: "export default { async fetch(request) { ... } }"},
	},
	Rules: []string{
		"Handle errors gracefully and return a valid Response.",
		"Add short comments explaining ESA specific APIs.",
	},
	OutputFormat: "Plain JavaScript source.",
}

// EdgeFunctionPrompt renders the generation prompt for opts.
func EdgeFunctionPrompt(opts EdgeFunctionOptions) (string, error) {
	spec := llmtool.ApplyPresets(edgeFunctionSpec, llmtool.PresetCodeOnly())
	var rules []string
	if opts.UseEdgeKV {
		ns := strings.TrimSpace(opts.KVNamespace)
		if ns == "" {
			ns = "default"
		}
		rules = append(rules, fmt.Sprintf(`Use EdgeKV with namespace %q. API: const kv = new EdgeKV({namespace: "..."}); await kv.put(key, value); await kv.get(key).`, ns))
	}
	if opts.UseCustomHeaders {
		rules = append(rules, fmt.Sprintf("Add the response header '%s'.", CustomHeader))
	}
	spec.Rules = append(rules, spec.Rules...)
	return llmtool.RenderStructuredPrompt(spec, opts)
}

// GenerateEdgeFunction returns entry code for opts. Without dynamic
// features, or when the oracle fails, the static template is returned.
func (a *Assistant) GenerateEdgeFunction(ctx context.Context, opts EdgeFunctionOptions) EdgeFunction {
	static := EdgeFunction{Code: StaticEdgeFunction}
	if !opts.dynamic() || a.llm == nil {
		return static
	}
	prompt, err := EdgeFunctionPrompt(opts)
	if err != nil {
		logrus.WithError(err).Warn("edge function prompt failed")
		return static
	}
	out, err := a.llm.Chat(llmclient.WithPhase(ctx, PhaseEdgeFunction), llmclient.ChatRequest{
		System:  a.system,
		Message: prompt,
	})
	if err != nil {
		logrus.WithError(err).Warn("edge function oracle unreachable, using template")
		return static
	}
	code := stripCodeFence(out)
	if code == "" {
		return static
	}
	return EdgeFunction{Code: code, Generated: true}
}

// stripCodeFence removes markdown fences of any language tag.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
