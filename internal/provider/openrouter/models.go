package openrouter

// ModelAuto is the pseudo-model that lets the bot pick from FallbackOrder.
const ModelAuto = "auto"

// Models maps selectable model IDs to their display names, in the order
// they appear in the bot's model picker.
var Models = []ModelInfo{
	{ID: ModelAuto, Name: "Auto (smart pick)"},
	{ID: "openai/gpt-oss-120b", Name: "GPT-OSS-120B"},
	{ID: "openai/gpt-oss-20b", Name: "GPT-OSS-20B"},
	{ID: "deepseek/deepseek-r1-0528:free", Name: "DeepSeek R1 (free)"},
	{ID: "qwen/qwen3-235b-a22b:free", Name: "Qwen3-235B (free)"},
	{ID: "qwen/qwen-2.5-coder-32b-instruct:free", Name: "Qwen Coder (free)"},
	{ID: "moonshotai/kimi-k2", Name: "Kimi K2"},
	{ID: "anthropic/claude-sonnet-4", Name: "Claude Sonnet 4"},
	{ID: "google/gemini-2.5-pro", Name: "Gemini 2.5 Pro"},
}

// ModelInfo describes a selectable model.
type ModelInfo struct {
	ID   string
	Name string
}

// FallbackOrder is the try-order used for the "auto" model and as the
// fallback chain when a selected model is unavailable.
var FallbackOrder = []string{
	"openai/gpt-oss-120b",
	"google/gemini-2.5-pro",
	"anthropic/claude-sonnet-4",
	"deepseek/deepseek-r1-0528:free",
	"qwen/qwen3-235b-a22b:free",
	"qwen/qwen-2.5-coder-32b-instruct:free",
	"moonshotai/kimi-k2",
	"openai/gpt-oss-20b",
}

// visionModels is the set of models that accept image content parts.
var visionModels = map[string]struct{}{
	"google/gemini-2.5-pro":     {},
	"anthropic/claude-sonnet-4": {},
	"openai/gpt-oss-120b":       {},
	"moonshotai/kimi-k2":        {},
}

// SupportsVision reports whether a model accepts image inputs.
func SupportsVision(model string) bool {
	_, ok := visionModels[model]
	return ok
}

// VisionOrder returns FallbackOrder filtered to vision-capable models.
func VisionOrder() []string {
	out := make([]string, 0, len(visionModels))
	for _, m := range FallbackOrder {
		if SupportsVision(m) {
			out = append(out, m)
		}
	}
	return out
}

// DisplayName returns the human-readable name for a model ID, falling
// back to the raw ID for models outside the catalog.
func DisplayName(id string) string {
	for _, m := range Models {
		if m.ID == id {
			return m.Name
		}
	}
	return id
}

// ModelByName returns the model ID whose display name matches, for mapping
// picker button presses back to model IDs.
func ModelByName(name string) (string, bool) {
	for _, m := range Models {
		if m.Name == name {
			return m.ID, true
		}
	}
	return "", false
}

// IsKnownModel reports whether id is in the selectable catalog.
func IsKnownModel(id string) bool {
	for _, m := range Models {
		if m.ID == id {
			return true
		}
	}
	return false
}

// defaultContextWindow is used when a model is not in the lookup table.
const defaultContextWindow = 128000

// contextWindows maps catalog model identifiers to their maximum context
// window size in tokens.
var contextWindows = map[string]int{
	"openai/gpt-oss-120b":                   131072,
	"openai/gpt-oss-20b":                    131072,
	"deepseek/deepseek-r1-0528:free":        163840,
	"qwen/qwen3-235b-a22b:free":             131072,
	"qwen/qwen-2.5-coder-32b-instruct:free": 32768,
	"moonshotai/kimi-k2":                    131072,
	"anthropic/claude-sonnet-4":             200000,
	"google/gemini-2.5-pro":                 1048576,
}

// lookupContextWindow returns the context window size for the given model.
func lookupContextWindow(model string) int {
	if size, ok := contextWindows[model]; ok {
		return size
	}
	return defaultContextWindow
}
