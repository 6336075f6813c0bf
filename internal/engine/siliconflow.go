package engine

const (
	siliconFlowDefaultBaseURL = "https://api.siliconflow.cn/v1"
	siliconFlowDefaultModel   = "Qwen/Qwen2.5-7B-Instruct"
)

// SiliconFlow wraps the SiliconFlow OpenAI-compatible API.
type SiliconFlow struct {
	*chatClient
}

func NewSiliconFlow(apiKey, baseURL, model string, timeouts Timeouts) *SiliconFlow {
	if baseURL == "" {
		baseURL = siliconFlowDefaultBaseURL
	}
	if model == "" {
		model = siliconFlowDefaultModel
	}
	return &SiliconFlow{newChatClient("siliconflow", baseURL, apiKey, model, PlaceholderProtect, timeouts)}
}
