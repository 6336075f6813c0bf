package engine

const (
	zhipuDefaultBaseURL = "https://open.bigmodel.cn/api/paas/v4"
	zhipuDefaultModel   = "glm-4-flash"
)

// Zhipu wraps the ZhipuAI GLM chat-completions API. GLM models follow
// marker instructions reliably, so terminology is protected with
// placeholders rather than substituted up front.
type Zhipu struct {
	*chatClient
}

func NewZhipu(apiKey, baseURL, model string, timeouts Timeouts) *Zhipu {
	if baseURL == "" {
		baseURL = zhipuDefaultBaseURL
	}
	if model == "" {
		model = zhipuDefaultModel
	}
	return &Zhipu{newChatClient("zhipu", baseURL, apiKey, model, PlaceholderProtect, timeouts)}
}
