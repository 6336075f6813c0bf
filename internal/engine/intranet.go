package engine

const intranetDefaultModel = "qwen2.5:14b"

// Intranet wraps an OpenAI-compatible server hosted inside the local
// network. The models behind it are small and tend to paraphrase marker
// tokens, so glossary terms are substituted directly instead.
type Intranet struct {
	*chatClient
}

func NewIntranet(baseURL, apiKey, model string, timeouts Timeouts) *Intranet {
	if model == "" {
		model = intranetDefaultModel
	}
	return &Intranet{newChatClient("intranet", baseURL, apiKey, model, DirectReplace, timeouts)}
}
