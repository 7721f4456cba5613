package llm

type AIRequest struct {
	Model   string     `json:"model"`
	Prompt  string     `json:"prompt"`
	Stream  bool       `json:"stream"`
	Options *AIOptions `json:"options,omitempty"`
}

type AIOptions struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature"`
}

type aiResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}
