package domain

// ChatRequest вопрос посетителя AI-помощнику
type ChatRequest struct {
	Message      string `json:"message"`
	MessageCount int    `json:"messageCount"`
}

// ChatResponse ответ AI-помощника
type ChatResponse struct {
	Response string `json:"response"`
	Source   string `json:"source"`
}
