package alerter

// DeployWebhookPayload уведомление платформы деплоя (формат Railway)
type DeployWebhookPayload struct {
	Type      string         `json:"type"`
	Severity  string         `json:"severity"`
	Timestamp string         `json:"timestamp"`
	Details   DeployDetails  `json:"details"`
	Resource  DeployResource `json:"resource"`
}

type DeployDetails struct {
	Status        string `json:"status"`
	Branch        string `json:"branch"`
	CommitHash    string `json:"commitHash"`
	CommitAuthor  string `json:"commitAuthor"`
	CommitMessage string `json:"commitMessage"`
}

type DeployResource struct {
	Project     namedResource `json:"project"`
	Service     namedResource `json:"service"`
	Environment namedResource `json:"environment"`
}

type namedResource struct {
	Name string `json:"name"`
}

// ClientErrorPayload ошибка во фронтенде сайта или мини-приложения
type ClientErrorPayload struct {
	Message   string `json:"message"`
	Page      string `json:"page"`
	Stack     string `json:"stack"`
	CookieID  string `json:"cookie_id"`
	SessionID *int64 `json:"session_id"`
	UserAgent string `json:"user_agent"`
}
