package constant

const (
	ChatMessageRoleUser   = "user"
	ChatMessageRoleModel  = "model"
	ChatMessageRoleSystem = "system"

	// Tool names the agents announce through the event stream.
	ToolUpdateDepartmentProfile = "update_department_profile"
	ToolExitProfileLoop         = "exit_profile_loop"
	ToolSearchWeb               = "search_web"
	ToolSaveGrantsToState       = "save_grants_to_state"
	ToolSaveGrantDraft          = "save_grant_draft"

	// Ollama Configuration
	OllamaDefaultBaseURL = "http://localhost:11434"
	OllamaDefaultModel   = "llama3.1:8b"

	// Gemini Configuration
	GeminiDefaultModel = "gemini-2.0-flash"
)
