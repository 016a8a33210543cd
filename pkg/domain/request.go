package domain

// Fields carries the stage-specific inputs a caller may attach to a request.
// The mapstructure tags let transports decode loosely typed payloads.
type Fields struct {
	SourceURL    string `json:"source_url,omitempty" mapstructure:"source_url"`
	SubjectIndex *int   `json:"subject_index,omitempty" mapstructure:"subject_index"`
	ScriptIndex  *int   `json:"script_index,omitempty" mapstructure:"script_index"`
	NumImages    *int   `json:"num_images,omitempty" mapstructure:"num_images"`
	AvatarID     string `json:"avatar_id,omitempty" mapstructure:"avatar_id"`
	AccessToken  string `json:"access_token,omitempty" mapstructure:"access_token"`
	AccountID    string `json:"account_id,omitempty" mapstructure:"account_id"`
	MediaID      string `json:"media_id,omitempty" mapstructure:"media_id"`
}

// Request is the transport-agnostic input of one orchestration call.
type Request struct {
	SessionID      string `json:"session_id,omitempty" mapstructure:"session_id"`
	Message        string `json:"message,omitempty" mapstructure:"message"`
	ExplicitIntent string `json:"explicit_intent,omitempty" mapstructure:"explicit_intent"`
	Fields         Fields `json:"fields" mapstructure:",squash"`
}

// HasMessage reports whether the request carries user text.
func (r Request) HasMessage() bool { return r.Message != "" }

// Response is the transport-agnostic output of one orchestration call.
type Response struct {
	SessionID        string  `json:"session_id"`
	CurrentStep      Stage   `json:"current_step"`
	NavigationIntent Intent  `json:"navigation_intent,omitempty"`
	Error            *string `json:"error"`
	State            *State  `json:"state"`
}

// NewResponse projects a state into a response. The embedded state is a
// redacted copy: credentials never leave through a response.
func NewResponse(s *State) *Response {
	return &Response{
		SessionID:        s.SessionID,
		CurrentStep:      s.CurrentStep,
		NavigationIntent: s.NavigationIntent,
		Error:            s.Error,
		State:            s.Redacted(),
	}
}
