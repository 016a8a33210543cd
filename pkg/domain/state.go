package domain

import "maps"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the append-only conversation log.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Subject is the ingested thing being advertised. A store listing carries its
// products in Products and one of them becomes the selected subject.
type Subject struct {
	SourceURL   string            `json:"source_url"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Price       string            `json:"price,omitempty"`
	Images      []string          `json:"images,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	Products    []Subject         `json:"products,omitempty"`
}

// IsStore reports whether the subject lists several products.
func (s *Subject) IsStore() bool { return s != nil && len(s.Products) > 0 }

// Analysis is the marketing read of a subject.
type Analysis struct {
	Summary       string   `json:"summary"`
	Audience      string   `json:"audience,omitempty"`
	SellingPoints []string `json:"selling_points,omitempty"`
	Tone          string   `json:"tone,omitempty"`
}

// Avatar is one entry of the avatar catalog.
type Avatar struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PreviewURL string `json:"preview_url,omitempty"`
}

// AdAccount is an advertising account reachable with the session's token.
type AdAccount struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MediaKind distinguishes uploadable creatives.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// Media is a creative produced earlier in the pipeline and offered to the campaign.
type Media struct {
	ID   string    `json:"id"`
	Kind MediaKind `json:"kind"`
	URL  string    `json:"url"`
	Name string    `json:"name,omitempty"`
}

// PublishStatus tracks the campaign through preview, modification and publishing.
type PublishStatus string

const (
	PublishDraft      PublishStatus = "draft"
	PublishPreview    PublishStatus = "preview"
	PublishModified   PublishStatus = "modified"
	PublishPublishing PublishStatus = "publishing"
	PublishPublished  PublishStatus = "published"
	PublishFailed     PublishStatus = "failed"
)

// PublishedIDs records every platform object created while publishing.
// Entries survive a failed publish so a human can finish the campaign by hand.
type PublishedIDs struct {
	MediaRef   string `json:"media_ref,omitempty"`
	CampaignID string `json:"campaign_id,omitempty"`
	AdSetID    string `json:"adset_id,omitempty"`
	AdID       string `json:"ad_id,omitempty"`
	ManagerURL string `json:"manager_url,omitempty"`
}

// State is the per-session record driven by the orchestration core.
// Optional fields are pointers or nil collections; absence is always explicit.
type State struct {
	SessionID        string    `json:"session_id"`
	CurrentStep      Stage     `json:"current_step"`
	NavigationIntent Intent    `json:"navigation_intent,omitempty"`
	Messages         []Message `json:"messages"`

	// Restart confirmation. Set only while CurrentStep == StageConfirmRestart.
	PendingURL   *string `json:"pending_url,omitempty"`
	PreviousStep *Stage  `json:"previous_step,omitempty"`

	SourceURL           *string   `json:"source_url,omitempty"`
	SubjectData         *Subject  `json:"subject_data,omitempty"`
	SelectedSubject     *Subject  `json:"selected_subject,omitempty"`
	Analysis            *Analysis `json:"analysis,omitempty"`
	Scripts             []string  `json:"scripts,omitempty"`
	SelectedScriptIndex *int      `json:"selected_script_index,omitempty"`
	SelectedScript      *string   `json:"selected_script,omitempty"`
	GeneratedImages     []string  `json:"generated_images,omitempty"`
	ImagePrompt         *string   `json:"image_prompt,omitempty"`
	AudioRef            *string   `json:"audio_ref,omitempty"`
	AudioScript         *string   `json:"audio_script,omitempty"`
	AvatarCatalog       []Avatar  `json:"avatar_catalog,omitempty"`
	SelectedAvatarID    *string   `json:"selected_avatar_id,omitempty"`
	VideoID             *string   `json:"video_id,omitempty"`
	VideoRef            *string   `json:"video_ref,omitempty"`
	VideoStatus         *string   `json:"video_status,omitempty"`
	VideoInputs         *string   `json:"video_inputs,omitempty"`

	AnalysisFeedback         []string `json:"analysis_feedback,omitempty"`
	ScriptFeedback           []string `json:"script_feedback,omitempty"`
	ImageFeedback            []string `json:"image_feedback,omitempty"`
	ScriptRefinementFeedback []string `json:"script_refinement_feedback,omitempty"`

	IterationCount map[Stage]int `json:"iteration_count,omitempty"`
	Error          *string       `json:"error,omitempty"`

	// Ad-campaign sub-state.
	AccessToken           *string         `json:"access_token,omitempty"`
	AccountRef            *string         `json:"account_ref,omitempty"`
	Accounts              []AdAccount     `json:"accounts,omitempty"`
	MediaCatalog          []Media         `json:"media_catalog,omitempty"`
	SelectedMedia         *Media          `json:"selected_media,omitempty"`
	CampaignConfig        *CampaignConfig `json:"campaign_config,omitempty"`
	CampaignPreview       *string         `json:"campaign_preview,omitempty"`
	CampaignModifications []string        `json:"campaign_modifications,omitempty"`
	PublishStatus         PublishStatus   `json:"publish_status,omitempty"`
	PublishedIDs          PublishedIDs    `json:"published_ids"`
}

// NewState returns the default record for a session that has never been seen.
func NewState(sessionID string) *State {
	return &State{
		SessionID:      sessionID,
		CurrentStep:    FirstStage,
		Messages:       []Message{},
		IterationCount: make(map[Stage]int),
	}
}

// AppendMessage adds one entry to the conversation log.
func (s *State) AppendMessage(role Role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
}

// LastUserMessage returns the most recent user message, if any.
func (s *State) LastUserMessage() (string, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i].Content, true
		}
	}
	return "", false
}

// SetError records a human-readable failure.
func (s *State) SetError(msg string) { s.Error = &msg }

// ClearError drops any previous failure.
func (s *State) ClearError() { s.Error = nil }

// ErrorMessage returns the recorded failure or "".
func (s *State) ErrorMessage() string {
	if s.Error == nil {
		return ""
	}
	return *s.Error
}

// Iterations returns how many times stage completed successfully.
func (s *State) Iterations(stage Stage) int {
	return s.IterationCount[stage]
}

// Bump increments the success counter for stage.
func (s *State) Bump(stage Stage) {
	if s.IterationCount == nil {
		s.IterationCount = make(map[Stage]int)
	}
	s.IterationCount[stage]++
}

// SecretMask replaces credentials in records shown outside the core.
const SecretMask = "***"

// Redacted returns a copy with the access token masked, for transports and displays.
func (s *State) Redacted() *State {
	c := s.Clone()
	if c != nil && c.AccessToken != nil {
		c.AccessToken = Ptr(SecretMask)
	}
	return c
}

// Clone returns a deep copy, so stores can hand out records without sharing memory.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.Messages = append([]Message(nil), s.Messages...)
	if c.Messages == nil {
		c.Messages = []Message{}
	}
	c.PendingURL = clonePtr(s.PendingURL)
	c.PreviousStep = clonePtr(s.PreviousStep)
	c.SourceURL = clonePtr(s.SourceURL)
	c.SubjectData = s.SubjectData.clone()
	c.SelectedSubject = s.SelectedSubject.clone()
	if s.Analysis != nil {
		a := *s.Analysis
		a.SellingPoints = cloneSlice(s.Analysis.SellingPoints)
		c.Analysis = &a
	}
	c.Scripts = cloneSlice(s.Scripts)
	c.SelectedScriptIndex = clonePtr(s.SelectedScriptIndex)
	c.SelectedScript = clonePtr(s.SelectedScript)
	c.GeneratedImages = cloneSlice(s.GeneratedImages)
	c.ImagePrompt = clonePtr(s.ImagePrompt)
	c.AudioRef = clonePtr(s.AudioRef)
	c.AudioScript = clonePtr(s.AudioScript)
	c.AvatarCatalog = cloneSlice(s.AvatarCatalog)
	c.SelectedAvatarID = clonePtr(s.SelectedAvatarID)
	c.VideoID = clonePtr(s.VideoID)
	c.VideoRef = clonePtr(s.VideoRef)
	c.VideoStatus = clonePtr(s.VideoStatus)
	c.VideoInputs = clonePtr(s.VideoInputs)
	c.AnalysisFeedback = cloneSlice(s.AnalysisFeedback)
	c.ScriptFeedback = cloneSlice(s.ScriptFeedback)
	c.ImageFeedback = cloneSlice(s.ImageFeedback)
	c.ScriptRefinementFeedback = cloneSlice(s.ScriptRefinementFeedback)
	c.IterationCount = maps.Clone(s.IterationCount)
	if c.IterationCount == nil {
		c.IterationCount = make(map[Stage]int)
	}
	c.Error = clonePtr(s.Error)
	c.AccessToken = clonePtr(s.AccessToken)
	c.AccountRef = clonePtr(s.AccountRef)
	c.Accounts = cloneSlice(s.Accounts)
	c.MediaCatalog = cloneSlice(s.MediaCatalog)
	c.SelectedMedia = clonePtr(s.SelectedMedia)
	c.CampaignConfig = s.CampaignConfig.Clone()
	c.CampaignPreview = clonePtr(s.CampaignPreview)
	c.CampaignModifications = cloneSlice(s.CampaignModifications)
	return &c
}

func (s *Subject) clone() *Subject {
	if s == nil {
		return nil
	}
	c := *s
	c.Images = cloneSlice(s.Images)
	c.Attributes = maps.Clone(s.Attributes)
	if s.Products != nil {
		c.Products = make([]Subject, len(s.Products))
		for i := range s.Products {
			c.Products[i] = *s.Products[i].clone()
		}
	}
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append([]T(nil), s...)
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
