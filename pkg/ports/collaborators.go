package ports

import (
	"context"

	"github.com/aretw0/adflow/pkg/domain"
)

// Ingestor fetches the subject behind a source reference (product page, store listing).
type Ingestor interface {
	Ingest(ctx context.Context, sourceURL string) (*domain.Subject, error)
}

// AnalyzeInput is the input of Analyzer.Analyze.
type AnalyzeInput struct {
	Subject  *domain.Subject
	Feedback []string
	Previous *domain.Analysis
}

// Analyzer produces the marketing read of a subject.
type Analyzer interface {
	Analyze(ctx context.Context, in AnalyzeInput) (*domain.Analysis, error)
}

// DraftInput is the input of ScriptWriter.DraftScripts.
type DraftInput struct {
	Subject  *domain.Subject
	Analysis *domain.Analysis
	Feedback []string
	Current  []string
}

// RefineInput is the input of ScriptWriter.RefineScript.
type RefineInput struct {
	Script   string
	Feedback string
	History  []string
}

// ScriptWriter drafts and refines ad scripts.
type ScriptWriter interface {
	// DraftScripts returns up to three candidate scripts; extra entries are dropped.
	DraftScripts(ctx context.Context, in DraftInput) ([]string, error)
	RefineScript(ctx context.Context, in RefineInput) (string, error)
}

// ImageInput is the input of ImageGenerator.GenerateImages.
type ImageInput struct {
	SourceURL string
	Prompt    string
	Count     int
}

// ImageGenerator renders campaign visuals and returns their URLs.
type ImageGenerator interface {
	GenerateImages(ctx context.Context, in ImageInput) ([]string, error)
}

// VoiceSynthesizer turns script text into an audio reference.
type VoiceSynthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

// Video rendering states reported by AvatarStudio.PollVideo.
const (
	VideoProcessing = "processing"
	VideoCompleted  = "completed"
	VideoFailed     = "failed"
)

// VideoStatus is the pollable state of an avatar render.
type VideoStatus struct {
	Status   string
	VideoRef string
}

// AvatarStudio lists presenters and renders talking-avatar videos.
type AvatarStudio interface {
	ListAvatars(ctx context.Context) ([]domain.Avatar, error)
	RenderVideo(ctx context.Context, audioRef, avatarID string) (string, error)
	PollVideo(ctx context.Context, videoID string) (VideoStatus, error)
}

// Classification is the answer of an IntentClassifier.
type Classification struct {
	Intent    string
	Reasoning string
}

// IntentClassifier maps free text onto next, stay, complete or a stage name.
type IntentClassifier interface {
	Classify(ctx context.Context, current domain.Stage, message string) (Classification, error)
}

// AuthResult is returned by AdPlatform.Authenticate.
type AuthResult struct {
	UserID   string
	Accounts []domain.AdAccount
}

// Credentials scope every ad-platform write call.
type Credentials struct {
	AccessToken string
	AccountID   string
}

// AdPlatform is the advertising API. Publishing is a sequence of its write calls.
type AdPlatform interface {
	Authenticate(ctx context.Context, accessToken string) (AuthResult, error)
	UploadMedia(ctx context.Context, creds Credentials, media domain.Media) (string, error)
	CreateCampaign(ctx context.Context, creds Credentials, spec domain.CampaignSpec) (string, error)
	CreateAdSet(ctx context.Context, creds Credentials, campaignID string, spec domain.AdSetSpec) (string, error)
	CreateAd(ctx context.Context, creds Credentials, adSetID, mediaRef string, spec domain.AdSpec) (string, error)
}

// MediaQuery describes the creatives produced so far in the session.
type MediaQuery struct {
	AccountID string
	Images    []string
	VideoRef  string
}

// MediaLibrary lists the creatives available to a campaign.
type MediaLibrary interface {
	ListMedia(ctx context.Context, q MediaQuery) ([]domain.Media, error)
}

// BuildInput is the context a CampaignPlanner drafts a configuration from.
type BuildInput struct {
	Media    domain.Media
	Subject  *domain.Subject
	Analysis *domain.Analysis
	Script   string
}

// CampaignPlanner drafts, previews and amends campaign configurations.
type CampaignPlanner interface {
	BuildCampaign(ctx context.Context, in BuildInput) (*domain.CampaignConfig, error)
	PreviewCampaign(ctx context.Context, cfg *domain.CampaignConfig, media domain.Media) (string, error)
	ModifyCampaign(ctx context.Context, cfg *domain.CampaignConfig, feedback string) (*domain.CampaignConfig, error)
}

// Collaborators bundles every generator the core may call.
// A nil member makes the stages that need it fail with a collaborator error.
type Collaborators struct {
	Ingestor   Ingestor
	Analyzer   Analyzer
	Scripts    ScriptWriter
	Images     ImageGenerator
	Voice      VoiceSynthesizer
	Avatars    AvatarStudio
	Classifier IntentClassifier
	Ads        AdPlatform
	Media      MediaLibrary
	Planner    CampaignPlanner
}
