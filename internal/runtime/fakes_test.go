package runtime

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/aretw0/adflow/pkg/adapters/memory"
	"github.com/aretw0/adflow/pkg/domain"
	"github.com/aretw0/adflow/pkg/ports"
	"github.com/aretw0/adflow/pkg/session"
)

// fakes implements every collaborator, counting calls and failing on demand.
type fakes struct {
	mu     sync.Mutex
	calls  map[string]int
	failOn map[string]error

	store       bool
	scripts     []string
	intent      ports.Classification
	classifyErr error
	video       ports.VideoStatus
	accounts    []domain.AdAccount
}

func newFakes() *fakes {
	return &fakes{
		calls:    make(map[string]int),
		failOn:   make(map[string]error),
		scripts:  []string{"script one", "script two", "script three", "script four"},
		intent:   ports.Classification{Intent: "stay"},
		video:    ports.VideoStatus{Status: ports.VideoCompleted, VideoRef: "https://video.test/vid-1.mp4"},
		accounts: []domain.AdAccount{{ID: "act_1", Name: "Main"}},
	}
}

func (f *fakes) hit(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.failOn[name]
}

func (f *fakes) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakes) fail(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failOn, name)
		return
	}
	f.failOn[name] = err
}

func (f *fakes) collaborators() ports.Collaborators {
	return ports.Collaborators{
		Ingestor:   f,
		Analyzer:   f,
		Scripts:    f,
		Images:     f,
		Voice:      f,
		Avatars:    f,
		Classifier: f,
		Ads:        f,
		Media:      f,
		Planner:    f,
	}
}

func (f *fakes) Ingest(ctx context.Context, sourceURL string) (*domain.Subject, error) {
	if err := f.hit("ingest"); err != nil {
		return nil, err
	}
	s := &domain.Subject{SourceURL: sourceURL, Title: "Widget"}
	if f.store {
		s.Products = []domain.Subject{{Title: "Red widget"}, {Title: "Blue widget"}}
	}
	return s, nil
}

func (f *fakes) Analyze(ctx context.Context, in ports.AnalyzeInput) (*domain.Analysis, error) {
	if err := f.hit("analyze"); err != nil {
		return nil, err
	}
	return &domain.Analysis{Summary: fmt.Sprintf("%s with %d notes", in.Subject.Title, len(in.Feedback))}, nil
}

func (f *fakes) DraftScripts(ctx context.Context, in ports.DraftInput) ([]string, error) {
	if err := f.hit("draft_scripts"); err != nil {
		return nil, err
	}
	return append([]string(nil), f.scripts...), nil
}

func (f *fakes) RefineScript(ctx context.Context, in ports.RefineInput) (string, error) {
	if err := f.hit("refine_script"); err != nil {
		return "", err
	}
	return in.Script + " (" + in.Feedback + ")", nil
}

func (f *fakes) GenerateImages(ctx context.Context, in ports.ImageInput) ([]string, error) {
	if err := f.hit("generate_images"); err != nil {
		return nil, err
	}
	out := make([]string, in.Count)
	for i := range out {
		out[i] = fmt.Sprintf("https://img.test/%d.png", i)
	}
	return out, nil
}

func (f *fakes) Synthesize(ctx context.Context, text string) (string, error) {
	if err := f.hit("synthesize"); err != nil {
		return "", err
	}
	return fmt.Sprintf("audio-%d", f.count("synthesize")), nil
}

func (f *fakes) ListAvatars(ctx context.Context) ([]domain.Avatar, error) {
	if err := f.hit("list_avatars"); err != nil {
		return nil, err
	}
	return []domain.Avatar{{ID: "anna", Name: "Anna"}, {ID: "ben", Name: "Ben"}}, nil
}

func (f *fakes) RenderVideo(ctx context.Context, audioRef, avatarID string) (string, error) {
	if err := f.hit("render_video"); err != nil {
		return "", err
	}
	return fmt.Sprintf("vid-%d", f.count("render_video")), nil
}

func (f *fakes) PollVideo(ctx context.Context, videoID string) (ports.VideoStatus, error) {
	if err := f.hit("poll_video"); err != nil {
		return ports.VideoStatus{}, err
	}
	return f.video, nil
}

func (f *fakes) Classify(ctx context.Context, current domain.Stage, message string) (ports.Classification, error) {
	if err := f.hit("classify"); err != nil {
		return ports.Classification{}, err
	}
	return f.intent, f.classifyErr
}

func (f *fakes) Authenticate(ctx context.Context, accessToken string) (ports.AuthResult, error) {
	if err := f.hit("authenticate"); err != nil {
		return ports.AuthResult{}, err
	}
	return ports.AuthResult{UserID: "user-1", Accounts: f.accounts}, nil
}

func (f *fakes) UploadMedia(ctx context.Context, creds ports.Credentials, media domain.Media) (string, error) {
	if err := f.hit("upload_media"); err != nil {
		return "", err
	}
	return "media-ref-1", nil
}

func (f *fakes) CreateCampaign(ctx context.Context, creds ports.Credentials, spec domain.CampaignSpec) (string, error) {
	if err := f.hit("create_campaign"); err != nil {
		return "", err
	}
	return "cmp-1", nil
}

func (f *fakes) CreateAdSet(ctx context.Context, creds ports.Credentials, campaignID string, spec domain.AdSetSpec) (string, error) {
	if err := f.hit("create_adset"); err != nil {
		return "", err
	}
	return "adset-1", nil
}

func (f *fakes) CreateAd(ctx context.Context, creds ports.Credentials, adSetID, mediaRef string, spec domain.AdSpec) (string, error) {
	if err := f.hit("create_ad"); err != nil {
		return "", err
	}
	return "ad-1", nil
}

func (f *fakes) ListMedia(ctx context.Context, q ports.MediaQuery) ([]domain.Media, error) {
	if err := f.hit("list_media"); err != nil {
		return nil, err
	}
	var out []domain.Media
	for i, img := range q.Images {
		out = append(out, domain.Media{ID: fmt.Sprintf("img-%d", i), Kind: domain.MediaImage, URL: img})
	}
	if q.VideoRef != "" {
		out = append(out, domain.Media{ID: "video-0", Kind: domain.MediaVideo, URL: q.VideoRef})
	}
	return out, nil
}

func (f *fakes) BuildCampaign(ctx context.Context, in ports.BuildInput) (*domain.CampaignConfig, error) {
	if err := f.hit("build_campaign"); err != nil {
		return nil, err
	}
	return &domain.CampaignConfig{
		Campaign: domain.CampaignSpec{Name: "Widget campaign", Objective: "OUTCOME_TRAFFIC"},
		AdSet:    domain.AdSetSpec{Name: "Widget audience", DailyBudget: 2000},
		Ad:       domain.AdSpec{Name: "Widget ad", Headline: "Meet the widget", CallToAction: "SHOP_NOW"},
	}, nil
}

func (f *fakes) PreviewCampaign(ctx context.Context, cfg *domain.CampaignConfig, media domain.Media) (string, error) {
	if err := f.hit("preview_campaign"); err != nil {
		return "", err
	}
	return "preview: " + cfg.Ad.Headline, nil
}

func (f *fakes) ModifyCampaign(ctx context.Context, cfg *domain.CampaignConfig, feedback string) (*domain.CampaignConfig, error) {
	if err := f.hit("modify_campaign"); err != nil {
		return nil, err
	}
	out := cfg.Clone()
	out.Ad.Headline = feedback
	return out, nil
}

// harness wires an Engine over fakes and an in-memory store.
type harness struct {
	t      *testing.T
	engine *Engine
	fakes  *fakes
}

func newHarness(t *testing.T, opts ...ExecutorOption) *harness {
	t.Helper()
	f := newFakes()
	x := NewExecutor(f.collaborators(), opts...)
	r := NewResolver(f)
	e := NewEngine(session.NewManager(memory.NewStore()), r, x)
	return &harness{t: t, engine: e, fakes: f}
}

// say sends a free-form message.
func (h *harness) say(s *domain.State, msg string) Resolution {
	return h.engine.Step(context.Background(), s, domain.Request{SessionID: s.SessionID, Message: msg})
}

// hit targets a stage explicitly, as the per-stage endpoints do.
func (h *harness) hit(s *domain.State, stage domain.Stage, msg string, fields domain.Fields) Resolution {
	return h.engine.Step(context.Background(), s, domain.Request{
		SessionID:      s.SessionID,
		Message:        msg,
		ExplicitIntent: string(stage),
		Fields:         fields,
	})
}

// stateAt builds a state parked on stage with every upstream artifact present.
func stateAt(stage domain.Stage) *domain.State {
	s := domain.NewState("test-session")
	s.CurrentStep = stage
	pos := stage.Position()
	at := func(st domain.Stage) bool { return pos >= st.Position() }

	if at(domain.StageAnalyze) {
		s.SourceURL = domain.Ptr("https://shop.example/widget")
		s.SubjectData = &domain.Subject{SourceURL: *s.SourceURL, Title: "Widget"}
		s.SelectedSubject = s.SubjectData
	}
	if at(domain.StageDraftScripts) {
		s.Analysis = &domain.Analysis{Summary: "Widget analysis"}
	}
	if at(domain.StageSelectScript) {
		s.Scripts = []string{"s1", "s2", "s3"}
	}
	if at(domain.StageRefineScript) {
		s.SelectedScriptIndex = domain.Ptr(0)
		s.SelectedScript = domain.Ptr("s1")
	}
	if at(domain.StageRefineImages) {
		s.GeneratedImages = []string{"https://img.test/0.png", "https://img.test/1.png"}
	}
	if at(domain.StageSelectAvatar) {
		s.AudioRef = domain.Ptr("audio-1")
		s.AudioScript = domain.Ptr("s1")
	}
	if at(domain.StageRenderVideo) {
		s.AvatarCatalog = []domain.Avatar{{ID: "anna", Name: "Anna"}}
		s.SelectedAvatarID = domain.Ptr("anna")
	}
	if at(domain.StageSelectAccount) {
		s.AccessToken = domain.Ptr("token")
		s.Accounts = []domain.AdAccount{{ID: "act_1", Name: "Main"}}
		s.PublishStatus = domain.PublishDraft
	}
	if at(domain.StageSelectMedia) {
		s.AccountRef = domain.Ptr("act_1")
	}
	if at(domain.StagePreviewCampaign) {
		s.MediaCatalog = []domain.Media{{ID: "img-0", Kind: domain.MediaImage, URL: "https://img.test/0.png"}}
		s.SelectedMedia = &s.MediaCatalog[0]
	}
	if at(domain.StageRefineCampaign) {
		s.CampaignConfig = &domain.CampaignConfig{Campaign: domain.CampaignSpec{Name: "Widget campaign"}}
		s.CampaignPreview = domain.Ptr("preview")
		s.PublishStatus = domain.PublishPreview
	}
	return s
}
