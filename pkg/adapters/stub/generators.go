package stub

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/aretw0/adflow/pkg/domain"
	"github.com/aretw0/adflow/pkg/ports"
)

// Generators implements every collaborator port with canned, input-derived output.
type Generators struct {
	mu     sync.Mutex
	seq    int
	videos map[string]string
}

// New creates a Generators.
func New() *Generators {
	return &Generators{videos: make(map[string]string)}
}

// Collaborators returns the full set, with the keyword classifier.
func (g *Generators) Collaborators() ports.Collaborators {
	return ports.Collaborators{
		Ingestor:   g,
		Analyzer:   g,
		Scripts:    g,
		Images:     g,
		Voice:      g,
		Avatars:    g,
		Classifier: NewKeywordClassifier(),
		Ads:        g,
		Media:      g,
		Planner:    g,
	}
}

func (g *Generators) next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%d", prefix, g.seq)
}

// titleFrom derives a product title from the last path segment of a URL.
func titleFrom(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" || u.Path == "/" {
		return "Product"
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	words := strings.FieldsFunc(parts[len(parts)-1], func(r rune) bool {
		return r == '-' || r == '_' || r == '.'
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	if len(words) == 0 {
		return "Product"
	}
	return strings.Join(words, " ")
}

func (g *Generators) Ingest(ctx context.Context, sourceURL string) (*domain.Subject, error) {
	if sourceURL == "" {
		return nil, fmt.Errorf("empty source reference")
	}
	title := titleFrom(sourceURL)
	return &domain.Subject{
		SourceURL:   sourceURL,
		Title:       title,
		Description: fmt.Sprintf("%s, as listed at %s.", title, sourceURL),
		Price:       "19.99",
		Attributes:  map[string]string{"source": "stub"},
	}, nil
}

func (g *Generators) Analyze(ctx context.Context, in ports.AnalyzeInput) (*domain.Analysis, error) {
	a := &domain.Analysis{
		Summary:       fmt.Sprintf("%s is a practical everyday product.", in.Subject.Title),
		Audience:      "value-minded online shoppers",
		SellingPoints: []string{"affordable", "easy to use", "ships fast"},
		Tone:          "friendly",
	}
	if len(in.Feedback) > 0 {
		a.Summary += " Adjusted for: " + strings.Join(in.Feedback, "; ") + "."
	}
	return a, nil
}

func (g *Generators) DraftScripts(ctx context.Context, in ports.DraftInput) ([]string, error) {
	hooks := []string{"Tired of settling?", "Here's a little secret.", "You asked, we delivered."}
	out := make([]string, len(hooks))
	for i, hook := range hooks {
		out[i] = fmt.Sprintf("%s Meet %s: %s.", hook, in.Subject.Title, in.Analysis.Summary)
		if len(in.Feedback) > 0 {
			out[i] += " (" + in.Feedback[len(in.Feedback)-1] + ")"
		}
	}
	return out, nil
}

func (g *Generators) RefineScript(ctx context.Context, in ports.RefineInput) (string, error) {
	return fmt.Sprintf("%s [revised: %s]", in.Script, in.Feedback), nil
}

func (g *Generators) GenerateImages(ctx context.Context, in ports.ImageInput) ([]string, error) {
	batch := g.next("batch")
	out := make([]string, in.Count)
	for i := range out {
		out[i] = fmt.Sprintf("https://stub.adflow.local/images/%s/%d.png", batch, i)
	}
	return out, nil
}

func (g *Generators) Synthesize(ctx context.Context, text string) (string, error) {
	return fmt.Sprintf("https://stub.adflow.local/audio/%s.mp3", g.next("voice")), nil
}

func (g *Generators) ListAvatars(ctx context.Context) ([]domain.Avatar, error) {
	return []domain.Avatar{
		{ID: "avatar-ava", Name: "Ava", PreviewURL: "https://stub.adflow.local/avatars/ava.png"},
		{ID: "avatar-leo", Name: "Leo", PreviewURL: "https://stub.adflow.local/avatars/leo.png"},
	}, nil
}

// RenderVideo registers a render that completes on the first poll.
func (g *Generators) RenderVideo(ctx context.Context, audioRef, avatarID string) (string, error) {
	id := g.next("video")
	g.mu.Lock()
	g.videos[id] = fmt.Sprintf("https://stub.adflow.local/videos/%s.mp4", id)
	g.mu.Unlock()
	return id, nil
}

func (g *Generators) PollVideo(ctx context.Context, videoID string) (ports.VideoStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ref, ok := g.videos[videoID]
	if !ok {
		return ports.VideoStatus{Status: ports.VideoFailed}, nil
	}
	return ports.VideoStatus{Status: ports.VideoCompleted, VideoRef: ref}, nil
}

func (g *Generators) Authenticate(ctx context.Context, accessToken string) (ports.AuthResult, error) {
	if accessToken == "" {
		return ports.AuthResult{}, fmt.Errorf("invalid access token")
	}
	return ports.AuthResult{
		UserID:   "stub-user",
		Accounts: []domain.AdAccount{{ID: "act_1000", Name: "Stub Ads"}},
	}, nil
}

func (g *Generators) UploadMedia(ctx context.Context, creds ports.Credentials, media domain.Media) (string, error) {
	return g.next("media"), nil
}

func (g *Generators) CreateCampaign(ctx context.Context, creds ports.Credentials, spec domain.CampaignSpec) (string, error) {
	return g.next("campaign"), nil
}

func (g *Generators) CreateAdSet(ctx context.Context, creds ports.Credentials, campaignID string, spec domain.AdSetSpec) (string, error) {
	return g.next("adset"), nil
}

func (g *Generators) CreateAd(ctx context.Context, creds ports.Credentials, adSetID, mediaRef string, spec domain.AdSpec) (string, error) {
	return g.next("ad"), nil
}

func (g *Generators) ListMedia(ctx context.Context, q ports.MediaQuery) ([]domain.Media, error) {
	var out []domain.Media
	if q.VideoRef != "" {
		out = append(out, domain.Media{ID: "video-1", Kind: domain.MediaVideo, URL: q.VideoRef, Name: "Rendered video"})
	}
	for i, img := range q.Images {
		out = append(out, domain.Media{
			ID:   fmt.Sprintf("image-%d", i+1),
			Kind: domain.MediaImage,
			URL:  img,
			Name: fmt.Sprintf("Visual %d", i+1),
		})
	}
	return out, nil
}

func (g *Generators) BuildCampaign(ctx context.Context, in ports.BuildInput) (*domain.CampaignConfig, error) {
	title, link := "Product", ""
	if in.Subject != nil {
		title, link = in.Subject.Title, in.Subject.SourceURL
	}
	return &domain.CampaignConfig{
		Campaign: domain.CampaignSpec{Name: title + " campaign", Objective: "OUTCOME_TRAFFIC"},
		AdSet: domain.AdSetSpec{
			Name:             title + " audience",
			DailyBudget:      2000,
			BillingEvent:     "IMPRESSIONS",
			OptimizationGoal: "LINK_CLICKS",
			Targeting:        domain.Targeting{Countries: []string{"US"}, AgeMin: 18, AgeMax: 65},
		},
		Ad: domain.AdSpec{
			Name:         title + " ad",
			Headline:     "Discover " + title,
			PrimaryText:  in.Script,
			CallToAction: "SHOP_NOW",
			Link:         link,
		},
	}, nil
}

func (g *Generators) PreviewCampaign(ctx context.Context, cfg *domain.CampaignConfig, media domain.Media) (string, error) {
	return fmt.Sprintf("**%s**\n\n%s\n\n_%s · %s · $%.2f/day_",
		cfg.Ad.Headline, cfg.Ad.PrimaryText, media.Kind, cfg.Ad.CallToAction,
		float64(cfg.AdSet.DailyBudget)/100), nil
}

// ModifyCampaign understands a few budget and headline phrasings.
func (g *Generators) ModifyCampaign(ctx context.Context, cfg *domain.CampaignConfig, feedback string) (*domain.CampaignConfig, error) {
	out := cfg.Clone()
	lower := strings.ToLower(feedback)
	switch {
	case strings.Contains(lower, "budget") && strings.Contains(lower, "double"):
		out.AdSet.DailyBudget *= 2
	case strings.Contains(lower, "budget") && strings.Contains(lower, "half"):
		out.AdSet.DailyBudget /= 2
	case strings.HasPrefix(lower, "headline:"):
		out.Ad.Headline = strings.TrimSpace(feedback[len("headline:"):])
	default:
		out.Ad.Description = feedback
	}
	return out, nil
}
