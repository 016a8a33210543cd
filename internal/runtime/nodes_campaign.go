package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/adflow/pkg/domain"
	"github.com/aretw0/adflow/pkg/ports"
)

// managerURLFormat links a published campaign in the ads manager.
const managerURLFormat = "https://www.facebook.com/adsmanager/manage/campaigns?act=%s&selected_campaign_ids=%s"

func campaignNodes() map[domain.Stage]node {
	return map[domain.Stage]node{
		domain.StageAuthenticateCampaign: {check: checkAuthenticate, run: runAuthenticate},
		domain.StageSelectAccount:        {check: checkSelectAccount, run: runSelectAccount},
		domain.StageSelectMedia:          {check: checkSelectMedia, run: runSelectMedia},
		domain.StagePreviewCampaign:      {check: checkPreviewCampaign, run: runPreviewCampaign},
		domain.StageRefineCampaign:       {check: checkRefineCampaign, run: runRefineCampaign},
		domain.StagePublishCampaign:      {check: checkPublishCampaign, run: runPublishCampaign},
	}
}

func accessToken(s *domain.State, in *stepInput) string {
	if in.req.Fields.AccessToken != "" {
		return in.req.Fields.AccessToken
	}
	if s.AccessToken != nil {
		return *s.AccessToken
	}
	return ""
}

func checkAuthenticate(s *domain.State, in *stepInput) string {
	if accessToken(s, in) == "" {
		return "no access token provided"
	}
	return ""
}

func runAuthenticate(ctx context.Context, x *Executor, s *domain.State, in *stepInput) (outcome, error) {
	token := accessToken(s, in)
	if s.AccessToken != nil && *s.AccessToken == token && len(s.Accounts) > 0 {
		return outcomeCached, nil
	}

	if x.collab.Ads == nil {
		return outcomeNoop, missing("ad platform")
	}
	var auth ports.AuthResult
	err := x.call(ctx, s, "authenticate", func(ctx context.Context) error {
		var err error
		auth, err = x.collab.Ads.Authenticate(ctx, token)
		return err
	})
	if err != nil {
		return outcomeNoop, err
	}
	if len(auth.Accounts) == 0 {
		return outcomeNoop, fmt.Errorf("no ad accounts available for this token")
	}

	s.AccessToken = &token
	s.Accounts = auth.Accounts
	s.AccountRef = nil
	if len(auth.Accounts) == 1 {
		id := auth.Accounts[0].ID
		s.AccountRef = &id
	}
	if s.PublishStatus == "" {
		s.PublishStatus = domain.PublishDraft
	}
	return outcomeDone, nil
}

func checkSelectAccount(s *domain.State, in *stepInput) string {
	if len(s.Accounts) == 0 {
		return "not authenticated with the ad platform"
	}
	return ""
}

func runSelectAccount(ctx context.Context, x *Executor, s *domain.State, in *stepInput) (outcome, error) {
	var chosen string
	switch {
	case in.req.Fields.AccountID != "":
		for _, a := range s.Accounts {
			if a.ID == in.req.Fields.AccountID {
				chosen = a.ID
			}
		}
		if chosen == "" {
			return outcomeNoop, fmt.Errorf("ad account %s not found", in.req.Fields.AccountID)
		}
	default:
		if id, ok := matchAccount(in.message, s.Accounts); ok {
			chosen = id
		} else if len(s.Accounts) == 1 {
			chosen = s.Accounts[0].ID
		}
	}
	if chosen == "" {
		return outcomeNoop, nil
	}
	if s.AccountRef == nil || *s.AccountRef != chosen {
		// Creatives are listed per account.
		s.MediaCatalog = nil
		s.SelectedMedia = nil
	}
	s.AccountRef = &chosen
	return outcomeDone, nil
}

func checkSelectMedia(s *domain.State, in *stepInput) string {
	if s.AccountRef == nil {
		return "no ad account selected"
	}
	return ""
}

func runSelectMedia(ctx context.Context, x *Executor, s *domain.State, in *stepInput) (outcome, error) {
	listed := false
	if len(s.MediaCatalog) == 0 {
		if x.collab.Media == nil {
			return outcomeNoop, missing("media library")
		}
		q := ports.MediaQuery{AccountID: *s.AccountRef, Images: s.GeneratedImages}
		if s.VideoRef != nil {
			q.VideoRef = *s.VideoRef
		}
		var catalog []domain.Media
		err := x.call(ctx, s, "list_media", func(ctx context.Context) error {
			var err error
			catalog, err = x.collab.Media.ListMedia(ctx, q)
			return err
		})
		if err != nil {
			return outcomeNoop, err
		}
		if len(catalog) == 0 {
			return outcomeNoop, fmt.Errorf("no media available for account %s", *s.AccountRef)
		}
		s.MediaCatalog = catalog
		listed = true
	}

	var chosen *domain.Media
	switch {
	case in.req.Fields.MediaID != "":
		for i := range s.MediaCatalog {
			if s.MediaCatalog[i].ID == in.req.Fields.MediaID {
				chosen = &s.MediaCatalog[i]
			}
		}
		if chosen == nil {
			return outcomeNoop, fmt.Errorf("media %s not found", in.req.Fields.MediaID)
		}
	default:
		if m, ok := matchMedia(in.message, s.MediaCatalog); ok {
			chosen = m
		} else if len(s.MediaCatalog) == 1 {
			chosen = &s.MediaCatalog[0]
		}
	}

	if chosen == nil {
		if listed {
			return outcomeDone, nil
		}
		return outcomeNoop, nil
	}
	if s.SelectedMedia == nil || s.SelectedMedia.ID != chosen.ID {
		// A different creative gets a fresh draft and fresh platform objects.
		s.CampaignConfig = nil
		s.CampaignPreview = nil
		s.PublishedIDs = domain.PublishedIDs{}
	}
	m := *chosen
	s.SelectedMedia = &m
	return outcomeDone, nil
}

func checkPreviewCampaign(s *domain.State, in *stepInput) string {
	if s.SelectedMedia == nil {
		return "no media selected"
	}
	return ""
}

func runPreviewCampaign(ctx context.Context, x *Executor, s *domain.State, in *stepInput) (outcome, error) {
	if x.collab.Planner == nil {
		return outcomeNoop, missing("campaign planner")
	}

	if s.CampaignConfig == nil {
		build := ports.BuildInput{Media: *s.SelectedMedia, Subject: subjectOf(s), Analysis: s.Analysis}
		if s.SelectedScript != nil {
			build.Script = *s.SelectedScript
		}
		var cfg *domain.CampaignConfig
		err := x.call(ctx, s, "build_campaign", func(ctx context.Context) error {
			var err error
			cfg, err = x.collab.Planner.BuildCampaign(ctx, build)
			return err
		})
		if err != nil {
			return outcomeNoop, err
		}
		s.CampaignConfig = cfg
		s.PublishStatus = domain.PublishDraft
	}

	preview, err := renderPreview(ctx, x, s, s.CampaignConfig)
	if err != nil {
		return outcomeNoop, err
	}
	s.CampaignPreview = &preview
	if s.PublishStatus == domain.PublishDraft || s.PublishStatus == "" {
		s.PublishStatus = domain.PublishPreview
	}
	return outcomeDone, nil
}

func renderPreview(ctx context.Context, x *Executor, s *domain.State, cfg *domain.CampaignConfig) (string, error) {
	var preview string
	err := x.call(ctx, s, "preview_campaign", func(ctx context.Context) error {
		var err error
		preview, err = x.collab.Planner.PreviewCampaign(ctx, cfg, *s.SelectedMedia)
		return err
	})
	return preview, err
}

func checkRefineCampaign(s *domain.State, in *stepInput) string {
	if s.CampaignConfig == nil {
		return "no campaign configuration available"
	}
	if in.feedback == "" {
		return "no modification request provided"
	}
	return ""
}

func runRefineCampaign(ctx context.Context, x *Executor, s *domain.State, in *stepInput) (outcome, error) {
	if x.collab.Planner == nil {
		return outcomeNoop, missing("campaign planner")
	}
	var cfg *domain.CampaignConfig
	err := x.call(ctx, s, "modify_campaign", func(ctx context.Context) error {
		var err error
		cfg, err = x.collab.Planner.ModifyCampaign(ctx, s.CampaignConfig, in.feedback)
		return err
	})
	if err != nil {
		return outcomeNoop, err
	}

	// The preview is rendered before anything is committed, so a failed
	// preview leaves the previous configuration in place.
	var preview *string
	if s.SelectedMedia != nil {
		p, err := renderPreview(ctx, x, s, cfg)
		if err != nil {
			return outcomeNoop, err
		}
		preview = &p
	}

	s.CampaignModifications = append(s.CampaignModifications, in.feedback)
	s.CampaignConfig = cfg
	if preview != nil {
		s.CampaignPreview = preview
	}
	s.PublishStatus = domain.PublishModified
	// Platform objects built from the old configuration are not reused; the
	// uploaded creative is.
	s.PublishedIDs = domain.PublishedIDs{MediaRef: s.PublishedIDs.MediaRef}
	return outcomeDone, nil
}

func checkPublishCampaign(s *domain.State, in *stepInput) string {
	if s.CampaignConfig == nil || s.SelectedMedia == nil || s.AccountRef == nil || s.AccessToken == nil {
		return "missing required data for publishing"
	}
	return ""
}

// runPublishCampaign performs upload, campaign, ad set and ad creation in
// order. Objects already recorded are not created again, so re-invoking the
// stage after a failure resumes where it stopped. Nothing is rolled back.
func runPublishCampaign(ctx context.Context, x *Executor, s *domain.State, in *stepInput) (outcome, error) {
	if s.PublishStatus == domain.PublishPublished {
		return outcomeCached, nil
	}
	if x.collab.Ads == nil {
		return outcomeNoop, missing("ad platform")
	}

	creds := ports.Credentials{AccessToken: *s.AccessToken, AccountID: *s.AccountRef}
	cfg := s.CampaignConfig
	ids := &s.PublishedIDs
	s.PublishStatus = domain.PublishPublishing

	steps := []struct {
		name  string
		label string
		done  *string
		fn    func(ctx context.Context) (string, error)
	}{
		{"upload_media", "media upload", &ids.MediaRef, func(ctx context.Context) (string, error) {
			return x.collab.Ads.UploadMedia(ctx, creds, *s.SelectedMedia)
		}},
		{"create_campaign", "campaign creation", &ids.CampaignID, func(ctx context.Context) (string, error) {
			return x.collab.Ads.CreateCampaign(ctx, creds, cfg.Campaign)
		}},
		{"create_adset", "ad set creation", &ids.AdSetID, func(ctx context.Context) (string, error) {
			return x.collab.Ads.CreateAdSet(ctx, creds, ids.CampaignID, cfg.AdSet)
		}},
		{"create_ad", "ad creation", &ids.AdID, func(ctx context.Context) (string, error) {
			return x.collab.Ads.CreateAd(ctx, creds, ids.AdSetID, ids.MediaRef, cfg.Ad)
		}},
	}

	for _, step := range steps {
		if *step.done != "" {
			continue
		}
		var id string
		err := x.call(ctx, s, step.name, func(ctx context.Context) error {
			var err error
			id, err = step.fn(ctx)
			return err
		})
		if err != nil {
			s.PublishStatus = domain.PublishFailed
			return outcomeNoop, fmt.Errorf("%s failed: %w", step.label, err)
		}
		*step.done = id
	}

	ids.ManagerURL = fmt.Sprintf(managerURLFormat, strings.TrimPrefix(creds.AccountID, "act_"), ids.CampaignID)
	s.PublishStatus = domain.PublishPublished
	return outcomeDone, nil
}
