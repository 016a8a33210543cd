package runner

import (
	"fmt"
	"strings"

	"github.com/aretw0/adflow/pkg/domain"
	"github.com/aretw0/adflow/pkg/ports"
)

// Format renders a response as markdown: the stage reached, any error, the
// artifact that stage produced and a hint about what comes next.
func Format(resp *domain.Response) string {
	var b strings.Builder
	s := resp.State
	fmt.Fprintf(&b, "## %s\n\n", title(resp.CurrentStep))

	if resp.Error != nil {
		fmt.Fprintf(&b, "> **Error:** %s\n\n", *resp.Error)
	}
	if s != nil {
		writeArtifact(&b, s)
		if next := resp.CurrentStep.Next(); resp.CurrentStep.Position() >= 0 && next != resp.CurrentStep {
			fmt.Fprintf(&b, "\n_Say \"next\" to continue to %s, or give feedback._\n", title(next))
		}
	}
	return b.String()
}

func title(st domain.Stage) string {
	return strings.ReplaceAll(string(st), "_", " ")
}

func writeArtifact(b *strings.Builder, s *domain.State) {
	switch s.CurrentStep {
	case domain.StageIngest:
		if s.SubjectData != nil {
			fmt.Fprintf(b, "**%s** %s\n\n%s\n", s.SubjectData.Title, s.SubjectData.Price, s.SubjectData.Description)
			for i, p := range s.SubjectData.Products {
				fmt.Fprintf(b, "%d. %s\n", i+1, p.Title)
			}
		}
	case domain.StageAnalyze:
		if a := s.Analysis; a != nil {
			fmt.Fprintf(b, "%s\n\n- **Audience:** %s\n- **Tone:** %s\n", a.Summary, a.Audience, a.Tone)
			for _, p := range a.SellingPoints {
				fmt.Fprintf(b, "- %s\n", p)
			}
		}
	case domain.StageDraftScripts:
		for i, sc := range s.Scripts {
			fmt.Fprintf(b, "%d. %s\n", i+1, sc)
		}
	case domain.StageSelectScript, domain.StageRefineScript:
		if s.SelectedScript != nil {
			fmt.Fprintf(b, "> %s\n", *s.SelectedScript)
		}
	case domain.StageGenerateImages, domain.StageRefineImages:
		for i, img := range s.GeneratedImages {
			fmt.Fprintf(b, "- [image %d](%s)\n", i+1, img)
		}
	case domain.StageSynthesizeAudio:
		if s.AudioRef != nil {
			fmt.Fprintf(b, "Voiceover: %s\n", *s.AudioRef)
		}
	case domain.StageSelectAvatar:
		for _, a := range s.AvatarCatalog {
			mark := " "
			if s.SelectedAvatarID != nil && *s.SelectedAvatarID == a.ID {
				mark = "x"
			}
			fmt.Fprintf(b, "- [%s] %s (`%s`)\n", mark, a.Name, a.ID)
		}
	case domain.StageRenderVideo:
		if s.VideoStatus != nil {
			fmt.Fprintf(b, "Video status: **%s**\n", *s.VideoStatus)
			if *s.VideoStatus == ports.VideoProcessing {
				b.WriteString("\nAsk again in a moment to check on the render.\n")
			}
		}
		if s.VideoRef != nil {
			fmt.Fprintf(b, "\n%s\n", *s.VideoRef)
		}
	case domain.StageAuthenticateCampaign, domain.StageSelectAccount:
		for _, a := range s.Accounts {
			mark := " "
			if s.AccountRef != nil && *s.AccountRef == a.ID {
				mark = "x"
			}
			fmt.Fprintf(b, "- [%s] %s (`%s`)\n", mark, a.Name, a.ID)
		}
	case domain.StageSelectMedia:
		for _, m := range s.MediaCatalog {
			mark := " "
			if s.SelectedMedia != nil && s.SelectedMedia.ID == m.ID {
				mark = "x"
			}
			fmt.Fprintf(b, "- [%s] %s `%s` %s\n", mark, m.Kind, m.ID, m.URL)
		}
	case domain.StagePreviewCampaign, domain.StageRefineCampaign:
		if s.CampaignPreview != nil {
			fmt.Fprintf(b, "%s\n\nStatus: %s\n", *s.CampaignPreview, s.PublishStatus)
		}
	case domain.StagePublishCampaign:
		fmt.Fprintf(b, "Status: **%s**\n", s.PublishStatus)
		if ids := s.PublishedIDs; ids.CampaignID != "" {
			fmt.Fprintf(b, "\n- campaign `%s`\n- ad set `%s`\n- ad `%s`\n", ids.CampaignID, ids.AdSetID, ids.AdID)
			if ids.ManagerURL != "" {
				fmt.Fprintf(b, "\n%s\n", ids.ManagerURL)
			}
		}
	case domain.StageConfirmRestart:
		url := ""
		if s.PendingURL != nil {
			url = *s.PendingURL
		}
		fmt.Fprintf(b, "Start over with %s? Everything generated so far will be discarded. (yes/no)\n", url)
	case domain.StageComplete:
		b.WriteString("All done.\n")
	}
}
