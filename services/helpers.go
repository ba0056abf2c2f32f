package services

import (
	"github.com/Dosada05/team-training-system/models"
	"github.com/Dosada05/team-training-system/storage"
)

// --- Хелперы для заполнения публичных URL логотипов ---

func populateUserLogoURL(user *models.User, uploader storage.FileUploader) {
	if user == nil || uploader == nil {
		return
	}
	user.PasswordHash = ""
	if user.LogoKey != nil && *user.LogoKey != "" {
		if url := uploader.GetPublicURL(*user.LogoKey); url != "" {
			user.LogoURL = &url
		}
	}
}

func populateTeamLogoURL(team *models.Team, uploader storage.FileUploader) {
	if team == nil || uploader == nil {
		return
	}
	if team.LogoKey != nil && *team.LogoKey != "" {
		if url := uploader.GetPublicURL(*team.LogoKey); url != "" {
			team.LogoURL = &url
		}
	}
}

func populateMemberLogoURLs(members []*models.TeamMember, uploader storage.FileUploader) {
	for _, m := range members {
		if m != nil {
			populateUserLogoURL(m.User, uploader)
		}
	}
}

func dereferenceMembers(slice []*models.TeamMember) []models.TeamMember {
	if slice == nil {
		return []models.TeamMember{}
	}
	result := make([]models.TeamMember, len(slice))
	for i, ptr := range slice {
		if ptr != nil {
			result[i] = *ptr
		}
	}
	return result
}
