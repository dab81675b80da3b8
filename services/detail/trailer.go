package detail

import "movieflex/models"

var trailerSites = map[string]bool{
	"YouTube": true,
	"Vimeo":   true,
}

// SelectTrailer returns the first video that is a trailer hosted on a
// supported player, in input order. Matching on type and site is exact.
func SelectTrailer(videos []models.Trailer) *models.Trailer {
	for _, video := range videos {
		if video.Type != "Trailer" || !trailerSites[video.Site] {
			continue
		}
		selected := video
		return &selected
	}
	return nil
}
