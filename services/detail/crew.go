package detail

import "movieflex/models"

// CrewLimits caps each crew category before merging. Zero means no cap.
type CrewLimits struct {
	Creators  int
	Directors int
	Writers   int
	Producers int
}

var (
	MovieCrewLimits = CrewLimits{Writers: 3, Producers: 2}
	ShowCrewLimits  = CrewLimits{Directors: 2, Writers: 2, Producers: 2}
)

func CrewLimitsFor(kind models.MediaKind) CrewLimits {
	if kind == models.KindShow {
		return ShowCrewLimits
	}
	return MovieCrewLimits
}

// MergeCrew concatenates creators, directors, writers and producers, each
// capped on its own first. A person appears once; the earliest category wins.
func MergeCrew(limits CrewLimits, creators, directors, writers, producers []models.Credit) []models.Credit {
	total := len(creators) + len(directors) + len(writers) + len(producers)
	merged := make([]models.Credit, 0, total)
	seen := make(map[int64]struct{}, total)

	add := func(group []models.Credit, limit int) {
		if limit > 0 && len(group) > limit {
			group = group[:limit]
		}
		for _, credit := range group {
			if _, dup := seen[credit.PersonID]; dup {
				continue
			}
			seen[credit.PersonID] = struct{}{}
			merged = append(merged, credit)
		}
	}

	add(creators, limits.Creators)
	add(directors, limits.Directors)
	add(writers, limits.Writers)
	add(producers, limits.Producers)
	return merged
}

// CategorizeCrew picks directors, writers and producers out of a crew list
// using the department and job labels of the media database.
func CategorizeCrew(kind models.MediaKind, crew []models.Credit) (directors, writers, producers []models.Credit) {
	for _, member := range crew {
		if isDirector(kind, member) {
			directors = append(directors, member)
		}
		if isWriter(kind, member) {
			writers = append(writers, member)
		}
		if isProducer(kind, member) {
			producers = append(producers, member)
		}
	}
	return directors, writers, producers
}

func isDirector(kind models.MediaKind, c models.Credit) bool {
	if kind == models.KindShow {
		return c.Role == "Director" || c.Department == "Directing"
	}
	return c.Role == "Director"
}

func isWriter(kind models.MediaKind, c models.Credit) bool {
	if c.Department == "Writing" || c.Role == "Writer" {
		return true
	}
	return kind == models.KindMovie && c.Role == "Screenplay"
}

func isProducer(kind models.MediaKind, c models.Credit) bool {
	if kind == models.KindShow {
		return c.Role == "Producer" || c.Role == "Executive Producer"
	}
	return c.Role == "Producer"
}
