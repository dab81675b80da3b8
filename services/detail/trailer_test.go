package detail

import (
	"testing"

	"movieflex/models"
)

func TestSelectTrailer(t *testing.T) {
	cases := []struct {
		name    string
		videos  []models.Trailer
		wantKey string
	}{
		{name: "empty", videos: nil},
		{
			name: "first valid wins",
			videos: []models.Trailer{
				{Key: "teaser", Type: "Teaser", Site: "YouTube"},
				{Key: "yt", Type: "Trailer", Site: "YouTube"},
				{Key: "vm", Type: "Trailer", Site: "Vimeo"},
			},
			wantKey: "yt",
		},
		{
			name: "vimeo accepted",
			videos: []models.Trailer{
				{Key: "dm", Type: "Trailer", Site: "Dailymotion"},
				{Key: "vm", Type: "Trailer", Site: "Vimeo"},
			},
			wantKey: "vm",
		},
		{
			name: "exact matching only",
			videos: []models.Trailer{
				{Key: "lower", Type: "trailer", Site: "YouTube"},
				{Key: "site", Type: "Trailer", Site: "youtube"},
			},
		},
		{
			name:   "no trailers",
			videos: []models.Trailer{{Key: "clip", Type: "Clip", Site: "YouTube"}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SelectTrailer(tc.videos)
			if tc.wantKey == "" {
				if got != nil {
					t.Fatalf("expected no trailer, got %+v", got)
				}
				return
			}
			if got == nil || got.Key != tc.wantKey {
				t.Fatalf("expected trailer %q, got %+v", tc.wantKey, got)
			}
		})
	}
}
