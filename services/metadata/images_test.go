package metadata

import "testing"

func TestImagesBuildCDNURLs(t *testing.T) {
	images := NewImages("", "")

	cases := []struct {
		name string
		got  string
		want string
	}{
		{"poster", images.Poster("/abc.jpg").URL, "https://image.tmdb.org/t/p/w500/abc.jpg"},
		{"backdrop", images.Backdrop("/bd.jpg").URL, "https://image.tmdb.org/t/p/original/bd.jpg"},
		{"profile", images.Profile("pr.jpg").URL, "https://image.tmdb.org/t/p/w185/pr.jpg"},
		{"still", images.Still("/st.jpg").URL, "https://image.tmdb.org/t/p/w300/st.jpg"},
		{"season", images.Season("/se.jpg").URL, "https://image.tmdb.org/t/p/w92/se.jpg"},
		{"avatar", images.Avatar("/av.jpg").URL, "https://image.tmdb.org/t/p/w45/av.jpg"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("%s: got %q want %q", tc.name, tc.got, tc.want)
		}
	}
}

func TestImagesSubstitutePlaceholders(t *testing.T) {
	images := NewImages("https://cdn.example/t/p/", "")

	poster := images.Poster("  ")
	if !poster.Placeholder {
		t.Fatalf("expected placeholder flag for empty path")
	}
	if poster.URL != "https://via.placeholder.com/500x750?text=No+Image" {
		t.Fatalf("unexpected poster placeholder %q", poster.URL)
	}
	if got := images.Profile("").URL; got != "https://via.placeholder.com/185x278?text=No+Image" {
		t.Fatalf("unexpected profile placeholder %q", got)
	}
	if got := images.Still("").URL; got != "https://via.placeholder.com/300x170?text=No+Image" {
		t.Fatalf("unexpected still placeholder %q", got)
	}
	if got := images.Season("").URL; got != "https://via.placeholder.com/92x138?text=No+Image" {
		t.Fatalf("unexpected season placeholder %q", got)
	}
	if got := images.Poster("/x.jpg").URL; got != "https://cdn.example/t/p/w500/x.jpg" {
		t.Fatalf("custom base not honoured: %q", got)
	}
}

func TestImagesCustomPlaceholder(t *testing.T) {
	images := NewImages("", "/static/missing-{size}.png")
	if got := images.Poster("").URL; got != "/static/missing-500x750.png" {
		t.Fatalf("unexpected placeholder %q", got)
	}
}
