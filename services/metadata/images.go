package metadata

import (
	"fmt"
	"strings"

	"movieflex/models"
)

const (
	DefaultImageBaseURL     = "https://image.tmdb.org/t/p"
	DefaultPlaceholderURL   = "https://via.placeholder.com/{size}?text=No+Image"
	placeholderSizeVariable = "{size}"
)

type imageKind struct {
	name        string
	size        string
	placeholder string
}

var (
	posterImage   = imageKind{name: "poster", size: "w500", placeholder: "500x750"}
	backdropImage = imageKind{name: "backdrop", size: "original", placeholder: "1280x720"}
	profileImage  = imageKind{name: "profile", size: "w185", placeholder: "185x278"}
	stillImage    = imageKind{name: "still", size: "w300", placeholder: "300x170"}
	seasonImage   = imageKind{name: "season", size: "w92", placeholder: "92x138"}
	avatarImage   = imageKind{name: "avatar", size: "w45", placeholder: "45x45"}
)

// Images builds CDN URLs from the relative paths returned by the media
// database, substituting a placeholder when a path is missing.
type Images struct {
	baseURL     string
	placeholder string
}

func NewImages(baseURL, placeholder string) Images {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultImageBaseURL
	}
	placeholder = strings.TrimSpace(placeholder)
	if placeholder == "" {
		placeholder = DefaultPlaceholderURL
	}
	return Images{baseURL: baseURL, placeholder: placeholder}
}

func (b Images) build(imagePath string, kind imageKind) *models.Image {
	trimmed := strings.TrimSpace(imagePath)
	if trimmed == "" {
		return &models.Image{
			URL:         strings.ReplaceAll(b.placeholder, placeholderSizeVariable, kind.placeholder),
			Type:        kind.name,
			Placeholder: true,
		}
	}
	return &models.Image{
		URL:  fmt.Sprintf("%s/%s/%s", b.baseURL, kind.size, strings.TrimPrefix(trimmed, "/")),
		Type: kind.name,
	}
}

func (b Images) Poster(p string) *models.Image   { return b.build(p, posterImage) }
func (b Images) Backdrop(p string) *models.Image { return b.build(p, backdropImage) }
func (b Images) Profile(p string) *models.Image  { return b.build(p, profileImage) }
func (b Images) Still(p string) *models.Image    { return b.build(p, stillImage) }
func (b Images) Season(p string) *models.Image   { return b.build(p, seasonImage) }
func (b Images) Avatar(p string) *models.Image   { return b.build(p, avatarImage) }
