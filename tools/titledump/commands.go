package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"movieflex/models"
	"movieflex/services/catalog"
	"movieflex/services/detail"
	"movieflex/services/search"
)

func parseKey(kind, id string) (models.TitleKey, error) {
	k, ok := models.ParseMediaKind(kind)
	if !ok {
		return models.TitleKey{}, fmt.Errorf("unknown kind %q (want movie or tv)", kind)
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return models.TitleKey{}, fmt.Errorf("invalid id %q", id)
	}
	return models.TitleKey{Kind: k, ID: n}, nil
}

// openPage loads a detail page the same way the server does.
func openPage(ctx context.Context, source detail.Source, key models.TitleKey) (*detail.Page, models.DetailView, error) {
	page := detail.NewPage(ctx, uuid.NewString(), key, source)
	view, err := page.LoadTitle(ctx)
	if err != nil {
		page.Close()
		return nil, view, err
	}
	return page, view, nil
}

func newTitleCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "title <movie|tv> <id>",
		Short: "Show a title's detail page data",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey(args[0], args[1])
			if err != nil {
				return err
			}
			svc, err := c.metadata()
			if err != nil {
				return err
			}
			page, view, err := openPage(cmd.Context(), svc, key)
			if err != nil {
				return err
			}
			defer page.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderDetail(view, shouldColorize(out)))
			return nil
		},
	}
}

func newSeasonCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "season <id> <number>",
		Short: "List the episodes of a show season",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKey("tv", args[0])
			if err != nil {
				return err
			}
			number, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid season %q", args[1])
			}
			svc, err := c.metadata()
			if err != nil {
				return err
			}
			page, view, err := openPage(cmd.Context(), svc, key)
			if err != nil {
				return err
			}
			defer page.Close()

			episodes, err := page.LoadSeasonEpisodes(cmd.Context(), number)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			name := fmt.Sprintf("Saison %d", number)
			if view.Title != nil {
				name = view.Title.Name + " - " + name
			}
			fmt.Fprintln(out, sectionHeader(name, shouldColorize(out)))
			fmt.Fprintln(out, renderEpisodes(episodes))
			return nil
		},
	}
}

func newSearchCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search movies and shows",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.metadata()
			if err != nil {
				return err
			}
			view := search.NewService(svc).Search(cmd.Context(), strings.Join(args, " "))
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderSearch(view, shouldColorize(out)))
			return nil
		},
	}
}

func newFeedCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "feed <home|movies|series>",
		Short:     "Show a listing page's featured title and shelves",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"home", "movies", "series"},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.metadata()
			if err != nil {
				return err
			}
			feeds := catalog.NewService(svc)
			var feed models.Feed
			switch args[0] {
			case "home":
				feed = feeds.Home(cmd.Context())
			case "movies":
				feed = feeds.Movies(cmd.Context())
			case "series":
				feed = feeds.Series(cmd.Context())
			default:
				return fmt.Errorf("unknown feed %q", args[0])
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderFeed(feed, shouldColorize(out)))
			return nil
		},
	}
}

func renderDetail(view models.DetailView, colorize bool) string {
	if view.Title == nil {
		return warning("no title loaded", colorize)
	}
	t := view.Title
	var b strings.Builder

	b.WriteString(sectionHeader(fmt.Sprintf("%s (%d)", t.Name, t.Year), colorize) + "\n")
	genres := make([]string, 0, len(t.Genres))
	for _, g := range t.Genres {
		genres = append(genres, g.Name)
	}
	fmt.Fprintf(&b, "Note: %s/10  Genres: %s\n", t.Rating(), strings.Join(genres, ", "))
	if t.Overview != "" {
		b.WriteString(t.Overview + "\n")
	}
	if view.Trailer != nil {
		fmt.Fprintf(&b, "Bande-annonce: %s\n", view.Trailer.URL)
	} else {
		b.WriteString(warning("Aucune bande-annonce", colorize) + "\n")
	}

	if len(view.Cast) > 0 {
		b.WriteString("\n" + sectionHeader("Distribution", colorize) + "\n")
		rows := make([][]string, 0, len(view.Cast))
		for _, c := range view.Cast {
			rows = append(rows, []string{c.Name, c.Role})
		}
		b.WriteString(renderTable([]string{"Nom", "Rôle"}, rows) + "\n")
	}
	if len(view.Crew) > 0 {
		b.WriteString("\n" + sectionHeader("Équipe", colorize) + "\n")
		rows := make([][]string, 0, len(view.Crew))
		for _, c := range view.Crew {
			rows = append(rows, []string{c.Name, c.Role})
		}
		b.WriteString(renderTable([]string{"Nom", "Fonction"}, rows) + "\n")
	}
	if len(view.Seasons) > 0 {
		b.WriteString("\n" + sectionHeader("Saisons", colorize) + "\n")
		rows := make([][]string, 0, len(view.Seasons))
		for _, s := range view.Seasons {
			rows = append(rows, []string{strconv.Itoa(s.Number), s.Name, strconv.Itoa(s.EpisodeCount), s.AirDate})
		}
		b.WriteString(renderTable([]string{"#", "Nom", "Épisodes", "Diffusion"}, rows, 1, 3) + "\n")
	}
	if len(view.Recommendations) > 0 {
		b.WriteString("\n" + sectionHeader("Vous pourriez aussi aimer", colorize) + "\n")
		b.WriteString(renderTitles(view.Recommendations) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderEpisodes(episodes []models.Episode) string {
	rows := make([][]string, 0, len(episodes))
	for _, e := range episodes {
		runtime := ""
		if e.RuntimeMinutes > 0 {
			runtime = fmt.Sprintf("%d min", e.RuntimeMinutes)
		}
		rows = append(rows, []string{strconv.Itoa(e.Number), e.Name, runtime, e.AirDate})
	}
	return renderTable([]string{"#", "Titre", "Durée", "Diffusion"}, rows, 1, 3)
}

func renderTitles(titles []models.Title) string {
	rows := make([][]string, 0, len(titles))
	for _, t := range titles {
		year := ""
		if t.Year > 0 {
			year = strconv.Itoa(t.Year)
		}
		rows = append(rows, []string{strconv.FormatInt(t.ID, 10), t.Name, year, t.Rating()})
	}
	return renderTable([]string{"ID", "Titre", "Année", "Note"}, rows, 1, 3, 4)
}

func renderSearch(view models.SearchView, colorize bool) string {
	if view.Empty {
		return warning("Veuillez saisir un terme de recherche", colorize)
	}
	var b strings.Builder
	section := func(name string, titles []models.Title, failed bool, none string) {
		b.WriteString(sectionHeader(name, colorize) + "\n")
		switch {
		case failed:
			b.WriteString(warning("recherche échouée", colorize) + "\n")
		case len(titles) == 0:
			b.WriteString(none + "\n")
		default:
			b.WriteString(renderTitles(titles) + "\n")
		}
	}
	section("Films", view.Movies, view.MoviesFailed, "Aucun film trouvé")
	section("Séries TV", view.Shows, view.ShowsFailed, "Aucune série trouvée")
	return strings.TrimRight(b.String(), "\n")
}

func renderFeed(feed models.Feed, colorize bool) string {
	var b strings.Builder
	if feed.Hero != nil {
		fmt.Fprintf(&b, "%s\n", sectionHeader("À la une: "+feed.Hero.Name, colorize))
	}
	for _, shelf := range feed.Shelves {
		b.WriteString(sectionHeader(shelf.Name, colorize) + "\n")
		if len(shelf.Titles) == 0 {
			b.WriteString(warning("indisponible", colorize) + "\n")
			continue
		}
		b.WriteString(renderTitles(shelf.Titles) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
