package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rubiojr/kashif/pkg/bot"
	"github.com/rubiojr/kashif/pkg/cache"
	"github.com/rubiojr/kashif/pkg/core"
	"github.com/rubiojr/kashif/pkg/paginate"
	"github.com/rubiojr/kashif/pkg/search"
	"github.com/urfave/cli/v3"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	blockStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1).
			Margin(0, 0, 1, 2)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	matchStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Margin(1, 0)
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the index the way the bot would",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "query",
				Aliases:  []string{"q"},
				Usage:    "Search query",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Bypass the result cache",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return searchIndex(ctx, c.String("config"), c.String("query"), c.Bool("no-cache"))
		},
	}
}

func searchIndex(ctx context.Context, configPath, query string, noCache bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	idx, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer closeIndex(idx)

	var svc *search.Service
	if noCache {
		svc = search.NewService(idx, nil)
	} else {
		rc, err := cache.Open(ctx, cfg.Cache)
		if err != nil {
			return err
		}
		defer rc.Close()
		svc = search.NewService(idx, rc)
	}

	query = core.NormalizeQuery(query)
	ids, err := svc.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	mode := bot.Route(len(ids), cfg.Bot.MaxListResults)
	fmt.Println(titleStyle.Render(fmt.Sprintf("%q: %d results (%s)", query, len(ids), mode)))

	switch mode {
	case bot.ModeNoMatch:
		fmt.Println(noDataStyle.Render("No documents matched."))
	case bot.ModeDetail:
		doc, err := svc.Document(ctx, ids[0])
		if err != nil {
			return err
		}
		pages := paginate.Layout{MaxLen: cfg.Bot.MaxMessageLength}.Pages(doc)
		fmt.Println(renderDocument(doc, len(pages)))
	case bot.ModeList:
		docs, err := svc.Documents(ctx, ids)
		if err != nil {
			return err
		}
		for i, doc := range docs {
			sn := search.Extract(doc.Body, query, cfg.Bot.SnippetContextWords)
			text := sn.Render(func(s string) string { return s }, func(s string) string { return matchStyle.Render(s) })
			meta := metaStyle.Render(fmt.Sprintf("%d. %s [%s]", i+1, doc.GroupTag, doc.LogicalID))
			fmt.Println(blockStyle.Render(meta + "\n" + text))
		}
	default:
		fmt.Println(noDataStyle.Render(fmt.Sprintf("Too many results, the bot would ask to refine (limit %d).", cfg.Bot.MaxListResults)))
	}
	return nil
}

func renderDocument(doc core.Document, pages int) string {
	var b strings.Builder
	b.WriteString(metaStyle.Render(fmt.Sprintf("%s [%s]", doc.GroupTag, doc.LogicalID)))
	b.WriteString("\n\n")
	b.WriteString(doc.Body)
	if doc.QualityTag != "" {
		b.WriteString("\n\n")
		b.WriteString(metaStyle.Render(doc.QualityTag))
	}
	b.WriteString("\n\n")
	b.WriteString(metaStyle.Render(fmt.Sprintf("delivered in %d message(s)", pages)))
	return blockStyle.Render(b.String())
}
