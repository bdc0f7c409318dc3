package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/rubiojr/kashif/pkg/callback"
	"github.com/rubiojr/kashif/pkg/core"
	"github.com/rubiojr/kashif/pkg/search"
	"github.com/rubiojr/kashif/pkg/storage"
)

// Mode is how a result set is presented.
type Mode int

const (
	ModeNoMatch Mode = iota
	ModeDetail
	ModeList
	ModeRefine
)

func (m Mode) String() string {
	switch m {
	case ModeNoMatch:
		return "none"
	case ModeDetail:
		return "detail"
	case ModeList:
		return "list"
	case ModeRefine:
		return "refine"
	default:
		return "unknown"
	}
}

// Route picks the presentation for n results.
func Route(n, maxList int) Mode {
	switch {
	case n <= 0:
		return ModeNoMatch
	case n == 1:
		return ModeDetail
	case n <= maxList:
		return ModeList
	default:
		return ModeRefine
	}
}

// HandleSearch answers a search request in chatID.
func (e *Engine) HandleSearch(ctx context.Context, chatID int64, user User, query string) error {
	query = core.NormalizeQuery(query)
	if query == "" {
		_, err := e.send(ctx, chatID, Message{Text: textUsage, HTML: true})
		return err
	}

	e.touch(ctx, user, storage.StatSearchCount)
	logger.Infof("user %d searching for %q", user.ID, query)

	ids, err := e.search.Search(ctx, query)
	if err != nil {
		if !errors.Is(err, core.ErrIndexQuery) {
			return err
		}
		ids = nil
	}

	switch Route(len(ids), e.opts.MaxListResults) {
	case ModeNoMatch:
		_, err := e.send(ctx, chatID, Message{Text: textNoResults(query), HTML: true})
		return err
	case ModeDetail:
		doc, err := e.search.Document(ctx, ids[0])
		if errors.Is(err, core.ErrNotFound) {
			_, err = e.send(ctx, chatID, Message{Text: textDetailMissing})
			return err
		}
		if err != nil {
			return err
		}
		return e.sendDetail(ctx, chatID, doc)
	case ModeList:
		return e.sendList(ctx, chatID, query, ids)
	default:
		_, err := e.send(ctx, chatID, Message{Text: textTooMany(len(ids), query), HTML: true})
		return err
	}
}

// SnippetList renders the numbered snippet block for docs.
func SnippetList(docs []core.Document, query string, contextWords int) string {
	var b strings.Builder
	b.WriteString(textListHeader(len(docs), query))
	for i, doc := range docs {
		snippet := search.Extract(doc.Body, query, contextWords)
		fmt.Fprintf(&b, "%d. 📖 <b>الكتاب:</b> %s\n   📝 <b>الحديث:</b> %s\n\n---\n\n",
			i+1, html.EscapeString(orDefault(doc.GroupTag, "غير متوفر")), snippet.HTML())
	}
	return b.String()
}

func (e *Engine) sendList(ctx context.Context, chatID int64, query string, ids []string) error {
	docs, err := e.search.Documents(ctx, ids)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		_, err := e.send(ctx, chatID, Message{Text: textListError})
		return err
	}

	var buttons [][]Button
	for i, doc := range docs {
		data, err := callback.View(doc.LogicalID).Encode()
		if err != nil {
			logger.Warnf("no selector for %s: %v", doc.LogicalID, err)
			continue
		}
		buttons = append(buttons, []Button{{Text: selectorLabel(i+1, doc), Data: data}})
	}

	text := SnippetList(docs, query, e.opts.SnippetContextWords)
	if len([]rune(text)) > e.opts.MaxMessageLength {
		logger.Warnf("snippet list for %q is %d runes, sending notice instead", query, len([]rune(text)))
		if _, err := e.send(ctx, chatID, Message{Text: textListTooLong(len(ids))}); err != nil {
			return err
		}
	} else if _, err := e.send(ctx, chatID, Message{Text: text, HTML: true}); err != nil {
		return err
	}

	_, err = e.send(ctx, chatID, Message{Text: textPickResult, Buttons: buttons})
	return err
}

func selectorLabel(n int, doc core.Document) string {
	group := orDefault(doc.GroupTag, "غير متوفر")
	if len([]rune(group)) > 25 {
		group = truncate(group, 25) + "..."
	}
	words := strings.Fields(doc.Body)
	lead := strings.Join(words[:min(5, len(words))], " ")
	if len(words) > 5 {
		lead += "..."
	}
	return fmt.Sprintf("%d. 📜 %s - %s", n, group, lead)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
