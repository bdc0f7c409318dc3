package telegram

import (
	"regexp"
	"strings"
)

// Action is what an inbound text message asks for.
type Action int

const (
	ActionIgnore Action = iota
	ActionSearch
	ActionUsage
	ActionStart
	ActionHelp
	ActionAdd
	ActionCancel
	ActionSkip
	ActionSubmissionText
)

// addPhrase starts a submission like /addhadith.
const addPhrase = "اضافة حديث"

// Router classifies inbound text.
type Router struct {
	trigger  *regexp.Regexp
	triggers map[string]bool
}

// NewRouter builds a router for the given trigger words, e.g. "شيعة".
func NewRouter(triggerWords []string) *Router {
	quoted := make([]string, len(triggerWords))
	triggers := make(map[string]bool, len(triggerWords))
	for i, w := range triggerWords {
		quoted[i] = regexp.QuoteMeta(w)
		triggers[strings.ToLower(w)] = true
	}
	return &Router{
		trigger:  regexp.MustCompile(`(?i)^(` + strings.Join(quoted, "|") + `)\s+(.+)`),
		triggers: triggers,
	}
}

// Route classifies text. command is the bot command without arguments when
// the message is one. inSubmission reports whether the sender is in the
// middle of adding a document. The returned query is set for ActionSearch.
func (r *Router) Route(command, text string, inSubmission bool) (Action, string) {
	switch command {
	case "start":
		return ActionStart, ""
	case "help":
		return ActionHelp, ""
	case "addhadith":
		return ActionAdd, ""
	case "cancel":
		return ActionCancel, ""
	case "skip":
		return ActionSkip, ""
	case "":
	default:
		return ActionIgnore, ""
	}

	text = strings.TrimSpace(text)
	if text == addPhrase {
		return ActionAdd, ""
	}
	if inSubmission {
		return ActionSubmissionText, ""
	}
	if m := r.trigger.FindStringSubmatch(text); m != nil {
		if q := strings.TrimSpace(m[2]); q != "" {
			return ActionSearch, q
		}
	}
	if r.triggers[strings.ToLower(text)] {
		return ActionUsage, ""
	}
	return ActionIgnore, ""
}
