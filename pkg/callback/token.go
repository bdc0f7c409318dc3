// Package callback encodes the payloads carried by inline buttons.
//
// Wire formats:
//
//	view:<logicalId>
//	more:<messageId>:<nextIndex>
//	approve:<submissionId>
//	reject:<submissionId>
//	add
package callback

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rubiojr/kashif/pkg/core"
)

// MaxBytes is the transport's callback payload budget.
const MaxBytes = 64

type Kind int

const (
	KindView Kind = iota + 1
	KindMore
	KindApprove
	KindReject
	KindAdd
)

func (k Kind) String() string {
	switch k {
	case KindView:
		return "view"
	case KindMore:
		return "more"
	case KindApprove:
		return "approve"
	case KindReject:
		return "reject"
	case KindAdd:
		return "add"
	default:
		return "unknown"
	}
}

// Token is a decoded button payload. Only the fields of its Kind are set.
type Token struct {
	Kind Kind
	// LogicalID is set for KindView.
	LogicalID string
	// MessageID and Next are set for KindMore: the message holding the
	// control and the index of the page it unlocks.
	MessageID int
	Next      int
	// SubmissionID is set for KindApprove and KindReject.
	SubmissionID int64
}

func View(logicalID string) Token {
	return Token{Kind: KindView, LogicalID: logicalID}
}

func More(messageID, next int) Token {
	return Token{Kind: KindMore, MessageID: messageID, Next: next}
}

func Approve(id int64) Token {
	return Token{Kind: KindApprove, SubmissionID: id}
}

func Reject(id int64) Token {
	return Token{Kind: KindReject, SubmissionID: id}
}

func Add() Token {
	return Token{Kind: KindAdd}
}

// Encode serializes the token, failing when the result would not fit the
// payload budget.
func (t Token) Encode() (string, error) {
	var s string
	switch t.Kind {
	case KindView:
		if t.LogicalID == "" {
			return "", fmt.Errorf("%w: empty logical id", core.ErrInvalidToken)
		}
		s = "view:" + t.LogicalID
	case KindMore:
		s = fmt.Sprintf("more:%d:%d", t.MessageID, t.Next)
	case KindApprove:
		s = "approve:" + strconv.FormatInt(t.SubmissionID, 10)
	case KindReject:
		s = "reject:" + strconv.FormatInt(t.SubmissionID, 10)
	case KindAdd:
		s = "add"
	default:
		return "", fmt.Errorf("%w: unknown kind %d", core.ErrInvalidToken, t.Kind)
	}

	if len(s) > MaxBytes {
		return "", fmt.Errorf("%w: payload is %d bytes", core.ErrInvalidToken, len(s))
	}
	return s, nil
}

// MustEncode is Encode for tokens known to fit.
func (t Token) MustEncode() string {
	s, err := t.Encode()
	if err != nil {
		panic(err)
	}
	return s
}

// Parse decodes a payload. Anything malformed yields core.ErrInvalidToken.
func Parse(data string) (Token, error) {
	if len(data) > MaxBytes {
		return Token{}, fmt.Errorf("%w: payload too long", core.ErrInvalidToken)
	}
	if data == "add" {
		return Add(), nil
	}

	kind, value, ok := strings.Cut(data, ":")
	if !ok || value == "" {
		return Token{}, fmt.Errorf("%w: %q", core.ErrInvalidToken, data)
	}

	switch kind {
	case "view":
		return View(value), nil
	case "more":
		msg, next, ok := strings.Cut(value, ":")
		if !ok {
			return Token{}, fmt.Errorf("%w: %q", core.ErrInvalidToken, data)
		}
		messageID, err := strconv.Atoi(msg)
		if err != nil || messageID <= 0 {
			return Token{}, fmt.Errorf("%w: bad message id in %q", core.ErrInvalidToken, data)
		}
		n, err := strconv.Atoi(next)
		if err != nil || n < 1 {
			return Token{}, fmt.Errorf("%w: bad index in %q", core.ErrInvalidToken, data)
		}
		return More(messageID, n), nil
	case "approve", "reject":
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil || id <= 0 {
			return Token{}, fmt.Errorf("%w: bad submission id in %q", core.ErrInvalidToken, data)
		}
		if kind == "approve" {
			return Approve(id), nil
		}
		return Reject(id), nil
	default:
		return Token{}, fmt.Errorf("%w: unknown kind %q", core.ErrInvalidToken, kind)
	}
}
