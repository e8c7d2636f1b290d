package message

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenKind classifies a single word of a guardian message.
type TokenKind int

const (
	TokenStudent TokenKind = iota
	TokenMeal
	TokenDate
	TokenUnknown
	TokenAmbiguous
)

// Token is the interpretation of one whitespace-separated word.
type Token struct {
	Kind      TokenKind
	StudentID uuid.UUID // TokenStudent
	Meal      string    // TokenMeal, canonical meal name
	Date      time.Time // TokenDate
	Word      string    // TokenUnknown / TokenAmbiguous
}

// Vocabulary is the guardian-specific match space: the students listed
// under the guardian's name and the meals of their caterings.
type Vocabulary struct {
	Students []VocabStudent
	Meals    []string
}

type VocabStudent struct {
	ID   uuid.UUID
	Name string
}

// maxEditDistance bounds fuzzy matching of words to names; beyond it a
// word is unknown rather than a typo.
const maxEditDistance = 3

var (
	longDateRe   = regexp.MustCompile(`^(\d{1,2})[-./](\d{1,2})[-./](\d{4})$`)
	middleDateRe = regexp.MustCompile(`^(\d{1,2})[-./](\d{1,2})[-./](\d{2})$`)
	shortDateRe  = regexp.MustCompile(`^(\d{1,2})[-./](\d{1,2})$`)
)

// Tokenize splits content on whitespace and interprets each word as a
// date, a meal or a student name.
func Tokenize(content string, vocab Vocabulary, arrived time.Time) []Token {
	words := strings.Fields(content)
	tokens := make([]Token, 0, len(words))
	for _, w := range words {
		tokens = append(tokens, intoToken(w, vocab, arrived))
	}
	return tokens
}

func intoToken(word string, vocab Vocabulary, arrived time.Time) Token {
	if m := longDateRe.FindStringSubmatch(word); m != nil {
		return dateToken(word, atoi(m[3]), atoi(m[2]), atoi(m[1]))
	}
	if m := middleDateRe.FindStringSubmatch(word); m != nil {
		// Two-digit year: complete within the arrival century.
		year := (arrived.Year()/100)*100 + atoi(m[3])
		return dateToken(word, year, atoi(m[2]), atoi(m[1]))
	}
	if m := shortDateRe.FindStringSubmatch(word); m != nil {
		// No year given: this year, or next year once the date has passed.
		tok := dateToken(word, arrived.Year(), atoi(m[2]), atoi(m[1]))
		if tok.Kind == TokenDate && tok.Date.Before(dateOnly(arrived)) {
			tok.Date = tok.Date.AddDate(1, 0, 0)
		}
		return tok
	}
	return matchToken(word, vocab)
}

// matchToken fuzzy-matches word against meal names and student names,
// keeping every candidate at the minimal edit distance.
func matchToken(word string, vocab Vocabulary) Token {
	best := maxEditDistance + 1
	var matches []Token
	consider := func(name string, tok Token) {
		d := Levenshtein(strings.ToLower(name), strings.ToLower(word))
		if d > maxEditDistance || d > best {
			return
		}
		if d < best {
			best = d
			matches = matches[:0]
		}
		matches = append(matches, tok)
	}

	for _, meal := range vocab.Meals {
		consider(meal, Token{Kind: TokenMeal, Meal: meal})
	}
	for _, s := range vocab.Students {
		consider(s.Name, Token{Kind: TokenStudent, StudentID: s.ID})
	}

	switch len(matches) {
	case 0:
		return Token{Kind: TokenUnknown, Word: word}
	case 1:
		return matches[0]
	default:
		return Token{Kind: TokenAmbiguous, Word: word}
	}
}

func dateToken(word string, year, month, day int) Token {
	if month < 1 || month > 12 {
		return Token{Kind: TokenUnknown, Word: word}
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || d.Month() != time.Month(month) {
		return Token{Kind: TokenUnknown, Word: word}
	}
	return Token{Kind: TokenDate, Date: d}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// RequestErrorReason explains why a message could not be turned into a
// cancellation request.
type RequestErrorReason string

const (
	ReasonUnknownTerm      RequestErrorReason = "UNKNOWN_TERM"
	ReasonAmbiguousTerm    RequestErrorReason = "AMBIGUOUS_TERM"
	ReasonNoDateSpecified  RequestErrorReason = "NO_DATE_SPECIFIED"
	ReasonInvalidTimeRange RequestErrorReason = "INVALID_TIME_RANGE"
	ReasonTooManyDates     RequestErrorReason = "TOO_MANY_DATES"
)

// RequestError is a structured parse failure; Term is set for the
// term-related reasons.
type RequestError struct {
	Reason RequestErrorReason
	Term   string
}

func (e *RequestError) Error() string {
	if e.Term != "" {
		return fmt.Sprintf("message request error: %s (%q)", e.Reason, e.Term)
	}
	return fmt.Sprintf("message request error: %s", e.Reason)
}

// CancellationRequest is the parsed intent of a guardian message: cancel
// the listed students (all of the guardian's students when empty) over the
// inclusive [Since, Until] range.
type CancellationRequest struct {
	Since      time.Time
	Until      time.Time
	StudentIDs []uuid.UUID
	Meals      []string
}

// BuildRequest folds tokens into a CancellationRequest. One date means a
// single day, two mean an inclusive range; zero, inverted or more than two
// dates are rejected, as is any unknown or ambiguous token.
func BuildRequest(tokens []Token) (*CancellationRequest, error) {
	var dates []time.Time
	req := &CancellationRequest{}

	for _, tok := range tokens {
		switch tok.Kind {
		case TokenStudent:
			req.StudentIDs = append(req.StudentIDs, tok.StudentID)
		case TokenMeal:
			req.Meals = append(req.Meals, tok.Meal)
		case TokenDate:
			dates = append(dates, tok.Date)
		case TokenUnknown:
			return nil, &RequestError{Reason: ReasonUnknownTerm, Term: tok.Word}
		case TokenAmbiguous:
			return nil, &RequestError{Reason: ReasonAmbiguousTerm, Term: tok.Word}
		}
	}

	switch len(dates) {
	case 0:
		return nil, &RequestError{Reason: ReasonNoDateSpecified}
	case 1:
		req.Since, req.Until = dates[0], dates[0]
	case 2:
		if dates[1].Before(dates[0]) {
			return nil, &RequestError{Reason: ReasonInvalidTimeRange}
		}
		req.Since, req.Until = dates[0], dates[1]
	default:
		return nil, &RequestError{Reason: ReasonTooManyDates}
	}
	return req, nil
}
