package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

const (
	defaultAccuracy      = "0%"
	defaultHeading       = "Study Section"
	defaultHeadingEmoji  = "📚"
	defaultChunkText     = "Content not available"
	defaultExplanation   = "No explanation available"
	defaultFullForm      = "Full form not available"
	fallbackPointEmoji   = "⚠️"
	fallbackPreviewRunes = 200
)

var (
	thinkBlockPattern = regexp.MustCompile(`(?is)<think>.*?</think>`)

	errInvalidStructure = errors.New("invalid response structure")
	errNullElement      = errors.New("null element in response list")
	errNoJSONObject     = errors.New("no JSON object found in model output")
)

// Recoverer turns free-form model output into one of the fixed reply shapes.
// Every method returns a complete value; the bool reports whether the model
// output was usable or a fallback was substituted.
type Recoverer struct {
	// RepairJSON retries unparseable spans through jsonrepair before giving up.
	RepairJSON bool
}

// extractJSONSpan returns the text from the first '{' through the last '}'.
// Without such a span the trimmed input is returned unchanged.
func extractJSONSpan(raw string) string {
	text := strings.TrimSpace(thinkBlockPattern.ReplaceAllString(raw, ""))
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}

func decodeReply[T any](raw string, repair bool) (T, error) {
	span := extractJSONSpan(raw)

	var out T
	if !strings.HasPrefix(span, "{") {
		return out, errNoJSONObject
	}
	err := json.Unmarshal([]byte(span), &out)
	if err == nil {
		return out, nil
	}
	if !repair {
		return out, err
	}

	repaired, repairErr := jsonrepair.JSONRepair(span)
	if repairErr != nil {
		return out, err
	}
	var retry T
	if retryErr := json.Unmarshal([]byte(repaired), &retry); retryErr != nil {
		return out, err
	}
	return retry, nil
}

// accuracyValue accepts "85%", "85" or 85. Bare numbers gain a "%" suffix.
type accuracyValue string

func (a *accuracyValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			s += "%"
		}
		*a = accuracyValue(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("accuracy must be a string or number: %w", err)
	}
	*a = accuracyValue(strconv.FormatFloat(f, 'f', -1, 64) + "%")
	return nil
}

type rawBlurtResult struct {
	Accuracy     *accuracyValue `json:"accuracy"`
	CorrectWords []string       `json:"correct_words"`
	WrongWords   []string       `json:"wrong_words"`
	MissedPoints []string       `json:"missed_points"`
	ReviseAgain  []string       `json:"revise_again"`
}

// Blurt recovers a BlurtResult from raw model text.
func (r Recoverer) Blurt(raw string) (BlurtResult, bool) {
	parsed, err := decodeReply[rawBlurtResult](raw, r.RepairJSON)
	if err != nil {
		return blurtFallback(err, raw), false
	}

	result := BlurtResult{
		Accuracy:     defaultAccuracy,
		CorrectWords: nonNil(parsed.CorrectWords),
		WrongWords:   nonNil(parsed.WrongWords),
		MissedPoints: nonNil(parsed.MissedPoints),
		ReviseAgain:  nonNil(parsed.ReviseAgain),
	}
	if parsed.Accuracy != nil {
		result.Accuracy = string(*parsed.Accuracy)
	}
	return result, true
}

// Flashcards recovers a FlashcardSet from raw model text.
func (r Recoverer) Flashcards(raw string) (FlashcardSet, bool) {
	parsed, err := decodeReply[rawFlashcardSet](raw, r.RepairJSON)
	if err != nil {
		return flashcardsFallback(), false
	}

	set := FlashcardSet{Flashcards: make([]Flashcard, 0, len(parsed.Flashcards))}
	for _, card := range parsed.Flashcards {
		if card == nil {
			return flashcardsFallback(), false
		}
		set.Flashcards = append(set.Flashcards, *card)
	}
	return set, true
}

type rawFlashcardSet struct {
	Flashcards []*Flashcard `json:"flashcards"`
}

type rawMnemonicDocument struct {
	Sections *[]*rawMnemonicSection `json:"sections"`
}

type rawMnemonicSection struct {
	Heading      *string             `json:"heading"`
	HeadingEmoji *string             `json:"headingEmoji"`
	Points       *[]*rawMnemonicPoint `json:"points"`
}

type rawMnemonicPoint struct {
	Chunks *[]*rawMnemonicChunk `json:"chunks"`
	Emoji  *string             `json:"emoji"`
}

type rawMnemonicChunk struct {
	Type        *string `json:"type"`
	Text        *string `json:"text"`
	Explanation *string `json:"explanation"`
	FullForm    *string `json:"fullForm"`
}

// Mnemonics recovers a MnemonicDocument from raw model text. Absent keys are
// filled with defaults; explicit values, empty strings included, are kept.
// title and material only feed the fallback document.
func (r Recoverer) Mnemonics(raw, title, material string) (MnemonicDocument, bool) {
	parsed, err := decodeReply[rawMnemonicDocument](raw, r.RepairJSON)
	if err == nil && parsed.Sections == nil {
		err = errInvalidStructure
	}
	if err != nil {
		return mnemonicsFallback(title, material, err), false
	}

	doc, err := buildMnemonicDocument(*parsed.Sections)
	if err != nil {
		return mnemonicsFallback(title, material, err), false
	}
	return doc, true
}

// buildMnemonicDocument fills absent keys with defaults. A null list element
// is a malformed reply.
func buildMnemonicDocument(sections []*rawMnemonicSection) (MnemonicDocument, error) {
	doc := MnemonicDocument{Sections: make([]MnemonicSection, 0, len(sections))}
	for _, rs := range sections {
		if rs == nil {
			return doc, errNullElement
		}
		section := MnemonicSection{
			Heading:      stringOr(rs.Heading, defaultHeading),
			HeadingEmoji: stringOr(rs.HeadingEmoji, defaultHeadingEmoji),
			Points:       []MnemonicPoint{},
		}
		if rs.Points != nil {
			for _, rp := range *rs.Points {
				point, err := normalizePoint(rp)
				if err != nil {
					return doc, err
				}
				section.Points = append(section.Points, point)
			}
		}
		doc.Sections = append(doc.Sections, section)
	}
	return doc, nil
}

func normalizePoint(rp *rawMnemonicPoint) (MnemonicPoint, error) {
	if rp == nil {
		return MnemonicPoint{}, errNullElement
	}
	point := MnemonicPoint{Emoji: stringOr(rp.Emoji, "")}
	if rp.Chunks == nil {
		point.Chunks = []MnemonicChunk{{Type: ChunkNormal, Text: defaultChunkText}}
		return point, nil
	}

	point.Chunks = make([]MnemonicChunk, 0, len(*rp.Chunks))
	for _, rc := range *rp.Chunks {
		if rc == nil {
			return point, errNullElement
		}
		chunk := MnemonicChunk{
			Type:        stringOr(rc.Type, ChunkNormal),
			Text:        stringOr(rc.Text, ""),
			Explanation: rc.Explanation,
			FullForm:    rc.FullForm,
		}
		switch chunk.Type {
		case ChunkHover:
			if chunk.Explanation == nil {
				chunk.Explanation = ptr(defaultExplanation)
			}
		case ChunkAcronym:
			if chunk.FullForm == nil {
				chunk.FullForm = ptr(defaultFullForm)
			}
		}
		point.Chunks = append(point.Chunks, chunk)
	}
	return point, nil
}

func emptyBlurt() BlurtResult {
	return BlurtResult{
		Accuracy:     defaultAccuracy,
		CorrectWords: []string{},
		WrongWords:   []string{},
		MissedPoints: []string{},
		ReviseAgain:  []string{"No study material provided."},
	}
}

func blurtFallback(err error, raw string) BlurtResult {
	return BlurtResult{
		Accuracy:     defaultAccuracy,
		CorrectWords: []string{},
		WrongWords:   []string{},
		MissedPoints: []string{},
		ReviseAgain: []string{
			fmt.Sprintf("Parsing error: %v. Raw: %s", err, truncateText(strings.TrimSpace(raw), fallbackPreviewRunes)),
		},
	}
}

func flashcardsFallback() FlashcardSet {
	return FlashcardSet{Flashcards: []Flashcard{}}
}

func emptyMnemonics() MnemonicDocument {
	return MnemonicDocument{Sections: []MnemonicSection{}}
}

func mnemonicsFallback(title, material string, err error) MnemonicDocument {
	text := fmt.Sprintf("Processing error occurred. Raw content: %s... Error: %v", runePrefix(material, fallbackPreviewRunes), err)
	return MnemonicDocument{Sections: []MnemonicSection{{
		Heading:      title,
		HeadingEmoji: defaultHeadingEmoji,
		Points: []MnemonicPoint{{
			Chunks: []MnemonicChunk{{Type: ChunkNormal, Text: text}},
			Emoji:  fallbackPointEmoji,
		}},
	}}}
}

func truncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "..."
}

func runePrefix(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

func stringOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func ptr[T any](v T) *T { return &v }
