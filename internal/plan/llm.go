package plan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tanush/cleanspeech/internal/transcript"
)

// Static errors for LLM-assisted classification.
var (
	// ErrNoJSONInReply is returned when the model reply contains no JSON object.
	ErrNoJSONInReply = errors.New("plan: no JSON object in classification reply")
	// ErrBadReply is returned when the reply JSON does not match the expected shape.
	ErrBadReply = errors.New("plan: malformed classification reply")
)

// Classifier identifies filler segments in a transcript. Implementations
// return an explicit error on failure; the Builder decides whether to
// fall back to the rule-based path.
type Classifier interface {
	Classify(ctx context.Context, words []transcript.Word) ([]Segment, error)
}

// ChatClient is the slice of the language-model client used for filler
// classification.
type ChatClient interface {
	Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// classifySystemPrompt constrains the model to conservative filler-only
// removal candidates in a fixed JSON shape.
const classifySystemPrompt = `You are an expert audio editor. Your ONLY job is to identify FILLER WORDS in a transcript.

INPUT: A JSON array of words with timestamps.
OUTPUT: A JSON object listing segments to remove.

RULES FOR FILLER REMOVAL:
1. Target these words: "um", "uh", "er", "ah", "hmm", "uhm", "umm".
2. Target these phrases ONLY if they are non-meaningful fillers: "you know", "kind of", "sort of", "basically", "actually", "like".
3. BE CONSERVATIVE:
   - NEVER remove "like" if it's a verb ("I like it") or preposition ("like a boss").
   - NEVER remove nouns, verbs, numbers, names, or technical terms.
   - If unsure, KEEP IT.

OUTPUT FORMAT:
{
  "remove_segments": [
    { "start": 0.5, "end": 0.8, "reason": "FILLER: um" }
  ]
}

Return ONLY valid JSON.`

// LLMClassifier asks a language model for filler removal candidates.
type LLMClassifier struct {
	client ChatClient
}

// NewLLMClassifier creates a classifier backed by the given chat client.
func NewLLMClassifier(client ChatClient) *LLMClassifier {
	return &LLMClassifier{client: client}
}

// Compile-time check that both strategies satisfy Classifier.
var (
	_ Classifier = (*LLMClassifier)(nil)
	_ Classifier = RuleClassifier{}
)

// removeReply is the wire shape expected from the model.
type removeReply struct {
	RemoveSegments []struct {
		Start  float64 `json:"start"`
		End    float64 `json:"end"`
		Reason string  `json:"reason"`
	} `json:"remove_segments"`
}

// Classify serializes the transcript, submits it with the fixed system
// instruction, and parses the structured reply into removal segments.
func (c *LLMClassifier) Classify(ctx context.Context, words []transcript.Word) ([]Segment, error) {
	payload, err := json.Marshal(words)
	if err != nil {
		return nil, fmt.Errorf("plan: marshal transcript: %w", err)
	}

	userPrompt := "Identify fillers in this transcript:\n" + string(payload)

	reply, err := c.client.Chat(ctx, classifySystemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("plan: classification request: %w", err)
	}

	return parseRemoveReply(reply)
}

// parseRemoveReply extracts and decodes the JSON object from a reply that
// may be wrapped in explanation text or a code fence.
func parseRemoveReply(reply string) ([]Segment, error) {
	jsonStr, ok := extractJSONObject(reply)
	if !ok {
		return nil, ErrNoJSONInReply
	}

	var parsed removeReply
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadReply, err)
	}

	segs := make([]Segment, 0, len(parsed.RemoveSegments))
	for _, rs := range parsed.RemoveSegments {
		if rs.End <= rs.Start {
			continue
		}
		segs = append(segs, Segment{
			StartSec: rs.Start,
			EndSec:   rs.End,
			Reason:   FillerReason(fillerWordFromReason(rs.Reason)),
		})
	}
	return segs, nil
}

// fillerWordFromReason pulls the flagged word out of reply tags like
// "FILLER: um"; an unrecognized tag yields an empty word.
func fillerWordFromReason(reason string) string {
	if _, after, found := strings.Cut(reason, ":"); found {
		return strings.TrimSpace(after)
	}
	return ""
}

// extractJSONObject returns the text between the first '{' and the last
// '}' of the reply.
func extractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
