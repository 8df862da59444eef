package vla

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"humanoidsim/internal/errs"
)

// MinConfidence is the validation threshold below which a transcript is
// rejected.
const MinConfidence = 0.5

// Processor validates command text and interprets intents by keyword
// matching. Speech capture and transcription are external concerns; this
// stage starts at text.
type Processor struct{}

// NewProcessor returns a Processor.
func NewProcessor() *Processor {
	return &Processor{}
}

// Validate rejects empty text and out-of-range or sub-threshold
// confidence scores.
func (p *Processor) Validate(text string, confidence float64) error {
	if strings.TrimSpace(text) == "" {
		return errs.Validation("Validate", "text", "empty")
	}
	if confidence < 0 || confidence > 1 {
		return errs.Validation("Validate", "confidence", "outside [0,1]")
	}
	if confidence < MinConfidence {
		return errs.Validation("Validate", "confidence", "below threshold")
	}
	return nil
}

// Command validates the text and wraps it as a pending Command.
func (p *Processor) Command(text string, confidence float64) (*Command, error) {
	if err := p.Validate(text, confidence); err != nil {
		return nil, err
	}
	return &Command{
		ID:         newID("vc"),
		Text:       text,
		Confidence: confidence,
		Status:     StatusPending,
		Timestamp:  time.Now(),
	}, nil
}

var (
	stopWords         = []string{"stop", "halt", "freeze"}
	statusWords       = []string{"status", "report", "battery", "how are you"}
	manipulationWords = []string{"pick", "grab", "grasp", "place", "put", "drop", "release", "hold", "bring"}
	detectionWords    = []string{"find", "look", "scan", "search", "detect", "locate", "where"}
	navigationWords   = []string{"move", "go", "walk", "turn", "navigate", "come", "forward", "backward", "approach"}

	directions = []string{"forward", "backward", "left", "right", "up", "down"}

	distanceRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:m\b|meter|meters|metre|metres)`)
	objectRe   = regexp.MustCompile(`(?:pick up|grab|grasp|place|put down|drop|release|find|locate)\s+(?:the\s+|a\s+|an\s+)?([a-z]+(?: [a-z]+)*?)(?:\s+(?:and|then|on|in|to|from)\b|[.,]|$)`)
	locationRe = regexp.MustCompile(`(?:go|navigate|walk|come)\s+to\s+(?:the\s+|a\s+)?([a-z]+(?: [a-z]+)*?)(?:\s+(?:and|then)\b|[.,]|$)`)
)

// Interpret derives an Intent from the command text. Commands matching no
// vocabulary come back with primary intent "unknown"; the planner maps
// those to a wait action.
func (p *Processor) Interpret(cmd *Command) Intent {
	text := strings.ToLower(cmd.Text)
	intent := Intent{Primary: "unknown", Confidence: cmd.Confidence}

	switch {
	case containsAny(text, stopWords):
		intent.Primary = "stop"
	case containsAny(text, statusWords):
		intent.Primary = "status"
	case containsAny(text, manipulationWords):
		intent.Primary = "manipulation"
	case containsAny(text, detectionWords):
		intent.Primary = "detection"
	case containsAny(text, navigationWords):
		intent.Primary = "navigation"
	}

	for _, d := range directions {
		if strings.Contains(text, d) {
			intent.Direction = d
			break
		}
	}
	if m := distanceRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			intent.Distance = v
		}
	}
	if m := objectRe.FindStringSubmatch(text); m != nil {
		intent.Object = strings.TrimSpace(m[1])
	}
	if m := locationRe.FindStringSubmatch(text); m != nil {
		intent.Location = strings.TrimSpace(m[1])
	}

	return intent
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
