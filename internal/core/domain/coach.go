package domain

import (
	"strings"
	"unicode"
)

// CoachCue is the glanceable answer to one heard question: which story to
// tell, where in it the speaker is, and what to say next.
type CoachCue struct {
	// Question is the trimmed text the cue answers.
	Question string `json:"question"`

	// NoteID identifies the story being told.
	NoteID string `json:"note_id"`

	// Project and Topic name the story, taken from its note title.
	Project string `json:"project,omitempty"`
	Topic   string `json:"topic"`

	// Fit lists up to two tags explaining why the story matches.
	Fit string `json:"fit"`

	// Beat is the current beat label; BeatNum is 1-based out of Total.
	Beat    string `json:"beat"`
	BeatNum int    `json:"beat_num"`
	Total   int    `json:"total"`

	// Next is the label of the following beat, empty on the last one.
	Next string `json:"next,omitempty"`

	// Response is what to say out loud now.
	Response string `json:"response"`

	// FollowUp is true when the question advanced the current story
	// instead of starting a new search.
	FollowUp bool `json:"follow_up"`

	// Generated is false when Response was taken from the beat text
	// because no language model answered.
	Generated bool `json:"generated"`
}

// Sentences splits Response after each '.', '!' or '?' that is followed by
// whitespace. Empty pieces are dropped.
func (c *CoachCue) Sentences() []string {
	var (
		out   []string
		start int
	)
	runes := []rune(c.Response)
	for i := 0; i < len(runes)-1; i++ {
		if strings.ContainsRune(".!?", runes[i]) && unicode.IsSpace(runes[i+1]) {
			if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}
