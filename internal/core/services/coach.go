package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/storybank/internal/core/domain"
	"github.com/custodia-labs/storybank/internal/core/ports/driven"
	"github.com/custodia-labs/storybank/internal/core/ports/driving"
	"github.com/custodia-labs/storybank/internal/logger"
)

// Ensure CoachService implements the interface.
var _ driving.CoachService = (*CoachService)(nil)

// Note metadata keys read by the coach. They match the keys the note
// parser writes.
const (
	metaProject = "project"
	metaTopic   = "topic"
	metaTags    = "tags"
)

const (
	// minQuestionLength is the trimmed length below which heard text is noise.
	minQuestionLength = 10

	// maxFollowupWords is the word count at or below which a question is
	// taken to continue the current story.
	maxFollowupWords = 7

	// Cache keys and the story remainder quote at most this many runes.
	questionKeyRunes = 80
	beatKeyRunes     = 120

	// minFallbackLength is the rune count a beat line needs to be quoted
	// as a fallback response.
	minFallbackLength = 20

	defaultCoachCacheSize = 256
)

var questionStarters = []string{
	"what", "how", "why", "when", "where", "who", "which",
	"can you", "could you", "tell me", "describe", "explain",
	"walk me through", "have you", "did you", "do you",
	"would you", "was there", "talk me through", "give me",
}

var (
	beatPrefixRe = regexp.MustCompile(`^Beat \d+:\s*`)

	// promptLineRe matches interviewer prompts kept in a note, such as
	// "Ask: what did you measure?". They are not part of the narrative.
	promptLineRe = regexp.MustCompile(`^[\pL\pN][\pL\pN-]*:\s.*\?$`)

	sentenceEndRe = regexp.MustCompile(`[.!?]`)
)

// coachPrompt is the system prompt for response generation.
const coachPrompt = `You are a real-time interview coach. Your job is to write exactly what the speaker should say out loud, right now, based on their own notes and the question just asked.

Question type methodology:
BEHAVIORAL ("tell me about a time..."): One sentence of context. Then the tension: what made it hard, who disagreed, what was uncertain. Then the speaker's reasoning and action. Then the result with a real number. The decision and the reasoning matter more than the setup.
DISAGREEMENT/PUSHBACK: Who disagreed, what they wanted, why the speaker thought otherwise, what data made the case, what happened. Don't soften it.
PRODUCT SENSE: Clarify the goal in one sentence. Show the technical constraint as well as the user need. Give a concrete recommendation with one real tradeoff. No framework names.
0-TO-1/AMBIGUITY: How the speaker worked out what to build when nothing existed. What they learned, what they killed, what they shipped.
TECHNICAL: One level deeper than expected. The specific decision and why, with the numbers and stack details from the notes.
ESTIMATION: One key assumption stated out loud. Rough math. Sanity check.

Voice rules:
Sound like a senior practitioner talking to a peer. Use the numbers in the notes exactly. Contractions always. No corporate language. Never generalize what the notes make specific. If the notes are thin, say what the speaker would logically say, but don't invent facts.

Output format:
3-4 sentences. What the speaker says out loud right now. First person. Direct. No preamble, labels or bullet points.`

type responseKey struct {
	question string
	beat     string
}

// CoachService tracks the story being told and produces a cue per question.
type CoachService struct {
	retrieval driving.RetrievalService
	chunks    driving.ChunkService
	llm       driven.LLMService
	settings  domain.CoachSettings
	system    string
	responses *lru.Cache[responseKey, string]

	mu    sync.Mutex
	story *domain.AnswerItem
	beats []domain.Chunk
	index int
}

// NewCoachService creates a coach. llm may be nil, in which case responses
// are quoted from the beat text.
func NewCoachService(
	retrieval driving.RetrievalService,
	chunks driving.ChunkService,
	llm driven.LLMService,
	settings domain.CoachSettings,
) (*CoachService, error) {
	size := settings.CacheSize
	if size <= 0 {
		size = defaultCoachCacheSize
	}
	responses, err := lru.New[responseKey, string](size)
	if err != nil {
		return nil, fmt.Errorf("coach cache: %w", err)
	}

	system := coachPrompt
	if persona := strings.TrimSpace(settings.Persona); persona != "" {
		system += "\n\nWho the speaker is:\n" + persona
	}

	return &CoachService{
		retrieval: retrieval,
		chunks:    chunks,
		llm:       llm,
		settings:  settings,
		system:    system,
		responses: responses,
	}, nil
}

// Coach answers one heard question. A follow-up moves to the next beat of
// the current story and stays on the last one; anything else searches for
// the best matching story and starts at its first beat.
func (s *CoachService) Coach(ctx context.Context, heard string) (*domain.CoachCue, error) {
	question := strings.TrimSpace(heard)
	if !isQuestion(question) {
		return nil, domain.ErrNotAQuestion
	}

	s.mu.Lock()
	followUp := s.story != nil && len(s.beats) > 0 && isFollowup(question, s.story.Metadata)
	if followUp {
		s.index = min(s.index+1, len(s.beats)-1)
	} else if err := s.startStory(ctx, question); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	story, beats, index := *s.story, s.beats, s.index
	s.mu.Unlock()

	logger.Debug("coach: %q -> %s beat %d/%d (follow-up %v)", question, story.NoteID, index+1, len(beats), followUp)

	cue := &domain.CoachCue{
		Question: question,
		NoteID:   story.NoteID,
		Project:  story.Metadata[metaProject],
		Topic:    storyTopic(&story),
		Fit:      fitReason(question, story.Metadata[metaTags]),
		Beat:     beatLabel(beats[index].Section),
		BeatNum:  index + 1,
		Total:    len(beats),
		FollowUp: followUp,
	}
	if index+1 < len(beats) {
		cue.Next = beatLabel(beats[index+1].Section)
	}
	cue.Response, cue.Generated = s.respond(ctx, question, cue, beats, index)
	return cue, nil
}

// Reset forgets the current story.
func (s *CoachService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.story, s.beats, s.index = nil, nil, 0
}

// startStory searches for the best story and loads its beats. Caller holds mu.
// The session is left unchanged on error.
func (s *CoachService) startStory(ctx context.Context, question string) error {
	items, err := s.retrieval.Answer(ctx, question, 1)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: no story matches %q", domain.ErrNotFound, question)
	}
	item := items[0]

	beats, err := s.chunks.List(ctx, item.NoteID)
	if err != nil {
		return fmt.Errorf("load beats of %s: %w", item.NoteID, err)
	}
	if len(beats) == 0 {
		beats = []domain.Chunk{{
			ID:       item.ChunkID,
			Text:     item.Text,
			NoteID:   item.NoteID,
			Section:  item.Section,
			Metadata: item.Metadata,
		}}
	}

	s.story, s.beats, s.index = &item, beats, 0
	return nil
}

// respond returns what to say for beats[index] and whether a model wrote it.
// Only model replies are cached.
func (s *CoachService) respond(ctx context.Context, question string, cue *domain.CoachCue, beats []domain.Chunk, index int) (string, bool) {
	beat := beats[index]
	fallback := extractFallback(beat.Text)
	if s.llm == nil {
		return fallback, false
	}

	key := responseKey{question: truncateRunes(question, questionKeyRunes), beat: truncateRunes(beat.Text, beatKeyRunes)}
	if reply, ok := s.responses.Get(key); ok {
		return reply, true
	}

	if s.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.Timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := s.llm.Chat(ctx, []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: s.system},
		{Role: driven.RoleUser, Content: userMessage(question, cue, beats, index)},
	}, driven.ChatOptions{MaxTokens: s.settings.MaxTokens})
	reply = strings.TrimSpace(reply)
	if err != nil || reply == "" {
		if err == nil {
			err = errors.New("empty reply")
		}
		logger.Warn("coach: %s failed after %s, quoting notes: %v", s.llm.ModelName(), time.Since(start).Round(time.Millisecond), err)
		return fallback, false
	}

	s.responses.Add(key, reply)
	return reply, true
}

// userMessage lays out the question, the story position and the notes from
// the current beat to the end of the story.
func userMessage(question string, cue *domain.CoachCue, beats []domain.Chunk, index int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Interview question: %q\n\n", question)
	fmt.Fprintf(&b, "Story: %s: %s\n", cue.Project, cue.Topic)
	fmt.Fprintf(&b, "Current beat (%d/%d): %s\n\n", cue.BeatNum, cue.Total, cue.Beat)
	b.WriteString("Notes:\n")
	b.WriteString(cleanBeat(beats[index].Text))

	if rest := beats[index+1:]; len(rest) > 0 {
		b.WriteString("\n\nRemainder of story (later beats):")
		for _, later := range rest {
			fmt.Fprintf(&b, "\n- %s: %s", beatLabel(later.Section), truncateRunes(cleanBeat(later.Text), beatKeyRunes))
		}
	}
	return b.String()
}

// isQuestion reports whether heard text looks like an interview question:
// long enough, and either ending in '?' or opening like a question.
func isQuestion(text string) bool {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < minQuestionLength {
		return false
	}
	if strings.HasSuffix(text, "?") {
		return true
	}
	lower := strings.ToLower(text)
	for _, starter := range questionStarters {
		if strings.HasPrefix(lower, starter) {
			return true
		}
	}
	return false
}

// isFollowup reports whether a question continues the story described by
// meta: it is short, or it names one of the story's tags, its project or
// its topic. Empty values never match.
func isFollowup(question string, meta map[string]string) bool {
	if len(strings.Fields(question)) <= maxFollowupWords {
		return true
	}
	lower := strings.ToLower(question)
	names := append(splitTags(meta[metaTags]), meta[metaProject], meta[metaTopic])
	for _, name := range names {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" && strings.Contains(lower, name) {
			return true
		}
	}
	return false
}

// fitReason names up to two tags explaining the match: the tags the
// question mentions, else the story's first tags.
func fitReason(question, tags string) string {
	all := splitTags(tags)
	lower := strings.ToLower(question)

	var matched []string
	for _, tag := range all {
		if strings.Contains(lower, strings.ToLower(tag)) {
			matched = append(matched, tag)
		}
	}
	switch {
	case len(matched) > 0:
		return strings.Join(matched[:min(2, len(matched))], " · ")
	case len(all) > 0:
		return strings.Join(all[:min(2, len(all))], " · ")
	default:
		return "semantic match"
	}
}

func splitTags(tags string) []string {
	var out []string
	for _, tag := range strings.Split(tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func storyTopic(item *domain.AnswerItem) string {
	if topic := item.Metadata[metaTopic]; topic != "" {
		return topic
	}
	if title := item.Metadata["title"]; title != "" {
		return title
	}
	return item.NoteID
}

// beatLabel drops a "Beat N:" prefix from a section name.
func beatLabel(section string) string {
	return strings.TrimSpace(beatPrefixRe.ReplaceAllString(section, ""))
}

// narrativeLines yields the trimmed lines of a beat that are story text,
// skipping blanks, headings, interviewer prompts and table rows.
func narrativeLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "",
			strings.HasPrefix(line, "#"),
			strings.Contains(line, "|"),
			promptLineRe.MatchString(line):
			continue
		}
		out = append(out, line)
	}
	return out
}

// cleanBeat joins a beat's narrative lines with spaces.
func cleanBeat(text string) string {
	return strings.Join(narrativeLines(text), " ")
}

// extractFallback quotes the first substantive sentence of a beat. A beat
// without one is quoted whole, cut to the cache key length.
func extractFallback(text string) string {
	lines := narrativeLines(text)
	for _, line := range lines {
		if len([]rune(line)) <= minFallbackLength {
			continue
		}
		if loc := sentenceEndRe.FindStringIndex(line); loc != nil {
			return strings.TrimSpace(line[:loc[1]])
		}
		return line
	}
	return truncateRunes(strings.Join(lines, " "), beatKeyRunes)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
