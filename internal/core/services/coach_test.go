package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/storybank/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/storybank/internal/core/domain"
	"github.com/custodia-labs/storybank/internal/core/ports/driven"
)

var pricingMeta = map[string]string{
	"title":   "Acme: Pricing rewrite",
	"project": "Acme",
	"topic":   "Pricing rewrite",
	"tags":    "pricing, stakeholder management, data",
}

var hiringMeta = map[string]string{
	"title":   "Globex: Hiring sprint",
	"project": "Globex",
	"topic":   "Hiring sprint",
	"tags":    "hiring",
}

const situationText = "## Situation\nWe were losing deals on price. Sales wanted discounts.\nAsk: how big was the gap?\n| metric | value |"

type coachFixture struct {
	retrieval *mockRetrieval
	llm       *mockLLM
	coach     *CoachService
}

func newCoachFixture(t *testing.T, llm *mockLLM, settings domain.CoachSettings) *coachFixture {
	t.Helper()

	store := memory.NewChunkStore()
	require.NoError(t, store.Upsert(context.Background(), []domain.Chunk{
		{ID: "p1", NoteID: "pricing", Section: "Beat 1: Situation", Text: situationText, Metadata: pricingMeta},
		{ID: "h1", NoteID: "hiring", Section: "Beat 1: Plan", Text: "We had six weeks to hire eight engineers.", Metadata: hiringMeta},
		{ID: "p2", NoteID: "pricing", Section: "Beat 2: Tension", Text: "Finance pushed back on usage pricing for a quarter.", Metadata: pricingMeta},
		{ID: "p3", NoteID: "pricing", Section: "Beat 3: Result", Text: "Win rate went from 18% to 31% in two quarters.", Metadata: pricingMeta},
	}))

	f := &coachFixture{
		retrieval: &mockRetrieval{items: []domain.AnswerItem{
			{ChunkID: "p2", NoteID: "pricing", Section: "Beat 2: Tension", Score: 0.9, Metadata: pricingMeta},
		}},
		llm: llm,
	}

	var svc driven.LLMService
	if llm != nil {
		svc = llm
	}
	coach, err := NewCoachService(f.retrieval, NewChunkService(store), svc, settings)
	require.NoError(t, err)
	f.coach = coach
	return f
}

func defaultCoachSettings() domain.CoachSettings {
	return domain.DefaultAppSettings().Coach
}

func TestIsQuestion(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"", false},
		{"short?", false},
		{"What now", false},
		{"Tell me about a time you disagreed", true},
		{"WHAT drove the decision", true},
		{"   and then it shipped?   ", true},
		{"walk me through the launch", true},
		{"So that was the whole project.", false},
		{"We shipped it in March", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, isQuestion(tt.text))
		})
	}
}

func TestIsFollowup(t *testing.T) {
	tests := []struct {
		name     string
		question string
		meta     map[string]string
		want     bool
	}{
		{"short question", "What happened next?", nil, true},
		{"names a tag", "Can you say more about the data you used to convince the team back then", pricingMeta, true},
		{"names the project", "How did the leadership team at Acme react to the final proposal you made", pricingMeta, true},
		{"names the topic", "Looking back on the pricing rewrite what would you change about how it went", pricingMeta, true},
		{"unrelated", "Describe a situation where you had to hire a team quickly under a tight deadline", pricingMeta, false},
		{"empty values never match", "Describe a situation where you had to hire a team quickly under a tight deadline", map[string]string{"tags": " , ", "project": ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isFollowup(tt.question, tt.meta))
		})
	}
}

func TestFitReason(t *testing.T) {
	tests := []struct {
		name     string
		question string
		tags     string
		want     string
	}{
		{"one mentioned", "Tell me about pricing", "pricing, data", "pricing"},
		{"two mentioned", "How did data change your pricing", "pricing, data, growth", "pricing · data"},
		{"mentioned tags capped at two", "pricing data growth", "pricing, data, growth", "pricing · data"},
		{"none mentioned", "Tell me about a conflict", "pricing, data, growth", "pricing · data"},
		{"no tags", "Tell me about a conflict", "", "semantic match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fitReason(tt.question, tt.tags))
		})
	}
}

func TestBeatLabel(t *testing.T) {
	assert.Equal(t, "Tension", beatLabel("Beat 2: Tension"))
	assert.Equal(t, "Result", beatLabel("Beat 10:Result"))
	assert.Equal(t, "Overview", beatLabel("Overview"))
}

func TestCleanBeat(t *testing.T) {
	text := "# Heading\n\nFirst line\nAsk: what was the gap?\n| a | b |\n  Second line  "
	assert.Equal(t, "First line Second line", cleanBeat(text))
}

func TestExtractFallback(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"first long sentence", "Short line.\nThis line is definitely long enough! And more.", "This line is definitely long enough!"},
		{"no sentence end", "## Beat\nWe rebuilt the whole billing stack", "We rebuilt the whole billing stack"},
		{"skips prompts and tables", "Ask: what was the hardest part?\n| a | b |\nFinance pushed back for a quarter. Then agreed.", "Finance pushed back for a quarter."},
		{"nothing long", "Tiny.\nAlso tiny.", "Tiny. Also tiny."},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractFallback(tt.text))
		})
	}
}

func TestCoachService_Coach_WalksTheStory(t *testing.T) {
	f := newCoachFixture(t, nil, defaultCoachSettings())
	ctx := context.Background()

	cue, err := f.coach.Coach(ctx, "  Tell me about a time you pushed back on a pricing decision with stakeholders  ")
	require.NoError(t, err)
	assert.Equal(t, "Tell me about a time you pushed back on a pricing decision with stakeholders", cue.Question)
	assert.Equal(t, "pricing", cue.NoteID)
	assert.Equal(t, "Acme", cue.Project)
	assert.Equal(t, "Pricing rewrite", cue.Topic)
	assert.Equal(t, "pricing", cue.Fit)
	assert.Equal(t, "Situation", cue.Beat)
	assert.Equal(t, 1, cue.BeatNum)
	assert.Equal(t, 3, cue.Total)
	assert.Equal(t, "Tension", cue.Next)
	assert.False(t, cue.FollowUp)
	assert.False(t, cue.Generated)
	assert.Equal(t, "We were losing deals on price.", cue.Response)

	want := []struct {
		beat    string
		num     int
		next    string
		heard   string
		respond string
	}{
		{"Tension", 2, "Result", "What happened next?", "Finance pushed back on usage pricing for a quarter."},
		{"Result", 3, "", "And how did it end?", "Win rate went from 18% to 31% in two quarters."},
		{"Result", 3, "", "What did you learn?", "Win rate went from 18% to 31% in two quarters."},
	}
	for _, w := range want {
		cue, err := f.coach.Coach(ctx, w.heard)
		require.NoError(t, err)
		assert.True(t, cue.FollowUp, w.heard)
		assert.Equal(t, w.beat, cue.Beat, w.heard)
		assert.Equal(t, w.num, cue.BeatNum, w.heard)
		assert.Equal(t, w.next, cue.Next, w.heard)
		assert.Equal(t, w.respond, cue.Response, w.heard)
	}

	assert.Len(t, f.retrieval.queries, 1)
}

func TestCoachService_Coach_NewTopicSearchesAgain(t *testing.T) {
	f := newCoachFixture(t, nil, defaultCoachSettings())
	ctx := context.Background()

	_, err := f.coach.Coach(ctx, "Tell me about a pricing decision")
	require.NoError(t, err)
	_, err = f.coach.Coach(ctx, "What happened next?")
	require.NoError(t, err)

	f.retrieval.items = []domain.AnswerItem{{ChunkID: "h1", NoteID: "hiring", Section: "Beat 1: Plan", Metadata: hiringMeta}}
	cue, err := f.coach.Coach(ctx, "Describe a situation where you had to hire a team quickly under a tight deadline")
	require.NoError(t, err)

	assert.False(t, cue.FollowUp)
	assert.Equal(t, "hiring", cue.NoteID)
	assert.Equal(t, 1, cue.BeatNum)
	assert.Equal(t, 1, cue.Total)
	assert.Empty(t, cue.Next)
	assert.Equal(t, "hiring", cue.Fit)
	assert.Len(t, f.retrieval.queries, 2)
}

func TestCoachService_Coach_LongFollowupNamingATag(t *testing.T) {
	f := newCoachFixture(t, nil, defaultCoachSettings())
	ctx := context.Background()

	_, err := f.coach.Coach(ctx, "Tell me about a pricing decision")
	require.NoError(t, err)

	cue, err := f.coach.Coach(ctx, "Can you say more about the data you used to convince the team back then")
	require.NoError(t, err)
	assert.True(t, cue.FollowUp)
	assert.Equal(t, 2, cue.BeatNum)
	assert.Len(t, f.retrieval.queries, 1)
}

func TestCoachService_Coach_NotAQuestionKeepsSession(t *testing.T) {
	f := newCoachFixture(t, nil, defaultCoachSettings())
	ctx := context.Background()

	_, err := f.coach.Coach(ctx, "Tell me about a pricing decision")
	require.NoError(t, err)

	_, err = f.coach.Coach(ctx, "um okay")
	assert.ErrorIs(t, err, domain.ErrNotAQuestion)
	_, err = f.coach.Coach(ctx, "We shipped it in March")
	assert.ErrorIs(t, err, domain.ErrNotAQuestion)

	cue, err := f.coach.Coach(ctx, "What happened next?")
	require.NoError(t, err)
	assert.Equal(t, 2, cue.BeatNum)
	assert.Len(t, f.retrieval.queries, 1)
}

func TestCoachService_Coach_SearchErrors(t *testing.T) {
	t.Run("no match", func(t *testing.T) {
		f := newCoachFixture(t, nil, defaultCoachSettings())
		f.retrieval.items = nil

		_, err := f.coach.Coach(context.Background(), "Tell me about a pricing decision")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("retrieval failure keeps the story", func(t *testing.T) {
		f := newCoachFixture(t, nil, defaultCoachSettings())
		ctx := context.Background()

		_, err := f.coach.Coach(ctx, "Tell me about a pricing decision")
		require.NoError(t, err)

		f.retrieval.err = errBoom
		_, err = f.coach.Coach(ctx, "Describe a situation where you had to hire a team quickly under a tight deadline")
		assert.ErrorIs(t, err, errBoom)

		cue, err := f.coach.Coach(ctx, "What happened next?")
		require.NoError(t, err)
		assert.Equal(t, "pricing", cue.NoteID)
		assert.Equal(t, 2, cue.BeatNum)
	})
}

func TestCoachService_Coach_MatchWithoutStoredBeats(t *testing.T) {
	f := newCoachFixture(t, nil, defaultCoachSettings())
	f.retrieval.items = []domain.AnswerItem{{
		ChunkID: "gone", NoteID: "deleted", Section: "Beat 4: Aftermath",
		Text: "The team kept the new pricing for two years.", Metadata: map[string]string{"title": "Old note"},
	}}

	cue, err := f.coach.Coach(context.Background(), "Tell me about a pricing decision")
	require.NoError(t, err)
	assert.Equal(t, "Aftermath", cue.Beat)
	assert.Equal(t, 1, cue.Total)
	assert.Equal(t, "Old note", cue.Topic)
	assert.Equal(t, "semantic match", cue.Fit)
	assert.Equal(t, "The team kept the new pricing for two years.", cue.Response)
}

func TestCoachService_Coach_Generated(t *testing.T) {
	llm := &mockLLM{reply: "  I pushed back on discounting. We tested usage pricing instead.  "}
	f := newCoachFixture(t, llm, defaultCoachSettings())

	question := "Tell me about a pricing decision"
	cue, err := f.coach.Coach(context.Background(), question)
	require.NoError(t, err)

	assert.True(t, cue.Generated)
	assert.Equal(t, "I pushed back on discounting. We tested usage pricing instead.", cue.Response)
	assert.Equal(t, []string{"I pushed back on discounting.", "We tested usage pricing instead."}, cue.Sentences())

	require.Equal(t, 1, llm.calls)
	assert.Equal(t, 200, llm.opts[0].MaxTokens)

	msgs := llm.messages[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, driven.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "real-time interview coach")
	assert.NotContains(t, msgs[0].Content, "Who the speaker is")

	assert.Equal(t, driven.RoleUser, msgs[1].Role)
	user := msgs[1].Content
	assert.Contains(t, user, `Interview question: "Tell me about a pricing decision"`)
	assert.Contains(t, user, "Story: Acme: Pricing rewrite")
	assert.Contains(t, user, "Current beat (1/3): Situation")
	assert.Contains(t, user, "Notes:\nWe were losing deals on price. Sales wanted discounts.")
	assert.Contains(t, user, "Remainder of story (later beats):\n- Tension: Finance pushed back")
	assert.Contains(t, user, "- Result: Win rate went from 18% to 31%")
	assert.NotContains(t, user, "how big was the gap")
}

func TestCoachService_Coach_CachesReplies(t *testing.T) {
	llm := &mockLLM{reply: "I pushed back on discounting."}
	f := newCoachFixture(t, llm, defaultCoachSettings())
	ctx := context.Background()

	_, err := f.coach.Coach(ctx, "Tell me about a pricing decision")
	require.NoError(t, err)

	f.coach.Reset()
	cue, err := f.coach.Coach(ctx, "Tell me about a pricing decision")
	require.NoError(t, err)

	assert.True(t, cue.Generated)
	assert.Equal(t, "I pushed back on discounting.", cue.Response)
	assert.Equal(t, 1, llm.calls)
	assert.Len(t, f.retrieval.queries, 2)
}

func TestCoachService_Coach_FallsBackOnModelError(t *testing.T) {
	llm := &mockLLM{err: errBoom}
	f := newCoachFixture(t, llm, defaultCoachSettings())
	ctx := context.Background()

	cue, err := f.coach.Coach(ctx, "Tell me about a pricing decision")
	require.NoError(t, err)
	assert.False(t, cue.Generated)
	assert.Equal(t, "We were losing deals on price.", cue.Response)

	// Failures are not cached.
	f.coach.Reset()
	llm.err = nil
	llm.reply = "Now it works."
	cue, err = f.coach.Coach(ctx, "Tell me about a pricing decision")
	require.NoError(t, err)
	assert.True(t, cue.Generated)
	assert.Equal(t, 2, llm.calls)
}

func TestCoachService_Coach_FallsBackOnEmptyReply(t *testing.T) {
	f := newCoachFixture(t, &mockLLM{reply: "   "}, defaultCoachSettings())

	cue, err := f.coach.Coach(context.Background(), "Tell me about a pricing decision")
	require.NoError(t, err)
	assert.False(t, cue.Generated)
	assert.Equal(t, "We were losing deals on price.", cue.Response)
}

func TestCoachService_Persona(t *testing.T) {
	llm := &mockLLM{reply: "ok."}
	settings := defaultCoachSettings()
	settings.Persona = "  Ten years in payments.  "
	settings.MaxTokens = 120
	settings.Timeout = time.Second
	f := newCoachFixture(t, llm, settings)

	_, err := f.coach.Coach(context.Background(), "Tell me about a pricing decision")
	require.NoError(t, err)

	require.Equal(t, 1, llm.calls)
	assert.Contains(t, llm.messages[0][0].Content, "Who the speaker is:\nTen years in payments.")
	assert.Equal(t, 120, llm.opts[0].MaxTokens)
}

func TestCoachService_Reset(t *testing.T) {
	f := newCoachFixture(t, nil, defaultCoachSettings())
	ctx := context.Background()

	_, err := f.coach.Coach(ctx, "Tell me about a pricing decision")
	require.NoError(t, err)
	f.coach.Reset()

	cue, err := f.coach.Coach(ctx, "What happened next?")
	require.NoError(t, err)
	assert.False(t, cue.FollowUp)
	assert.Equal(t, 1, cue.BeatNum)
	assert.Len(t, f.retrieval.queries, 2)
}
