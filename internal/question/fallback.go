package question

import (
	"math/rand"

	"github.com/inkdrift/inkdrift/internal/types"
)

// curatedPool is the fixed fallback set used when generation fails or a
// candidate is rejected. Entries span the coverage categories so a session
// never ends up without a displayable question.
var curatedPool = []types.QuestionPayload{
	{Text: "What mattered most to you today?", CoverageTag: "values", Kind: types.KindDefault},
	{Text: "What happened today that stands out?", CoverageTag: "event", Kind: types.KindDefault},
	{Text: "How are you feeling right now?", CoverageTag: "emotion", Kind: types.KindDefault},
	{Text: "What is one small thing you could do tomorrow?", CoverageTag: "action", Kind: types.KindDefault},
	{Text: "What are you grateful for today?", CoverageTag: "gratitude", Kind: types.KindDefault},
	{Text: "Who did you connect with today?", CoverageTag: "relationships", Kind: types.KindDefault},
	{Text: "How did your body feel today?", CoverageTag: "health", Kind: types.KindDefault},
	{Text: "What gave you energy at work today?", CoverageTag: "work", Kind: types.KindDefault},
	{Text: "What would you like to let go of?", CoverageTag: "emotion", Kind: types.KindNewTopic},
	{Text: "What surprised you this week?", CoverageTag: "event", Kind: types.KindNewTopic},
}

// FallbackPicker selects curated questions with an injected randomness
// source so selection is reproducible in tests.
type FallbackPicker struct {
	pool []types.QuestionPayload
	rng  *rand.Rand
}

// NewFallbackPicker returns a picker over the curated pool. A nil rng
// falls back to an unseeded source.
func NewFallbackPicker(rng *rand.Rand) *FallbackPicker {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &FallbackPicker{pool: curatedPool, rng: rng}
}

// Pick returns a uniformly random curated question whose text does not
// contain any avoid-topic substring. If filtering would empty the pool the
// full unfiltered pool is used instead: a question must always be produced,
// the session is never blocked on safety filtering.
func (p *FallbackPicker) Pick(avoidTopics []string) types.QuestionPayload {
	eligible := make([]types.QuestionPayload, 0, len(p.pool))
	for _, q := range p.pool {
		if !touchesAvoidTopic(q.Text, avoidTopics) {
			eligible = append(eligible, q)
		}
	}
	if len(eligible) == 0 {
		eligible = p.pool
	}
	return eligible[p.rng.Intn(len(eligible))]
}
