package ai

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appcfg "github.com/studyaid/core/internal/config"
	pkgredis "github.com/studyaid/core/internal/pkg/redis"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeCompleter struct {
	mu    sync.Mutex
	reply string
	err   error
	calls []CompletionRequest
}

func (f *fakeCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if _, ok := ctx.Deadline(); !ok {
		return "", errors.New("completion called without deadline")
	}
	return f.reply, f.err
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testAIConfig() appcfg.AIConfig {
	ttl := 3600
	return appcfg.AIConfig{
		Provider:        appcfg.ProviderGroq,
		APIKey:          "test-key",
		Model:           "deepseek-r1-distill-llama-70b",
		TimeoutSeconds:  5,
		CacheTTLSeconds: &ttl,
	}
}

func newTestCache(t *testing.T) (*pkgredis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := pkgredis.Connect("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestServiceEmptyMaterialSkipsModel(t *testing.T) {
	fake := &fakeCompleter{reply: `{"flashcards": [{"question": "q", "answer": "a"}]}`}
	svc := NewService(fake, nil, testAIConfig(), nil)
	ctx := context.Background()

	blurt, err := svc.Blurt(ctx, "   ", "anything")
	require.NoError(t, err)
	assert.Equal(t, emptyBlurt(), blurt)
	assert.Equal(t, []string{"No study material provided."}, blurt.ReviseAgain)

	cards, err := svc.Flashcards(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []Flashcard{}, cards.Flashcards)

	doc, err := svc.Mnemonics(ctx, "\n\t", "Title")
	require.NoError(t, err)
	assert.Equal(t, []MnemonicSection{}, doc.Sections)

	assert.Zero(t, fake.callCount())
}

func TestServiceEmptyMaterialWithoutProvider(t *testing.T) {
	svc := NewService(nil, nil, testAIConfig(), nil)

	blurt, err := svc.Blurt(context.Background(), "", "answer")
	require.NoError(t, err)
	assert.Equal(t, "0%", blurt.Accuracy)
}

func TestServiceProviderNotConfigured(t *testing.T) {
	svc := NewService(nil, nil, testAIConfig(), nil)
	ctx := context.Background()

	_, err := svc.Blurt(ctx, "material", "answer")
	assert.ErrorIs(t, err, ErrProviderNotConfigured)
	_, err = svc.Flashcards(ctx, "material")
	assert.ErrorIs(t, err, ErrProviderNotConfigured)
	_, err = svc.Mnemonics(ctx, "material", "title")
	assert.ErrorIs(t, err, ErrProviderNotConfigured)
}

func TestServiceBlurtSendsPromptAndSettings(t *testing.T) {
	fake := &fakeCompleter{reply: "```json\n{\"accuracy\": \"60%\", \"correct_words\": [\"osmosis\"], \"wrong_words\": [], \"missed_points\": [\"diffusion\"], \"revise_again\": []}\n```"}
	svc := NewService(fake, nil, testAIConfig(), nil)

	got, err := svc.Blurt(context.Background(), "Osmosis and diffusion", "osmosis")
	require.NoError(t, err)
	assert.Equal(t, "60%", got.Accuracy)
	assert.Equal(t, []string{"osmosis"}, got.CorrectWords)
	assert.Equal(t, []string{"diffusion"}, got.MissedPoints)

	require.Equal(t, 1, fake.callCount())
	req := fake.calls[0]
	assert.Equal(t, jsonOnlySystemPrompt, req.SystemPrompt)
	assert.Contains(t, req.Prompt, "Study Material: Osmosis and diffusion")
	assert.Contains(t, req.Prompt, "User Answer: osmosis")
	assert.Contains(t, req.Prompt, `"accuracy": "85%"`)
	assert.Equal(t, 0.2, req.Temperature)
	assert.Equal(t, 512, req.MaxTokens)
}

func TestServiceModelSettingsPerGenerator(t *testing.T) {
	fake := &fakeCompleter{reply: `{"flashcards": [], "sections": []}`}
	svc := NewService(fake, nil, testAIConfig(), nil)
	ctx := context.Background()

	_, err := svc.Flashcards(ctx, "Mitosis")
	require.NoError(t, err)
	_, err = svc.Mnemonics(ctx, "Mitosis", "Cell division")
	require.NoError(t, err)

	require.Equal(t, 2, fake.callCount())
	assert.Equal(t, 0.5, fake.calls[0].Temperature)
	assert.Equal(t, 1024, fake.calls[0].MaxTokens)
	assert.Contains(t, fake.calls[0].Prompt, "for this material: Mitosis")
	assert.Equal(t, 0.3, fake.calls[1].Temperature)
	assert.Equal(t, 1200, fake.calls[1].MaxTokens)
	assert.Contains(t, fake.calls[1].Prompt, "Title: Cell division")
}

func TestServiceProviderErrorFallsBack(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	fake := &fakeCompleter{err: errors.New("upstream 502")}
	svc := NewService(fake, nil, testAIConfig(), zap.New(core))
	ctx := context.Background()

	blurt, err := svc.Blurt(ctx, "material", "answer")
	require.NoError(t, err)
	assert.Equal(t, "0%", blurt.Accuracy)
	require.Len(t, blurt.ReviseAgain, 1)
	assert.True(t, strings.HasPrefix(blurt.ReviseAgain[0], "Parsing error: upstream 502"))

	cards, err := svc.Flashcards(ctx, "material")
	require.NoError(t, err)
	assert.Equal(t, []Flashcard{}, cards.Flashcards)

	doc, err := svc.Mnemonics(ctx, "material", "Physics")
	require.NoError(t, err)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "Physics", doc.Sections[0].Heading)
	assert.Contains(t, doc.Sections[0].Points[0].Chunks[0].Text, "Error: upstream 502")

	assert.Equal(t, 3, logs.FilterMessage("AI completion failed").Len())
}

func TestServiceCachesRecoveredResults(t *testing.T) {
	cache, mr := newTestCache(t)
	fake := &fakeCompleter{reply: `{"flashcards": [{"question": "Q", "answer": "A"}]}`}
	svc := NewService(fake, cache, testAIConfig(), nil)
	ctx := context.Background()

	first, err := svc.Flashcards(ctx, "Newton's laws")
	require.NoError(t, err)
	second, err := svc.Flashcards(ctx, "Newton's laws")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, fake.callCount())

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "studyaid:ai:flashcards:"))
	assert.Equal(t, time.Hour, mr.TTL(keys[0]))

	_, err = svc.Flashcards(ctx, "Kepler's laws")
	require.NoError(t, err)
	assert.Equal(t, 2, fake.callCount())
}

func TestServiceDoesNotCacheFallbacks(t *testing.T) {
	cache, mr := newTestCache(t)
	fake := &fakeCompleter{reply: "not json at all"}
	svc := NewService(fake, cache, testAIConfig(), nil)
	ctx := context.Background()

	_, err := svc.Blurt(ctx, "material", "answer")
	require.NoError(t, err)
	_, err = svc.Blurt(ctx, "material", "answer")
	require.NoError(t, err)

	assert.Equal(t, 2, fake.callCount())
	assert.Empty(t, mr.Keys())
}

func TestServiceCacheDisabledByZeroTTL(t *testing.T) {
	cache, mr := newTestCache(t)
	cfg := testAIConfig()
	zero := 0
	cfg.CacheTTLSeconds = &zero
	fake := &fakeCompleter{reply: `{"flashcards": []}`}
	svc := NewService(fake, cache, cfg, nil)

	_, err := svc.Flashcards(context.Background(), "material")
	require.NoError(t, err)
	_, err = svc.Flashcards(context.Background(), "material")
	require.NoError(t, err)

	assert.Equal(t, 2, fake.callCount())
	assert.Empty(t, mr.Keys())
}

func TestCacheKeyDependsOnInputs(t *testing.T) {
	svc := NewService(nil, nil, testAIConfig(), nil)

	a := svc.cacheKey(kindBlurt, jsonOnlySystemPrompt, "one")
	b := svc.cacheKey(kindBlurt, jsonOnlySystemPrompt, "two")
	c := svc.cacheKey(kindFlashcards, jsonOnlySystemPrompt, "one")
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, svc.cacheKey(kindBlurt, jsonOnlySystemPrompt, "one"))
}
