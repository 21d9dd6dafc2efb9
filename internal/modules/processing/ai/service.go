package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	appcfg "github.com/studyaid/core/internal/config"
	pkgredis "github.com/studyaid/core/internal/pkg/redis"
	"go.uber.org/zap"
)

const (
	DefaultMnemonicsTitle = "Study Material"

	cacheKeyPrefix = "studyaid:ai:"
	defaultTimeout = 60 * time.Second
)

const (
	kindBlurt      = "blurt"
	kindFlashcards = "flashcards"
	kindMnemonics  = "mnemonics"
)

type modelSettings struct {
	temperature float64
	maxTokens   int
}

var (
	blurtSettings      = modelSettings{temperature: 0.2, maxTokens: 512}
	flashcardsSettings = modelSettings{temperature: 0.5, maxTokens: 1024}
	mnemonicsSettings  = modelSettings{temperature: 0.3, maxTokens: 1200}
)

// Service runs the study generators against the configured model.
type Service struct {
	completer Completer
	recoverer Recoverer
	cache     *pkgredis.Client
	cacheTTL  time.Duration
	model     string
	timeout   time.Duration
	logger    *zap.Logger
}

// NewService wires a Service. completer may be nil when no provider is
// configured; cache may be nil to disable result caching.
func NewService(completer Completer, cache *pkgredis.Client, cfg appcfg.AIConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{
		completer: completer,
		recoverer: Recoverer{RepairJSON: cfg.RepairJSON},
		cache:     cache,
		cacheTTL:  cfg.CacheTTL(),
		model:     cfg.Model,
		timeout:   timeout,
		logger:    logger,
	}
}

// Blurt grades answer against material.
func (s *Service) Blurt(ctx context.Context, material, answer string) (BlurtResult, error) {
	if isBlank(material) {
		return emptyBlurt(), nil
	}
	system, prompt := buildBlurtPrompt(material, answer)
	return generate(ctx, s, kindBlurt, blurtSettings, system, prompt,
		s.recoverer.Blurt,
		func(err error) BlurtResult { return blurtFallback(err, "") },
	)
}

// Flashcards builds question/answer pairs from material.
func (s *Service) Flashcards(ctx context.Context, material string) (FlashcardSet, error) {
	if isBlank(material) {
		return flashcardsFallback(), nil
	}
	system, prompt := buildFlashcardsPrompt(material)
	return generate(ctx, s, kindFlashcards, flashcardsSettings, system, prompt,
		s.recoverer.Flashcards,
		func(error) FlashcardSet { return flashcardsFallback() },
	)
}

// Mnemonics restructures material into sections of chunked points.
func (s *Service) Mnemonics(ctx context.Context, material, title string) (MnemonicDocument, error) {
	if isBlank(material) {
		return emptyMnemonics(), nil
	}
	system, prompt := buildMnemonicsPrompt(title, material)
	return generate(ctx, s, kindMnemonics, mnemonicsSettings, system, prompt,
		func(raw string) (MnemonicDocument, bool) { return s.recoverer.Mnemonics(raw, title, material) },
		func(err error) MnemonicDocument { return mnemonicsFallback(title, material, err) },
	)
}

// generate runs one completion. Provider failures are folded into the
// fallback value; only a missing provider is returned as an error.
func generate[T any](
	ctx context.Context,
	s *Service,
	kind string,
	settings modelSettings,
	system, prompt string,
	recoverFn func(raw string) (T, bool),
	fallbackFn func(err error) T,
) (T, error) {
	if s.completer == nil {
		var zero T
		return zero, ErrProviderNotConfigured
	}

	key := s.cacheKey(kind, system, prompt)
	var cached T
	if s.cacheLoad(ctx, key, &cached) {
		return cached, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	raw, err := s.completer.Complete(callCtx, CompletionRequest{
		SystemPrompt: system,
		Prompt:       prompt,
		Temperature:  settings.temperature,
		MaxTokens:    settings.maxTokens,
	})
	if err != nil {
		s.logger.Warn("AI completion failed",
			zap.String("kind", kind),
			zap.Duration("latency", time.Since(started)),
			zap.Error(err),
		)
		return fallbackFn(err), nil
	}

	result, ok := recoverFn(raw)
	if !ok {
		s.logger.Warn("AI reply could not be parsed, using fallback",
			zap.String("kind", kind),
			zap.Int("raw_len", len(raw)),
		)
		return result, nil
	}

	s.logger.Debug("AI completion",
		zap.String("kind", kind),
		zap.Duration("latency", time.Since(started)),
	)
	s.cacheStore(ctx, key, result)
	return result, nil
}

func (s *Service) cacheKey(kind, system, prompt string) string {
	h := sha256.New()
	for _, part := range []string{kind, s.model, system, prompt} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return cacheKeyPrefix + kind + ":" + hex.EncodeToString(h.Sum(nil))
}

func (s *Service) cacheEnabled() bool { return s.cache != nil && s.cacheTTL > 0 }

func (s *Service) cacheLoad(ctx context.Context, key string, out interface{}) bool {
	if !s.cacheEnabled() {
		return false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("AI cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.logger.Warn("AI cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Service) cacheStore(ctx context.Context, key string, value interface{}) {
	if !s.cacheEnabled() {
		return
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, encoded, s.cacheTTL); err != nil {
		s.logger.Warn("AI cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }
