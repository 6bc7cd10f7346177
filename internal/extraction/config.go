package extraction

import (
	"fmt"

	"github.com/labextract-server/internal/domain"
	"github.com/labextract-server/pkg/vocabulary"
)

// Env is the read-only state every strategy shares.
type Env struct {
	Config domain.ExtractionConfig
	Vocab  *vocabulary.Vocabulary
	Names  *NameFilter
}

// NewEnv bundles a completed configuration with its vocabulary.
func NewEnv(cfg domain.ExtractionConfig, vocab *vocabulary.Vocabulary) *Env {
	return &Env{Config: cfg, Vocab: vocab, Names: NewNameFilter(cfg)}
}

// confidence returns the configured confidence of strategy s shifted by delta.
func (e *Env) confidence(s domain.Strategy, delta float64) float64 {
	return clampConfidence(e.Config.StrategyConfidence[string(s)] + delta)
}

// withDefaults fills unset fields of cfg from domain.DefaultExtractionConfig. Zero means
// "use the default" for every numeric knob; strategy confidences are merged key by key.
func withDefaults(cfg domain.ExtractionConfig) domain.ExtractionConfig {
	def := domain.DefaultExtractionConfig()

	merged := def.StrategyConfidence
	for k, v := range cfg.StrategyConfidence {
		merged[k] = v
	}
	cfg.StrategyConfidence = merged

	floatDefault(&cfg.MinConfidence, def.MinConfidence)
	floatDefault(&cfg.ValueEpsilon, def.ValueEpsilon)
	floatDefault(&cfg.UnknownConfidence, def.UnknownConfidence)
	floatDefault(&cfg.CorroborationBonus, def.CorroborationBonus)
	floatDefault(&cfg.ImplausibleValuePenalty, def.ImplausibleValuePenalty)
	floatDefault(&cfg.MaxPlausibleValue, def.MaxPlausibleValue)
	floatDefault(&cfg.MinLetterRatio, def.MinLetterRatio)

	intDefault(&cfg.StrongThreshold, def.StrongThreshold)
	intDefault(&cfg.WeakThreshold, def.WeakThreshold)
	intDefault(&cfg.HintBonus, def.HintBonus)
	intDefault(&cfg.MaxNameLength, def.MaxNameLength)
	intDefault(&cfg.MaxBacktrackWords, def.MaxBacktrackWords)
	intDefault(&cfg.GenotypeWindow, def.GenotypeWindow)
	intDefault(&cfg.ContextLines, def.ContextLines)
	intDefault(&cfg.ContainmentMinLength, def.ContainmentMinLength)

	if cfg.NameBlacklist == nil {
		cfg.NameBlacklist = def.NameBlacklist
	}
	if cfg.NameStopwords == nil {
		cfg.NameStopwords = def.NameStopwords
	}
	return cfg
}

func floatDefault(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}

func intDefault(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

// validateConfig rejects settings the pipeline cannot work with.
func validateConfig(cfg domain.ExtractionConfig) error {
	if cfg.MinConfidence < 0 || cfg.MinConfidence > 100 {
		return domain.NewValidationError("min_confidence", "must be between 0 and 100", cfg.MinConfidence)
	}
	if cfg.ValueEpsilon < 0 {
		return domain.NewValidationError("value_epsilon", "must not be negative", cfg.ValueEpsilon)
	}
	if cfg.WeakThreshold > cfg.StrongThreshold {
		return domain.NewValidationError("weak_threshold",
			fmt.Sprintf("must not exceed strong_threshold (%d)", cfg.StrongThreshold), cfg.WeakThreshold)
	}
	if cfg.MinLetterRatio < 0 || cfg.MinLetterRatio > 1 {
		return domain.NewValidationError("min_letter_ratio", "must be between 0 and 1", cfg.MinLetterRatio)
	}
	for k, v := range cfg.StrategyConfidence {
		if v < 0 || v > 100 {
			return domain.NewValidationError("strategy_confidence."+k, "must be between 0 and 100", v)
		}
	}
	return nil
}
