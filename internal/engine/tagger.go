package engine

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/leapstack-labs/xmirlint/pkg/core"
	"github.com/leapstack-labs/xmirlint/pkg/postag"
)

// Tagger kinds.
const (
	TaggerLexicon = "lexicon"
	TaggerHTTP    = "http"
)

// TaggerConfig selects and configures the part-of-speech tagger.
type TaggerConfig struct {
	// Kind is "lexicon" (default) or "http"
	Kind string
	// URL of the tagging service, required for "http"
	URL string
	// Timeout per tagging request; zero uses postag.DefaultHTTPTimeout
	Timeout time.Duration
	// Lexicon is a YAML lexicon replacing the embedded one (optional)
	Lexicon string
}

// NewTagger creates the configured tagger, wrapped in a cache.
// Invalid settings are configuration errors.
func NewTagger(cfg TaggerConfig, logger *slog.Logger) (postag.Tagger, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	switch cfg.Kind {
	case "", TaggerLexicon:
		lex := postag.DefaultLexicon()
		if cfg.Lexicon != "" {
			data, err := os.ReadFile(cfg.Lexicon)
			if err != nil {
				return nil, fmt.Errorf("%w: tagger lexicon: %w", core.ErrConfiguration, err)
			}
			if lex, err = postag.ParseLexicon(data); err != nil {
				return nil, fmt.Errorf("%w: tagger lexicon %s: %w", core.ErrConfiguration, cfg.Lexicon, err)
			}
		}
		logger.Debug("using lexicon tagger", slog.Int("verbs", len(lex.Verbs)))
		return postag.NewCached(postag.NewLexiconTagger(lex)), nil

	case TaggerHTTP:
		if cfg.URL == "" {
			return nil, fmt.Errorf("%w: tagger.url is required for the http tagger", core.ErrConfiguration)
		}
		opts := []postag.HTTPOption{postag.WithLogger(logger)}
		if cfg.Timeout > 0 {
			opts = append(opts, postag.WithTimeout(cfg.Timeout))
		}
		logger.Debug("using http tagger", slog.String("url", cfg.URL))
		return postag.NewCached(postag.NewHTTPTagger(cfg.URL, opts...)), nil

	default:
		return nil, fmt.Errorf("%w: unknown tagger kind %q (want %s or %s)",
			core.ErrConfiguration, cfg.Kind, TaggerLexicon, TaggerHTTP)
	}
}
