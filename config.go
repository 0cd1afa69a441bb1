package bilingual

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"sync"
)

// MinSeqLen is the smallest SeqLen able to hold an empty source sentence
// ([SOS] and [EOS]).
const MinSeqLen = 2

// Config fixes the languages and output length of an Encoder. The JSON keys
// follow the training configuration the datasets are prepared for.
type Config struct {
	SourceLang string `json:"lang_src"`
	TargetLang string `json:"lang_tgt"`
	SeqLen     int    `json:"seq_len"`
}

// Validate checks that both languages are set and SeqLen can hold the
// reserved tokens.
func (c Config) Validate() error {
	if c.SourceLang == "" || c.TargetLang == "" {
		return fmt.Errorf("%w: source and target languages are required", ErrInvalidConfig)
	}
	if c.SeqLen < MinSeqLen {
		return fmt.Errorf("%w: seq_len %d below minimum %d", ErrInvalidConfig, c.SeqLen, MinSeqLen)
	}
	return nil
}

// LoadConfig reads a JSON config file and validates it. Unknown keys are
// ignored so the same file can carry model and training settings.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("bilingual: read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("bilingual: parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

const envWorkers = "BILINGUAL_WORKERS"

var workersFlag struct {
	once sync.Once
	n    int
}

// defaultWorkers reads BILINGUAL_WORKERS once, falling back to GOMAXPROCS.
func defaultWorkers() int {
	workersFlag.once.Do(func() {
		workersFlag.n = runtime.GOMAXPROCS(0)
		if v := os.Getenv(envWorkers); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				workersFlag.n = n
			}
		}
		if workersFlag.n < 1 {
			workersFlag.n = 1
		}
	})
	return workersFlag.n
}
