package config

import (
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"candle_feed/internal/models"
)

type snapshot struct {
	mode        string
	notifyDebug bool
	symbols     []string
}

// Toggles — значения, которые можно менять без рестарта (правкой файла
// или env). Читаются на каждой точке принятия решения.
type Toggles struct {
	v   *viper.Viper
	log *zap.Logger

	mu   sync.RWMutex
	snap snapshot
	subs []func(symbols []string)
	once sync.Once
}

func NewToggles(cfg *Config, log *zap.Logger) (*Toggles, error) {
	v := viper.New()
	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("feature_toggle.notify_debug", cfg.FeatureToggle.NotifyDebug)
	v.SetDefault("symbols", cfg.Symbols)
	bindEnv(v, log, "mode", "MODE")
	bindEnv(v, log, "feature_toggle.notify_debug", "NOTIFY_DEBUG")

	if cfg.Path != "" {
		v.SetConfigFile(cfg.Path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	t := &Toggles{v: v, log: log.Named("toggles")}
	t.snap = t.read()
	return t, nil
}

func (t *Toggles) Mode() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap.mode
}

func (t *Toggles) NotifyDebug() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap.notifyDebug
}

// Symbols — символы из файла (fallback для источника конфигурации).
func (t *Toggles) Symbols() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.snap.symbols)
}

// OnSymbolsChanged подписывает колбэк на изменение списка символов в файле.
// Слежение за файлом стартует при первой подписке.
func (t *Toggles) OnSymbolsChanged(fn func(symbols []string)) {
	t.mu.Lock()
	t.subs = append(t.subs, fn)
	t.mu.Unlock()

	if t.v.ConfigFileUsed() == "" {
		return
	}
	t.once.Do(func() {
		t.v.OnConfigChange(t.reload)
		t.v.WatchConfig()
	})
}

func (t *Toggles) reload(e fsnotify.Event) {
	next := t.read()

	t.mu.Lock()
	prev := t.snap
	t.snap = next
	subs := slices.Clone(t.subs)
	t.mu.Unlock()

	t.log.Info("config file changed",
		zap.String("file", e.Name),
		zap.String("mode", next.mode),
		zap.Bool("notifyDebug", next.notifyDebug),
	)
	if next.mode != prev.mode {
		t.log.Warn("mode change is applied on restart only", zap.String("mode", next.mode))
	}

	if slices.Equal(prev.symbols, next.symbols) {
		return
	}
	for _, fn := range subs {
		fn(slices.Clone(next.symbols))
	}
}

// read вызывается только из конструктора и из колбэка viper,
// поэтому с перечитыванием файла не гоняется.
func (t *Toggles) read() snapshot {
	return snapshot{
		mode:        t.v.GetString("mode"),
		notifyDebug: t.v.GetBool("feature_toggle.notify_debug"),
		symbols:     models.NormalizeSymbols(t.v.GetStringSlice("symbols")),
	}
}

func bindEnv(v *viper.Viper, log *zap.Logger, key, env string) {
	if err := v.BindEnv(key, env); err != nil {
		log.Warn("could not bind env", zap.String("key", key), zap.Error(err))
	}
}
