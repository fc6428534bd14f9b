// Package theme tracks the light/dark display preference.
//
// The preference is a process-wide value. It starts from the persisted choice,
// or from the system dark-mode setting when nothing was persisted, and follows
// later system changes until the user toggles it explicitly.
package theme

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/denysvitali/share-viewer/pkg/metrics"
)

// Theme is a display preference.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Parse converts a stored value into a Theme.
func Parse(s string) (Theme, error) {
	switch Theme(s) {
	case Light, Dark:
		return Theme(s), nil
	default:
		return "", fmt.Errorf("unknown theme %q", s)
	}
}

// FromDark maps a dark-mode flag to a Theme.
func FromDark(dark bool) Theme {
	if dark {
		return Dark
	}
	return Light
}

// Opposite returns the other theme.
func (t Theme) Opposite() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// Icon returns the toggle indicator: a sun while dark is applied, a moon otherwise.
func (t Theme) Icon() string {
	if t == Dark {
		return "fa-sun"
	}
	return "fa-moon"
}

// Store persists the preference. Get reports ok=false when nothing was stored.
type Store interface {
	Get() (t Theme, ok bool, err error)
	Set(t Theme) error
}

// SystemPreference reports the system dark-mode setting.
type SystemPreference interface {
	PrefersDark() bool
}

// SystemPreferenceFunc adapts a function to SystemPreference.
type SystemPreferenceFunc func() bool

// PrefersDark calls f.
func (f SystemPreferenceFunc) PrefersDark() bool {
	return f()
}

// Applier is notified whenever a theme is applied.
type Applier interface {
	ApplyTheme(t Theme)
}

// ApplierFunc adapts a function to Applier.
type ApplierFunc func(Theme)

// ApplyTheme calls f.
func (f ApplierFunc) ApplyTheme(t Theme) {
	f(t)
}

// Controller owns the applied theme.
type Controller struct {
	mu       sync.RWMutex
	store    Store
	system   SystemPreference
	logger   *logrus.Logger
	current  Theme
	appliers []Applier
}

// NewController creates a controller. Initialize must be called before use.
func NewController(store Store, system SystemPreference, logger *logrus.Logger) *Controller {
	if system == nil {
		system = SystemPreferenceFunc(func() bool { return false })
	}
	return &Controller{
		store:   store,
		system:  system,
		logger:  logger,
		current: Light,
	}
}

// OnApply registers an applier. It is not called for the already applied theme.
func (c *Controller) OnApply(a Applier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.appliers = append(c.appliers, a)
}

// Initialize applies the persisted preference, or the system preference when none exists.
func (c *Controller) Initialize() Theme {
	t, ok := c.persisted()
	if !ok {
		t = FromDark(c.system.PrefersDark())
	}
	c.apply(t)
	return t
}

// Toggle flips the applied theme and persists the new value. Concurrent
// toggles are serialized so none is lost.
func (c *Controller) Toggle() Theme {
	c.mu.Lock()
	next := c.current.Opposite()
	c.current = next
	if err := c.store.Set(next); err != nil {
		c.logger.Warnf("Failed to persist theme %q: %v", next, err)
	}
	appliers := append([]Applier(nil), c.appliers...)
	c.mu.Unlock()

	c.notify(next, appliers)
	return next
}

// SystemChanged follows a system dark-mode change unless a preference was persisted.
func (c *Controller) SystemChanged(dark bool) Theme {
	if _, ok := c.persisted(); ok {
		return c.Current()
	}
	t := FromDark(dark)
	c.apply(t)
	return t
}

// Current returns the applied theme.
func (c *Controller) Current() Theme {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Persisted reports whether the user has explicitly chosen a theme.
func (c *Controller) Persisted() bool {
	_, ok := c.persisted()
	return ok
}

func (c *Controller) persisted() (Theme, bool) {
	t, ok, err := c.store.Get()
	if err != nil {
		c.logger.Warnf("Failed to read persisted theme: %v", err)
		return "", false
	}
	return t, ok
}

func (c *Controller) apply(t Theme) {
	c.mu.Lock()
	c.current = t
	appliers := append([]Applier(nil), c.appliers...)
	c.mu.Unlock()

	c.notify(t, appliers)
}

func (c *Controller) notify(t Theme, appliers []Applier) {
	metrics.RecordThemeChange(string(t))
	c.logger.WithField("theme", t).Debug("Theme applied")
	for _, a := range appliers {
		a.ApplyTheme(t)
	}
}

var (
	defaultMu         sync.RWMutex
	defaultController *Controller
)

// SetDefault installs the process-wide controller.
func SetDefault(c *Controller) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultController = c
}

// Default returns the process-wide controller, creating an in-memory one if none was installed.
func Default() *Controller {
	defaultMu.RLock()
	c := defaultController
	defaultMu.RUnlock()
	if c != nil {
		return c
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultController == nil {
		defaultController = NewController(NewMemoryStore(), nil, logrus.StandardLogger())
		defaultController.Initialize()
	}
	return defaultController
}
