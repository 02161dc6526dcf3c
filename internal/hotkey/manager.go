package hotkey

import (
	"sync"

	"github.com/berrythewa/clipdeck/pkg/utils"
)

// SettingKey is the persistent-store key holding the active binding.
const SettingKey = "hotkey"

// Registrar binds a combination with the OS. Register returns an unregister
// function on success; registration fails when another process already owns
// the combination.
type Registrar interface {
	Register(binding string, onPress func()) (func(), error)
}

// Settings is the slice of the persistent store the manager uses.
type Settings interface {
	GetSetting(key, fallback string) (string, error)
	SetSetting(key, value string) error
}

// ManagerConfig holds configuration for Manager construction.
type ManagerConfig struct {
	Registrar Registrar
	Settings  Settings
	Default   string
	Fallbacks []string
	OnPress   func()
	Logger    *utils.Logger
}

// Manager registers the persisted global hotkey, walking an ordered fallback
// chain when the primary combination cannot be bound. Total failure disables
// the feature for the session; it never aborts startup.
type Manager struct {
	registrar Registrar
	settings  Settings
	def       string
	fallbacks []string
	onPress   func()
	logger    *utils.Logger

	mu         sync.Mutex
	active     string
	unregister func()
}

// NewManager builds a manager.
func NewManager(cfg ManagerConfig) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = utils.NewLogger(utils.LoggerOptions{Level: "error"})
	}
	return &Manager{
		registrar: cfg.Registrar,
		settings:  cfg.Settings,
		def:       cfg.Default,
		fallbacks: cfg.Fallbacks,
		onPress:   cfg.OnPress,
		logger:    logger,
	}
}

// Start attempts to bind the persisted combination, then each fallback in
// order, persisting whichever one sticks.
func (m *Manager) Start() {
	stored := m.def
	if m.settings != nil {
		if v, err := m.settings.GetSetting(SettingKey, m.def); err == nil {
			stored = v
		}
	}

	candidates := append([]string{stored}, m.fallbacks...)
	for _, binding := range candidates {
		unregister, err := m.registrar.Register(binding, m.onPress)
		if err != nil {
			m.logger.Warn("Hotkey registration failed, trying fallback",
				"binding", binding, "error", err)
			continue
		}

		m.mu.Lock()
		m.active = binding
		m.unregister = unregister
		m.mu.Unlock()

		if binding != stored {
			m.persist(binding)
		}
		m.logger.Info("Global hotkey registered", "binding", binding)
		return
	}

	m.logger.Warn("No hotkey combination could be registered, feature disabled for this session")
}

// SetBinding rebinds to a user-chosen combination. On failure the previous
// registration and the stored value are left untouched and false is
// returned; this is the one failure surfaced to the user.
func (m *Manager) SetBinding(binding string) bool {
	if _, err := ParseBinding(binding); err != nil {
		m.logger.Warn("Rejecting invalid hotkey binding", "binding", binding, "error", err)
		return false
	}
	if binding == m.Active() {
		return true
	}

	unregisterNew, err := m.registrar.Register(binding, m.onPress)
	if err != nil {
		m.logger.Warn("Failed to register requested hotkey", "binding", binding, "error", err)
		return false
	}

	m.mu.Lock()
	if m.unregister != nil {
		m.unregister()
	}
	m.active = binding
	m.unregister = unregisterNew
	m.mu.Unlock()

	m.persist(binding)
	return true
}

func (m *Manager) persist(binding string) {
	if m.settings == nil {
		return
	}
	if err := m.settings.SetSetting(SettingKey, binding); err != nil {
		m.logger.Error("Failed to persist hotkey binding", "error", err)
	}
}

// Active returns the currently bound combination, or "" when disabled.
func (m *Manager) Active() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Enabled reports whether any combination is bound.
func (m *Manager) Enabled() bool {
	return m.Active() != ""
}

// Stop releases the OS-level binding.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unregister != nil {
		m.unregister()
		m.unregister = nil
		m.active = ""
	}
}
