package exams

import (
	"fmt"
	"strings"
)

// Theme is the display theme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// ParseTheme accepts light, dark or system in any case.
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return t, nil
	}
	return "", fmt.Errorf("unknown theme %q (want light, dark or system)", s)
}

// Settings stores user preferences next to the exam collection.
type Settings struct {
	kv     KVStore
	logger Logger
}

func NewSettings(kv KVStore, logger Logger) *Settings {
	return &Settings{kv: kv, logger: logger}
}

// Theme returns the stored theme. An absent or unrecognized value means
// "follow the system preference".
func (s *Settings) Theme() (Theme, error) {
	data, ok, err := s.kv.Get(ThemeKey)
	if err != nil {
		return "", fmt.Errorf("reading theme: %w", err)
	}
	if !ok {
		return ThemeSystem, nil
	}
	switch t := Theme(data); t {
	case ThemeLight, ThemeDark:
		return t, nil
	}
	s.logger.Warn("ignoring unknown stored theme", "value", string(data))
	return ThemeSystem, nil
}

// SetTheme stores light or dark; system removes the stored preference.
func (s *Settings) SetTheme(t Theme) error {
	switch t {
	case ThemeLight, ThemeDark:
		if err := s.kv.Set(ThemeKey, []byte(t)); err != nil {
			return fmt.Errorf("saving theme: %w", err)
		}
	case ThemeSystem:
		if err := s.kv.Delete(ThemeKey); err != nil {
			return fmt.Errorf("clearing theme: %w", err)
		}
	default:
		return fmt.Errorf("unknown theme %q", t)
	}
	s.logger.Debug("theme set", "theme", string(t))
	return nil
}
