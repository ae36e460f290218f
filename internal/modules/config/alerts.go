package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"rsi_bot/internal/helper"
	"rsi_bot/pkg/logger"

	"gopkg.in/yaml.v2"
)

// AlertMessages - токены стратегии, которые релей ждёт в теле вебхука.
type AlertMessages struct {
	Entry string `yaml:"entry"`
	Exit  string `yaml:"exit"`
}

// Alerts - ключ: символ в нижнем регистре.
type Alerts map[string]AlertMessages

func (a Alerts) For(symbol string) (AlertMessages, bool) {
	m, ok := a[helper.NormSymbol(symbol)]
	return m, ok
}

// LoadAlerts читает файл вида
//
//	btcusdt:
//	  entry: "ENTER-LONG_..."
//	  exit: "EXIT-LONG_..."
func LoadAlerts(path string) (Alerts, error) {
	out := Alerts{}
	if path == "" {
		return out, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("[BOOT] alerts file %s not found", path)
			return out, nil
		}
		return nil, fmt.Errorf("open alerts file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	raw := map[string]AlertMessages{}
	if err := yaml.NewDecoder(file).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode alerts file: %w", err)
	}
	for sym, m := range raw {
		out[helper.NormSymbol(sym)] = m
	}
	return out, nil
}

func NewAlerts(cfg *Config) (Alerts, error) {
	return LoadAlerts(cfg.AlertsFile)
}
