package models

import (
	"errors"
	"fmt"
)

// ErrValidation - кривой ввод от контрольного API, состояние не трогаем.
var ErrValidation = errors.New("validation failed")

// RsiConfig - пороги осциллятора, глобальные или на символ.
type RsiConfig struct {
	Period int     `json:"period" mapstructure:"period"`
	Entry  float64 `json:"entry" mapstructure:"entry"`
	Exit   float64 `json:"exit" mapstructure:"exit"`
}

func (c RsiConfig) Validate() error {
	if c.Period < 1 {
		return fmt.Errorf("%w: period must be a positive integer", ErrValidation)
	}
	if c.Entry < 0 || c.Entry > 100 {
		return fmt.Errorf("%w: entry must be between 0 and 100", ErrValidation)
	}
	if c.Exit < 0 || c.Exit > 100 {
		return fmt.Errorf("%w: exit must be between 0 and 100", ErrValidation)
	}
	return nil
}

// RsiConfigPatch - частичное обновление, nil = не трогать.
type RsiConfigPatch struct {
	Period *int     `json:"period"`
	Entry  *float64 `json:"entry"`
	Exit   *float64 `json:"exit"`
}

func (p RsiConfigPatch) Validate() error {
	if p.Entry != nil && (*p.Entry < 0 || *p.Entry > 100) {
		return fmt.Errorf("%w: entry value must be a number between 0 and 100", ErrValidation)
	}
	if p.Exit != nil && (*p.Exit < 0 || *p.Exit > 100) {
		return fmt.Errorf("%w: exit value must be a number between 0 and 100", ErrValidation)
	}
	if p.Period != nil && *p.Period < 1 {
		return fmt.Errorf("%w: period must be a positive number", ErrValidation)
	}
	return nil
}

func (p RsiConfigPatch) IsEmpty() bool {
	return p.Period == nil && p.Entry == nil && p.Exit == nil
}

// Apply возвращает копию base с применённым патчем; base не меняется.
func (p RsiConfigPatch) Apply(base RsiConfig) RsiConfig {
	out := base
	if p.Period != nil {
		out.Period = *p.Period
	}
	if p.Entry != nil {
		out.Entry = *p.Entry
	}
	if p.Exit != nil {
		out.Exit = *p.Exit
	}
	return out
}
