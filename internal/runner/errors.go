package runner

import "github.com/pkg/errors"

var (
	ErrConflict = errors.New("symbol already registered")
	ErrNotFound = errors.New("symbol not found")
	// ErrSeeding - не смогли прогреть индикатор, монитор не регистрируется
	ErrSeeding = errors.New("seeding failed")
)
