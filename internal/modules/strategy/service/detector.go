package service

import "rsi_bot/internal/models"

// Reading - значение осциллятора, Valid=false пока истории не хватает.
type Reading struct {
	Value float64
	Valid bool
}

func ValueOf(v float64, ok bool) Reading {
	return Reading{Value: v, Valid: ok}
}

// Evaluate сравнивает два соседних значения с порогами.
// ENTER проверяется первым; EXIT смотрит на позицию уже после ENTER.
// Одновременно оба не срабатывают: для этого нужно exit <= prev <= entry < curr < exit.
func Evaluate(prev, curr Reading, th models.RsiConfig, inLong bool) models.Crossing {
	if !prev.Valid || !curr.Valid {
		return models.CrossNone
	}

	res := models.CrossNone
	pos := inLong

	if !pos && prev.Value <= th.Entry && curr.Value > th.Entry {
		res = models.CrossEnter
		pos = true
	}

	if pos && prev.Value >= th.Exit && curr.Value < th.Exit {
		if res == models.CrossEnter {
			// недостижимо при любых порогах, но позицию не дёргаем дважды
			return res
		}
		res = models.CrossExit
	}

	return res
}
