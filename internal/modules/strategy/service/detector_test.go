package service

import (
	"testing"

	"rsi_bot/internal/models"
)

var defaultTh = models.RsiConfig{Period: 7, Entry: 65, Exit: 20}

func TestEvaluateEnterFiresOnStrictCrossing(t *testing.T) {
	got := Evaluate(ValueOf(defaultTh.Entry-1, true), ValueOf(defaultTh.Entry+1, true), defaultTh, false)
	if got != models.CrossEnter {
		t.Fatalf("expected ENTER, got %s", got)
	}

	// prev ровно на уровне - тоже пересечение
	if got := Evaluate(ValueOf(65, true), ValueOf(65.01, true), defaultTh, false); got != models.CrossEnter {
		t.Fatalf("expected ENTER from the level, got %s", got)
	}
}

func TestEvaluateEnterNeverFiresWhenInLong(t *testing.T) {
	pairs := [][2]float64{{60, 70}, {0, 100}, {64, 66}, {65, 65.5}}
	for _, p := range pairs {
		got := Evaluate(ValueOf(p[0], true), ValueOf(p[1], true), defaultTh, true)
		if got == models.CrossEnter {
			t.Fatalf("ENTER fired while in long for %v", p)
		}
	}
}

func TestEvaluateNoEnterWhenAlreadyAbove(t *testing.T) {
	if got := Evaluate(ValueOf(70, true), ValueOf(75, true), defaultTh, false); got != models.CrossNone {
		t.Fatalf("expected NONE, got %s", got)
	}
	if got := Evaluate(ValueOf(60, true), ValueOf(65, true), defaultTh, false); got != models.CrossNone {
		t.Fatalf("current equal to entry is not a crossing, got %s", got)
	}
}

func TestEvaluateExit(t *testing.T) {
	if got := Evaluate(ValueOf(25, true), ValueOf(15, true), defaultTh, true); got != models.CrossExit {
		t.Fatalf("expected EXIT, got %s", got)
	}
	if got := Evaluate(ValueOf(25, true), ValueOf(15, true), defaultTh, false); got != models.CrossNone {
		t.Fatalf("EXIT must not fire when flat, got %s", got)
	}
	if got := Evaluate(ValueOf(19, true), ValueOf(10, true), defaultTh, true); got != models.CrossNone {
		t.Fatalf("already below exit is not a crossing, got %s", got)
	}
}

func TestEvaluateUndefinedReadings(t *testing.T) {
	if got := Evaluate(Reading{}, ValueOf(70, true), defaultTh, false); got != models.CrossNone {
		t.Fatalf("expected NONE without previous, got %s", got)
	}
	if got := Evaluate(ValueOf(60, true), Reading{}, defaultTh, false); got != models.CrossNone {
		t.Fatalf("expected NONE without current, got %s", got)
	}
}

func TestEvaluateOverlappingThresholdsYieldSingleEvent(t *testing.T) {
	// entry < exit - конфиг кривой, но событие всё равно одно на сэмпл
	th := models.RsiConfig{Period: 7, Entry: 30, Exit: 70}
	for prev := 0.0; prev <= 100; prev += 2.5 {
		for curr := 0.0; curr <= 100; curr += 2.5 {
			for _, inLong := range []bool{false, true} {
				got := Evaluate(ValueOf(prev, true), ValueOf(curr, true), th, inLong)
				if got == models.CrossEnter && inLong {
					t.Fatalf("ENTER while long: prev=%v curr=%v", prev, curr)
				}
				if got == models.CrossExit && !inLong {
					t.Fatalf("EXIT while flat: prev=%v curr=%v", prev, curr)
				}
			}
		}
	}

	// entry == exit
	same := models.RsiConfig{Period: 7, Entry: 50, Exit: 50}
	if got := Evaluate(ValueOf(50, true), ValueOf(51, true), same, false); got != models.CrossEnter {
		t.Fatalf("expected ENTER, got %s", got)
	}
	if got := Evaluate(ValueOf(50, true), ValueOf(49, true), same, true); got != models.CrossExit {
		t.Fatalf("expected EXIT, got %s", got)
	}
}
