package service

// RSI - Wilder RSI, обновляется инкрементально за O(1) на свечу.
// Первое значение появляется, когда накоплено period изменений цены
// (period+1 закрытий): средние gain/loss засеваются SMA, дальше
// сглаживание avg = (avg*(period-1) + x) / period.
type RSI struct {
	period int

	count   int // сколько цен увидели
	prev    float64
	avgGain float64
	avgLoss float64

	value float64
	ready bool
}

func NewRSI(period int) *RSI {
	if period < 1 {
		period = 1
	}
	return &RSI{period: period}
}

func (r *RSI) Period() int { return r.period }

// Reset сбрасывает аккумулятор, период не меняется.
func (r *RSI) Reset() {
	*r = RSI{period: r.period}
}

// Seed сбрасывает состояние и прогоняет исторические закрытия по порядку.
// Возвращает все посчитанные значения (нужны два последних для детектора).
func (r *RSI) Seed(closes []float64) []float64 {
	r.Reset()
	out := make([]float64, 0, len(closes))
	for _, c := range closes {
		if v, ok := r.Next(c); ok {
			out = append(out, v)
		}
	}
	return out
}

// Next добавляет цену и отдаёт новое значение; ok=false пока истории мало.
func (r *RSI) Next(price float64) (float64, bool) {
	r.count++
	if r.count == 1 {
		r.prev = price
		return 0, false
	}

	change := price - r.prev
	r.prev = price

	gain, loss := 0.0, 0.0
	if change > 0 {
		gain = change
	} else {
		loss = -change
	}

	p := float64(r.period)
	switch {
	case r.count <= r.period:
		// набираем сумму под SMA
		r.avgGain += gain
		r.avgLoss += loss
		return 0, false
	case r.count == r.period+1:
		r.avgGain = (r.avgGain + gain) / p
		r.avgLoss = (r.avgLoss + loss) / p
	default:
		r.avgGain = (r.avgGain*(p-1) + gain) / p
		r.avgLoss = (r.avgLoss*(p-1) + loss) / p
	}

	r.value = rsiValue(r.avgGain, r.avgLoss)
	r.ready = true
	return r.value, true
}

// Value - последнее значение; ok=false до прогрева.
func (r *RSI) Value() (float64, bool) {
	return r.value, r.ready
}

func rsiValue(avgGain, avgLoss float64) float64 {
	// без потерь - строго 100, а не NaN
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
