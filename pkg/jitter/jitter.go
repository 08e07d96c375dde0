// Package jitter добавляет случайность в интервалы отступления (backoff),
// чтобы переподключающиеся клиенты не приходили к серверу одновременно.
package jitter

import (
	"math/rand/v2"
	"time"
)

// DefaultJitter задаёт стандартный коэффициент джиттера (50%)
const DefaultJitter = 0.5

// Duration возвращает продолжительность с применённым джиттером.
// Результат находится в диапазоне [d, d*(1+jitterFactor)).
func Duration(d time.Duration, jitterFactor float64) time.Duration {
	return withJitter(d, jitterFactor, rand.Float64())
}

// ExponentialBackoff вычисляет экспоненциальное отступление с джиттером.
// attempt нумеруется с нуля; базовая задержка удваивается до max.
func ExponentialBackoff(base, max time.Duration, attempt int, jitterFactor float64) time.Duration {
	return Duration(backoff(base, max, attempt), jitterFactor)
}

func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	return d
}

func withJitter(d time.Duration, jitterFactor, r float64) time.Duration {
	if jitterFactor <= 0 {
		return d
	}
	return d + time.Duration(r*jitterFactor*float64(d))
}
