package format

import (
	"time"

	"github.com/mohammed-shakir/eodata-query/internal/core/model"
)

type Summary struct {
	Count       int       `json:"count"`
	TotalBytes  int64     `json:"total_bytes"`
	TotalGB     float64   `json:"total_gb"`
	Online      int       `json:"online"`
	FirstSensed time.Time `json:"first_sensed,omitzero"`
	LastSensed  time.Time `json:"last_sensed,omitzero"`
}

func Summarize(products []model.Product) Summary {
	s := Summary{Count: len(products)}
	for _, p := range products {
		s.TotalBytes += p.ContentLength
		if p.Online {
			s.Online++
		}
		if t := p.SensingStart; !t.IsZero() {
			if s.FirstSensed.IsZero() || t.Before(s.FirstSensed) {
				s.FirstSensed = t
			}
			if t.After(s.LastSensed) {
				s.LastSensed = t
			}
		}
	}
	s.TotalGB = float64(s.TotalBytes) / (1 << 30)
	return s
}
