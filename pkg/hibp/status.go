package hibp

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Stats keeps the numbers of a checking session. Safe for concurrent use.
type Stats struct {
	checked                    uint64
	pwned                      uint64
	cloudflareRequests         uint64
	cloudflareHits             uint64
	cloudflareMisses           uint64
	cloudflareRequestTimeTotal uint64
	start                      time.Time
}

func NewStats() *Stats {
	return &Stats{start: time.Now()}
}

func (s *Stats) RequestComplete(res *http.Response, millis int64) {
	atomic.AddUint64(&s.cloudflareRequestTimeTotal, uint64(millis))
	atomic.AddUint64(&s.cloudflareRequests, 1)

	if cacheHit := res.Header.Get("CF-Cache-Status"); cacheHit == "HIT" {
		atomic.AddUint64(&s.cloudflareHits, 1)
	} else {
		atomic.AddUint64(&s.cloudflareMisses, 1)
	}
}

func (s *Stats) PasswordChecked(r Result) {
	atomic.AddUint64(&s.checked, 1)
	if r.Pwned() {
		atomic.AddUint64(&s.pwned, 1)
	}
}

func (s *Stats) Checked() uint64 {
	return atomic.LoadUint64(&s.checked)
}

func (s *Stats) Pwned() uint64 {
	return atomic.LoadUint64(&s.pwned)
}

func (s *Stats) Requests() uint64 {
	return atomic.LoadUint64(&s.cloudflareRequests)
}

func (s *Stats) Done() {
	p := message.NewPrinter(language.English)
	log.Info().Msgf("checked %s passwords in %v, %s found in breaches",
		p.Sprintf("%d", s.Checked()), time.Since(s.start).Round(time.Millisecond), p.Sprintf("%d", s.Pwned()))

	requests := s.Requests()
	if requests == 0 {
		return
	}

	hits := atomic.LoadUint64(&s.cloudflareHits)
	misses := atomic.LoadUint64(&s.cloudflareMisses)
	requestAverage := float64(atomic.LoadUint64(&s.cloudflareRequestTimeTotal)) / float64(requests)
	log.Debug().Msgf("made %s Cloudflare requests. Average response time %.2f ms", p.Sprintf("%d", requests), requestAverage)
	log.Debug().Msgf("cloudflare cache hits: %s (%.2f%%), misses: %s (%.2f%%)",
		p.Sprintf("%d", hits), float64(hits*100)/float64(requests),
		p.Sprintf("%d", misses), float64(misses*100)/float64(requests))
}
