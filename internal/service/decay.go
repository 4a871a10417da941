package service

import (
	"context"
	"sync"
	"time"

	"github.com/doxastic/beliefd/internal/domain"
	"go.uber.org/zap"
)

const defaultDecayInterval = 1 * time.Hour

// DecayService periodically lowers confidence for every still-active belief
// above the floor. The sweep itself is one bulk store update; this service
// only owns scheduling and can also be triggered on demand.
type DecayService struct {
	beliefs domain.BeliefStore
	logger  *zap.Logger

	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewDecayService(bs domain.BeliefStore, logger *zap.Logger) *DecayService {
	return &DecayService{
		beliefs:  bs,
		logger:   logger,
		interval: defaultDecayInterval,
		stopCh:   make(chan struct{}),
	}
}

func (s *DecayService) SetInterval(d time.Duration) {
	s.interval = d
}

func (s *DecayService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("decay worker started", zap.Duration("interval", s.interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				if _, err := s.Run(ctx); err != nil {
					s.logger.Error("decay sweep failed", zap.Error(err))
				}
				cancel()
			case <-s.stopCh:
				s.logger.Info("decay worker stopped")
				return
			}
		}
	}()
}

func (s *DecayService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

// Run executes one decay sweep and returns the number of beliefs touched.
func (s *DecayService) Run(ctx context.Context) (int64, error) {
	touched, err := s.beliefs.ApplyDecay(ctx)
	if err != nil {
		return 0, err
	}
	if touched > 0 {
		s.logger.Info("decay sweep complete", zap.Int64("beliefs_decayed", touched))
	}
	return touched, nil
}

// DecayedConfidence is the pure form of the sweep's per-row arithmetic:
// time-linear reduction by perDay x fractional days elapsed, clamped at the
// floor. Decay is domain-agnostic; it never gates on recent domain activity.
func DecayedConfidence(confidence float32, elapsed time.Duration, perDay float64, floor float32) float32 {
	if confidence <= floor {
		return confidence
	}
	days := elapsed.Hours() / 24.0
	decayed := float64(confidence) - perDay*days
	return domain.ClampConfidence(float32(decayed), floor)
}
