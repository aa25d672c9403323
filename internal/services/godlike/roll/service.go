// Package roll resolves roll commands and records their regular dice.
package roll

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/louisbranch/godlike/internal/core/dice"
	apperrors "github.com/louisbranch/godlike/internal/platform/errors"
	"github.com/louisbranch/godlike/internal/platform/telemetry/metrics"
	"github.com/louisbranch/godlike/internal/services/godlike/storage"
	"github.com/rs/zerolog"
)

// Service resolves roll requests.
type Service struct {
	src     dice.Source
	log     storage.RollLog
	logger  zerolog.Logger
	metrics *metrics.Metrics
	clock   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for roll-log failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the collectors updated on every roll.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a roll service drawing from src and appending results
// to log. A nil log disables roll recording.
func NewService(src dice.Source, log storage.RollLog, opts ...Option) *Service {
	s := &Service{
		src:    src,
		log:    log,
		logger: zerolog.Nop(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Roll parses, validates and resolves text on behalf of requester.
//
// Regular faces are appended to the roll log before returning. A failure to
// record them is logged and counted but does not fail the roll.
func (s *Service) Roll(ctx context.Context, requester, text string) (dice.Outcome, error) {
	if s == nil || s.src == nil {
		return dice.Outcome{}, apperrors.New(apperrors.CodeUnknown, "dice source is not configured")
	}

	request, err := dice.ParseRequest(text)
	if err != nil {
		return dice.Outcome{}, requestError(err)
	}
	outcome, err := dice.Resolve(s.src, request)
	if err != nil {
		return dice.Outcome{}, requestError(err)
	}
	s.metrics.DiceRolled(outcome.Regular, outcome.Hard, outcome.Wiggle)

	if s.log != nil && len(outcome.Faces) > 0 {
		now := time.Now()
		if s.clock != nil {
			now = s.clock()
		}
		if err := s.log.AppendRolls(ctx, strings.TrimSpace(requester), outcome.Faces, now.UTC()); err != nil {
			s.metrics.RollLogFailed()
			s.logger.Error().
				Err(err).
				Str("user_id", requester).
				Int("dice", len(outcome.Faces)).
				Msg("append rolls")
		}
	}
	return outcome, nil
}

func requestError(err error) error {
	if errors.Is(err, dice.ErrTooManyDice) {
		return apperrors.WrapWithMetadata(
			apperrors.CodeTooManyDice,
			"too many dice",
			map[string]string{"Max": strconv.Itoa(dice.MaxPool)},
			err,
		)
	}
	return apperrors.WrapWithMetadata(
		apperrors.CodeMalformedRequest,
		"malformed roll request",
		map[string]string{"Usage": dice.Usage},
		err,
	)
}
