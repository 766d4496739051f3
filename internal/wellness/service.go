package wellness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickwarner/garminsync/internal/observability"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	tracer   = otel.Tracer("garminsync/wellness")
	validate = validator.New()
)

// ErrMissingCredentials is returned when email or password is empty.
var ErrMissingCredentials = errors.New("email and password required")

// Service logs into an account and collects the daily metrics.
type Service struct {
	open    Opener
	logger  *zap.Logger
	metrics observability.MetricsRegistry
	loc     *time.Location
	now     func() time.Time
}

// NewService creates a Service. loc sets the zone of the date anchors and
// defaults to time.Local.
func NewService(open Opener, logger *zap.Logger, metrics observability.MetricsRegistry, loc *time.Location) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{open: open, logger: logger, metrics: metrics, loc: loc, now: time.Now}
}

// SetClock overrides the time source (for testing).
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// ValidateCredentials returns ErrMissingCredentials unless both fields are set.
func ValidateCredentials(creds Credentials) error {
	if err := validate.Struct(creds); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return ErrMissingCredentials
		}
		return fmt.Errorf("validate credentials: %w", err)
	}
	return nil
}

// Sync logs in with creds and collects every metric. Login errors are returned
// unchanged so callers can detect *garmin.AuthenticationError; metric failures
// never fail the sync.
func (s *Service) Sync(ctx context.Context, creds Credentials) (*SyncResult, error) {
	if err := ValidateCredentials(creds); err != nil {
		return nil, err
	}

	session := s.open(creds.Email, creds.Password)
	if err := s.login(ctx, session, creds); err != nil {
		return nil, err
	}

	today, yesterday := DateAnchors(s.now().In(s.loc))
	return s.Collect(ctx, session, today, yesterday), nil
}

func (s *Service) login(ctx context.Context, session Session, creds Credentials) error {
	ctx, span := tracer.Start(ctx, "wellness.login")
	defer span.End()

	if err := session.Login(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		s.logger.Warn("garmin login failed",
			zap.String("email_domain", EmailDomain(creds.Email)),
			zap.Error(err))
		return err
	}
	return nil
}

// Collect runs every fetch in order against src. A fetch that errors or
// panics leaves its fields nil and the remaining fetches still run.
// LastSync is stamped after the last fetch.
func (s *Service) Collect(ctx context.Context, src Source, today, yesterday string) *SyncResult {
	result := &SyncResult{}
	for _, f := range fetches {
		date := today
		if f.yesterday {
			date = yesterday
		}

		start := time.Now()
		partial, err := s.runFetch(ctx, src, f, date)
		s.metrics.RecordMetricFetchLatency(f.metric, time.Since(start))

		switch {
		case err != nil:
			s.metrics.IncrementMetricFetch(f.metric, "failure")
			s.logger.Warn("metric fetch failed",
				zap.String("metric", f.metric),
				zap.String("date", date),
				zap.Error(err))
		case partial.empty():
			s.metrics.IncrementMetricFetch(f.metric, "empty")
		default:
			s.metrics.IncrementMetricFetch(f.metric, "success")
			result.merge(partial)
			if observability.ShouldSample(observability.GetSamplingRate()) {
				s.logger.Debug("metric fetched", zap.String("metric", f.metric), zap.String("date", date))
			}
		}
	}
	result.LastSync = s.now()
	return result
}

func (s *Service) runFetch(ctx context.Context, src Source, f fetch, date string) (partial SyncResult, err error) {
	ctx, span := tracer.Start(ctx, "wellness.fetch."+f.metric,
		trace.WithAttributes(
			attribute.String("wellness.metric", f.metric),
			attribute.String("wellness.date", date),
		))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			partial = SyncResult{}
			err = fmt.Errorf("%s fetch panicked: %v", f.metric, r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	return f.run(ctx, src, date)
}
