package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"adflow/internal/common"
	"adflow/internal/core/ports"
	"adflow/internal/domain"
	"adflow/internal/metrics"

	"github.com/google/uuid"
)

var (
	ErrBusy             = errors.New("workflow busy")
	ErrEmptyURL         = errors.New("product url is required")
	ErrNoProduct        = errors.New("no product fetched")
	ErrMissingAccountID = errors.New("account id is required")
	ErrUnknownPlatform  = errors.New("unknown platform")
)

// IsPrecondition reports whether err was raised locally, before any network call.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrEmptyURL) ||
		errors.Is(err, ErrNoProduct) ||
		errors.Is(err, ErrMissingAccountID) ||
		errors.Is(err, ErrUnknownPlatform)
}

// Collaborators are the four backend boundaries a workflow talks to.
type Collaborators struct {
	Fetcher   ports.ProductFetcher
	Text      ports.AdTextGenerator
	Image     ports.AdImageGenerator
	Publisher ports.AdPublisher
}

type Option func(*Orchestrator)

func WithMetrics(m *metrics.Stages) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// Orchestrator owns one session's WorkflowState. Every command checks and
// claims the phase under the lock, calls one collaborator unlocked, then
// applies the result under the lock, so readers only ever see whole states.
type Orchestrator struct {
	mu    sync.Mutex
	state *domain.WorkflowState

	fetcher   ports.ProductFetcher
	text      ports.AdTextGenerator
	image     ports.AdImageGenerator
	publisher ports.AdPublisher
	notifier  ports.Notifier

	metrics *metrics.Stages
	logger  *slog.Logger
}

func New(sessionID uuid.UUID, c Collaborators, notifier ports.Notifier, opts ...Option) (*Orchestrator, error) {
	if c.Fetcher == nil || c.Text == nil || c.Image == nil || c.Publisher == nil {
		return nil, errors.New("all four collaborators are required")
	}
	if notifier == nil {
		return nil, errors.New("notifier is required")
	}
	o := &Orchestrator{
		state:     domain.NewWorkflowState(sessionID),
		fetcher:   c.Fetcher,
		text:      c.Text,
		image:     c.Image,
		publisher: c.Publisher,
		notifier:  notifier,
		logger:    common.Logger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With("component", "orchestrator", "session", sessionID.String())
	return o, nil
}

func (o *Orchestrator) SessionID() uuid.UUID {
	return o.state.SessionID
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() domain.WorkflowState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Clone()
}

// FetchProduct scrapes url and starts a fresh artifact set for it.
func (o *Orchestrator) FetchProduct(ctx context.Context, url string) error {
	url = strings.TrimSpace(url)
	_, err := o.begin(ctx, domain.StageFetch, domain.PhaseFetching, func(*domain.WorkflowState) error {
		if url == "" {
			return ErrEmptyURL
		}
		return nil
	})
	if err != nil {
		return err
	}

	started := time.Now()
	product, callErr := o.fetcher.FetchProduct(detach(ctx), url)
	o.metrics.Observe(domain.StageFetch, started)

	if callErr != nil {
		return o.fail(ctx, domain.StageFetch, callErr)
	}

	o.apply(func(s *domain.WorkflowState) {
		s.Product = &product
		s.ProductURL = url
		s.AdText = nil
		s.AdImage = nil
		s.LastError = nil
		s.Phase = domain.PhaseReady
	})
	o.succeed(ctx, domain.NewNotification(o.SessionID(), domain.StageFetch, domain.SeveritySuccess,
		"Product fetched", product.Title))
	return nil
}

// GenerateAdText writes (or rewrites) ad copy for the current product.
func (o *Orchestrator) GenerateAdText(ctx context.Context) error {
	snap, err := o.begin(ctx, domain.StageGenerateText, domain.PhaseGeneratingText, requireProduct)
	if err != nil {
		return err
	}
	refine := snap.AdText != nil

	started := time.Now()
	text, callErr := o.text.GenerateAdText(detach(ctx), domain.NewAdTextRequest(*snap.Product, refine))
	o.metrics.Observe(domain.StageGenerateText, started)

	if callErr != nil {
		return o.fail(ctx, domain.StageGenerateText, callErr)
	}

	o.apply(func(s *domain.WorkflowState) {
		s.AdText = &text
		s.LastError = nil
		s.Phase = domain.PhaseReady
	})
	o.succeed(ctx, domain.NewNotification(o.SessionID(), domain.StageGenerateText, domain.SeveritySuccess,
		generatedTitle("Ad text", refine), ""))
	return nil
}

// GenerateAdImage writes (or rewrites) the ad image from the product description.
func (o *Orchestrator) GenerateAdImage(ctx context.Context) error {
	snap, err := o.begin(ctx, domain.StageGenerateImage, domain.PhaseGeneratingImage, requireProduct)
	if err != nil {
		return err
	}
	refine := snap.AdImage != nil

	started := time.Now()
	img, callErr := o.image.GenerateAdImage(detach(ctx), domain.NewAdImageRequest(*snap.Product, refine))
	o.metrics.Observe(domain.StageGenerateImage, started)

	if callErr != nil {
		return o.fail(ctx, domain.StageGenerateImage, callErr)
	}

	o.apply(func(s *domain.WorkflowState) {
		s.AdImage = &img
		s.LastError = nil
		s.Phase = domain.PhaseReady
	})
	o.succeed(ctx, domain.NewNotification(o.SessionID(), domain.StageGenerateImage, domain.SeveritySuccess,
		generatedTitle("Ad image", refine), img.URL))
	return nil
}

// RequestPublish sends the current artifacts to the ad platform.
func (o *Orchestrator) RequestPublish(ctx context.Context, platform domain.Platform, accountID string, includeText, includeImage bool) error {
	accountID = strings.TrimSpace(accountID)
	snap, err := o.begin(ctx, domain.StagePublish, domain.PhasePublishing, func(s *domain.WorkflowState) error {
		if err := requireProduct(s); err != nil {
			return err
		}
		if accountID == "" {
			return ErrMissingAccountID
		}
		if !platform.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownPlatform, platform)
		}
		return nil
	})
	if err != nil {
		return err
	}

	req := domain.PublishRequest{
		Platform:     platform,
		AccountID:    accountID,
		IncludeText:  includeText,
		IncludeImage: includeImage,
		ProductLink:  snap.ProductURL,
		AdText:       snap.AdText,
	}
	if snap.AdImage != nil {
		imageURL := snap.AdImage.URL
		req.AdImage = &imageURL
	}

	started := time.Now()
	conf, callErr := o.publisher.PublishAd(detach(ctx), req)
	o.metrics.Observe(domain.StagePublish, started)

	if callErr != nil {
		return o.fail(ctx, domain.StagePublish, callErr)
	}

	o.apply(func(s *domain.WorkflowState) {
		s.LastError = nil
		s.Phase = domain.PhaseReady
	})
	n := domain.NewNotification(o.SessionID(), domain.StagePublish, domain.SeveritySuccess,
		fmt.Sprintf("Ad published to %s", platform), confirmationDetail(conf))
	n.ClosePublishDialog = true
	o.succeed(ctx, n)
	return nil
}

// detach keeps the caller's values but not its cancellation: an in-flight
// collaborator call is bounded only by the transport timeout.
func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

func requireProduct(s *domain.WorkflowState) error {
	if s.Product == nil {
		return ErrNoProduct
	}
	return nil
}

// begin rejects the command if a call is in flight or check fails, otherwise
// switches to phase and returns the state as of the switch.
func (o *Orchestrator) begin(ctx context.Context, stage domain.Stage, phase domain.Phase, check func(*domain.WorkflowState) error) (domain.WorkflowState, error) {
	o.mu.Lock()
	if current := o.state.Phase; current.IsBusy() {
		o.mu.Unlock()
		o.metrics.Outcome(stage, metrics.OutcomeBusy)
		o.logger.Warn("command rejected, workflow busy", "stage", stage, "phase", current)
		o.emit(ctx, domain.NewNotification(o.SessionID(), stage, domain.SeverityWarning,
			"Workflow busy", fmt.Sprintf("Wait for %s to finish.", strings.ToLower(string(current)))))
		return domain.WorkflowState{}, fmt.Errorf("%w: %s in progress", ErrBusy, current)
	}
	if err := check(o.state); err != nil {
		o.mu.Unlock()
		o.metrics.Outcome(stage, metrics.OutcomePrecondition)
		o.logger.Info("command precondition failed", "stage", stage, "error", err)
		o.emit(ctx, domain.NewNotification(o.SessionID(), stage, domain.SeverityWarning,
			preconditionTitle(err), err.Error()))
		return domain.WorkflowState{}, err
	}
	o.state.Phase = phase
	o.state.UpdatedAt = time.Now()
	snap := o.state.Clone()
	o.mu.Unlock()

	o.logger.Debug("stage started", "stage", stage)
	return snap, nil
}

func (o *Orchestrator) apply(mutate func(*domain.WorkflowState)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	mutate(o.state)
	o.state.UpdatedAt = time.Now()
}

// fail records a collaborator failure and returns to a stable phase,
// leaving product and artifacts as they were.
func (o *Orchestrator) fail(ctx context.Context, stage domain.Stage, callErr error) error {
	kind := domain.ErrorKindTransport
	severity := domain.SeverityError
	outcome := metrics.OutcomeTransport
	if errors.Is(callErr, domain.ErrNoResult) {
		kind = domain.ErrorKindNoResult
		severity = domain.SeverityWarning
		outcome = metrics.OutcomeNoResult
	}

	o.apply(func(s *domain.WorkflowState) {
		s.LastError = &domain.StageError{Stage: stage, Kind: kind, Message: callErr.Error()}
		s.Phase = s.StablePhase()
	})

	o.metrics.Outcome(stage, outcome)
	o.logger.Error("stage failed", "stage", stage, "kind", kind, "error", callErr)
	o.emit(ctx, domain.NewNotification(o.SessionID(), stage, severity, failureTitle(stage, kind), callErr.Error()))
	return fmt.Errorf("%s: %w", stage, callErr)
}

func (o *Orchestrator) succeed(ctx context.Context, n domain.Notification) {
	o.metrics.Outcome(n.Stage, metrics.OutcomeSuccess)
	o.logger.Info("stage completed", "stage", n.Stage, "title", n.Title)
	o.emit(ctx, n)
}

// emit never fails a command; a lost notification is only logged.
func (o *Orchestrator) emit(ctx context.Context, n domain.Notification) {
	if err := o.notifier.Notify(detach(ctx), n); err != nil {
		o.logger.Warn("failed to deliver notification", "stage", n.Stage, "error", err)
	}
}
