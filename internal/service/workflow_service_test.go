package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"adflow/internal/client"
	"adflow/internal/domain"
	"adflow/internal/infrastructure/memory"
	"adflow/internal/orchestrator"

	"github.com/google/uuid"
)

type staticBackend struct{}

func (staticBackend) FetchProduct(ctx context.Context, url string) (domain.Product, error) {
	return domain.Product{Title: "Widget", Description: "A great widget", Price: "19.99"}, nil
}

func (staticBackend) GenerateAdText(ctx context.Context, req domain.AdTextRequest) (string, error) {
	return "copy", nil
}

func (staticBackend) GenerateAdImage(ctx context.Context, req domain.AdImageRequest) (domain.AdImage, error) {
	return domain.AdImage{URL: "https://img/ad.png"}, nil
}

func (staticBackend) PublishAd(ctx context.Context, req domain.PublishRequest) (domain.PublishConfirmation, error) {
	return domain.PublishConfirmation{ID: "1"}, nil
}

func newService() WorkflowService {
	b := staticBackend{}
	return NewWorkflowService(orchestrator.Collaborators{Fetcher: b, Text: b, Image: b, Publisher: b},
		memory.NewEventBus(), memory.NewNotificationLog(10), nil)
}

func TestSessionsAreIsolated(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	a, err := svc.CreateSession(ctx)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	b, err := svc.CreateSession(ctx)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if _, err := svc.FetchProduct(ctx, a.SessionID, "https://shop.example/a"); err != nil {
		t.Fatalf("FetchProduct: %v", err)
	}
	other, err := svc.GetSession(ctx, b.SessionID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if other.Product != nil {
		t.Fatalf("session b saw session a's product")
	}
}

func TestNotificationsAreRecordedAndBroadcast(t *testing.T) {
	svc := newService()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	state, _ := svc.CreateSession(ctx)
	stream, err := svc.Subscribe(ctx, state.SessionID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if _, err := svc.GenerateAdText(ctx, state.SessionID); !errors.Is(err, orchestrator.ErrNoProduct) {
		t.Fatalf("err = %v, want ErrNoProduct", err)
	}

	select {
	case n := <-stream:
		if n.Severity != domain.SeverityWarning || n.SessionID != state.SessionID {
			t.Fatalf("unexpected notification %#v", n)
		}
	case <-time.After(time.Second):
		t.Fatalf("no notification broadcast")
	}

	history, err := svc.Notifications(ctx, state.SessionID, 0)
	if err != nil {
		t.Fatalf("Notifications: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history = %d, want 1", len(history))
	}
}

func TestCommandReturnsStateOnError(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	state, _ := svc.CreateSession(ctx)

	after, err := svc.RequestPublish(ctx, state.SessionID, PublishCommand{Platform: domain.PlatformFacebook})
	if err == nil {
		t.Fatalf("expected precondition error")
	}
	if after.SessionID != state.SessionID || after.Phase != domain.PhaseIdle {
		t.Fatalf("state = %#v", after)
	}
}

func TestUnknownSession(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	id := uuid.New()

	if _, err := svc.GetSession(ctx, id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("GetSession err = %v", err)
	}
	if _, err := svc.FetchProduct(ctx, id, "https://x"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("FetchProduct err = %v", err)
	}
	if err := svc.DiscardSession(ctx, id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("DiscardSession err = %v", err)
	}
	if _, err := svc.Subscribe(ctx, id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Subscribe err = %v", err)
	}
}

func TestDiscardSessionDropsHistory(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	state, _ := svc.CreateSession(ctx)
	if _, err := svc.FetchProduct(ctx, state.SessionID, "https://shop.example/a"); err != nil {
		t.Fatalf("FetchProduct: %v", err)
	}

	if err := svc.DiscardSession(ctx, state.SessionID); err != nil {
		t.Fatalf("DiscardSession: %v", err)
	}
	if _, err := svc.Notifications(ctx, state.SessionID, 0); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Notifications err = %v", err)
	}
}

func TestFetchSurvivesCallerTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"title":"Widget","description":"A great widget","price":"19.99"}`)
	}))
	t.Cleanup(srv.Close)

	backend, err := client.NewBackendClient(srv.URL, &http.Client{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewBackendClient: %v", err)
	}
	svc := NewWorkflowService(orchestrator.Collaborators{
		Fetcher: backend, Text: backend, Image: backend, Publisher: backend,
	}, memory.NewEventBus(), memory.NewNotificationLog(10), nil)

	state, _ := svc.CreateSession(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	after, err := svc.FetchProduct(ctx, state.SessionID, "https://shop.example/products/widget")
	if err != nil {
		t.Fatalf("FetchProduct: %v", err)
	}
	if after.Product == nil || after.Product.Title != "Widget" || after.LastError != nil {
		t.Fatalf("state = %#v", after)
	}
	if after.Phase != domain.PhaseReady {
		t.Fatalf("phase = %s, want READY", after.Phase)
	}
}
