package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"adflow/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *BackendClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewBackendClient(srv.URL+"/", srv.Client())
	if err != nil {
		t.Fatalf("NewBackendClient: %v", err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNewBackendClientValidatesBaseURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8000", "://bad"} {
		if _, err := NewBackendClient(raw, nil); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
	if _, err := NewBackendClient("http://127.0.0.1:8000", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFetchProduct(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/scrape/" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("url"); got != "https://shop.example/products/widget?variant=1" {
			t.Fatalf("url query = %q", got)
		}
		writeJSON(w, http.StatusOK, `{"title":"Widget","description":"A great widget","price":"19.99","image_url":"https://img/w.png"}`)
	})

	p, err := c.FetchProduct(context.Background(), "https://shop.example/products/widget?variant=1")
	if err != nil {
		t.Fatalf("FetchProduct: %v", err)
	}
	want := domain.Product{Title: "Widget", Description: "A great widget", Price: "19.99", ImageURL: "https://img/w.png"}
	if p != want {
		t.Fatalf("product = %#v, want %#v", p, want)
	}
}

func TestFetchProductNumericPrice(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"title":"Widget","price":19.5}`)
	})
	p, err := c.FetchProduct(context.Background(), "https://shop.example/x")
	if err != nil {
		t.Fatalf("FetchProduct: %v", err)
	}
	if p.Price != "19.5" {
		t.Fatalf("price = %q", p.Price)
	}
}

func TestFetchProductErrorBodyIsTransport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"error":"Failed to fetch page: 404"}`)
	})
	_, err := c.FetchProduct(context.Background(), "https://shop.example/x")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want TransportError", err)
	}
	if te.Message != "Failed to fetch page: 404" {
		t.Fatalf("message = %q", te.Message)
	}
	if errors.Is(err, ErrNoResult) {
		t.Fatalf("error body must not be classified as no-result")
	}
}

func TestFetchProductMissingTitleIsNoResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"title":"","description":"d","price":"N/A"}`)
	})
	_, err := c.FetchProduct(context.Background(), "https://shop.example/x")
	if !errors.Is(err, ErrNoResult) {
		t.Fatalf("err = %v, want ErrNoResult", err)
	}
}

func TestNonSuccessStatusIsTransport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadGateway, `{"detail":"upstream down"}`)
	})
	_, err := c.GenerateAdText(context.Background(), domain.AdTextRequest{Title: "t"})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want TransportError", err)
	}
	if te.StatusCode != http.StatusBadGateway || te.Message != "upstream down" || te.Endpoint != "/generate_ad/" {
		t.Fatalf("unexpected error %#v", te)
	}
}

func TestNonJSONBodyIsTransport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "<html>oops</html>")
	})
	_, err := c.GenerateAdImage(context.Background(), domain.AdImageRequest{Prompt: "p"})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want TransportError", err)
	}
}

func TestUnreachableBackendIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewBackendClient(base, nil)
	if err != nil {
		t.Fatalf("NewBackendClient: %v", err)
	}
	_, err = c.FetchProduct(context.Background(), "https://shop.example/x")
	var te *TransportError
	if !errors.As(err, &te) || te.Err == nil {
		t.Fatalf("err = %v, want TransportError with cause", err)
	}
}

func TestGenerateAdText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/generate_ad/" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["title"] != "Widget" || body["price"] != "19.99" || body["refine"] != true {
			t.Fatalf("unexpected body %v", body)
		}
		writeJSON(w, http.StatusOK, `{"ad_text":"Get your Widget today!"}`)
	})

	text, err := c.GenerateAdText(context.Background(), domain.AdTextRequest{
		Title: "Widget", Description: "A great widget", Price: "19.99", Refine: true,
	})
	if err != nil {
		t.Fatalf("GenerateAdText: %v", err)
	}
	if text != "Get your Widget today!" {
		t.Fatalf("text = %q", text)
	}
}

func TestGenerateAdTextMissingFieldIsNoResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})
	_, err := c.GenerateAdText(context.Background(), domain.AdTextRequest{})
	if !errors.Is(err, ErrNoResult) {
		t.Fatalf("err = %v, want ErrNoResult", err)
	}
}

func TestGenerateAdImage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body domain.AdImageRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Prompt != "A great widget" {
			t.Fatalf("prompt = %q", body.Prompt)
		}
		writeJSON(w, http.StatusOK, `{"image_url":"https://img/ad.png"}`)
	})
	img, err := c.GenerateAdImage(context.Background(), domain.AdImageRequest{Prompt: "A great widget"})
	if err != nil {
		t.Fatalf("GenerateAdImage: %v", err)
	}
	if img.URL != "https://img/ad.png" {
		t.Fatalf("url = %q", img.URL)
	}
}

func TestGenerateAdImageMissingFieldIsNoResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"image_url":null}`)
	})
	_, err := c.GenerateAdImage(context.Background(), domain.AdImageRequest{Prompt: "p"})
	if !errors.Is(err, ErrNoResult) {
		t.Fatalf("err = %v, want ErrNoResult", err)
	}
}

func TestPublishAdWireFormat(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/publish_ad/" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		for _, key := range []string{"platform", "accountId", "shareText", "shareImage", "productLink", "adText", "adImage"} {
			if _, ok := body[key]; !ok {
				t.Fatalf("missing key %q in %v", key, body)
			}
		}
		if body["adImage"] != nil {
			t.Fatalf("adImage = %v, want null", body["adImage"])
		}
		writeJSON(w, http.StatusOK, `{"post_id":12345,"status":"accepted","message":"Queued"}`)
	})

	text := "copy"
	conf, err := c.PublishAd(context.Background(), domain.PublishRequest{
		Platform:    domain.PlatformFacebook,
		AccountID:   "acct",
		IncludeText: true,
		ProductLink: "https://shop.example/products/widget",
		AdText:      &text,
	})
	if err != nil {
		t.Fatalf("PublishAd: %v", err)
	}
	if conf.ID != "12345" || conf.Status != "accepted" || conf.Message != "Queued" {
		t.Fatalf("confirmation = %#v", conf)
	}
	if conf.Platform != domain.PlatformFacebook {
		t.Fatalf("platform = %q", conf.Platform)
	}
	if conf.Raw["status"] != "accepted" {
		t.Fatalf("raw = %v", conf.Raw)
	}
}

func TestPublishAdEmptyObjectIsConfirmation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})
	conf, err := c.PublishAd(context.Background(), domain.PublishRequest{Platform: domain.PlatformTwitter, AccountID: "a"})
	if err != nil {
		t.Fatalf("PublishAd: %v", err)
	}
	if conf.Platform != domain.PlatformTwitter {
		t.Fatalf("platform = %q", conf.Platform)
	}
}

func TestPublishAdRejectedIsTransport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"error":"publish rejected: ad text is too long"}`)
	})
	_, err := c.PublishAd(context.Background(), domain.PublishRequest{Platform: domain.PlatformTwitter, AccountID: "a"})
	var te *TransportError
	if !errors.As(err, &te) || te.StatusCode != http.StatusBadRequest {
		t.Fatalf("err = %v", err)
	}
}

func TestPublishAdEmptyBodyIsNoResult(t *testing.T) {
	for _, body := range []string{"", "null"} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if body == "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			writeJSON(w, http.StatusOK, body)
		})
		_, err := c.PublishAd(context.Background(), domain.PublishRequest{Platform: domain.PlatformFacebook, AccountID: "a"})
		if !errors.Is(err, ErrNoResult) {
			t.Fatalf("body %q: err = %v, want ErrNoResult", body, err)
		}
		var te *TransportError
		if errors.As(err, &te) {
			t.Fatalf("body %q: empty confirmation must not be a transport error", body)
		}
	}
}
