package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const reportBody = `{"reportId":"r-1","reportTimestamp":"2024-01-01T00:00:00Z","text":"hello"}`

func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("joins the report path", func(t *testing.T) {
		t.Parallel()

		c, err := NewClient("https://accounts.example.com/api/")
		if err != nil {
			t.Fatalf("NewClient() error = %v", err)
		}
		want := "https://accounts.example.com/api/v2/accounts/data_report"
		if c.Endpoint() != want {
			t.Errorf("Endpoint() = %q, want %q", c.Endpoint(), want)
		}
	})

	t.Run("rejects unusable URLs", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{"", "accounts.example.com", "ftp://accounts.example.com", "https://"} {
			if _, err := NewClient(raw); !errors.Is(err, ErrInvalidServerURL) {
				t.Errorf("NewClient(%q) error = %v, want ErrInvalidServerURL", raw, err)
			}
		}
	})
}

func TestFetchReport(t *testing.T) {
	t.Parallel()

	t.Run("returns the document and sends credentials", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != ReportPath {
				http.NotFound(w, r)
				return
			}
			user, pass, ok := r.BasicAuth()
			if !ok || user != "+15555550123" || pass != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if r.Header.Get("X-Client-Version") != "7" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if r.Header.Get("User-Agent") != "acctexport-test" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(reportBody))
		}))
		t.Cleanup(srv.Close)

		c, err := NewClient(srv.URL,
			WithHTTPClient(srv.Client()),
			WithCredentials("+15555550123", "secret"),
			WithHeaders(map[string]string{"X-Client-Version": "7"}),
			WithUserAgent("acctexport-test"),
		)
		if err != nil {
			t.Fatal(err)
		}

		doc, err := c.FetchReport(context.Background())
		if err != nil {
			t.Fatalf("FetchReport() error = %v", err)
		}
		if string(doc) != reportBody {
			t.Errorf("FetchReport() = %s, want %s", doc, reportBody)
		}
	})

	t.Run("non-2xx status is an IO error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		t.Cleanup(srv.Close)

		c, err := NewClient(srv.URL, WithHTTPClient(srv.Client()))
		if err != nil {
			t.Fatal(err)
		}

		_, err = c.FetchReport(context.Background())
		if !errors.Is(err, ErrIO) {
			t.Fatalf("FetchReport() error = %v, want ErrIO", err)
		}
		var statusErr *StatusError
		if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("FetchReport() error = %v, want StatusError 503", err)
		}
	})

	t.Run("body that is not an object is an IO error", func(t *testing.T) {
		t.Parallel()

		for _, body := range []string{`[1,2]`, `not json`, ``, `{"truncated":`} {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			}))

			c, err := NewClient(srv.URL, WithHTTPClient(srv.Client()))
			if err != nil {
				srv.Close()
				t.Fatal(err)
			}
			if _, err := c.FetchReport(context.Background()); !errors.Is(err, ErrIO) {
				t.Errorf("FetchReport() with body %q error = %v, want ErrIO", body, err)
			}
			srv.Close()
		}
	})

	t.Run("oversized body is an IO error", func(t *testing.T) {
		t.Parallel()

		big := `{"text":"` + strings.Repeat("x", 64) + `"}`
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(big))
		}))
		t.Cleanup(srv.Close)

		c, err := NewClient(srv.URL, WithHTTPClient(srv.Client()), WithMaxBodySize(32))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := c.FetchReport(context.Background()); !errors.Is(err, ErrIO) {
			t.Errorf("FetchReport() error = %v, want ErrIO", err)
		}

		c, err = NewClient(srv.URL, WithHTTPClient(srv.Client()), WithMaxBodySize(int64(len(big))))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := c.FetchReport(context.Background()); err != nil {
			t.Errorf("FetchReport() at exact limit error = %v", err)
		}
	})

	t.Run("transport failure is an IO error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c, err := NewClient(url)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := c.FetchReport(context.Background()); !errors.Is(err, ErrIO) {
			t.Errorf("FetchReport() error = %v, want ErrIO", err)
		}
	})

	t.Run("canceled context is an IO error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(reportBody))
		}))
		t.Cleanup(srv.Close)

		c, err := NewClient(srv.URL, WithHTTPClient(srv.Client()))
		if err != nil {
			t.Fatal(err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = c.FetchReport(ctx)
		if !errors.Is(err, ErrIO) || !errors.Is(err, context.Canceled) {
			t.Errorf("FetchReport() error = %v, want ErrIO wrapping context.Canceled", err)
		}
	})
}
