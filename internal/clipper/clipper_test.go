package clipper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const timetableHTML = `<html><head><style>.x{}</style><script>var a = 1;</script></head>
<body>
<nav><a href="/">Home</a></nav>
<h1>Nursing, Year 2</h1>
<p>Autumn   term
   timetable</p>
<table>
  <tr><th>Day</th><th>Module</th><th>Time</th></tr>
  <tr><td>Monday</td><td>Nursing Fundamentals</td><td>9:00-12:00</td></tr>
  <tr><td>Tuesday</td><td>Pharmacology</td><td>10:00-12:00</td></tr>
</table>
<ul><li><p>Bring your lab coat</p></li></ul>
<footer>Copyright</footer>
</body></html>`

func TestFetchScheduleText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(timetableHTML))
	}))
	defer server.Close()

	text, err := NewClipper(5*time.Second).FetchScheduleText(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchScheduleText returned error: %v", err)
	}

	want := []string{
		"Nursing, Year 2",
		"Autumn term timetable",
		"Day | Module | Time",
		"Monday | Nursing Fundamentals | 9:00-12:00",
		"Tuesday | Pharmacology | 10:00-12:00",
		"Bring your lab coat",
	}
	got := strings.Split(text, "\n")
	if len(got) != len(want) {
		t.Fatalf("Expected %d lines, got %d:\n%s", len(want), len(got), text)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Line %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	for _, noise := range []string{"var a", "Home", "Copyright"} {
		if strings.Contains(text, noise) {
			t.Errorf("Expected %q to be stripped", noise)
		}
	}
}

func TestFetchScheduleTextErrors(t *testing.T) {
	t.Run("BadStatus", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		_, err := NewClipper(5*time.Second).FetchScheduleText(context.Background(), server.URL)
		if err == nil || !strings.Contains(err.Error(), "status 404") {
			t.Fatalf("Expected status error, got %v", err)
		}
	})

	t.Run("EmptyPage", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html><body><script>x()</script></body></html>"))
		}))
		defer server.Close()

		if _, err := NewClipper(5*time.Second).FetchScheduleText(context.Background(), server.URL); err == nil {
			t.Fatal("Expected an error for a page without text")
		}
	})
}

func TestTruncate(t *testing.T) {
	if got := truncate("📚📚📚", 2); got != "📚📚" {
		t.Errorf("Expected rune-safe truncation, got %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("Expected untouched text, got %q", got)
	}
}
