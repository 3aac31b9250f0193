package lexical

import (
	"math"
	"testing"
)

func TestNormalizeDomain(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, want string
	}{
		{"https://www.example.com/path?q=1", "example.com"},
		{"http://Sub.Example.COM:8080/", "sub.example.com"},
		{"https://wwwexample.com", "wwwexample.com"},
		{"example.com", "example.com"},
		{"www.example.com", "www.example.com"},
		{"not a url", "not a url"},
		{"http://%zz", "http://%zz"},
		{"", ""},
		{"mailto:someone@example.com", "mailto:someone@example.com"},
	}
	for _, tt := range tests {
		if got := NormalizeDomain(tt.in); got != tt.want {
			t.Errorf("NormalizeDomain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseAbsolute_IDNA(t *testing.T) {
	t.Parallel()
	u, err := ParseAbsolute("https://bücher.example/")
	if err != nil {
		t.Fatalf("ParseAbsolute: %v", err)
	}
	if u.Hostname() != "xn--bcher-kva.example" {
		t.Errorf("hostname = %q, want xn--bcher-kva.example", u.Hostname())
	}
}

func TestParseAbsolute_Rejects(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"example.com/path", "/relative", "localhost:8080", "::"} {
		if _, err := ParseAbsolute(raw); err == nil {
			t.Errorf("ParseAbsolute(%q) returned no error", raw)
		}
	}
}

func TestRegistrableDomain(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, want string
	}{
		{"login.accounts.example.co.uk", "example.co.uk"},
		{"a.b.example.com", "example.com"},
		{"127.0.0.1", "127.0.0.1"},
		{"localhost", "localhost"},
	}
	for _, tt := range tests {
		if got := RegistrableDomain(tt.in); got != tt.want {
			t.Errorf("RegistrableDomain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestShannonEntropy(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"aaaa", 0},
		{"ab", 1.0},
		{"abcd", 2.0},
	}
	for _, tt := range tests {
		if got := ShannonEntropy(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ShannonEntropy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a, b string
		want int
	}{
		{"paypal", "paypa1", 1},
		{"", "", 0},
		{"abc", "abc", 0},
		{"", "google", 6},
		{"google", "", 6},
		{"Google", "gOOGLE", 0},
		{"kitten", "sitting", 3},
		{"g00gle", "google", 2},
	}
	for _, tt := range tests {
		if got := Levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestLevenshtein_Symmetric(t *testing.T) {
	t.Parallel()
	pairs := [][2]string{{"amazon", "arnazon"}, {"netflix", "netfl1x-login"}, {"a", "xyz"}}
	for _, p := range pairs {
		if Levenshtein(p[0], p[1]) != Levenshtein(p[1], p[0]) {
			t.Errorf("Levenshtein not symmetric for %q/%q", p[0], p[1])
		}
	}
}
