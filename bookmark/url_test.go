package bookmark

import "testing"

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"HTTPS://Example.com/path/", "https://example.com/path"},
		{"https://example.com/path", "https://example.com/path"},
		{"http://example.com:80/x", "http://example.com/x"},
		{"https://example.com:443/x", "https://example.com/x"},
		{"https://example.com:8443/x", "https://example.com:8443/x"},
		{"https://example.com/page#section", "https://example.com/page"},
		{"https://example.com/search?q=go", "https://example.com/search?q=go"},
		{"  http://a.com/  ", "http://a.com"},
		{"not a url", "not a url"},
	}

	for _, tt := range tests {
		if got := NormalizeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeURL_Idempotent(t *testing.T) {
	inputs := []string{
		"HTTPS://Example.com/path/",
		"http://a.com:80/b/c/",
		"https://example.com/search?q=go#frag",
	}

	for _, in := range inputs {
		once := NormalizeURL(in)
		twice := NormalizeURL(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestIsValidURL(t *testing.T) {
	valid := []string{
		"https://example.com",
		"http://sub.example.com/path",
		"ftp://files.example.org",
		"http://localhost:8080",
		"http://192.168.1.1",
	}
	invalid := []string{
		"",
		"example.com",
		"mailto:user@example.com",
		"http://",
		"http://.example.com",
		"http://example..com",
		"http://-example.com",
		"http://exam ple.com",
	}

	for _, u := range valid {
		if !IsValidURL(u) {
			t.Errorf("IsValidURL(%q) = false, want true", u)
		}
	}
	for _, u := range invalid {
		if IsValidURL(u) {
			t.Errorf("IsValidURL(%q) = true, want false", u)
		}
	}
}
