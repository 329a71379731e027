package crawler

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases scheme and host", "HTTPS://X.Test/Path", "https://x.test/Path"},
		{"strips default https port", "https://x.test:443/a", "https://x.test/a"},
		{"strips default http port", "http://x.test:80/a", "http://x.test/a"},
		{"keeps custom port", "https://x.test:8443/a", "https://x.test:8443/a"},
		{"drops fragment", "https://x.test/a#section", "https://x.test/a"},
		{"sorts query params", "https://x.test/a?b=2&a=1", "https://x.test/a?a=1&b=2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := NormalizeURL(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeURL_RejectsRelative(t *testing.T) {
	t.Parallel()

	_, err := NormalizeURL("/just/a/path")
	require.Error(t, err)
}

func TestOrigin(t *testing.T) {
	t.Parallel()

	got, err := Origin("https://X.Test/deep/path?q=1")
	require.NoError(t, err)
	require.Equal(t, "https://x.test", got)

	_, err = Origin("not a url at all ://")
	require.Error(t, err)
}

func TestResolveLink(t *testing.T) {
	t.Parallel()

	base, err := url.Parse("https://x.test/dir/page")
	require.NoError(t, err)

	cases := []struct {
		name string
		href string
		want string
		ok   bool
	}{
		{"relative path", "other", "https://x.test/dir/other", true},
		{"rooted path", "/top", "https://x.test/top", true},
		{"absolute same host", "https://x.test/abs", "https://x.test/abs", true},
		{"absolute other host", "https://y.test/c", "https://y.test/c", true},
		{"whitespace trimmed", "  /spaced  ", "https://x.test/spaced", true},
		{"mailto dropped", "mailto:a@x.test", "", false},
		{"javascript dropped", "javascript:void(0)", "", false},
		{"empty dropped", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := resolveLink(base, tc.href)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				require.Equal(t, tc.want, got)
			}
		})
	}
}
