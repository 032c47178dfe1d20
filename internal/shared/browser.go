package shared

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// openers maps GOOS to the command that hands a URL to the desktop.
var openers = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"freebsd": {"xdg-open"},
	"windows": {"rundll32", "url.dll,FileProtocolHandler"},
}

// OpenBrowser hands a download or audio link to the desktop's default handler.
//
// Only absolute http and https URLs are accepted.
func OpenBrowser(link string) error {
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: not an http(s) URL: %q", ErrInvalidArgument, link)
	}

	rt := getRuntime()
	opener, ok := openers[rt]
	if !ok {
		return fmt.Errorf("%w: no URL opener for %s", ErrNotImplemented, rt)
	}

	args := append(opener[1:len(opener):len(opener)], u.String())
	if err := exec.Command(opener[0], args...).Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", u.Redacted(), err)
	}
	return nil
}
