package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"

	"github.com/cookieaudit/cookieaudit/internal/crawldb"
)

// captureOutput captures stdout and stderr during function execution.
// It redirects os.Stdout and os.Stderr to pipes, runs the provided function,
// and returns the captured output as strings. The pipes are drained while f
// runs so that verbose commands cannot block on a full pipe.
func captureOutput(f func()) (stdout, stderr string) {
	oldStdout := os.Stdout
	oldStderr := os.Stderr

	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	var bufOut, bufErr bytes.Buffer
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); io.Copy(&bufOut, rOut) }()
	go func() { defer wg.Done(); io.Copy(&bufErr, rErr) }()

	f()

	wOut.Close()
	wErr.Close()
	wg.Wait()
	os.Stdout = oldStdout
	os.Stderr = oldStderr
	rOut.Close()
	rErr.Close()

	return bufOut.String(), bufErr.String()
}

// assertContains checks if output contains the expected substring.
func assertContains(t *testing.T, output, expected string) {
	t.Helper()
	if !strings.Contains(output, expected) {
		t.Errorf("expected output to contain %q, got:\n%s", expected, output)
	}
}

// assertErrorFormat checks that error output follows the standard format:
// cookieaudit: cmd[action]: msg
func assertErrorFormat(t *testing.T, output, cmd, action string) {
	t.Helper()
	pattern := "cookieaudit: " + cmd + "[" + action + "]:"
	if !strings.Contains(output, pattern) {
		t.Errorf("expected error format %q, got:\n%s", pattern, output)
	}
}

// useMemFs points report and list output at an in-memory filesystem for the
// duration of the test.
func useMemFs(t *testing.T) afero.Fs {
	t.Helper()
	old := appFs
	fs := afero.NewMemMapFs()
	appFs = fs
	t.Cleanup(func() { appFs = old })
	return fs
}

// run executes the CLI with global flags that keep output in memory and
// the log off disk.
func run(t *testing.T, args ...string) (stdout string, err error) {
	t.Helper()
	full := append([]string{"cookieaudit", "-o", "/out", "--log-file", ""}, args...)
	stdout, _ = captureOutput(func() {
		err = Execute(full, BuildArgs{Version: "test", BuildType: "dev"})
	})
	return stdout, err
}

func assertExists(t *testing.T, fs afero.Fs, names ...string) {
	t.Helper()
	for _, n := range names {
		ok, err := afero.Exists(fs, filepath.Join("/out", n))
		if err != nil || !ok {
			t.Errorf("expected report %s to exist", n)
		}
	}
}

// newCrawlDB writes a crawl with two Cookiebot sites and returns its path.
//
// a.test declares _ga as necessary with a one day lifetime; the observed
// cookie lives for years. It also stores an undeclared tracker cookie.
// b.test stored a consent cookie rejecting every optional category and then
// set an analytics cookie anyway.
func newCrawlDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crawl.sqlite")
	f, err := crawldb.CreateFixture(path)
	if err != nil {
		t.Fatalf("CreateFixture: %v", err)
	}
	defer f.Close()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("fixture: %v", err)
		}
	}

	must(f.AddVisit(1, "https://a.test", crawldb.Cookiebot, crawldb.CrawlSucceeded))
	must(f.AddConsent(crawldb.ConsentEntry{VisitID: 1, Name: "_ga", Domain: "a.test", CategoryID: 0, CategoryName: "Necessary", TypeID: 1, Expiry: "1 day"}))
	must(f.AddCookie("added-or-changed", crawldb.ObservedCookie{VisitID: 1, Name: "_ga", Host: ".a.test", Path: "/", Value: "GA1.1", ActualExpiry: "2030-01-01T00:00:00Z", Timestamp: "2021-01-01T00:00:00Z"}))
	must(f.AddCookie("added-or-changed", crawldb.ObservedCookie{VisitID: 1, Name: "track", Host: ".tracker.test", Path: "/", Value: "x", ActualExpiry: "2022-01-01T00:00:00Z", Timestamp: "2021-01-01T00:00:00Z"}))

	must(f.AddVisit(2, "https://b.test", crawldb.Cookiebot, crawldb.CrawlSucceeded))
	must(f.AddConsent(crawldb.ConsentEntry{VisitID: 2, Name: "CookieConsent", Domain: "b.test", CategoryID: 0, CategoryName: "Necessary", TypeID: 1, Expiry: "1 year"}))
	must(f.AddConsent(crawldb.ConsentEntry{VisitID: 2, Name: "_gid", Domain: "b.test", CategoryID: 2, CategoryName: "Statistics", TypeID: 1, Expiry: "1 day"}))
	must(f.AddCookie("added-or-changed", crawldb.ObservedCookie{VisitID: 2, Name: "CookieConsent", Host: "b.test", Path: "/",
		Value:        "{stamp:'x',necessary:true,preferences:false,statistics:false,marketing:false}",
		ActualExpiry: "2022-01-01T00:00:00Z", Timestamp: "2021-01-01T00:00:00Z"}))
	must(f.AddCookie("added-or-changed", crawldb.ObservedCookie{VisitID: 2, Name: "_gid", Host: ".b.test", Path: "/", Value: "GA1.2", ActualExpiry: "2021-01-02T00:00:00Z", Timestamp: "2021-01-01T00:00:05Z"}))
	return path
}
