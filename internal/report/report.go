// Package report writes rule results to the output directory: a JSON object
// mapping site URL to findings and a text file listing one site per line.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/cookieaudit/cookieaudit/internal/matcher"
	"github.com/cookieaudit/cookieaudit/internal/rules"
	"github.com/cookieaudit/cookieaudit/pkg/logger"
)

// DefaultDir is the output directory used when none is configured.
const DefaultDir = "./violation_stats"

// Names of report files relative to the output directory.
const (
	UndetectedCookies       = "undetected_cookies.json"
	UndetectedDomains       = "undetected_cookie_domains.txt"
	Method6NecessaryDomains = "method6_necessary_domains.txt"
	CookieStats             = "cookie_stats.json"
	Summary                 = "violation_summary.json"
)

// CookiesFile returns the findings file of a detection method.
func CookiesFile(method int) string {
	return fmt.Sprintf("method%d_cookies.json", method)
}

// DomainsFile returns the site list of a detection method.
func DomainsFile(method int) string {
	return fmt.Sprintf("method%d_domains.txt", method)
}

// BucketCookiesFile returns the findings file of one label bucket of a
// bucketed method such as 7 or 8.
func BucketCookiesFile(method int, slot matcher.Slot) string {
	return fmt.Sprintf("method%d/method%d_cookies_%s.json", method, method, slot)
}

// BucketDomainsFile returns the site list of one label bucket.
func BucketDomainsFile(method int, slot matcher.Slot) string {
	return fmt.Sprintf("method%d/method%d_domains_%s.txt", method, method, slot)
}

// CookiebotBucketCookiesFile returns the Cookiebot-only findings file of a
// method 7 label bucket.
func CookiebotBucketCookiesFile(slot matcher.Slot) string {
	return fmt.Sprintf("method7/method7_cookiebot_cookies_%s.json", slot)
}

// CookiebotBucketDomainsFile returns the Cookiebot-only site list of a
// method 7 label bucket.
func CookiebotBucketDomainsFile(slot matcher.Slot) string {
	return fmt.Sprintf("method7/method7_cookiebot_domains_%s.txt", slot)
}

// Writer reads and writes report files below Dir on Fs.
type Writer struct {
	Fs  afero.Fs
	Dir string
	Log logger.Logger
}

// NewWriter returns a Writer on fs rooted at dir.
func NewWriter(fs afero.Fs, dir string, log logger.Logger) *Writer {
	if dir == "" {
		dir = DefaultDir
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Writer{Fs: fs, Dir: dir, Log: log}
}

// Path returns the location of a report file.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.Dir, filepath.FromSlash(name))
}

func (w *Writer) create(name string) (string, error) {
	path := w.Path(name)
	if err := w.Fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("error: cannot create output directory: %w", err)
	}
	return path, nil
}

// WriteJSON writes v as JSON indented by four spaces. HTML characters are not
// escaped, so declared domains keep their "<br/>" separators.
func (w *Writer) WriteJSON(name string, v any) error {
	path, err := w.create(name)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("error: cannot encode %s: %w", name, err)
	}
	if err := afero.WriteFile(w.Fs, path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("error: cannot write %s: %w", path, err)
	}
	w.Log.Info("Violations output to: '%s'", path)
	return nil
}

// WriteDomains writes the sites sorted, one per line.
func (w *Writer) WriteDomains(name string, domains []string) error {
	path, err := w.create(name)
	if err != nil {
		return err
	}
	sorted := append([]string(nil), domains...)
	sort.Strings(sorted)
	var b strings.Builder
	for _, d := range sorted {
		b.WriteString(d)
		b.WriteByte('\n')
	}
	if err := afero.WriteFile(w.Fs, path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("error: cannot write %s: %w", path, err)
	}
	w.Log.Info("Violations output to: '%s'", path)
	return nil
}

// ReadJSON decodes a report file into v.
func (w *Writer) ReadJSON(name string, v any) error {
	data, err := afero.ReadFile(w.Fs, w.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrMissingReport, name)
		}
		return fmt.Errorf("error: cannot read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("error: cannot decode %s: %w", name, err)
	}
	return nil
}

// Save writes the findings and the site list of r.
func Save[T any](w *Writer, cookiesName, domainsName string, r *rules.Report[T]) error {
	if err := w.WriteJSON(cookiesName, r.Details); err != nil {
		return err
	}
	return w.WriteDomains(domainsName, r.Domains())
}

// SaveBuckets writes every bucket of a bucketed method up to limit slots.
func SaveBuckets(w *Writer, method int, b rules.ByLabel, limit int) error {
	for _, s := range matcher.Slots()[:limit] {
		if err := Save(w, BucketCookiesFile(method, s), BucketDomainsFile(method, s), b[s]); err != nil {
			return err
		}
	}
	return nil
}
