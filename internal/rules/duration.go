package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cookieaudit/cookieaudit/internal/crawldb"
)

// ErrUnknownExpiry is returned for declared expiries that cannot be read.
var ErrUnknownExpiry = errors.New("unknown expiry format")

const (
	minute = 60
	hour   = 60 * minute
	day    = 24 * hour
	week   = 7 * day
	month  = 30 * day
	year   = 365 * day
)

// Interval words in the languages seen in consent notices. Each is matched
// at the start of the word following a count.
var intervalUnits = []struct {
	pattern *regexp.Regexp
	seconds int64
}{
	{regexp.MustCompile(`(?i)^(second(s)?|sekunde(n)?)`), 1},
	{regexp.MustCompile(`(?i)^(minute[ns]?)`), minute},
	{regexp.MustCompile(`(?i)^(hour(s)?|stunde(n)?)`), hour},
	{regexp.MustCompile(`(?i)^(day(s)?|日|deň|dies|diena|dni|dní|den|dan|dag(en)?|dia|día|gün|nap|lá|dana|giorn[oi]|tag(e)?|zi(le)?|jour(s)?|días|dienos|päev|päivää|päivä|ημέρα|ημέρες|dzień|день|днів|дни|ден|laethanta|일)`), day},
	{regexp.MustCompile(`(?i)^(week(s)?|woche(n)?)`), week},
	{regexp.MustCompile(`(?i)^(month(s)?|maand(en)?|měsíců|mesi|kuud|ay|md\.|mdr\.|mois|monat(e)?|meses|mēneši|mesec[ai]|míonna|måneder|місяців|месеца|mjeseci|miesiące|kuukautta|μήνες|luni|mėnesiai|månader|mánuðir|hónap|месяцы|mesos|ヶ月)`), month},
	{regexp.MustCompile(`(?i)^(year(s)?|jahr(e)?|anno|année|anni|gads|gadi|an|ár|jaar(en)?|rok|lat|év|ani|år|років|urte|año|ano|yıl|blianta|bliain|let|aastat|urte|aasta|godin[ae]?|έτος|έτη|vuosi|vuotta|metai|год|годы|рік|年|년|سنة)`), year},
}

var (
	oneDayPhrase  = regexp.MustCompile(`^(1 á dag|1 egun bat)`)
	oneYearPhrase = regexp.MustCompile(`^1 urte bat`)
)

// DeclaredExpirySeconds converts a declared retention period to seconds.
// OneTrust declares whole days, with "0" meaning a few seconds. The other
// CMPs declare "<count> <unit>" pairs such as "1 year 2 months"; a trailing
// count without a unit is ignored.
func DeclaredExpirySeconds(expiry string, cmp int) (int64, error) {
	t := strings.ToLower(strings.TrimSpace(expiry))
	if t == "" {
		return 0, fmt.Errorf("%w: empty", ErrUnknownExpiry)
	}

	if cmp == crawldb.OneTrust {
		if t == "0" {
			return minute, nil
		}
		days, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrUnknownExpiry, expiry)
		}
		return days * day, nil
	}

	switch {
	case t == "less than 1 minute":
		return minute, nil
	case oneDayPhrase.MatchString(t):
		return day, nil
	case oneYearPhrase.MatchString(t):
		return year, nil
	}

	fields := strings.Fields(t)
	var total int64
	for i := 0; i+1 < len(fields); i += 2 {
		count, err := strconv.ParseInt(fields[i], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrUnknownExpiry, expiry)
		}
		unit, ok := unitSeconds(fields[i+1])
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownExpiry, expiry)
		}
		total += count * unit
	}
	if len(fields)%2 == 1 {
		if _, err := strconv.ParseInt(fields[len(fields)-1], 10, 64); err != nil {
			return 0, fmt.Errorf("%w: %q", ErrUnknownExpiry, expiry)
		}
	}
	return total, nil
}

func unitSeconds(word string) (int64, bool) {
	for _, u := range intervalUnits {
		if u.pattern.MatchString(word) {
			return u.seconds, true
		}
	}
	return 0, false
}

// FormatSeconds renders a number of seconds as "D day(s), H:MM:SS". Negative
// values borrow a whole day, so -5 is "-1 day, 23:59:55".
func FormatSeconds(sec int64) string {
	days := sec / day
	rem := sec % day
	if rem < 0 {
		days--
		rem += day
	}
	clock := fmt.Sprintf("%d:%02d:%02d", rem/hour, rem%hour/minute, rem%minute)
	switch days {
	case 0:
		return clock
	case 1, -1:
		return fmt.Sprintf("%d day, %s", days, clock)
	default:
		return fmt.Sprintf("%d days, %s", days, clock)
	}
}
