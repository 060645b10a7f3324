package cmd

const DESCRIPTION = `
cookieaudit inspects the database of a consent crawl and reports
potential GDPR violations: cookies with wrong or contradictory
labels, undeclared cookies, retention periods longer than declared,
and cookies stored before or despite the user's consent choice.
`

const (
	WrongLabelDescription = `The wrong-label command reports known cookies, Google Analytics
by default, that the consent notice declares with a purpose other
than the expected one.

Example:
        cookieaudit wrong-label crawl.sqlite

`
	MajorityDescription = `The majority command counts the labels every (name, domain) pair
receives across all sites and reports declarations that deviate
from a clear majority.

Example:
        cookieaudit majority crawl.sqlite

`
	ExpiryDescription = `The expiry command compares the declared retention period of
each cookie with the lifetime observed in the crawl and reports
cookies that live much longer than declared, or whose session
status was declared wrongly.

Example:
        cookieaudit --progress expiry crawl.sqlite

`
	UnclassifiedDescription = `The unclassified command reports declared cookies that were left
without a purpose.

Example:
        cookieaudit unclassified crawl.sqlite

`
	UndeclaredDescription = `The undeclared command reports cookies observed on sites with a
working consent notice that the notice never declares.

Example:
        cookieaudit undeclared crawl.sqlite

`
	ContradictoryDescription = `The contradictory command reports cookies that the same site
declares more than once with different purposes.

Example:
        cookieaudit contradictory crawl.sqlite

`
	ImplicitConsentDescription = `The implicit-consent command reports cookies stored while the
crawler never interacted with the consent notice, grouped by label.
Results for Cookiebot sites without a stored choice are written
separately.

Example:
        cookieaudit implicit-consent crawl.sqlite

`
	IgnoredChoicesDescription = `The ignored-choices command reports cookies stored on Cookiebot
sites after every optional purpose was rejected, grouped by label.

Example:
        cookieaudit ignored-choices crawl.sqlite

`
	UndetectedDescription = `The undetected command lists declared browser cookies that were
never observed on the site.

Example:
        cookieaudit undetected crawl.sqlite

`
	AllDescription = `The all command runs every detection method on the crawl. The
database is read once and the methods run concurrently.

Example:
        cookieaudit -o results all crawl.sqlite

`
	CookieStatsDescription = `The cookie-stats command prints the ratio of first- and
third-party cookies and the number of unique cookie names and
domains, for declared and for observed cookies.

Example:
        cookieaudit cookie-stats crawl.sqlite

`
	SummaryDescription = `The summary command aggregates the reports of all methods in the
output directory. The number of successfully crawled sites is read
from the database, or given with --total.

Example:
        cookieaudit summary crawl.sqlite
                OR
        cookieaudit summary --total 29398 --cookiebot-total 9446

`
	DedupDescription = `The dedup command reads url lists, one url per line, and keeps
only the first url of every domain.

Example:
        cookieaudit domains dedup --output sites.txt list1.txt list2.txt

`
	DiffDescription = `The diff command lists the domains of a tranco ranking that are
missing from a base ranking.

Example:
        cookieaudit domains diff --output new_domains.txt top-1m.csv europe.csv

`
)
