package crawldb

// Rows marked as deletion events never reach the analysis. The matched query is
// ordered by visit, cookie name and timestamp; the matcher relies on it.
const matchedCookiesQuery = `
SELECT DISTINCT j.visit_id,
        COALESCE(s.site_url, ''),
        COALESCE(ccr.cmp_type, -1),
        COALESCE(ccr.crawl_state, -1),
        COALESCE(j.name, ''),
        COALESCE(j.host, ''),
        COALESCE(j.path, ''),
        COALESCE(c.domain, ''),
        COALESCE(j.value, ''),
        COALESCE(c.purpose, ''),
        COALESCE(c.cat_id, -1),
        COALESCE(c.cat_name, ''),
        COALESCE(c.type_name, ''),
        COALESCE(c.type_id, 0),
        COALESCE(c.expiry, ''),
        COALESCE(j.expiry, ''),
        COALESCE(j.is_session, 0),
        COALESCE(j.is_http_only, 0),
        COALESCE(j.is_host_only, 0),
        COALESCE(j.is_secure, 0),
        COALESCE(j.same_site, ''),
        COALESCE(j.time_stamp, '')
FROM consent_data c
JOIN javascript_cookies j ON c.visit_id = j.visit_id AND c.name = j.name
JOIN site_visits s ON s.visit_id = c.visit_id
JOIN consent_crawl_results ccr ON ccr.visit_id = c.visit_id
WHERE j.record_type <> 'deleted'
ORDER BY j.visit_id, j.name, j.time_stamp ASC`

const consentEntriesQuery = `
SELECT DISTINCT c.visit_id,
        COALESCE(s.site_url, ''),
        COALESCE(ccr.cmp_type, -1),
        COALESCE(ccr.crawl_state, -1),
        COALESCE(c.name, ''),
        COALESCE(c.domain, ''),
        COALESCE(c.purpose, ''),
        COALESCE(c.cat_id, -1),
        COALESCE(c.cat_name, ''),
        COALESCE(c.type_name, ''),
        COALESCE(c.type_id, 0),
        COALESCE(c.expiry, '')
FROM consent_data c
JOIN site_visits s ON s.visit_id = c.visit_id
JOIN consent_crawl_results ccr ON ccr.visit_id = c.visit_id
ORDER BY c.visit_id`

const observedCookiesQuery = `
SELECT DISTINCT j.visit_id,
        COALESCE(s.site_url, ''),
        COALESCE(ccr.cmp_type, -1),
        COALESCE(ccr.crawl_state, -1),
        COALESCE(j.name, ''),
        COALESCE(j.host, ''),
        COALESCE(j.path, ''),
        COALESCE(j.value, ''),
        COALESCE(j.expiry, ''),
        COALESCE(j.is_session, 0),
        COALESCE(j.is_http_only, 0),
        COALESCE(j.is_host_only, 0),
        COALESCE(j.is_secure, 0),
        COALESCE(j.same_site, ''),
        COALESCE(j.time_stamp, '')
FROM javascript_cookies j
JOIN site_visits s ON s.visit_id = j.visit_id
JOIN consent_crawl_results ccr ON ccr.visit_id = j.visit_id
WHERE j.record_type <> 'deleted'
ORDER BY j.visit_id, j.name, j.time_stamp ASC`

const consentCookieSitesQuery = `
SELECT DISTINCT s.site_url
FROM javascript_cookies j
JOIN site_visits s ON s.visit_id = j.visit_id
JOIN consent_crawl_results cs ON j.visit_id = cs.visit_id AND cs.crawl_state = 0
WHERE j.name = 'CookieConsent'`

const interactedClause = ` AND j.value LIKE '%necessary:true%'`

const rejectedClause = ` AND j.value LIKE '%necessary:true%'
  AND j.value LIKE '%preferences:false%'
  AND j.value LIKE '%statistics:false%'
  AND j.value LIKE '%marketing:false%'`

const successfulCrawlsQuery = `
SELECT COUNT(DISTINCT visit_id) FROM consent_crawl_results WHERE crawl_state = 0`

const successfulCrawlsByCMPQuery = `
SELECT cmp_type, COUNT(DISTINCT visit_id) FROM consent_crawl_results
WHERE crawl_state = 0 AND cmp_type >= 0
GROUP BY cmp_type`
