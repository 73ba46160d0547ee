// Package useragent classifies HTTP callers by their User-Agent header.
//
// A Classifier sorts every user-agent into one of three classes:
//
//   - ClassAllowCrawler: a known, beneficial search or link-preview crawler
//     (Googlebot, Bingbot, ...). Callers in this class skip blocking and rate
//     limiting entirely.
//   - ClassBlock: the string contains a denied substring (python-requests,
//     curl/, scrapy, ...) or matches a scraper signature such as a generic
//     "bot" token not preceded by "google", or a headless browser framework.
//   - ClassUnclassified: everything else, including an empty header.
//
// Matching is case-insensitive. The allow-list is always consulted first, so
// "Googlebot" wins even when the same string also contains a denied token.
//
// Rules can be replaced at runtime from YAML:
//
//	crawlers: [googlebot, bingbot]
//	denied:   [python-requests, curl/]
//	signatures:
//	  - pattern: bot
//	    not_after: google
//	  - pattern: headless
//
// Verdicts are memoized in a bounded LRU because the same few hundred
// user-agents account for nearly all traffic.
package useragent
