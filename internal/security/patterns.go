package security

import "strings"

// User-agent fragments of known automation: headless browsers, scraping
// libraries, generic HTTP clients and crawlers. Matched
// case-insensitively against the whole user-agent string.
var botSignatures = []string{
	"bot",
	"crawler",
	"spider",
	"scraper",
	"curl",
	"wget",
	"python-requests",
	"python-urllib",
	"scrapy",
	"go-http-client",
	"java/",
	"libwww",
	"httpclient",
	"okhttp",
	"headlesschrome",
	"phantomjs",
	"selenium",
	"puppeteer",
	"playwright",
}

// Exploit-probe fragments matched against the request path, query and
// body: path traversal to config/secret files, admin panel scans, SQL
// injection keywords and inline script tags.
var suspiciousSignatures = []string{
	"../",
	"..\\",
	"/etc/passwd",
	".env",
	".git",
	"wp-admin",
	"wp-login",
	"phpmyadmin",
	"union select",
	"drop table",
	"insert into",
	"xp_cmdshell",
	"<script",
	"base64_decode",
	"eval(",
}

func matchesBotSignature(userAgent string) bool {
	// An absent user-agent is treated as bot-like.
	if strings.TrimSpace(userAgent) == "" {
		return true
	}

	lowered := strings.ToLower(userAgent)
	for _, signature := range botSignatures {
		if strings.Contains(lowered, signature) {
			return true
		}
	}
	return false
}

func matchesSuspiciousSignature(content string) bool {
	lowered := strings.ToLower(content)
	for _, signature := range suspiciousSignatures {
		if strings.Contains(lowered, signature) {
			return true
		}
	}
	return false
}
