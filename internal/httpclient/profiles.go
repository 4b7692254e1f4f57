// Package httpclient provides a plain HTTP client that presents a
// browser-like fingerprint. It serves the requests the headless renderer
// does not make itself: robots.txt retrieval and non-rendered fallback
// fetches. Document platforms tend to reject obvious bot clients even
// for those.
package httpclient

import (
	"math/rand"
	"net/http"

	utls "github.com/refraction-networking/utls"
)

// Profile pairs a header set with the TLS ClientHello it should
// accompany, so the two layers tell the same story.
type Profile struct {
	Name            string
	ClientHello     utls.ClientHelloID
	UserAgent       string
	Accept          string
	AcceptLanguage  string
	SecChUA         string
	SecChUAPlatform string
	SecChUAMobile   string
}

var profiles = []Profile{
	{
		Name:            "chrome_131_win",
		ClientHello:     utls.HelloChrome_131,
		UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		Accept:          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
		AcceptLanguage:  "en-US,en;q=0.9",
		SecChUA:         `"Google Chrome";v="131", "Chromium";v="131", "Not_A Brand";v="24"`,
		SecChUAPlatform: `"Windows"`,
		SecChUAMobile:   "?0",
	},
	{
		Name:            "chrome_131_mac",
		ClientHello:     utls.HelloChrome_131,
		UserAgent:       "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		Accept:          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
		AcceptLanguage:  "en-US,en;q=0.9",
		SecChUA:         `"Google Chrome";v="131", "Chromium";v="131", "Not_A Brand";v="24"`,
		SecChUAPlatform: `"macOS"`,
		SecChUAMobile:   "?0",
	},
	{
		Name:           "firefox_120",
		ClientHello:    utls.HelloFirefox_120,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:134.0) Gecko/20100101 Firefox/134.0",
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		AcceptLanguage: "en-US,en;q=0.5",
	},
}

// pickProfile selects a random browser profile.
func pickProfile(rnd *rand.Rand) Profile {
	return profiles[rnd.Intn(len(profiles))]
}

// apply sets the profile's headers on a request.
func (p Profile) apply(req *http.Request) {
	req.Header.Set("User-Agent", p.UserAgent)
	req.Header.Set("Accept", p.Accept)
	req.Header.Set("Accept-Language", p.AcceptLanguage)
	if p.SecChUA != "" {
		req.Header.Set("Sec-Ch-Ua", p.SecChUA)
		req.Header.Set("Sec-Ch-Ua-Platform", p.SecChUAPlatform)
		req.Header.Set("Sec-Ch-Ua-Mobile", p.SecChUAMobile)
	}
	req.Header.Set("Sec-Fetch-Site", "none")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}
