package brands

import (
	"net/http"
	neturl "net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"

	"github.com/fuelscout/fuelscout-api/internal/models"
)

// FetchFavicon scrapes the brand's homepage for an icon link, falling
// back to /favicon.ico when no link tag is declared.
func FetchFavicon(client *http.Client, brand *models.Brand) (string, error) {
	resp, err := client.Get(brand.Url)
	if err != nil {
		return "", errors.Wrapf(err, "failed to fetch homepage for %s", brand.Name)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Newf("unexpected status %d from %s", resp.StatusCode, brand.Url)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse homepage for %s", brand.Name)
	}

	href := ""
	doc.Find("link[rel]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		rel, _ := sel.Attr("rel")
		if !strings.Contains(strings.ToLower(rel), "icon") {
			return true
		}
		if value, ok := sel.Attr("href"); ok && value != "" {
			href = value
			return false
		}
		return true
	})

	if href == "" {
		href = "/favicon.ico"
	}

	return absoluteURL(brand.Url, href)
}

func absoluteURL(base, href string) (string, error) {
	baseURL, err := neturl.Parse(base)
	if err != nil {
		return "", errors.Wrap(err, "invalid base url")
	}
	ref, err := neturl.Parse(href)
	if err != nil {
		return "", errors.Wrap(err, "invalid favicon url")
	}
	return baseURL.ResolveReference(ref).String(), nil
}
