package mappers

import (
	"net/url"
	"strconv"
)

// PaginationLinks builds next/prev links by rewriting the page parameter of base.
func PaginationLinks(base *url.URL, page int, hasPrev, hasNext bool) map[string]string {
	links := map[string]string{}
	if hasPrev {
		links["prev"] = withPage(base, page-1)
	}
	if hasNext {
		links["next"] = withPage(base, page+1)
	}
	return links
}

func withPage(base *url.URL, page int) string {
	u := *base
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}
