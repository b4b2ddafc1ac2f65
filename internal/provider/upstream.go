// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"golang.org/x/net/html"
)

// maxDetail bounds the error text kept from an upstream error page.
const maxDetail = 512

// UpstreamError is a feed request that did not answer 200 OK. Detail is the
// human readable text of the response body, when there is any.
type UpstreamError struct {
	Feed       string
	URL        string
	StatusCode int
	Detail     string
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("%s feed: upstream returned %d %s",
		e.Feed, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// download GETs url and returns the body. Anything but 200 is an
// UpstreamError. There is no retry.
func download(ctx context.Context, client *http.Client, feed, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	log.WithFields(log.Fields{"feed": feed, "url": url}).Debug("downloading feed")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s feed: %w", feed, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{
			Feed:       feed,
			URL:        url,
			StatusCode: resp.StatusCode,
			Detail:     bodyText(body),
		}
	}

	log.WithFields(log.Fields{
		"feed": feed,
		"size": humanize.Bytes(uint64(len(body))),
	}).Info("downloaded feed")

	return body, nil
}

// bodyText extracts the visible text of an HTML error page. Bodies that are
// not HTML come back as their trimmed text.
func bodyText(body []byte) string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return truncate(strings.Join(strings.Fields(string(body)), " "))
	}

	var (
		words []string
		walk  func(*html.Node, bool)
	)
	walk = func(n *html.Node, inBody bool) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "head":
				return
			case "body":
				inBody = true
			}
		}
		if inBody && n.Type == html.TextNode {
			words = append(words, strings.Fields(n.Data)...)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inBody)
		}
	}
	walk(doc, false)

	return truncate(strings.Join(words, " "))
}

func truncate(s string) string {
	if len(s) <= maxDetail {
		return s
	}
	// Back off to a rune boundary.
	cut := maxDetail
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
