// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/jeffreyroshan2006-crypto/scholarsync-ai/pkg/types"
)

// wolframAPIBase is the WolframAlpha Full Results endpoint. Declared as a
// var so tests can substitute an httptest server.
var wolframAPIBase = "https://api.wolframalpha.com/v2/query"

const (
	wolframAuthor       = "WolframAlpha Computational Engine"
	wolframInputURL     = "https://www.wolframalpha.com/input?i="
	defaultPodTitle     = "Result"
	defaultPodScanner   = "computation"
	noComputeResult     = "No result found"
	maxWolframBodyBytes = 8 << 20
)

// WolframBackend queries the WolframAlpha API. It needs an app id.
type WolframBackend struct {
	Client    *http.Client
	UserAgent string
	AppID     string
	Log       *zap.Logger
}

// Pod is one result section of a WolframAlpha answer.
type Pod struct {
	ID      string   `json:"id" yaml:"id"`
	Title   string   `json:"title" yaml:"title"`
	Scanner string   `json:"scanner" yaml:"scanner"`
	Primary bool     `json:"primary" yaml:"primary"`
	Subpods []Subpod `json:"subpods" yaml:"subpods"`
}

// Subpod holds one plaintext value within a pod.
type Subpod struct {
	Title     string `json:"title" yaml:"title"`
	Plaintext string `json:"plaintext" yaml:"plaintext"`
}

// ComputeResult is the primary answer to a computational query along with
// every pod WolframAlpha returned.
type ComputeResult struct {
	Result string `json:"result" yaml:"result"`
	Pods   []Pod  `json:"pods" yaml:"pods"`
}

// Source returns the backend identifier.
func (b *WolframBackend) Source() types.Source { return types.SourceWolfram }

// Available reports whether an app id is configured.
func (b *WolframBackend) Available() bool { return b.AppID != "" }

// Search turns each pod with text into one paper. WolframAlpha decides how
// many pods to return, so limit is ignored.
func (b *WolframBackend) Search(ctx context.Context, query string, _ int) []types.Paper {
	pods, ok, err := b.query(ctx, query)
	if err != nil {
		logFailure(b.Log, b.Source(), "search", query, err)
		return nil
	}
	if !ok {
		return nil
	}

	pageURL := wolframInputURL + url.QueryEscape(query)
	var papers []types.Paper
	for _, pod := range pods {
		content := pod.text()
		if content == "" {
			continue
		}
		title := pod.Title
		if title == "" {
			title = defaultPodTitle
		}
		category := pod.Scanner
		if category == "" {
			category = defaultPodScanner
		}
		papers = append(papers, types.Paper{
			ID:       newID("wolfram"),
			Title:    title,
			Authors:  []string{wolframAuthor},
			Abstract: content,
			URL:      pageURL,
			Source:   types.SourceWolfram,
			Category: category,
		})
	}
	return papers
}

// Compute returns the primary pod's first value. It returns nil when the
// request fails or WolframAlpha cannot interpret the query.
func (b *WolframBackend) Compute(ctx context.Context, query string) *ComputeResult {
	pods, ok, err := b.query(ctx, query)
	if err != nil {
		logFailure(b.Log, b.Source(), "compute", query, err)
		return nil
	}
	if !ok {
		return nil
	}

	result := noComputeResult
	for _, pod := range pods {
		if !pod.Primary {
			continue
		}
		if len(pod.Subpods) > 0 && pod.Subpods[0].Plaintext != "" {
			result = pod.Subpods[0].Plaintext
		}
		break
	}
	return &ComputeResult{Result: result, Pods: pods}
}

// query performs the API call. ok is false when WolframAlpha reports
// success=false, which is an empty answer rather than a fault.
func (b *WolframBackend) query(ctx context.Context, input string) (pods []Pod, ok bool, err error) {
	if b.AppID == "" {
		return nil, false, fmt.Errorf("missing WolframAlpha app id")
	}

	params := url.Values{
		"input":       {input},
		"appid":       {b.AppID},
		"format":      {"plaintext"},
		"output":      {"JSON"},
		"reinterpret": {"true"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wolframAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", b.UserAgent)

	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("WolframAlpha API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("WolframAlpha API returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWolframBodyBytes))
	if err != nil {
		return nil, false, fmt.Errorf("reading WolframAlpha response: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, false, fmt.Errorf("parsing WolframAlpha response: invalid JSON")
	}

	// success arrives as a JSON bool or as the string "true"/"false"
	// depending on API version; Bool() accepts both.
	qr := gjson.GetBytes(body, "queryresult")
	if !qr.Exists() || !qr.Get("success").Bool() {
		orNop(b.Log).Debug("wolfram query not understood", zap.String("query", input))
		return nil, false, nil
	}
	return parsePods(qr.Get("pods")), true, nil
}

func parsePods(arr gjson.Result) []Pod {
	var pods []Pod
	arr.ForEach(func(_, v gjson.Result) bool {
		pod := Pod{
			ID:      v.Get("id").String(),
			Title:   strings.TrimSpace(v.Get("title").String()),
			Scanner: v.Get("scanner").String(),
			Primary: v.Get("primary").Bool(),
		}
		v.Get("subpods").ForEach(func(_, sv gjson.Result) bool {
			pod.Subpods = append(pod.Subpods, Subpod{
				Title:     sv.Get("title").String(),
				Plaintext: sv.Get("plaintext").String(),
			})
			return true
		})
		pods = append(pods, pod)
		return true
	})
	return pods
}

// text joins the pod's non-empty plaintext values with newlines.
func (p Pod) text() string {
	var parts []string
	for _, s := range p.Subpods {
		if s.Plaintext != "" {
			parts = append(parts, s.Plaintext)
		}
	}
	return strings.Join(parts, "\n")
}
