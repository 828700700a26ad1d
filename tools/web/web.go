// Package web provides HTTP and web scraping tools.
package web

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/agenttools/tools"
)

// PluginName is the namespace the tools are registered under.
const PluginName = "web"

// DefaultTimeout applies to page fetches and API requests.
const DefaultTimeout = 10 * time.Second

// DefaultDownloadTimeout applies to file downloads.
const DefaultDownloadTimeout = 30 * time.Second

type URLRequest struct {
	URL string `json:"url" validate:"required,url" jsonschema:"title=URL,description=URL of the webpage."`
}

type DownloadRequest struct {
	URL        string `json:"url" validate:"required,url" jsonschema:"title=URL,description=URL of the file to download."`
	OutputPath string `json:"output_path" validate:"required" jsonschema:"title=Output Path,description=Path where the file will be saved."`
}

type GetRequest struct {
	URL    string `json:"url" validate:"required,url" jsonschema:"title=URL,description=URL of the API endpoint."`
	Params string `json:"params,omitempty" jsonschema:"title=Params,description=Query parameters as comma-separated key=value pairs."`
}

type PostRequest struct {
	URL  string `json:"url" validate:"required,url" jsonschema:"title=URL,description=URL of the API endpoint."`
	Data string `json:"data,omitempty" jsonschema:"title=Data,description=Form data as comma-separated key=value pairs."`
}

type FindElementsRequest struct {
	URL      string `json:"url" validate:"required,url" jsonschema:"title=URL,description=URL of the webpage."`
	Selector string `json:"selector" validate:"required" jsonschema:"title=Selector,description=CSS selector like 'h1' or 'div.article p'."`
}

type PageResult struct {
	Status  string `json:"status"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

type LinksResult struct {
	Status string `json:"status"`
	URL    string `json:"url"`
	Links  []Link `json:"links"`
}

type Image struct {
	Alt string `json:"alt"`
	Src string `json:"src"`
}

type ImagesResult struct {
	Status string  `json:"status"`
	URL    string  `json:"url"`
	Images []Image `json:"images"`
}

type DownloadResult struct {
	Status    string `json:"status"`
	URL       string `json:"url"`
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
}

type ElementsResult struct {
	Status   string   `json:"status"`
	URL      string   `json:"url"`
	Selector string   `json:"selector"`
	Elements []string `json:"elements"`
}

// Provider holds the HTTP clients shared by the web tools.
type Provider struct {
	client         *http.Client
	downloadClient *http.Client
}

func NewProvider() *Provider {
	return &Provider{
		client:         &http.Client{Timeout: DefaultTimeout},
		downloadClient: &http.Client{Timeout: DefaultDownloadTimeout},
	}
}

// WithHTTPClient replaces both clients, used in tests.
func (p *Provider) WithHTTPClient(client *http.Client) *Provider {
	p.client = client
	p.downloadClient = client
	return p
}

// Tools returns the web tool set.
func (p *Provider) Tools() []tools.ITool {
	return []tools.ITool{
		tools.MustFunc("fetch_webpage",
			"Fetch the raw HTML content of a webpage.",
			p.runFetch),
		tools.MustFunc("extract_text_from_url",
			"Extract all visible text from a webpage, with scripts and styles removed.",
			p.runExtractText),
		tools.MustFunc("extract_links",
			"Extract all hyperlinks from a webpage.",
			p.runExtractLinks),
		tools.MustFunc("extract_images",
			"Extract all image URLs from a webpage.",
			p.runExtractImages),
		tools.MustFunc("download_file",
			"Download a file from a URL and save it locally.",
			p.runDownload),
		tools.MustFunc("make_get_request",
			"Make an HTTP GET request with optional comma-separated key=value query parameters.",
			p.runGet),
		tools.MustFunc("make_post_request",
			"Make an HTTP POST request with optional comma-separated key=value form data.",
			p.runPost),
		tools.MustFunc("find_elements",
			"Find all elements matching a CSS selector on a webpage and return their text.",
			p.runFindElements),
	}
}

// New returns the web tool set with default clients.
func New() []tools.ITool {
	return NewProvider().Tools()
}

func (p *Provider) runFetch(ctx context.Context, req *URLRequest) (*PageResult, error) {
	body, err := p.get(ctx, req.URL, nil)
	if err != nil {
		return nil, err
	}
	return &PageResult{Status: "ok", URL: req.URL, Content: string(body)}, nil
}

func (p *Provider) runExtractText(ctx context.Context, req *URLRequest) (*PageResult, error) {
	doc, err := p.getDocument(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	doc.Find("script,style").Remove()

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return &PageResult{
		Status:  "ok",
		URL:     req.URL,
		Content: strings.Join(lines, "\n"),
	}, nil
}

func (p *Provider) runExtractLinks(ctx context.Context, req *URLRequest) (*LinksResult, error) {
	doc, err := p.getDocument(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	res := &LinksResult{Status: "ok", URL: req.URL}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		res.Links = append(res.Links, Link{
			Text: strings.TrimSpace(s.Text()),
			Href: href,
		})
	})
	return res, nil
}

func (p *Provider) runExtractImages(ctx context.Context, req *URLRequest) (*ImagesResult, error) {
	doc, err := p.getDocument(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	res := &ImagesResult{Status: "ok", URL: req.URL}
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || src == "" {
			return
		}
		alt := s.AttrOr("alt", "")
		res.Images = append(res.Images, Image{Alt: alt, Src: src})
	})
	return res, nil
}

func (p *Provider) runDownload(ctx context.Context, req *DownloadRequest) (*DownloadResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	resp, err := p.downloadClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "failed to download file")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, errors.Errorf("request failed with status %s", resp.Status)
	}

	if err := ensureParent(req.OutputPath); err != nil {
		return nil, err
	}
	f, err := os.Create(req.OutputPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file")
	}
	defer f.Close()

	size, err := io.Copy(f, resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to save file")
	}
	return &DownloadResult{
		Status:    "ok",
		URL:       req.URL,
		Path:      absPath(req.OutputPath),
		SizeBytes: size,
	}, nil
}

func (p *Provider) runGet(ctx context.Context, req *GetRequest) (*PageResult, error) {
	body, err := p.get(ctx, req.URL, parsePairs(req.Params))
	if err != nil {
		return nil, err
	}
	return &PageResult{Status: "ok", URL: req.URL, Content: string(body)}, nil
}

func (p *Provider) runPost(ctx context.Context, req *PostRequest) (*PageResult, error) {
	form := url.Values{}
	for k, v := range parsePairs(req.Data) {
		form.Set(k, v)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "failed to make POST request")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, errors.Errorf("request failed with status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}
	return &PageResult{Status: "ok", URL: req.URL, Content: string(body)}, nil
}

func (p *Provider) runFindElements(ctx context.Context, req *FindElementsRequest) (*ElementsResult, error) {
	doc, err := p.getDocument(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	res := &ElementsResult{
		Status:   "ok",
		URL:      req.URL,
		Selector: req.Selector,
	}
	doc.Find(req.Selector).Each(func(_ int, s *goquery.Selection) {
		res.Elements = append(res.Elements, strings.TrimSpace(s.Text()))
	})
	return res, nil
}

func (p *Provider) get(ctx context.Context, rawURL string, params map[string]string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	if len(params) > 0 {
		q := httpReq.URL.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch URL")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, errors.Errorf("request failed with status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}
	return body, nil
}

func (p *Provider) getDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	body, err := p.get(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse HTML")
	}
	return doc, nil
}

// parsePairs parses "k1=v1,k2=v2" into a map. Pairs without '=' are skipped.
func parsePairs(s string) map[string]string {
	res := map[string]string{}
	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		res[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return res
}

func ensureParent(path string) error {
	parent := filepath.Dir(path)
	if parent != "" && parent != "." {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return errors.Wrap(err, "failed to create parent directory")
		}
	}
	return nil
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
