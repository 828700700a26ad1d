package web_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/effective-security/agenttools/tools"
	"github.com/effective-security/agenttools/tools/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html>
<head><title>Sample</title><style>body { color: red; }</style></head>
<body>
<script>console.log("hidden");</script>
<h1>Welcome</h1>
<p>First paragraph.</p>
<p>Second paragraph.</p>
<a href="/about">About Us</a>
<a href="https://example.com">Example</a>
<img src="/logo.png" alt="Logo"/>
<img src="/banner.jpg"/>
</body>
</html>`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, samplePage)
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "q=%s&page=%s", r.URL.Query().Get("q"), r.URL.Query().Get("page"))
	})
	mux.HandleFunc("/submit", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		fmt.Fprintf(w, "name=%s", r.PostForm.Get("name"))
	})
	mux.HandleFunc("/file.bin", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("binary content"))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func findTool(t *testing.T, list []tools.ITool, name string) tools.ITool {
	t.Helper()
	for _, tool := range list {
		if tool.Name() == name {
			return tool
		}
	}
	t.Fatalf("tool not found: %s", name)
	return nil
}

func callTool(t *testing.T, tool tools.ITool, input string, out any) {
	t.Helper()
	res, err := tool.Call(context.Background(), input)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(res), out))
}

func Test_FetchAndExtract(t *testing.T) {
	srv := newServer(t)
	list := web.NewProvider().WithHTTPClient(srv.Client()).Tools()
	require.Len(t, list, 8)

	var page web.PageResult
	callTool(t, findTool(t, list, "fetch_webpage"),
		`{"url": "`+srv.URL+`"}`, &page)
	assert.Contains(t, page.Content, "<h1>Welcome</h1>")

	callTool(t, findTool(t, list, "extract_text_from_url"),
		`{"url": "`+srv.URL+`"}`, &page)
	assert.Contains(t, page.Content, "Welcome")
	assert.Contains(t, page.Content, "First paragraph.")
	assert.NotContains(t, page.Content, "console.log")
	assert.NotContains(t, page.Content, "color: red")

	var links web.LinksResult
	callTool(t, findTool(t, list, "extract_links"),
		`{"url": "`+srv.URL+`"}`, &links)
	require.Len(t, links.Links, 2)
	assert.Equal(t, web.Link{Text: "About Us", Href: "/about"}, links.Links[0])

	var images web.ImagesResult
	callTool(t, findTool(t, list, "extract_images"),
		`{"url": "`+srv.URL+`"}`, &images)
	require.Len(t, images.Images, 2)
	assert.Equal(t, web.Image{Alt: "Logo", Src: "/logo.png"}, images.Images[0])

	var elements web.ElementsResult
	callTool(t, findTool(t, list, "find_elements"),
		`{"url": "`+srv.URL+`", "selector": "p"}`, &elements)
	assert.Equal(t, []string{"First paragraph.", "Second paragraph."}, elements.Elements)
}

func Test_Requests(t *testing.T) {
	srv := newServer(t)
	list := web.NewProvider().WithHTTPClient(srv.Client()).Tools()

	var page web.PageResult
	callTool(t, findTool(t, list, "make_get_request"),
		`{"url": "`+srv.URL+`/echo", "params": "q=golang, page=2"}`, &page)
	assert.Equal(t, "q=golang&page=2", page.Content)

	callTool(t, findTool(t, list, "make_post_request"),
		`{"url": "`+srv.URL+`/submit", "data": "name=alice"}`, &page)
	assert.Equal(t, "name=alice", page.Content)

	_, err := findTool(t, list, "make_get_request").Call(context.Background(),
		`{"url": "`+srv.URL+`/missing"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	_, err = findTool(t, list, "make_get_request").Call(context.Background(),
		`{"url": "not a url"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid request")
}

func Test_Download(t *testing.T) {
	srv := newServer(t)
	list := web.NewProvider().WithHTTPClient(srv.Client()).Tools()

	out := filepath.Join(t.TempDir(), "dl", "file.bin")
	var res web.DownloadResult
	callTool(t, findTool(t, list, "download_file"),
		`{"url": "`+srv.URL+`/file.bin", "output_path": "`+out+`"}`, &res)
	assert.Equal(t, int64(len("binary content")), res.SizeBytes)

	bs, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "binary content", string(bs))
}
