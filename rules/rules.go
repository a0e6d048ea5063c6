//go:build ruleguard

// Package gorules contains custom lint rules for golangci-lint via ruleguard.
package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// WaitGroupGo detects goroutines that pair Add(1) with a deferred Done and
// suggests sync.WaitGroup.Go (Go 1.25+).
func WaitGroupGo(m dsl.Matcher) {
	m.Match(`go func() { defer $wg.Done(); $*_ }()`).
		Where(m["wg"].Type.Is("*sync.WaitGroup")).
		Report("use $wg.Go(func() { ... }) instead of go func() { defer $wg.Done(); ... }()").
		Suggest("$wg.Go(func() { $*_ })")

	m.Match(`$wg.Add(1)`).
		Where(m["wg"].Type.Is("*sync.WaitGroup")).
		Report("$wg.Add(1) usually precedes a goroutine; use $wg.Go instead")
}

// TestingContext detects context.Background() and context.TODO() in tests.
// t.Context() is canceled when the test ends, so refresh tasks started by a
// test do not outlive it.
func TestingContext(m dsl.Matcher) {
	m.Match(`context.Background()`, `context.TODO()`).
		Where(m.File().Name.Matches(`_test\.go$`)).
		Report("use t.Context() instead of $$ in tests")
}

// DateOnlyLayout detects the literal date layout.
func DateOnlyLayout(m dsl.Matcher) {
	m.Match(`$t.Format("2006-01-02")`).
		Report(`use $t.Format(time.DateOnly)`).
		Suggest(`$t.Format(time.DateOnly)`)

	m.Match(`time.Parse("2006-01-02", $s)`).
		Report(`use time.Parse(time.DateOnly, $s)`).
		Suggest(`time.Parse(time.DateOnly, $s)`)
}

// SharedHTTPClient flags ad-hoc HTTP clients. Upstream requests go through
// internal/httpclient so they carry the User-Agent, the default timeout and
// the request metrics.
func SharedHTTPClient(m dsl.Matcher) {
	m.Match(`http.Get($*_)`, `http.Head($*_)`, `http.Post($*_)`, `http.DefaultClient.Do($*_)`).
		Where(!m.File().PkgPath.Matches(`internal/httpclient`) && !m.File().Name.Matches(`_test\.go$`)).
		Report("use httpclient.Client instead of $$")

	m.Match(`&http.Client{$*_}`, `http.Client{$*_}`).
		Where(!m.File().PkgPath.Matches(`internal/httpclient|pkg/bing`) && !m.File().Name.Matches(`_test\.go$`)).
		Report("construct HTTP clients in internal/httpclient")
}

// TimeSince detects time.Now().Sub(x).
func TimeSince(m dsl.Matcher) {
	m.Match(`time.Now().Sub($t)`).
		Report(`use time.Since($t)`).
		Suggest(`time.Since($t)`)
}

// DirectFileWrite flags os.WriteFile in packages that persist snapshots and
// cached images; they write through a temp file and rename instead.
func DirectFileWrite(m dsl.Matcher) {
	m.Match(`os.WriteFile($*_)`).
		Where(m.File().PkgPath.Matches(`internal/(store|thumbcache|wallpaper)$`) && !m.File().Name.Matches(`_test\.go$`)).
		Report("write through a temp file and rename instead of os.WriteFile")
}
