package dom

import (
	"net/url"
	"strings"
	"testing"

	"github.com/dszqbsm/gascan/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html>
<html>
<head>
  <script src="https://www.google-analytics.com/analytics.js"></script>
  <script>
    ga('create', 'UA-99999999-2', 'auto');
    ga('send', 'pageview');
  </script>
  <script src="">var x = "UA-111111-1";</script>
</head>
<body>
  <a href="/about#team">About</a>
  <a href="https://other.example.org/">Other</a>
  <a href="mailto:hi@example.com">Mail</a>
  <a href="/about">About again</a>
  <template id="row"><script>var inert = "UA-TEMPLA-1";</script></template>
  <script type="text/javascript">var tracker = "UA-ABCDEF-7";</script>
  <script>var nothing = 1;</script>
</body>
</html>`

type parsed interface {
	Scripts() []scanner.Script
}

func TestParse_Scripts(t *testing.T) {
	parsers := map[string]func() (parsed, error){
		"goquery": func() (parsed, error) { return Parse(strings.NewReader(page)) },
		"xpath":   func() (parsed, error) { return ParseXPath(strings.NewReader(page)) },
	}
	for name, parse := range parsers {
		t.Run(name, func(t *testing.T) {
			d, err := parse()
			require.NoError(t, err)

			scripts := d.Scripts()
			require.Len(t, scripts, 5)
			assert.True(t, scripts[0].External())
			assert.False(t, scripts[1].External())
			assert.Contains(t, scripts[1].Text(), "UA-99999999-2")
			// 空的src属性同样视为外部脚本
			assert.True(t, scripts[2].External())

			for _, s := range scripts {
				assert.NotContains(t, s.Text(), "UA-TEMPLA-1")
			}

			assert.Equal(t, []string{"UA-99999999-2", "UA-ABCDEF-7"}, scanner.Collect(d))
		})
	}
}

func TestParse_NestedTemplate(t *testing.T) {
	const html = `<template><div><script>var a = "UA-123456-1";</script></div></template>` +
		`<script>ga('create','UA-654321-2')</script>`

	d, err := Parse(strings.NewReader(html))
	require.NoError(t, err)
	assert.Equal(t, []string{"UA-654321-2"}, scanner.Collect(d))

	x, err := ParseXPath(strings.NewReader(html))
	require.NoError(t, err)
	assert.Equal(t, []string{"UA-654321-2"}, scanner.Collect(x))
}

func TestDocument_Links(t *testing.T) {
	d, err := Parse(strings.NewReader(page))
	require.NoError(t, err)

	base, err := url.Parse("https://www.example.com/index.html")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://www.example.com/about",
		"https://other.example.org/",
	}, d.Links(base))
}
