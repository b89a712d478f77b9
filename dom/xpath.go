package dom

import (
	"io"

	"github.com/antchfx/htmlquery"
	"github.com/dszqbsm/gascan/scanner"
	"golang.org/x/net/html"
)

// 基于htmlquery的文档
type XPathDocument struct {
	scripts []scanner.Script
}

// template内的脚本不属于文档
const scriptXPath = "//script[not(ancestor::template)]"

func ParseXPath(r io.Reader) (*XPathDocument, error) {
	root, err := htmlquery.Parse(r)
	if err != nil {
		return nil, err
	}
	nodes, err := htmlquery.QueryAll(root, scriptXPath)
	if err != nil {
		return nil, err
	}
	d := &XPathDocument{}
	for _, n := range nodes {
		d.scripts = append(d.scripts, &script{
			text:     htmlquery.InnerText(n),
			external: hasAttr(n, "src"),
		})
	}
	return d, nil
}

func (d *XPathDocument) Scripts() []scanner.Script {
	return d.scripts
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
