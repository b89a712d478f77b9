package dom

// 将抓取到的HTML解析为扫描器可用的文档快照，提供基于CSS选择器(goquery)和XPath(htmlquery)的两种实现

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dszqbsm/gascan/scanner"
)

type script struct {
	text     string
	external bool
}

func (s *script) Text() string   { return s.text }
func (s *script) External() bool { return s.external }

// 基于goquery的文档
type Document struct {
	doc     *goquery.Document
	scripts []scanner.Script
}

/*
输入一个HTML读取器，输出一个文档和一个error

该方法解析HTML，并在解析完成时记录文档中所有script元素的快照，跳过template内的脚本，之后对文档的修改不会影响快照
*/
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	d := &Document{doc: doc}
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		// template的内容属于独立的文档片段，不在文档中
		if s.ParentsFiltered("template").Length() > 0 {
			return
		}
		_, external := s.Attr("src")
		d.scripts = append(d.scripts, &script{
			text:     s.Text(),
			external: external,
		})
	})
	return d, nil
}

func (d *Document) Scripts() []scanner.Script {
	return d.scripts
}

/*
输入页面的基础URL，输出页面中的链接列表

该方法提取所有a标签的href，解析为绝对地址，只保留http和https链接，去掉锚点并去重
*/
func (d *Document) Links(base *url.URL) []string {
	var links []string
	seen := make(map[string]struct{})
	d.doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		u, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		if base != nil {
			u = base.ResolveReference(u)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return
		}
		u.Fragment = ""
		link := u.String()
		if _, ok := seen[link]; ok {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})
	return links
}
