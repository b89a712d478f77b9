package analytics

// 扫描页面内联脚本中的谷歌分析编号：每个抓取到的页面都视为一次独立的页面加载，拥有独立的window全局环境

import (
	"bytes"
	"fmt"
	"net/url"

	"github.com/dszqbsm/gascan/dom"
	"github.com/dszqbsm/gascan/page"
	"github.com/dszqbsm/gascan/scanner"
	"github.com/dszqbsm/gascan/spider"
	"go.uber.org/zap"
)

const RuleScan = "scan_page"

/*
输入种子URL列表，输出规则树

根节点为每个种子URL生成一个高优先级请求，规则scan_page负责扫描页面并按最大深度跟踪同站链接
*/
func NewRuleTree(urls []string) spider.RuleTree {
	return spider.RuleTree{
		Root: func() ([]*spider.Request, error) {
			roots := make([]*spider.Request, 0, len(urls))
			for _, u := range urls {
				roots = append(roots, &spider.Request{
					Priority: 1,
					Url:      u,
					Method:   "GET",
					RuleName: RuleScan,
				})
			}
			return roots, nil
		},
		Trunk: map[string]*spider.Rule{
			RuleScan: {
				ItemFields: []string{scanner.AnalyticsIDListKey},
				ParseFunc:  ParseAnalytics,
			},
		},
	}
}

func ParseAnalytics(ctx *spider.Context) (spider.ParseResult, error) {
	doc, err := dom.Parse(bytes.NewReader(ctx.Body))
	if err != nil {
		return spider.ParseResult{}, fmt.Errorf("parse html: %w", err)
	}

	records, err := ScanPage(ctx.Req.Url, doc)
	if err != nil {
		return spider.ParseResult{}, err
	}

	result := spider.ParseResult{}
	for _, r := range records {
		ids, ok := r.AnalyticsIDs()
		if !ok {
			continue
		}
		result.Items = append(result.Items, ctx.Output(map[string]interface{}{
			scanner.AnalyticsIDListKey: ids,
		}))
	}

	if ctx.Req.Depth < ctx.Req.Task.MaxDepth {
		result.Requests = followLinks(ctx, doc)
	}
	zap.S().Debugln("parse analytics ids, url:", ctx.Req.Url, "records:", len(result.Items), "links:", len(result.Requests))

	return result, nil
}

// 可被外部消费者读取队列内容的页面全局环境
type Host interface {
	scanner.Window
	Records() ([]scanner.Record, error)
}

// 为页面创建新的JS全局环境并扫描
func ScanPage(pageURL string, doc scanner.Document) ([]scanner.Record, error) {
	win, err := page.NewWindow()
	if err != nil {
		return nil, err
	}
	return ScanPageIn(pageURL, doc, win)
}

/*
输入页面地址、文档快照和页面全局环境，输出该页面全局事件队列中的记录

该方法注册扫描器为load监听函数，分发load事件后读取队列内容，相当于外部webhook对队列的消费
*/
func ScanPageIn(pageURL string, doc scanner.Document, win Host) ([]scanner.Record, error) {
	p := page.New(pageURL, doc, win, page.WithLogger(zap.L()))
	p.AddEventListener(page.EventLoad, page.ScanOnLoad(scanner.New(scanner.WithLogger(zap.L()))))
	if err := p.Load(); err != nil {
		return nil, err
	}
	return win.Records()
}

// 只跟踪与当前页面同一主机的链接
func followLinks(ctx *spider.Context, doc *dom.Document) []*spider.Request {
	base, err := url.Parse(ctx.Req.Url)
	if err != nil {
		return nil
	}
	var reqs []*spider.Request
	for _, link := range doc.Links(base) {
		u, err := url.Parse(link)
		if err != nil || u.Host != base.Host {
			continue
		}
		reqs = append(reqs, &spider.Request{
			Method:   "GET",
			Task:     ctx.Req.Task,
			Url:      link,
			Depth:    ctx.Req.Depth + 1,
			RuleName: RuleScan,
		})
	}
	return reqs
}
