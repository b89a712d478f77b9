package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dszqbsm/gascan/spider"
	"go.uber.org/zap"
)

// 爬虫实例，管理整个爬取流程
type Crawler struct {
	out         chan spider.ParseResult // 用于传输解析结果的通道
	Visited     map[string]bool         // 记录已访问过的url
	VisitedLock sync.Mutex

	failures    map[string]*spider.Request // 记录失败的请求，用于重试
	failureLock sync.Mutex

	pending int64 // 尚未处理完的请求数，归零时爬取结束
	cancel  context.CancelFunc

	options
}

// 创建并初始化一个Crawler爬虫实例
func NewEngine(opts ...Option) *Crawler {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	e := &Crawler{}
	e.Visited = make(map[string]bool, 100)
	e.out = make(chan spider.ParseResult)
	e.failures = make(map[string]*spider.Request)
	e.options = options
	if e.scheduler == nil {
		e.scheduler = NewSchedule()
	}
	if e.WorkCount <= 0 {
		e.WorkCount = 1
	}
	return e
}

/*
输入一个上下文，输出一个error

该方法启动调度协程和多个工作协程，推送种子请求，并在当前协程处理解析结果；所有请求处理完毕或上下文被取消时返回，上下文被取消时返回其错误
*/
func (e *Crawler) Run(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	e.cancel = cancel

	go e.scheduler.Schedule(ctx)

	reqs := e.seedRequests()
	if len(reqs) == 0 {
		e.Logger.Warn("no seed request")
		return nil
	}
	e.push(ctx, reqs...)

	var wg sync.WaitGroup
	for i := 0; i < e.WorkCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.CreateWork(ctx)
		}()
	}
	go func() {
		wg.Wait()
		close(e.out)
	}()

	e.HandleResult()

	return parent.Err()
}

// 生成所有种子任务的根请求，并为任务补上默认采集器
func (e *Crawler) seedRequests() []*spider.Request {
	var reqs []*spider.Request
	for _, task := range e.Seeds {
		if task.Fetcher == nil {
			task.Fetcher = e.Fetcher
		}
		if task.Rule.Root == nil {
			e.Logger.Error("task has no root rule", zap.String("task", task.Name))
			continue
		}
		rootreqs, err := task.Rule.Root()
		if err != nil {
			e.Logger.Error("get root failed",
				zap.String("task", task.Name),
				zap.Error(err),
			)
			continue
		}
		for _, req := range rootreqs {
			req.Task = task
		}
		reqs = append(reqs, rootreqs...)
	}
	return reqs
}

func (e *Crawler) track(delta int64) {
	if atomic.AddInt64(&e.pending, delta) == 0 {
		e.cancel()
	}
}

// 计数后异步推送，避免工作协程与调度协程互相阻塞
func (e *Crawler) push(ctx context.Context, reqs ...*spider.Request) {
	if len(reqs) == 0 {
		return
	}
	e.track(int64(len(reqs)))
	go func() {
		if n := e.scheduler.Push(ctx, reqs...); n < len(reqs) {
			e.track(-int64(len(reqs) - n))
		}
	}()
}

// 工作协程的核心逻辑，不断从调度器获取请求并处理，直到上下文被取消
func (e *Crawler) CreateWork(ctx context.Context) {
	for {
		req, ok := e.scheduler.Pull(ctx)
		if !ok {
			return
		}
		e.process(ctx, req)
	}
}

func (e *Crawler) process(ctx context.Context, req *spider.Request) {
	defer e.track(-1)

	if err := req.Check(); err != nil {
		e.Logger.Debug("check failed",
			zap.String("url", req.Url),
			zap.Error(err),
		)
		return
	}
	if !e.markVisited(req) && !req.Task.Reload {
		e.Logger.Debug("request has visited",
			zap.String("url", req.Url),
		)
		return
	}

	body, err := req.Fetch(ctx)
	if err != nil {
		e.Logger.Error("can't fetch",
			zap.Error(err),
			zap.String("url", req.Url),
		)
		e.SetFailure(ctx, req)
		return
	}

	ctxt := &spider.Context{
		Body: body,
		Req:  req,
	}
	rule := ctxt.GetRule(req.RuleName)
	if rule == nil {
		e.Logger.Error("rule not found",
			zap.String("task", req.Task.Name),
			zap.String("rule", req.RuleName),
		)
		return
	}

	result, err := rule.ParseFunc(ctxt)
	if err != nil {
		e.Logger.Error("ParseFunc failed",
			zap.Error(err),
			zap.String("url", req.Url),
		)
		return
	}

	e.push(ctx, result.Requests...)
	e.out <- result
}

// 处理解析结果，将数据单元交给所属任务的存储器，未配置存储器时输出到日志
func (e *Crawler) HandleResult() {
	for result := range e.out {
		for _, item := range result.Items {
			cell, ok := item.(*spider.DataCell)
			if !ok || cell.Task == nil || cell.Task.Storage == nil {
				e.Logger.Sugar().Info("get result: ", item)
				continue
			}
			if err := cell.Task.Storage.Save(cell); err != nil {
				e.Logger.Error("save result failed",
					zap.String("task", cell.GetTaskName()),
					zap.Error(err),
				)
			}
		}
	}
}

// 在同一把锁内检查并标记请求，返回该请求此前是否未被访问过，避免多个工作协程重复抓取同一URL
func (e *Crawler) markVisited(r *spider.Request) bool {
	e.VisitedLock.Lock()
	defer e.VisitedLock.Unlock()

	key := r.Unique()
	if e.Visited[key] {
		return false
	}
	e.Visited[key] = true
	return true
}

// 处理失败的请求：首次失败时重新推送一次，再次失败则放弃
func (e *Crawler) SetFailure(ctx context.Context, req *spider.Request) {
	if !req.Task.Reload {
		e.VisitedLock.Lock()
		delete(e.Visited, req.Unique())
		e.VisitedLock.Unlock()
	}
	e.failureLock.Lock()
	defer e.failureLock.Unlock()
	if _, ok := e.failures[req.Unique()]; !ok {
		e.failures[req.Unique()] = req
		e.push(ctx, req)
		return
	}
	e.Logger.Warn("request failed twice, give up", zap.String("url", req.Url))
}
