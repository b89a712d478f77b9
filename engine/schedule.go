package engine

import (
	"context"

	"github.com/dszqbsm/gascan/spider"
)

// 为调度器提供了统一的接口规范
type Scheduler interface {
	Schedule(ctx context.Context)                           // 启动调度器，直到上下文取消
	Push(ctx context.Context, reqs ...*spider.Request) int // 提交新的请求，返回成功提交的数量
	Pull(ctx context.Context) (*spider.Request, bool)     // 获取一个请求，上下文取消时返回false
}

// 调度器：负责接收新的请求、对请求进行优先级分类、将请求分发给工作协程
type Schedule struct {
	requestCh   chan *spider.Request // 任务提交通道
	workerCh    chan *spider.Request // 工作通道，工作协程从该通道获取任务
	priReqQueue []*spider.Request    // 优先队列
	reqQueue    []*spider.Request    // 普通队列
}

func NewSchedule() *Schedule {
	return &Schedule{
		requestCh: make(chan *spider.Request),
		workerCh:  make(chan *spider.Request),
	}
}

func (s *Schedule) Push(ctx context.Context, reqs ...*spider.Request) int {
	for i, req := range reqs {
		select {
		case s.requestCh <- req:
		case <-ctx.Done():
			return i
		}
	}
	return len(reqs)
}

func (s *Schedule) Pull(ctx context.Context) (*spider.Request, bool) {
	select {
	case r := <-s.workerCh:
		return r, true
	case <-ctx.Done():
		return nil, false
	}
}

/*
输入一个上下文，无输出

该方法维护两个队列，优先处理高优先级队列中的请求，当收到新请求时根据请求的优先级将其添加到对应的队列中；ch为nil时对应的发送分支不会被选中
*/
func (s *Schedule) Schedule(ctx context.Context) {
	var req *spider.Request
	var ch chan *spider.Request
	for {
		if req == nil && len(s.priReqQueue) > 0 {
			req = s.priReqQueue[0]
			s.priReqQueue = s.priReqQueue[1:]
			ch = s.workerCh
		}
		if req == nil && len(s.reqQueue) > 0 {
			req = s.reqQueue[0]
			s.reqQueue = s.reqQueue[1:]
			ch = s.workerCh
		}

		select {
		case r := <-s.requestCh:
			if r.Priority > 0 {
				s.priReqQueue = append(s.priReqQueue, r)
			} else {
				s.reqQueue = append(s.reqQueue, r)
			}
		case ch <- req:
			req = nil
			ch = nil
		case <-ctx.Done():
			return
		}
	}
}
