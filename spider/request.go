package spider

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"math/rand"
	"time"
)

var ErrMaxDepth = errors.New("max depth limit reached")

// 表示解析结果
type ParseResult struct {
	Requests []*Request    // 从当前页面解析出的新请求
	Items    []interface{} // 从当前页面提取的有用数据
}

// 表示一个具体的HTTP请求
type Request struct {
	Task     *Task  // 所属的任务
	Url      string // 请求的URL
	Method   string // 请求的方法，如GET、POST等
	Depth    int    // 请求的深度，用于控制爬取的最大深度
	Priority int    // 请求的优先级，用于控制请求的执行顺序
	RuleName string // 解析规则的名称
}

// 检查当前请求是否超过任务的最大请求深度
func (r *Request) Check() error {
	if r.Depth > r.Task.MaxDepth {
		return ErrMaxDepth
	}
	return nil
}

// 用于生成请求的唯一识别码，用于去重
func (r *Request) Unique() string {
	block := md5.Sum([]byte(r.Url + r.Method))
	return hex.EncodeToString(block[:])
}

/*
输入一个上下文，输出一个字节数组和一个错误

在工作协程发起请求之前，通过限速器限制请求速率，只有当所有限速器都满足的时候才能取得令牌，否则当前协程将会阻塞直到满足条件或上下文被取消，然后随机休眠模拟人类行为，最后调用任务的采集器
*/
func (r *Request) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.Task.Limit != nil {
		if err := r.Task.Limit.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if r.Task.WaitTime > 0 {
		sleeptime := rand.Int63n(r.Task.WaitTime * 1000)
		select {
		case <-time.After(time.Duration(sleeptime) * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return r.Task.Fetcher.Get(ctx, r)
}
