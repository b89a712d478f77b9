package spider

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/dszqbsm/gascan/extensions"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type FetchType int

const (
	BaseFetchType FetchType = iota
	BrowserFetchType
)

type Fetcher interface {
	/*
	   输入一个上下文和一个请求，输出一个字节数组和一个错误

	   该方法用于获取请求URL对应的页面内容，编码检测并转换为utf-8，上下文取消时中止请求
	*/
	Get(ctx context.Context, req *Request) ([]byte, error)
}

/*
输入一个FetchType类型的参数，输出一个Fetcher接口类型的实例

该方法根据输入的FetchType类型参数选择不同的实现方式，未知类型使用模拟浏览器的实现
*/
func NewFetchService(typ FetchType) Fetcher {
	switch typ {
	case BaseFetchType:
		return &baseFetch{}
	case BrowserFetchType:
		return &browserFetch{}
	default:
		return &browserFetch{}
	}
}

// 将配置中的采集器名称转换为FetchType
func ParseFetchType(name string) FetchType {
	switch name {
	case "base":
		return BaseFetchType
	default:
		return BrowserFetchType
	}
}

type baseFetch struct{}

/*
输入一个上下文和一个请求，输出一个字节数组和一个错误

该方法用于发送HTTP GET请求并获取响应，若响应状态码不为200，则返回错误，否则将响应体转换为UTF-8编码，并返回响应体的字节数组
*/
func (*baseFetch) Get(ctx context.Context, req *Request) ([]byte, error) {
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, req.Url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return readBody(resp)
}

type browserFetch struct{}

/*
输入一个上下文和一个请求，输出一个字节数组和一个错误

该方法用于发送模拟浏览器的get请求，设置超时时间、代理服务器、随机User-Agent和Cookie，编码检测并转换为utf-8
*/
func (b *browserFetch) Get(ctx context.Context, request *Request) ([]byte, error) {
	task := request.Task
	client := &http.Client{
		Timeout: task.Timeout,
	}

	if task.Proxy != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = task.Proxy
		client.Transport = transport
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, request.Url, nil)
	if err != nil {
		return nil, fmt.Errorf("get url failed:%w", err)
	}

	if len(task.Cookie) > 0 {
		req.Header.Set("Cookie", task.Cookie)
	}
	req.Header.Set("User-Agent", extensions.GenerateRandomUA())

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return readBody(resp)
}

func readBody(resp *http.Response) ([]byte, error) {
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error status code:%d", resp.StatusCode)
	}

	bodyReader := bufio.NewReader(resp.Body)
	e := DeterminEncoding(bodyReader, resp.Header.Get("Content-Type"))
	utf8Reader := transform.NewReader(bodyReader, e.NewDecoder())

	return io.ReadAll(utf8Reader)
}

/*
输入一个带缓冲的读取器和Content-Type，输出一个编码

该方法窥视响应体的前1024个字节，结合Content-Type判断页面编码，无法判断时使用utf-8
*/
func DeterminEncoding(r *bufio.Reader, contentType string) encoding.Encoding {
	bytes, err := r.Peek(1024)
	if len(bytes) == 0 {
		if err != nil && err != io.EOF {
			zap.L().Error("fetch failed", zap.Error(err))
		}
		return unicode.UTF8
	}

	e, _, _ := charset.DetermineEncoding(bytes, contentType)

	return e
}
