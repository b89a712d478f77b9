package conversion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const timestampLayout = "2006-01-02 15:04:05"

// 平台返回的一条通话记录，原样保留所有字段用于备份
type Call map[string]interface{}

// 通话id可能是数字也可能是字符串
func (c Call) ID() string {
	switch v := c["id"].(type) {
	case json.Number:
		return v.String()
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func (c Call) str(key string) string {
	s, _ := c[key].(string)
	return s
}

// 回写到通话上的成交信息
type Sale struct {
	Name       string
	Value      string
	Date       string // 2006-01-02，可为空
	Conversion bool
}

func (s Sale) form() url.Values {
	v := url.Values{}
	v.Set("name", s.Name)
	v.Set("value", s.Value)
	v.Set("sale_date", s.Date)
	if s.Conversion {
		v.Set("conversion", "1")
	} else {
		v.Set("conversion", "0")
	}
	return v
}

// 电话跟踪平台的接口客户端
type Client struct {
	http *http.Client
	options
}

func NewClient(opts ...Option) *Client {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	c := &Client{
		http:    &http.Client{Timeout: options.timeout},
		options: options,
	}
	if options.proxy != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = options.proxy
		c.http.Transport = transport
	}
	return c
}

/*
输入一个上下文和一个来电号码与来电日期，输出当天第一条匹配的通话、是否找到和一个error

查询范围为来电日期当天的00:00:00到23:59:59
*/
func (c *Client) FindCall(ctx context.Context, callerNumber string, day time.Time) (Call, bool, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, day.Location())
	query := url.Values{}
	query.Set("filter", callerNumber)
	query.Set("start_date", start.Format(timestampLayout))
	query.Set("end_date", end.Format(timestampLayout))

	var resp struct {
		Calls []Call `json:"calls"`
	}
	path := []string{"accounts", strconv.Itoa(c.agencyID), "calls.json"}
	if err := c.do(ctx, http.MethodGet, path, query, &resp); err != nil {
		return nil, false, err
	}
	if len(resp.Calls) == 0 {
		return nil, false, nil
	}
	return resp.Calls[0], true, nil
}

// 将成交信息写入指定通话
func (c *Client) PostSale(ctx context.Context, callID string, sale Sale) error {
	path := []string{"accounts", strconv.Itoa(c.agencyID), "calls", callID, "sale.json"}
	var resp map[string]interface{}
	return c.do(ctx, http.MethodPost, path, sale.form(), &resp)
}

/*
输入一个上下文、请求方法、接口路径、参数和响应结构，输出一个error

GET请求的参数放在查询串中，POST请求以表单提交；所有请求都带Basic认证，并在发送前等待限速器
*/
func (c *Client) do(ctx context.Context, method string, path []string, params url.Values, out interface{}) error {
	u, err := url.JoinPath(c.endPoint, path...)
	if err != nil {
		return err
	}

	var body io.Reader
	if method == http.MethodGet {
		if len(params) > 0 {
			u += "?" + params.Encode()
		}
	} else {
		body = strings.NewReader(params.Encode())
	}

	if c.limit != nil {
		if err := c.limit.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.accessCode, c.secret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	c.logger.Debug("callbox request", zap.String("method", method), zap.String("url", u))

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s %s: error status code:%d", method, u, resp.StatusCode)
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", u, err)
	}
	return nil
}
