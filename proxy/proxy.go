package proxy

import (
	"errors"
	"net/http"
	"net/url"
	"sync/atomic"
)

var ErrEmptyProxy = errors.New("proxy url list is empty")

type ProxyFunc func(*http.Request) (*url.URL, error)

type roundRobinSwitcher struct {
	proxyURLs []*url.URL
	index     uint32
}

/*
输入一个http.Request，输出一个url.URL和一个error

该方法根据当前的轮询索引选择一个代理服务器，并返回该服务器的URL
*/
func (r *roundRobinSwitcher) GetProxy(pr *http.Request) (*url.URL, error) {
	if len(r.proxyURLs) == 0 {
		return nil, ErrEmptyProxy
	}
	index := atomic.AddUint32(&r.index, 1) - 1
	u := r.proxyURLs[index%uint32(len(r.proxyURLs))]
	return u, nil
}

/*
输入一个代理服务器地址列表，输出一个代理服务器切换函数和一个error

该方法解析所有代理地址，创建一个轮询调度器，并返回其切换函数
*/
func RoundRobinProxySwitcher(proxyURLs ...string) (ProxyFunc, error) {
	if len(proxyURLs) < 1 {
		return nil, ErrEmptyProxy
	}
	urls := make([]*url.URL, len(proxyURLs))
	for i, u := range proxyURLs {
		parsedU, err := url.Parse(u)
		if err != nil {
			return nil, err
		}
		urls[i] = parsedU
	}
	return (&roundRobinSwitcher{urls, 0}).GetProxy, nil
}
