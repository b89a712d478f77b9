package page

import (
	"errors"
	"sync"

	"github.com/dszqbsm/gascan/scanner"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const EventLoad = "load"

var ErrLoaded = errors.New("page already loaded")

// 分发给监听函数的事件
type Event struct {
	Type     string
	URL      string
	Document scanner.Document
	Window   scanner.Window
}

type Listener func(ev *Event) error

type state int

const (
	statePending state = iota
	stateComplete
)

// 一次页面加载：持有文档快照和window全局环境，负责在加载完成时分发load事件
type Page struct {
	URL string

	doc       scanner.Document
	win       scanner.Window
	mu        sync.Mutex
	state     state
	listeners map[string][]Listener
	options
}

func New(url string, doc scanner.Document, win scanner.Window, opts ...Option) *Page {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	return &Page{
		URL:       url,
		doc:       doc,
		win:       win,
		listeners: make(map[string][]Listener),
		options:   options,
	}
}

func (p *Page) AddEventListener(typ string, l Listener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners[typ] = append(p.listeners[typ], l)
}

/*
无输入，输出一个error

该方法将页面状态从等待加载切换为加载完成，并按注册顺序调用所有load监听函数；每个页面只会加载一次，重复调用返回ErrLoaded；某个监听函数出错不影响后续监听函数，所有错误合并返回
*/
func (p *Page) Load() error {
	p.mu.Lock()
	if p.state == stateComplete {
		p.mu.Unlock()
		return ErrLoaded
	}
	p.state = stateComplete
	listeners := append([]Listener(nil), p.listeners[EventLoad]...)
	p.mu.Unlock()

	ev := &Event{
		Type:     EventLoad,
		URL:      p.URL,
		Document: p.doc,
		Window:   p.win,
	}

	var err error
	for _, l := range listeners {
		if e := l(ev); e != nil {
			p.logger.Error("load listener failed", zap.String("url", p.URL), zap.Error(e))
			err = multierr.Append(err, e)
		}
	}
	return err
}

// 将扫描器包装为load监听函数
func ScanOnLoad(s *scanner.Scanner) Listener {
	return func(ev *Event) error {
		_, err := s.OnLoad(ev.Window, ev.Document)
		return err
	}
}
