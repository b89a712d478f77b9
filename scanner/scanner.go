package scanner

// 页面加载完成后扫描内联脚本，提取谷歌分析(UA-)跟踪编号，并推入页面全局事件队列供外部webhook消费

import (
	"regexp"

	"go.uber.org/zap"
)

// 推入全局事件队列的记录中保存编号列表的键
const AnalyticsIDListKey = "analytics_id_list"

// 匹配被单引号或双引号包裹的 UA-XXXXXX-N 形式的编号，只取第一个匹配
var idRe = regexp.MustCompile(`['"](UA-\w{6,}-\d+)['"]`)

// 页面中的一个脚本元素，只读
type Script interface {
	Text() string   // 脚本元素的原始内联文本
	External() bool // 是否声明了src属性
}

// 页面文档，提供某一时刻所有脚本元素的静态快照，按文档顺序排列
type Document interface {
	Scripts() []Script
}

// 全局事件队列的只追加句柄
type Queue interface {
	Push(record Record) error
}

// 页面的全局环境
type Window interface {
	/*
	   无输入，输出一个队列句柄和一个error

	   该方法用于确保全局事件队列存在，若未定义则创建为空队列，已存在时不得覆盖，可被多次调用
	*/
	EventQueue() (Queue, error)
}

type Scanner struct {
	options
}

func New(opts ...Option) *Scanner {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	return &Scanner{options: options}
}

/*
输入一段脚本文本，输出匹配到的编号和是否匹配成功

该方法只取第一个匹配，返回去掉引号后的编号
*/
func MatchID(text string) (string, bool) {
	m := idRe.FindStringSubmatch(text)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}

/*
输入一个页面文档，输出编号列表

该方法遍历文档中的脚本元素快照，跳过外部脚本，对每个内联脚本取第一个匹配的编号，按扫描顺序追加到列表中，不去重
*/
func Collect(doc Document) []string {
	var ids []string
	for _, script := range doc.Scripts() {
		if script.External() {
			continue
		}
		if id, ok := MatchID(script.Text()); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

/*
输入页面全局环境和页面文档，输出编号列表和一个error

load事件处理函数：先确保全局事件队列存在，然后扫描脚本，仅当编号列表非空时向队列推入一条记录；扫描本身不会失败，error只来自宿主的队列实现
*/
func (s *Scanner) OnLoad(win Window, doc Document) ([]string, error) {
	queue, err := win.EventQueue()
	if err != nil {
		return nil, err
	}

	ids := Collect(doc)
	if len(ids) == 0 {
		s.logger.Debug("no analytics id found")
		return nil, nil
	}

	if err := queue.Push(NewRecord(ids)); err != nil {
		return ids, err
	}
	s.logger.Debug("push analytics ids", zap.Strings("ids", ids))

	return ids, nil
}
