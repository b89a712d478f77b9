package page

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dszqbsm/gascan/scanner"
	"github.com/robertkrimen/otto"
)

// 外部webhook集成层约定的全局事件队列变量名
const QueueVar = "__ctm_cvars"

// 页面的window全局对象，基于otto虚拟机实现，同一页面内的脚本共享这个全局环境
type Window struct {
	mu sync.Mutex
	vm *otto.Otto
}

/*
无输入，输出一个Window实例和一个error

该方法创建一个新的JS虚拟机，并将全局对象暴露为window
*/
func NewWindow() (*Window, error) {
	vm := otto.New()
	if _, err := vm.Run(`var window = this;`); err != nil {
		return nil, err
	}
	return &Window{vm: vm}, nil
}

// 在页面全局环境中执行一段脚本，用于模拟页面上其他脚本对全局变量的修改
func (w *Window) Eval(src string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := w.vm.Run(src)
	return err
}

/*
无输入，输出一个队列句柄和一个error

该方法执行 window.__ctm_cvars = window.__ctm_cvars || []，队列已存在时保持不变
*/
func (w *Window) EventQueue() (scanner.Queue, error) {
	if err := w.Eval(fmt.Sprintf(`window.%[1]s = window.%[1]s || [];`, QueueVar)); err != nil {
		return nil, fmt.Errorf("init event queue: %w", err)
	}
	return &jsQueue{w: w}, nil
}

/*
无输入，输出队列中的所有记录和一个error

该方法供外部消费者读取全局事件队列，队列未定义或被其他脚本替换为非数组时返回空
*/
func (w *Window) Records() ([]scanner.Record, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// 函数等无法序列化的值得到undefined，按null处理
	v, err := w.vm.Run(fmt.Sprintf(`JSON.stringify(window.%s || []) || "null"`, QueueVar))
	if err != nil {
		return nil, err
	}
	s, err := v.ToString()
	if err != nil {
		return nil, err
	}

	var decoded interface{}
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		return nil, fmt.Errorf("decode event queue: %w", err)
	}
	items, ok := decoded.([]interface{})
	if !ok {
		return []scanner.Record{}, nil
	}
	// 其他脚本可能推入非对象的条目，这里只返回对象记录
	records := make([]scanner.Record, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			records = append(records, scanner.Record(m))
		}
	}
	return records, nil
}

type jsQueue struct {
	w *Window
}

// JSON是合法的JS字面量，直接拼接到push调用中
func (q *jsQueue) Push(record scanner.Record) error {
	b, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return q.w.Eval(fmt.Sprintf(`window.%s.push(%s);`, QueueVar, b))
}
