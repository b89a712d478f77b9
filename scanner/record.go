package scanner

import "sync"

// 推入全局事件队列的一条记录，形如 {"analytics_id_list": [...]}
type Record map[string]interface{}

func NewRecord(ids []string) Record {
	list := make([]string, len(ids))
	copy(list, ids)
	return Record{AnalyticsIDListKey: list}
}

/*
无输入，输出编号列表和是否存在

记录可能来自Go代码([]string)，也可能来自JS环境解码后的结果([]interface{})，两种形式都做兼容
*/
func (r Record) AnalyticsIDs() ([]string, bool) {
	switch v := r[AnalyticsIDListKey].(type) {
	case []string:
		return v, true
	case []interface{}:
		ids := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			ids = append(ids, s)
		}
		return ids, true
	default:
		return nil, false
	}
}

// 进程内的全局事件队列，只追加
type MemoryQueue struct {
	mu      sync.Mutex
	records []Record
}

func (q *MemoryQueue) Push(record Record) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.records = append(q.records, record)
	return nil
}

// 返回队列内容的副本，供外部消费者读取
func (q *MemoryQueue) Records() []Record {
	q.mu.Lock()
	defer q.mu.Unlock()
	res := make([]Record, len(q.records))
	copy(res, q.records)
	return res
}

// 进程内的页面全局环境，队列首次访问时创建；不执行任何页面脚本，作为scan命令的轻量宿主
type MemoryWindow struct {
	once  sync.Once
	queue *MemoryQueue
}

// 使用已有队列构造全局环境，对应队列已被其他脚本创建的情形
func NewMemoryWindow(queue *MemoryQueue) *MemoryWindow {
	return &MemoryWindow{queue: queue}
}

func (w *MemoryWindow) EventQueue() (Queue, error) {
	return w.Queue(), nil
}

// 读取队列内容，与JS宿主的读取接口一致
func (w *MemoryWindow) Records() ([]Record, error) {
	return w.Queue().Records(), nil
}

func (w *MemoryWindow) Queue() *MemoryQueue {
	w.once.Do(func() {
		if w.queue == nil {
			w.queue = &MemoryQueue{}
		}
	})
	return w.queue
}
