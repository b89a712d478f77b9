package spider

// 采集规则树
type RuleTree struct {
	Root  func() ([]*Request, error) // 根节点(执行入口)，用于生成爬虫的种子请求
	Trunk map[string]*Rule           // 规则哈希表存储当前任务所有规则
}

// 采集规则节点
type Rule struct {
	ItemFields []string                            // 输出数据的字段，同时作为存储表的列
	ParseFunc  func(*Context) (ParseResult, error) // 内容解析函数
}
