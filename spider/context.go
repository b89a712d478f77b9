package spider

import (
	"time"
)

// 上下文结构体：将响应内容和当前请求封装在一起，传递给解析函数
type Context struct {
	Body []byte   // 响应内容的字节流
	Req  *Request // 当前请求的上下文
}

// 依据规则名称从当前请求任务规则树中获取对应的规则
func (c *Context) GetRule(ruleName string) *Rule {
	return c.Req.Task.Rule.Trunk[ruleName]
}

/*
输入一个数据，输出一个数据单元

该方法用于创建一个数据单元，将数据和请求的相关信息封装到数据单元中，返回数据单元的指针
*/
func (c *Context) Output(data interface{}) *DataCell {
	res := &DataCell{
		Task: c.Req.Task,
	}
	res.Data = make(map[string]interface{})
	res.Data["Task"] = c.Req.Task.Name
	res.Data["Rule"] = c.Req.RuleName
	res.Data["Data"] = data
	res.Data["Url"] = c.Req.Url
	res.Data["Time"] = time.Now().Format("2006-01-02 15:04:05")
	return res
}
