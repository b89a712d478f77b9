package conversion

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

/*
输入一个上下文和转化记录列表，输出被修改过的通话列表和一个error

没有来电日期的记录被跳过；找不到通话的记录只记录日志；找到通话时先把通话原始信息加入备份，再回写成交信息。
遇到接口错误时立即停止，已加入备份的通话随错误一起返回，调用方应保存备份以便恢复
*/
func (c *Client) Update(ctx context.Context, conversions []Conversion) ([]Call, error) {
	var backup []Call
	for _, conv := range conversions {
		if conv.CallTimestamp.IsZero() {
			continue
		}
		c.logger.Info("update call",
			zap.String("caller", conv.CallerNumber),
			zap.String("called_at", conv.CallTimestamp.Format(timestampLayout)),
		)

		call, ok, err := c.FindCall(ctx, conv.CallerNumber, conv.CallTimestamp)
		if err != nil {
			return backup, fmt.Errorf("find call %s: %w", conv.CallerNumber, err)
		}
		if !ok {
			c.logger.Warn("call not found", zap.String("caller", conv.CallerNumber))
			continue
		}
		backup = append(backup, call)

		sale := Sale{
			Name:       conv.Tags,
			Value:      conv.Value,
			Conversion: true,
		}
		if !conv.SaleDate.IsZero() {
			sale.Date = conv.SaleDate.Format(dateLayout)
		}
		if err := c.PostSale(ctx, call.ID(), sale); err != nil {
			return backup, fmt.Errorf("post sale %s: %w", call.ID(), err)
		}
	}
	return backup, nil
}

/*
输入一个上下文和备份的通话列表，输出一个error

将每条通话的成交信息恢复为备份中的值，备份中没有成交信息的通话会被清空成交
*/
func (c *Client) Restore(ctx context.Context, calls []Call) error {
	for _, call := range calls {
		sale := Sale{Value: "0"}
		if s, ok := call["sale"].(map[string]interface{}); ok {
			sale = Sale{
				Name:       text(s["name"]),
				Value:      text(s["value"]),
				Date:       text(s["date"]),
				Conversion: truthy(s["conversion"]),
			}
		}
		c.logger.Info("restore call",
			zap.String("caller", call.str("caller_number_format")),
			zap.String("called_at", call.str("called_at")),
		)
		if err := c.PostSale(ctx, call.ID(), sale); err != nil {
			return fmt.Errorf("restore call %s: %w", call.ID(), err)
		}
	}
	return nil
}

func text(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case json.Number:
		return t.String() != "0"
	case string:
		return t != "" && t != "0" && t != "false"
	default:
		return false
	}
}

/*
输入备份目录、通话列表和当前时间，输出备份文件路径和一个error

文件名形如backup_2006-01-02_1504.json，内容为缩进4个空格、键有序的json
*/
func SaveBackup(dir string, calls []Call, now time.Time) (string, error) {
	b, err := json.MarshalIndent(calls, "", "    ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("backup_%s.json", now.Format("2006-01-02_1504")))
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func LoadBackup(path string) ([]Call, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var calls []Call
	dec := json.NewDecoder(f)
	dec.UseNumber()
	if err := dec.Decode(&calls); err != nil {
		return nil, fmt.Errorf("parse backup %s: %w", path, err)
	}
	return calls, nil
}
