package sqlstorage

// 外部消费者：将页面全局事件队列中的记录批量写入MySQL，按任务名建表，规则字段作为列，另加Url和Time两列

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dszqbsm/gascan/spider"
	"github.com/dszqbsm/gascan/sqldb"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type SqlStore struct {
	mu         sync.Mutex
	dataDocker []*spider.DataCell // 用于缓存待插入数据库的数据单元
	db         sqldb.DBer
	Table      map[string]struct{} // 已创建的表名
	options
}

// SqlStore的构造函数，接受一系列配置选项，打开数据库连接
func New(opts ...Option) (*SqlStore, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	db, err := sqldb.New(
		sqldb.WithConnURL(options.sqlURL),
		sqldb.WithLogger(options.logger),
		sqldb.WithMaxConns(options.maxConns),
	)
	if err != nil {
		return nil, err
	}
	return NewWithDB(db, opts...), nil
}

// 使用已有的数据库实现构造SqlStore
func NewWithDB(db sqldb.DBer, opts ...Option) *SqlStore {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	return &SqlStore{
		db:      db,
		Table:   make(map[string]struct{}),
		options: options,
	}
}

/*
输入一个或多个数据单元，输出一个error

该方法检查数据单元对应的表是否已经创建，未创建则建表；缓存数量达到批量数时先将缓存写入数据库，再缓存当前数据单元
*/
func (s *SqlStore) Save(dataCells ...*spider.DataCell) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	for _, cell := range dataCells {
		name, columnNames, e := describe(cell)
		if e != nil {
			err = multierr.Append(err, e)
			continue
		}
		if _, ok := s.Table[name]; !ok {
			if e := s.db.CreateTable(sqldb.TableData{
				TableName:   name,
				ColumnNames: columnNames,
				AutoKey:     true,
			}); e != nil {
				s.logger.Error("create table failed", zap.String("table", name), zap.Error(e))
			} else {
				s.Table[name] = struct{}{}
			}
		}
		if len(s.dataDocker) >= s.BatchCount {
			if e := s.flush(); e != nil {
				s.logger.Error("insert data failed", zap.Error(e))
			}
		}
		s.dataDocker = append(s.dataDocker, cell)
	}
	return err
}

func (s *SqlStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flush()
}

/*
无输入，输出一个error

该方法将缓存的数据单元按表分组批量插入数据库，非字符串的字段值编码为json；无论成功与否都会清空缓存
*/
func (s *SqlStore) flush() error {
	if len(s.dataDocker) == 0 {
		return nil
	}
	defer func() {
		s.dataDocker = nil
	}()

	var err error
	tables := make(map[string]*sqldb.TableData)
	var order []string
	for _, cell := range s.dataDocker {
		name, columnNames, e := describe(cell)
		if e != nil {
			err = multierr.Append(err, e)
			continue
		}
		t, ok := tables[name]
		if !ok {
			t = &sqldb.TableData{TableName: name, ColumnNames: columnNames}
			tables[name] = t
			order = append(order, name)
		}
		t.Args = append(t.Args, values(cell, columnNames)...)
		t.DataCount++
	}

	for _, name := range order {
		err = multierr.Append(err, s.db.Insert(*tables[name]))
	}
	return err
}

// 写入剩余缓存并关闭数据库连接
func (s *SqlStore) Close() error {
	err := s.Flush()
	if c, ok := s.db.(io.Closer); ok {
		err = multierr.Append(err, c.Close())
	}
	return err
}

/*
输入一个数据单元，输出表名、列信息和一个error

列为规则的ItemFields，最后追加Url和Time两列
*/
func describe(cell *spider.DataCell) (string, []sqldb.Field, error) {
	taskName, ok := cell.Data["Task"].(string)
	if !ok {
		return "", nil, errors.New("data cell has no task field")
	}
	ruleName, ok := cell.Data["Rule"].(string)
	if !ok {
		return "", nil, errors.New("data cell has no rule field")
	}
	if cell.Task == nil {
		return "", nil, fmt.Errorf("data cell of %s has no task", taskName)
	}
	rule, ok := cell.Task.Rule.Trunk[ruleName]
	if !ok {
		return "", nil, fmt.Errorf("rule %s not found in task %s", ruleName, taskName)
	}

	var columnNames []sqldb.Field
	for _, field := range rule.ItemFields {
		columnNames = append(columnNames, sqldb.Field{
			Title: field,
			Type:  "MEDIUMTEXT",
		})
	}
	columnNames = append(columnNames,
		sqldb.Field{Title: "Url", Type: "VARCHAR(255)"},
		sqldb.Field{Title: "Time", Type: "VARCHAR(255)"},
	)
	return taskName, columnNames, nil
}

func values(cell *spider.DataCell, columnNames []sqldb.Field) []interface{} {
	data, _ := cell.Data["Data"].(map[string]interface{})
	fields := len(columnNames) - 2

	args := make([]interface{}, 0, len(columnNames))
	for _, c := range columnNames[:fields] {
		switch v := data[c.Title].(type) {
		case nil:
			args = append(args, "")
		case string:
			args = append(args, v)
		default:
			j, err := json.Marshal(v)
			if err != nil {
				args = append(args, "")
			} else {
				args = append(args, string(j))
			}
		}
	}
	url, _ := cell.Data["Url"].(string)
	t, _ := cell.Data["Time"].(string)
	return append(args, url, t)
}
