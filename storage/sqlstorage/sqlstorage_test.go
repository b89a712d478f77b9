package sqlstorage

import (
	"errors"
	"testing"

	"github.com/dszqbsm/gascan/scanner"
	"github.com/dszqbsm/gascan/spider"
	"github.com/dszqbsm/gascan/sqldb"
	"github.com/dszqbsm/gascan/tasklib/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mysqldb struct {
	created  []sqldb.TableData
	inserted []sqldb.TableData
	closed   bool
	failWith error
}

func (m *mysqldb) CreateTable(t sqldb.TableData) error {
	m.created = append(m.created, t)
	return nil
}

func (m *mysqldb) Insert(t sqldb.TableData) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.inserted = append(m.inserted, t)
	return nil
}

func (m *mysqldb) Close() error {
	m.closed = true
	return nil
}

func newTask(name string) *spider.Task {
	task := spider.NewTask(spider.WithName(name))
	task.Rule = analytics.NewRuleTree(nil)
	return task
}

func cell(task *spider.Task, url string, ids ...string) *spider.DataCell {
	return &spider.DataCell{
		Task: task,
		Data: map[string]interface{}{
			"Task": task.Name,
			"Rule": analytics.RuleScan,
			"Data": map[string]interface{}{scanner.AnalyticsIDListKey: ids},
			"Url":  url,
			"Time": "2024-01-01 00:00:00",
		},
	}
}

// 测试SQL存储
func TestSQLStorage_Flush(t *testing.T) {
	task := newTask("ga_scan")
	tests := []struct {
		name       string
		dataDocker []*spider.DataCell
		wantErr    bool
		wantRows   int
	}{
		{name: "empty", wantErr: false},
		{name: "no Rule filed", dataDocker: []*spider.DataCell{
			{Task: task, Data: map[string]interface{}{"Task": "ga_scan", "Url": "http://xxx.com"}},
		}, wantErr: true},
		{name: "no Task filed", dataDocker: []*spider.DataCell{
			{Task: task, Data: map[string]interface{}{"Rule": analytics.RuleScan, "Url": "http://xxx.com"}},
		}, wantErr: true},
		{name: "unknown rule", dataDocker: []*spider.DataCell{
			{Task: task, Data: map[string]interface{}{"Task": "ga_scan", "Rule": "other"}},
		}, wantErr: true},
		{name: "right data", dataDocker: []*spider.DataCell{
			cell(task, "http://xxx.com", "UA-123456-1"),
			cell(task, "http://yyy.com", "UA-123456-1", "UA-654321-2"),
		}, wantErr: false, wantRows: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &mysqldb{}
			s := NewWithDB(db)
			s.dataDocker = tt.dataDocker
			if err := s.Flush(); (err != nil) != tt.wantErr {
				t.Errorf("Flush() error = %v, wantErr %v", err, tt.wantErr)
			}
			assert.Nil(t, s.dataDocker)
			rows := 0
			for _, in := range db.inserted {
				rows += in.DataCount
			}
			assert.Equal(t, tt.wantRows, rows)
		})
	}
}

func TestSQLStorage_Values(t *testing.T) {
	db := &mysqldb{}
	s := NewWithDB(db)
	s.dataDocker = []*spider.DataCell{cell(newTask("ga_scan"), "http://xxx.com", "UA-123456-1", "UA-654321-2")}
	require.NoError(t, s.Flush())

	require.Len(t, db.inserted, 1)
	in := db.inserted[0]
	assert.Equal(t, "ga_scan", in.TableName)
	assert.Equal(t, []sqldb.Field{
		{Title: scanner.AnalyticsIDListKey, Type: "MEDIUMTEXT"},
		{Title: "Url", Type: "VARCHAR(255)"},
		{Title: "Time", Type: "VARCHAR(255)"},
	}, in.ColumnNames)
	assert.Equal(t, []interface{}{
		`["UA-123456-1","UA-654321-2"]`,
		"http://xxx.com",
		"2024-01-01 00:00:00",
	}, in.Args)
}

func TestSQLStorage_Save(t *testing.T) {
	db := &mysqldb{}
	s := NewWithDB(db, WithBatchCount(2))
	a, b := newTask("site_a"), newTask("site_b")

	require.NoError(t, s.Save(cell(a, "http://a.com/1", "UA-111111-1"), cell(b, "http://b.com/1", "UA-222222-2")))
	assert.Len(t, db.created, 2)
	assert.Empty(t, db.inserted)

	// 第三条触发批量写入，两张表分别插入
	require.NoError(t, s.Save(cell(a, "http://a.com/2", "UA-111111-1")))
	assert.Len(t, db.created, 2)
	require.Len(t, db.inserted, 2)
	assert.Equal(t, "site_a", db.inserted[0].TableName)
	assert.Equal(t, "site_b", db.inserted[1].TableName)

	require.NoError(t, s.Close())
	assert.Len(t, db.inserted, 3)
	assert.True(t, db.closed)

	assert.Error(t, s.Save(&spider.DataCell{Data: map[string]interface{}{}}))
}

func TestSQLStorage_CloseError(t *testing.T) {
	db := &mysqldb{failWith: errors.New("server has gone away")}
	s := NewWithDB(db)
	s.dataDocker = []*spider.DataCell{cell(newTask("ga_scan"), "http://xxx.com", "UA-123456-1")}
	assert.Error(t, s.Close())
	assert.True(t, db.closed)
}

func TestSQLStorage_Options(t *testing.T) {
	s := NewWithDB(&mysqldb{}, WithMaxConns(8), WithBatchCount(3))
	assert.Equal(t, 8, s.maxConns)
	assert.Equal(t, 3, s.BatchCount)

	_, err := New(WithSqlURL("no-slash-here"), WithMaxConns(8))
	assert.Error(t, err)
}
