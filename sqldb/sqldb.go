package sqldb

// 定义了用于与MySQL数据库进行交互的功能，包括创建表、插入数据

import (
	"database/sql"
	"errors"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

var ErrEmptyColumn = errors.New("column can not be empty")

// 为数据库操作统一了规范，包括创建表、插入数据
type DBer interface {
	CreateTable(t TableData) error
	Insert(t TableData) error
}

// 表示数据库表中的一个字段，包含字段名和字段类型
type Field struct {
	Title string
	Type  string
}

// 表示要操作的数据库表的数据
type TableData struct {
	TableName   string
	ColumnNames []Field       // 标题字段
	Args        []interface{} // 数据
	DataCount   int           // 插入数据的数量
	AutoKey     bool
}

// sql数据库实例
type Sqldb struct {
	options
	db *sql.DB
}

/*
输入一个或多个Option实例，输出一个Sqldb实例和一个error

该方法用于创建一个新的Sqldb实例，并根据传入的选项进行配置，打开数据库连接
*/
func New(opts ...Option) (*Sqldb, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	d := &Sqldb{}
	d.options = options
	if err := d.OpenDB(); err != nil {
		return nil, err
	}
	return d, nil
}

// 打开一个MySQL数据库连接，设置最大连接数和最大空闲连接数，通过ping方法测试连接是否正常
func (d *Sqldb) OpenDB() error {
	db, err := sql.Open("mysql", d.sqlURL)
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(d.maxConns)
	db.SetMaxIdleConns(d.maxConns)
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return err
	}
	d.db = db
	return nil
}

func (d *Sqldb) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *Sqldb) CreateTable(t TableData) error {
	sql, err := CreateTableSQL(t)
	if err != nil {
		return err
	}
	d.logger.Debug("create table", zap.String("sql", sql))

	_, err = d.db.Exec(sql)
	return err
}

func (d *Sqldb) Insert(t TableData) error {
	sql, err := InsertSQL(t)
	if err != nil {
		return err
	}
	d.logger.Debug("insert table", zap.String("sql", sql))

	_, err = d.db.Exec(sql, t.Args...)
	return err
}

/*
输入一个TableData实例，输出建表语句和一个error

表名和列名来自任务名与规则字段，统一用反引号包裹
*/
func CreateTableSQL(t TableData) (string, error) {
	if len(t.ColumnNames) == 0 {
		return "", ErrEmptyColumn
	}
	sql := `CREATE TABLE IF NOT EXISTS ` + quote(t.TableName) + " ("
	if t.AutoKey {
		sql += "`id` INT(12) NOT NULL PRIMARY KEY AUTO_INCREMENT,"
	}
	for _, c := range t.ColumnNames {
		sql += quote(c.Title) + ` ` + c.Type + `,`
	}
	sql = sql[:len(sql)-1] + `) ENGINE=MyISAM DEFAULT CHARSET=utf8mb4;`
	return sql, nil
}

/*
输入一个TableData实例，输出插入语句和一个error

插入语句形如 INSERT INTO t(a,b) VALUES (?,?),(?,?);，问号的数量取决于列数与数据条数
*/
func InsertSQL(t TableData) (string, error) {
	if len(t.ColumnNames) == 0 {
		return "", ErrEmptyColumn
	}
	if t.DataCount <= 0 {
		return "", errors.New("empty data")
	}
	sql := `INSERT INTO ` + quote(t.TableName) + `(`
	for _, v := range t.ColumnNames {
		sql += quote(v.Title) + ","
	}
	sql = sql[:len(sql)-1] + `) VALUES `

	blank := ",(" + strings.Repeat(",?", len(t.ColumnNames))[1:] + ")"
	sql += strings.Repeat(blank, t.DataCount)[1:] + `;`
	return sql, nil
}

func quote(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
