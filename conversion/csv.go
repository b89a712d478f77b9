package conversion

// 电话跟踪平台的转化回传：从CSV读取线下成交记录，按来电号码找到当天的通话并回写成交信息，同时支持备份与恢复

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// CSV中的列顺序，第一行为表头
const (
	colCallTimestamp = iota
	colCallerNumber
	colPartnerNumber
	colTags
	colValue
	colSaleDate
	columnCount
)

var ErrShortRow = errors.New("row has too few columns")

// 一条线下转化记录
type Conversion struct {
	CallTimestamp time.Time // 来电日期，为零值时该记录不回传
	CallerNumber  string    // 来电号码
	PartnerNumber string    // 接听号码
	Tags          string    // 转化标签，空格分隔，如Lead、Sale
	Value         string
	SaleDate      time.Time
}

/*
输入一个CSV读取器和分隔符，输出转化记录列表和一个error

第一行作为表头跳过，日期列格式为2006-01-02，为空时保留零值
*/
func LoadCSV(r io.Reader, delimiter rune) ([]Conversion, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1

	var (
		result []Conversion
		line   int
	)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if line == 1 {
			continue
		}
		c, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		result = append(result, c)
	}
	return result, nil
}

func parseRow(row []string) (Conversion, error) {
	if len(row) < columnCount {
		return Conversion{}, ErrShortRow
	}
	callAt, err := parseDate(row[colCallTimestamp])
	if err != nil {
		return Conversion{}, err
	}
	saleAt, err := parseDate(row[colSaleDate])
	if err != nil {
		return Conversion{}, err
	}
	return Conversion{
		CallTimestamp: callAt,
		CallerNumber:  row[colCallerNumber],
		PartnerNumber: row[colPartnerNumber],
		Tags:          row[colTags],
		Value:         row[colValue],
		SaleDate:      saleAt,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(dateLayout, s, time.Local)
}
