package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Plugin = zapcore.Core

// 在默认选项之后追加额外选项，创建日志器
func NewLogger(plugin zapcore.Core, options ...zap.Option) *zap.Logger {
	return zap.New(plugin, append(DefaultOption(), options...)...)
}

func NewPlugin(writer zapcore.WriteSyncer, enabler zapcore.LevelEnabler) Plugin {
	return zapcore.NewCore(DefaultEncoder(), writer, enabler)
}

func NewStdoutPlugin(enabler zapcore.LevelEnabler) Plugin {
	return NewPlugin(zapcore.Lock(zapcore.AddSync(os.Stdout)), enabler)
}

// scan命令的结果输出到标准输出，日志写到标准错误
func NewStderrPlugin(enabler zapcore.LevelEnabler) Plugin {
	return NewPlugin(zapcore.Lock(zapcore.AddSync(os.Stderr)), enabler)
}

// Lumberjack logger虽然持有File但没有暴露sync方法，所以没办法利用zap的sync特性，所以额外返回一个closer，需要保证在进程退出前close以保证写入的内容可以全部刷到磁盘
func NewFilePlugin(filePath string, enabler zapcore.LevelEnabler) (Plugin, io.Closer) {
	var writer = DefaultLumberjackLogger()
	writer.Filename = filePath
	return NewPlugin(zapcore.AddSync(writer), enabler), writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

/*
输入日志级别文本、日志文件路径和未配置文件时使用的输出插件构造函数，输出日志器、closer和一个error

日志文件路径为空时使用fallback插件，否则写入轮转文件；返回的closer需要在进程退出前关闭
*/
func Setup(levelText, filePath string, fallback func(zapcore.LevelEnabler) Plugin) (*zap.Logger, io.Closer, error) {
	if levelText == "" {
		levelText = "INFO"
	}
	level, err := zapcore.ParseLevel(levelText)
	if err != nil {
		return nil, nil, err
	}
	if filePath == "" {
		return NewLogger(fallback(level)), nopCloser{}, nil
	}
	plugin, closer := NewFilePlugin(filePath, level)
	return NewLogger(plugin), closer, nil
}
