package logger

import (
	"io"
	"log"
	"os"

	"github.com/sirupsen/logrus"
)

// Log 是一个全局的、配置好的 logrus 实例；InitLogger之前也可以直接使用（输出到标准错误）
var Log = logrus.New()

// InitLogger 初始化全局的Logger实例：level为日志级别，file为空时只输出到控制台
func InitLogger(level, file string) {
	Log = logrus.New()

	// 1. 设置日志格式为JSON，结构化日志便于后续使用ELK、Loki等工具进行分析
	Log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})

	// 2. 设置日志输出，同时输出到文件和控制台
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			log.Fatalf("无法打开日志文件: %v", err)
		}
		Log.SetOutput(io.MultiWriter(os.Stdout, f))
	} else {
		Log.SetOutput(os.Stdout)
	}

	// 3. 设置日志级别，解析失败就退回Info
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)
}
