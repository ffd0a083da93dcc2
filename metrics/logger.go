package metrics

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

type Logger interface {
	Log(info *SampleInfo)
}

type StdoutLogger struct{}

func NewStdoutLogger() *StdoutLogger {
	return &StdoutLogger{}
}

func (l *StdoutLogger) Log(info *SampleInfo) {
	infoStr, err := info.ToJSON()
	if err == nil {
		log.Print(infoStr)
	} else {
		log.Printf("StdoutLogger: error: %v", err)
	}
}

// FileLogger appends one JSON record per run to a dated log file.
type FileLogger struct {
	LogDir string
}

func NewFileLogger(logDir string) *FileLogger {
	return &FileLogger{LogDir: logDir}
}

func (l *FileLogger) Log(info *SampleInfo) {
	infoStr, err := info.ToJSON()
	if err != nil {
		log.Printf("FileLogger: error: %v", err)
		return
	}

	logFile := filepath.Join(l.LogDir, fmt.Sprintf("pointdrill_%s.log", time.Now().Format("20060102")))
	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("FileLogger: log open error: %v", err)
		return
	}
	defer f.Close()

	if _, err = f.WriteString(infoStr + "\n"); err != nil {
		log.Printf("FileLogger: log write error: %v", err)
	}
}
