package utils

import (
	"log/slog"
	"strings"
)

// AddToLogMessage appends one step to a request-scoped log
func AddToLogMessage(logMessagesBuilder *strings.Builder, strToAdd string) {
	logMessagesBuilder.WriteString(strToAdd)
	logMessagesBuilder.WriteString(";\n")
}

// FlushLog writes an accumulated request log as one structured entry
func FlushLog(api string, logMessageBuilder *strings.Builder) {
	if logMessageBuilder.Len() == 0 {
		return
	}
	slog.Info(api, "trace", logMessageBuilder.String())
}
