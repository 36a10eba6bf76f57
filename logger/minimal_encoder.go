package logger

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

// Everforest Dark palette
var palette = struct {
	fg       string
	green    string
	greenMid string
	aqua     string
	orange   string
	yellow   string
	red      string
	redBg    string
	yellowBg string
}{
	fg:       "\x1b[38;5;223m",
	green:    "\x1b[38;5;108m",
	greenMid: "\x1b[38;5;107m",
	aqua:     "\x1b[38;5;109m",
	orange:   "\x1b[38;5;208m",
	yellow:   "\x1b[38;5;179m",
	red:      "\x1b[38;5;167m",
	redBg:    "\x1b[48;5;52m",
	yellowBg: "\x1b[48;5;58m",
}

var bufferPool = buffer.NewPool()

// minimalEncoder is a compact console encoder.
// Format: "13:04:35  WARN  nav  Manifest path missing  path=atopile/api-reference/traits/x"
type minimalEncoder struct {
	*zapcore.MapObjectEncoder // context fields added through Logger.With
	color                     bool
}

func newMinimalEncoder() *minimalEncoder {
	_, noColor := os.LookupEnv("NO_COLOR")
	return &minimalEncoder{
		MapObjectEncoder: zapcore.NewMapObjectEncoder(),
		color:            !noColor,
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	clone := &minimalEncoder{
		MapObjectEncoder: zapcore.NewMapObjectEncoder(),
		color:            enc.color,
	}
	for k, v := range enc.Fields {
		clone.Fields[k] = v
	}
	return clone
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	line := bufferPool.Get()

	line.AppendString(enc.paint(palette.greenMid, ent.Time.Format("15:04:05")))

	if ent.Level != zapcore.InfoLevel {
		line.AppendString("  ")
		line.AppendString(enc.level(ent.Level))
	}

	if ent.LoggerName != "" {
		line.AppendString("  ")
		line.AppendString(enc.paint(palette.orange, ent.LoggerName))
	}

	line.AppendString("  ")
	line.AppendString(enc.paint(palette.fg, ent.Message))

	pairs := contextPairs(enc.Fields)
	for _, f := range fields {
		pairs = append(pairs, fieldPairs(f)...)
	}
	for _, p := range pairs {
		line.AppendString("  ")
		line.AppendString(enc.paint(palette.aqua, p[0]))
		line.AppendString("=")
		line.AppendString(p[1])
	}

	line.AppendString("\n")
	return line, nil
}

func (enc *minimalEncoder) paint(color, s string) string {
	if !enc.color {
		return s
	}
	return color + s + colorReset
}

func (enc *minimalEncoder) level(level zapcore.Level) string {
	switch level {
	case zapcore.DebugLevel:
		return enc.paint(palette.green, "DEBUG")
	case zapcore.WarnLevel:
		if !enc.color {
			return "WARN"
		}
		return colorBold + palette.yellowBg + palette.yellow + "WARN" + colorReset
	default:
		if !enc.color {
			return level.CapitalString()
		}
		return colorBold + palette.redBg + palette.red + level.CapitalString() + colorReset
	}
}

// contextPairs renders fields attached with Logger.With in key order.
func contextPairs(m map[string]interface{}) [][2]string {
	keys := make([]string, 0, len(m))
	for k := range m {
		if strings.HasSuffix(k, "Verbose") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([][2]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, [2]string{k, fmt.Sprint(m[k])})
	}
	return pairs
}

// fieldPairs renders one zap field. Every field is kept; only the verbose
// stack-trace companion of error fields is dropped.
func fieldPairs(f zapcore.Field) [][2]string {
	m := zapcore.NewMapObjectEncoder()
	f.AddTo(m)
	return contextPairs(m.Fields)
}
