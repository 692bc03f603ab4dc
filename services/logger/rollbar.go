package logsvc

import (
	"fmt"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"go.uber.org/zap"

	"github.com/trezcool/montree/core"
)

// RollbarLogger reports to Rollbar and writes structured lines with zap.
type RollbarLogger struct {
	zap *zap.SugaredLogger
}

var _ core.Logger = (*RollbarLogger)(nil)

// NewZap builds the zap logger: JSON in production, console otherwise.
func NewZap(conf *core.Config) (*zap.SugaredLogger, error) {
	zconf := zap.NewDevelopmentConfig()
	if strings.EqualFold(conf.Env, "prod") || strings.EqualFold(conf.Env, "qa") {
		zconf = zap.NewProductionConfig()
	}
	if conf.Debug {
		zconf.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zlog, err := zconf.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return zlog.Sugar().With("app", conf.AppName, "build", conf.Build), nil
}

func NewRollbarLogger(zlog *zap.SugaredLogger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{zap: zlog}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// Sync flushes the zap buffers and waits for pending Rollbar reports.
func (l RollbarLogger) Sync() {
	_ = l.zap.Sync()
	rollbar.Wait()
}

// expected fmt: msg | error, map[string]interface{}, key/value pairs
func (l RollbarLogger) prepare(msg string, args []interface{}) (rbArgs, kvs []interface{}) {
	extras := make(map[string]interface{})
	rbArgs = append(rbArgs, msg)
	for i := 0; i < len(args); i++ {
		switch arg := args[i].(type) {
		case error:
			rbArgs = append(rbArgs, arg)
			kvs = append(kvs, "error", arg.Error())
		case map[string]interface{}:
			for k, v := range arg {
				extras[k] = v
				kvs = append(kvs, k, v)
			}
		case string:
			if i+1 < len(args) {
				extras[arg] = args[i+1]
				kvs = append(kvs, arg, args[i+1])
				i++
				continue
			}
			kvs = append(kvs, "extra", arg)
		default:
			kvs = append(kvs, fmt.Sprintf("arg%d", i), arg)
		}
	}
	if len(extras) > 0 {
		rbArgs = append(rbArgs, extras)
	}
	return rbArgs, kvs
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rbArgs, kvs := l.prepare(msg, args)
	rollbar.Debug(rbArgs...)
	l.zap.Debugw(msg, kvs...)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rbArgs, kvs := l.prepare(msg, args)
	rollbar.Info(rbArgs...)
	l.zap.Infow(msg, kvs...)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rbArgs, kvs := l.prepare(msg, args)
	rollbar.Warning(rbArgs...)
	l.zap.Warnw(msg, kvs...)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rbArgs, kvs := l.prepare(msg, args)
	rollbar.Error(rbArgs...)
	l.zap.Errorw(msg, kvs...)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rbArgs, kvs := l.prepare(msg, args)
	rollbar.Critical(rbArgs...)
	rollbar.Wait()
	l.zap.Fatalw(msg, kvs...)
}
