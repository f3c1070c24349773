package logsvc

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/trezcool/vidyalaya/core"
)

// NewZapLogger builds a console logger in debug mode and a JSON one otherwise, named after `name`.
func NewZapLogger(name string, conf *core.Config) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if conf.Debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	if conf.TestMode {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return zl.Named(name).Sugar(), nil
}

// keysAndValues flattens logger args into zap's loosely typed key/value pairs.
// Maps are expanded in key order, errors go under "error", anything else under "argN".
func keysAndValues(args []interface{}) []interface{} {
	kv := make([]interface{}, 0, 2*len(args))
	for i, arg := range args {
		switch a := arg.(type) {
		case nil:
		case error:
			kv = append(kv, "error", a.Error())
		case map[string]interface{}:
			keys := make([]string, 0, len(a))
			for k := range a {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				kv = append(kv, k, a[k])
			}
		default:
			kv = append(kv, fmt.Sprintf("arg%d", i), a)
		}
	}
	return kv
}
