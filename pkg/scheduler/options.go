package scheduler

import "github.com/dd0wney/cluso-splash/pkg/logging"

// Option identifies a runtime-configurable scheduler setting.
type Option int

const (
	// OptionSplashSize routes to SetSplashSize; the value must be an int.
	OptionSplashSize Option = iota
	// OptionUpdateFunction routes to SetUpdateFunction; the value must be
	// an UpdateFunc.
	OptionUpdateFunction
)

// SetOption applies a configuration option. Unknown options and mistyped
// values are logged as warnings and otherwise ignored.
func (s *Scheduler) SetOption(opt Option, value any) {
	switch opt {
	case OptionSplashSize:
		if size, ok := value.(int); ok {
			s.SetSplashSize(size)
			return
		}
		s.logger.Warn("splash size option requires an int value",
			logging.Any("value", value))
	case OptionUpdateFunction:
		if fn, ok := value.(UpdateFunc); ok {
			s.SetUpdateFunction(fn)
			return
		}
		s.logger.Warn("update function option requires an UpdateFunc value",
			logging.Any("value", value))
	default:
		s.logger.Warn("splash scheduler was passed an unknown option",
			logging.Int("option", int(opt)))
	}
}
