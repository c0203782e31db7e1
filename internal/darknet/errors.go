package darknet

import "fmt"

// ConfigError describes a problem with the network configuration: a
// malformed line, a missing or non-numeric key, or a layer reference
// that resolves outside the already-built part of the network.
type ConfigError struct {
	Block int    // block position in the config file, -1 when structural
	Key   string // offending key, empty for structural problems
	Msg   string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Block < 0:
		return fmt.Sprintf("config: %s", e.Msg)
	case e.Key == "":
		return fmt.Sprintf("config: block %d: %s", e.Block, e.Msg)
	default:
		return fmt.Sprintf("config: block %d: key %q: %s", e.Block, e.Key, e.Msg)
	}
}

func configErrf(block int, key, format string, args ...any) *ConfigError {
	return &ConfigError{Block: block, Key: key, Msg: fmt.Sprintf(format, args...)}
}

// WeightFormatError describes a malformed weight file: a stream whose
// byte length is not a whole number of floats, or one that runs out
// before a layer's parameters are fully consumed.
type WeightFormatError struct {
	Offset int // read position in floats from the start of the stream
	Msg    string
}

func (e *WeightFormatError) Error() string {
	return fmt.Sprintf("weights: offset %d: %s", e.Offset, e.Msg)
}
