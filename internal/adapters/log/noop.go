package log

import "github.com/bft-labs/jointreplay/internal/ports"

// Discard is a ports.Logger that drops everything. It is the default for
// library use.
var Discard ports.Logger = discard{}

type discard struct{}

func (discard) Debug(string, ...ports.Field) {}
func (discard) Info(string, ...ports.Field)  {}
func (discard) Warn(string, ...ports.Field)  {}
func (discard) Error(string, ...ports.Field) {}
