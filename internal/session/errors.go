package session

import (
	"errors"

	"github.com/cwbudde/algo-binaural/internal/config"
	"github.com/cwbudde/algo-binaural/internal/device"
)

// Error taxonomy. Device and stream errors are recovered by the Controller;
// buffer, config and sensor errors degrade to default behaviour.
var (
	ErrDeviceNotFound          = device.ErrDeviceNotFound
	ErrUnsupportedStreamConfig = device.ErrUnsupportedConfig
	ErrStreamRuntime           = device.ErrStreamRuntime
	ErrBufferSizeMismatch      = device.ErrBlockSizeMismatch
	ErrConfigLoad              = config.ErrConfigLoad

	ErrBufferOverrun     = errors.New("session: buffer overrun")
	ErrBufferUnderrun    = errors.New("session: buffer underrun")
	ErrSensorUnavailable = errors.New("session: head tracking unavailable")
)
