package syncer

import "time"

const (
	defaultWorkerCount   = 8
	defaultPrefetch      = 32
	defaultMaxRetries    = 5
	defaultMaxForkDepth  = 60
	defaultMirrorBacklog = 1024

	defaultRetryBase        = 100 * time.Millisecond
	defaultSleepDuration    = 5 * time.Second
	defaultMaxSleepDuration = 1 * time.Minute
	defaultIdleDuration     = 10 * time.Second
)
