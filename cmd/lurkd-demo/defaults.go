package main

import "time"

const (
	defaultTimeout        = 2 * time.Minute
	defaultFrameTime      = 10 * time.Millisecond
	defaultMaxConnections = 256
)
