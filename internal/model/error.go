package model

import "errors"

var ErrorPostNotFound = errors.New("post not found")
var ErrorQueueItemNotFound = errors.New("queue item not found")
var ErrorAlreadyClaimed = errors.New("queue item already claimed")
var ErrorTTSNotConfigured = errors.New("text-to-speech API key not configured")
var ErrorSenderNotConfigured = errors.New("newsletter function not configured")
