package constants

import (
	"github.com/go-playground/validator/v10"
)

type ContextKey string

const (
	AppKey    ContextKey = "app"
	PoolKey   ContextKey = "pool"
	TxKey     ContextKey = "tx"
	LoggerKey ContextKey = "logger"
	RequestID ContextKey = "requestID"
	ParamsKey ContextKey = "params"
)

// Validate is shared by every DTO in the application. It caches struct metadata, so keep a single instance.
var Validate = validator.New(validator.WithRequiredStructEnabled())
