package config

const EnvPrefix = "REPAIRPOS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	SlotBackendDB    = "db"
	SlotBackendRedis = "redis"
)

const (
	EnvAppEnv            = "REPAIRPOS_APP_ENV"
	EnvPort              = "REPAIRPOS_APP_PORT"
	EnvTerminalID        = "REPAIRPOS_TERMINAL_ID"
	EnvDBDSN             = "REPAIRPOS_DB_DSN"
	EnvDBHost            = "REPAIRPOS_DB_HOST"
	EnvDBUser            = "REPAIRPOS_DB_USER"
	EnvDBName            = "REPAIRPOS_DB_NAME"
	EnvRedisURL          = "REPAIRPOS_REDIS_URL"
	EnvUseSQLite         = "REPAIRPOS_USE_SQLITE"
	EnvCartSlotKey       = "REPAIRPOS_CART_SLOT_KEY"
	EnvCartSlotBackend   = "REPAIRPOS_CART_SLOT_BACKEND"
	EnvRatesInitial      = "REPAIRPOS_RATES_INITIAL"
	EnvRatesAuthorityURL = "REPAIRPOS_RATES_AUTHORITY_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
