package infra

const (
	// RedisNamespace Базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "clawdjob"
)

// Ключи блокировок
const (
	// RedisKeyLockHunt не дает двум инстансам запустить цикл охоты одновременно
	RedisKeyLockHunt = RedisNamespace + ":lock:hunt"
)

// Каналы Pub/Sub (события ленты)
const (
	RedisChanActivity   = RedisNamespace + ":feed:activity"
	RedisChanAgentState = RedisNamespace + ":feed:state"
)
