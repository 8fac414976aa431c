package testing

import "context"

type Container interface {
	GetURI() string
	Terminate(context.Context) error
}

type RedisContainer Container

type MySQLContainer Container

type PostgresContainer Container

type KafkaContainer Container
