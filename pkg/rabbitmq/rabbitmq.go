package rabbitmq

import (
	"github.com/streadway/amqp"
)

const (
	// 遵循：项目名.业务领域.实体/功能
	QueueEngagement = "vidhub.engagement.queue"
)

// InitRabbitMQ 初始化RabbitMQ连接
func InitRabbitMQ(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// DeclareQueue 声明持久化队列，有就不用创建（幂等）
func DeclareQueue(conn *amqp.Connection, name string) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	_, err = ch.QueueDeclare(
		name,  // name
		true,  // durable: 队列持久化，RabbitMQ重启后队列本身不会消失
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	)
	return err
}
