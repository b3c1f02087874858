package rabbitmq

import (
	"context"
	"encoding/json"

	"github.com/streadway/amqp"
)

// Publisher 把消息以JSON形式投递到默认交换机下的某个队列
type Publisher struct {
	conn  *amqp.Connection
	queue string
}

// NewPublisher 创建Publisher，并确保队列已声明
func NewPublisher(conn *amqp.Connection, queue string) (*Publisher, error) {
	if err := DeclareQueue(conn, queue); err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, queue: queue}, nil
}

// Publish 为每条消息建立一个单独的channel，消息之间互不影响
func (p *Publisher) Publish(ctx context.Context, msg interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return ch.Publish(
		"",      // exchange默认交换机
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent, // 确保消息持久化
		})
}
