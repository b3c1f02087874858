package main

import (
	"context"
	"encoding/json"
	"log"

	"VidHub/internal/config"
	"VidHub/internal/data"
	"VidHub/internal/service"
	"VidHub/pkg/logger"
	"VidHub/pkg/rabbitmq"
	"VidHub/pkg/redis"

	goredis "github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// 消费者进程：连接mysql、redis、rabbitMQ，按互动事件重新计数并回写到videos/channels
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}
	logger.InitLogger(cfg.Log.Level, cfg.Log.File)

	db, err := data.OpenMySQL(cfg.Mysql)
	if err != nil {
		logger.Log.Fatalf("消费者%v", err)
	}
	if err := data.Migrate(db); err != nil {
		logger.Log.Fatalf("数据库迁移失败: %v", err)
	}

	// Redis只用来清理视频缓存，连不上时缓存会在TTL后自然过期
	var rdb *goredis.Client
	if client, err := redis.InitRedis(context.Background(), redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}); err != nil {
		logger.Log.WithError(err).Warn("消费者无法连接到Redis，跳过缓存清理")
	} else {
		rdb = client
		defer rdb.Close()
	}

	rabbitMQConn, err := rabbitmq.InitRabbitMQ(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Log.Fatalf("消费者无法连接到RabbitMQ: %v", err)
	}
	defer rabbitMQConn.Close()
	if err := rabbitmq.DeclareQueue(rabbitMQConn, rabbitmq.QueueEngagement); err != nil {
		logger.Log.Fatalf("声明互动事件队列失败: %v", err)
	}

	repos := data.NewRepositories(db, rdb)
	uow := data.NewUnitOfWork(db, repos)
	consumeEngagement(rabbitMQConn, service.NewCounterService(uow, repos.Video))
}

// 互动事件消费者：1、通过mq的TCP连接创建channel 2、通过ch注册消费者 3、持续消费消息 4、CounterService重新计数，根据结果Ack/Nack
func consumeEngagement(conn *amqp.Connection, counter service.CounterService) {
	ch, err := conn.Channel()
	if err != nil {
		logger.Log.Fatalf("无法打开Channel: %v", err)
	}
	defer ch.Close()

	// 一次只取一条未确认的消息，避免重试时消息堆在一个消费者上
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Log.Fatalf("设置Qos失败: %v", err)
	}

	msgs, err := ch.Consume(
		rabbitmq.QueueEngagement, // queue
		"",                       // consumer
		false,                    // auto-ack: 手动确认，处理成功才Ack
		false,                    // exclusive
		false,                    // no-local
		false,                    // no-wait
		nil,                      // args
	)
	if err != nil {
		logger.Log.Fatalf("无法注册互动事件消费者: %v", err)
	}
	forever := make(chan bool)

	go func() {
		// msgs是通道，为空时会阻塞而不是结束循环
		for d := range msgs {
			handleDelivery(d, counter)
		}
	}()
	logger.Log.Info(" [*] 等待互动事件中. 按 CTRL+C 退出")
	// 没有发送者，阻止main函数退出
	<-forever
}

// acknowledger 是amqp.Delivery里用到的Ack/Nack
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func handleDelivery(d amqp.Delivery, counter service.CounterService) {
	logCtx := logger.Log.WithField("body", string(d.Body)).WithField("redelivered", d.Redelivered)
	logCtx.Info("收到一条互动事件")
	process(context.Background(), logCtx, d.Body, &d, counter)
}

// process 计数是重新COUNT出来的，重复消费不会算错，所以只有临时错误才重新入队
func process(ctx context.Context, logCtx *logrus.Entry, body []byte, ack acknowledger, counter service.CounterService) {
	var evt service.EngagementEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		logCtx.WithError(err).Error("消息JSON解析失败")
		// 无法解析的“坏消息”直接丢弃
		_ = ack.Nack(false, false)
		return
	}
	logCtx = logCtx.WithField("action", evt.Action)

	if err := counter.Apply(ctx, evt); err != nil {
		if errors.Is(err, service.ErrValidation) {
			logCtx.WithError(err).Error("消息内容不合法，丢弃")
			_ = ack.Nack(false, false)
			return
		}
		logCtx.WithError(err).Error("处理消息失败，将进行重试")
		_ = ack.Nack(false, true)
		return
	}
	_ = ack.Ack(false)
}
